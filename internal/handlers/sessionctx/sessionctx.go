package sessionctx

import (
	"context"

	"github.com/Mahendrakumar19/streamgate/internal/models"
)

type ctxKey string

const sessionKey ctxKey = "session"

func NewContext(ctx context.Context, s models.Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

func FromContext(ctx context.Context) (models.Session, bool) {
	s, ok := ctx.Value(sessionKey).(models.Session)
	return s, ok
}
