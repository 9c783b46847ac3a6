package models

// Session is the caller identity decoded from the platform session cookie
type Session struct {
	UserID int64
	Email  string
}

func (s Session) Authenticated() bool {
	return s.UserID > 0
}
