package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Mahendrakumar19/streamgate/internal/handlers"
	"github.com/Mahendrakumar19/streamgate/internal/handlers/middleware"
	"github.com/Mahendrakumar19/streamgate/internal/logger"
	"github.com/Mahendrakumar19/streamgate/internal/metrics"
	"github.com/Mahendrakumar19/streamgate/internal/service/accesslog"
	"github.com/Mahendrakumar19/streamgate/internal/service/enrollment"
	"github.com/Mahendrakumar19/streamgate/internal/service/issuer"
	"github.com/Mahendrakumar19/streamgate/internal/service/issuer/tokenmanager"
	"github.com/Mahendrakumar19/streamgate/internal/service/session"
	"github.com/Mahendrakumar19/streamgate/internal/service/stream"
)

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler

	accessLog *accesslog.Recorder
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	// Initialize logger
	logger, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	metrics.Register()

	// Initialize services
	tokenManager, err := tokenmanager.New(tokenmanager.Config{SecretKey: c.SecretKey})
	if err != nil {
		return nil, fmt.Errorf("error while creating token manager. Err: %w", err)
	}

	enrollmentClient := enrollment.NewClient(c.LMSAddr, c.LMSToken, logger)

	issuerService, err := issuer.NewService(tokenManager, enrollmentClient, logger)
	if err != nil {
		return nil, fmt.Errorf("error while creating issuer service. Err: %w", err)
	}

	streamService, err := stream.NewService(stream.Config{
		OriginAddr:  c.OriginAddr,
		OriginToken: c.OriginToken,
	}, tokenManager, logger)
	if err != nil {
		return nil, fmt.Errorf("error while creating stream service. Err: %w", err)
	}

	sessionAuth, err := session.NewAuthenticator(c.SessionSecret)
	if err != nil {
		return nil, fmt.Errorf("error while creating session authenticator. Err: %w", err)
	}

	accessLog := accesslog.New(logger)

	// Initialize handlers and the router
	var allowedOrigins []string
	if c.AllowedOrigin != "" {
		allowedOrigins = []string{c.AllowedOrigin}
	}

	mux := handlers.NewRouter(handlers.RouterConfig{
		Issuer:         handlers.NewIssuer(issuerService, logger),
		Stream:         handlers.NewStream(streamService, accessLog, logger),
		Session:        middleware.SessionMiddleware(sessionAuth),
		AllowedOrigins: allowedOrigins,
	}, logger)

	return &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    mux,
		accessLog:  accessLog,
	}, nil
}

// Run starts http server and closes gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.ListenAddr,
		Handler: s.Handler,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	// Access log drain lives as long as the server context
	logStopped := s.accessLog.Drain(srvCtx)

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); err == context.DeadlineExceeded {
			// Consider to user logger dependency
			slog.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		// Consider to user logger dependency
		slog.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	slog.Info("Starting server")
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed
	<-logStopped

	return err
}
