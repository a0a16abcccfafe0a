// Package httpapi exposes the session and proof services over HTTP using gin.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/config"
	"github.com/dmitrijs2005/authkeeper/internal/server/services"
	"github.com/gin-gonic/gin"
)

// SessionManager is the slice of SessionService the handlers need.
type SessionManager interface {
	Register(ctx context.Context, name string, email string, password string) (*services.UserSummary, error)
	Login(ctx context.Context, email string, password string) (*services.LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	CurrentUser(ctx context.Context, userID string) (*services.UserSummary, error)
}

// ProofManager is the slice of ProofService the handlers need.
type ProofManager interface {
	RequestPasswordReset(ctx context.Context, email string) (string, error)
	CompletePasswordReset(ctx context.Context, secret string, newPassword string) error
	ValidateEmail(ctx context.Context, token string) error
}

const shutdownTimeout = 5 * time.Second

// Server wires the gin router to the services and manages the HTTP listener.
type Server struct {
	addr         string
	accessSecret []byte
	sessions     SessionManager
	proofs       ProofManager
	logger       logging.Logger
}

// NewServer constructs the HTTP server from config and services.
func NewServer(cfg *config.Config, sessions SessionManager, proofs ProofManager, logger logging.Logger) *Server {
	return &Server{
		addr:         cfg.Addr,
		accessSecret: []byte(cfg.AccessSecret),
		sessions:     sessions,
		proofs:       proofs,
		logger:       logger,
	}
}

// Router builds the gin engine with all routes attached.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(s.logger))

	api := r.Group("/api/auth")
	api.POST("/register", s.handleRegister)
	api.POST("/login", s.handleLogin)
	api.POST("/refresh-token", s.handleRefresh)
	api.POST("/logout", s.handleLogout)
	api.POST("/forgot-password", s.handleForgotPassword)
	api.POST("/reset-password", s.handleResetPassword)
	api.GET("/validate-email/:token", s.handleValidateEmail)
	api.GET("/me", RequireAuth(s.accessSecret), s.handleMe)

	return r
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	s.logger.Info(ctx, "http server listening", "addr", s.addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
