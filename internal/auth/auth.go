// Package auth gates the API behind institutional Google sign-in, with
// a shared lab password as the offline fallback. Sessions live in
// memory only; restarting the server signs everyone out.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"google.golang.org/api/idtoken"

	"cohortpulse/internal/config"
	apierrors "cohortpulse/internal/errors"
)

// labUser is the identity recorded for password-fallback sessions.
const labUser = "lab@local"

// tokenVerifier validates a Google ID token and returns its payload.
// Injectable so tests never reach Google's certificate endpoint.
type tokenVerifier func(ctx context.Context, token, audience string) (*idtoken.Payload, error)

// Service authenticates researchers and tracks their sessions.
type Service struct {
	cfg      config.AuthConfig
	sessions *SessionStore
	verify   tokenVerifier
	logger   *slog.Logger
}

// NewService builds the auth service. With cfg.Enabled false every
// request passes through unauthenticated.
func NewService(cfg config.AuthConfig, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		cfg:      cfg,
		sessions: NewSessionStore(cfg.SessionTTL, nil),
		verify:   idtoken.Validate,
		logger:   logger.With(slog.String("component", "auth")),
	}
}

// Enabled reports whether authentication is enforced.
func (s *Service) Enabled() bool { return s.cfg.Enabled }

// LoginGoogle validates a Google ID token, checks the email against
// the institutional domain allow-list, and opens a session.
func (s *Service) LoginGoogle(ctx context.Context, rawToken string) (Session, error) {
	payload, err := s.verify(ctx, rawToken, s.cfg.GoogleClientID)
	if err != nil {
		s.logger.WarnContext(ctx, "google token rejected", slog.String("error", err.Error()))
		return Session{}, apierrors.ErrUnauthorized
	}

	email, _ := payload.Claims["email"].(string)
	if email == "" {
		return Session{}, apierrors.ErrUnauthorized
	}
	if !s.domainAllowed(email) {
		s.logger.WarnContext(ctx, "email domain not allowed", slog.String("email", email))
		return Session{}, apierrors.ErrAccessDenied
	}

	session := s.sessions.Create(email)
	s.logger.InfoContext(ctx, "session opened", slog.String("email", email))
	return session, nil
}

// LoginPassword opens a session against the shared lab password. It is
// only available when a bcrypt hash is configured.
func (s *Service) LoginPassword(ctx context.Context, password string) (Session, error) {
	if s.cfg.PasswordHash == "" {
		return Session{}, apierrors.ErrAccessDenied
	}
	if err := comparePassword(s.cfg.PasswordHash, password); err != nil {
		s.logger.WarnContext(ctx, "password login rejected")
		return Session{}, apierrors.ErrAccessDenied
	}
	session := s.sessions.Create(labUser)
	s.logger.InfoContext(ctx, "session opened", slog.String("email", labUser))
	return session, nil
}

// Logout closes the session for the token, if one exists.
func (s *Service) Logout(token string) {
	s.sessions.Delete(token)
}

// SessionFor resolves a bearer token to its live session.
func (s *Service) SessionFor(token string) (Session, bool) {
	return s.sessions.Get(token)
}

func (s *Service) domainAllowed(email string) bool {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false
	}
	domain := strings.ToLower(email[at+1:])
	for _, allowed := range s.cfg.AllowedDomains {
		if domain == strings.ToLower(strings.TrimSpace(allowed)) {
			return true
		}
	}
	return false
}

type contextKey struct{}

// SessionFromContext returns the session attached by Middleware.
func SessionFromContext(ctx context.Context) (Session, bool) {
	session, ok := ctx.Value(contextKey{}).(Session)
	return session, ok
}

// Middleware rejects requests without a live session. Denials are
// always clean 401/403 responses, never server errors.
func (s *Service) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.cfg.Enabled {
			next.ServeHTTP(w, r)
			return
		}

		token := bearerToken(r)
		if token == "" {
			apierrors.WriteError(w, apierrors.ErrUnauthorized)
			return
		}
		session, ok := s.sessions.Get(token)
		if !ok {
			apierrors.WriteError(w, apierrors.ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), contextKey{}, session)))
	})
}

// bearerToken extracts the session token from the Authorization header
// or, failing that, the session cookie.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if cookie, err := r.Cookie("session"); err == nil {
		return cookie.Value
	}
	return ""
}

// HashPassword produces a bcrypt hash for configuration, used by the
// ops tooling rather than the request path.
func HashPassword(password string) (string, error) {
	hash, err := hashPassword(password)
	if err != nil {
		return "", fmt.Errorf("auth: hash password: %w", err)
	}
	return hash, nil
}
