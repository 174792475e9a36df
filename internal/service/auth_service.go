package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bistro/internal/domain"
	"bistro/internal/metrics"
	"bistro/internal/models"
	"bistro/internal/session"

	"github.com/rs/zerolog"
)

// AuthService logs managers in against the CMS and keeps the JWT on the session.
type AuthService struct {
	api      domain.ContentAPI
	limiter  domain.CacheRepository
	attempts int
	window   time.Duration
	logger   *zerolog.Logger
}

func NewAuthService(api domain.ContentAPI, limiter domain.CacheRepository, attempts int, window time.Duration, logger *zerolog.Logger) *AuthService {
	return &AuthService{
		api:      api,
		limiter:  limiter,
		attempts: attempts,
		window:   window,
		logger:   logger,
	}
}

// Login checks the throttle, calls the CMS and stores the result on the
// session. A session closed mid-request keeps no login.
func (s *AuthService) Login(ctx context.Context, sess *session.Session, identifier, password string) (models.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return models.User{}, fmt.Errorf("identifier and password are required: %w", domain.ErrBadRequest)
	}

	if s.limiter != nil && s.attempts > 0 {
		allowed, err := s.limiter.CheckRateLimit(ctx, "login:"+strings.ToLower(identifier), s.attempts, s.window)
		if err != nil {
			s.logger.Warn().Err(err).Msg("login throttle unavailable")
		} else if !allowed {
			metrics.IncLoginThrottled()
			s.logger.Warn().Str("identifier", identifier).Msg("login throttled")
			return models.User{}, domain.ErrTooManyAttempts
		}
	}

	scope := sess.OpenScope(ctx, "login")
	defer scope.Close()

	auth, err := s.api.Login(scope.Context(), identifier, password)
	if err != nil {
		s.logger.Info().Err(err).Str("identifier", identifier).Msg("login failed")
		return models.User{}, err
	}

	stored := false
	if !scope.Apply(func() { stored = sess.SetAuth(*auth) }) || !stored {
		return models.User{}, domain.ErrSessionNotFound
	}
	s.logger.Info().Str("session_id", sess.ID).Str("user", auth.User.Username).Msg("manager logged in")
	return auth.User, nil
}

func (s *AuthService) Logout(sess *session.Session) {
	sess.ClearAuth()
}

// Token returns the session JWT or domain.ErrNotAuthenticated.
func Token(sess *session.Session) (string, error) {
	auth, ok := sess.Auth()
	if !ok || auth.JWT == "" {
		return "", domain.ErrNotAuthenticated
	}
	return auth.JWT, nil
}
