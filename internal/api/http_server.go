package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"bistro/internal/catalog"
	"bistro/internal/config"
	"bistro/internal/domain"
	"bistro/internal/metrics"
	"bistro/internal/service"
	"bistro/internal/session"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	sessionHeader   = "X-Session-ID"
	requestIDHeader = "X-Request-ID"
	maxBodyBytes    = 1 << 20
)

// Deps собирает всё, что нужно обработчикам BFF.
type Deps struct {
	Catalog  *catalog.Catalog
	Sessions *session.Registry
	Auth     *service.AuthService
	Reviews  *service.ReviewService
	Menu     *service.MenuService
	// Ready проверяет готовность зависимостей для /readyz. nil означает "всегда готов".
	Ready func(ctx context.Context) error
}

// HTTPServer is the JSON backend the ordering UI talks to.
type HTTPServer struct {
	cfg    *config.APIConfig
	deps   Deps
	server *http.Server
	auth   *HTTPAuth
	logger *zerolog.Logger
}

func NewHTTPServer(cfg *config.APIConfig, deps Deps, logger *zerolog.Logger) *HTTPServer {
	mux := http.NewServeMux()
	srv := &HTTPServer{cfg: cfg, deps: deps, logger: logger}
	srv.auth = NewHTTPAuth(cfg)

	mux.HandleFunc("GET /healthz", srv.handleHealthz)
	mux.HandleFunc("GET /readyz", srv.handleReadyz)

	mux.HandleFunc("POST /api/v1/sessions", srv.handleCreateSession)
	mux.HandleFunc("DELETE /api/v1/sessions", srv.handleDeleteSession)

	mux.HandleFunc("GET /api/v1/categories", srv.handleCategories)
	mux.HandleFunc("GET /api/v1/menu", srv.handleMenu)
	mux.HandleFunc("GET /api/v1/menu/static/{category}", srv.handleStaticMenu)
	mux.HandleFunc("GET /api/v1/items/{id}", srv.handleItem)
	mux.HandleFunc("POST /api/v1/items/{id}/reviews", srv.handleCreateReview)

	mux.HandleFunc("GET /api/v1/cart", srv.withSession(srv.handleCart))
	mux.HandleFunc("POST /api/v1/cart/items", srv.withSession(srv.handleAddToCart))
	mux.HandleFunc("PUT /api/v1/cart", srv.withSession(srv.handleUpdateCart))
	mux.HandleFunc("POST /api/v1/cart/lines/{op}", srv.withSession(srv.handleCartLine))
	mux.HandleFunc("DELETE /api/v1/cart/lines", srv.withSession(srv.handleRemoveLine))
	mux.HandleFunc("POST /api/v1/cart/checkout", srv.withSession(srv.handleCheckout))

	mux.HandleFunc("GET /api/v1/favorites", srv.withSession(srv.handleFavorites))
	mux.HandleFunc("POST /api/v1/favorites/toggle", srv.withSession(srv.handleToggleFavorite))
	mux.HandleFunc("GET /api/v1/favorites/{id}", srv.withSession(srv.handleIsFavorite))
	mux.HandleFunc("DELETE /api/v1/favorites", srv.withSession(srv.handleClearFavorites))

	mux.HandleFunc("POST /api/v1/auth/login", srv.withSession(srv.handleLogin))
	mux.HandleFunc("POST /api/v1/auth/logout", srv.withSession(srv.handleLogout))

	mux.HandleFunc("GET /api/v1/manage/items", srv.withSession(srv.handleManageList))
	mux.HandleFunc("POST /api/v1/manage/items", srv.withSession(srv.handleManageCreate))
	mux.HandleFunc("PUT /api/v1/manage/items/{id}", srv.withSession(srv.handleManageUpdate))
	mux.HandleFunc("DELETE /api/v1/manage/items/{id}", srv.withSession(srv.handleManageDelete))
	mux.HandleFunc("GET /api/v1/manage/export", srv.withSession(srv.handleManageExport))

	handler := srv.loggingMiddleware(corsMiddleware(srv.auth.Wrap(mux)))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	return srv
}

// Handler отдаёт корневой обработчик вместе с middleware.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if s.deps.Ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.deps.Ready(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready", "error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *HTTPServer) handleCreateSession(w http.ResponseWriter, _ *http.Request) {
	sess := s.deps.Sessions.Create()
	w.Header().Set(sessionHeader, sess.ID)
	writeJSON(w, http.StatusCreated, map[string]any{
		"session_id": sess.ID,
		"created_at": sess.CreatedAt,
	})
}

func (s *HTTPServer) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Sessions.Delete(sessionID(r)); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// session находит сессию запроса по заголовку X-Session-ID.
func (s *HTTPServer) session(r *http.Request) (*session.Session, error) {
	id := sessionID(r)
	if id == "" {
		return nil, fmt.Errorf("%s header is required: %w", sessionHeader, domain.ErrSessionNotFound)
	}
	return s.deps.Sessions.Get(id)
}

func sessionID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(sessionHeader))
}

// fail пишет ошибку с кодом, выведенным из доменной ошибки.
func (s *HTTPServer) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	message := err.Error()
	if code == http.StatusInternalServerError {
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		message = "internal error"
	}
	writeError(w, code, message)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNotAuthenticated), errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrTooManyAttempts):
		return http.StatusTooManyRequests
	case errors.Is(err, domain.ErrUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrBadRequest),
		errors.Is(err, domain.ErrInvalidPrice),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrMissingFields),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrDuplicateLine),
		errors.Is(err, domain.ErrEmptyReview),
		errors.Is(err, domain.ErrMenuIDRequired),
		errors.Is(err, domain.ErrConfirmationRequired):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

var errInvalidBody = fmt.Errorf("invalid JSON body: %w", domain.ErrBadRequest)

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("empty body: %w", domain.ErrBadRequest)
		}
		if errors.Is(err, domain.ErrInvalidPrice) || errors.Is(err, domain.ErrInvalidID) {
			return err
		}
		return errInvalidBody
	}
	return nil
}

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)

		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		metrics.IncHTTP(route, strconv.Itoa(recorder.status))

		s.logger.Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Session-ID, X-Request-ID, X-API-Key, X-API-Extra")
		h.Set("Access-Control-Expose-Headers", "X-Session-ID, X-Request-ID")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
