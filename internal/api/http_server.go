// Package api exposes the marketplace over HTTP and a gRPC health endpoint.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/SamFelix03/cummadashboard/internal/auth"
	"github.com/SamFelix03/cummadashboard/internal/config"
	"github.com/SamFelix03/cummadashboard/internal/logging"
	"github.com/SamFelix03/cummadashboard/internal/service"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// Services bundles everything the HTTP handlers call into.
type Services struct {
	Auth       *service.AuthService
	Facilities *service.FacilityService
	Bookings   *service.BookingService
	Profiles   *service.ProfileService
	Authorizer *auth.Authorizer
	Store      Pinger
}

// HTTPServer serves the JSON API.
type HTTPServer struct {
	cfg      config.APIConfig
	svc      Services
	server   *http.Server
	sessions *sessionAuth
	admin    *AdminAuth
	logger   *zerolog.Logger
}

func NewHTTPServer(cfg config.APIConfig, sessionCfg config.SessionConfig, svc Services, logger *zerolog.Logger) *HTTPServer {
	l := logging.Component(logger, "http")
	srv := &HTTPServer{
		cfg: cfg,
		svc: svc,
		sessions: &sessionAuth{
			authn:  svc.Auth,
			rbac:   svc.Authorizer,
			cfg:    sessionCfg,
			logger: l,
		},
		admin:  NewAdminAuth(cfg.Auth),
		logger: l,
	}

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           srv.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}
	return srv
}

func (s *HTTPServer) routes() http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Use(
		recoveryMiddleware(s.logger),
		loggingMiddleware(s.logger),
		metricsMiddleware,
		rateLimitMiddleware(newRateLimiter(s.cfg.RateLimit)),
		bodyLimitMiddleware(int64(s.cfg.HTTP.MaxBodyBytes)),
	)

	r.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReadyz).Methods(http.MethodGet)

	r.HandleFunc("/api/auth/signup/startup", s.handleSignupStartup).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/signup/service-provider", s.handleSignupServiceProvider).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/signin", s.handleSignIn).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/verify", s.handleVerifyEmail).Methods(http.MethodGet)

	admin := r.PathPrefix("/api/admin").Subrouter()
	admin.Use(s.admin.Middleware())
	admin.HandleFunc("/facilities", s.handleAdminListFacilities).Methods(http.MethodGet)
	admin.HandleFunc("/facilities/{id}/status", s.handleAdminSetFacilityStatus).Methods(http.MethodPost)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.sessions.middleware())

	api.HandleFunc("/auth/session", s.handleSession).Methods(http.MethodGet)
	api.HandleFunc("/auth/signout", s.handleSignOut).Methods(http.MethodPost)

	api.HandleFunc("/facilities", s.handleCreateFacility).Methods(http.MethodPost)
	api.HandleFunc("/facilities", s.handleListFacilities).Methods(http.MethodGet)
	api.HandleFunc("/facilities/{id}", s.handleGetFacility).Methods(http.MethodGet)
	api.HandleFunc("/facilities/{id}", s.handleUpdateFacility).Methods(http.MethodPatch)
	api.HandleFunc("/facilities/{id}", s.handleDeleteFacility).Methods(http.MethodDelete)

	api.HandleFunc("/bookings", s.handleProviderBookings).Methods(http.MethodGet)
	api.HandleFunc("/bookings/requests", s.handleProviderRequests).Methods(http.MethodGet)
	api.HandleFunc("/bookings/export", s.handleExportBookings).Methods(http.MethodGet)
	api.HandleFunc("/bookings/{id}/approve", s.handleApproveBooking).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{id}/reject", s.handleRejectBooking).Methods(http.MethodPost)
	api.HandleFunc("/dashboard", s.handleDashboard).Methods(http.MethodGet)
	api.HandleFunc("/service-provider/profile", s.handleGetProviderProfile).Methods(http.MethodGet)
	api.HandleFunc("/service-provider/profile", s.handlePatchProviderProfile).Methods(http.MethodPatch)

	api.HandleFunc("/catalog", s.handleCatalog).Methods(http.MethodGet)
	api.HandleFunc("/catalog/{id}", s.handleCatalogItem).Methods(http.MethodGet)
	api.HandleFunc("/startup/bookings", s.handleRequestBooking).Methods(http.MethodPost)
	api.HandleFunc("/startup/bookings", s.handleStartupBookings).Methods(http.MethodGet)
	api.HandleFunc("/startup/profile", s.handleGetStartupProfile).Methods(http.MethodGet)
	api.HandleFunc("/startup/profile", s.handlePatchStartupProfile).Methods(http.MethodPatch)

	return requestIDMiddleware(r)
}

// Handler exposes the full middleware chain, mainly for tests.
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
	if s.svc.Store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.svc.Store.Ping(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("readiness check failed")
			writeError(w, http.StatusServiceUnavailable, "store unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// pageParams reads limit and offset. Bad values fall back to defaults,
// the services clamp the rest.
func pageParams(r *http.Request) (limit, offset int) {
	q := r.URL.Query()
	limit, _ = strconv.Atoi(q.Get("limit"))
	offset, _ = strconv.Atoi(q.Get("offset"))
	return limit, offset
}
