package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/babylonlabs-io/metrics-publisher/internal/config"
	"github.com/babylonlabs-io/metrics-publisher/internal/observability/metrics"
	"github.com/babylonlabs-io/metrics-publisher/internal/observability/tracing"
	"github.com/babylonlabs-io/metrics-publisher/internal/services"
	"github.com/babylonlabs-io/metrics-publisher/internal/state"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

// PublicService is the read side of the service. None of its calls fail.
type PublicService interface {
	AssetSource
	ActiveWalletsDaily() string
	ExtrinsicsDaily() string
	NewWalletsInflow() string
	Owner() state.Identity
	Status() *services.Status
}

type OwnerResponse struct {
	Owner state.Identity `json:"owner"`
}

type Server struct {
	httpServer *http.Server
	service    PublicService
	router     *Router
}

func NewServer(cfg *config.ServerConfig, service PublicService) *Server {
	s := &Server{
		service: service,
		router:  NewRouter(service, cfg.AssetCacheMaxAge),
	}
	s.httpServer = &http.Server{
		Addr:         cfg.Address(),
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer, traceRequest)

	r.NotFound(s.asset)
	r.Get("/healthcheck", s.healthcheck)
	r.Route("/api", func(r chi.Router) {
		r.Get("/status", s.status)
		r.Get("/owner", s.owner)
		r.Get("/active-wallets-daily", s.rawPayload(s.service.ActiveWalletsDaily))
		r.Get("/extrinsics-daily", s.rawPayload(s.service.ExtrinsicsDaily))
		r.Get("/new-wallets-inflow", s.rawPayload(s.service.NewWalletsInflow))
	})
	r.Get("/*", s.asset)

	return r
}

// Start blocks until the server is shut down.
func (s *Server) Start() error {
	log.Info().Str("address", s.httpServer.Addr).Msg("Starting asset server")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// asset uses RequestURI so absolute-form targets are normalized like any other.
func (s *Server) asset(w http.ResponseWriter, r *http.Request) {
	resp := s.router.Handle(r.RequestURI)

	label := NormalizePath(r.RequestURI)
	if !services.IsCertifiedPath(label) {
		label = "other"
	}
	metrics.RecordAssetRequest(label, resp.StatusCode)

	for key, values := range resp.Headers {
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}
	w.WriteHeader(resp.StatusCode)
	if _, err := w.Write(resp.Body); err != nil {
		log.Ctx(r.Context()).Debug().Err(err).Msg("failed to write asset")
	}
}

func (s *Server) healthcheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, s.service.Status())
}

func (s *Server) owner(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, OwnerResponse{Owner: s.service.Owner()})
}

// rawPayload serves a cached payload string without certificate headers.
func (s *Server) rawPayload(read func() string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(read())); err != nil {
			log.Ctx(r.Context()).Debug().Err(err).Msg("failed to write payload")
		}
	}
}

func traceRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := tracing.InjectTraceID(r.Context())
		log.Ctx(ctx).Debug().Str("method", r.Method).Str("uri", r.RequestURI).Msg("request received")
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
