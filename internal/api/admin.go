package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/babylonlabs-io/metrics-publisher/internal/auth"
	"github.com/babylonlabs-io/metrics-publisher/internal/config"
	"github.com/babylonlabs-io/metrics-publisher/internal/series"
	"github.com/babylonlabs-io/metrics-publisher/internal/services"
	"github.com/babylonlabs-io/metrics-publisher/internal/state"
	"github.com/babylonlabs-io/metrics-publisher/internal/types"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

const maxAdminBodyBytes = 4 << 20

const (
	PathOwner          = "/admin/owner"
	PathSourceURL      = "/admin/source-url"
	PathRefreshEnabled = "/admin/refresh-enabled"
	PathSnapshots      = "/admin/snapshots"
	PathInflow         = "/admin/inflow"
	PathRefresh        = "/admin/refresh"
)

// AdminService is the owner-only side of the service.
type AdminService interface {
	SetOwner(ctx context.Context, caller, newOwner state.Identity) error
	SetSourceURL(ctx context.Context, caller state.Identity, url string) error
	SetRefreshEnabled(ctx context.Context, caller state.Identity, enabled bool) error
	IngestDailySnapshot(ctx context.Context, caller state.Identity, snapshot series.DailySnapshot) (string, error)
	IngestNewWalletsInflow(ctx context.Context, caller state.Identity, payload string) (string, error)
	RefreshNow(ctx context.Context, caller state.Identity) (string, error)
	Status() *services.Status
}

type SetOwnerRequest struct {
	Owner state.Identity `json:"owner"`
}

type SetSourceURLRequest struct {
	URL string `json:"url"`
}

type SetRefreshEnabledRequest struct {
	Enabled bool `json:"enabled"`
}

type IngestInflowRequest struct {
	Payload string `json:"payload"`
}

type PayloadResponse struct {
	Payload string `json:"payload"`
}

type callerKey struct{}

func callerFrom(ctx context.Context) state.Identity {
	caller, _ := ctx.Value(callerKey{}).(state.Identity)
	return caller
}

// AdminServer exposes the mutating operations on a separate listener. Every request
// must be signed by the caller, the service then decides whether the caller owns it.
type AdminServer struct {
	httpServer *http.Server
	service    AdminService
	maxSkew    time.Duration
	now        func() time.Time
}

func NewAdminServer(cfg *config.AdminConfig, service AdminService) *AdminServer {
	s := &AdminServer{
		service: service,
		maxSkew: cfg.MaxClockSkew,
		now:     time.Now,
	}
	s.httpServer = &http.Server{
		Addr:              cfg.Address(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *AdminServer) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer, traceRequest, s.authenticate)

	r.Put(PathOwner, s.setOwner)
	r.Put(PathSourceURL, s.setSourceURL)
	r.Put(PathRefreshEnabled, s.setRefreshEnabled)
	r.Post(PathSnapshots, s.ingestSnapshot)
	r.Put(PathInflow, s.ingestInflow)
	r.Post(PathRefresh, s.refresh)

	return r
}

func (s *AdminServer) Start() error {
	log.Info().Str("address", s.httpServer.Addr).Msg("Starting admin server")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *AdminServer) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// authenticate verifies the request signature over method, path, timestamp and body
// and stores the signer in the request context.
func (s *AdminServer) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		body, err := io.ReadAll(io.LimitReader(r.Body, maxAdminBodyBytes+1))
		if err != nil {
			writeError(ctx, w, types.NewBadRequestError(fmt.Errorf("failed to read body: %w", err)))
			return
		}
		if len(body) > maxAdminBodyBytes {
			writeError(ctx, w, types.NewErrorWithMsg(
				http.StatusRequestEntityTooLarge, types.BadRequest, "request body too large",
			))
			return
		}

		caller, err := auth.VerifyRequest(
			r.Header.Get(auth.HeaderIdentity),
			r.Method,
			r.URL.Path,
			body,
			r.Header.Get(auth.HeaderTimestamp),
			r.Header.Get(auth.HeaderSignature),
			s.now(),
			s.maxSkew,
		)
		if err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("path", r.URL.Path).Msg("rejected admin request")
			writeError(ctx, w, err)
			return
		}

		ctx = context.WithValue(ctx, callerKey{}, caller)
		logger := log.Ctx(ctx).With().Str("caller", caller.String()).Logger()
		r.Body = io.NopCloser(bytes.NewReader(body))
		next.ServeHTTP(w, r.WithContext(logger.WithContext(ctx)))
	})
}

func decode[T any](r *http.Request) (*T, error) {
	var v T
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&v); err != nil {
		return nil, types.NewBadRequestError(fmt.Errorf("invalid request body: %w", err))
	}
	return &v, nil
}

func (s *AdminServer) setOwner(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, err := decode[SetOwnerRequest](r)
	if err == nil {
		err = s.service.SetOwner(ctx, callerFrom(ctx), req.Owner)
	}
	s.respondStatus(ctx, w, err)
}

func (s *AdminServer) setSourceURL(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, err := decode[SetSourceURLRequest](r)
	if err == nil {
		err = s.service.SetSourceURL(ctx, callerFrom(ctx), req.URL)
	}
	s.respondStatus(ctx, w, err)
}

func (s *AdminServer) setRefreshEnabled(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, err := decode[SetRefreshEnabledRequest](r)
	if err == nil {
		err = s.service.SetRefreshEnabled(ctx, callerFrom(ctx), req.Enabled)
	}
	s.respondStatus(ctx, w, err)
}

func (s *AdminServer) ingestSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, err := decode[series.DailySnapshot](r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	payload, err := s.service.IngestDailySnapshot(ctx, callerFrom(ctx), *req)
	respondPayload(ctx, w, payload, err)
}

func (s *AdminServer) ingestInflow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, err := decode[IngestInflowRequest](r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	payload, err := s.service.IngestNewWalletsInflow(ctx, callerFrom(ctx), req.Payload)
	respondPayload(ctx, w, payload, err)
}

func (s *AdminServer) refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	payload, err := s.service.RefreshNow(ctx, callerFrom(ctx))
	respondPayload(ctx, w, payload, err)
}

func (s *AdminServer) respondStatus(ctx context.Context, w http.ResponseWriter, err error) {
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, s.service.Status())
}

func respondPayload(ctx context.Context, w http.ResponseWriter, payload string, err error) {
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, PayloadResponse{Payload: payload})
}
