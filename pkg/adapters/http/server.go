package http

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/kinema"
	"github.com/aretw0/kinema/internal/logging"
	"github.com/aretw0/kinema/pkg/domain"
	"github.com/aretw0/kinema/pkg/runner"
	"github.com/aretw0/kinema/pkg/session"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//go:embed openapi.yaml
var rawSpec []byte

// Server exposes a session.Manager over HTTP.
type Server struct {
	Sessions *session.Manager
	Streams  *StreamManager

	logger   *slog.Logger
	gatherer prometheus.Gatherer
	spec     *openapi3.T
	upgrader websocket.Upgrader
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics serves g on /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithCheckOrigin restricts websocket upgrades. The default accepts every
// origin, matching the permissive CORS policy.
func WithCheckOrigin(check func(r *http.Request) bool) Option {
	return func(s *Server) {
		s.upgrader.CheckOrigin = check
	}
}

// NewServer creates a server for sessions. It fails if the embedded API
// description is invalid.
func NewServer(sessions *session.Manager, opts ...Option) (*Server, error) {
	spec, err := loadSpec()
	if err != nil {
		return nil, err
	}
	s := &Server{
		Sessions: sessions,
		Streams:  NewStreamManager(),
		logger:   logging.NewNop(),
		spec:     spec,
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams.logger = s.logger
	return s, nil
}

func loadSpec() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	spec, err := loader.LoadFromData(rawSpec)
	if err != nil {
		return nil, fmt.Errorf("failed to load OpenAPI spec: %w", err)
	}
	if err := spec.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("invalid OpenAPI spec: %w", err)
	}
	return spec, nil
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(rawSpec)
	})
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	r.Get("/health", s.getHealth)
	r.Get("/info", s.getInfo)

	v := r.With(s.validate)
	v.Get("/sessions", s.listSessions)
	v.Get("/sessions/{id}", s.inspectSession)
	v.Delete("/sessions/{id}", s.deleteSession)
	v.Post("/sessions/{id}/events", s.postEvent)
	v.Put("/sessions/{id}/triggers/{name}", s.setTrigger)
	v.Post("/sessions/{id}/commands", s.runCommand)
	v.Post("/sessions/{id}/tick", s.tick)
	v.Get("/sessions/{id}/graph", s.getGraph)
	v.Get("/sessions/{id}/stream", s.streamSession)

	return enableCORS(r)
}

// Do runs fn against the session's player under its lock and broadcasts
// the notifications and the snapshot diff it produced.
func (s *Server) Do(ctx context.Context, sessionID string, fn func(context.Context, *kinema.Player) error) error {
	return s.Sessions.Do(ctx, sessionID, func(ctx context.Context, p *kinema.Player) error {
		collector := runner.NewCollector(sessionID, false)
		detach := collector.Attach(p)
		defer detach()

		before := p.Snapshot()
		before.ID = sessionID
		err := fn(ctx, p)
		after := p.Snapshot()
		after.ID = sessionID

		for _, n := range collector.Drain() {
			n := n
			s.Streams.Broadcast(sessionID, Message{Event: &n})
		}
		if diff := domain.Diff(&before, &after); diff != nil {
			s.Streams.Broadcast(sessionID, Message{Diff: diff})
		}
		return err
	})
}

// TickAll advances every live session by elapsed. Failures are logged and
// do not stop the other sessions.
func (s *Server) TickAll(ctx context.Context, elapsed time.Duration) {
	for _, id := range s.Sessions.Active() {
		err := s.Do(ctx, id, func(ctx context.Context, p *kinema.Player) error {
			return runner.Advance(p, elapsed)
		})
		if err != nil {
			s.logger.Warn("Tick failed", "session_id", id, "err", err)
		}
	}
}

// Drive calls TickAll at fps until ctx is done.
func (s *Server) Drive(ctx context.Context, fps float64) {
	if fps <= 0 {
		fps = runner.DefaultFPS
	}
	interval := time.Duration(float64(time.Second) / fps)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.TickAll(ctx, now.Sub(last))
			last = now
		}
	}
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("Request failed", "err", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest), errors.Is(err, domain.ErrInvalidParameter):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrSnapshotNotFound), errors.Is(err, domain.ErrNotLoaded):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrStateMachine), errors.Is(err, domain.ErrLoad):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
