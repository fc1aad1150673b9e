package http

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"
	"sync"
	"time"

	applog "costs/internal/log"
	"costs/internal/metrics"
	"costs/internal/middleware/security"
	"costs/internal/middleware/trace"
	"costs/internal/services"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies are the collaborators a Server needs. Store may be nil, in
// which case /readyz always answers ready.
type Dependencies struct {
	Costs   *services.CostService
	Reports *services.ReportService
	Users   *services.UserService
	Team    *services.TeamService
	Store   Pinger

	Location           *time.Location
	ExposeErrorDetails bool
	CORSAllowedOrigins []string
	Logger             *applog.Logger
}

type Server struct {
	http.Server

	costs   *services.CostService
	reports *services.ReportService
	users   *services.UserService
	team    *services.TeamService
	store   Pinger

	loc           *time.Location
	exposeDetails bool

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run http.Server.
func NewServer(addr string, deps Dependencies) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}

	s := &Server{
		costs:         deps.Costs,
		reports:       deps.Reports,
		users:         deps.Users,
		team:          deps.Team,
		store:         deps.Store,
		loc:           loc,
		exposeDetails: deps.ExposeErrorDetails,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/add", s.handleAddCost)
	mux.HandleFunc("GET /api/report", s.handleReport)
	mux.HandleFunc("GET /api/users/{id}", s.handleUser)
	mux.HandleFunc("GET /api/about", s.handleAbout)
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("/", handleNotFound)

	// Outermost first. trace must stay next to recoverer and the mux: it
	// reads the matched pattern off the request it hands down.
	tracer := trace.NewMiddleware(logger, extractClientIP)
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	var handler http.Handler = mux
	handler = s.recoverer(handler)
	handler = tracer.Middleware(handler)
	handler = headers.Middleware(handler)
	handler = security.CORS(deps.CORSAllowedOrigins)(handler)
	handler = applog.Middleware(logger)(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// recoverer turns a handler panic into a 500 internal_error response.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			applog.FromContext(r.Context()).ErrorContext(r.Context(), "Handler panicked",
				applog.FieldError, fmt.Sprint(rec),
				"stack", string(debug.Stack()))
			InternalError().Send(w)
		}()
		next.ServeHTTP(w, r)
	})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if s.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.store.Ping(ctx); err != nil {
			applog.FromContext(ctx).WarnContext(ctx, "Readiness check failed", applog.FieldError, err.Error())
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("store unavailable"))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func handleNotFound(w http.ResponseWriter, r *http.Request) {
	NotFoundError("API endpoint not found").Send(w)
}
