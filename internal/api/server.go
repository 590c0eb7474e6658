package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// Routes registers a feature's endpoints on the router.
type Routes func(r *mux.Router)

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Server struct {
	router *mux.Router
	http   *http.Server
	log    *slog.Logger
}

func NewServer(addr string, log *slog.Logger, store Pinger, routes ...Routes) *Server {
	router := mux.NewRouter()
	router.Use(RequestID())
	router.Use(Logger(log))
	router.Use(Recoverer(log))

	server := &Server{
		router: router,
		log:    log,
		http: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}
	server.setupRoutes(store, routes)
	return server
}

func (s *Server) setupRoutes(store Pinger, routes []Routes) {
	s.router.HandleFunc("/healthz", healthCheck(store)).Methods(http.MethodGet)
	for _, register := range routes {
		register(s.router)
	}
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run blocks serving HTTP until Shutdown is called.
func (s *Server) Run() error {
	s.log.Info("Starting HTTP server", "address", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func healthCheck(store Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if store != nil {
			if err := store.PingContext(ctx); err != nil {
				WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
