// Package mock provides an HTTP server that replays recorded fixtures.
package mock

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/abdul-hamid-achik/urlmock/packages/mockstore"
	"go.uber.org/zap"
)

// Server answers requests with the fixtures of a mock store
type Server struct {
	router *Router
	store  *mockstore.Store
	port   int
	delay  time.Duration
	watch  bool
	logger *zap.Logger
}

// Option is a functional option for Server
type Option func(*Server)

// WithPort sets the server port
func WithPort(port int) Option {
	return func(s *Server) {
		s.port = port
	}
}

// WithDelay adds a delay to all responses
func WithDelay(delay time.Duration) Option {
	return func(s *Server) {
		s.delay = delay
	}
}

// WithWatch reloads routes when fixture files change
func WithWatch(watch bool) Option {
	return func(s *Server) {
		s.watch = watch
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a replay server over store. Routes are loaded by Reload.
func NewServer(store *mockstore.Store, opts ...Option) *Server {
	s := &Server{
		router: NewRouter(),
		store:  store,
		port:   3000,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reload rebuilds the routes from the catalog. Entries without a readable
// fixture file are skipped.
func (s *Server) Reload() int {
	var routes []*Route
	for _, record := range s.store.ListAll() {
		if !record.HasContent() || record.Endpoint == "" {
			continue
		}
		code := record.ResponseCode
		if code == 0 {
			code = http.StatusOK
		}
		routes = append(routes, &Route{
			Endpoint: record.Endpoint,
			FileName: record.FileName,
			Response: &MockResponse{
				StatusCode:  code,
				ContentType: "application/json",
				Body:        []byte(record.Content),
			},
		})
	}
	s.router.Replace(routes)
	s.logger.Debug("routes loaded", zap.Int("routes", len(routes)))
	return len(routes)
}

// Handler returns the replay handler
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRequest)
	return mux
}

// StartWithContext loads routes, serves until ctx is done, and reloads on
// fixture changes when watching is enabled
func (s *Server) StartWithContext(ctx context.Context) error {
	n := s.Reload()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if s.watch {
		go func() {
			err := s.store.Watch(ctx, func(ev mockstore.Event) {
				s.logger.Info("fixture changed", zap.String("file", ev.FileName), zap.String("op", string(ev.Op)))
				s.Reload()
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				s.logger.Warn("fixture watch stopped", zap.Error(err))
			}
		}()
	}

	s.logger.Info("replay server started",
		zap.Int("port", s.port),
		zap.Int("routes", n),
		zap.String("fixtures", s.store.Dir()),
	)

	err := server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) handleRequest(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-r.Context().Done():
			return
		}
	}

	route := s.router.Match(r.URL.Path)
	if route == nil {
		s.logger.Info("no fixture",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)),
		)
		http.NotFound(w, r)
		return
	}

	resp := route.Response
	w.Header().Set("Content-Type", resp.ContentType)
	w.WriteHeader(resp.StatusCode)
	_, _ = w.Write(resp.Body)

	s.logger.Info("replayed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)
}

// GetRoutes returns the loaded routes sorted by endpoint
func (s *Server) GetRoutes() []*Route {
	s.router.mu.RLock()
	routes := make([]*Route, 0, len(s.router.routes))
	for _, route := range s.router.routes {
		routes = append(routes, route)
	}
	s.router.mu.RUnlock()

	sort.Slice(routes, func(i, j int) bool {
		return routes[i].Endpoint < routes[j].Endpoint
	})
	return routes
}
