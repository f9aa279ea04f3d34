package mock

import (
	"strings"
	"sync"
)

// Route maps one recorded endpoint to its replayed response
type Route struct {
	Endpoint string
	FileName string
	Response *MockResponse
}

// MockResponse represents a mock HTTP response
type MockResponse struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// Router matches incoming request paths to routes
type Router struct {
	mu     sync.RWMutex
	routes map[string]*Route
}

// NewRouter creates a new router
func NewRouter() *Router {
	return &Router{
		routes: make(map[string]*Route),
	}
}

// Replace swaps the whole route table
func (r *Router) Replace(routes []*Route) {
	table := make(map[string]*Route, len(routes))
	for _, route := range routes {
		table[normalizePath(route.Endpoint)] = route
	}
	r.mu.Lock()
	r.routes = table
	r.mu.Unlock()
}

// Match finds the route recorded for path
func (r *Router) Match(path string) *Route {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.routes[normalizePath(path)]
}

// Len returns the number of routes
func (r *Router) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.routes)
}

func normalizePath(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 && strings.HasSuffix(path, "/") {
		path = path[:len(path)-1]
	}
	return path
}
