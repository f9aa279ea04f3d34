// Package proxy provides a reverse proxy that records the responses it
// forwards as mock fixtures.
package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/abdul-hamid-achik/urlmock/packages/mockstore"
	"go.uber.org/zap"
)

// Recording summarizes one proxied exchange
type Recording struct {
	Timestamp  time.Time
	Method     string
	Path       string
	StatusCode int
	Captured   bool
	Duration   time.Duration
}

type recordingKey struct{}

// Recorder is an HTTP proxy that captures responses into a mock store
type Recorder struct {
	port        int
	targetURL   string
	store       *mockstore.Store
	exclude     []string
	deduplicate bool
	logger      *zap.Logger

	mutex      sync.Mutex
	recordings []Recording
	seen       map[string]bool
}

// Option is a functional option for Recorder
type Option func(*Recorder)

// WithPort sets the proxy port
func WithPort(port int) Option {
	return func(r *Recorder) {
		r.port = port
	}
}

// WithTargetURL sets the target URL to proxy to
func WithTargetURL(target string) Option {
	return func(r *Recorder) {
		r.targetURL = target
	}
}

// WithExclude sets paths to exclude from recording
func WithExclude(paths []string) Option {
	return func(r *Recorder) {
		r.exclude = paths
	}
}

// WithDeduplicate keeps the first captured response per endpoint
func WithDeduplicate(enabled bool) Option {
	return func(r *Recorder) {
		r.deduplicate = enabled
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(r *Recorder) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRecorder creates a new recording proxy writing into store
func NewRecorder(store *mockstore.Store, opts ...Option) *Recorder {
	r := &Recorder{
		port:       8080,
		store:      store,
		logger:     zap.NewNop(),
		recordings: make([]Recording, 0),
		seen:       make(map[string]bool),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Handler returns the proxy handler without starting a listener
func (r *Recorder) Handler() (http.Handler, error) {
	if r.targetURL == "" {
		return nil, fmt.Errorf("target URL is required")
	}

	target, err := url.Parse(r.targetURL)
	if err != nil {
		return nil, fmt.Errorf("invalid target URL: %w", err)
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("invalid target URL: %q", r.targetURL)
	}

	proxy := &httputil.ReverseProxy{
		Director: func(req *http.Request) {
			req.URL.Scheme = target.Scheme
			req.URL.Host = target.Host
			req.Host = target.Host
			// fixtures are stored decoded
			req.Header.Del("Accept-Encoding")
		},
		ModifyResponse: r.recordResponse,
	}

	return r.wrap(proxy), nil
}

// StartWithContext starts the proxy and shuts it down when ctx is done
func (r *Recorder) StartWithContext(ctx context.Context) error {
	handler, err := r.Handler()
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", r.port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	r.logger.Info("recording proxy started",
		zap.Int("port", r.port),
		zap.String("target", r.targetURL),
		zap.String("fixtures", r.store.Dir()),
	)

	err = server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return fmt.Errorf("listen on port %d: %w", r.port, err)
	}
	return err
}

func (r *Recorder) wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if r.shouldExclude(req.URL.Path) {
			r.logger.Debug("excluded", zap.String("method", req.Method), zap.String("path", req.URL.Path))
			next.ServeHTTP(w, req)
			return
		}

		recording := &Recording{
			Timestamp: time.Now(),
			Method:    req.Method,
			Path:      req.URL.Path,
		}
		ctx := context.WithValue(req.Context(), recordingKey{}, recording)
		next.ServeHTTP(w, req.WithContext(ctx))
	})
}

func (r *Recorder) recordResponse(resp *http.Response) error {
	recording, ok := resp.Request.Context().Value(recordingKey{}).(*Recording)
	if !ok {
		return nil
	}

	var body []byte
	if resp.Body != nil {
		var err error
		body, err = io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("read upstream body: %w", err)
		}
		resp.Body = io.NopCloser(bytes.NewReader(body))
	}

	recording.StatusCode = resp.StatusCode
	recording.Duration = time.Since(recording.Timestamp)

	if r.capturable(resp, body) && r.claim(recording.Path) {
		r.store.Capture(recording.Path, string(body), resp.StatusCode)
		_, recording.Captured = r.store.Lookup(recording.Path)
	}

	r.mutex.Lock()
	r.recordings = append(r.recordings, *recording)
	r.mutex.Unlock()

	r.logger.Info("proxied",
		zap.String("method", recording.Method),
		zap.String("path", recording.Path),
		zap.Int("status", recording.StatusCode),
		zap.Bool("captured", recording.Captured),
		zap.Duration("duration", recording.Duration),
	)
	return nil
}

func (r *Recorder) capturable(resp *http.Response, body []byte) bool {
	if len(body) == 0 || !utf8.Valid(body) || !json.Valid(body) {
		return false
	}
	if enc := resp.Header.Get("Content-Encoding"); enc != "" && enc != "identity" {
		return false
	}
	return true
}

// claim reports whether path may be captured, marking it seen when
// deduplicating.
func (r *Recorder) claim(path string) bool {
	if !r.deduplicate {
		return true
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.seen[path] {
		return false
	}
	r.seen[path] = true
	return true
}

func (r *Recorder) shouldExclude(path string) bool {
	for _, exclude := range r.exclude {
		if exclude != "" && strings.Contains(path, exclude) {
			return true
		}
	}
	return false
}

// GetRecordings returns all proxied exchanges
func (r *Recorder) GetRecordings() []Recording {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	result := make([]Recording, len(r.recordings))
	copy(result, r.recordings)
	return result
}

// Clear forgets the proxied exchanges and the deduplication state
func (r *Recorder) Clear() {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.recordings = make([]Recording, 0)
	r.seen = make(map[string]bool)
}
