package dispatch

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/abdul-hamid-achik/urlmock/packages/core/config"
	"github.com/abdul-hamid-achik/urlmock/packages/http"
	"github.com/abdul-hamid-achik/urlmock/packages/mockstore"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Call is one logical request.
type Call struct {
	Method        http.Method
	Endpoint      string
	Params        http.Params
	Authenticated bool
}

// Result is what a dispatch delivers. OK is false when no value is present;
// Code is the HTTP status (400 for forced failures, 200 for replays, 0 when
// no response was received).
type Result[T any] struct {
	Value T
	OK    bool
	Code  int
	Err   error
}

// Session dispatches calls under one RuntimeConfig.
type Session struct {
	cfg       config.RuntimeConfig
	store     *mockstore.Store
	transport Transport
	codec     Codec
	executor  Executor
	builder   *http.Builder
	logger    *zap.Logger

	ownedQueue *MainQueue
}

// Option is a functional option for Session
type Option func(*Session)

// WithTransport replaces the default http.Client transport
func WithTransport(t Transport) Option {
	return func(s *Session) {
		s.transport = t
	}
}

// WithCodec replaces the default JSON codec
func WithCodec(c Codec) Option {
	return func(s *Session) {
		s.codec = c
	}
}

// WithExecutor sets where completions run. The caller keeps ownership.
func WithExecutor(e Executor) Option {
	return func(s *Session) {
		s.executor = e
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSession creates a Session. store may be nil, in which case replays
// always miss and nothing is captured. Without WithExecutor the session
// starts its own MainQueue, released by Close.
func NewSession(cfg config.RuntimeConfig, store *mockstore.Store, opts ...Option) *Session {
	s := &Session{
		cfg:    cfg,
		store:  store,
		codec:  JSONCodec{},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.transport == nil {
		s.transport = http.NewClient(http.WithLogger(s.logger))
	}
	if s.executor == nil {
		s.ownedQueue = NewMainQueue()
		s.executor = s.ownedQueue
	}
	s.builder = http.NewBuilder(s.logger)
	return s
}

// Config returns the session's configuration snapshot.
func (s *Session) Config() config.RuntimeConfig {
	return s.cfg
}

// WithConfig returns a Session sharing collaborators with s but using cfg.
// Only s owns the executor it may have started.
func (s *Session) WithConfig(cfg config.RuntimeConfig) *Session {
	clone := *s
	clone.cfg = cfg
	clone.ownedQueue = nil
	return &clone
}

// Close stops the executor the session started, after running the
// completions already queued.
func (s *Session) Close() error {
	if s.ownedQueue != nil {
		s.ownedQueue.Close()
	}
	return nil
}

// Dispatch resolves call in the background and hands the result to done on
// the session executor. done runs exactly once.
func Dispatch[T any](ctx context.Context, s *Session, call Call, done func(Result[T])) {
	go func() {
		res := resolve[T](ctx, s, call)
		s.executor.Run(func() { done(res) })
	}()
}

// Do dispatches call and waits for its result. It must not be called from a
// callback running on the same single-goroutine executor.
func Do[T any](ctx context.Context, s *Session, call Call) Result[T] {
	ch := make(chan Result[T], 1)
	Dispatch(ctx, s, call, func(r Result[T]) { ch <- r })
	return <-ch
}

func resolve[T any](ctx context.Context, s *Session, call Call) Result[T] {
	logger := s.logger.With(
		zap.String("request_id", uuid.NewString()),
		zap.String("method", string(call.Method)),
		zap.String("endpoint", call.Endpoint),
	)

	switch {
	case s.cfg.ForceFailure:
		logger.Debug("forced failure")
		return Result[T]{Code: 400, Err: ErrForcedFailure}
	case s.cfg.ForceReplay:
		return replay[T](s, call, logger)
	default:
		return live[T](ctx, s, call, logger)
	}
}

func replay[T any](s *Session, call Call, logger *zap.Logger) Result[T] {
	var data []byte
	found := false
	if s.store != nil {
		data, found = s.store.Lookup(call.Endpoint)
	}
	if !found {
		logger.Debug("no fixture to replay")
		return Result[T]{Code: 200, Err: ErrFixtureMissing}
	}

	value, err := decode[T](s.codec, data)
	if err != nil {
		logger.Warn("fixture does not decode into expected type", zap.Error(err))
		return Result[T]{Code: 200, Err: fmt.Errorf("%w: %w", ErrDecode, err)}
	}

	logger.Debug("fixture replayed", zap.Int("bytes", len(data)))
	return Result[T]{Value: value, OK: true, Code: 200}
}

func live[T any](ctx context.Context, s *Session, call Call, logger *zap.Logger) Result[T] {
	req, err := s.builder.Build(call.Method, call.Endpoint, call.Params, call.Authenticated, s.cfg)
	if err != nil {
		logger.Warn("failed to build request", zap.Error(err))
		return Result[T]{Err: err}
	}

	resp, err := s.transport.Send(ctx, req)
	if err != nil {
		code := 0
		if resp != nil {
			code = resp.StatusCode
		}
		logger.Warn("request failed", zap.Int("status", code), zap.Error(err))
		return Result[T]{Code: code, Err: fmt.Errorf("%w: %w", ErrTransport, err)}
	}

	if resp.IsEmpty() {
		logger.Debug("empty response body", zap.Int("status", resp.StatusCode))
		return Result[T]{Code: resp.StatusCode}
	}

	if s.cfg.MockEnabled && s.store != nil && utf8.Valid(resp.Body) {
		s.store.Capture(call.Endpoint, string(resp.Body), resp.StatusCode)
	}

	value, err := decode[T](s.codec, resp.Body)
	if err != nil {
		logger.Warn("response does not decode into expected type",
			zap.String("type", fmt.Sprintf("%T", value)),
			zap.Int("status", resp.StatusCode),
			zap.Error(err),
		)
		return Result[T]{Code: resp.StatusCode, Err: fmt.Errorf("%w: %w", ErrDecode, err)}
	}

	return Result[T]{Value: value, OK: true, Code: resp.StatusCode}
}

// decode treats string and []byte targets as raw text and hands everything
// else to the codec.
func decode[T any](codec Codec, data []byte) (T, error) {
	var value T
	switch p := any(&value).(type) {
	case *string:
		*p = string(data)
		return value, nil
	case *[]byte:
		*p = append([]byte(nil), data...)
		return value, nil
	}
	if err := codec.Decode(data, &value); err != nil {
		var zero T
		return zero, err
	}
	return value, nil
}
