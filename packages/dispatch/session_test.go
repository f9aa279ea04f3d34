package dispatch

import (
	"context"
	"errors"
	nethttp "net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/abdul-hamid-achik/urlmock/packages/core/config"
	"github.com/abdul-hamid-achik/urlmock/packages/http"
	"github.com/abdul-hamid-achik/urlmock/packages/mockstore"
	"github.com/abdul-hamid-achik/urlmock/packages/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type user struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// countingTransport records calls and answers with a fixed response.
type countingTransport struct {
	calls atomic.Int32
	resp  *http.Response
	err   error
}

func (c *countingTransport) Send(ctx context.Context, req *http.Request) (*http.Response, error) {
	c.calls.Add(1)
	return c.resp, c.err
}

// countingExecutor runs callbacks on new goroutines and counts them.
type countingExecutor struct {
	runs atomic.Int32
}

func (c *countingExecutor) Run(fn func()) {
	c.runs.Add(1)
	go fn()
}

func newStore(t *testing.T) *mockstore.Store {
	t.Helper()
	return mockstore.New(t.TempDir(), settings.NewMemoryStore())
}

func newSession(t *testing.T, cfg config.RuntimeConfig, store *mockstore.Store, opts ...Option) *Session {
	t.Helper()
	s := NewSession(cfg, store, opts...)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func liveConfig(baseURL string) config.RuntimeConfig {
	return config.RuntimeConfig{
		BaseURL:     baseURL,
		Timeout:     2 * time.Second,
		MockEnabled: true,
	}
}

func getUser() Call {
	return Call{Method: http.MethodGet, Endpoint: "/users/1"}
}

// await collects exactly one delivery, failing on timeout or on a second one.
func await[T any](t *testing.T, s *Session, call Call) Result[T] {
	t.Helper()
	ch := make(chan Result[T], 2)
	Dispatch(context.Background(), s, call, func(r Result[T]) { ch <- r })

	var res Result[T]
	select {
	case res = <-ch:
	case <-time.After(3 * time.Second):
		t.Fatal("dispatch did not complete")
	}
	select {
	case <-ch:
		t.Fatal("dispatch completed twice")
	case <-time.After(50 * time.Millisecond):
	}
	return res
}

func TestDispatch_ForceFailure(t *testing.T) {
	store := newStore(t)
	store.Capture("/users/1", `{"id":1,"name":"Ada"}`, 200)

	configs := []config.RuntimeConfig{
		{ForceFailure: true},
		{ForceFailure: true, ForceReplay: true},
		{ForceFailure: true, MockEnabled: true, BaseURL: "http://localhost"},
	}

	for _, cfg := range configs {
		transport := &countingTransport{}
		s := newSession(t, cfg, store, WithTransport(transport))

		res := await[user](t, s, getUser())

		assert.False(t, res.OK)
		assert.Equal(t, 400, res.Code)
		assert.ErrorIs(t, res.Err, ErrForcedFailure)
		assert.Zero(t, res.Value)
		assert.Equal(t, int32(0), transport.calls.Load())
	}
}

func TestDispatch_ForceFailureTakesPrecedenceOverReplay(t *testing.T) {
	store := newStore(t)
	store.Capture("/users/1", `{"id":1,"name":"Ada"}`, 200)

	s := newSession(t, config.RuntimeConfig{ForceFailure: true, ForceReplay: true}, store)
	res := Do[user](context.Background(), s, getUser())

	assert.Equal(t, 400, res.Code)
	assert.False(t, res.OK)

	replay := Do[user](context.Background(), s.WithConfig(config.RuntimeConfig{ForceReplay: true}), getUser())
	assert.Equal(t, 200, replay.Code)
	assert.True(t, replay.OK)
}

func TestDispatch_ReplayMissingFixture(t *testing.T) {
	transport := &countingTransport{}
	s := newSession(t, config.RuntimeConfig{ForceReplay: true}, newStore(t), WithTransport(transport))

	res := await[user](t, s, getUser())

	assert.False(t, res.OK)
	assert.Equal(t, 200, res.Code)
	assert.ErrorIs(t, res.Err, ErrFixtureMissing)
	assert.Equal(t, int32(0), transport.calls.Load())
}

func TestDispatch_ReplayWithoutStore(t *testing.T) {
	s := newSession(t, config.RuntimeConfig{ForceReplay: true}, nil)

	res := await[user](t, s, getUser())

	assert.False(t, res.OK)
	assert.Equal(t, 200, res.Code)
}

func TestDispatch_ReplayFixture(t *testing.T) {
	store := newStore(t)
	store.Capture("/users/1", `{"id": 1, "name": "Ada"}`, 201)
	transport := &countingTransport{}
	s := newSession(t, config.RuntimeConfig{ForceReplay: true}, store, WithTransport(transport))

	res := await[user](t, s, getUser())

	require.True(t, res.OK)
	assert.Equal(t, 200, res.Code, "replays always report 200")
	assert.Equal(t, user{ID: 1, Name: "Ada"}, res.Value)
	assert.NoError(t, res.Err)
	assert.Equal(t, int32(0), transport.calls.Load())
}

func TestDispatch_ReplayRawText(t *testing.T) {
	store := newStore(t)
	store.Capture("/users/1", `{"name": "Ada", "id": 1}`, 200)
	s := newSession(t, config.RuntimeConfig{ForceReplay: true}, store)

	res := await[string](t, s, getUser())
	require.True(t, res.OK)
	assert.Equal(t, `{"id":1,"name":"Ada"}`, res.Value)

	raw := await[[]byte](t, s, getUser())
	require.True(t, raw.OK)
	assert.JSONEq(t, `{"id":1,"name":"Ada"}`, string(raw.Value))
}

func TestDispatch_ReplayDecodeFailure(t *testing.T) {
	store := newStore(t)
	store.Capture("/users/1", `["not", "a", "user"]`, 200)
	s := newSession(t, config.RuntimeConfig{ForceReplay: true}, store)

	res := await[user](t, s, getUser())

	assert.False(t, res.OK)
	assert.Equal(t, 200, res.Code)
	assert.ErrorIs(t, res.Err, ErrDecode)
}

func TestDispatch_LiveCapturesThenReplays(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		hits.Add(1)
		assert.Equal(t, "/users/1", r.URL.Path)
		w.WriteHeader(nethttp.StatusCreated)
		_, _ = w.Write([]byte(`{"id": 1, "name": "Ada"}`))
	}))
	defer server.Close()

	store := newStore(t)
	s := newSession(t, liveConfig(server.URL), store)

	res := await[user](t, s, getUser())
	require.True(t, res.OK)
	assert.Equal(t, 201, res.Code)
	assert.Equal(t, user{ID: 1, Name: "Ada"}, res.Value)

	record, ok := store.Get("/users/1")
	require.True(t, ok)
	assert.Equal(t, 201, record.ResponseCode)

	replayCfg := liveConfig(server.URL)
	replayCfg.ForceReplay = true
	replayed := await[user](t, s.WithConfig(replayCfg), getUser())

	require.True(t, replayed.OK)
	assert.Equal(t, 200, replayed.Code)
	assert.Equal(t, res.Value, replayed.Value)
	assert.Equal(t, int32(1), hits.Load(), "replay must not reach the server")
}

func TestDispatch_LiveWithoutMockDoesNotCapture(t *testing.T) {
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		_, _ = w.Write([]byte(`{"id": 2}`))
	}))
	defer server.Close()

	store := newStore(t)
	cfg := liveConfig(server.URL)
	cfg.MockEnabled = false
	s := newSession(t, cfg, store)

	res := await[user](t, s, getUser())
	require.True(t, res.OK)
	assert.Equal(t, 2, res.Value.ID)

	_, ok := store.Lookup("/users/1")
	assert.False(t, ok)
	assert.Empty(t, store.ListAll())
}

func TestDispatch_LiveDecodeFailureStillDelivers(t *testing.T) {
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.WriteHeader(nethttp.StatusOK)
		_, _ = w.Write([]byte(`{"id": "not-a-number"}`))
	}))
	defer server.Close()

	store := newStore(t)
	s := newSession(t, liveConfig(server.URL), store)

	res := await[user](t, s, getUser())

	assert.False(t, res.OK)
	assert.Equal(t, 200, res.Code)
	assert.ErrorIs(t, res.Err, ErrDecode)

	_, ok := store.Lookup("/users/1")
	assert.True(t, ok, "capture happens before decoding")
}

func TestDispatch_LiveNonJSONBodyNotCaptured(t *testing.T) {
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		_, _ = w.Write([]byte(`plain text`))
	}))
	defer server.Close()

	store := newStore(t)
	s := newSession(t, liveConfig(server.URL), store)

	res := await[string](t, s, getUser())

	require.True(t, res.OK)
	assert.Equal(t, "plain text", res.Value)
	assert.Empty(t, store.ListAll(), "invalid JSON is dropped by the store")
}

func TestDispatch_LiveEmptyBody(t *testing.T) {
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.WriteHeader(nethttp.StatusNoContent)
	}))
	defer server.Close()

	store := newStore(t)
	s := newSession(t, liveConfig(server.URL), store)

	res := await[user](t, s, Call{Method: http.MethodDelete, Endpoint: "/users/1"})

	assert.False(t, res.OK)
	assert.Equal(t, 204, res.Code)
	assert.NoError(t, res.Err)
	assert.Empty(t, store.ListAll())
}

func TestDispatch_LiveTransportError(t *testing.T) {
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {}))
	baseURL := server.URL
	server.Close()

	s := newSession(t, liveConfig(baseURL), newStore(t))

	res := await[user](t, s, getUser())

	assert.False(t, res.OK)
	assert.Equal(t, 0, res.Code)
	assert.ErrorIs(t, res.Err, ErrTransport)
}

func TestDispatch_TransportErrorWithStatus(t *testing.T) {
	transport := &countingTransport{
		resp: &http.Response{StatusCode: 502},
		err:  errors.New("connection reset while reading body"),
	}
	s := newSession(t, liveConfig("http://localhost"), newStore(t), WithTransport(transport))

	res := await[user](t, s, getUser())

	assert.Equal(t, 502, res.Code)
	assert.ErrorIs(t, res.Err, ErrTransport)
	assert.Equal(t, int32(1), transport.calls.Load())
}

func TestDispatch_InvalidBaseURL(t *testing.T) {
	transport := &countingTransport{}
	s := newSession(t, liveConfig(""), newStore(t), WithTransport(transport))

	res := await[user](t, s, getUser())

	assert.Equal(t, 0, res.Code)
	assert.ErrorIs(t, res.Err, http.ErrInvalidURL)
	assert.Equal(t, int32(0), transport.calls.Load())
}

func TestDispatch_SendsBuiltRequest(t *testing.T) {
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "ios", r.Header.Get("X-Client"))
		_, _ = w.Write([]byte(`{"id": 9, "name": "new"}`))
	}))
	defer server.Close()

	cfg := liveConfig(server.URL)
	cfg.Token = "secret"
	cfg.Headers = []config.Header{{Name: "X-Client", Value: "ios"}}
	s := newSession(t, cfg, newStore(t))

	res := await[user](t, s, Call{
		Method:        http.MethodPost,
		Endpoint:      "/users",
		Params:        http.Params{"name": http.String("new")},
		Authenticated: true,
	})

	require.True(t, res.OK)
	assert.Equal(t, 9, res.Value.ID)
}

func TestDispatch_CompletesOnExecutor(t *testing.T) {
	executor := &countingExecutor{}
	s := newSession(t, config.RuntimeConfig{ForceFailure: true}, nil, WithExecutor(executor))

	var onCallerStack atomic.Bool
	returned := make(chan struct{})
	done := make(chan struct{})

	Dispatch(context.Background(), s, getUser(), func(r Result[user]) {
		select {
		case <-returned:
		default:
			onCallerStack.Store(true)
		}
		close(done)
	})
	close(returned)

	<-done
	assert.False(t, onCallerStack.Load())
	assert.Equal(t, int32(1), executor.runs.Load())
}

func TestDispatch_ConcurrentCapturesOfDistinctEndpoints(t *testing.T) {
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		_, _ = w.Write([]byte(`{"path":"` + r.URL.Path + `"}`))
	}))
	defer server.Close()

	store := newStore(t)
	s := newSession(t, liveConfig(server.URL), store)

	endpoints := []string{"/a", "/b", "/c", "/d", "/e", "/f"}
	var wg sync.WaitGroup
	for _, endpoint := range endpoints {
		wg.Add(1)
		Dispatch(context.Background(), s, Call{Method: http.MethodGet, Endpoint: endpoint}, func(r Result[map[string]string]) {
			defer wg.Done()
			assert.True(t, r.OK)
		})
	}
	wg.Wait()

	assert.Len(t, store.ListAll(), len(endpoints))
}
