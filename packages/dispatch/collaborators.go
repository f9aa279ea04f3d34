package dispatch

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/abdul-hamid-achik/urlmock/packages/http"
)

// Transport sends a built request. When a response was received but the
// exchange still failed, it returns that response along with the error.
type Transport interface {
	Send(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Codec decodes response bodies.
type Codec interface {
	Decode(data []byte, v any) error
}

// JSONCodec decodes with encoding/json.
type JSONCodec struct{}

func (JSONCodec) Decode(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// Executor runs completion callbacks on the context the caller designated.
type Executor interface {
	Run(fn func())
}

// GoExecutor runs every callback on its own goroutine.
type GoExecutor struct{}

func (GoExecutor) Run(fn func()) {
	go fn()
}

// MainQueue runs callbacks one at a time, in submission order, on a single
// goroutine. Run never blocks. Callbacks submitted after Close run on their
// own goroutine.
type MainQueue struct {
	mu     sync.Mutex
	queue  []func()
	closed bool
	wake   chan struct{}
	done   chan struct{}
}

// NewMainQueue starts the queue goroutine.
func NewMainQueue() *MainQueue {
	q := &MainQueue{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go q.loop()
	return q
}

func (q *MainQueue) Run(fn func()) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		go fn()
		return
	}
	q.queue = append(q.queue, fn)
	q.mu.Unlock()
	q.signal()
}

// Close runs the callbacks already queued and stops the goroutine.
func (q *MainQueue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.signal()
	<-q.done
}

func (q *MainQueue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *MainQueue) loop() {
	defer close(q.done)
	for {
		q.mu.Lock()
		if len(q.queue) == 0 {
			closed := q.closed
			q.mu.Unlock()
			if closed {
				return
			}
			<-q.wake
			continue
		}
		fn := q.queue[0]
		q.queue[0] = nil
		q.queue = q.queue[1:]
		q.mu.Unlock()

		fn()
	}
}
