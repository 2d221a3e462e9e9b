package queue

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultWorkers = 2
	channelBuffer  = 128
	jobTimeout     = 30 * time.Second
)

// ResetRequester is the use case a worker runs for each queued email.
type ResetRequester interface {
	RequestPasswordReset(ctx context.Context, email string) error
}

// Dispatcher runs password reset requests off the request path so that the
// HTTP response does not reveal, by its timing, whether an email is
// registered. Emails are sharded with consistent hashing so requests for one
// address run in order on one worker.
type Dispatcher struct {
	workers []chan string
	service ResetRequester
	log     zerolog.Logger
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service ResetRequester, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan string, numWorkers),
		service: service,
		log:     log.With().Str("component", "reset_dispatcher").Logger(),
		timeout: jobTimeout,
	}
	for i := range d.workers {
		d.workers[i] = make(chan string, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled or
// after Stop has drained their queues.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands email to its worker without blocking. It returns false when
// the worker queue is full or the dispatcher is stopped.
func (d *Dispatcher) Enqueue(email string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return false
	}

	select {
	case d.workers[d.shardIndex(email)] <- email:
		return true
	default:
		d.log.Warn().Msg("reset queue full, request dropped")
		return false
	}
}

// Stop closes the queues and waits for the workers to drain them.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, ch := range d.workers {
		close(ch)
	}
	d.mu.Unlock()

	d.wg.Wait()
}

// shardIndex maps an email deterministically to a worker index.
func (d *Dispatcher) shardIndex(email string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(email))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan string) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case email, ok := <-ch:
			if !ok {
				return
			}
			d.process(ctx, id, email)
		}
	}
}

func (d *Dispatcher) process(ctx context.Context, id int, email string) {
	jobCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	if err := d.service.RequestPasswordReset(jobCtx, email); err != nil {
		d.log.Error().Err(err).
			Int("worker_id", id).
			Msg("password reset request failed")
	}
}
