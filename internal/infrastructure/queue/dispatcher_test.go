package queue

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

type recordingRequester struct {
	mu     sync.Mutex
	emails []string
	err     error
	entered chan struct{}
	block   chan struct{}
}

func (r *recordingRequester) RequestPasswordReset(_ context.Context, email string) error {
	if r.entered != nil {
		select {
		case r.entered <- struct{}{}:
		default:
		}
	}
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.emails = append(r.emails, email)
	return r.err
}

func (r *recordingRequester) seen() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.emails...)
}

func TestDispatcher_ProcessesAllBeforeStopReturns(t *testing.T) {
	req := &recordingRequester{}
	d := NewDispatcher(3, req, zerolog.Nop())
	d.Start(context.Background())

	emails := []string{"a@x.com", "b@x.com", "c@x.com", "a@x.com"}
	for _, e := range emails {
		if !d.Enqueue(e) {
			t.Fatalf("Enqueue(%q) rejected", e)
		}
	}
	d.Stop()

	if got := req.seen(); len(got) != len(emails) {
		t.Fatalf("expected %d processed, got %v", len(emails), got)
	}
}

func TestDispatcher_EnqueueAfterStop(t *testing.T) {
	d := NewDispatcher(1, &recordingRequester{}, zerolog.Nop())
	d.Start(context.Background())
	d.Stop()
	d.Stop()

	if d.Enqueue("a@x.com") {
		t.Fatalf("expected Enqueue to fail after Stop")
	}
}

func TestDispatcher_FullQueueDrops(t *testing.T) {
	req := &recordingRequester{entered: make(chan struct{}, 1), block: make(chan struct{})}
	d := NewDispatcher(1, req, zerolog.Nop())
	d.Start(context.Background())

	if !d.Enqueue("same@x.com") {
		t.Fatalf("first Enqueue rejected")
	}
	<-req.entered

	for i := range channelBuffer {
		if !d.Enqueue("same@x.com") {
			t.Fatalf("Enqueue %d rejected before buffer was full", i)
		}
	}
	if d.Enqueue("same@x.com") {
		t.Fatalf("expected drop when queue is full")
	}

	close(req.block)
	d.Stop()
}

func TestDispatcher_ErrorsDoNotStopWorkers(t *testing.T) {
	req := &recordingRequester{err: errors.New("smtp down")}
	d := NewDispatcher(1, req, zerolog.Nop())
	d.Start(context.Background())

	d.Enqueue("a@x.com")
	d.Enqueue("b@x.com")
	d.Stop()

	if got := req.seen(); len(got) != 2 {
		t.Fatalf("expected both jobs attempted, got %v", got)
	}
}

func TestDispatcher_ShardIsStable(t *testing.T) {
	d := NewDispatcher(4, &recordingRequester{}, zerolog.Nop())
	first := d.shardIndex("ann@x.com")
	for range 10 {
		if d.shardIndex("ann@x.com") != first {
			t.Fatalf("shard index changed")
		}
	}
}
