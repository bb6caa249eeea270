// Package roomfeed carries room broadcasts between server instances. A
// message published for an auction reaches every instance subscribed to it.
package roomfeed

import (
	"context"
	"sync"
)

// Handler receives one room payload
type Handler func(auctionID string, payload []byte)

// Feed is the cross-instance channel for room broadcasts
type Feed interface {
	Subscribe(ctx context.Context, auctionID string) error
	Unsubscribe(ctx context.Context, auctionID string) error
	Publish(ctx context.Context, auctionID string, payload []byte) error
	// Run delivers incoming payloads to onMessage until ctx ends or the feed closes
	Run(ctx context.Context, onMessage Handler)
	Close() error
}

var _ Feed = (*LocalFeed)(nil)

// LocalFeed delivers in-process only, synchronously on Publish. It serves a
// single instance or the ledger fallback deployment.
type LocalFeed struct {
	mu         sync.RWMutex
	subscribed map[string]bool
	handler    Handler
	done       chan struct{}
	closeOnce  sync.Once
}

func NewLocalFeed() *LocalFeed {
	return &LocalFeed{
		subscribed: make(map[string]bool),
		done:       make(chan struct{}),
	}
}

func (f *LocalFeed) Subscribe(_ context.Context, auctionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subscribed[auctionID] = true
	return nil
}

func (f *LocalFeed) Unsubscribe(_ context.Context, auctionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.subscribed, auctionID)
	return nil
}

// Publish hands payload to the running handler when the room is subscribed
func (f *LocalFeed) Publish(_ context.Context, auctionID string, payload []byte) error {
	f.mu.RLock()
	handler, ok := f.handler, f.subscribed[auctionID]
	f.mu.RUnlock()

	if ok && handler != nil {
		handler(auctionID, payload)
	}
	return nil
}

// Run registers onMessage and blocks until ctx ends or Close is called
func (f *LocalFeed) Run(ctx context.Context, onMessage Handler) {
	f.mu.Lock()
	f.handler = onMessage
	f.mu.Unlock()

	select {
	case <-ctx.Done():
	case <-f.done:
	}
}

func (f *LocalFeed) Close() error {
	f.closeOnce.Do(func() { close(f.done) })
	return nil
}
