// Package testutils holds hand-written fakes shared by room tests.
package testutils

import (
	"bidding-room/internal/protocol"
	"bidding-room/internal/roomfeed"
	"context"
	"encoding/json"
	"sync"
)

// MockClient simulates a connected websocket client
type MockClient struct {
	IDVal    string
	Messages []protocol.Message // messages sent with SendJSON
	RawBytes []string           // payloads sent with SendBytes
	Closed   bool
	Mu       sync.Mutex
}

func NewMockClient(id string) *MockClient {
	return &MockClient{IDVal: id, Messages: make([]protocol.Message, 0)}
}

func (m *MockClient) ID() string { return m.IDVal }

func (m *MockClient) Close() {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.Closed = true
}

func (m *MockClient) SendJSON(v interface{}) {
	m.Mu.Lock()
	defer m.Mu.Unlock()

	if msg, ok := v.(protocol.Message); ok {
		m.Messages = append(m.Messages, msg)
	}
}

func (m *MockClient) SendBytes(b []byte) {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.RawBytes = append(m.RawBytes, string(b))
}

// Events lists the event names sent with SendJSON, in order
func (m *MockClient) Events() []string {
	m.Mu.Lock()
	defer m.Mu.Unlock()

	events := make([]string, len(m.Messages))
	for i, msg := range m.Messages {
		events[i] = msg.Event
	}
	return events
}

// LastMessage returns the last message sent with SendJSON
func (m *MockClient) LastMessage() protocol.Message {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	if len(m.Messages) == 0 {
		return protocol.Message{}
	}
	return m.Messages[len(m.Messages)-1]
}

// Broadcasts decodes every payload sent with SendBytes
func (m *MockClient) Broadcasts() []protocol.Message {
	m.Mu.Lock()
	defer m.Mu.Unlock()

	out := make([]protocol.Message, 0, len(m.RawBytes))
	for _, raw := range m.RawBytes {
		var msg protocol.Message
		if err := json.Unmarshal([]byte(raw), &msg); err == nil {
			out = append(out, msg)
		}
	}
	return out
}

var _ roomfeed.Feed = (*MockFeed)(nil)

// MockFeed counts subscriptions and loops published payloads straight back
type MockFeed struct {
	SubscribedRooms map[string]int // auctionID -> subscribe calls minus unsubscribe calls
	Published       map[string][][]byte
	Handler         roomfeed.Handler
	Mu              sync.Mutex
}

func NewMockFeed() *MockFeed {
	return &MockFeed{
		SubscribedRooms: make(map[string]int),
		Published:       make(map[string][][]byte),
	}
}

func (m *MockFeed) Subscribe(_ context.Context, auctionID string) error {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.SubscribedRooms[auctionID]++
	return nil
}

func (m *MockFeed) Unsubscribe(_ context.Context, auctionID string) error {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.SubscribedRooms[auctionID]--
	if m.SubscribedRooms[auctionID] <= 0 {
		delete(m.SubscribedRooms, auctionID)
	}
	return nil
}

func (m *MockFeed) Publish(_ context.Context, auctionID string, payload []byte) error {
	m.Mu.Lock()
	m.Published[auctionID] = append(m.Published[auctionID], payload)
	handler := m.Handler
	m.Mu.Unlock()

	if handler != nil {
		handler(auctionID, payload)
	}
	return nil
}

// Run only records the handler so Publish can loop back synchronously
func (m *MockFeed) Run(_ context.Context, onMessage roomfeed.Handler) {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.Handler = onMessage
}

func (m *MockFeed) Close() error { return nil }

// Subscriptions returns the live subscription count for a room
func (m *MockFeed) Subscriptions(auctionID string) int {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	return m.SubscribedRooms[auctionID]
}
