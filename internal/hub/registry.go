// Package hub routes room traffic: which connections watch which auction, and
// how a room message reaches them.
package hub

import (
	"bidding-room/internal/roomfeed"
	"bidding-room/utils"
	"context"
	"sort"
	"sync"
)

// Client is one live connection
type Client interface {
	ID() string
	SendJSON(v interface{})
	SendBytes(b []byte)
	Close()
}

// Registry tracks room membership. The first local member of a room
// subscribes this instance to the room feed and the last one to leave
// unsubscribes it.
type Registry struct {
	members map[string]map[string]Client // key: auctionID -> connectionID -> client
	rooms   map[string]map[string]bool   // key: connectionID -> joined auctionIDs

	feed    roomfeed.Feed
	onEmpty func(auctionID string)
	mu      sync.RWMutex
}

func NewRegistry(feed roomfeed.Feed) *Registry {
	return &Registry{
		members: make(map[string]map[string]Client),
		rooms:   make(map[string]map[string]bool),
		feed:    feed,
	}
}

// Join adds client to the auction's room. Joining twice is a no-op and
// reports false.
func (r *Registry) Join(ctx context.Context, client Client, auctionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := client.ID()
	if r.rooms[id][auctionID] {
		return false
	}

	if r.rooms[id] == nil {
		r.rooms[id] = make(map[string]bool)
	}
	r.rooms[id][auctionID] = true

	if r.members[auctionID] == nil {
		r.members[auctionID] = make(map[string]Client)
	}
	r.members[auctionID][id] = client

	if len(r.members[auctionID]) == 1 {
		if err := r.feed.Subscribe(ctx, auctionID); err != nil {
			utils.Error("room feed subscribe failed", map[string]any{"auction_id": auctionID, "error": err.Error()})
		}
	}
	return true
}

// Leave removes the connection from one room. Leaving a room never joined
// is a no-op and reports false.
func (r *Registry) Leave(ctx context.Context, connectionID, auctionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.rooms[connectionID][auctionID] {
		return false
	}
	delete(r.rooms[connectionID], auctionID)
	if len(r.rooms[connectionID]) == 0 {
		delete(r.rooms, connectionID)
	}
	r.removeMember(ctx, connectionID, auctionID)
	return true
}

// LeaveAll removes the connection from every room, on disconnect
func (r *Registry) LeaveAll(ctx context.Context, connectionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for auctionID := range r.rooms[connectionID] {
		r.removeMember(ctx, connectionID, auctionID)
	}
	delete(r.rooms, connectionID)
}

// OnRoomEmpty registers fn to run when the last local member leaves a room.
// fn runs with the registry locked and must not call back into it.
func (r *Registry) OnRoomEmpty(fn func(auctionID string)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onEmpty = fn
}

func (r *Registry) hasMembers(auctionID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members[auctionID]) > 0
}

// Members returns the connections in an auction's room, ordered by ID
func (r *Registry) Members(auctionID string) []Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	clients := make([]Client, 0, len(r.members[auctionID]))
	for _, c := range r.members[auctionID] {
		clients = append(clients, c)
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].ID() < clients[j].ID() })
	return clients
}

// Rooms returns the auctions a connection has joined
func (r *Registry) Rooms(connectionID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	auctions := make([]string, 0, len(r.rooms[connectionID]))
	for auctionID := range r.rooms[connectionID] {
		auctions = append(auctions, auctionID)
	}
	sort.Strings(auctions)
	return auctions
}

// Deliver sends a raw payload to every local member of the room
func (r *Registry) Deliver(auctionID string, payload []byte) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, client := range r.members[auctionID] {
		client.SendBytes(payload)
	}
}

func (r *Registry) removeMember(ctx context.Context, connectionID, auctionID string) {
	delete(r.members[auctionID], connectionID)
	if len(r.members[auctionID]) > 0 {
		return
	}

	delete(r.members, auctionID)
	if err := r.feed.Unsubscribe(ctx, auctionID); err != nil {
		utils.Error("room feed unsubscribe failed", map[string]any{"auction_id": auctionID, "error": err.Error()})
	}
	if r.onEmpty != nil {
		r.onEmpty(auctionID)
	}
}
