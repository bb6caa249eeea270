package hub

import (
	model "bidding-room/internal/models"
	"bidding-room/internal/protocol"
	"bidding-room/internal/roomfeed"
	"bidding-room/utils"
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// StateSource answers point-in-time room snapshots
type StateSource interface {
	QueryState(ctx context.Context, auctionID string) (model.RoomState, error)
}

// Dispatcher publishes room messages through the feed and answers state
// queries. Delivery is best effort; clients reconcile with QueryState.
type Dispatcher struct {
	registry *Registry
	feed     roomfeed.Feed
	states   StateSource

	mu    sync.Mutex
	lanes map[string]*lane // key: auctionID
}

// lane orders accepted-bid deltas of one auction. It lives while the room
// has local members or a delta is being published.
type lane struct {
	mu      sync.Mutex
	lastSeq int64
	refs    int // guarded by Dispatcher.mu
}

func NewDispatcher(registry *Registry, feed roomfeed.Feed, states StateSource) *Dispatcher {
	d := &Dispatcher{
		registry: registry,
		feed:     feed,
		states:   states,
		lanes:    make(map[string]*lane),
	}
	registry.OnRoomEmpty(d.forget)
	return d
}

// Run feeds incoming room payloads to local members until ctx ends
func (d *Dispatcher) Run(ctx context.Context) {
	d.feed.Run(ctx, d.registry.Deliver)
}

// Publish sends msg to every connection in the auction's room, on every instance
func (d *Dispatcher) Publish(ctx context.Context, auctionID string, msg protocol.Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode %s for room %s: %w", msg.Event, auctionID, err)
	}
	return d.feed.Publish(ctx, auctionID, payload)
}

// BroadcastAccepted publishes a bid-accepted delta. A delta older than one
// already published for the auction is dropped so rooms never see the
// ranking move backwards.
func (d *Dispatcher) BroadcastAccepted(ctx context.Context, delta model.BidAccepted) error {
	auctionID := delta.Bid.AuctionID
	l := d.acquire(auctionID)
	defer d.release(auctionID, l)

	l.mu.Lock()
	defer l.mu.Unlock()

	if delta.Bid.Sequence != 0 && delta.Bid.Sequence <= l.lastSeq {
		utils.Debug("stale delta dropped", map[string]any{
			"auction_id": auctionID,
			"sequence":   delta.Bid.Sequence,
			"last":       l.lastSeq,
		})
		return nil
	}
	if err := d.Publish(ctx, auctionID, protocol.Reply(protocol.EventBidAccepted, "", auctionID, delta)); err != nil {
		return err
	}
	l.lastSeq = delta.Bid.Sequence
	return nil
}

// QueryState returns the current snapshot of an auction room
func (d *Dispatcher) QueryState(ctx context.Context, auctionID string) (model.RoomState, error) {
	return d.states.QueryState(ctx, auctionID)
}

func (d *Dispatcher) acquire(auctionID string) *lane {
	d.mu.Lock()
	defer d.mu.Unlock()

	l, ok := d.lanes[auctionID]
	if !ok {
		l = &lane{}
		d.lanes[auctionID] = l
	}
	l.refs++
	return l
}

func (d *Dispatcher) release(auctionID string, l *lane) {
	watched := d.registry.hasMembers(auctionID)

	d.mu.Lock()
	defer d.mu.Unlock()

	l.refs--
	if l.refs == 0 && !watched && d.lanes[auctionID] == l {
		delete(d.lanes, auctionID)
	}
}

// forget drops an idle lane once its room has no local members
func (d *Dispatcher) forget(auctionID string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if l, ok := d.lanes[auctionID]; ok && l.refs == 0 {
		delete(d.lanes, auctionID)
	}
}
