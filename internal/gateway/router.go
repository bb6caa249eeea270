// Package gateway is the websocket transport of auction rooms.
package gateway

import (
	"bidding-room/internal/biddingerrors"
	"bidding-room/internal/hub"
	model "bidding-room/internal/models"
	"bidding-room/internal/protocol"
	"context"
	"time"
)

// Session is a room connection with the identity it authenticated as
type Session interface {
	hub.Client
	UserID() string
}

// BidSubmitter runs a bid through the coordinator
type BidSubmitter interface {
	Submit(ctx context.Context, intent model.BidIntent) (model.BidAccepted, error)
}

// Router dispatches inbound room events
type Router struct {
	bids     BidSubmitter
	states   hub.StateSource
	registry *hub.Registry
	now      func() time.Time
}

func NewRouter(bids BidSubmitter, states hub.StateSource, registry *hub.Registry) *Router {
	return &Router{bids: bids, states: states, registry: registry, now: time.Now}
}

// Handle answers one request on the session. Failures are reported to the
// session only, never to the room.
func (r *Router) Handle(ctx context.Context, s Session, req protocol.Request) {
	if req.AuctionID == "" && req.Event != "" {
		s.SendJSON(r.invalid(req, "auction_id is required"))
		return
	}

	switch req.Event {
	case protocol.EventJoinRoom:
		r.join(ctx, s, req)
	case protocol.EventLeaveRoom:
		r.registry.Leave(ctx, s.ID(), req.AuctionID)
	case protocol.EventGetState:
		r.sendState(ctx, s, req)
	case protocol.EventSubmitBid:
		r.submit(ctx, s, req)
	default:
		s.SendJSON(protocol.RoomError(req.ID, req.AuctionID,
			biddingerrors.Reject(biddingerrors.CodeInvalidInput, "unknown event: "+req.Event, nil)))
	}
}

// Disconnect drops the session from every room it joined
func (r *Router) Disconnect(ctx context.Context, s Session) {
	r.registry.LeaveAll(ctx, s.ID())
}

// join checks the auction, joins the room, then sends joined and a fresh
// state. Deltas racing the join arrive before the state and are superseded by it.
func (r *Router) join(ctx context.Context, s Session, req protocol.Request) {
	if _, err := r.states.QueryState(ctx, req.AuctionID); err != nil {
		s.SendJSON(protocol.RoomError(req.ID, req.AuctionID, err))
		return
	}

	r.registry.Join(ctx, s, req.AuctionID)
	s.SendJSON(protocol.Reply(protocol.EventJoined, req.ID, req.AuctionID, map[string]string{"auction_id": req.AuctionID}))
	r.sendState(ctx, s, req)
}

func (r *Router) sendState(ctx context.Context, s Session, req protocol.Request) {
	state, err := r.states.QueryState(ctx, req.AuctionID)
	if err != nil {
		s.SendJSON(protocol.RoomError(req.ID, req.AuctionID, err))
		return
	}
	s.SendJSON(protocol.Reply(protocol.EventState, req.ID, req.AuctionID, state))
}

func (r *Router) submit(ctx context.Context, s Session, req protocol.Request) {
	if s.UserID() == "" {
		s.SendJSON(protocol.Rejected(req.ID, req.AuctionID,
			biddingerrors.Reject(biddingerrors.CodeInvalidInput, "sign in to place a bid", nil)))
		return
	}
	if req.Amount == nil {
		s.SendJSON(protocol.Rejected(req.ID, req.AuctionID,
			biddingerrors.Reject(biddingerrors.CodeInvalidInput, "amount is required", nil)))
		return
	}

	accepted, err := r.bids.Submit(ctx, model.BidIntent{
		AuctionID:   req.AuctionID,
		BidderID:    s.UserID(),
		Amount:      *req.Amount,
		SubmittedAt: r.now().UTC(),
	})
	if err != nil {
		s.SendJSON(protocol.Rejected(req.ID, req.AuctionID, err))
		return
	}
	s.SendJSON(protocol.Reply(protocol.EventBidAccepted, req.ID, req.AuctionID, accepted))
}

func (r *Router) invalid(req protocol.Request, message string) protocol.Message {
	rej := biddingerrors.Reject(biddingerrors.CodeInvalidInput, message, nil)
	if req.Event == protocol.EventSubmitBid {
		return protocol.Rejected(req.ID, req.AuctionID, rej)
	}
	return protocol.RoomError(req.ID, req.AuctionID, rej)
}
