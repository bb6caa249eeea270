// Package protocol defines the websocket envelopes exchanged with room clients.
package protocol

import "bidding-room/internal/biddingerrors"

// inbound events
const (
	EventJoinRoom  = "join-room"
	EventLeaveRoom = "leave-room"
	EventGetState  = "get-state"
	EventSubmitBid = "submit-bid"
)

// outbound events
const (
	EventJoined      = "joined"
	EventState       = "state"
	EventBidAccepted = "bid-accepted"
	EventBidRejected = "bid-rejected"
	EventRoomError   = "room-error"
)

// Request is a client command
type Request struct {
	Event     string   `json:"event"`
	ID        string   `json:"id,omitempty"` // echoed in the reply
	AuctionID string   `json:"auction_id"`
	Amount    *float64 `json:"amount,omitempty"`
}

// Message is every server-to-client frame
type Message struct {
	Event     string         `json:"event"`
	ID        string         `json:"id,omitempty"`
	AuctionID string         `json:"auction_id,omitempty"`
	Data      any            `json:"data,omitempty"`
	Code      string         `json:"code,omitempty"`
	Message   string         `json:"message,omitempty"`
	Context   map[string]any `json:"context,omitempty"`
}

// Reply builds a successful response frame
func Reply(event, id, auctionID string, data any) Message {
	return Message{Event: event, ID: id, AuctionID: auctionID, Data: data}
}

// Rejected builds a bid-rejected frame from any error
func Rejected(id, auctionID string, err error) Message {
	return failure(EventBidRejected, id, auctionID, err)
}

// RoomError builds a room-error frame from any error
func RoomError(id, auctionID string, err error) Message {
	return failure(EventRoomError, id, auctionID, err)
}

func failure(event, id, auctionID string, err error) Message {
	rej := biddingerrors.AsRejection(err)
	return Message{
		Event:     event,
		ID:        id,
		AuctionID: auctionID,
		Code:      string(rej.Code),
		Message:   rej.Message,
		Context:   rej.Context,
	}
}
