package models

import "time"

// AuctionStatus is the moderation lifecycle of a listing
type AuctionStatus string

const (
	AuctionPending  AuctionStatus = "pending"
	AuctionApproved AuctionStatus = "approved"
	AuctionRejected AuctionStatus = "rejected"
)

// Auction represents a sellable lot. CurrentPrice is a projection of the highest
// accepted bid and never decides bid ordering.
type Auction struct {
	AuctionID     string        `json:"auction_id"`
	SellerID      string        `json:"seller_id"`
	Title         string        `json:"title"`
	StartingPrice float64       `json:"starting_price"`
	CurrentPrice  float64       `json:"current_price"`
	EndsAt        time.Time     `json:"ends_at"`
	Status        AuctionStatus `json:"status"`
}

// BidIntent is an unvalidated request to bid
type BidIntent struct {
	AuctionID   string    `json:"auction_id"`
	BidderID    string    `json:"bidder_id"`
	Amount      float64   `json:"amount"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// AcceptedBid is an immutable ledger record
type AcceptedBid struct {
	BidID      string    `json:"bid_id"`
	Sequence   int64     `json:"sequence"`
	AuctionID  string    `json:"auction_id"`
	BidderID   string    `json:"bidder_id"`
	Amount     float64   `json:"amount"`
	AcceptedAt time.Time `json:"accepted_at"`
}

// RankedEntry is one member of an auction's ranked bid set
type RankedEntry struct {
	BidderID string  `json:"bidder_id"`
	Amount   float64 `json:"amount"`
}

// RoomState is a point-in-time snapshot of an auction room
type RoomState struct {
	AuctionID     string        `json:"auction_id"`
	TopBids       []RankedEntry `json:"top_bids"`
	HighestBid    *RankedEntry  `json:"highest_bid"`
	TotalBidCount int64         `json:"total_bid_count"`
}

// BidAccepted is the outcome of a successful submission, also used as the broadcast delta
type BidAccepted struct {
	Bid           AcceptedBid   `json:"bid"`
	TopBids       []RankedEntry `json:"top_bids"`
	TotalBidCount int64         `json:"total_bid_count"`
}

// ProfileStatus reports which profile fields a bidder still has to fill in
type ProfileStatus struct {
	Complete bool          `json:"complete"`
	Missing  MissingFields `json:"missing"`
}

// MissingFields flags each required profile field that is absent
type MissingFields struct {
	Phone   bool `json:"phone"`
	Address bool `json:"address"`
	City    bool `json:"city"`
	Region  bool `json:"region"`
}

// DepositStatus is the deposit gate answer for one bidder on one auction
type DepositStatus struct {
	CanBid             bool     `json:"can_bid"`
	RequiredAmount     *float64 `json:"required_amount,omitempty"`
	RequiredPercentage *float64 `json:"required_percentage,omitempty"`
}
