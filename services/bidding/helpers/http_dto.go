package helpers

import (
	model "bidding-room/internal/models"
	"time"
)

// Request/Response DTOs
type PlaceBidRequest struct {
	Amount *float64 `json:"amount" binding:"required"`
}

type BidResponse struct {
	BidID      string  `json:"bid_id"`
	Sequence   int64   `json:"sequence"`
	AuctionID  string  `json:"auction_id"`
	BidderID   string  `json:"bidder_id"`
	Amount     float64 `json:"amount"`
	AcceptedAt string  `json:"accepted_at"`
}

type PlaceBidResponse struct {
	Bid           BidResponse         `json:"bid"`
	TopBids       []model.RankedEntry `json:"top_bids"`
	TotalBidCount int64               `json:"total_bid_count"`
}

func ToBidResponse(bid model.AcceptedBid) BidResponse {
	return BidResponse{
		BidID:      bid.BidID,
		Sequence:   bid.Sequence,
		AuctionID:  bid.AuctionID,
		BidderID:   bid.BidderID,
		Amount:     bid.Amount,
		AcceptedAt: bid.AcceptedAt.UTC().Format(time.RFC3339Nano),
	}
}

func ToPlaceBidResponse(accepted model.BidAccepted) PlaceBidResponse {
	top := accepted.TopBids
	if top == nil {
		top = []model.RankedEntry{}
	}
	return PlaceBidResponse{
		Bid:           ToBidResponse(accepted.Bid),
		TopBids:       top,
		TotalBidCount: accepted.TotalBidCount,
	}
}
