package handler

import (
	"net/http"
	"time"

	bidding "bidding-room/internal/biddingService"
	model "bidding-room/internal/models"
	"bidding-room/services/bidding/helpers"
	"bidding-room/utils"

	"github.com/gin-gonic/gin"
)

// ContextUserID is the gin context key the auth middleware stores the bidder under
const ContextUserID = "user_id"

var timeNow = time.Now

type BiddingHandler struct {
	service bidding.CoordinatorInterface
}

func NewBiddingHandler(service bidding.CoordinatorInterface) *BiddingHandler {
	return &BiddingHandler{service: service}
}

// PlaceBidHandler handles POST /auctions/:auction_id/bids
func (h *BiddingHandler) PlaceBidHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	userID := c.GetString(ContextUserID)

	var req helpers.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "PlaceBidHandler", err)
		return
	}

	accepted, err := h.service.Submit(c.Request.Context(), model.BidIntent{
		AuctionID:   auctionID,
		BidderID:    userID,
		Amount:      *req.Amount,
		SubmittedAt: timeNow().UTC(),
	})
	if err != nil {
		rej := helpers.WriteError(c, err)
		utils.Warn("PlaceBidHandler: bid rejected", map[string]any{
			"handler":    "PlaceBidHandler",
			"auction_id": auctionID,
			"user_id":    userID,
			"code":       rej.Code,
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.ToPlaceBidResponse(accepted), "bid accepted")
	helpers.LogSuccess("PlaceBidHandler", "bid accepted", map[string]any{
		"bid_id":     accepted.Bid.BidID,
		"auction_id": auctionID,
		"user_id":    userID,
		"amount":     accepted.Bid.Amount,
	})
}

// GetBidsHandler handles GET /auctions/:auction_id/bids
func (h *BiddingHandler) GetBidsHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	bids, err := h.service.BidHistory(c.Request.Context(), auctionID)
	if err != nil {
		rej := helpers.WriteError(c, err)
		utils.Warn("GetBidsHandler: error retrieving bids", map[string]any{"auction_id": auctionID, "code": rej.Code})
		return
	}

	resp := make([]helpers.BidResponse, 0, len(bids))
	for _, bid := range bids {
		resp = append(resp, helpers.ToBidResponse(bid))
	}

	utils.JSONResponse(c, http.StatusOK, resp, "bids retrieved successfully")
	helpers.LogSuccess("GetBidsHandler", "bids retrieved successfully", map[string]any{
		"auction_id": auctionID,
		"count":      len(resp),
	})
}

// GetStateHandler handles GET /auctions/:auction_id/state
func (h *BiddingHandler) GetStateHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	state, err := h.service.QueryState(c.Request.Context(), auctionID)
	if err != nil {
		rej := helpers.WriteError(c, err)
		utils.Warn("GetStateHandler: error retrieving state", map[string]any{"auction_id": auctionID, "code": rej.Code})
		return
	}

	if state.TopBids == nil {
		state.TopBids = []model.RankedEntry{}
	}
	utils.JSONResponse(c, http.StatusOK, state, "state retrieved successfully")
}

// HealthHandler handles GET /healthz
func (h *BiddingHandler) HealthHandler(c *gin.Context) {
	utils.JSONResponse(c, http.StatusOK, gin.H{"cache_mode": string(h.service.Mode())}, "ok")
}
