package bidding

import (
	"bidding-room/internal/biddingerrors"
	model "bidding-room/internal/models"
	"bidding-room/internal/rankcache"
	"bidding-room/internal/repository"
	"bidding-room/utils"
	"context"
	"errors"
	"fmt"
)

// Snapshotter answers point-in-time room state from the ranked bid set,
// rebuilding the set from the ledger when the cache has lost it.
type Snapshotter struct {
	auctions repository.AuctionDB
	ledger   repository.BidLedger
	cache    rankcache.RankedBidCache
	topN     int
}

// NewSnapshotter creates a Snapshotter returning the topN highest bidders
func NewSnapshotter(auctions repository.AuctionDB, ledger repository.BidLedger, cache rankcache.RankedBidCache, topN int) *Snapshotter {
	if topN <= 0 {
		topN = DefaultTopN
	}
	return &Snapshotter{
		auctions: auctions,
		ledger:   ledger,
		cache:    cache,
		topN:     topN,
	}
}

// QueryState returns the current top bids, highest bid and bidder count of an auction
func (s *Snapshotter) QueryState(ctx context.Context, auctionID string) (model.RoomState, error) {
	if auctionID == "" {
		return model.RoomState{}, biddingerrors.Reject(biddingerrors.CodeInvalidInput, "auction id is required", nil)
	}

	if _, err := s.auctions.GetAuction(ctx, auctionID); err != nil {
		if errors.Is(err, biddingerrors.ErrAuctionNotFound) {
			return model.RoomState{}, biddingerrors.Reject(biddingerrors.CodeAuctionNotFound, "auction not found", map[string]any{"auction_id": auctionID})
		}
		return model.RoomState{}, biddingerrors.Wrap(biddingerrors.CodeServerError, "internal server error, please try again", err)
	}

	if err := s.ensureLoaded(ctx, auctionID); err != nil {
		utils.Warn("ranked set rebuild failed", map[string]any{"auction_id": auctionID, "error": err.Error()})
	}

	top, total, err := s.ranking(ctx, auctionID)
	if err != nil {
		return model.RoomState{}, biddingerrors.Wrap(biddingerrors.CodeServerError, "internal server error, please try again", err)
	}

	state := model.RoomState{
		AuctionID:     auctionID,
		TopBids:       top,
		TotalBidCount: total,
	}
	if len(top) > 0 {
		highest := top[0]
		state.HighestBid = &highest
	}
	return state, nil
}

// BidHistory returns the auction's ledger records in commit order
func (s *Snapshotter) BidHistory(ctx context.Context, auctionID string) ([]model.AcceptedBid, error) {
	if auctionID == "" {
		return nil, biddingerrors.Reject(biddingerrors.CodeInvalidInput, "auction id is required", nil)
	}
	if _, err := s.auctions.GetAuction(ctx, auctionID); err != nil {
		if errors.Is(err, biddingerrors.ErrAuctionNotFound) {
			return nil, biddingerrors.Reject(biddingerrors.CodeAuctionNotFound, "auction not found", map[string]any{"auction_id": auctionID})
		}
		return nil, biddingerrors.Wrap(biddingerrors.CodeServerError, "internal server error, please try again", err)
	}

	bids, err := s.ledger.GetBidsByAuction(ctx, auctionID)
	if err != nil {
		return nil, biddingerrors.Wrap(biddingerrors.CodeServerError, "internal server error, please try again", err)
	}
	return bids, nil
}

// Rebuild merges the ledger's bidders into the auction's ranked set. Entries
// locked after the ledger read are kept.
func (s *Snapshotter) Rebuild(ctx context.Context, auctionID string) error {
	bids, err := s.ledger.GetBidsByAuction(ctx, auctionID)
	if err != nil {
		return fmt.Errorf("rebuild auction %s: %w", auctionID, err)
	}

	ranked := rankcache.RankFromLedger(bids)
	if err := s.cache.Load(ctx, auctionID, ranked); err != nil {
		return fmt.Errorf("rebuild auction %s: %w", auctionID, err)
	}

	utils.Info("ranked set rebuilt from ledger", map[string]any{
		"auction_id": auctionID,
		"bidders":    len(ranked),
	})
	return nil
}

// ensureLoaded rebuilds an empty ranked set when the ledger holds bids
func (s *Snapshotter) ensureLoaded(ctx context.Context, auctionID string) error {
	if s.cache.Mode() != rankcache.ModeAtomic {
		return nil
	}

	n, err := s.cache.Cardinality(ctx, auctionID)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	bids, err := s.ledger.GetBidsByAuction(ctx, auctionID)
	if err != nil {
		return fmt.Errorf("rebuild auction %s: %w", auctionID, err)
	}
	if len(bids) == 0 {
		return nil
	}
	return s.cache.Load(ctx, auctionID, rankcache.RankFromLedger(bids))
}

// ranking reads the top bidders and the distinct bidder count. A cache read
// failure falls back to the ledger so a committed bid still gets a view.
func (s *Snapshotter) ranking(ctx context.Context, auctionID string) ([]model.RankedEntry, int64, error) {
	top, err := s.cache.TopN(ctx, auctionID, s.topN, true)
	if err == nil {
		var total int64
		total, err = s.cache.Cardinality(ctx, auctionID)
		if err == nil {
			return top, total, nil
		}
	}

	utils.Warn("ranked set read failed, deriving from ledger", map[string]any{
		"auction_id": auctionID,
		"error":      err.Error(),
	})

	bids, lerr := s.ledger.GetBidsByAuction(ctx, auctionID)
	if lerr != nil {
		return nil, 0, fmt.Errorf("ranking for auction %s: %w", auctionID, lerr)
	}
	ranked := rankcache.RankFromLedger(bids)
	total := int64(len(ranked))
	if len(ranked) > s.topN {
		ranked = ranked[:s.topN]
	}
	return ranked, total, nil
}
