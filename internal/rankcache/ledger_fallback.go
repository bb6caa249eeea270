package rankcache

import (
	model "bidding-room/internal/models"
	"bidding-room/internal/repository"
	"bidding-room/utils"
	"context"
	"fmt"
)

var _ RankedBidCache = (*LedgerFallback)(nil)

// LedgerFallback serves the RankedBidCache contract from the ledger alone when
// no atomic store is reachable. Uniqueness is a lookup followed later by the
// ledger append, so two writers can both pass the check; the ledger's unique
// (auction, amount) constraint is what rejects the loser.
type LedgerFallback struct {
	ledger repository.BidLedger
}

// NewLedgerFallback creates the degraded-mode cache
func NewLedgerFallback(ledger repository.BidLedger) *LedgerFallback {
	utils.Warn("rank cache running in ledger fallback mode; price uniqueness relies on the ledger constraint", map[string]any{
		"mode": string(ModeLedgerFallback),
	})
	return &LedgerFallback{ledger: ledger}
}

func (l *LedgerFallback) TryInsertUnique(ctx context.Context, auctionID, bidderID string, amount float64) (InsertResult, error) {
	existing, found, err := l.ledger.FindBidByAmount(ctx, auctionID, amount)
	if err != nil {
		return InsertResult{}, fmt.Errorf("fallback uniqueness check for auction %s: %w", auctionID, err)
	}

	utils.Debug("fallback uniqueness check", map[string]any{
		"auction_id": auctionID,
		"bidder_id":  bidderID,
		"amount":     amount,
		"taken":      found,
	})

	if found && existing.BidderID != bidderID {
		return InsertResult{ConflictBidder: existing.BidderID}, nil
	}
	return InsertResult{Inserted: true}, nil
}

// UpsertScore is a no-op: the ledger append is the write
func (l *LedgerFallback) UpsertScore(context.Context, string, string, float64) error { return nil }

// Release is a no-op: nothing was reserved
func (l *LedgerFallback) Release(context.Context, string, string, float64, *float64) error {
	return nil
}

func (l *LedgerFallback) TopN(ctx context.Context, auctionID string, n int, descending bool) ([]model.RankedEntry, error) {
	ranked, err := l.rank(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	return window(ranked, n, descending), nil
}

func (l *LedgerFallback) Cardinality(ctx context.Context, auctionID string) (int64, error) {
	ranked, err := l.rank(ctx, auctionID)
	if err != nil {
		return 0, err
	}
	return int64(len(ranked)), nil
}

// Load is a no-op: the set is always derived from the ledger
func (l *LedgerFallback) Load(context.Context, string, []model.RankedEntry) error { return nil }

func (l *LedgerFallback) Mode() Mode { return ModeLedgerFallback }

func (l *LedgerFallback) rank(ctx context.Context, auctionID string) ([]model.RankedEntry, error) {
	bids, err := l.ledger.GetBidsByAuction(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("fallback rank for auction %s: %w", auctionID, err)
	}
	return RankFromLedger(bids), nil
}
