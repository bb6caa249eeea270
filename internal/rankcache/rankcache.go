// Package rankcache keeps the per-auction ranked bid set: at most one entry per
// bidder, scored by amount, and never two bidders holding the same score.
//
// Entries are mutated only through TryInsertUnique, UpsertScore, Release and
// Load. Callers must not read a score and write it back themselves.
package rankcache

import (
	model "bidding-room/internal/models"
	"context"
	"sort"
)

// Mode names the consistency guarantee a cache implementation provides
type Mode string

const (
	// ModeAtomic enforces uniqueness with a single store-level atomic operation
	ModeAtomic Mode = "atomic"
	// ModeLedgerFallback derives uniqueness from the ledger; a read/append race window exists
	ModeLedgerFallback Mode = "ledger-fallback"
)

// InsertResult reports the outcome of TryInsertUnique
type InsertResult struct {
	// Inserted is true when the bidder now holds the score
	Inserted bool
	// ConflictBidder is the bidder already holding the score when Inserted is false
	ConflictBidder string
	// Previous is the bidder's score before the insert, nil if they had none
	Previous *float64
}

// RankedBidCache is the fast, rebuildable projection of an auction's bids
type RankedBidCache interface {
	// TryInsertUnique sets bidder's score to amount unless another bidder holds amount
	TryInsertUnique(ctx context.Context, auctionID, bidderID string, amount float64) (InsertResult, error)
	// UpsertScore sets bidder's score unconditionally
	UpsertScore(ctx context.Context, auctionID, bidderID string, amount float64) error
	// Release undoes a TryInsertUnique if the bidder still holds the locked score,
	// restoring previous when it is set and free, removing the entry otherwise
	Release(ctx context.Context, auctionID, bidderID string, locked float64, previous *float64) error
	TopN(ctx context.Context, auctionID string, n int, descending bool) ([]model.RankedEntry, error)
	Cardinality(ctx context.Context, auctionID string) (int64, error)
	// Load merges entries into the auction's set. Bidders already in the set
	// keep their score and an entry whose amount is already held is skipped.
	Load(ctx context.Context, auctionID string, entries []model.RankedEntry) error
	Mode() Mode
}

// RankFromLedger rebuilds the ranked set from ledger records: each bidder's
// most recent amount, ordered by amount descending, ties broken by the
// earlier acceptance.
func RankFromLedger(bids []model.AcceptedBid) []model.RankedEntry {
	type entry struct {
		bid   model.AcceptedBid
		order int
	}

	latest := make(map[string]entry, len(bids))
	for i, bid := range bids {
		current, ok := latest[bid.BidderID]
		if !ok || isLater(bid, current.bid) {
			latest[bid.BidderID] = entry{bid: bid, order: i}
		}
	}

	entries := make([]entry, 0, len(latest))
	for _, e := range latest {
		entries = append(entries, e)
	}

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i].bid, entries[j].bid
		if a.Amount != b.Amount {
			return a.Amount > b.Amount
		}
		if !a.AcceptedAt.Equal(b.AcceptedAt) {
			return a.AcceptedAt.Before(b.AcceptedAt)
		}
		return entries[i].order < entries[j].order
	})

	ranked := make([]model.RankedEntry, len(entries))
	for i, e := range entries {
		ranked[i] = model.RankedEntry{BidderID: e.bid.BidderID, Amount: e.bid.Amount}
	}
	return ranked
}

func isLater(a, b model.AcceptedBid) bool {
	if a.Sequence != 0 && b.Sequence != 0 {
		return a.Sequence > b.Sequence
	}
	return !a.AcceptedAt.Before(b.AcceptedAt)
}

// window slices a descending ranking to n entries in the requested order
func window(ranked []model.RankedEntry, n int, descending bool) []model.RankedEntry {
	if n > 0 && n < len(ranked) {
		if descending {
			ranked = ranked[:n]
		} else {
			ranked = ranked[len(ranked)-n:]
		}
	}

	out := make([]model.RankedEntry, len(ranked))
	copy(out, ranked)
	if !descending {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out
}
