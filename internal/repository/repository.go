package repository

import (
	"bidding-room/internal/biddingerrors"
	model "bidding-room/internal/models"
	"context"
	"fmt"
	"sync"
)

// AuctionDB is the auction read model consumed by the bid coordinator
type AuctionDB interface {
	GetAuction(ctx context.Context, auctionID string) (model.Auction, error)
	UpdateCurrentPrice(ctx context.Context, auctionID string, price float64) error
}

// BidLedger is the append-only durable record of accepted bids. Implementations
// reject a second bid at the same (auction, amount) with ErrDuplicateAmount.
type BidLedger interface {
	AppendBid(ctx context.Context, bid model.AcceptedBid) (model.AcceptedBid, error)
	GetBidsByAuction(ctx context.Context, auctionID string) ([]model.AcceptedBid, error)
	FindBidByAmount(ctx context.Context, auctionID string, amount float64) (model.AcceptedBid, bool, error)
}

// MemoryRepo is a concurrency-safe in-memory implementation of AuctionDB and BidLedger
type MemoryRepo struct {
	mu       sync.RWMutex
	auctions map[string]model.Auction       // key: auctionID -> value: auction
	bids     map[string][]model.AcceptedBid // key: auctionID -> value: bids in append order
	amounts  map[string]map[float64]int     // key: auctionID -> amount -> index into bids
	sequence int64
}

// NewMemoryRepo creates a new in-memory repository instance
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		auctions: make(map[string]model.Auction),
		bids:     make(map[string][]model.AcceptedBid),
		amounts:  make(map[string]map[float64]int),
	}
}

// GetAuction returns the auction with the given ID
func (r *MemoryRepo) GetAuction(_ context.Context, auctionID string) (model.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	auction, ok := r.auctions[auctionID]
	if !ok {
		return model.Auction{}, fmt.Errorf("get auction %s: %w", auctionID, biddingerrors.ErrAuctionNotFound)
	}
	return auction, nil
}

// UpdateCurrentPrice raises the auction's price projection; lower prices are ignored
func (r *MemoryRepo) UpdateCurrentPrice(_ context.Context, auctionID string, price float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	auction, ok := r.auctions[auctionID]
	if !ok {
		return fmt.Errorf("update price for auction %s: %w", auctionID, biddingerrors.ErrAuctionNotFound)
	}
	if price > auction.CurrentPrice {
		auction.CurrentPrice = price
		r.auctions[auctionID] = auction
	}
	return nil
}

// AppendBid records an accepted bid and assigns its ledger sequence
func (r *MemoryRepo) AppendBid(_ context.Context, bid model.AcceptedBid) (model.AcceptedBid, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if bid.AuctionID == "" {
		return model.AcceptedBid{}, fmt.Errorf("append bid: %w", biddingerrors.ErrAuctionNotFound)
	}

	index := r.amounts[bid.AuctionID]
	if index == nil {
		index = make(map[float64]int)
		r.amounts[bid.AuctionID] = index
	}
	if _, taken := index[bid.Amount]; taken {
		return model.AcceptedBid{}, fmt.Errorf("append bid for auction %s at %.2f: %w", bid.AuctionID, bid.Amount, biddingerrors.ErrDuplicateAmount)
	}

	r.sequence++
	bid.Sequence = r.sequence
	index[bid.Amount] = len(r.bids[bid.AuctionID])
	r.bids[bid.AuctionID] = append(r.bids[bid.AuctionID], bid)

	return bid, nil
}

// GetBidsByAuction returns all bids of an auction in append order
func (r *MemoryRepo) GetBidsByAuction(_ context.Context, auctionID string) ([]model.AcceptedBid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]model.AcceptedBid{}, r.bids[auctionID]...), nil
}

// FindBidByAmount looks up the bid holding amount on an auction
func (r *MemoryRepo) FindBidByAmount(_ context.Context, auctionID string, amount float64) (model.AcceptedBid, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.amounts[auctionID][amount]
	if !ok {
		return model.AcceptedBid{}, false, nil
	}
	return r.bids[auctionID][i], true, nil
}

// AddAuction adds or replaces an auction. Used for seeding and tests.
func (r *MemoryRepo) AddAuction(auction model.Auction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.auctions[auction.AuctionID] = auction
}
