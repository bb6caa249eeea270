package rankcache

import (
	model "bidding-room/internal/models"
	"context"
	"sort"
	"sync"
)

var _ RankedBidCache = (*MemoryCache)(nil)

// MemoryCache is an in-process RankedBidCache. Each auction has its own lock,
// so it is atomic only within a single process.
type MemoryCache struct {
	sets sync.Map // auctionID -> *rankedSet
}

type rankedSet struct {
	mu      sync.Mutex
	scores  map[string]float64 // bidder -> amount
	holders map[float64]string // amount -> bidder
}

// NewMemoryCache creates an empty in-process cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{}
}

func (c *MemoryCache) set(auctionID string) *rankedSet {
	s, _ := c.sets.LoadOrStore(auctionID, &rankedSet{
		scores:  make(map[string]float64),
		holders: make(map[float64]string),
	})
	return s.(*rankedSet)
}

func (s *rankedSet) put(bidderID string, amount float64) {
	if prev, ok := s.scores[bidderID]; ok && s.holders[prev] == bidderID {
		delete(s.holders, prev)
	}
	s.scores[bidderID] = amount
	s.holders[amount] = bidderID
}

func (s *rankedSet) ranked() []model.RankedEntry {
	entries := make([]model.RankedEntry, 0, len(s.scores))
	for bidder, amount := range s.scores {
		entries = append(entries, model.RankedEntry{BidderID: bidder, Amount: amount})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Amount != entries[j].Amount {
			return entries[i].Amount > entries[j].Amount
		}
		return entries[i].BidderID < entries[j].BidderID
	})
	return entries
}

func (c *MemoryCache) TryInsertUnique(_ context.Context, auctionID, bidderID string, amount float64) (InsertResult, error) {
	s := c.set(auctionID)
	s.mu.Lock()
	defer s.mu.Unlock()

	if holder, taken := s.holders[amount]; taken && holder != bidderID {
		return InsertResult{ConflictBidder: holder}, nil
	}

	var previous *float64
	if prev, ok := s.scores[bidderID]; ok {
		previous = &prev
	}
	s.put(bidderID, amount)

	return InsertResult{Inserted: true, Previous: previous}, nil
}

func (c *MemoryCache) UpsertScore(_ context.Context, auctionID, bidderID string, amount float64) error {
	s := c.set(auctionID)
	s.mu.Lock()
	defer s.mu.Unlock()

	s.put(bidderID, amount)
	return nil
}

func (c *MemoryCache) Release(_ context.Context, auctionID, bidderID string, locked float64, previous *float64) error {
	s := c.set(auctionID)
	s.mu.Lock()
	defer s.mu.Unlock()

	if current, ok := s.scores[bidderID]; !ok || current != locked {
		return nil
	}

	delete(s.holders, locked)
	if previous != nil {
		if holder, taken := s.holders[*previous]; !taken || holder == bidderID {
			s.scores[bidderID] = *previous
			s.holders[*previous] = bidderID
			return nil
		}
	}
	delete(s.scores, bidderID)
	return nil
}

func (c *MemoryCache) TopN(_ context.Context, auctionID string, n int, descending bool) ([]model.RankedEntry, error) {
	s := c.set(auctionID)
	s.mu.Lock()
	defer s.mu.Unlock()

	return window(s.ranked(), n, descending), nil
}

func (c *MemoryCache) Cardinality(_ context.Context, auctionID string) (int64, error) {
	s := c.set(auctionID)
	s.mu.Lock()
	defer s.mu.Unlock()

	return int64(len(s.scores)), nil
}

func (c *MemoryCache) Load(_ context.Context, auctionID string, entries []model.RankedEntry) error {
	s := c.set(auctionID)
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range entries {
		if _, ok := s.scores[e.BidderID]; ok {
			continue
		}
		if _, taken := s.holders[e.Amount]; taken {
			continue
		}
		s.put(e.BidderID, e.Amount)
	}
	return nil
}

func (c *MemoryCache) Mode() Mode { return ModeAtomic }

// Evict drops an auction's set, as a cache service may do at any time
func (c *MemoryCache) Evict(auctionID string) {
	c.sets.Delete(auctionID)
}
