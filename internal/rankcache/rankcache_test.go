package rankcache

import (
	model "bidding-room/internal/models"
	"bidding-room/internal/repository"
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// every implementation must satisfy the same contract
func implementations(t *testing.T) map[string]RankedBidCache {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return map[string]RankedBidCache{
		"memory": NewMemoryCache(),
		"redis":  NewRedisCache(rdb, time.Hour),
	}
}

func TestRankedBidCache_TryInsertUnique(t *testing.T) {
	ctx := context.Background()

	for name, cache := range implementations(t) {
		cache := cache
		t.Run(name, func(t *testing.T) {
			res, err := cache.TryInsertUnique(ctx, "a1", "x", 200_000)
			require.NoError(t, err)
			require.True(t, res.Inserted)
			require.Nil(t, res.Previous)

			res, err = cache.TryInsertUnique(ctx, "a1", "y", 200_000)
			require.NoError(t, err)
			require.False(t, res.Inserted)
			require.Equal(t, "x", res.ConflictBidder)

			// a bidder re-asserting their own score is not a conflict
			res, err = cache.TryInsertUnique(ctx, "a1", "x", 200_000)
			require.NoError(t, err)
			require.True(t, res.Inserted)

			// own update replaces the previous entry
			res, err = cache.TryInsertUnique(ctx, "a1", "x", 300_000)
			require.NoError(t, err)
			require.True(t, res.Inserted)
			require.NotNil(t, res.Previous)
			require.Equal(t, 200_000.0, *res.Previous)

			// the freed score is available again
			res, err = cache.TryInsertUnique(ctx, "a1", "y", 200_000)
			require.NoError(t, err)
			require.True(t, res.Inserted)

			n, err := cache.Cardinality(ctx, "a1")
			require.NoError(t, err)
			require.Equal(t, int64(2), n)

			top, err := cache.TopN(ctx, "a1", 10, true)
			require.NoError(t, err)
			require.Equal(t, []model.RankedEntry{{BidderID: "x", Amount: 300_000}, {BidderID: "y", Amount: 200_000}}, top)

			asc, err := cache.TopN(ctx, "a1", 1, false)
			require.NoError(t, err)
			require.Equal(t, []model.RankedEntry{{BidderID: "y", Amount: 200_000}}, asc)
		})
	}
}

func TestRankedBidCache_ConcurrentSameScore(t *testing.T) {
	ctx := context.Background()

	for name, cache := range implementations(t) {
		cache := cache
		t.Run(name, func(t *testing.T) {
			var wg sync.WaitGroup
			var mu sync.Mutex
			inserted := 0

			for i := 0; i < 25; i++ {
				wg.Add(1)
				i := i
				go func() {
					defer wg.Done()
					res, err := cache.TryInsertUnique(ctx, "race", fmt.Sprintf("bidder-%d", i), 500)
					require.NoError(t, err)
					if res.Inserted {
						mu.Lock()
						inserted++
						mu.Unlock()
					}
				}()
			}
			wg.Wait()

			require.Equal(t, 1, inserted)
			n, err := cache.Cardinality(ctx, "race")
			require.NoError(t, err)
			require.Equal(t, int64(1), n)
		})
	}
}

func TestRankedBidCache_Release(t *testing.T) {
	ctx := context.Background()

	for name, cache := range implementations(t) {
		cache := cache
		t.Run(name, func(t *testing.T) {
			// new entry released -> removed
			_, err := cache.TryInsertUnique(ctx, "a1", "x", 100)
			require.NoError(t, err)
			require.NoError(t, cache.Release(ctx, "a1", "x", 100, nil))

			n, err := cache.Cardinality(ctx, "a1")
			require.NoError(t, err)
			require.Equal(t, int64(0), n)

			// updated entry released -> previous score restored
			_, err = cache.TryInsertUnique(ctx, "a1", "x", 100)
			require.NoError(t, err)
			res, err := cache.TryInsertUnique(ctx, "a1", "x", 200)
			require.NoError(t, err)
			require.NoError(t, cache.Release(ctx, "a1", "x", 200, res.Previous))

			top, err := cache.TopN(ctx, "a1", 10, true)
			require.NoError(t, err)
			require.Equal(t, []model.RankedEntry{{BidderID: "x", Amount: 100}}, top)

			// release of a score the bidder no longer holds is ignored
			require.NoError(t, cache.UpsertScore(ctx, "a1", "x", 400))
			require.NoError(t, cache.Release(ctx, "a1", "x", 200, nil))
			top, err = cache.TopN(ctx, "a1", 10, true)
			require.NoError(t, err)
			require.Equal(t, []model.RankedEntry{{BidderID: "x", Amount: 400}}, top)

			// freed score taken by someone else -> entry removed instead of restored
			res, err = cache.TryInsertUnique(ctx, "a1", "x", 500)
			require.NoError(t, err)
			_, err = cache.TryInsertUnique(ctx, "a1", "y", 400)
			require.NoError(t, err)
			require.NoError(t, cache.Release(ctx, "a1", "x", 500, res.Previous))
			top, err = cache.TopN(ctx, "a1", 10, true)
			require.NoError(t, err)
			require.Equal(t, []model.RankedEntry{{BidderID: "y", Amount: 400}}, top)
		})
	}
}

func TestRankedBidCache_Load(t *testing.T) {
	ctx := context.Background()

	for name, cache := range implementations(t) {
		cache := cache
		t.Run(name, func(t *testing.T) {
			entries := []model.RankedEntry{{BidderID: "y", Amount: 250_000}, {BidderID: "x", Amount: 200_000}}
			require.NoError(t, cache.Load(ctx, "a1", entries))

			top, err := cache.TopN(ctx, "a1", 10, true)
			require.NoError(t, err)
			require.Equal(t, entries, top)

			res, err := cache.TryInsertUnique(ctx, "a1", "z", 250_000)
			require.NoError(t, err)
			require.False(t, res.Inserted)
			require.Equal(t, "y", res.ConflictBidder)

			require.Equal(t, ModeAtomic, cache.Mode())
		})
	}
}

func TestRankedBidCache_LoadKeepsLiveEntries(t *testing.T) {
	ctx := context.Background()

	for name, cache := range implementations(t) {
		cache := cache
		t.Run(name, func(t *testing.T) {
			// committed after the ledger read the rebuild is working from
			_, err := cache.TryInsertUnique(ctx, "a2", "b", 300_000)
			require.NoError(t, err)
			_, err = cache.TryInsertUnique(ctx, "a2", "w", 260_000)
			require.NoError(t, err)

			snapshot := []model.RankedEntry{
				{BidderID: "w", Amount: 200_000},
				{BidderID: "v", Amount: 300_000},
				{BidderID: "u", Amount: 150_000},
			}
			require.NoError(t, cache.Load(ctx, "a2", snapshot))

			top, err := cache.TopN(ctx, "a2", 10, true)
			require.NoError(t, err)
			require.Equal(t, []model.RankedEntry{
				{BidderID: "b", Amount: 300_000},
				{BidderID: "w", Amount: 260_000},
				{BidderID: "u", Amount: 150_000},
			}, top)
		})
	}
}

func TestRedisCache_SetsTTL(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	cache := NewRedisCache(rdb, time.Minute)
	_, err := cache.TryInsertUnique(ctx, "a1", "x", 10)
	require.NoError(t, err)

	require.Equal(t, time.Minute, mr.TTL("auction:a1:bids"))

	mr.FastForward(2 * time.Minute)
	n, err := cache.Cardinality(ctx, "a1")
	require.NoError(t, err)
	require.Equal(t, int64(0), n)
}

func TestMemoryCache_Evict(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache()
	require.NoError(t, cache.UpsertScore(ctx, "a1", "x", 10))

	cache.Evict("a1")

	n, err := cache.Cardinality(ctx, "a1")
	require.NoError(t, err)
	require.Equal(t, int64(0), n)
}

func TestLedgerFallback(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryRepo()
	cache := NewLedgerFallback(repo)
	now := time.Now()

	_, err := repo.AppendBid(ctx, model.AcceptedBid{BidID: "1", AuctionID: "a1", BidderID: "x", Amount: 200_000, AcceptedAt: now})
	require.NoError(t, err)
	_, err = repo.AppendBid(ctx, model.AcceptedBid{BidID: "2", AuctionID: "a1", BidderID: "y", Amount: 250_000, AcceptedAt: now.Add(time.Second)})
	require.NoError(t, err)

	res, err := cache.TryInsertUnique(ctx, "a1", "z", 200_000)
	require.NoError(t, err)
	require.False(t, res.Inserted)
	require.Equal(t, "x", res.ConflictBidder)

	res, err = cache.TryInsertUnique(ctx, "a1", "z", 300_000)
	require.NoError(t, err)
	require.True(t, res.Inserted)

	top, err := cache.TopN(ctx, "a1", 10, true)
	require.NoError(t, err)
	require.Equal(t, []model.RankedEntry{{BidderID: "y", Amount: 250_000}, {BidderID: "x", Amount: 200_000}}, top)

	n, err := cache.Cardinality(ctx, "a1")
	require.NoError(t, err)
	require.Equal(t, int64(2), n)

	require.Equal(t, ModeLedgerFallback, cache.Mode())
}

func TestRankFromLedger(t *testing.T) {
	now := time.Now()
	bids := []model.AcceptedBid{
		{Sequence: 1, BidderID: "x", Amount: 100, AcceptedAt: now},
		{Sequence: 2, BidderID: "y", Amount: 150, AcceptedAt: now.Add(time.Second)},
		{Sequence: 3, BidderID: "x", Amount: 200, AcceptedAt: now.Add(2 * time.Second)},
		{Sequence: 4, BidderID: "z", Amount: 120, AcceptedAt: now.Add(3 * time.Second)},
	}

	ranked := RankFromLedger(bids)
	require.Equal(t, []model.RankedEntry{
		{BidderID: "x", Amount: 200},
		{BidderID: "y", Amount: 150},
		{BidderID: "z", Amount: 120},
	}, ranked)

	require.Empty(t, RankFromLedger(nil))
}

func TestRankFromLedger_TieBrokenByEarlierAcceptance(t *testing.T) {
	now := time.Now()
	bids := []model.AcceptedBid{
		{Sequence: 2, BidderID: "late", Amount: 100, AcceptedAt: now.Add(time.Millisecond)},
		{Sequence: 1, BidderID: "early", Amount: 100, AcceptedAt: now},
	}

	ranked := RankFromLedger(bids)
	require.Equal(t, "early", ranked[0].BidderID)
	require.Equal(t, "late", ranked[1].BidderID)
}
