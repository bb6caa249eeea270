package rankcache

import (
	model "bidding-room/internal/models"
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "auction:"

// Compile-time check to ensure RedisCache implements RankedBidCache
var _ RankedBidCache = (*RedisCache)(nil)

// tryInsertUnique: KEYS[1] set, ARGV[1] score, ARGV[2] member, ARGV[3] ttl ms.
// Returns {0, holder} on conflict, {1, ""[, previous]} on success.
var tryInsertUnique = redis.NewScript(`
local holders = redis.call('ZRANGEBYSCORE', KEYS[1], ARGV[1], ARGV[1])
for _, m in ipairs(holders) do
  if m ~= ARGV[2] then
    return {0, m}
  end
end
local prev = redis.call('ZSCORE', KEYS[1], ARGV[2])
redis.call('ZADD', KEYS[1], ARGV[1], ARGV[2])
if tonumber(ARGV[3]) > 0 then
  redis.call('PEXPIRE', KEYS[1], ARGV[3])
end
if prev then
  return {1, '', prev}
end
return {1, ''}
`)

// release: KEYS[1] set, ARGV[1] member, ARGV[2] locked score, ARGV[3] previous score or "".
var release = redis.NewScript(`
local cur = redis.call('ZSCORE', KEYS[1], ARGV[1])
if not cur or tonumber(cur) ~= tonumber(ARGV[2]) then
  return 0
end
if ARGV[3] ~= '' then
  local holders = redis.call('ZRANGEBYSCORE', KEYS[1], ARGV[3], ARGV[3])
  if #holders == 0 then
    redis.call('ZADD', KEYS[1], ARGV[3], ARGV[1])
    return 1
  end
end
redis.call('ZREM', KEYS[1], ARGV[1])
return 1
`)

// merge: KEYS[1] set, ARGV[1] ttl ms, then score/member pairs. Adds a member only
// when it has no score yet and nobody holds the score. Returns the number added.
var merge = redis.NewScript(`
local added = 0
for i = 2, #ARGV, 2 do
  local score, member = ARGV[i], ARGV[i + 1]
  if not redis.call('ZSCORE', KEYS[1], member) then
    local holders = redis.call('ZRANGEBYSCORE', KEYS[1], score, score)
    if #holders == 0 then
      redis.call('ZADD', KEYS[1], score, member)
      added = added + 1
    end
  end
end
if added > 0 and tonumber(ARGV[1]) > 0 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return added
`)

// RedisCache keeps one sorted set per auction, member = bidder, score = amount
type RedisCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisCache creates a RedisCache. A zero ttl keeps sets until evicted.
func NewRedisCache(client redis.UniversalClient, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (r *RedisCache) key(auctionID string) string {
	return keyPrefix + auctionID + ":bids"
}

func formatScore(amount float64) string {
	return strconv.FormatFloat(amount, 'f', -1, 64)
}

func (r *RedisCache) TryInsertUnique(ctx context.Context, auctionID, bidderID string, amount float64) (InsertResult, error) {
	res, err := tryInsertUnique.Run(ctx, r.client, []string{r.key(auctionID)},
		formatScore(amount), bidderID, r.ttl.Milliseconds()).Slice()
	if err != nil {
		return InsertResult{}, fmt.Errorf("try insert unique for auction %s: %w", auctionID, err)
	}
	if len(res) < 2 {
		return InsertResult{}, fmt.Errorf("try insert unique for auction %s: unexpected reply %v", auctionID, res)
	}

	if ok, _ := res[0].(int64); ok == 0 {
		holder, _ := res[1].(string)
		return InsertResult{ConflictBidder: holder}, nil
	}

	result := InsertResult{Inserted: true}
	if len(res) > 2 {
		raw, _ := res[2].(string)
		prev, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return InsertResult{}, fmt.Errorf("parse previous score %q: %w", raw, err)
		}
		result.Previous = &prev
	}
	return result, nil
}

func (r *RedisCache) UpsertScore(ctx context.Context, auctionID, bidderID string, amount float64) error {
	key := r.key(auctionID)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, key, redis.Z{Score: amount, Member: bidderID})
		if r.ttl > 0 {
			pipe.PExpire(ctx, key, r.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("upsert score for auction %s: %w", auctionID, err)
	}
	return nil
}

func (r *RedisCache) Release(ctx context.Context, auctionID, bidderID string, locked float64, previous *float64) error {
	prev := ""
	if previous != nil {
		prev = formatScore(*previous)
	}
	err := release.Run(ctx, r.client, []string{r.key(auctionID)}, bidderID, formatScore(locked), prev).Err()
	if err != nil {
		return fmt.Errorf("release score for auction %s: %w", auctionID, err)
	}
	return nil
}

func (r *RedisCache) TopN(ctx context.Context, auctionID string, n int, descending bool) ([]model.RankedEntry, error) {
	stop := int64(n - 1)
	if n <= 0 {
		stop = -1
	}

	var (
		zs  []redis.Z
		err error
	)
	if descending {
		zs, err = r.client.ZRevRangeWithScores(ctx, r.key(auctionID), 0, stop).Result()
	} else {
		zs, err = r.client.ZRangeWithScores(ctx, r.key(auctionID), 0, stop).Result()
	}
	if err != nil {
		return nil, fmt.Errorf("top %d for auction %s: %w", n, auctionID, err)
	}

	entries := make([]model.RankedEntry, 0, len(zs))
	for _, z := range zs {
		member, _ := z.Member.(string)
		entries = append(entries, model.RankedEntry{BidderID: member, Amount: z.Score})
	}
	return entries, nil
}

func (r *RedisCache) Cardinality(ctx context.Context, auctionID string) (int64, error) {
	n, err := r.client.ZCard(ctx, r.key(auctionID)).Result()
	if err != nil {
		return 0, fmt.Errorf("cardinality for auction %s: %w", auctionID, err)
	}
	return n, nil
}

func (r *RedisCache) Load(ctx context.Context, auctionID string, entries []model.RankedEntry) error {
	if len(entries) == 0 {
		return nil
	}

	args := make([]interface{}, 0, 1+2*len(entries))
	args = append(args, r.ttl.Milliseconds())
	for _, e := range entries {
		args = append(args, formatScore(e.Amount), e.BidderID)
	}
	if err := merge.Run(ctx, r.client, []string{r.key(auctionID)}, args...).Err(); err != nil {
		return fmt.Errorf("load ranked set for auction %s: %w", auctionID, err)
	}
	return nil
}

func (r *RedisCache) Mode() Mode { return ModeAtomic }
