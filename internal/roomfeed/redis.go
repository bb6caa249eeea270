package roomfeed

import (
	"bidding-room/utils"
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
)

const channelPrefix = "auction-room."

// Compile-time check to ensure RedisFeed implements Feed
var _ Feed = (*RedisFeed)(nil)

// RedisFeed fans room payloads out over Redis pub/sub, one channel per auction
type RedisFeed struct {
	client redis.UniversalClient
	pubsub *redis.PubSub
	mu     sync.Mutex // guards pubsub subscription changes
}

func NewRedisFeed(client redis.UniversalClient) *RedisFeed {
	return &RedisFeed{
		client: client,
		pubsub: client.Subscribe(context.Background()),
	}
}

func channel(auctionID string) string {
	return channelPrefix + auctionID
}

func (f *RedisFeed) Subscribe(ctx context.Context, auctionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.pubsub.Subscribe(ctx, channel(auctionID)); err != nil {
		return fmt.Errorf("subscribe room %s: %w", auctionID, err)
	}
	return nil
}

func (f *RedisFeed) Unsubscribe(ctx context.Context, auctionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.pubsub.Unsubscribe(ctx, channel(auctionID)); err != nil {
		return fmt.Errorf("unsubscribe room %s: %w", auctionID, err)
	}
	return nil
}

func (f *RedisFeed) Publish(ctx context.Context, auctionID string, payload []byte) error {
	if err := f.client.Publish(ctx, channel(auctionID), payload).Err(); err != nil {
		return fmt.Errorf("publish to room %s: %w", auctionID, err)
	}
	return nil
}

// Run reads the subscription until ctx ends or the feed is closed
func (f *RedisFeed) Run(ctx context.Context, onMessage Handler) {
	ch := f.pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			auctionID, found := strings.CutPrefix(msg.Channel, channelPrefix)
			if !found || auctionID == "" {
				utils.Warn("message on unexpected channel", map[string]any{"channel": msg.Channel})
				continue
			}
			onMessage(auctionID, []byte(msg.Payload))
		}
	}
}

// Close ends the subscription; the shared client is closed by its owner
func (f *RedisFeed) Close() error {
	return f.pubsub.Close()
}
