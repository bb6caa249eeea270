package integrationtests

import (
	"bidding-room/internal/auth"
	bidding "bidding-room/internal/biddingService"
	"bidding-room/internal/collaborators"
	"bidding-room/internal/gateway"
	"bidding-room/internal/hub"
	model "bidding-room/internal/models"
	"bidding-room/internal/protocol"
	"bidding-room/internal/rankcache"
	"bidding-room/internal/repository"
	"bidding-room/internal/roomfeed"
	"bidding-room/internal/server"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket" // test client only
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

const testSecret = "integration-secret"

// cluster is a set of service instances sharing one Redis and one ledger
type cluster struct {
	mr   *miniredis.Miniredis
	repo *repository.MemoryRepo
}

func newCluster(t *testing.T, auctions ...model.Auction) *cluster {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := repository.NewMemoryRepo()
	for _, a := range auctions {
		repo.AddAuction(a)
	}
	return &cluster{mr: miniredis.RunT(t), repo: repo}
}

// startInstance wires one service instance the way main does and serves it
func (c *cluster) startInstance(t *testing.T) *httptest.Server {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())

	rdb := redis.NewClient(&redis.Options{Addr: c.mr.Addr()})
	cache := rankcache.NewRedisCache(rdb, time.Hour)
	feed := roomfeed.NewRedisFeed(rdb)
	static := collaborators.NewStatic()

	snapshots := bidding.NewSnapshotter(c.repo, c.repo, cache, bidding.DefaultTopN)
	registry := hub.NewRegistry(feed)
	dispatcher := hub.NewDispatcher(registry, feed, snapshots)
	go dispatcher.Run(ctx)

	coordinator := bidding.NewCoordinator(bidding.Dependencies{
		Auctions:    c.repo,
		Ledger:      c.repo,
		Cache:       cache,
		Users:       static,
		Deposits:    static,
		Snapshots:   snapshots,
		Broadcaster: dispatcher,
	}, bidding.Options{})

	authenticator := auth.NewAuthenticator(testSecret, true)
	rooms := gateway.NewHandler(gateway.NewRouter(coordinator, dispatcher, registry), authenticator)
	srv := httptest.NewServer(server.SetupRouter(coordinator, authenticator, rooms))

	t.Cleanup(func() {
		srv.Close()
		cancel()
		_ = feed.Close()
		_ = rdb.Close()
	})
	return srv
}

func openAuction(id string, starting float64) model.Auction {
	return model.Auction{
		AuctionID:     id,
		SellerID:      "seller",
		Title:         "integration lot " + id,
		StartingPrice: starting,
		EndsAt:        time.Now().Add(time.Hour),
		Status:        model.AuctionApproved,
	}
}

// connectWS dials the room endpoint, as userID when it is not empty
func connectWS(t *testing.T, serverURL, userID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(serverURL, "http") + "/ws"
	header := http.Header{}
	if userID != "" {
		header.Set(auth.HeaderUserID, userID)
	}
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err, "failed to connect to websocket")
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, req protocol.Request) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(req))
}

// waitFor reads messages until match accepts one
func waitFor(t *testing.T, conn *websocket.Conn, match func(protocol.Message) bool) protocol.Message {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for {
		_ = conn.SetReadDeadline(deadline)
		var msg protocol.Message
		require.NoError(t, conn.ReadJSON(&msg), "no matching message before deadline")
		if match(msg) {
			return msg
		}
	}
}

func event(name string) func(protocol.Message) bool {
	return func(m protocol.Message) bool { return m.Event == name }
}

// ExecuteRequestAndParse sends a JSON request as userID and parses the response body
func ExecuteRequestAndParse(t *testing.T, serverURL, method, path, userID string, body any) (map[string]any, int) {
	t.Helper()

	var reader *bytes.Reader
	switch v := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case []byte:
		reader = bytes.NewReader(v)
	default:
		raw, err := json.Marshal(v)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, serverURL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set(auth.HeaderUserID, userID)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out, resp.StatusCode
}
