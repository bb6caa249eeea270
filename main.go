package main

import (
	"bidding-room/internal/auth"
	bidding "bidding-room/internal/biddingService"
	"bidding-room/internal/collaborators"
	"bidding-room/internal/config"
	"bidding-room/internal/eventlog"
	"bidding-room/internal/gateway"
	"bidding-room/internal/hub"
	model "bidding-room/internal/models"
	"bidding-room/internal/rankcache"
	"bidding-room/internal/repository"
	"bidding-room/internal/roomfeed"
	"bidding-room/internal/server"
	"bidding-room/utils"
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

// store is what the coordinator needs from a repository
type store interface {
	repository.AuctionDB
	repository.BidLedger
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		utils.Fatal("failed to load config", map[string]any{"error": err.Error()})
	}
	if err := utils.SetLevel(cfg.Log.Level); err != nil {
		utils.Warn("unknown log level, keeping default", map[string]any{"level": cfg.Log.Level})
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo := setupStore(ctx, cfg)
	cache, feed := setupRedis(ctx, cfg, repo)
	defer feed.Close()

	users, deposits := setupCollaborators(cfg)
	events := setupEvents(cfg)
	defer events.Close()

	snapshots := bidding.NewSnapshotter(repo, repo, cache, cfg.Bidding.TopN)
	registry := hub.NewRegistry(feed)
	dispatcher := hub.NewDispatcher(registry, feed, snapshots)

	coordinator := bidding.NewCoordinator(bidding.Dependencies{
		Auctions:    repo,
		Ledger:      repo,
		Cache:       cache,
		Users:       users,
		Deposits:    deposits,
		Snapshots:   snapshots,
		Broadcaster: dispatcher,
		Events:      events,
	}, bidding.Options{
		TopN:           cfg.Bidding.TopN,
		CheckTimeout:   cfg.Bidding.CheckTimeout,
		CommitAttempts: cfg.Bidding.CommitAttempts,
		CommitBackoff:  cfg.Bidding.CommitBackoff,
		EventTimeout:   cfg.Bidding.EventTimeout,
	})

	authenticator := auth.NewAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.AllowHeaderIdentity)
	rooms := gateway.NewHandler(gateway.NewRouter(coordinator, dispatcher, registry), authenticator)
	router := server.SetupRouter(coordinator, authenticator, rooms)

	srv := &http.Server{
		Addr:              cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		dispatcher.Run(gctx)
		return nil
	})
	g.Go(func() error {
		utils.Info("starting auction room server", map[string]any{"addr": cfg.App.Port, "cache_mode": string(cache.Mode())})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		utils.Fatal("server stopped with error", map[string]any{"error": err.Error()})
	}
	utils.Info("server stopped", nil)
}

// setupStore opens the MySQL ledger when a DSN is set, else an in-memory one
func setupStore(ctx context.Context, cfg *config.Config) store {
	if cfg.MySQL.DSN == "" {
		repo := repository.NewMemoryRepo()
		for _, auction := range sampleAuctions() {
			repo.AddAuction(auction)
		}
		utils.Info("using in-memory ledger", map[string]any{"auctions": len(sampleAuctions())})
		return repo
	}

	repo, err := repository.OpenMySQL(cfg.MySQL.DSN)
	if err != nil {
		utils.Fatal("failed to open mysql", map[string]any{"error": err.Error()})
	}
	if cfg.App.Env == "local" {
		for _, auction := range sampleAuctions() {
			if err := repo.SaveAuction(ctx, auction); err != nil {
				utils.Warn("could not seed auction", map[string]any{"auction_id": auction.AuctionID, "error": err.Error()})
			}
		}
	}
	return repo
}

// setupRedis returns the atomic Redis cache and cross-instance feed when Redis
// answers, or the ledger fallback with an in-process feed otherwise
func setupRedis(ctx context.Context, cfg *config.Config, ledger repository.BidLedger) (rankcache.RankedBidCache, roomfeed.Feed) {
	if !cfg.Redis.Enabled {
		utils.Warn("redis disabled, running in ledger-fallback mode", nil)
		return rankcache.NewLedgerFallback(ledger), roomfeed.NewLocalFeed()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		utils.Warn("redis unreachable, running in ledger-fallback mode", map[string]any{"addr": cfg.Redis.Addr, "error": err.Error()})
		_ = client.Close()
		return rankcache.NewLedgerFallback(ledger), roomfeed.NewLocalFeed()
	}

	utils.Info("connected to redis", map[string]any{"addr": cfg.Redis.Addr})
	return rankcache.NewRedisCache(client, cfg.Redis.KeyTTL), roomfeed.NewRedisFeed(client)
}

func setupCollaborators(cfg *config.Config) (collaborators.UserDirectory, collaborators.DepositChecker) {
	if cfg.Collaborators.BaseURL == "" {
		utils.Warn("no collaborator service configured, every bidder is eligible", nil)
		static := collaborators.NewStatic()
		return static, static
	}
	client := collaborators.NewHTTPClient(cfg.Collaborators.BaseURL, cfg.Collaborators.Timeout)
	return client, client
}

func setupEvents(cfg *config.Config) eventlog.Sink {
	if len(cfg.Kafka.Brokers) == 0 {
		return eventlog.NopSink{}
	}
	utils.Info("streaming accepted bids", map[string]any{"brokers": cfg.Kafka.Brokers, "topic": cfg.Kafka.Topic})
	return eventlog.NewKafkaSink(eventlog.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic))
}

// sampleAuctions seeds local setups
func sampleAuctions() []model.Auction {
	ends := time.Now().Add(72 * time.Hour).UTC()
	return []model.Auction{
		{AuctionID: "auction1", SellerID: "seller1", Title: "Vintage road bike", StartingPrice: 100_000, EndsAt: ends, Status: model.AuctionApproved},
		{AuctionID: "auction2", SellerID: "seller2", Title: "Espresso machine", StartingPrice: 50_000, EndsAt: ends, Status: model.AuctionApproved},
		{AuctionID: "auction3", SellerID: "seller1", Title: "Mechanical watch", StartingPrice: 2_500_000, EndsAt: ends, Status: model.AuctionApproved},
	}
}
