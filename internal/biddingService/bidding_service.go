// Package bidding accepts bids for live auctions. Price uniqueness is enforced
// by the ranked bid cache's atomic insert, the ledger is the durable record,
// and each committed bid is broadcast to the auction's room.
package bidding

import (
	"bidding-room/internal/biddingerrors"
	"bidding-room/internal/collaborators"
	"bidding-room/internal/eventlog"
	model "bidding-room/internal/models"
	"bidding-room/internal/pricing"
	"bidding-room/internal/rankcache"
	"bidding-room/internal/repository"
	"bidding-room/utils"
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/shopspring/decimal"
)

const (
	DefaultTopN           = 10
	DefaultCheckTimeout   = 3 * time.Second
	DefaultCommitAttempts = 3
	DefaultCommitBackoff  = 50 * time.Millisecond
	DefaultEventTimeout   = 2 * time.Second
)

// amountScale is the number of decimal places the ledger stores
const amountScale = 2

const serverErrorMessage = "internal server error, please try again"

// Broadcaster delivers a committed bid to everyone watching the auction
type Broadcaster interface {
	BroadcastAccepted(ctx context.Context, delta model.BidAccepted) error
}

// CoordinatorInterface is what transports need from the coordinator
type CoordinatorInterface interface {
	Submit(ctx context.Context, intent model.BidIntent) (model.BidAccepted, error)
	QueryState(ctx context.Context, auctionID string) (model.RoomState, error)
	BidHistory(ctx context.Context, auctionID string) ([]model.AcceptedBid, error)
	Mode() rankcache.Mode
}

// Options tunes the coordinator. Zero values take the defaults.
type Options struct {
	TopN           int
	CheckTimeout   time.Duration
	CommitAttempts int
	CommitBackoff  time.Duration
	EventTimeout   time.Duration
	Now            func() time.Time
}

// Dependencies are the stores and collaborators the coordinator drives
type Dependencies struct {
	Auctions    repository.AuctionDB
	Ledger      repository.BidLedger
	Cache       rankcache.RankedBidCache
	Users       collaborators.UserDirectory
	Deposits    collaborators.DepositChecker
	Policy      *pricing.Policy
	Snapshots   *Snapshotter
	Broadcaster Broadcaster
	Events      eventlog.Sink
}

// Coordinator validates bid intents, locks their price, commits them to the
// ledger and publishes the resulting ranking
type Coordinator struct {
	deps Dependencies
	opts Options
}

var _ CoordinatorInterface = (*Coordinator)(nil)

// NewCoordinator creates a Coordinator. A nil Policy uses the default tiers,
// a nil Snapshots is built from the stores, a nil Events drops events.
func NewCoordinator(deps Dependencies, opts Options) *Coordinator {
	if opts.TopN <= 0 {
		opts.TopN = DefaultTopN
	}
	if opts.CheckTimeout <= 0 {
		opts.CheckTimeout = DefaultCheckTimeout
	}
	if opts.CommitAttempts <= 0 {
		opts.CommitAttempts = DefaultCommitAttempts
	}
	if opts.CommitBackoff <= 0 {
		opts.CommitBackoff = DefaultCommitBackoff
	}
	if opts.EventTimeout <= 0 {
		opts.EventTimeout = DefaultEventTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if deps.Policy == nil {
		deps.Policy = pricing.NewPolicy(nil)
	}
	if deps.Snapshots == nil {
		deps.Snapshots = NewSnapshotter(deps.Auctions, deps.Ledger, deps.Cache, opts.TopN)
	}
	if deps.Events == nil {
		deps.Events = eventlog.NopSink{}
	}
	return &Coordinator{deps: deps, opts: opts}
}

// Mode reports which uniqueness guarantee is in force
func (c *Coordinator) Mode() rankcache.Mode {
	return c.deps.Cache.Mode()
}

// QueryState returns the room snapshot for an auction
func (c *Coordinator) QueryState(ctx context.Context, auctionID string) (model.RoomState, error) {
	return c.deps.Snapshots.QueryState(ctx, auctionID)
}

// BidHistory returns every accepted bid of an auction
func (c *Coordinator) BidHistory(ctx context.Context, auctionID string) ([]model.AcceptedBid, error) {
	return c.deps.Snapshots.BidHistory(ctx, auctionID)
}

// Submit runs a bid intent through validation, the atomic price lock and the
// ledger commit. Every failure is a *biddingerrors.Rejection.
func (c *Coordinator) Submit(ctx context.Context, intent model.BidIntent) (accepted model.BidAccepted, err error) {
	defer func() {
		if r := recover(); r != nil {
			utils.Error("panic while submitting bid", map[string]any{
				"auction_id": intent.AuctionID,
				"bidder_id":  intent.BidderID,
				"panic":      fmt.Sprint(r),
			})
			accepted = model.BidAccepted{}
			err = biddingerrors.Wrap(biddingerrors.CodeServerError, serverErrorMessage, fmt.Errorf("panic: %v", r))
		}
	}()

	if intent.AuctionID == "" || intent.BidderID == "" {
		return model.BidAccepted{}, biddingerrors.Reject(biddingerrors.CodeInvalidInput, "auction id and bidder id are required", nil)
	}
	if !validAmount(intent.Amount) {
		return model.BidAccepted{}, biddingerrors.Reject(biddingerrors.CodeInvalidAmount, "bid amount must be a positive number", map[string]any{"amount": fmt.Sprint(intent.Amount)})
	}
	if !withinScale(intent.Amount) {
		return model.BidAccepted{}, biddingerrors.Reject(biddingerrors.CodeInvalidAmount, "bid amount must have at most 2 decimal places", map[string]any{"amount": fmt.Sprint(intent.Amount)})
	}

	auction, err := c.loadAuction(ctx, intent.AuctionID)
	if err != nil {
		return model.BidAccepted{}, err
	}
	if err := c.checkAuction(auction, intent.BidderID); err != nil {
		return model.BidAccepted{}, err
	}
	if err := c.checkEligibility(ctx, auction.AuctionID, intent.BidderID); err != nil {
		return model.BidAccepted{}, err
	}
	if err := c.checkBounds(auction, intent.Amount); err != nil {
		return model.BidAccepted{}, err
	}

	// past the lock the bid completes even if the submitter goes away
	ctx = context.WithoutCancel(ctx)

	if err := c.deps.Snapshots.ensureLoaded(ctx, auction.AuctionID); err != nil {
		utils.Warn("ranked set rebuild failed", map[string]any{"auction_id": auction.AuctionID, "error": err.Error()})
	}

	lock, err := c.deps.Cache.TryInsertUnique(ctx, auction.AuctionID, intent.BidderID, intent.Amount)
	if err != nil {
		return model.BidAccepted{}, c.infraFailure(biddingerrors.CodeServerError, "price lock failed", intent, err)
	}
	if !lock.Inserted {
		return model.BidAccepted{}, priceExists(intent.Amount)
	}

	bid, err := c.commit(ctx, model.AcceptedBid{
		BidID:      utils.GenerateID(),
		AuctionID:  auction.AuctionID,
		BidderID:   intent.BidderID,
		Amount:     intent.Amount,
		AcceptedAt: c.opts.Now().UTC(),
	})
	if err != nil {
		c.release(ctx, intent, lock)
		if errors.Is(err, biddingerrors.ErrDuplicateAmount) {
			// the cache missed a ledger bid at this amount
			if rerr := c.deps.Snapshots.Rebuild(ctx, auction.AuctionID); rerr != nil {
				utils.Warn("ranked set rebuild failed", map[string]any{"auction_id": auction.AuctionID, "error": rerr.Error()})
			}
			return model.BidAccepted{}, priceExists(intent.Amount)
		}
		return model.BidAccepted{}, c.infraFailure(biddingerrors.CodeCommitFailed, "bid could not be recorded, please try again", intent, err)
	}

	if err := c.deps.Auctions.UpdateCurrentPrice(ctx, bid.AuctionID, bid.Amount); err != nil {
		utils.Warn("current price projection not updated", map[string]any{"auction_id": bid.AuctionID, "error": err.Error()})
	}

	top, total, err := c.deps.Snapshots.ranking(ctx, bid.AuctionID)
	if err != nil {
		utils.Error("ranking unavailable after commit", map[string]any{"auction_id": bid.AuctionID, "error": err.Error()})
		top, total = []model.RankedEntry{{BidderID: bid.BidderID, Amount: bid.Amount}}, 1
	}

	accepted = model.BidAccepted{Bid: bid, TopBids: top, TotalBidCount: total}
	c.publish(ctx, accepted)

	utils.Info("bid accepted", map[string]any{
		"auction_id": bid.AuctionID,
		"bidder_id":  bid.BidderID,
		"amount":     bid.Amount,
		"sequence":   bid.Sequence,
		"mode":       string(c.deps.Cache.Mode()),
	})
	return accepted, nil
}

func validAmount(amount float64) bool {
	return amount > 0 && !math.IsInf(amount, 0) && !math.IsNaN(amount)
}

// withinScale reports whether amount survives the ledger's decimal(20,2) column
// unchanged
func withinScale(amount float64) bool {
	d := decimal.NewFromFloat(amount)
	return d.Equal(d.Round(amountScale))
}

func priceExists(amount float64) error {
	return biddingerrors.Reject(biddingerrors.CodePriceExists, "another bidder already holds this price, please bid a different amount", map[string]any{
		"existing_amount": amount,
	})
}

func (c *Coordinator) loadAuction(ctx context.Context, auctionID string) (model.Auction, error) {
	auction, err := c.deps.Auctions.GetAuction(ctx, auctionID)
	if err != nil {
		if errors.Is(err, biddingerrors.ErrAuctionNotFound) {
			return model.Auction{}, biddingerrors.Reject(biddingerrors.CodeAuctionNotFound, "auction not found", map[string]any{"auction_id": auctionID})
		}
		utils.Error("auction lookup failed", map[string]any{"auction_id": auctionID, "error": err.Error()})
		return model.Auction{}, biddingerrors.Wrap(biddingerrors.CodeServerError, serverErrorMessage, err)
	}
	return auction, nil
}

// checkAuction applies the lifecycle, deadline and ownership rules
func (c *Coordinator) checkAuction(auction model.Auction, bidderID string) error {
	switch auction.Status {
	case model.AuctionApproved:
	case model.AuctionPending:
		return biddingerrors.Reject(biddingerrors.CodeAuctionNotApproved, "auction is still waiting for approval", map[string]any{"status": string(auction.Status)})
	case model.AuctionRejected:
		return biddingerrors.Reject(biddingerrors.CodeAuctionNotApproved, "auction was rejected and is not open for bidding", map[string]any{"status": string(auction.Status)})
	default:
		return biddingerrors.Reject(biddingerrors.CodeAuctionNotApproved, "auction is not open for bidding", map[string]any{"status": string(auction.Status)})
	}

	if !c.opts.Now().Before(auction.EndsAt) {
		return biddingerrors.Reject(biddingerrors.CodeAuctionEnded, "auction has ended", map[string]any{"ended_at": auction.EndsAt.UTC()})
	}

	if bidderID == auction.SellerID {
		return biddingerrors.Reject(biddingerrors.CodeCannotBidOwnAuction, "you cannot bid on your own auction", nil)
	}
	return nil
}

// checkEligibility asks the collaborators about the bidder. Each call is
// bounded, and a failure or timeout rejects rather than passes.
func (c *Coordinator) checkEligibility(ctx context.Context, auctionID, bidderID string) error {
	verified, err := callWithTimeout(ctx, c.opts.CheckTimeout, func(ctx context.Context) (bool, error) {
		return c.deps.Users.IsVerified(ctx, bidderID)
	})
	if err != nil {
		return c.checkFailure("verification", auctionID, bidderID, err)
	}
	if !verified {
		return biddingerrors.Reject(biddingerrors.CodeVerificationNeeded, "identity verification is required before bidding", nil)
	}

	profile, err := callWithTimeout(ctx, c.opts.CheckTimeout, func(ctx context.Context) (model.ProfileStatus, error) {
		return c.deps.Users.ProfileCompleteness(ctx, bidderID)
	})
	if err != nil {
		return c.checkFailure("profile", auctionID, bidderID, err)
	}
	if !profile.Complete {
		return biddingerrors.Reject(biddingerrors.CodeProfileIncomplete, "please complete your profile before bidding", map[string]any{
			"missing": profile.Missing,
		})
	}

	deposit, err := callWithTimeout(ctx, c.opts.CheckTimeout, func(ctx context.Context) (model.DepositStatus, error) {
		return c.deps.Deposits.CheckDeposit(ctx, bidderID, auctionID)
	})
	if err != nil {
		return c.checkFailure("deposit", auctionID, bidderID, err)
	}
	if !deposit.CanBid {
		details := map[string]any{}
		if deposit.RequiredAmount != nil {
			details["required_amount"] = *deposit.RequiredAmount
		}
		if deposit.RequiredPercentage != nil {
			details["required_percentage"] = *deposit.RequiredPercentage
		}
		return biddingerrors.Reject(biddingerrors.CodeDepositRequired, "a deposit is required to bid on this auction", details)
	}
	return nil
}

func (c *Coordinator) checkBounds(auction model.Auction, amount float64) error {
	bounds := c.deps.Policy.BoundsFor(auction.CurrentPrice, auction.StartingPrice)
	details := map[string]any{
		"min_bid": bounds.MinFloat(),
		"max_bid": bounds.MaxFloat(),
	}

	switch bounds.Check(amount) {
	case pricing.BelowMinimum:
		return biddingerrors.Reject(biddingerrors.CodeBelowMinimum, fmt.Sprintf("bid must be at least %s", bounds.Min.StringFixed(0)), details)
	case pricing.AboveMaximum:
		return biddingerrors.Reject(biddingerrors.CodeAboveMaximum, fmt.Sprintf("bid must not exceed %s", bounds.Max.StringFixed(0)), details)
	}
	return nil
}

// commit appends the bid, retrying transient ledger failures. A duplicate
// amount is final.
func (c *Coordinator) commit(ctx context.Context, bid model.AcceptedBid) (model.AcceptedBid, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.opts.CommitBackoff

	attempt := 0
	return backoff.Retry(ctx, func() (model.AcceptedBid, error) {
		attempt++
		stored, err := c.deps.Ledger.AppendBid(ctx, bid)
		if err == nil {
			return stored, nil
		}
		if errors.Is(err, biddingerrors.ErrDuplicateAmount) {
			return model.AcceptedBid{}, backoff.Permanent(err)
		}
		utils.Warn("ledger append failed", map[string]any{
			"auction_id": bid.AuctionID,
			"bidder_id":  bid.BidderID,
			"attempt":    attempt,
			"error":      err.Error(),
		})
		return model.AcceptedBid{}, err
	},
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(uint(c.opts.CommitAttempts)),
	)
}

// release undoes the price lock so the amount is free again
func (c *Coordinator) release(ctx context.Context, intent model.BidIntent, lock rankcache.InsertResult) {
	if err := c.deps.Cache.Release(ctx, intent.AuctionID, intent.BidderID, intent.Amount, lock.Previous); err != nil {
		utils.Error("price lock release failed", map[string]any{
			"auction_id": intent.AuctionID,
			"bidder_id":  intent.BidderID,
			"amount":     intent.Amount,
			"error":      err.Error(),
		})
	}
}

// publish fans the delta out after commit, then streams the event. Neither
// failure undoes the bid.
func (c *Coordinator) publish(ctx context.Context, delta model.BidAccepted) {
	if c.deps.Broadcaster != nil {
		if err := c.deps.Broadcaster.BroadcastAccepted(ctx, delta); err != nil {
			utils.Warn("bid broadcast failed", map[string]any{"auction_id": delta.Bid.AuctionID, "error": err.Error()})
		}
	}
	ctx, cancel := context.WithTimeout(ctx, c.opts.EventTimeout)
	defer cancel()
	if err := c.deps.Events.Emit(ctx, delta.Bid); err != nil {
		utils.Warn("bid event not streamed", map[string]any{"auction_id": delta.Bid.AuctionID, "error": err.Error()})
	}
}

func (c *Coordinator) checkFailure(check, auctionID, bidderID string, err error) error {
	utils.Error("eligibility check failed", map[string]any{
		"check":      check,
		"auction_id": auctionID,
		"bidder_id":  bidderID,
		"code":       string(biddingerrors.CodeServerError),
		"error":      err.Error(),
	})
	return biddingerrors.Wrap(biddingerrors.CodeServerError, serverErrorMessage, fmt.Errorf("%s check: %w", check, err))
}

func (c *Coordinator) infraFailure(code biddingerrors.Code, message string, intent model.BidIntent, err error) error {
	utils.Error(message, map[string]any{
		"auction_id": intent.AuctionID,
		"bidder_id":  intent.BidderID,
		"amount":     intent.Amount,
		"code":       string(code),
		"error":      err.Error(),
	})
	if code == biddingerrors.CodeServerError {
		message = serverErrorMessage
	}
	return biddingerrors.Wrap(code, message, err)
}

// callWithTimeout bounds fn by timeout even when fn ignores its context
func callWithTimeout[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		value T
		err   error
	}
	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				var zero T
				done <- result{value: zero, err: fmt.Errorf("panic: %v", r)}
			}
		}()
		v, err := fn(ctx)
		done <- result{value: v, err: err}
	}()

	select {
	case r := <-done:
		return r.value, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
