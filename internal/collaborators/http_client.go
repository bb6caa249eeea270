package collaborators

import (
	model "bidding-room/internal/models"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"
)

// ErrUnavailable is returned when the collaborator service can't answer
var ErrUnavailable = errors.New("collaborator service unavailable")

var (
	_ UserDirectory  = (*HTTPClient)(nil)
	_ DepositChecker = (*HTTPClient)(nil)
)

// HTTPClient calls the user and deposit services over HTTP, behind a circuit breaker
type HTTPClient struct {
	client  *resty.Client
	breaker *gobreaker.CircuitBreaker
}

// NewHTTPClient creates a client for baseURL with a per-request timeout
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "collaborators",
		Timeout: 10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &HTTPClient{client: client, breaker: breaker}
}

type verificationResponse struct {
	Verified bool `json:"verified"`
}

func (c *HTTPClient) IsVerified(ctx context.Context, userID string) (bool, error) {
	var out verificationResponse
	err := c.get(ctx, "/users/{user_id}/verification", map[string]string{"user_id": userID}, nil, &out)
	if err != nil {
		return false, fmt.Errorf("verification for user %s: %w", userID, err)
	}
	return out.Verified, nil
}

func (c *HTTPClient) ProfileCompleteness(ctx context.Context, userID string) (model.ProfileStatus, error) {
	var out model.ProfileStatus
	err := c.get(ctx, "/users/{user_id}/profile-status", map[string]string{"user_id": userID}, nil, &out)
	if err != nil {
		return model.ProfileStatus{}, fmt.Errorf("profile status for user %s: %w", userID, err)
	}
	return out, nil
}

func (c *HTTPClient) CheckDeposit(ctx context.Context, userID, auctionID string) (model.DepositStatus, error) {
	var out model.DepositStatus
	query := map[string]string{"user_id": userID, "auction_id": auctionID}
	if err := c.get(ctx, "/deposits/check", nil, query, &out); err != nil {
		return model.DepositStatus{}, fmt.Errorf("deposit check for user %s on auction %s: %w", userID, auctionID, err)
	}
	return out, nil
}

func (c *HTTPClient) get(ctx context.Context, path string, pathParams, query map[string]string, out any) error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.client.R().
			SetContext(ctx).
			SetPathParams(pathParams).
			SetQueryParams(query).
			SetResult(out).
			Get(path)
		if err != nil {
			return nil, err
		}
		if resp.IsError() {
			return nil, fmt.Errorf("%w: %s returned %d", ErrUnavailable, path, resp.StatusCode())
		}
		return nil, nil
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}
