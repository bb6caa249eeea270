package collaborators

import (
	model "bidding-room/internal/models"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStatic_Defaults(t *testing.T) {
	ctx := context.Background()
	s := NewStatic()

	verified, err := s.IsVerified(ctx, "u1")
	require.NoError(t, err)
	require.True(t, verified)

	profile, err := s.ProfileCompleteness(ctx, "u1")
	require.NoError(t, err)
	require.True(t, profile.Complete)

	deposit, err := s.CheckDeposit(ctx, "u1", "a1")
	require.NoError(t, err)
	require.True(t, deposit.CanBid)
}

func TestStatic_Overrides(t *testing.T) {
	ctx := context.Background()
	s := NewStatic()
	pct := 10.0

	s.SetUnverified("u1")
	s.SetIncomplete("u2", model.MissingFields{Phone: true, Region: true})
	s.SetDeposit("u3", "a1", model.DepositStatus{CanBid: false, RequiredPercentage: &pct})

	verified, err := s.IsVerified(ctx, "u1")
	require.NoError(t, err)
	require.False(t, verified)

	profile, err := s.ProfileCompleteness(ctx, "u2")
	require.NoError(t, err)
	require.False(t, profile.Complete)
	require.True(t, profile.Missing.Phone)
	require.False(t, profile.Missing.City)

	deposit, err := s.CheckDeposit(ctx, "u3", "a1")
	require.NoError(t, err)
	require.False(t, deposit.CanBid)
	require.Equal(t, 10.0, *deposit.RequiredPercentage)

	other, err := s.CheckDeposit(ctx, "u3", "a2")
	require.NoError(t, err)
	require.True(t, other.CanBid)
}

func newCollaboratorServer(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/users/u1/verification", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"verified": true})
	})
	mux.HandleFunc("/users/u1/profile-status", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"complete": false,
			"missing":  map[string]bool{"phone": false, "address": true, "city": true, "region": false},
		})
	})
	mux.HandleFunc("/deposits/check", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("user_id") != "u1" || r.URL.Query().Get("auction_id") != "a1" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"can_bid": false, "required_amount": 50000})
	})
	mux.HandleFunc("/users/slow/verification", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_ = json.NewEncoder(w).Encode(map[string]any{"verified": true})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPClient(t *testing.T) {
	ctx := context.Background()
	srv := newCollaboratorServer(t)
	client := NewHTTPClient(srv.URL, time.Second)

	verified, err := client.IsVerified(ctx, "u1")
	require.NoError(t, err)
	require.True(t, verified)

	profile, err := client.ProfileCompleteness(ctx, "u1")
	require.NoError(t, err)
	require.False(t, profile.Complete)
	require.Equal(t, model.MissingFields{Address: true, City: true}, profile.Missing)

	deposit, err := client.CheckDeposit(ctx, "u1", "a1")
	require.NoError(t, err)
	require.False(t, deposit.CanBid)
	require.NotNil(t, deposit.RequiredAmount)
	require.Equal(t, 50000.0, *deposit.RequiredAmount)
	require.Nil(t, deposit.RequiredPercentage)
}

func TestHTTPClient_ErrorStatus(t *testing.T) {
	srv := newCollaboratorServer(t)
	client := NewHTTPClient(srv.URL, time.Second)

	_, err := client.IsVerified(context.Background(), "unknown")
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrUnavailable))
}

func TestHTTPClient_Timeout(t *testing.T) {
	srv := newCollaboratorServer(t)
	client := NewHTTPClient(srv.URL, 50*time.Millisecond)

	_, err := client.IsVerified(context.Background(), "slow")
	require.Error(t, err)
}

func TestHTTPClient_BreakerOpens(t *testing.T) {
	srv := newCollaboratorServer(t)
	client := NewHTTPClient(srv.URL, time.Second)

	for i := 0; i < 5; i++ {
		_, err := client.IsVerified(context.Background(), "unknown")
		require.Error(t, err)
	}

	// breaker is open now, even a healthy call is refused
	_, err := client.IsVerified(context.Background(), "u1")
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrUnavailable))
}
