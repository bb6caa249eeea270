// Package collaborators holds the bidder eligibility checks owned by other
// services: identity verification, profile completeness and deposits.
package collaborators

import (
	model "bidding-room/internal/models"
	"context"
	"sync"
)

// UserDirectory answers identity and profile questions about a bidder
type UserDirectory interface {
	IsVerified(ctx context.Context, userID string) (bool, error)
	ProfileCompleteness(ctx context.Context, userID string) (model.ProfileStatus, error)
}

// DepositChecker answers whether a bidder holds a paid deposit for an auction
type DepositChecker interface {
	CheckDeposit(ctx context.Context, userID, auctionID string) (model.DepositStatus, error)
}

// Static is an in-process UserDirectory and DepositChecker. Every user is
// verified, complete and deposited unless configured otherwise.
type Static struct {
	mu         sync.RWMutex
	unverified map[string]bool
	incomplete map[string]model.MissingFields
	deposits   map[string]model.DepositStatus // key: userID|auctionID
}

var (
	_ UserDirectory  = (*Static)(nil)
	_ DepositChecker = (*Static)(nil)
)

// NewStatic creates a permissive Static collaborator
func NewStatic() *Static {
	return &Static{
		unverified: make(map[string]bool),
		incomplete: make(map[string]model.MissingFields),
		deposits:   make(map[string]model.DepositStatus),
	}
}

func depositKey(userID, auctionID string) string { return userID + "|" + auctionID }

// SetUnverified marks a user as not verified
func (s *Static) SetUnverified(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unverified[userID] = true
}

// SetIncomplete marks profile fields as missing for a user
func (s *Static) SetIncomplete(userID string, missing model.MissingFields) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.incomplete[userID] = missing
}

// SetDeposit overrides the deposit answer for one user on one auction
func (s *Static) SetDeposit(userID, auctionID string, status model.DepositStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deposits[depositKey(userID, auctionID)] = status
}

func (s *Static) IsVerified(_ context.Context, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.unverified[userID], nil
}

func (s *Static) ProfileCompleteness(_ context.Context, userID string) (model.ProfileStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	missing, ok := s.incomplete[userID]
	if !ok {
		return model.ProfileStatus{Complete: true}, nil
	}
	return model.ProfileStatus{Complete: false, Missing: missing}, nil
}

func (s *Static) CheckDeposit(_ context.Context, userID, auctionID string) (model.DepositStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if status, ok := s.deposits[depositKey(userID, auctionID)]; ok {
		return status, nil
	}
	return model.DepositStatus{CanBid: true}, nil
}
