package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	bidding "bidding-room/internal/biddingService"
	"bidding-room/internal/biddingerrors"
	model "bidding-room/internal/models"
	"bidding-room/internal/rankcache"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newTestRouter(h *BiddingHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if user := c.GetHeader("X-User-ID"); user != "" {
			c.Set(ContextUserID, user)
		}
		c.Next()
	})
	router.POST("/auctions/:auction_id/bids", h.PlaceBidHandler)
	router.GET("/auctions/:auction_id/bids", h.GetBidsHandler)
	router.GET("/auctions/:auction_id/state", h.GetStateHandler)
	router.GET("/healthz", h.HealthHandler)
	return router
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// Test PlaceBidHandler
func TestPlaceBidHandler(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name           string
		user           string
		requestBody    any
		mockSetup      func(m *bidding.MockCoordinatorInterface)
		expectedStatus int
		expectedCode   string
		validate       func(t *testing.T, resp map[string]any)
	}{
		{
			name:        "success_valid_bid",
			user:        "user1",
			requestBody: map[string]any{"amount": 200000},
			mockSetup: func(m *bidding.MockCoordinatorInterface) {
				m.EXPECT().Submit(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, intent model.BidIntent) (model.BidAccepted, error) {
						require.Equal(t, "a1", intent.AuctionID)
						require.Equal(t, "user1", intent.BidderID)
						require.Equal(t, 200000.0, intent.Amount)
						require.False(t, intent.SubmittedAt.IsZero())
						return model.BidAccepted{
							Bid: model.AcceptedBid{
								BidID: uuid.NewString(), Sequence: 1, AuctionID: "a1",
								BidderID: "user1", Amount: 200000, AcceptedAt: now,
							},
							TopBids:       []model.RankedEntry{{BidderID: "user1", Amount: 200000}},
							TotalBidCount: 1,
						}, nil
					})
			},
			expectedStatus: http.StatusCreated,
			validate: func(t *testing.T, resp map[string]any) {
				data := resp["data"].(map[string]any)
				bid := data["bid"].(map[string]any)
				_, err := uuid.Parse(bid["bid_id"].(string))
				require.NoError(t, err, "BidID should be a valid UUID")
				require.Equal(t, "user1", bid["bidder_id"])
				require.Equal(t, 1.0, data["total_bid_count"])
				require.Len(t, data["top_bids"], 1)
			},
		},
		{
			name:           "invalid_json",
			user:           "user1",
			requestBody:    `{invalid json}`,
			mockSetup:      func(m *bidding.MockCoordinatorInterface) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing_amount",
			user:           "user1",
			requestBody:    map[string]any{},
			mockSetup:      func(m *bidding.MockCoordinatorInterface) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "anonymous_bidder",
			requestBody: map[string]any{"amount": 200000},
			mockSetup: func(m *bidding.MockCoordinatorInterface) {
				m.EXPECT().Submit(gomock.Any(), gomock.Any()).
					Return(model.BidAccepted{}, biddingerrors.Reject(biddingerrors.CodeInvalidInput, "auction_id and bidder_id are required", nil))
			},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "INVALID_INPUT",
		},
		{
			name:        "auction_not_found",
			user:        "user1",
			requestBody: map[string]any{"amount": 200000},
			mockSetup: func(m *bidding.MockCoordinatorInterface) {
				m.EXPECT().Submit(gomock.Any(), gomock.Any()).
					Return(model.BidAccepted{}, biddingerrors.Reject(biddingerrors.CodeAuctionNotFound, "auction not found", nil))
			},
			expectedStatus: http.StatusNotFound,
			expectedCode:   "AUCTION_NOT_FOUND",
		},
		{
			name:        "deposit_required",
			user:        "user1",
			requestBody: map[string]any{"amount": 200000},
			mockSetup: func(m *bidding.MockCoordinatorInterface) {
				m.EXPECT().Submit(gomock.Any(), gomock.Any()).
					Return(model.BidAccepted{}, biddingerrors.Reject(biddingerrors.CodeDepositRequired, "deposit required", map[string]any{"required_amount": 50000.0}))
			},
			expectedStatus: http.StatusForbidden,
			expectedCode:   "DEPOSIT_REQUIRED",
			validate: func(t *testing.T, resp map[string]any) {
				ctx := resp["context"].(map[string]any)
				require.Equal(t, 50000.0, ctx["required_amount"])
			},
		},
		{
			name:        "below_minimum",
			user:        "user1",
			requestBody: map[string]any{"amount": 150000},
			mockSetup: func(m *bidding.MockCoordinatorInterface) {
				m.EXPECT().Submit(gomock.Any(), gomock.Any()).
					Return(model.BidAccepted{}, biddingerrors.Reject(biddingerrors.CodeBelowMinimum, "bid is below the minimum", map[string]any{"min_bid": 200000.0}))
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   "BELOW_MINIMUM",
		},
		{
			name:        "price_exists",
			user:        "user1",
			requestBody: map[string]any{"amount": 200000},
			mockSetup: func(m *bidding.MockCoordinatorInterface) {
				m.EXPECT().Submit(gomock.Any(), gomock.Any()).
					Return(model.BidAccepted{}, biddingerrors.Reject(biddingerrors.CodePriceExists, "price already taken", nil))
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   "PRICE_EXISTS",
		},
		{
			name:        "commit_failed",
			user:        "user1",
			requestBody: map[string]any{"amount": 200000},
			mockSetup: func(m *bidding.MockCoordinatorInterface) {
				m.EXPECT().Submit(gomock.Any(), gomock.Any()).
					Return(model.BidAccepted{}, biddingerrors.Wrap(biddingerrors.CodeCommitFailed, "could not save bid", errors.New("db down")))
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedCode:   "COMMIT_FAILED",
		},
		{
			name:        "raw_error_is_server_error",
			user:        "user1",
			requestBody: map[string]any{"amount": 200000},
			mockSetup: func(m *bidding.MockCoordinatorInterface) {
				m.EXPECT().Submit(gomock.Any(), gomock.Any()).
					Return(model.BidAccepted{}, errors.New("database failure"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   "SERVER_ERROR",
			validate: func(t *testing.T, resp map[string]any) {
				require.NotContains(t, resp["message"], "database failure")
			},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockService := bidding.NewMockCoordinatorInterface(ctrl)
			tc.mockSetup(mockService)
			router := newTestRouter(NewBiddingHandler(mockService))

			var reqBody []byte
			switch v := tc.requestBody.(type) {
			case string:
				reqBody = []byte(v)
			default:
				var err error
				reqBody, err = json.Marshal(v)
				require.NoError(t, err)
			}

			req := httptest.NewRequest(http.MethodPost, "/auctions/a1/bids", bytes.NewReader(reqBody))
			req.Header.Set("Content-Type", "application/json")
			if tc.user != "" {
				req.Header.Set("X-User-ID", tc.user)
			}
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			require.Equal(t, tc.expectedStatus, w.Code)
			resp := decode(t, w)
			if tc.expectedCode != "" {
				require.Equal(t, tc.expectedCode, resp["code"])
			}
			if tc.validate != nil {
				tc.validate(t, resp)
			}
		})
	}
}

// Test GetBidsHandler
func TestGetBidsHandler(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name           string
		auctionID      string
		mockSetup      func(m *bidding.MockCoordinatorInterface)
		expectedStatus int
		expectedLen    int
	}{
		{
			name:      "success_multiple_bids",
			auctionID: "a1",
			mockSetup: func(m *bidding.MockCoordinatorInterface) {
				m.EXPECT().BidHistory(gomock.Any(), "a1").Return([]model.AcceptedBid{
					{BidID: uuid.NewString(), Sequence: 1, AuctionID: "a1", BidderID: "user1", Amount: 200000, AcceptedAt: now},
					{BidID: uuid.NewString(), Sequence: 2, AuctionID: "a1", BidderID: "user2", Amount: 300000, AcceptedAt: now},
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedLen:    2,
		},
		{
			name:      "success_no_bids",
			auctionID: "a2",
			mockSetup: func(m *bidding.MockCoordinatorInterface) {
				m.EXPECT().BidHistory(gomock.Any(), "a2").Return(nil, nil)
			},
			expectedStatus: http.StatusOK,
			expectedLen:    0,
		},
		{
			name:      "auction_not_found",
			auctionID: "missing",
			mockSetup: func(m *bidding.MockCoordinatorInterface) {
				m.EXPECT().BidHistory(gomock.Any(), "missing").
					Return(nil, biddingerrors.Reject(biddingerrors.CodeAuctionNotFound, "auction not found", nil))
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:      "extremely_large_number_of_bids",
			auctionID: "a3",
			mockSetup: func(m *bidding.MockCoordinatorInterface) {
				bids := make([]model.AcceptedBid, 1000)
				for i := range bids {
					bids[i] = model.AcceptedBid{
						BidID:      uuid.NewString(),
						Sequence:   int64(i + 1),
						AuctionID:  "a3",
						BidderID:   fmt.Sprintf("user%d", i),
						Amount:     float64(i + 1),
						AcceptedAt: now,
					}
				}
				m.EXPECT().BidHistory(gomock.Any(), "a3").Return(bids, nil)
			},
			expectedStatus: http.StatusOK,
			expectedLen:    1000,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockService := bidding.NewMockCoordinatorInterface(ctrl)
			tc.mockSetup(mockService)
			router := newTestRouter(NewBiddingHandler(mockService))

			req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/auctions/%s/bids", tc.auctionID), nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, tc.expectedStatus, w.Code)
			resp := decode(t, w)
			if w.Code == http.StatusOK {
				require.Len(t, resp["data"], tc.expectedLen)
			}
		})
	}
}

func TestGetStateHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockService := bidding.NewMockCoordinatorInterface(ctrl)
	router := newTestRouter(NewBiddingHandler(mockService))

	top := model.RankedEntry{BidderID: "user2", Amount: 300000}
	mockService.EXPECT().QueryState(gomock.Any(), "a1").Return(model.RoomState{
		AuctionID:     "a1",
		TopBids:       []model.RankedEntry{top, {BidderID: "user1", Amount: 200000}},
		HighestBid:    &top,
		TotalBidCount: 2,
	}, nil)
	mockService.EXPECT().QueryState(gomock.Any(), "empty").Return(model.RoomState{AuctionID: "empty"}, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auctions/a1/state", nil))
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]any)
	require.Equal(t, 2.0, data["total_bid_count"])
	require.Equal(t, "user2", data["highest_bid"].(map[string]any)["bidder_id"])

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auctions/empty/state", nil))
	require.Equal(t, http.StatusOK, w.Code)
	data = decode(t, w)["data"].(map[string]any)
	require.Nil(t, data["highest_bid"])
	require.NotNil(t, data["top_bids"], "top_bids is an empty list, never null")
}

func TestHealthHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockService := bidding.NewMockCoordinatorInterface(ctrl)
	router := newTestRouter(NewBiddingHandler(mockService))

	mockService.EXPECT().Mode().Return(rankcache.ModeLedgerFallback)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]any)
	require.Equal(t, "ledger-fallback", data["cache_mode"])
}
