package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"farmtrade-bidding/internal/biddingerrors"
	model "farmtrade-bidding/internal/models"
	"farmtrade-bidding/services/bidding/helpers"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func setupTestHandler(t *testing.T) (*MockBiddingServiceInterface, *gin.Engine) {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	mockService := NewMockBiddingServiceInterface(ctrl)
	h := NewBiddingHandler(mockService)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/bids", h.PlaceBidHandler)
	router.GET("/items/:item_id/bids", h.ListBidsHandler)
	router.GET("/items/:item_id/max-bid", h.GetMaxBidHandler)
	router.GET("/items/:item_id/bid-status", h.GetBidStatusHandler)
	router.PATCH("/items/:item_id/bid-status", h.SetBidStatusHandler)
	router.GET("/users/:user_id/bids", h.GetBidsByUserHandler)
	router.GET("/farmers/:farmer_id/items", h.GetItemsByFarmerHandler)

	return mockService, router
}

func performJSON(t *testing.T, router *gin.Engine, method, url string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reqBody []byte
	switch v := body.(type) {
	case nil:
	case string:
		reqBody = []byte(v)
	default:
		var err error
		reqBody, err = json.Marshal(v)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func parseEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
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
		requestBody    any
		mockSetup      func(m *MockBiddingServiceInterface)
		expectedStatus int
		expectedMsg    string
		validateData   func(t *testing.T, data map[string]any)
	}{
		{
			name: "success_valid_bid",
			requestBody: helpers.PlaceBidRequest{
				ItemID: "item1",
				UserID: "user1",
				Amount: 100,
			},
			mockSetup: func(m *MockBiddingServiceInterface) {
				m.EXPECT().
					PlaceBid(gomock.Any(), "item1", "user1", 100.0).
					Return(model.Bid{
						BidID:    uuid.NewString(),
						ItemID:   "item1",
						UserID:   "user1",
						Amount:   decimal.NewFromFloat(100),
						PlacedAt: now,
					}, nil)
			},
			expectedStatus: http.StatusCreated,
			expectedMsg:    "bid placed successfully",
			validateData: func(t *testing.T, data map[string]any) {
				bidID := data["bid_id"].(string)
				require.NotEmpty(t, bidID)
				_, parseErr := uuid.Parse(bidID)
				require.NoError(t, parseErr, "BidID should be a valid UUID")
				require.Equal(t, "item1", data["item_id"])
				require.Equal(t, "user1", data["user_id"])
				require.Equal(t, 100.0, data["amount"])

				_, err := time.Parse(time.RFC3339, data["placed_at"].(string))
				require.NoError(t, err)
			},
		},
		{
			name:           "invalid_json",
			requestBody:    `{invalid json}`,
			mockSetup:      func(m *MockBiddingServiceInterface) {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request payload",
		},
		{
			name: "missing_item_id",
			requestBody: helpers.PlaceBidRequest{
				ItemID: "",
				UserID: "user1",
				Amount: 50,
			},
			mockSetup:      func(m *MockBiddingServiceInterface) {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request payload",
		},
		{
			name: "missing_user_id",
			requestBody: helpers.PlaceBidRequest{
				ItemID: "item1",
				UserID: "",
				Amount: 50,
			},
			mockSetup:      func(m *MockBiddingServiceInterface) {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request payload",
		},
		{
			name: "invalid_amount_zero",
			requestBody: helpers.PlaceBidRequest{
				ItemID: "item1",
				UserID: "user1",
				Amount: 0,
			},
			mockSetup:      func(m *MockBiddingServiceInterface) {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request payload",
		},
		{
			name: "negative_amount",
			requestBody: helpers.PlaceBidRequest{
				ItemID: "item1",
				UserID: "user1",
				Amount: -10,
			},
			mockSetup:      func(m *MockBiddingServiceInterface) {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request payload",
		},
		{
			name: "item_not_found",
			requestBody: helpers.PlaceBidRequest{
				ItemID: "itemX",
				UserID: "user1",
				Amount: 100,
			},
			mockSetup: func(m *MockBiddingServiceInterface) {
				m.EXPECT().
					PlaceBid(gomock.Any(), "itemX", "user1", 100.0).
					Return(model.Bid{}, fmt.Errorf("service: %w", biddingerrors.ErrItemNotFound))
			},
			expectedStatus: http.StatusNotFound,
			expectedMsg:    "item not found",
		},
		{
			name: "user_not_found",
			requestBody: helpers.PlaceBidRequest{
				ItemID: "item1",
				UserID: "userX",
				Amount: 100,
			},
			mockSetup: func(m *MockBiddingServiceInterface) {
				m.EXPECT().
					PlaceBid(gomock.Any(), "item1", "userX", 100.0).
					Return(model.Bid{}, fmt.Errorf("service: %w", biddingerrors.ErrUserNotFound))
			},
			expectedStatus: http.StatusNotFound,
			expectedMsg:    "user not found",
		},
		{
			name: "auction_closed",
			requestBody: helpers.PlaceBidRequest{
				ItemID: "item1",
				UserID: "user1",
				Amount: 100,
			},
			mockSetup: func(m *MockBiddingServiceInterface) {
				m.EXPECT().
					PlaceBid(gomock.Any(), "item1", "user1", 100.0).
					Return(model.Bid{}, fmt.Errorf("service: %w", biddingerrors.ErrAuctionClosed))
			},
			expectedStatus: http.StatusConflict,
			expectedMsg:    "bidding is closed for this item",
		},
		{
			name: "storage_failure",
			requestBody: helpers.PlaceBidRequest{
				ItemID: "item1",
				UserID: "user1",
				Amount: 100,
			},
			mockSetup: func(m *MockBiddingServiceInterface) {
				m.EXPECT().
					PlaceBid(gomock.Any(), "item1", "user1", 100.0).
					Return(model.Bid{}, fmt.Errorf("service: %w", biddingerrors.ErrStorage))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedMsg:    "storage failure",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			mockService, router := setupTestHandler(t)
			tc.mockSetup(mockService)

			w := performJSON(t, router, http.MethodPost, "/bids", tc.requestBody)
			require.Equal(t, tc.expectedStatus, w.Code)

			resp := parseEnvelope(t, w)
			require.Equal(t, tc.expectedMsg, resp["message"])

			if tc.validateData != nil {
				tc.validateData(t, resp["data"].(map[string]any))
			}
		})
	}
}

// Test ListBidsHandler
func TestListBidsHandler(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name           string
		itemID         string
		mockSetup      func(m *MockBiddingServiceInterface)
		expectedStatus int
		expectedCount  int
	}{
		{
			name:   "item_with_bids",
			itemID: "item1",
			mockSetup: func(m *MockBiddingServiceInterface) {
				m.EXPECT().ListBids(gomock.Any(), "item1").Return([]model.Bid{
					{BidID: "bid2", ItemID: "item1", UserID: "user2", Amount: decimal.NewFromFloat(150), PlacedAt: now},
					{BidID: "bid1", ItemID: "item1", UserID: "user1", Amount: decimal.NewFromFloat(100), PlacedAt: now},
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedCount:  2,
		},
		{
			name:   "item_with_no_bids",
			itemID: "item2",
			mockSetup: func(m *MockBiddingServiceInterface) {
				m.EXPECT().ListBids(gomock.Any(), "item2").Return([]model.Bid{}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedCount:  0,
		},
		{
			name:   "service_error",
			itemID: "item3",
			mockSetup: func(m *MockBiddingServiceInterface) {
				m.EXPECT().ListBids(gomock.Any(), "item3").Return(nil, fmt.Errorf("service: %w", biddingerrors.ErrStorage))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			mockService, router := setupTestHandler(t)
			tc.mockSetup(mockService)

			w := performJSON(t, router, http.MethodGet, "/items/"+tc.itemID+"/bids", nil)
			require.Equal(t, tc.expectedStatus, w.Code)

			if tc.expectedStatus == http.StatusOK {
				resp := parseEnvelope(t, w)
				bids := resp["data"].([]any)
				require.Len(t, bids, tc.expectedCount)

				// descending order is preserved through the DTO mapping
				if tc.expectedCount == 2 {
					first := bids[0].(map[string]any)
					second := bids[1].(map[string]any)
					require.Greater(t, first["amount"].(float64), second["amount"].(float64))
				}
			}
		})
	}
}

// Test GetMaxBidHandler
func TestGetMaxBidHandler(t *testing.T) {
	tests := []struct {
		name           string
		itemID         string
		mockSetup      func(m *MockBiddingServiceInterface)
		expectedStatus int
		expectedMax    float64
	}{
		{
			name:   "item_with_bids",
			itemID: "item1",
			mockSetup: func(m *MockBiddingServiceInterface) {
				m.EXPECT().GetMaxBid(gomock.Any(), "item1").Return(decimal.NewFromFloat(150), nil)
			},
			expectedStatus: http.StatusOK,
			expectedMax:    150,
		},
		{
			name:   "no_bids_yields_zero_not_error",
			itemID: "item2",
			mockSetup: func(m *MockBiddingServiceInterface) {
				m.EXPECT().GetMaxBid(gomock.Any(), "item2").Return(decimal.Zero, nil)
			},
			expectedStatus: http.StatusOK,
			expectedMax:    0,
		},
		{
			name:   "item_not_found",
			itemID: "itemX",
			mockSetup: func(m *MockBiddingServiceInterface) {
				m.EXPECT().GetMaxBid(gomock.Any(), "itemX").Return(decimal.Zero, fmt.Errorf("service: %w", biddingerrors.ErrItemNotFound))
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			mockService, router := setupTestHandler(t)
			tc.mockSetup(mockService)

			w := performJSON(t, router, http.MethodGet, "/items/"+tc.itemID+"/max-bid", nil)
			require.Equal(t, tc.expectedStatus, w.Code)

			if tc.expectedStatus == http.StatusOK {
				resp := parseEnvelope(t, w)
				data := resp["data"].(map[string]any)
				require.Equal(t, tc.itemID, data["item_id"])
				require.Equal(t, tc.expectedMax, data["max_bid"])
			}
		})
	}
}

// Test bid-status handlers
func TestBidStatusHandlers(t *testing.T) {
	t.Run("get_status", func(t *testing.T) {
		mockService, router := setupTestHandler(t)
		mockService.EXPECT().GetBidStatus(gomock.Any(), "item1").Return(model.Item{
			ItemID:      "item1",
			IsBidActive: true,
		}, nil)

		w := performJSON(t, router, http.MethodGet, "/items/item1/bid-status", nil)
		require.Equal(t, http.StatusOK, w.Code)

		data := parseEnvelope(t, w)["data"].(map[string]any)
		require.Equal(t, "item1", data["item_id"])
		require.Equal(t, true, data["is_bid_active"])
	})

	t.Run("get_status_not_found", func(t *testing.T) {
		mockService, router := setupTestHandler(t)
		mockService.EXPECT().GetBidStatus(gomock.Any(), "itemX").
			Return(model.Item{}, fmt.Errorf("service: %w", biddingerrors.ErrItemNotFound))

		w := performJSON(t, router, http.MethodGet, "/items/itemX/bid-status", nil)
		require.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("close_bidding", func(t *testing.T) {
		mockService, router := setupTestHandler(t)
		mockService.EXPECT().SetBidActive(gomock.Any(), "item1", false).Return(model.Item{
			ItemID:      "item1",
			FarmerID:    "farmer1",
			IsBidActive: false,
			DateAdded:   time.Now().UTC(),
		}, nil)

		w := performJSON(t, router, http.MethodPatch, "/items/item1/bid-status", helpers.BidStatusRequest{IsBidActive: boolPtr(false)})
		require.Equal(t, http.StatusOK, w.Code)

		data := parseEnvelope(t, w)["data"].(map[string]any)
		require.Equal(t, false, data["is_bid_active"])
	})

	t.Run("reopen_bidding", func(t *testing.T) {
		mockService, router := setupTestHandler(t)
		mockService.EXPECT().SetBidActive(gomock.Any(), "item1", true).Return(model.Item{
			ItemID:      "item1",
			IsBidActive: true,
			DateAdded:   time.Now().UTC(),
		}, nil)

		w := performJSON(t, router, http.MethodPatch, "/items/item1/bid-status", helpers.BidStatusRequest{IsBidActive: boolPtr(true)})
		require.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing_flag_is_bind_error", func(t *testing.T) {
		_, router := setupTestHandler(t)

		w := performJSON(t, router, http.MethodPatch, "/items/item1/bid-status", map[string]any{})
		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

// Test GetBidsByUserHandler and GetItemsByFarmerHandler
func TestUserAndFarmerHandlers(t *testing.T) {
	t.Run("bids_by_user", func(t *testing.T) {
		mockService, router := setupTestHandler(t)
		mockService.EXPECT().GetBidsByUser(gomock.Any(), "user1").Return([]model.Bid{
			{BidID: "bid1", ItemID: "item1", UserID: "user1", Amount: decimal.NewFromFloat(100), PlacedAt: time.Now().UTC()},
		}, nil)

		w := performJSON(t, router, http.MethodGet, "/users/user1/bids", nil)
		require.Equal(t, http.StatusOK, w.Code)

		bids := parseEnvelope(t, w)["data"].([]any)
		require.Len(t, bids, 1)
	})

	t.Run("bids_by_unknown_user", func(t *testing.T) {
		mockService, router := setupTestHandler(t)
		mockService.EXPECT().GetBidsByUser(gomock.Any(), "userX").
			Return(nil, fmt.Errorf("service: %w", biddingerrors.ErrUserNotFound))

		w := performJSON(t, router, http.MethodGet, "/users/userX/bids", nil)
		require.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("items_by_farmer", func(t *testing.T) {
		mockService, router := setupTestHandler(t)
		mockService.EXPECT().GetItemsByFarmer(gomock.Any(), "farmer1").Return([]model.Item{
			{ItemID: "item1", FarmerID: "farmer1", Name: "Carrots", IsBidActive: true, DateAdded: time.Now().UTC()},
			{ItemID: "item2", FarmerID: "farmer1", Name: "Bananas", IsBidActive: false, DateAdded: time.Now().UTC()},
		}, nil)

		w := performJSON(t, router, http.MethodGet, "/farmers/farmer1/items", nil)
		require.Equal(t, http.StatusOK, w.Code)

		items := parseEnvelope(t, w)["data"].([]any)
		require.Len(t, items, 2)
	})

	t.Run("farmer_service_error", func(t *testing.T) {
		mockService, router := setupTestHandler(t)
		mockService.EXPECT().GetItemsByFarmer(gomock.Any(), "farmer1").
			Return(nil, errors.New("unexpected failure"))

		w := performJSON(t, router, http.MethodGet, "/farmers/farmer1/items", nil)
		require.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func boolPtr(b bool) *bool {
	return &b
}
