package integrationtests

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	bidding "farmtrade-bidding/internal/biddingService"
	model "farmtrade-bidding/internal/models"
	"farmtrade-bidding/internal/repository"
	"farmtrade-bidding/internal/server"

	"github.com/gin-gonic/gin"
)

// defaultUsers are seeded into every test router so placements pass
// the user directory check.
var defaultUsers = []model.User{
	{UserID: "farmer1", Username: "sunil"},
	{UserID: "user1", Username: "kamala"},
	{UserID: "user2", Username: "ruwan"},
	{UserID: "user3", Username: "nimal"},
}

// openItem builds an item accepting bids, owned by farmer1.
func openItem(itemID, name string) model.Item {
	return model.Item{
		ItemID:      itemID,
		FarmerID:    "farmer1",
		Category:    "vegetables",
		Name:        name,
		Quantity:    100,
		Unit:        "kg",
		IsOrganic:   true,
		IsBidActive: true,
		DateAdded:   time.Now().UTC(),
	}
}

// SetupTestRouterWithItems initializes the router and seeds the repo
// with the default users plus the given items.
func SetupTestRouterWithItems(items ...model.Item) *gin.Engine {
	gin.SetMode(gin.TestMode)
	repo := repository.NewMemoryRepo()

	for _, user := range defaultUsers {
		repo.AddUser(user)
	}
	for _, item := range items {
		repo.AddItem(item)
	}

	service := bidding.NewBiddingService(repo)
	router := server.SetupRouter(service)
	return router
}

// ExecuteRequestAndParse executes an HTTP request on the given router and parses the response
func ExecuteRequestAndParse(t *testing.T, router *gin.Engine, method, url string, body any) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()

	var reqBody []byte
	var err error

	switch v := body.(type) {
	case nil:
	case []byte:
		reqBody = v
	case string:
		reqBody = []byte(v)
	default:
		reqBody, err = json.Marshal(v)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	var resp map[string]any
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
	}

	return resp, w
}

// dataObject extracts the envelope's data field as an object.
func dataObject(t *testing.T, resp map[string]any) map[string]any {
	t.Helper()

	data, ok := resp["data"].(map[string]any)
	if !ok {
		t.Fatalf("response data is not an object: %v", resp)
	}
	return data
}

// dataList extracts the envelope's data field as a list.
func dataList(t *testing.T, resp map[string]any) []any {
	t.Helper()

	data, ok := resp["data"].([]any)
	if !ok {
		t.Fatalf("response data is not a list: %v", resp)
	}
	return data
}
