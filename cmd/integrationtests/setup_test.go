package integrationtests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	auction "auction-house/internal/auctionService"
	auth "auction-house/internal/authService"
	"auction-house/internal/repository"
	"auction-house/internal/server"
	"auction-house/services/auction/helpers"
)

const testJWTSecret = "integration-test-secret"

// SetupTestRouter wires the full stack over an in-memory repository.
func SetupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := repository.NewMemoryRepo()
	auctionService := auction.NewAuctionService(repo)
	authService, err := auth.NewAuthService(repo, testJWTSecret, time.Hour)
	require.NoError(t, err)

	return server.SetupRouter(auctionService, authService, repo, authService)
}

// ExecuteRequest executes an HTTP request with an optional bearer token and
// parses the response envelope.
func ExecuteRequest(t *testing.T, router *gin.Engine, method, url, token string, body any) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()

	var reqBody []byte
	switch v := body.(type) {
	case nil:
	case string:
		reqBody = []byte(v)
	default:
		b, err := json.Marshal(v)
		require.NoError(t, err)
		reqBody = b
	}

	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp map[string]any
	if len(w.Body.Bytes()) > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return resp, w
}

// RegisterAndLogin creates an account and returns a valid bearer token.
func RegisterAndLogin(t *testing.T, router *gin.Engine, username string) string {
	t.Helper()

	_, w := ExecuteRequest(t, router, http.MethodPost, "/register", "", helpers.RegisterRequest{
		Username:     username,
		Email:        username + "@example.com",
		Password:     "s3cret",
		Confirmation: "s3cret",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	resp, w := ExecuteRequest(t, router, http.MethodPost, "/login", "", helpers.LoginRequest{
		Username: username,
		Password: "s3cret",
	})
	require.Equal(t, http.StatusOK, w.Code)

	token := resp["data"].(map[string]any)["token"].(string)
	require.NotEmpty(t, token)
	return token
}

// CreateTestListing creates a listing as the given user and returns its id.
func CreateTestListing(t *testing.T, router *gin.Engine, token, title string, startingBid float64) string {
	t.Helper()

	resp, w := ExecuteRequest(t, router, http.MethodPost, "/listings", token, helpers.CreateListingRequest{
		Title:       title,
		Description: "integration test listing",
		StartingBid: startingBid,
		ImageURL:    "https://img.example.com/item.jpg",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	listingID := resp["data"].(map[string]any)["listing_id"].(string)
	require.NotEmpty(t, listingID)
	return listingID
}
