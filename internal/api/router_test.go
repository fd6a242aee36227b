package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/agencyuptime/dashboard-api/internal/config"
	"github.com/agencyuptime/dashboard-api/internal/db"
	"github.com/agencyuptime/dashboard-api/internal/metrics"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: "5000", Mode: "test"},
		Auth: config.AuthConfig{
			JWTSecret:       "test-secret",
			TokenTTL:        15 * time.Minute,
			RefreshTokenTTL: 168 * time.Hour,
		},
		Checks: config.ChecksConfig{
			SlowThresholdMs:    3000,
			SSLExpiryDays:      7,
			HistoryWindow:      100,
			DefaultIntervalMin: 5,
		},
		RateLimit: config.RateLimitConfig{RequestsPerSecond: 1000, Burst: 1000},
	}
}

func newTestServer(t *testing.T) (*Server, *db.MemoryStore) {
	t.Helper()

	store := db.NewMemoryStore(100)
	require.NoError(t, db.Seed(store))

	server := NewServer(testConfig(), store, metrics.NewCollector(), zap.NewNop())
	return server, store
}

func doJSON(t *testing.T, server *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	server.Router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var payload map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	return payload
}

func signUp(t *testing.T, server *Server) string {
	t.Helper()

	w := doJSON(t, server, http.MethodPost, "/api/v1/auth/signup", "", gin.H{
		"name":     "Test Agency",
		"email":    "owner@agency.test",
		"password": "correct-horse",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	token, ok := decode(t, w)["token"].(string)
	require.True(t, ok)
	require.NotEmpty(t, token)
	return token
}

func TestHealthEndpoints(t *testing.T) {
	server, _ := newTestServer(t)

	assert.Equal(t, http.StatusOK, doJSON(t, server, http.MethodGet, "/health", "", nil).Code)
	assert.Equal(t, http.StatusOK, doJSON(t, server, http.MethodGet, "/ready", "", nil).Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	server, _ := newTestServer(t)

	assert.Equal(t, http.StatusUnauthorized, doJSON(t, server, http.MethodGet, "/api/v1/sites", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, doJSON(t, server, http.MethodGet, "/api/v1/alerts", "garbage-token", nil).Code)
}

func TestSignUpLoginRefreshFlow(t *testing.T) {
	server, _ := newTestServer(t)
	signUp(t, server)

	w := doJSON(t, server, http.MethodPost, "/api/v1/auth/signup", "", gin.H{
		"name": "Dup", "email": "owner@agency.test", "password": "correct-horse",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, server, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email": "owner@agency.test", "password": "correct-horse",
	})
	require.Equal(t, http.StatusOK, w.Code)
	payload := decode(t, w)
	refresh, _ := payload["refreshToken"].(string)
	require.NotEmpty(t, refresh)

	w = doJSON(t, server, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email": "owner@agency.test", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, server, http.MethodPost, "/api/v1/auth/refresh", "", gin.H{"refreshToken": refresh})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decode(t, w)["token"])
}

func TestAccessAndRefreshTokensAreNotInterchangeable(t *testing.T) {
	server, _ := newTestServer(t)

	w := doJSON(t, server, http.MethodPost, "/api/v1/auth/signup", "", gin.H{
		"name": "Test Agency", "email": "owner@agency.test", "password": "correct-horse",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	payload := decode(t, w)
	access, _ := payload["token"].(string)
	refresh, _ := payload["refreshToken"].(string)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)

	// A refresh token is not an access token.
	assert.Equal(t, http.StatusUnauthorized, doJSON(t, server, http.MethodGet, "/api/v1/sites", refresh, nil).Code)

	// An access token is not a refresh token.
	w = doJSON(t, server, http.MethodPost, "/api/v1/auth/refresh", "", gin.H{"refreshToken": access})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Used for their own purposes, both still work.
	assert.Equal(t, http.StatusOK, doJSON(t, server, http.MethodGet, "/api/v1/sites", access, nil).Code)
	w = doJSON(t, server, http.MethodPost, "/api/v1/auth/refresh", "", gin.H{"refreshToken": refresh})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListSitesIncludesFleetSummary(t *testing.T) {
	server, _ := newTestServer(t)
	token := signUp(t, server)

	w := doJSON(t, server, http.MethodGet, "/api/v1/sites", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	payload := decode(t, w)
	assert.Equal(t, float64(4), payload["totalSites"])
	assert.Equal(t, float64(2), payload["upSites"])
	assert.Equal(t, float64(1), payload["downSites"])
	assert.NotNil(t, payload["avgUptime"])
	assert.Len(t, payload["sites"], 4)
}

func TestCreateSiteRejectsInvalidURL(t *testing.T) {
	server, store := newTestServer(t)
	token := signUp(t, server)

	before, err := store.ListSites(context.Background())
	require.NoError(t, err)

	w := doJSON(t, server, http.MethodPost, "/api/v1/sites", token, gin.H{
		"name": "Broken", "url": "not-a-url",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Nothing was recorded.
	after, err := store.ListSites(context.Background())
	require.NoError(t, err)
	assert.Equal(t, len(before), len(after))
}

func TestCreateSiteStartsPending(t *testing.T) {
	server, _ := newTestServer(t)
	token := signUp(t, server)

	w := doJSON(t, server, http.MethodPost, "/api/v1/sites", token, gin.H{
		"name": "New Client", "url": "https://newclient.example.com",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	payload := decode(t, w)
	assert.Equal(t, "pending", payload["status"])
	assert.Nil(t, payload["lastCheck"])
	assert.Equal(t, float64(0), payload["uptime"])
	assert.NotEmpty(t, payload["id"])
}

func TestGetAndDeleteSite(t *testing.T) {
	server, _ := newTestServer(t)
	token := signUp(t, server)

	w := doJSON(t, server, http.MethodGet, "/api/v1/sites/site-001", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "site-001", decode(t, w)["id"])

	assert.Equal(t, http.StatusNotFound, doJSON(t, server, http.MethodGet, "/api/v1/sites/nope", token, nil).Code)

	assert.Equal(t, http.StatusNoContent, doJSON(t, server, http.MethodDelete, "/api/v1/sites/site-001", token, nil).Code)
	assert.Equal(t, http.StatusNotFound, doJSON(t, server, http.MethodGet, "/api/v1/sites/site-001", token, nil).Code)
}

func TestIngestCheckCreatesAlertAndUpdatesSite(t *testing.T) {
	server, _ := newTestServer(t)
	token := signUp(t, server)

	w := doJSON(t, server, http.MethodPost, "/api/v1/sites/site-001/checks", token, gin.H{
		"success": false, "statusCode": 0,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	payload := decode(t, w)
	require.Contains(t, payload, "alert")
	alert := payload["alert"].(map[string]any)
	assert.Equal(t, "DOWN", alert["type"])
	assert.Equal(t, "critical", alert["severity"])

	site := payload["site"].(map[string]any)
	assert.Equal(t, "down", site["status"])
}

func TestIngestCheckUnknownSite(t *testing.T) {
	server, _ := newTestServer(t)
	token := signUp(t, server)

	w := doJSON(t, server, http.MethodPost, "/api/v1/sites/nope/checks", token, gin.H{
		"success": true, "responseTime": 100, "statusCode": 200,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListAlertsFiltersAndCounts(t *testing.T) {
	server, _ := newTestServer(t)
	token := signUp(t, server)

	w := doJSON(t, server, http.MethodGet, "/api/v1/alerts?resolved=false", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	payload := decode(t, w)
	assert.Equal(t, float64(3), payload["totalAlerts"])
	assert.Equal(t, float64(3), payload["unresolvedAlerts"])
	assert.Equal(t, float64(1), payload["criticalAlerts"])
	assert.Equal(t, float64(1), payload["warningAlerts"])

	for _, bad := range []string{"resolved=maybe", "severity=fatal", "limit=0", "limit=ten"} {
		w := doJSON(t, server, http.MethodGet, "/api/v1/alerts?"+bad, token, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, bad)
	}
}

func TestGetBillingComposesInvoice(t *testing.T) {
	server, _ := newTestServer(t)
	token := signUp(t, server)

	w := doJSON(t, server, http.MethodGet, "/api/v1/billing", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	payload := decode(t, w)
	invoice := payload["upcomingInvoice"].(map[string]any)
	// Professional 5000 + pdf_reports 2900 + status_pages 4900.
	assert.Equal(t, float64(12800), invoice["amountDue"])
	assert.Len(t, invoice["lineItems"], 3)

	usage := payload["usage"].(map[string]any)
	assert.Equal(t, float64(4), usage["sitesMonitored"])
}

func TestBillingActionValidation(t *testing.T) {
	server, _ := newTestServer(t)
	token := signUp(t, server)

	w := doJSON(t, server, http.MethodPost, "/api/v1/billing", token, gin.H{"action": "launch_rocket"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, server, http.MethodPost, "/api/v1/billing", token, gin.H{"action": "update_plan"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, server, http.MethodPost, "/api/v1/billing", token, gin.H{"action": "update_plan", "planId": "agency"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["success"])
}

func TestSiteHistoryEndpoint(t *testing.T) {
	server, _ := newTestServer(t)
	token := signUp(t, server)

	w := doJSON(t, server, http.MethodGet, "/api/v1/sites/site-001/history", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	history, ok := decode(t, w)["history"].([]any)
	require.True(t, ok)
	require.NotEmpty(t, history)

	// Oldest first.
	first := history[0].(map[string]any)
	last := history[len(history)-1].(map[string]any)
	firstAt, err := time.Parse(time.RFC3339, fmt.Sprint(first["checkedAt"]))
	require.NoError(t, err)
	lastAt, err := time.Parse(time.RFC3339, fmt.Sprint(last["checkedAt"]))
	require.NoError(t, err)
	assert.False(t, firstAt.After(lastAt))

	assert.Equal(t, http.StatusNotFound, doJSON(t, server, http.MethodGet, "/api/v1/sites/nope/history", token, nil).Code)
}
