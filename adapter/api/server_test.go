package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	billingApp "github.com/nestora/nestora/internal/billing/application"
	billingPersistence "github.com/nestora/nestora/internal/billing/infrastructure/persistence"
	listingCommands "github.com/nestora/nestora/internal/listings/application/commands"
	listingQueries "github.com/nestora/nestora/internal/listings/application/queries"
	listingsDomain "github.com/nestora/nestora/internal/listings/domain"
	listingPersistence "github.com/nestora/nestora/internal/listings/infrastructure/persistence"
	"github.com/nestora/nestora/internal/shared/infrastructure/crypto"
	"github.com/nestora/nestora/internal/shared/infrastructure/migrations"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

const testSecret = "test-webhook-secret"

type testEnv struct {
	handler  http.Handler
	listings listingsDomain.ListingRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithConfig(t, DefaultServerConfig())
}

func newTestEnvWithConfig(t *testing.T, cfg ServerConfig) *testEnv {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrations.RunSQLiteMigrations(context.Background(), db))

	subscriptions := billingPersistence.NewSQLiteSubscriptionRepository(db)
	payments := billingPersistence.NewSQLitePaymentRepository(db)
	listings := listingPersistence.NewSQLiteListingRepository(db)

	apply := billingApp.NewApplyOrderEventHandler(billingApp.ApplyOrderEventConfig{
		Subscriptions: subscriptions,
		Payments:      payments,
		WebhookSecret: testSecret,
	})
	check := billingApp.NewCheckSubscriptionHandler(subscriptions, nil)
	resolver := billingApp.NewResolveEntitlementHandler(subscriptions)

	billingHandler := NewBillingHandler(apply, check, nil)
	listingsHandler := NewListingsHandler(ListingsHandlerConfig{
		Create:     listingCommands.NewCreateListingHandler(listings, resolver, nil, nil),
		TrackClick: listingCommands.NewTrackClickHandler(listings),
		Overview:   listingQueries.NewSellerOverviewHandler(listings, nil, resolver, nil),
		Listings:   listings,
	})

	server := NewServer(cfg, billingHandler, listingsHandler, nil)
	return &testEnv{handler: server.Handler(), listings: listings}
}

func (e *testEnv) do(t *testing.T, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) deliverWebhook(t *testing.T, payload string) *httptest.ResponseRecorder {
	t.Helper()
	return e.do(t, http.MethodPost, "/webhooks/billing", payload, map[string]string{
		SignatureHeader: crypto.SignPayload([]byte(payload), testSecret),
	})
}

func webhookPayload(userID, plan, orderID string, total int64) string {
	raw, _ := json.Marshal(map[string]any{
		"meta": map[string]any{
			"event_name":  "order_created",
			"custom_data": map[string]any{"user_id": userID},
		},
		"data": map[string]any{
			"id": orderID,
			"attributes": map[string]any{
				"total":            total,
				"first_order_item": map[string]any{"variant_name": plan},
			},
		},
	})
	return string(raw)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "healthy", decodeBody(t, rec)["status"])
}

func TestWebhookThenCheckSubscription(t *testing.T) {
	env := newTestEnv(t)
	userID := uuid.NewString()

	rec := env.deliverWebhook(t, webhookPayload(userID, "Pro", "order-1", 12900))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, true, body["applied"])
	require.Equal(t, "order_created", body["event"])

	rec = env.do(t, http.MethodGet, "/api/v1/subscriptions/check?userId="+userID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeBody(t, rec)
	require.Equal(t, true, body["hasActiveSubscription"])
	sub, ok := body["subscription"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "Pro", sub["plan"])
	require.Equal(t, "active", sub["status"])
}

func TestWebhook_InvalidSignature(t *testing.T) {
	env := newTestEnv(t)
	payload := webhookPayload(uuid.NewString(), "Pro", "order-1", 1000)

	rec := env.do(t, http.MethodPost, "/webhooks/billing", payload, map[string]string{
		SignatureHeader: "0000",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/webhooks/billing", payload, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWebhook_MissingData(t *testing.T) {
	env := newTestEnv(t)

	rec := env.deliverWebhook(t, webhookPayload("", "Pro", "order-1", 1000))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.deliverWebhook(t, webhookPayload(uuid.NewString(), "", "order-1", 1000))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.deliverWebhook(t, webhookPayload(uuid.NewString(), "Enterprise", "order-1", 1000))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWebhook_IgnoredEventKind(t *testing.T) {
	env := newTestEnv(t)
	payload := `{"meta":{"event_name":"subscription_cancelled"}}`

	rec := env.deliverWebhook(t, payload)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, false, body["applied"])
	require.Equal(t, "subscription_cancelled", body["event"])
}

func TestCheckSubscription_Validation(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/subscriptions/check", "", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/subscriptions/check?userId=nope", "", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckSubscription_NoRecord(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/subscriptions/check?userId="+uuid.NewString(), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, false, body["hasActiveSubscription"])
	// The key is present with an explicit null, not omitted.
	require.Contains(t, rec.Body.String(), `"subscription":null`)
}
