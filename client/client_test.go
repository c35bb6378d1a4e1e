package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgmarket/miniapp-client/credential"
	"github.com/tgmarket/miniapp-client/session"
	"github.com/tgmarket/miniapp-client/storage"
)

// newBackend serves the storefront API with the response shapes the
// backend has actually produced at one time or another.
func newBackend(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/products", func(w http.ResponseWriter, r *http.Request) {
		// Bare array.
		w.Write([]byte(`[{"id":1,"title":"Tea","price":3.5,"available":true}]`))
	})
	mux.HandleFunc("/api/promos", func(w http.ResponseWriter, r *http.Request) {
		// Domain-named wrapper.
		w.Write([]byte(`{"promos":[{"id":7,"code":"SPRING","active":true}]}`))
	})
	mux.HandleFunc("/api/manager/assistants", func(w http.ResponseWriter, r *http.Request) {
		// General wrapper.
		w.Write([]byte(`{"items":[{"id":3,"name":"Nika","active":true}]}`))
	})
	mux.HandleFunc("/api/admin/settings", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer admin-tok" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"admin token required"}`))
			return
		}
		// Map of scalars.
		w.Write([]byte(`{"shop_name":"tgmarket","max_items":50,"mode":"live"}`))
	})
	mux.HandleFunc("/api/login", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(DefaultContextHeader) == "" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"init data required"}`))
			return
		}
		w.Write([]byte(`{"access_token":"user-tok"}`))
	})
	mux.HandleFunc("/api/admin/login", func(w http.ResponseWriter, r *http.Request) {
		// Older deployments named the field differently.
		w.Write([]byte(`{"token":"admin-tok"}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newBackendClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	ctx := context.Background()

	bridge := session.NewBridge(storage.NewMemoryStore(),
		session.WithProvider(func() string { return "query_id=AAE&user=test" }))
	require.NoError(t, bridge.Capture(ctx, ""))

	c, err := New(Config{
		BaseURL:     srv.URL,
		Session:     bridge,
		Credentials: credential.NewStore(storage.NewMemoryStore()),
	})
	require.NoError(t, err)
	return c
}

func TestClient_ListEndpointsAcrossShapes(t *testing.T) {
	srv := newBackend(t)
	c := newBackendClient(t, srv)
	ctx := context.Background()

	products, err := c.Products(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Tea", products[0].Title)
	assert.Equal(t, 3.5, products[0].Price)

	promos, err := c.Promos(ctx)
	require.NoError(t, err)
	require.Len(t, promos, 1)
	assert.Equal(t, "SPRING", promos[0].Code)

	assistants, err := c.Assistants(ctx)
	require.NoError(t, err)
	require.Len(t, assistants, 1)
	assert.Equal(t, "Nika", assistants[0].Name)
}

func TestClient_LoginFlows(t *testing.T) {
	srv := newBackend(t)
	c := newBackendClient(t, srv)
	ctx := context.Background()

	require.NoError(t, c.Login(ctx))
	tok, ok := c.credentials.Get(ctx, credential.AudienceStandard)
	require.True(t, ok)
	assert.Equal(t, "user-tok", tok)

	require.NoError(t, c.AdminLogin(ctx, "hunter2"))

	// The stored admin token now authorizes the privileged endpoint.
	settings, err := c.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"tgmarket", "live"}, settings)
}

func TestClient_SettingsWithoutAdminToken(t *testing.T) {
	srv := newBackend(t)
	c := newBackendClient(t, srv)

	_, err := c.Settings(context.Background())
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok, "want *APIError, got %T", err)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Contains(t, apiErr.Excerpt, "admin token required")
}

func TestClient_RequiresBaseURL(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
}
