package backend_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regpulse-io/regpulse/internal/backend"
	"github.com/regpulse-io/regpulse/internal/testutil"
)

func newClient(t *testing.T, url string) *backend.Client {
	t.Helper()
	c, err := backend.New(backend.Config{URL: url, ServiceKey: "service-key"})
	require.NoError(t, err)
	return c
}

func TestNew_Validation(t *testing.T) {
	_, err := backend.New(backend.Config{ServiceKey: "k"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "URL required")

	_, err = backend.New(backend.Config{URL: "http://localhost"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "service key required")
}

func TestRPC_SendsAuthHeaders(t *testing.T) {
	var gotAPIKey, gotAuth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAPIKey = r.Header.Get("apikey")
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "/rest/v1/rpc/reindex_alerts", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"indexes_created": 4, "duration_ms": 120})
	}))
	defer ts.Close()

	c := newClient(t, ts.URL)
	res, err := c.ReindexAlerts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, res.IndexesCreated)
	assert.Equal(t, int64(120), res.DurationMS)
	assert.Equal(t, "service-key", gotAPIKey)
	assert.Equal(t, "Bearer service-key", gotAuth)
}

func TestRPC_ParamsMarshaled(t *testing.T) {
	var body map[string]interface{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"backfill_id": "bf-1"})
	}))
	defer ts.Close()

	c := newClient(t, ts.URL)
	res, err := c.TriggerBackfill(context.Background(), backend.SyncRequest{
		Days:        30,
		Sources:     []string{"federal_register"},
		TriggeredBy: "ops@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "bf-1", res.BackfillID)
	assert.Equal(t, float64(30), body["days"])
	assert.Equal(t, "ops@example.com", body["triggered_by"])
}

func TestRPC_UnauthorizedMapsToSentinel(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer ts.Close()

	c := newClient(t, ts.URL)
	_, err := c.GetDuplicateGroups(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, backend.ErrUnauthorized)
}

func TestRPC_ServerErrorCarriesDetail(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"deadlock detected"}`))
	}))
	defer ts.Close()

	c := newClient(t, ts.URL)
	_, err := c.DeduplicateAlerts(context.Background(), "ops@example.com")
	require.Error(t, err)
	assert.NotErrorIs(t, err, backend.ErrUnauthorized)
	assert.Contains(t, err.Error(), "status 500")
	assert.Contains(t, err.Error(), "deadlock detected")
}

func TestRPC_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var hits int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	c := newClient(t, ts.URL)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, err := c.GetHealthStatus(ctx)
		require.Error(t, err)
	}
	require.Equal(t, 5, hits)

	// Circuit is now open; the next call fails fast without reaching the server.
	_, err := c.GetHealthStatus(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend unavailable")
	assert.Equal(t, 5, hits)
}

func TestGetProfile(t *testing.T) {
	stub := testutil.NewBackendStub(t)
	stub.AddToken("admin-token", "user-1", "admin@example.com", true)
	stub.AddToken("viewer-token", "user-2", "viewer@example.com", false)

	c := newClient(t, stub.URL())
	ctx := context.Background()

	profile, err := c.GetProfile(ctx, "admin-token")
	require.NoError(t, err)
	assert.Equal(t, "user-1", profile.ID)
	assert.Equal(t, "admin@example.com", profile.Email)
	assert.True(t, profile.IsAdmin)

	profile, err = c.GetProfile(ctx, "viewer-token")
	require.NoError(t, err)
	assert.False(t, profile.IsAdmin)

	_, err = c.GetProfile(ctx, "bogus")
	require.Error(t, err)
	assert.True(t, errors.Is(err, backend.ErrUnauthorized))

	_, err = c.GetProfile(ctx, "")
	assert.ErrorIs(t, err, backend.ErrUnauthorized)
}

func TestSearchAlerts_RawPassthrough(t *testing.T) {
	stub := testutil.NewBackendStub(t)
	stub.SetRPC("search_alerts", map[string]interface{}{
		"alerts": []map[string]string{{"id": "a1", "title": "Final Rule"}},
		"total":  1,
	})

	c := newClient(t, stub.URL())
	raw, err := c.SearchAlerts(context.Background(), "final rule", map[string]interface{}{"source": "federal_register"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"alerts":[{"id":"a1","title":"Final Rule"}],"total":1}`, string(raw))
	assert.Equal(t, 1, stub.RPCCalls("search_alerts"))
}

func TestPing(t *testing.T) {
	stub := testutil.NewBackendStub(t)
	c := newClient(t, stub.URL())
	require.NoError(t, c.Ping(context.Background()))
}
