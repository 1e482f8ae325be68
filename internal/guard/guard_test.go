package guard

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regpulse-io/regpulse/pkg/types"
)

type stubResolver struct {
	profiles map[string]*types.AdminProfile
	calls    int
}

func (s *stubResolver) GetProfile(_ context.Context, token string) (*types.AdminProfile, error) {
	s.calls++
	p, ok := s.profiles[token]
	if !ok {
		return nil, fmt.Errorf("invalid token")
	}
	return p, nil
}

func guardedEcho(resolver *stubResolver) (http.Handler, *int) {
	hits := 0
	g := New(resolver)
	h := g.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		profile := ProfileFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprint(w, profile.Email)
	}))
	return h, &hits
}

func TestRequireAdmin_MissingToken(t *testing.T) {
	resolver := &stubResolver{}
	h, hits := guardedEcho(resolver)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/sync", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, 0, *hits)
	// No resolver call without a token; no downstream effect either.
	assert.Equal(t, 0, resolver.calls)
}

func TestRequireAdmin_InvalidToken(t *testing.T) {
	resolver := &stubResolver{}
	h, hits := guardedEcho(resolver)

	req := httptest.NewRequest(http.MethodPost, "/admin/sync", nil)
	req.Header.Set("Authorization", "Bearer bogus")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, 0, *hits)
	assert.JSONEq(t, `{"error":"unauthorized"}`, rec.Body.String())
}

func TestRequireAdmin_NonAdminForbidden(t *testing.T) {
	resolver := &stubResolver{profiles: map[string]*types.AdminProfile{
		"user-token": {ID: "u1", Email: "user@example.com", IsAdmin: false},
	}}
	h, hits := guardedEcho(resolver)

	req := httptest.NewRequest(http.MethodPost, "/admin/sync", nil)
	req.Header.Set("Authorization", "Bearer user-token")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, 0, *hits)
}

func TestRequireAdmin_AdminPasses(t *testing.T) {
	resolver := &stubResolver{profiles: map[string]*types.AdminProfile{
		"admin-token": {ID: "a1", Email: "ops@example.com", IsAdmin: true},
	}}
	h, hits := guardedEcho(resolver)

	req := httptest.NewRequest(http.MethodGet, "/admin/health", nil)
	req.Header.Set("Authorization", "Bearer admin-token")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, *hits)
	assert.Equal(t, "ops@example.com", rec.Body.String())
}

func TestProfileFromContext_Absent(t *testing.T) {
	assert.Nil(t, ProfileFromContext(context.Background()))
}
