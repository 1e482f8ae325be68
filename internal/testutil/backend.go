package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// BackendStub is a fake hosted platform: it serves the auth user endpoint,
// the profiles table read, and RPC procedures from a canned response map,
// while counting RPC invocations.
type BackendStub struct {
	Server *httptest.Server

	mu        sync.Mutex
	responses map[string]interface{}
	rpcCalls  map[string]int
	rpcBodies map[string][]byte

	// Tokens maps bearer tokens to (userID, isAdmin). Unknown tokens get 401.
	tokens map[string]stubUser
}

type stubUser struct {
	ID      string
	Email   string
	IsAdmin bool
}

// NewBackendStub starts a fake platform server. Callers must register tokens
// and RPC responses before issuing requests.
func NewBackendStub(t *testing.T) *BackendStub {
	t.Helper()
	b := &BackendStub{
		responses: make(map[string]interface{}),
		rpcCalls:  make(map[string]int),
		rpcBodies: make(map[string][]byte),
		tokens:    make(map[string]stubUser),
	}
	b.Server = httptest.NewServer(http.HandlerFunc(b.handle))
	t.Cleanup(b.Server.Close)
	return b
}

// URL returns the stub's base URL.
func (b *BackendStub) URL() string { return b.Server.URL }

// AddToken registers a session token resolving to the given user.
func (b *BackendStub) AddToken(token, userID, email string, isAdmin bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokens[token] = stubUser{ID: userID, Email: email, IsAdmin: isAdmin}
}

// SetRPC registers the response payload for a procedure.
func (b *BackendStub) SetRPC(proc string, response interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.responses[proc] = response
}

// RPCCalls returns how many times the procedure was invoked.
func (b *BackendStub) RPCCalls(proc string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rpcCalls[proc]
}

// LastRPCBody returns the most recent request body sent to the procedure.
func (b *BackendStub) LastRPCBody(proc string) []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rpcBodies[proc]
}

// TotalRPCCalls returns the total number of RPC invocations across all
// procedures.
func (b *BackendStub) TotalRPCCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	total := 0
	for _, n := range b.rpcCalls {
		total += n
	}
	return total
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok {
		return ""
	}
	return token
}

func (b *BackendStub) handle(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.URL.Path == "/auth/v1/user":
		b.mu.Lock()
		user, ok := b.tokens[bearerToken(r)]
		b.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid token"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"id": user.ID, "email": user.Email})

	case r.URL.Path == "/rest/v1/profiles":
		id := strings.TrimPrefix(r.URL.Query().Get("id"), "eq.")
		b.mu.Lock()
		var rows []map[string]bool
		for _, u := range b.tokens {
			if u.ID == id {
				rows = append(rows, map[string]bool{"is_admin": u.IsAdmin})
				break
			}
		}
		b.mu.Unlock()
		if rows == nil {
			rows = []map[string]bool{}
		}
		_ = json.NewEncoder(w).Encode(rows)

	case strings.HasPrefix(r.URL.Path, "/rest/v1/rpc/"):
		proc := strings.TrimPrefix(r.URL.Path, "/rest/v1/rpc/")
		body, _ := io.ReadAll(r.Body)
		b.mu.Lock()
		b.rpcCalls[proc]++
		b.rpcBodies[proc] = body
		resp, ok := b.responses[proc]
		b.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "unknown procedure " + proc})
			return
		}
		_ = json.NewEncoder(w).Encode(resp)

	case r.URL.Path == "/rest/v1/":
		w.WriteHeader(http.StatusOK)

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}
