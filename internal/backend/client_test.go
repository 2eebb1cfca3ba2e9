package backend_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"shopfloor-console/internal/auth"
	"shopfloor-console/internal/backend"
	"shopfloor-console/internal/infra/sql"
	"shopfloor-console/internal/shared_kernel/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeToken(role string) string {
	encode := func(s string) string {
		return base64.RawURLEncoding.EncodeToString([]byte(s))
	}
	payload := fmt.Sprintf(`{"sub":"tester","role":%q,"exp":4102444800}`, role)
	return fmt.Sprintf("%s.%s.%s", encode(`{"alg":"HS256"}`), encode(payload), encode("sig"))
}

func newSessionManager(t *testing.T) *auth.Manager {
	t.Helper()

	orm, err := sql.NewMemoryORM()
	require.NoError(t, err)
	store, err := auth.NewStore(orm)
	require.NoError(t, err)

	return auth.NewManager(store)
}

func newAuthenticatedClient(t *testing.T, serverURL string) (*backend.Client, *auth.Manager) {
	t.Helper()

	sessions := newSessionManager(t)
	require.NoError(t, sessions.SetToken(context.Background(), makeToken("admin")))

	client := backend.NewClient(backend.ClientOpts{BaseURL: serverURL, Sessions: sessions})
	return client, sessions
}

func TestClientAttachesBearerAndRequestID(t *testing.T) {
	var gotAuth, gotRequestID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		json.NewEncoder(w).Encode([]domain.Machine{})
	}))
	defer server.Close()

	client, _ := newAuthenticatedClient(t, server.URL)
	_, err := client.ListMachines(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Bearer "+makeToken("admin"), gotAuth)
	assert.NotEmpty(t, gotRequestID)
}

func TestClientRefreshesOnceAndReplays(t *testing.T) {
	freshToken := makeToken("operator")
	var orderCalls, refreshCalls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/refresh":
			refreshCalls.Add(1)
			json.NewEncoder(w).Encode(map[string]string{"access_token": freshToken})
		case "/api/orders/":
			if orderCalls.Add(1) == 1 {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			assert.Equal(t, "Bearer "+freshToken, r.Header.Get("Authorization"))
			json.NewEncoder(w).Encode([]domain.ProductionOrder{{ID: 42, OrderIDCode: "ORD-042"}})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client, sessions := newAuthenticatedClient(t, server.URL)
	orders, err := client.ListOrders(context.Background(), nil)
	require.NoError(t, err)

	require.Len(t, orders, 1)
	assert.Equal(t, "ORD-042", orders[0].OrderIDCode)
	assert.Equal(t, int32(1), refreshCalls.Load())
	assert.Equal(t, int32(2), orderCalls.Load())
	assert.True(t, sessions.Authenticated())

	token, _ := sessions.Token()
	assert.Equal(t, freshToken, token)
}

func TestClientFailedRefreshEndsSession(t *testing.T) {
	var refreshCalls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/auth/refresh" {
			refreshCalls.Add(1)
		}
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client, sessions := newAuthenticatedClient(t, server.URL)
	_, err := client.ListOrders(context.Background(), nil)

	assert.ErrorIs(t, err, backend.ErrUnauthorized)
	// Exactly one refresh, never nested.
	assert.Equal(t, int32(1), refreshCalls.Load())
	assert.False(t, sessions.Authenticated())
}

func TestClientLoginDoesNotTriggerRefresh(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/user/login" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"detail": "bad credentials"})
	}))
	defer server.Close()

	sessions := newSessionManager(t)
	client := backend.NewClient(backend.ClientOpts{BaseURL: server.URL, Sessions: sessions})

	err := client.Login(context.Background(), "nope@example.com", "wrong")
	assert.ErrorIs(t, err, backend.ErrUnauthorized)
	assert.False(t, sessions.Authenticated())
}

func TestClientLoginInstallsToken(t *testing.T) {
	token := makeToken("manager")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req backend.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "lead@example.com", req.Email)
		json.NewEncoder(w).Encode(map[string]string{"access_token": token, "token_type": "bearer"})
	}))
	defer server.Close()

	sessions := newSessionManager(t)
	client := backend.NewClient(backend.ClientOpts{BaseURL: server.URL, Sessions: sessions})

	require.NoError(t, client.Login(context.Background(), "lead@example.com", "secret"))
	assert.True(t, sessions.Authenticated())
	assert.Equal(t, domain.RoleManager, sessions.Role())
}

func TestClientErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		detail   string
		expected error
	}{
		{"not found", http.StatusNotFound, "Machine not found", backend.ErrNotFound},
		{"conflict", http.StatusConflict, "Task already started", backend.ErrConflict},
		{"forbidden", http.StatusForbidden, "Admins only", backend.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				json.NewEncoder(w).Encode(map[string]string{"detail": tt.detail})
			}))
			defer server.Close()

			client, _ := newAuthenticatedClient(t, server.URL)
			err := client.DeleteMachine(context.Background(), 12)

			assert.ErrorIs(t, err, tt.expected)

			var apiErr *backend.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.detail, apiErr.Detail)
		})
	}
}

func TestClientBadRequestCarriesDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"detail": "quantity_to_produce must be positive"})
	}))
	defer server.Close()

	client, _ := newAuthenticatedClient(t, server.URL)
	_, err := client.CreateOrder(context.Background(), backend.OrderRequest{OrderIDCode: "ORD-001"})

	var apiErr *backend.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "quantity_to_produce must be positive", apiErr.Detail)
}
