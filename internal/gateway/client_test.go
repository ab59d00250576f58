package gateway_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/gateway"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/identity"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/platform/httpx"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/shared"
)

func TestLoginSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/auth/login", r.URL.Path)
		var creds map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		require.Equal(t, "bursar", creds["username"])
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"token": "tok-123",
			"user": map[string]any{
				"id":        "u-2",
				"username":  "bursar",
				"full_name": "Head of Finance",
				"role":      "FINANCE",
				"email":     "bursar@example.com",
			},
		})
	}))
	defer srv.Close()

	client := gateway.NewClient(srv.URL)
	token, ident, err := client.Login(context.Background(), "bursar", "secret")
	require.NoError(t, err)
	assert.Equal(t, "tok-123", token)
	assert.Equal(t, identity.RoleFinance, ident.Role)
	assert.Equal(t, "bursar", ident.Username)
}

func TestLoginRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := gateway.NewClient(srv.URL)
	_, _, err := client.Login(context.Background(), "bursar", "wrong")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestLoginRejectsUnknownRole(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"token": "tok-123",
			"user":  map[string]any{"id": "1", "username": "x", "role": "WAREHOUSE"},
		})
	}))
	defer srv.Close()

	client := gateway.NewClient(srv.URL)
	_, _, err := client.Login(context.Background(), "x", "secret")
	assert.Error(t, err)
}

func TestLogoutSendsBearer(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.Equal(t, "/auth/logout", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := gateway.NewClient(srv.URL)
	require.NoError(t, client.Logout(context.Background(), "tok-123"))
	assert.Equal(t, "Bearer tok-123", gotAuth)
}

func TestGetJSONAttachesTokenAndDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		require.Equal(t, "/inventory/items", r.URL.Path)
		_ = json.NewEncoder(w).Encode([]map[string]any{{"sku": "WB-50CL", "qty": 1200}})
	}))
	defer srv.Close()

	client := gateway.NewClient(srv.URL)
	var items []struct {
		SKU string  `json:"sku"`
		Qty float64 `json:"qty"`
	}
	require.NoError(t, client.GetJSON(context.Background(), "tok-123", "/inventory/items", &items))
	require.Len(t, items, 1)
	assert.Equal(t, "WB-50CL", items[0].SKU)
}

func TestDoMapsStatusCodes(t *testing.T) {
	status := http.StatusUnauthorized
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))
	defer srv.Close()

	client := gateway.NewClient(srv.URL)

	err := client.GetJSON(context.Background(), "tok", "/x", nil)
	assert.ErrorIs(t, err, httpx.ErrUnauthorized)

	status = http.StatusNotFound
	err = client.GetJSON(context.Background(), "tok", "/x", nil)
	assert.ErrorIs(t, err, httpx.ErrNotFound)
}
