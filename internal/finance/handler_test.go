package finance_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/finance"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/gateway"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/identity"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/shared"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/view"
)

func newRouter(t *testing.T, backendURL string) (chi.Router, *shared.Session) {
	t.Helper()
	templates, err := view.NewEngine()
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	sm := shared.NewSessionManager(client, nil, nil, "erp_session", "secret", time.Hour, false)
	sess, err := sm.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.NoError(t, sm.Login(context.Background(), sess, &identity.Identity{ID: "2", Username: "bursar", Role: identity.RoleFinance}, "tok"))

	h := finance.NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), gateway.NewClient(backendURL), templates, shared.NewCSRFManager("csrf"), sm)
	r := chi.NewRouter()
	h.MountRoutes(r)
	return r, sess
}

func TestInvoicesPageShowsApproveForPending(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"invoices": []map[string]any{
			{"id": "inv-1", "number": "INV-2201", "customer": "Justrite Stores", "currency": "NGN", "amount": 96000, "status": "PENDING", "issued_at": "2026-04-11T10:00:00Z"},
			{"id": "inv-2", "number": "INV-2202", "customer": "Addide", "currency": "NGN", "amount": 40000, "status": "PAID", "issued_at": "2026-04-12T10:00:00Z"},
		}})
	}))
	defer backend.Close()

	router, sess := newRouter(t, backend.URL)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)
	body := res.Body.String()
	assert.Contains(t, body, "INV-2201")
	assert.Contains(t, body, "/m/finance/invoices/inv-1/approve")
	assert.NotContains(t, body, "/m/finance/invoices/inv-2/approve")
}

func TestApproveInvoiceRedirectsBack(t *testing.T) {
	var approved string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			approved = r.URL.Path
			w.WriteHeader(http.StatusOK)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"invoices": []any{}})
	}))
	defer backend.Close()

	router, sess := newRouter(t, backend.URL)
	req := httptest.NewRequest(http.MethodPost, "/invoices/inv-1/approve", nil)
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/m/finance", res.Header().Get("Location"))
	assert.Equal(t, "/finance/invoices/inv-1/approve", approved)
}

func TestApproveMissingInvoiceShowsError(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"invoices": []any{}})
	}))
	defer backend.Close()

	router, sess := newRouter(t, backend.URL)
	req := httptest.NewRequest(http.MethodPost, "/invoices/missing/approve", nil)
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusNotFound, res.Code)
	assert.Contains(t, res.Body.String(), "Invoice not found")
}
