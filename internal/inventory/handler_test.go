package inventory_test

import (
	"context"
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

	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/gateway"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/identity"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/inventory"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/shared"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/view"
)

func TestItemLowFlag(t *testing.T) {
	assert.True(t, inventory.Item{Qty: 10, ReorderLevel: 10}.Low())
	assert.True(t, inventory.Item{Qty: 3, ReorderLevel: 10}.Low())
	assert.False(t, inventory.Item{Qty: 11, ReorderLevel: 10}.Low())
}

func TestListRendersStockTable(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/inventory/items", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[
			{"sku":"BW-050","name":"Bottled Water 50cl","warehouse":"Lagos Main","qty":1200,"unit":"crate","reorder_level":300},
			{"sku":"CAP-28","name":"Bottle Caps 28mm","warehouse":"Lagos Main","qty":150,"unit":"bag","reorder_level":200}
		]}`))
	}))
	defer backend.Close()

	templates, err := view.NewEngine()
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	sm := shared.NewSessionManager(client, nil, nil, "erp_session", "secret", time.Hour, false)
	sess, err := sm.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.NoError(t, sm.Login(context.Background(), sess, &identity.Identity{ID: "4", Username: "mgr", Role: identity.RoleManager}, "tok"))

	h := inventory.NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), gateway.NewClient(backend.URL), templates, shared.NewCSRFManager("csrf"), sm)
	r := chi.NewRouter()
	h.MountRoutes(r)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))
	res := httptest.NewRecorder()
	r.ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)
	body := res.Body.String()
	assert.Contains(t, body, "BW-050")
	assert.Contains(t, body, "Bottled Water 50cl")
	assert.Contains(t, body, "low-stock")
}
