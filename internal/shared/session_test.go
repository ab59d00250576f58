package shared_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/identity"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/shared"
)

type failingNotifier struct {
	calls atomic.Int32
}

func (n *failingNotifier) Logout(ctx context.Context, token string) error {
	n.calls.Add(1)
	return errors.New("dial tcp: connection refused")
}

func newManager(t *testing.T, mr *miniredis.Miniredis, notifier shared.LogoutNotifier) *shared.SessionManager {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return shared.NewSessionManager(client, notifier, nil, "erp_session", "secret", time.Hour, false)
}

func loadWithCookie(t *testing.T, sm *shared.SessionManager, sessionID string) *shared.Session {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: sm.CookieName(), Value: sessionID})
	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err)
	return sess
}

func testIdentity() *identity.Identity {
	return &identity.Identity{
		ID:       "u-42",
		Username: "bursar",
		FullName: "Head of Finance",
		Role:     identity.RoleFinance,
		Email:    "bursar@example.com",
	}
}

func TestLoginPersistsBothEntries(t *testing.T) {
	mr := miniredis.RunT(t)
	sm := newManager(t, mr, nil)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	require.NoError(t, err)
	require.False(t, sess.IsAuthenticated())

	require.NoError(t, sm.Login(ctx, sess, testIdentity(), "tok-abc"))
	assert.True(t, sess.IsAuthenticated())
	assert.Equal(t, "tok-abc", sess.Token())

	require.True(t, mr.Exists("auth_token:"+sess.ID))
	require.True(t, mr.Exists("user_data:"+sess.ID))
}

func TestSessionRoundTripAcrossRestart(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	sm := newManager(t, mr, nil)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	require.NoError(t, err)
	require.NoError(t, sm.Login(ctx, sess, testIdentity(), "tok-abc"))

	// A fresh manager over the same store simulates a process restart.
	restarted := newManager(t, mr, nil)
	restored := loadWithCookie(t, restarted, sess.ID)

	require.True(t, restored.IsAuthenticated())
	assert.Equal(t, "u-42", restored.Identity().ID)
	assert.Equal(t, "bursar", restored.Identity().Username)
	assert.Equal(t, identity.RoleFinance, restored.Identity().Role)
	assert.Equal(t, "tok-abc", restored.Token())
}

func TestCorruptIdentityClearsBothEntries(t *testing.T) {
	mr := miniredis.RunT(t)
	sm := newManager(t, mr, nil)

	require.NoError(t, mr.Set("auth_token:sess-1", "tok-abc"))
	require.NoError(t, mr.Set("user_data:sess-1", "{not json"))

	sess := loadWithCookie(t, sm, "sess-1")
	assert.False(t, sess.IsAuthenticated())
	assert.Empty(t, sess.Token())
	assert.False(t, mr.Exists("auth_token:sess-1"))
	assert.False(t, mr.Exists("user_data:sess-1"))
}

func TestInvalidRoleCountsAsCorrupt(t *testing.T) {
	mr := miniredis.RunT(t)
	sm := newManager(t, mr, nil)

	require.NoError(t, mr.Set("auth_token:sess-2", "tok-abc"))
	require.NoError(t, mr.Set("user_data:sess-2", `{"id":"1","username":"x","role":"SUPERUSER"}`))

	sess := loadWithCookie(t, sm, "sess-2")
	assert.False(t, sess.IsAuthenticated())
	assert.False(t, mr.Exists("auth_token:sess-2"))
	assert.False(t, mr.Exists("user_data:sess-2"))
}

// flakyAuthReads fails every read of the persisted auth entries while
// leaving the rest of the store reachable.
type flakyAuthReads struct{}

func (flakyAuthReads) DialHook(next redis.DialHook) redis.DialHook { return next }

func (flakyAuthReads) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		if cmd.Name() == "get" {
			if key, ok := cmd.Args()[1].(string); ok &&
				(strings.HasPrefix(key, "auth_token:") || strings.HasPrefix(key, "user_data:")) {
				return errors.New("read tcp: connection reset by peer")
			}
		}
		return next(ctx, cmd)
	}
}

func (flakyAuthReads) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func TestTransportErrorKeepsPersistedAuthState(t *testing.T) {
	mr := miniredis.RunT(t)
	healthy := newManager(t, mr, nil)
	ctx := context.Background()

	sess, err := healthy.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.NoError(t, healthy.Login(ctx, sess, testIdentity(), "tok-abc"))

	flaky := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = flaky.Close() })
	flaky.AddHook(flakyAuthReads{})
	sm := shared.NewSessionManager(flaky, nil, nil, "erp_session", "secret", time.Hour, false)

	degraded := loadWithCookie(t, sm, sess.ID)
	assert.False(t, degraded.IsAuthenticated())

	// The entries survive the blip; a healthy load restores the login.
	require.True(t, mr.Exists("auth_token:"+sess.ID))
	require.True(t, mr.Exists("user_data:"+sess.ID))
	restored := loadWithCookie(t, healthy, sess.ID)
	assert.True(t, restored.IsAuthenticated())
}

func TestOrphanEntryIsDiscarded(t *testing.T) {
	mr := miniredis.RunT(t)
	sm := newManager(t, mr, nil)

	// Token without identity must not survive a load.
	require.NoError(t, mr.Set("auth_token:sess-3", "tok-abc"))

	sess := loadWithCookie(t, sm, "sess-3")
	assert.False(t, sess.IsAuthenticated())
	assert.False(t, mr.Exists("auth_token:sess-3"))
}

func TestLogoutIsIdempotentDespiteNotifierFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	notifier := &failingNotifier{}
	sm := newManager(t, mr, notifier)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	require.NoError(t, err)
	require.NoError(t, sm.Login(ctx, sess, testIdentity(), "tok-abc"))

	sm.Logout(ctx, sess)
	assert.False(t, sess.IsAuthenticated())
	assert.Empty(t, sess.Token())
	assert.False(t, mr.Exists("auth_token:"+sess.ID))
	assert.False(t, mr.Exists("user_data:"+sess.ID))

	// Second call on an already-anonymous session is a no-op.
	sm.Logout(ctx, sess)
	assert.False(t, sess.IsAuthenticated())
	assert.Empty(t, sess.Token())

	// The notification was fired once (first call only; the second has no
	// token to report) and its failure never surfaced.
	require.Eventually(t, func() bool { return notifier.calls.Load() == 1 }, time.Second, 10*time.Millisecond)
}

func TestNoTokenLeakAfterLogout(t *testing.T) {
	mr := miniredis.RunT(t)
	sm := newManager(t, mr, nil)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	require.NoError(t, err)
	require.NoError(t, sm.Login(ctx, sess, testIdentity(), "tok-abc"))
	sm.Logout(ctx, sess)

	assert.Empty(t, sess.Token())
	assert.Nil(t, sess.Identity())

	// A later request with the same cookie finds nothing either.
	reloaded := loadWithCookie(t, sm, sess.ID)
	assert.Empty(t, reloaded.Token())
	assert.False(t, reloaded.IsAuthenticated())
}

func TestHasPermissionDelegatesToResolver(t *testing.T) {
	mr := miniredis.RunT(t)
	sm := newManager(t, mr, nil)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	require.NoError(t, err)

	// Anonymous session: false, never an error.
	assert.False(t, sess.HasPermission(identity.CapDashboard))

	require.NoError(t, sm.Login(ctx, sess, testIdentity(), "tok-abc"))
	assert.True(t, sess.HasPermission(identity.CapFinance))
	assert.False(t, sess.HasPermission(identity.CapInventory))
}

func TestCommitWritesCookieAndPayload(t *testing.T) {
	mr := miniredis.RunT(t)
	sm := newManager(t, mr, nil)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	require.NoError(t, err)
	sess.Set("k", "v")

	res := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, res, req, sess))
	require.True(t, mr.Exists("session:"+sess.ID))

	cookies := res.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, sm.CookieName(), cookies[0].Name)
	assert.Equal(t, sess.ID, cookies[0].Value)
}
