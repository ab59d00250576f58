package shared

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/identity"
)

// FlashMessage represents a one-time notification stored in session.
type FlashMessage struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// LogoutNotifier tells the remote API that a bearer token is being
// invalidated. The call is best effort: the session manager launches it and
// never waits for, or acts on, the outcome.
type LogoutNotifier interface {
	Logout(ctx context.Context, token string) error
}

// SessionManager orchestrates cookie based sessions backed by Redis.
//
// The authenticated state of a session is persisted as two independent Redis
// entries, auth_token:<id> and user_data:<id>. They are written together on
// login and cleared together on logout or parse failure; one is never left
// behind without the other.
type SessionManager struct {
	client     *redis.Client
	notifier   LogoutNotifier
	logger     *slog.Logger
	cookieName string
	ttl        time.Duration
	secure     bool
	secret     []byte
}

// Session holds per-request session data. The identity and token fields are
// only ever written by the SessionManager's Login/Logout/restore paths;
// everything else reads them through the accessor methods.
type Session struct {
	ID        string
	values    map[string]string
	identity  *identity.Identity
	token     string
	flashes   []FlashMessage
	isNew     bool
	dirty     bool
	destroyed bool
}

type sessionPayload struct {
	Values  map[string]string `json:"values"`
	Flashes []FlashMessage    `json:"flashes"`
}

// Session value keys mirroring the stored display preferences, written at
// login and on every preferences save.
const (
	PrefThemeKey         = "pref_theme"
	PrefRowsPerPageKey   = "pref_rows_per_page"
	PrefLandingModuleKey = "pref_landing_module"
)

// NewSessionManager constructs a SessionManager. notifier may be nil, in
// which case logout skips the remote notification.
func NewSessionManager(client *redis.Client, notifier LogoutNotifier, logger *slog.Logger, cookieName string, secret string, ttl time.Duration, secure bool) *SessionManager {
	return &SessionManager{
		client:     client,
		notifier:   notifier,
		logger:     logger,
		cookieName: cookieName,
		ttl:        ttl,
		secure:     secure,
		secret:     []byte(secret),
	}
}

// Load restores the session identified by the request cookie. A request
// without a cookie, with unknown state, or with corrupt persisted state
// yields an anonymous session; corrupt state is additionally discarded so it
// is not retried on the next request. Parse failures never surface to the
// caller.
func (sm *SessionManager) Load(ctx context.Context, r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(sm.cookieName)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return sm.newSession(), nil
		}
		return nil, err
	}

	sess := sm.newSession()
	sess.ID = cookie.Value

	payload, err := sm.client.Get(ctx, sm.sessionKey(cookie.Value)).Bytes()
	if err == nil {
		var stored sessionPayload
		if jsonErr := json.Unmarshal(payload, &stored); jsonErr == nil {
			sess.values = stored.Values
			sess.flashes = stored.Flashes
			sess.isNew = false
			sess.dirty = false
		}
	} else if !errors.Is(err, redis.Nil) {
		return nil, err
	}
	if sess.values == nil {
		sess.values = make(map[string]string)
	}

	sm.restoreAuth(ctx, sess)
	return sess, nil
}

// restoreAuth reads the token and identity entries for the session. Both
// present and parseable: session becomes authenticated. Both absent: session
// stays anonymous. One entry missing or an unparsable identity counts as
// corrupt state: both entries are cleared and the session stays anonymous. A
// transport error on either read is not corrupt state; the entries are left
// alone and only this request is served anonymously.
func (sm *SessionManager) restoreAuth(ctx context.Context, sess *Session) {
	token, tokenErr := sm.client.Get(ctx, sm.tokenKey(sess.ID)).Result()
	userData, userErr := sm.client.Get(ctx, sm.userKey(sess.ID)).Bytes()

	if errors.Is(tokenErr, redis.Nil) && errors.Is(userErr, redis.Nil) {
		return
	}
	if (tokenErr != nil && !errors.Is(tokenErr, redis.Nil)) || (userErr != nil && !errors.Is(userErr, redis.Nil)) {
		if sm.logger != nil {
			sm.logger.Warn("session auth state unavailable", slog.String("session", sess.ID))
		}
		return
	}
	if tokenErr != nil || userErr != nil {
		sm.clearAuth(ctx, sess.ID)
		return
	}

	var ident identity.Identity
	if err := json.Unmarshal(userData, &ident); err != nil {
		if sm.logger != nil {
			sm.logger.Warn("discarding corrupt persisted identity", slog.String("session", sess.ID))
		}
		sm.clearAuth(ctx, sess.ID)
		return
	}

	sess.identity = &ident
	sess.token = token
}

// Login transitions the session to authenticated and persists the token and
// identity as a single step: both entries are written in one pipeline before
// the in-memory state changes, so a caller observing a logged-in session can
// rely on it surviving a restart.
func (sm *SessionManager) Login(ctx context.Context, sess *Session, ident *identity.Identity, token string) error {
	if sess == nil {
		return errors.New("session missing")
	}
	data, err := json.Marshal(ident)
	if err != nil {
		return err
	}
	pipe := sm.client.TxPipeline()
	pipe.Set(ctx, sm.tokenKey(sess.ID), token, sm.ttl)
	pipe.Set(ctx, sm.userKey(sess.ID), data, sm.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}
	sess.identity = ident
	sess.token = token
	sess.dirty = true
	return nil
}

// Logout clears the session's authenticated state. The remote notification
// is fired on a detached goroutine and its outcome is deliberately ignored;
// the local clear happens unconditionally, so logout always succeeds and a
// second call on an anonymous session is a no-op.
func (sm *SessionManager) Logout(ctx context.Context, sess *Session) {
	if sess == nil {
		return
	}
	if token := sess.token; token != "" && sm.notifier != nil {
		go func() {
			nctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := sm.notifier.Logout(nctx, token); err != nil && sm.logger != nil {
				sm.logger.Warn("logout notification failed", slog.Any("error", err))
			}
		}()
	}
	sm.clearAuth(ctx, sess.ID)
	sess.identity = nil
	sess.token = ""
	sess.dirty = true
}

func (sm *SessionManager) clearAuth(ctx context.Context, id string) {
	if err := sm.client.Del(ctx, sm.tokenKey(id), sm.userKey(id)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		if sm.logger != nil {
			sm.logger.Warn("clear persisted session state", slog.Any("error", err))
		}
	}
}

// Commit persists the session and writes cookie headers as needed.
func (sm *SessionManager) Commit(ctx context.Context, w http.ResponseWriter, r *http.Request, sess *Session) error {
	if sess == nil {
		return nil
	}

	if sess.destroyed {
		if err := sm.client.Del(ctx, sm.sessionKey(sess.ID), sm.tokenKey(sess.ID), sm.userKey(sess.ID)).Err(); err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		http.SetCookie(w, &http.Cookie{
			Name:     sm.cookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   sm.secure,
			SameSite: http.SameSiteStrictMode,
		})
		return nil
	}

	if sess.isNew && sess.ID == "" {
		sess.ID = sm.generateSessionID()
	}

	if sess.dirty || sess.isNew {
		payload := sessionPayload{Values: sess.values, Flashes: sess.flashes}
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		if err := sm.client.Set(ctx, sm.sessionKey(sess.ID), data, sm.ttl).Err(); err != nil {
			return err
		}
		sess.dirty = false
	}

	if sess.ID != "" {
		http.SetCookie(w, &http.Cookie{
			Name:     sm.cookieName,
			Value:    sess.ID,
			Path:     "/",
			HttpOnly: true,
			Secure:   sm.secure,
			SameSite: http.SameSiteStrictMode,
			Expires:  time.Now().Add(sm.ttl),
		})
	}

	// Clear flashes after they have been persisted once.
	if len(sess.flashes) > 0 {
		sess.flashes = nil
		sess.dirty = true
		_ = sm.client.Set(ctx, sm.sessionKey(sess.ID), mustJSON(sessionPayload{Values: sess.values, Flashes: sess.flashes}), sm.ttl).Err()
	}

	return nil
}

// Destroy marks the session for deletion.
func (sm *SessionManager) Destroy(sess *Session) {
	if sess == nil {
		return
	}
	sess.destroyed = true
}

// TTL exposes the configured session lifetime.
func (sm *SessionManager) TTL() time.Duration {
	return sm.ttl
}

// CookieName returns the cookie identifier used for sessions.
func (sm *SessionManager) CookieName() string {
	return sm.cookieName
}

// Session helpers

// Identity returns the authenticated identity, or nil when anonymous.
func (s *Session) Identity() *identity.Identity {
	if s == nil {
		return nil
	}
	return s.identity
}

// Token returns the bearer token, or the empty string when anonymous.
func (s *Session) Token() string {
	if s == nil {
		return ""
	}
	return s.token
}

// IsAuthenticated reports whether an identity is attached.
func (s *Session) IsAuthenticated() bool {
	return s != nil && s.identity != nil
}

// HasPermission delegates to the permission resolver for the current
// identity. It returns false, never an error, when the session is anonymous.
func (s *Session) HasPermission(capability string) bool {
	if s == nil {
		return false
	}
	return identity.HasCapability(s.identity, capability)
}

// Set stores a key-value pair.
func (s *Session) Set(key, value string) {
	if s.values == nil {
		s.values = make(map[string]string)
	}
	s.values[key] = value
	s.dirty = true
}

// Get retrieves a value.
func (s *Session) Get(key string) string {
	if s.values == nil {
		return ""
	}
	return s.values[key]
}

// Delete removes a value.
func (s *Session) Delete(key string) {
	if s.values == nil {
		return
	}
	delete(s.values, key)
	s.dirty = true
}

// AddFlash queues a flash message.
func (s *Session) AddFlash(msg FlashMessage) {
	s.flashes = append(s.flashes, msg)
	s.dirty = true
}

// PopFlash retrieves and clears the oldest flash message.
func (s *Session) PopFlash() *FlashMessage {
	if len(s.flashes) == 0 {
		return nil
	}
	msg := s.flashes[0]
	s.flashes = s.flashes[1:]
	s.dirty = true
	return &msg
}

func (sm *SessionManager) newSession() *Session {
	return &Session{
		ID:     sm.generateSessionID(),
		values: make(map[string]string),
		isNew:  true,
		dirty:  true,
	}
}

func (sm *SessionManager) sessionKey(id string) string {
	return "session:" + id
}

func (sm *SessionManager) tokenKey(id string) string {
	return "auth_token:" + id
}

func (sm *SessionManager) userKey(id string) string {
	return "user_data:" + id
}

func (sm *SessionManager) generateSessionID() string {
	if id, err := uuid.NewRandom(); err == nil {
		return id.String()
	}
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return base64.RawURLEncoding.EncodeToString([]byte(time.Now().Format(time.RFC3339Nano)))
	}
	if len(sm.secret) > 0 {
		for i := range b {
			b[i] ^= sm.secret[i%len(sm.secret)]
		}
	}
	return base64.RawURLEncoding.EncodeToString(b)
}

func mustJSON(v sessionPayload) []byte {
	data, _ := json.Marshal(v)
	return data
}
