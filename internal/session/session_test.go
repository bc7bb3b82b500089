package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travelog/internal/articles"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(testSecret, nil)
}

// carry moves the cookies set on rec into a fresh request, the way a
// browser would on the next navigation.
func carry(t *testing.T, rec *httptest.ResponseRecorder) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, cookie := range rec.Result().Cookies() {
		req.AddCookie(cookie)
	}
	return req
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{"id": 42, "exp": exp.Unix()}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return token
}

func TestProbe_AnonymousWithoutCookie(t *testing.T) {
	store := newTestStore(t)

	state := store.Probe(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, state.IsAuthenticated)
	assert.Nil(t, state.User)
	assert.Equal(t, 0, state.UserID())
}

func TestSaveThenProbe(t *testing.T) {
	store := newTestStore(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)

	err := store.Save(rec, req, "opaque-token", articles.User{ID: 42, Username: "sari"})
	require.NoError(t, err)

	state := store.Probe(carry(t, rec))
	assert.True(t, state.IsAuthenticated)
	assert.Equal(t, "opaque-token", state.Token)
	require.NotNil(t, state.User)
	assert.Equal(t, 42, state.User.ID)
	assert.Equal(t, "sari", state.User.Username)

	// probing again changes nothing
	again := store.Probe(carry(t, rec))
	assert.Equal(t, state, again)
}

func TestProbe_ExpiredTokenIsAnonymous(t *testing.T) {
	store := newTestStore(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)

	expired := signedToken(t, time.Now().Add(-time.Hour))
	require.NoError(t, store.Save(rec, req, expired, articles.User{ID: 1}))

	state := store.Probe(carry(t, rec))
	assert.False(t, state.IsAuthenticated)
}

func TestProbe_FutureExpiryAccepted(t *testing.T) {
	store := newTestStore(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)

	valid := signedToken(t, time.Now().Add(time.Hour))
	require.NoError(t, store.Save(rec, req, valid, articles.User{ID: 1}))

	state := store.Probe(carry(t, rec))
	assert.True(t, state.IsAuthenticated)
}

func TestProbe_TamperedCookieIsAnonymous(t *testing.T) {
	store := newTestStore(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: sessionName, Value: "garbage"})

	state := store.Probe(req)
	assert.False(t, state.IsAuthenticated)
}

func TestClear_DropsIdentityKeepsLocale(t *testing.T) {
	store := newTestStore(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)

	require.NoError(t, store.SetLocale(rec, req, "en"))
	req = carry(t, rec)
	rec = httptest.NewRecorder()
	require.NoError(t, store.Save(rec, req, "tok", articles.User{ID: 42}))

	req = carry(t, rec)
	rec = httptest.NewRecorder()
	require.NoError(t, store.Clear(rec, req))

	req = carry(t, rec)
	assert.False(t, store.Probe(req).IsAuthenticated)
	assert.Equal(t, "en", store.Locale(req))
}

func TestTheme_RoundTripsAndSurvivesClear(t *testing.T) {
	store := newTestStore(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/theme", nil)

	assert.Empty(t, store.Theme(req), "no choice stored yet")
	require.NoError(t, store.SetTheme(rec, req, "light"))

	req = carry(t, rec)
	assert.Equal(t, "light", store.Theme(req))

	rec = httptest.NewRecorder()
	require.NoError(t, store.Clear(rec, req))
	req = carry(t, rec)
	assert.Equal(t, "light", store.Theme(req))
}

func TestID_StableAcrossRequests(t *testing.T) {
	store := newTestStore(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	first := store.ID(rec, req)
	require.NotEmpty(t, first)

	second := store.ID(httptest.NewRecorder(), carry(t, rec))
	assert.Equal(t, first, second)
}

func TestSave_MintsFreshStreamID(t *testing.T) {
	store := newTestStore(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	anon := store.ID(rec, req)

	req = carry(t, rec)
	rec = httptest.NewRecorder()
	require.NoError(t, store.Save(rec, req, "tok", articles.User{ID: 1}))

	after := store.ID(httptest.NewRecorder(), carry(t, rec))
	assert.NotEqual(t, anon, after)
}

func TestTokenExpired_OpaqueTokenPasses(t *testing.T) {
	assert.False(t, tokenExpired("not-a-jwt"))
}
