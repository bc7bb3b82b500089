// Package session persists the signed-in identity in a browser-session
// cookie and answers the one question the rest of the app asks: is this
// request authenticated, and as whom.
package session

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"travelog/internal/articles"
)

const (
	sessionName = "travelog_session"

	keyToken  = "authToken"
	keyUser   = "user"
	keyLocale = "locale"
	keyTheme  = "theme"
	keySID    = "sid"
)

// swapped out in tests
var timeNow = time.Now

// State is the authentication snapshot for one request. Zero value is
// an anonymous visitor.
type State struct {
	IsAuthenticated bool
	Token           string
	User            *articles.User
}

func (s State) UserID() int {
	if s.User == nil {
		return 0
	}
	return s.User.ID
}

type Store struct {
	cookies *sessions.CookieStore
	logger  *zap.Logger
}

func NewStore(secret []byte, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}

	cookies := sessions.NewCookieStore(secret)
	cookies.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   0, // browser-session cookie, gone when the browser closes
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	return &Store{cookies: cookies, logger: logger}
}

// Probe rebuilds the auth state from the cookie. A missing, malformed
// or expired token yields the anonymous state; probing twice in a row
// returns the same answer.
func (s *Store) Probe(r *http.Request) State {
	sess, err := s.cookies.Get(r, sessionName)
	if err != nil {
		s.logger.Debug("session cookie rejected", zap.Error(err))
		return State{}
	}

	token, _ := sess.Values[keyToken].(string)
	if token == "" || tokenExpired(token) {
		return State{}
	}

	state := State{IsAuthenticated: true, Token: token}
	if raw, ok := sess.Values[keyUser].(string); ok && raw != "" {
		var user articles.User
		if err := json.Unmarshal([]byte(raw), &user); err == nil {
			state.User = &user
		}
	}
	return state
}

// Save establishes a session with the given token and identity and
// mints a fresh stream owner id.
func (s *Store) Save(w http.ResponseWriter, r *http.Request, token string, user articles.User) error {
	sess, _ := s.cookies.Get(r, sessionName)

	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}

	sess.Values[keyToken] = token
	sess.Values[keyUser] = string(raw)
	sess.Values[keySID] = uuid.NewString()
	return sess.Save(r, w)
}

// Clear drops the identity but keeps the locale and theme choices.
func (s *Store) Clear(w http.ResponseWriter, r *http.Request) error {
	sess, _ := s.cookies.Get(r, sessionName)
	delete(sess.Values, keyToken)
	delete(sess.Values, keyUser)
	delete(sess.Values, keySID)
	return sess.Save(r, w)
}

// ID returns the stream owner id for this browser, minting one on
// first use.
func (s *Store) ID(w http.ResponseWriter, r *http.Request) string {
	sess, _ := s.cookies.Get(r, sessionName)
	if sid, ok := sess.Values[keySID].(string); ok && sid != "" {
		return sid
	}

	sid := uuid.NewString()
	sess.Values[keySID] = sid
	if err := sess.Save(r, w); err != nil {
		s.logger.Debug("persisting stream id failed", zap.Error(err))
	}
	return sid
}

func (s *Store) Locale(r *http.Request) string {
	sess, err := s.cookies.Get(r, sessionName)
	if err != nil {
		return ""
	}
	locale, _ := sess.Values[keyLocale].(string)
	return locale
}

func (s *Store) SetLocale(w http.ResponseWriter, r *http.Request, locale string) error {
	sess, _ := s.cookies.Get(r, sessionName)
	sess.Values[keyLocale] = locale
	return sess.Save(r, w)
}

func (s *Store) Theme(r *http.Request) string {
	sess, err := s.cookies.Get(r, sessionName)
	if err != nil {
		return ""
	}
	theme, _ := sess.Values[keyTheme].(string)
	return theme
}

func (s *Store) SetTheme(w http.ResponseWriter, r *http.Request, theme string) error {
	sess, _ := s.cookies.Get(r, sessionName)
	sess.Values[keyTheme] = theme
	return sess.Save(r, w)
}

// tokenExpired inspects the exp claim without verifying the signature;
// verification is the backend's job, this only avoids presenting a
// token the backend is guaranteed to reject. Opaque tokens pass.
func tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(timeNow())
}
