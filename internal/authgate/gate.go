// Package authgate decides whether a request may see a protected page
// and, when it may not, where to send the visitor so they land back on
// what they wanted after signing in.
package authgate

import (
	"net/url"
	"strings"

	"travelog/internal/session"
)

const loginPath = "/login"

// Intent is what the visitor was trying to reach when the gate turned
// them away. It rides through the login flow as query params and
// hidden form fields.
type Intent struct {
	TargetPath     string
	CategoryFilter string
}

// ParseIntent reads a previously serialized intent back out of query
// or form values.
func ParseIntent(values url.Values) Intent {
	return Intent{
		TargetPath:     sanitizePath(values.Get("redirect")),
		CategoryFilter: strings.TrimSpace(values.Get("category")),
	}
}

// Resolve picks the post-login destination. An explicit target wins
// over a category filter, and everything falls back to the landing
// page.
func (i Intent) Resolve() string {
	if i.TargetPath != "" {
		return i.TargetPath
	}
	if i.CategoryFilter != "" {
		return "/?" + url.Values{"category": {i.CategoryFilter}}.Encode()
	}
	return "/"
}

// LoginURL serializes the intent onto the login page URL.
func (i Intent) LoginURL() string {
	q := url.Values{}
	if i.TargetPath != "" {
		q.Set("redirect", i.TargetPath)
	}
	if i.CategoryFilter != "" {
		q.Set("category", i.CategoryFilter)
	}
	if len(q) == 0 {
		return loginPath
	}
	return loginPath + "?" + q.Encode()
}

type Decision struct {
	Allowed     bool
	RedirectURL string
}

// Guard gates a protected page. Unauthenticated visitors are sent to
// the login page carrying the intent.
func Guard(state session.State, intent Intent) Decision {
	if state.IsAuthenticated {
		return Decision{Allowed: true}
	}
	return Decision{RedirectURL: intent.LoginURL()}
}

func IsAuthorized(state session.State) bool {
	return state.IsAuthenticated
}

// IsOwner reports whether the signed-in identity owns a resource.
// False for anonymous visitors and for resources whose author relation
// was not loaded.
func IsOwner(state session.State, authorID int) bool {
	if !state.IsAuthenticated || state.User == nil || authorID == 0 {
		return false
	}
	return state.User.ID == authorID
}

// sanitizePath keeps redirects on this site. Anything that is not a
// plain absolute path ("//evil.com", "https://..", "..") is dropped.
func sanitizePath(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "/" {
		return ""
	}
	if !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, "/\\") {
		return ""
	}
	return raw
}
