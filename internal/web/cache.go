package web

import "net/http"

const cacheControlPublicHour = "public, max-age=3600, s-maxage=3600"

// Pages are personalized by the session cookie and must never be
// cached by intermediaries; only static assets get a public lifetime.
func setNoStore(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
}

func withCacheControlPublicHour(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", cacheControlPublicHour)
		next.ServeHTTP(w, r)
	})
}
