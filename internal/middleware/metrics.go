package middleware

import (
	"net/http"
	"time"
)

// RequestObserver receives one observation per finished HTTP request.
// metrics.Metrics implements it.
type RequestObserver interface {
	ObserveRequest(method, route string, status int, elapsed time.Duration)
}

// Metrics records every request except those whose path is in skip
// (typically /metrics itself, so scrapes do not count themselves).
func Metrics(observer RequestObserver, skip ...string) func(http.Handler) http.Handler {
	skipped := make(map[string]bool, len(skip))
	for _, p := range skip {
		skipped[p] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skipped[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rec := newStatusRecorder(w)
			next.ServeHTTP(rec, r)

			observer.ObserveRequest(r.Method, routePattern(r), rec.status, time.Since(start))
		})
	}
}
