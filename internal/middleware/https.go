// Package middleware holds small, composable HTTP wrappers.
package middleware

import (
	"net"
	"net/http"
)

// ForceHTTPS returns a wrapper that issues a 308 Permanent Redirect to the
// HTTPS version of any plain-HTTP request.  Loopback hosts pass through so
// local development works, as do requests a TLS proxy marks with
// X-Forwarded-Proto: https.  When enabled is false the wrapper is a no-op.
func ForceHTTPS(enabled bool) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		if !enabled {
			return h
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" || isLoopback(r.Host) {
				h.ServeHTTP(w, r)
				return
			}
			target := "https://" + r.Host + r.URL.RequestURI()
			http.Redirect(w, r, target, http.StatusPermanentRedirect)
		})
	}
}

func isLoopback(hostport string) bool {
	host, _, err := net.SplitHostPort(hostport)
	if err != nil {
		host = hostport
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
