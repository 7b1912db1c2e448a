package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/mediavault/apiserver/internal/services"
)

const (
	loginPath       = "/login"
	homePath        = "/"
	adminPathPrefix = "/admin"
)

// staticExtensions bypass the gate entirely, mirroring the usual
// asset-matcher exclusions.
var staticExtensions = []string{".svg", ".png", ".jpg", ".jpeg", ".gif", ".webp", ".ico"}

// Gate enforces the route access policy on every request: home and
// admin paths require a session, admin paths additionally require the
// profile's admin flag. Everything else passes through. The gate holds
// no per-request state beyond the cookie it refreshes.
type Gate struct {
	secret   []byte
	profiles *services.ProfileService
	ttl      time.Duration
}

func NewGate(sessionSecret string, profiles *services.ProfileService) *Gate {
	return &Gate{
		secret:   []byte(sessionSecret),
		profiles: profiles,
		ttl:      defaultSessionTTL,
	}
}

// Middleware evaluates the policy tiers in order. Responses it
// produces, redirects included, carry a refreshed session cookie so
// session continuity survives the navigation.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isStaticPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		userID, authenticated := g.resolveSession(w, r)

		if r.URL.Path == homePath && !authenticated {
			http.Redirect(w, r, loginPath, http.StatusFound)
			return
		}

		if strings.HasPrefix(r.URL.Path, adminPathPrefix) {
			if !authenticated {
				http.Redirect(w, r, loginPath, http.StatusFound)
				return
			}
			// Authenticated but unauthorized goes home, not back to
			// login. A failed lookup denies.
			if g.profiles.CheckAdmin(r.Context(), userID) != services.AdminGranted {
				http.Redirect(w, r, homePath, http.StatusFound)
				return
			}
		}

		if authenticated {
			r = r.WithContext(withUser(r.Context(), userID))
		}
		next.ServeHTTP(w, r)
	})
}

// resolveSession reads the session cookie and, when valid, re-issues
// it with a fresh expiry before any handler or redirect writes the
// response. Resolution failures are indistinguishable from anonymous.
func (g *Gate) resolveSession(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := sessionUserID(r, g.secret)
	if !ok {
		return "", false
	}
	if err := setSessionCookie(w, userID, g.secret, g.ttl); err != nil {
		return "", false
	}
	return userID, true
}

func isStaticPath(path string) bool {
	if path == "/favicon.ico" || path == "/healthz" {
		return true
	}
	if strings.HasPrefix(path, "/static/") {
		return true
	}
	for _, ext := range staticExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// RequireUser gates page-style routes that need a session. Anonymous
// callers are sent to login, matching the gate's tier for home.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := userIDFromContext(r.Context()); err != nil {
			http.Redirect(w, r, loginPath, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin is the in-handler admin check used on /admin routes in
// addition to the gate. It reads the same profile flag with no
// caching, so the two can never diverge for the same request.
func RequireAdmin(profiles *services.ProfileService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := userIDFromContext(r.Context())
			if err != nil {
				http.Redirect(w, r, loginPath, http.StatusFound)
				return
			}
			if profiles.CheckAdmin(r.Context(), userID) != services.AdminGranted {
				http.Redirect(w, r, homePath, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
