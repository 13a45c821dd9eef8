package router

import (
	"net/http"

	"github.com/shandysiswandi/pagemail/internal/pkg/hash"
)

// BasicAuth describes operator accounts allowed to call the API.
type BasicAuth struct {
	// Users maps username to a password hash verifiable by Hash.
	Users map[string]string
	// Hash verifies the submitted password against the stored hash.
	Hash hash.Hash
	// Realm is sent back in WWW-Authenticate.
	Realm string
}

func (b *BasicAuth) enabled() bool {
	return b != nil && b.Hash != nil && len(b.Users) > 0
}

func (b *BasicAuth) verify(user, password string) bool {
	hashed, ok := b.Users[user]
	if !ok {
		return false
	}
	return b.Hash.Verify(hashed, password)
}

func middlewareAuthentication(auth *BasicAuth, publicEndpoints map[string]map[string]struct{}) Middleware {
	realm := "pagemail"
	if auth != nil && auth.Realm != "" {
		realm = auth.Realm
	}

	return func(next http.Handler) http.Handler {
		if !auth.enabled() {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if s, ok := publicEndpoints[r.Method]; ok {
				if _, skip := s[matchedRoutePath(r)]; skip {
					next.ServeHTTP(w, r)
					return
				}
			}

			user, password, ok := r.BasicAuth()
			if !ok {
				w.Header().Set("WWW-Authenticate", `Basic realm="`+realm+`"`)
				writeJSON(w, errorResponse{Message: "Authentication required"}, http.StatusUnauthorized)
				return
			}

			if !auth.verify(user, password) {
				w.Header().Set("WWW-Authenticate", `Basic realm="`+realm+`"`)
				writeJSON(w, errorResponse{Message: "Invalid credentials"}, http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
