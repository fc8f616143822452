package middleware

import (
	"encoding/json"
	"net/http"
	"path"
	"strings"
)

// TokenVerifier validates a bearer token and returns the user ID it asserts.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

type Auth struct {
	verifier TokenVerifier
}

func NewAuth(verifier TokenVerifier) *Auth {
	return &Auth{verifier: verifier}
}

// Middleware resolves the caller's identity before any handler runs, or
// terminates the request with 401. A missing header, a non-bearer scheme,
// an empty token and a failed verification all produce the same generic
// body so the response cannot be used to probe credential format.
func (a *Auth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Health and auth endpoints are public
		cleanPath := path.Clean(r.URL.Path)
		if cleanPath == "/api/health" || strings.HasPrefix(cleanPath, "/api/auth/") {
			next.ServeHTTP(w, r)
			return
		}

		scheme, tokenStr, found := strings.Cut(r.Header.Get("Authorization"), " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || tokenStr == "" {
			writeMessage(w, http.StatusUnauthorized, "not authorized to access this resource")
			return
		}

		userID, err := a.verifier.Verify(tokenStr)
		if err != nil {
			writeMessage(w, http.StatusUnauthorized, "not authorized to access this resource")
			return
		}

		ctx := SetUserID(r.Context(), userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}
