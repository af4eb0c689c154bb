package router

import (
	"net/http"
	"strings"

	"github.com/shandysiswandi/otpauth/internal/pkg/authn"
	"github.com/shandysiswandi/otpauth/internal/pkg/goerror"
)

const (
	// HeaderAuthToken carries the opaque session token.
	HeaderAuthToken = "X-Auth-Token"
	// QueryAuthToken is the query parameter fallback for HeaderAuthToken.
	QueryAuthToken = "token"
)

// MiddlewareAuthentication resolves the session token from the X-Auth-Token
// header or the token query parameter and stores the claims in the request
// context. Requests without a valid token get 401.
func MiddlewareAuthentication(verifier authn.Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := strings.TrimSpace(r.Header.Get(HeaderAuthToken))
			if token == "" {
				token = strings.TrimSpace(r.URL.Query().Get(QueryAuthToken))
			}

			if token == "" {
				writeJSON(w, ErrorResponse{Error: "unauthenticated", Code: goerror.CodeUnauthorized.String()}, http.StatusUnauthorized)
				return
			}

			claims, err := verifier.Verify(r.Context(), token)
			if err != nil {
				if gerr, ok := goerror.As(err); ok && gerr.Type() == goerror.TypeServer {
					writeError(r.Context(), w, err)
					return
				}
				writeJSON(w, ErrorResponse{Error: "invalid or expired token", Code: goerror.CodeUnauthorized.String()}, http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(authn.SetAuth(r.Context(), claims)))
		})
	}
}
