package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/timesheet-sync/internal/handler/http/response"
	"github.com/cmlabs-hris/timesheet-sync/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

// OperatorRequired lets a request through only when jwtauth.Verifier found a
// valid operator token on it.
func OperatorRequired(next http.Handler) http.Handler {
	hfn := func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil || token == nil {
			response.HandleError(w, jwt.ErrInvalidToken)
			return
		}

		tokenType, ok := claims["type"].(string)
		if !ok || tokenType != jwt.TokenTypeOperator {
			response.Forbidden(w, "Operator token required")
			return
		}

		next.ServeHTTP(w, r)
	}
	return http.HandlerFunc(hfn)
}
