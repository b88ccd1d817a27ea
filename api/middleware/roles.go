package middleware

import (
	"net/http"

	"github.com/jmuralla/taskhive-backend/api/responses"
	"github.com/jmuralla/taskhive-backend/pkg/enums"
	pkgerrors "github.com/jmuralla/taskhive-backend/pkg/errors"
	"github.com/jmuralla/taskhive-backend/pkg/logger"
)

// RequireHead rejects callers whose token does not carry the head position.
func RequireHead(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if PositionFromContext(r.Context()) != string(enums.UserPositionHead) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "head position required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
