package controllers

import (
	"net/http"

	"github.com/jmuralla/taskhive-backend/api/responses"
	"github.com/jmuralla/taskhive-backend/api/validators"
	"github.com/jmuralla/taskhive-backend/internal/auth"
	pkgerrors "github.com/jmuralla/taskhive-backend/pkg/errors"
	"github.com/jmuralla/taskhive-backend/pkg/logger"
)

// AuthLogin wires the login endpoint into the HTTP layer.
func AuthLogin(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body auth.LoginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		meta := auth.LoginMeta{IPAddress: requestIP(r), UserAgent: r.UserAgent()}
		result, err := svc.Login(r.Context(), body, meta)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.Header().Set("X-TaskHive-Token", result.AccessToken)
		responses.WriteSuccess(w, result)
	}
}
