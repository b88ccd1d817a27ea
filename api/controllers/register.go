package controllers

import (
	"net/http"

	"github.com/jmuralla/taskhive-backend/api/responses"
	"github.com/jmuralla/taskhive-backend/api/validators"
	"github.com/jmuralla/taskhive-backend/internal/auth"
	pkgerrors "github.com/jmuralla/taskhive-backend/pkg/errors"
	"github.com/jmuralla/taskhive-backend/pkg/logger"
)

// AuthRegister handles onboarding new users and signs them in immediately.
func AuthRegister(reg auth.RegisterService, svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if reg == nil || svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body auth.RegisterRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if _, err := reg.Register(r.Context(), body); err != nil {
			if logg != nil {
				logg.Error(r.Context(), "register failed", err)
			}
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		meta := auth.LoginMeta{IPAddress: requestIP(r), UserAgent: r.UserAgent()}
		result, err := svc.Login(r.Context(), auth.LoginRequest{Email: body.Email, Password: body.Password}, meta)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.Header().Set("X-TaskHive-Token", result.AccessToken)
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
