package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/jmuralla/taskhive-backend/api/responses"
	"github.com/jmuralla/taskhive-backend/api/validators"
	"github.com/jmuralla/taskhive-backend/internal/activity"
	pkgerrors "github.com/jmuralla/taskhive-backend/pkg/errors"
	"github.com/jmuralla/taskhive-backend/pkg/logger"
)

// ActivityTrail lists recent activity entries, newest first. An optional
// actor_id query narrows the trail to one user's actions.
func ActivityTrail(svc activity.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "activity service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 50, 1, 200)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if raw := strings.TrimSpace(r.URL.Query().Get("actor_id")); raw != "" {
			actorID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid actor id"))
				return
			}
			entries, err := svc.ListForActor(r.Context(), actorID, limit)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, entries)
			return
		}

		entries, err := svc.List(r.Context(), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, entries)
	}
}
