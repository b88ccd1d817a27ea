package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jmuralla/taskhive-backend/api/responses"
	"github.com/jmuralla/taskhive-backend/api/validators"
	"github.com/jmuralla/taskhive-backend/internal/notifications"
	"github.com/jmuralla/taskhive-backend/pkg/enums"
	pkgerrors "github.com/jmuralla/taskhive-backend/pkg/errors"
	"github.com/jmuralla/taskhive-backend/pkg/logger"
)

type acknowledgeRequest struct {
	Role          string `json:"role" validate:"required"`
	TeamSlotIndex *int   `json:"team_slot_index,omitempty"`
}

// NotificationFeed returns the caller's pending notification items.
func NotificationFeed(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notifications service unavailable"))
			return
		}

		viewerID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.Feed(r.Context(), viewerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// AcknowledgeNotification flips one receipt slot of a notification record.
func AcknowledgeNotification(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notifications service unavailable"))
			return
		}

		viewerID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rawRecordID := strings.TrimSpace(chi.URLParam(r, "recordId"))
		recordID, err := uuid.Parse(rawRecordID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid notification id"))
			return
		}

		var body acknowledgeRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		role, err := enums.ParseNotificationRole(body.Role)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role"))
			return
		}

		err = svc.Acknowledge(r.Context(), notifications.AcknowledgeInput{
			RecordID:      recordID,
			ViewerID:      viewerID,
			Role:          role,
			TeamSlotIndex: body.TeamSlotIndex,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "acknowledged"})
	}
}

// NotificationFeedSocket upgrades to a websocket and streams the caller's
// feed. The initial snapshot is pushed via the watcher right after the
// subscription registers so a new client never starts blank.
func NotificationFeedSocket(hub *notifications.Hub, watcher *notifications.Watcher, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if hub == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notification hub unavailable"))
			return
		}

		viewerID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		err = hub.Serve(viewerID, w, r, func() {
			if watcher != nil {
				watcher.RefreshViewer(r.Context(), viewerID)
			}
		})
		if err != nil && logg != nil {
			logg.Warn(r.Context(), "feed socket closed with error")
		}
	}
}
