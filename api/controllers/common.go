package controllers

import (
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/jmuralla/taskhive-backend/api/middleware"
	"github.com/jmuralla/taskhive-backend/internal/tasks"
	"github.com/jmuralla/taskhive-backend/pkg/enums"
	pkgerrors "github.com/jmuralla/taskhive-backend/pkg/errors"
)

func currentUserID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing user context")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user context")
	}
	return id, nil
}

func currentActor(r *http.Request) (tasks.Actor, error) {
	id, err := currentUserID(r)
	if err != nil {
		return tasks.Actor{}, err
	}
	return tasks.Actor{
		ID:       id,
		Position: enums.UserPosition(middleware.PositionFromContext(r.Context())),
	}, nil
}

func requestIP(r *http.Request) string {
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		parts := strings.Split(header, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
