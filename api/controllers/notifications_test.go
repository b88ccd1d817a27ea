package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jmuralla/taskhive-backend/api/middleware"
	"github.com/jmuralla/taskhive-backend/internal/notifications"
	"github.com/jmuralla/taskhive-backend/pkg/db/models"
	"github.com/jmuralla/taskhive-backend/pkg/enums"
)

type stubNotificationService struct {
	feedItems []notifications.VisibleItem
	feedErr   error
	ackInput  notifications.AcknowledgeInput
	ackErr    error
	ackCalls  int
}

func (s *stubNotificationService) Record(ctx context.Context, input notifications.RecordInput) (*models.NotificationRecord, error) {
	return nil, nil
}

func (s *stubNotificationService) Feed(ctx context.Context, viewerID uuid.UUID) ([]notifications.VisibleItem, error) {
	return s.feedItems, s.feedErr
}

func (s *stubNotificationService) Acknowledge(ctx context.Context, input notifications.AcknowledgeInput) error {
	s.ackInput = input
	s.ackCalls++
	return s.ackErr
}

func (s *stubNotificationService) ReapPass(ctx context.Context) (int, error) { return 0, nil }

func viewerRequest(req *http.Request, viewerID uuid.UUID) *http.Request {
	ctx := middleware.WithUserID(req.Context(), viewerID.String())
	return req.WithContext(ctx)
}

func TestNotificationFeed(t *testing.T) {
	viewer := uuid.New()
	recordID := uuid.New()
	svc := &stubNotificationService{
		feedItems: []notifications.VisibleItem{
			{SourceRecordID: recordID, Role: enums.NotificationRoleOrigin, Title: "Task QA204ZX", Message: "you created this"},
		},
	}
	handler := NotificationFeed(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications", nil)
	req = viewerRequest(req, viewer)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}

	var envelope struct {
		Data []notifications.VisibleItem `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data) != 1 || envelope.Data[0].SourceRecordID != recordID {
		t.Fatalf("unexpected feed payload: %+v", envelope.Data)
	}
}

func TestAcknowledgeNotification(t *testing.T) {
	viewer := uuid.New()
	recordID := uuid.New()
	svc := &stubNotificationService{}
	handler := AcknowledgeNotification(svc, nil)

	slot := 2
	body, _ := json.Marshal(map[string]any{"role": "TEAM_RECIPIENT", "team_slot_index": slot})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications/"+recordID.String()+"/ack", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = viewerRequest(req, viewer)
	rc := chi.NewRouteContext()
	rc.URLParams.Add("recordId", recordID.String())
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.ackCalls != 1 {
		t.Fatalf("expected one acknowledge call, got %d", svc.ackCalls)
	}
	if svc.ackInput.RecordID != recordID || svc.ackInput.ViewerID != viewer {
		t.Fatalf("unexpected acknowledge input: %+v", svc.ackInput)
	}
	if svc.ackInput.Role != enums.NotificationRoleTeamRecipient {
		t.Fatalf("expected team recipient role, got %s", svc.ackInput.Role)
	}
	if svc.ackInput.TeamSlotIndex == nil || *svc.ackInput.TeamSlotIndex != slot {
		t.Fatalf("expected slot index %d, got %v", slot, svc.ackInput.TeamSlotIndex)
	}
}

func TestAcknowledgeNotificationRejectsUnknownRole(t *testing.T) {
	viewer := uuid.New()
	recordID := uuid.New()
	svc := &stubNotificationService{}
	handler := AcknowledgeNotification(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications/"+recordID.String()+"/ack", bytes.NewBufferString(`{"role":"BYSTANDER"}`))
	req.Header.Set("Content-Type", "application/json")
	req = viewerRequest(req, viewer)
	rc := chi.NewRouteContext()
	rc.URLParams.Add("recordId", recordID.String())
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if svc.ackCalls != 0 {
		t.Fatalf("expected no acknowledge calls, got %d", svc.ackCalls)
	}
}
