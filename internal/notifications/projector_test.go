package notifications

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/jmuralla/taskhive-backend/pkg/db/models"
	dbtypes "github.com/jmuralla/taskhive-backend/pkg/db/types"
	"github.com/jmuralla/taskhive-backend/pkg/enums"
)

func ptrUUID(id uuid.UUID) *uuid.UUID { return &id }

func ptrString(s string) *string { return &s }

func TestProjectOriginAndIndividual(t *testing.T) {
	origin := uuid.New()
	recipient := uuid.New()

	rec := models.NotificationRecord{
		ID:              uuid.New(),
		Title:           "Task TH123KV assigned",
		FromUserID:      origin,
		FromMessage:     "You assigned a task",
		ToMemberID:      ptrUUID(recipient),
		ToMemberMessage: ptrString("A task was assigned to you"),
		CreatedAt:       time.Now(),
	}

	originItems := Project([]models.NotificationRecord{rec}, origin)
	if len(originItems) != 1 {
		t.Fatalf("expected 1 origin item, got %d", len(originItems))
	}
	if originItems[0].Role != enums.NotificationRoleOrigin {
		t.Fatalf("expected origin role, got %s", originItems[0].Role)
	}
	if originItems[0].Message != "You assigned a task" {
		t.Fatalf("unexpected origin message %q", originItems[0].Message)
	}

	memberItems := Project([]models.NotificationRecord{rec}, recipient)
	if len(memberItems) != 1 {
		t.Fatalf("expected 1 recipient item, got %d", len(memberItems))
	}
	if memberItems[0].Role != enums.NotificationRoleIndividualRecipient {
		t.Fatalf("expected individual role, got %s", memberItems[0].Role)
	}
	if memberItems[0].Message != "A task was assigned to you" {
		t.Fatalf("unexpected recipient message %q", memberItems[0].Message)
	}
}

func TestProjectAcknowledgedSlotsHidden(t *testing.T) {
	origin := uuid.New()
	recipient := uuid.New()

	rec := models.NotificationRecord{
		ID:                  uuid.New(),
		Title:               "Task completed",
		FromUserID:          origin,
		FromMessage:         "done",
		FromReadReceipt:     true,
		ToMemberID:          ptrUUID(recipient),
		ToMemberMessage:     ptrString("done"),
		ToMemberReadReceipt: false,
		CreatedAt:           time.Now(),
	}

	if got := Project([]models.NotificationRecord{rec}, origin); len(got) != 0 {
		t.Fatalf("acknowledged origin should see nothing, got %d items", len(got))
	}
	if got := Project([]models.NotificationRecord{rec}, recipient); len(got) != 1 {
		t.Fatalf("pending recipient should see 1 item, got %d", len(got))
	}
}

// An actor who is also a team recipient gets two separate entries for
// the same record, one per role, each carrying its own message.
func TestProjectActorAlsoTeamMember(t *testing.T) {
	actor := uuid.New()
	peer := uuid.New()

	rec := models.NotificationRecord{
		ID:                 uuid.New(),
		Title:              "Team task created",
		FromUserID:         actor,
		FromMessage:        "You created a team task",
		ToTeamMemberIDs:    dbtypes.UUIDArray{actor, peer},
		ToTeamMessage:      ptrString("A task was assigned to your team"),
		ToTeamReadReceipts: pq.BoolArray{false, false},
		CreatedAt:          time.Now(),
	}

	items := Project([]models.NotificationRecord{rec}, actor)
	if len(items) != 2 {
		t.Fatalf("expected 2 items for dual-role viewer, got %d", len(items))
	}
	roles := map[enums.NotificationRole]string{}
	for _, item := range items {
		roles[item.Role] = item.Message
	}
	if roles[enums.NotificationRoleOrigin] != "You created a team task" {
		t.Fatalf("unexpected origin message %q", roles[enums.NotificationRoleOrigin])
	}
	if roles[enums.NotificationRoleTeamRecipient] != "A task was assigned to your team" {
		t.Fatalf("unexpected team message %q", roles[enums.NotificationRoleTeamRecipient])
	}
}

func TestProjectTeamSlotIndex(t *testing.T) {
	first := uuid.New()
	second := uuid.New()
	third := uuid.New()

	rec := models.NotificationRecord{
		ID:                 uuid.New(),
		Title:              "Team task",
		FromUserID:         uuid.New(),
		FromMessage:        "assigned",
		ToTeamMemberIDs:    dbtypes.UUIDArray{first, second, third},
		ToTeamMessage:      ptrString("team message"),
		ToTeamReadReceipts: pq.BoolArray{true, false, false},
		CreatedAt:          time.Now(),
	}

	// First member already acknowledged slot 0.
	if got := Project([]models.NotificationRecord{rec}, first); len(got) != 0 {
		t.Fatalf("acked team member should see nothing, got %d", len(got))
	}

	items := Project([]models.NotificationRecord{rec}, second)
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].TeamSlotIndex == nil || *items[0].TeamSlotIndex != 1 {
		t.Fatalf("expected team slot index 1, got %v", items[0].TeamSlotIndex)
	}
}

func TestProjectMismatchedTeamReceiptsSkipped(t *testing.T) {
	member := uuid.New()

	rec := models.NotificationRecord{
		ID:                 uuid.New(),
		Title:              "corrupted",
		FromUserID:         uuid.New(),
		FromMessage:        "msg",
		ToTeamMemberIDs:    dbtypes.UUIDArray{member, uuid.New()},
		ToTeamReadReceipts: pq.BoolArray{false},
		CreatedAt:          time.Now(),
	}

	if got := Project([]models.NotificationRecord{rec}, member); len(got) != 0 {
		t.Fatalf("mismatched receipts should not project a team item, got %d", len(got))
	}
}

func TestProjectOrdersNewestFirst(t *testing.T) {
	viewer := uuid.New()
	now := time.Now()

	older := models.NotificationRecord{
		ID:          uuid.New(),
		Title:       "older",
		FromUserID:  viewer,
		FromMessage: "older",
		CreatedAt:   now.Add(-time.Hour),
	}
	newer := models.NotificationRecord{
		ID:          uuid.New(),
		Title:       "newer",
		FromUserID:  viewer,
		FromMessage: "newer",
		CreatedAt:   now,
	}

	items := Project([]models.NotificationRecord{older, newer}, viewer)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Title != "newer" || items[1].Title != "older" {
		t.Fatalf("expected newest first, got %s then %s", items[0].Title, items[1].Title)
	}
}

func TestReapEligible(t *testing.T) {
	member := uuid.New()

	tests := []struct {
		name string
		rec  models.NotificationRecord
		want bool
	}{
		{
			name: "origin only never reaped",
			rec: models.NotificationRecord{
				FromUserID:      uuid.New(),
				FromReadReceipt: true,
			},
			want: false,
		},
		{
			name: "individual pending",
			rec: models.NotificationRecord{
				FromUserID:      uuid.New(),
				FromReadReceipt: true,
				ToMemberID:      ptrUUID(member),
			},
			want: false,
		},
		{
			name: "origin pending",
			rec: models.NotificationRecord{
				FromUserID:          uuid.New(),
				ToMemberID:          ptrUUID(member),
				ToMemberReadReceipt: true,
			},
			want: false,
		},
		{
			name: "individual complete",
			rec: models.NotificationRecord{
				FromUserID:          uuid.New(),
				FromReadReceipt:     true,
				ToMemberID:          ptrUUID(member),
				ToMemberReadReceipt: true,
			},
			want: true,
		},
		{
			name: "team partial",
			rec: models.NotificationRecord{
				FromUserID:         uuid.New(),
				FromReadReceipt:    true,
				ToTeamMemberIDs:    dbtypes.UUIDArray{uuid.New(), uuid.New()},
				ToTeamReadReceipts: pq.BoolArray{true, false},
			},
			want: false,
		},
		{
			name: "team complete",
			rec: models.NotificationRecord{
				FromUserID:         uuid.New(),
				FromReadReceipt:    true,
				ToTeamMemberIDs:    dbtypes.UUIDArray{uuid.New(), uuid.New()},
				ToTeamReadReceipts: pq.BoolArray{true, true},
			},
			want: true,
		},
		{
			name: "team receipts mismatched",
			rec: models.NotificationRecord{
				FromUserID:         uuid.New(),
				FromReadReceipt:    true,
				ToTeamMemberIDs:    dbtypes.UUIDArray{uuid.New(), uuid.New()},
				ToTeamReadReceipts: pq.BoolArray{true},
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ReapEligible(&tt.rec); got != tt.want {
				t.Fatalf("ReapEligible = %v, want %v", got, tt.want)
			}
		})
	}
}
