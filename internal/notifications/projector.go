package notifications

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jmuralla/taskhive-backend/pkg/db/models"
	"github.com/jmuralla/taskhive-backend/pkg/enums"
)

// VisibleItem is one unacknowledged entry in a viewer's feed. Recomputed
// from the latest records on every pass, never persisted.
type VisibleItem struct {
	SourceRecordID uuid.UUID              `json:"sourceRecordId"`
	Role           enums.NotificationRole `json:"role"`
	TeamSlotIndex  *int                   `json:"teamSlotIndex,omitempty"`
	Title          string                 `json:"title"`
	Message        string                 `json:"message"`
	CreatedAt      time.Time              `json:"createdAt"`
}

// Project maps the full record set and a viewer identity to the viewer's
// pending items. A record contributes one item per unacknowledged role it
// grants the viewer, so an actor who is also a team member can see two
// entries for the same event with different message text.
func Project(records []models.NotificationRecord, viewerID uuid.UUID) []VisibleItem {
	if viewerID == uuid.Nil {
		return nil
	}

	items := make([]VisibleItem, 0, len(records))
	for i := range records {
		items = append(items, projectRecord(&records[i], viewerID)...)
	}

	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].SourceRecordID.String() < items[j].SourceRecordID.String()
	})
	return items
}

func projectRecord(rec *models.NotificationRecord, viewerID uuid.UUID) []VisibleItem {
	var items []VisibleItem

	if rec.FromUserID == viewerID && !rec.FromReadReceipt {
		items = append(items, VisibleItem{
			SourceRecordID: rec.ID,
			Role:           enums.NotificationRoleOrigin,
			Title:          rec.Title,
			Message:        rec.FromMessage,
			CreatedAt:      rec.CreatedAt,
		})
	}

	if rec.ToMemberID != nil && *rec.ToMemberID == viewerID && !rec.ToMemberReadReceipt {
		msg := ""
		if rec.ToMemberMessage != nil {
			msg = *rec.ToMemberMessage
		}
		items = append(items, VisibleItem{
			SourceRecordID: rec.ID,
			Role:           enums.NotificationRoleIndividualRecipient,
			Title:          rec.Title,
			Message:        msg,
			CreatedAt:      rec.CreatedAt,
		})
	}

	// A mismatched receipts array means the record was corrupted by a
	// partial write. Skip the team role instead of failing the whole
	// feed for one bad record.
	if len(rec.ToTeamMemberIDs) > 0 && len(rec.ToTeamMemberIDs) == len(rec.ToTeamReadReceipts) {
		for i, memberID := range rec.ToTeamMemberIDs {
			if memberID != viewerID || rec.ToTeamReadReceipts[i] {
				continue
			}
			idx := i
			msg := ""
			if rec.ToTeamMessage != nil {
				msg = *rec.ToTeamMessage
			}
			items = append(items, VisibleItem{
				SourceRecordID: rec.ID,
				Role:           enums.NotificationRoleTeamRecipient,
				TeamSlotIndex:  &idx,
				Title:          rec.Title,
				Message:        msg,
				CreatedAt:      rec.CreatedAt,
			})
			break
		}
	}

	return items
}

// ReapEligible reports whether every present party has acknowledged the
// record. Origin must always have acknowledged, and at least one
// recipient party must exist: an origin-only record is never reaped
// automatically, it persists until removed by other means.
func ReapEligible(rec *models.NotificationRecord) bool {
	if !rec.FromReadReceipt {
		return false
	}

	hasIndividual := rec.ToMemberID != nil
	hasTeam := len(rec.ToTeamMemberIDs) > 0

	if !hasIndividual && !hasTeam {
		return false
	}
	if hasIndividual && !rec.ToMemberReadReceipt {
		return false
	}
	if hasTeam {
		if len(rec.ToTeamReadReceipts) != len(rec.ToTeamMemberIDs) {
			return false
		}
		for _, ack := range rec.ToTeamReadReceipts {
			if !ack {
				return false
			}
		}
	}
	return true
}
