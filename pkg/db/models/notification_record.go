package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	dbtypes "github.com/jmuralla/taskhive-backend/pkg/db/types"
)

// NotificationRecord carries one notification event with per-party read
// receipts. The origin party is always present; at most one of the
// individual-recipient or team-recipient parties is populated.
// ToTeamMemberIDs[i] and ToTeamReadReceipts[i] refer to the same
// recipient; every update must preserve that index alignment.
type NotificationRecord struct {
	ID                  uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Title               string            `gorm:"type:text;not null"`
	FromUserID          uuid.UUID         `gorm:"column:from_user_id;type:uuid;not null;index"`
	FromMessage         string            `gorm:"column:from_message;not null"`
	FromReadReceipt     bool              `gorm:"column:from_read_receipt;not null;default:false"`
	ToMemberID          *uuid.UUID        `gorm:"column:to_member_id;type:uuid;index"`
	ToMemberMessage     *string           `gorm:"column:to_member_message"`
	ToMemberReadReceipt bool              `gorm:"column:to_member_read_receipt;not null;default:false"`
	ToTeamMemberIDs     dbtypes.UUIDArray `gorm:"type:uuid[];column:to_team_member_ids"`
	ToTeamMessage       *string           `gorm:"column:to_team_message"`
	ToTeamReadReceipts  pq.BoolArray      `gorm:"type:boolean[];column:to_team_read_receipts"`
	CreatedAt           time.Time         `gorm:"column:created_at;autoCreateTime"`
}

// HasIndividualParty reports whether the record targets a single member.
func (n *NotificationRecord) HasIndividualParty() bool { return n.ToMemberID != nil }

// HasTeamParty reports whether the record targets a team.
func (n *NotificationRecord) HasTeamParty() bool { return len(n.ToTeamMemberIDs) > 0 }
