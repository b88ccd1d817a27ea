package teams

import (
	"time"

	"github.com/google/uuid"

	"github.com/jmuralla/taskhive-backend/pkg/db/models"
)

// TeamMemberDTO is one filled member slot with its display name.
type TeamMemberDTO struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Slot     int       `json:"slot"`
}

// TeamDTO is the transport shape of a team. MemberIDs always has
// models.TeamSize entries; empty slots hold the zero UUID.
type TeamDTO struct {
	ID        uuid.UUID       `json:"id"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Type      string          `json:"type"`
	HeadID    uuid.UUID       `json:"head_id"`
	MemberIDs []uuid.UUID     `json:"member_ids"`
	Members   []TeamMemberDTO `json:"members"`
	CreatedAt time.Time       `json:"created_at"`
}

// CreateTeamRequest captures the team creation payload.
type CreateTeamRequest struct {
	Name      string      `json:"name" validate:"required"`
	Type      string      `json:"type" validate:"required"`
	MemberIDs []uuid.UUID `json:"member_ids"`
}

func fromModel(team *models.Team, members []models.User) *TeamDTO {
	if team == nil {
		return nil
	}

	usernames := make(map[uuid.UUID]string, len(members))
	for i := range members {
		usernames[members[i].ID] = members[i].Username
	}

	slots := make([]uuid.UUID, models.TeamSize)
	copy(slots, team.MemberIDs)

	dto := &TeamDTO{
		ID:        team.ID,
		Code:      team.Code,
		Name:      team.Name,
		Type:      team.Type,
		HeadID:    team.HeadID,
		MemberIDs: slots,
		Members:   make([]TeamMemberDTO, 0, len(team.MemberIDs)),
		CreatedAt: team.CreatedAt,
	}
	for i, id := range slots {
		if id == uuid.Nil {
			continue
		}
		dto.Members = append(dto.Members, TeamMemberDTO{
			ID:       id,
			Username: usernames[id],
			Slot:     i,
		})
	}
	return dto
}

// FilledMemberIDs returns the non-empty slots of a team in order.
func FilledMemberIDs(team *models.Team) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(team.MemberIDs))
	for _, id := range team.MemberIDs {
		if id != uuid.Nil {
			out = append(out, id)
		}
	}
	return out
}
