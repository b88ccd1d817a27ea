package enums

import "fmt"

// NotificationRole identifies which receipt slot of a notification a
// caller is acknowledging.
type NotificationRole string

const (
	NotificationRoleOrigin              NotificationRole = "ORIGIN"
	NotificationRoleIndividualRecipient NotificationRole = "INDIVIDUAL_RECIPIENT"
	NotificationRoleTeamRecipient       NotificationRole = "TEAM_RECIPIENT"
)

var validNotificationRoles = map[NotificationRole]struct{}{
	NotificationRoleOrigin:              {},
	NotificationRoleIndividualRecipient: {},
	NotificationRoleTeamRecipient:       {},
}

func (r NotificationRole) String() string { return string(r) }

func (r NotificationRole) IsValid() bool {
	_, ok := validNotificationRoles[r]
	return ok
}

func ParseNotificationRole(raw string) (NotificationRole, error) {
	r := NotificationRole(raw)
	if !r.IsValid() {
		return "", fmt.Errorf("invalid notification role: %q", raw)
	}
	return r, nil
}
