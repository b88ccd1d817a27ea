package enums

import "fmt"

// UserState tracks account lifecycle.
type UserState string

const (
	UserStateActive   UserState = "active"
	UserStateInactive UserState = "inactive"
)

var validUserStates = map[UserState]struct{}{
	UserStateActive:   {},
	UserStateInactive: {},
}

func (s UserState) String() string { return string(s) }

func (s UserState) IsValid() bool {
	_, ok := validUserStates[s]
	return ok
}

func ParseUserState(raw string) (UserState, error) {
	s := UserState(raw)
	if !s.IsValid() {
		return "", fmt.Errorf("invalid user state: %q", raw)
	}
	return s, nil
}
