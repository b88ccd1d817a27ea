package enums

import "fmt"

// UserPosition is the account role assigned at registration.
type UserPosition string

const (
	UserPositionHead   UserPosition = "head"
	UserPositionMember UserPosition = "member"
)

var validUserPositions = map[UserPosition]struct{}{
	UserPositionHead:   {},
	UserPositionMember: {},
}

func (p UserPosition) String() string { return string(p) }

func (p UserPosition) IsValid() bool {
	_, ok := validUserPositions[p]
	return ok
}

func ParseUserPosition(s string) (UserPosition, error) {
	p := UserPosition(s)
	if !p.IsValid() {
		return "", fmt.Errorf("invalid user position: %q", s)
	}
	return p, nil
}
