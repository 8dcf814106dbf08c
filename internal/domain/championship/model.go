package championship

import (
	"strings"
	"time"
)

type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
)

func ParseRole(value string) (Role, bool) {
	switch Role(strings.ToUpper(strings.TrimSpace(value))) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleMember:
		return RoleMember, true
	default:
		return "", false
	}
}

// Championship groups matches and the closed set of users predicting them.
type Championship struct {
	ID          string
	Name        string
	InviteCode  string
	OwnerUserID string
	CreatedAt   time.Time
}

type Member struct {
	ChampionshipID string
	UserID         string
	Role           Role
	JoinedAt       time.Time
}

func (m Member) IsAdmin() bool {
	return m.Role == RoleAdmin
}

// MemberIDs returns participant ids in membership order.
func MemberIDs(members []Member) []string {
	out := make([]string, 0, len(members))
	for _, m := range members {
		out = append(out, m.UserID)
	}
	return out
}
