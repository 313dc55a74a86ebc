package model

import "time"

type Role string

const (
	RoleRegular Role = "REGULAR"
	RoleAdmin   Role = "ADMIN"
	RoleOwner   Role = "OWNER"
)

func (r Role) Valid() bool {
	switch r {
	case RoleRegular, RoleAdmin, RoleOwner:
		return true
	}
	return false
}

// AtLeastAdmin is true for ADMIN and OWNER.
func (r Role) AtLeastAdmin() bool {
	return r == RoleAdmin || r == RoleOwner
}

type Membership struct {
	ID             uint64    `gorm:"primaryKey" json:"id"`
	Role           Role      `gorm:"type:varchar(16);not null" json:"role"`
	JoinedAt       time.Time `gorm:"autoCreateTime" json:"joined_at"`
	UpdatedAt      time.Time `gorm:"column:last_updated" json:"last_updated"`
	UserID         uint64    `gorm:"not null;index;uniqueIndex:uk_user_org" json:"user_id"`
	OrganizationID uint64    `gorm:"not null;index;uniqueIndex:uk_user_org" json:"organization_id"`

	User         *User         `json:"user,omitempty"`
	Organization *Organization `json:"organization,omitempty"`
}

func (m *Membership) GetID() uint64 { return m.ID }

func (m *Membership) OrgID() uint64 { return m.OrganizationID }

func (m *Membership) Patchable() []string {
	return []string{"role"}
}

func (m *Membership) Validate(op Op) error {
	if !m.Role.Valid() {
		return invalid("role", "must be one of REGULAR, ADMIN or OWNER.")
	}
	if op == OpCreate && (m.UserID == 0 || m.OrganizationID == 0) {
		return invalid("membership", "user_id and organization_id are required.")
	}
	return nil
}
