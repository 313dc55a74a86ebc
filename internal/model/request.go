package model

import "time"

const DefaultReasonToJoin = "Reason"

// Request is a pending ask to join an organization.
type Request struct {
	ID             uint64    `gorm:"primaryKey" json:"id"`
	ReasonToJoin   string    `gorm:"type:text;not null" json:"reason_to_join"`
	SubmittedAt    time.Time `gorm:"autoCreateTime" json:"submitted_at"`
	UserID         uint64    `gorm:"not null;index;uniqueIndex:uk_request_user_org" json:"user_id"`
	OrganizationID uint64    `gorm:"not null;index;uniqueIndex:uk_request_user_org" json:"organization_id"`

	User         *User         `json:"user,omitempty"`
	Organization *Organization `json:"organization,omitempty"`
}

func (r *Request) GetID() uint64 { return r.ID }

func (r *Request) OrgID() uint64 { return r.OrganizationID }

func (r *Request) Patchable() []string {
	return []string{"reason_to_join"}
}

func (r *Request) Validate(op Op) error {
	if err := required("reason_to_join", r.ReasonToJoin); err != nil {
		return err
	}
	if op == OpCreate && (r.UserID == 0 || r.OrganizationID == 0) {
		return invalid("request", "user_id and organization_id are required.")
	}
	return nil
}
