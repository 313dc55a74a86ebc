package model

import "time"

type Organization struct {
	ID          uint64    `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;size:128;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	ImageURL    string    `gorm:"size:255" json:"image_url"`
	BannerURL   string    `gorm:"size:255" json:"banner_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:last_updated" json:"last_updated"`

	Memberships []Membership      `gorm:"constraint:OnDelete:CASCADE" json:"memberships,omitempty"`
	Assignments []Assignment      `gorm:"constraint:OnDelete:CASCADE" json:"assignments,omitempty"`
	Requests    []Request         `gorm:"constraint:OnDelete:CASCADE" json:"requests,omitempty"`
	Logs        []OrganizationLog `gorm:"constraint:OnDelete:CASCADE" json:"organization_logs,omitempty"`
}

func (o *Organization) GetID() uint64 { return o.ID }

func (o *Organization) OrgID() uint64 { return o.ID }

func (o *Organization) Patchable() []string {
	return []string{"name", "description", "image_url", "banner_url"}
}

func (o *Organization) Validate(Op) error {
	return required("name", o.Name)
}
