package model

import "time"

// Assignment holds the organization-local stock of one item.
type Assignment struct {
	ID              uint64    `gorm:"primaryKey" json:"id"`
	CurrentQuantity int       `gorm:"not null" json:"current_quantity"`
	EnoughThreshold int       `gorm:"not null" json:"enough_threshold"`
	AddedAt         time.Time `gorm:"autoCreateTime" json:"added_at"`
	UpdatedAt       time.Time `gorm:"column:last_updated" json:"last_updated"`
	ItemID          uint64    `gorm:"not null;index;uniqueIndex:uk_item_org" json:"item_id"`
	OrganizationID  uint64    `gorm:"not null;index;uniqueIndex:uk_item_org" json:"organization_id"`

	Item         *Item         `json:"item,omitempty"`
	Organization *Organization `json:"organization,omitempty"`
}

func (a *Assignment) GetID() uint64 { return a.ID }

func (a *Assignment) OrgID() uint64 { return a.OrganizationID }

func (a *Assignment) Patchable() []string {
	return []string{"current_quantity", "enough_threshold"}
}

// Low reports whether the stock is under its threshold.
func (a *Assignment) Low() bool {
	return a.CurrentQuantity < a.EnoughThreshold
}

func (a *Assignment) Validate(op Op) error {
	if a.CurrentQuantity < 0 {
		return invalid("current_quantity", "Item count must be a non-negative integer.")
	}
	if a.EnoughThreshold < 1 {
		return invalid("enough_threshold", "Minimum threshold for inventory to be considered enough must be a positive integer.")
	}
	if op == OpCreate && (a.ItemID == 0 || a.OrganizationID == 0) {
		return invalid("assignment", "item_id and organization_id are required.")
	}
	return nil
}
