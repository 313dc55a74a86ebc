package model

import "time"

type Item struct {
	ID          uint64    `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;size:128;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	ImageURL    string    `gorm:"size:255" json:"image_url"`
	PartNumber  string    `gorm:"size:64" json:"part_number"`
	IsPublic    bool      `gorm:"not null;default:false" json:"is_public"`
	UserID      uint64    `gorm:"not null;index" json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:last_updated" json:"last_updated"`

	User        *User        `json:"user,omitempty"`
	Assignments []Assignment `gorm:"constraint:OnDelete:CASCADE" json:"assignments,omitempty"`
}

func (i *Item) GetID() uint64 { return i.ID }

func (i *Item) Patchable() []string {
	return []string{"name", "description", "image_url", "part_number", "is_public"}
}

func (i *Item) Validate(op Op) error {
	if err := required("name", i.Name); err != nil {
		return err
	}
	if op == OpCreate && i.UserID == 0 {
		return invalid("user_id", "an item must have an owner.")
	}
	return nil
}
