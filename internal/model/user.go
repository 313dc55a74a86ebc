package model

import (
	"strings"
	"time"
)

type User struct {
	ID                uint64    `gorm:"primaryKey" json:"id"`
	FirstName         string    `gorm:"size:64" json:"first_name"`
	LastName          string    `gorm:"size:64" json:"last_name"`
	Username          string    `gorm:"uniqueIndex;size:32;not null" json:"username"`
	Email             string    `gorm:"uniqueIndex;size:64;not null" json:"email"`
	Password          string    `gorm:"size:255;not null" json:"-"`
	ProfilePictureURL string    `gorm:"size:255" json:"profile_picture_url"`
	IsVerified        bool      `gorm:"not null;default:false" json:"is_verified"`
	IsBanned          bool      `gorm:"not null;default:false" json:"is_banned"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `gorm:"column:last_updated" json:"last_updated"`

	Items       []Item       `gorm:"constraint:OnDelete:CASCADE" json:"items,omitempty"`
	Memberships []Membership `gorm:"constraint:OnDelete:CASCADE" json:"memberships,omitempty"`
	Requests    []Request    `gorm:"constraint:OnDelete:CASCADE" json:"requests,omitempty"`
}

func (u *User) GetID() uint64 { return u.ID }

func (u *User) Patchable() []string {
	return []string{"first_name", "last_name", "username", "email", "profile_picture_url"}
}

func (u *User) Validate(op Op) error {
	if err := required("username", u.Username); err != nil {
		return err
	}
	if err := required("email", u.Email); err != nil {
		return err
	}
	if !strings.Contains(u.Email, "@") {
		return invalid("email", "must be a valid email address.")
	}
	if op == OpCreate && u.Password == "" {
		return invalid("password", "is required.")
	}
	return nil
}
