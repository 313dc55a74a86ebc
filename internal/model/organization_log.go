package model

import (
	"time"

	"gorm.io/datatypes"
)

// OrganizationLog is append only.
type OrganizationLog struct {
	ID             uint64                      `gorm:"primaryKey" json:"id"`
	Contents       datatypes.JSONSlice[string] `json:"contents"`
	Occurrence     time.Time                   `gorm:"autoCreateTime;index" json:"occurrence"`
	OrganizationID uint64                      `gorm:"not null;index" json:"organization_id"`
}

func (l *OrganizationLog) OrgID() uint64 { return l.OrganizationID }
