package rdb

import (
	"context"
	"time"

	"Itemizer/internal/model"

	"gorm.io/gorm"
)

type LogRepository struct {
	DB *gorm.DB
}

func (r *LogRepository) Create(ctx context.Context, l *model.OrganizationLog) error {
	return r.DB.WithContext(ctx).Create(l).Error
}

// ListByOrg returns the organization's logs, newest first.
func (r *LogRepository) ListByOrg(ctx context.Context, orgID uint64) ([]model.OrganizationLog, error) {
	list := make([]model.OrganizationLog, 0)
	err := r.DB.WithContext(ctx).
		Where("organization_id = ?", orgID).
		Order("occurrence desc, id desc").
		Find(&list).Error
	return list, err
}

// DeleteUpTo removes every log that occurred at or before cutoff.
func (r *LogRepository) DeleteUpTo(ctx context.Context, cutoff time.Time) (int64, error) {
	tx := r.DB.WithContext(ctx).Where("occurrence <= ?", cutoff).Delete(&model.OrganizationLog{})
	return tx.RowsAffected, tx.Error
}
