package rdb

import (
	"context"

	"Itemizer/internal/model"

	"gorm.io/gorm"
)

type AssignmentRepository struct {
	DB *gorm.DB
}

func (r *AssignmentRepository) Create(ctx context.Context, a *model.Assignment) error {
	return r.DB.WithContext(ctx).Create(a).Error
}

func (r *AssignmentRepository) FindByID(ctx context.Context, id uint64) (*model.Assignment, error) {
	var a model.Assignment
	err := r.DB.WithContext(ctx).Preload("Item").First(&a, id).Error
	return &a, err
}

// Exists reports whether (itemID, orgID) is assigned by a row other than
// exceptID.
func (r *AssignmentRepository) Exists(ctx context.Context, itemID, orgID, exceptID uint64) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Assignment{}).
		Where("item_id = ? AND organization_id = ? AND id <> ?", itemID, orgID, exceptID).
		Count(&count).Error
	return count > 0, err
}

func (r *AssignmentRepository) ListByItem(ctx context.Context, itemID uint64) ([]model.Assignment, error) {
	var list []model.Assignment
	err := r.DB.WithContext(ctx).Where("item_id = ?", itemID).Order("id").Find(&list).Error
	return list, err
}

func (r *AssignmentRepository) ListByOrg(ctx context.Context, orgID uint64) ([]model.Assignment, error) {
	var list []model.Assignment
	err := r.DB.WithContext(ctx).Preload("Item").Where("organization_id = ?", orgID).Order("id").Find(&list).Error
	return list, err
}

func (r *AssignmentRepository) Delete(ctx context.Context, a *model.Assignment) error {
	return r.DB.WithContext(ctx).Delete(a).Error
}

func (r *AssignmentRepository) DeleteByItem(ctx context.Context, itemID uint64) error {
	return r.DB.WithContext(ctx).Where("item_id = ?", itemID).Delete(&model.Assignment{}).Error
}
