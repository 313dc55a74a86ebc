package rdb

import (
	"context"

	"Itemizer/internal/model"

	"gorm.io/gorm"
)

type RequestRepository struct {
	DB *gorm.DB
}

func (r *RequestRepository) Create(ctx context.Context, req *model.Request) error {
	return r.DB.WithContext(ctx).Create(req).Error
}

func (r *RequestRepository) FindByID(ctx context.Context, id uint64) (*model.Request, error) {
	var req model.Request
	err := r.DB.WithContext(ctx).Preload("User").Preload("Organization").First(&req, id).Error
	return &req, err
}

func (r *RequestRepository) Exists(ctx context.Context, userID, orgID uint64) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Request{}).
		Where("user_id = ? AND organization_id = ?", userID, orgID).
		Count(&count).Error
	return count > 0, err
}

func (r *RequestRepository) Delete(ctx context.Context, req *model.Request) error {
	return r.DB.WithContext(ctx).Delete(req).Error
}

func (r *RequestRepository) DeleteByUser(ctx context.Context, userID uint64) error {
	return r.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.Request{}).Error
}
