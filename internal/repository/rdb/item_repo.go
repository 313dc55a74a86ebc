package rdb

import (
	"context"

	"Itemizer/internal/model"

	"gorm.io/gorm"
)

type ItemRepository struct {
	DB *gorm.DB
}

func (r *ItemRepository) Create(ctx context.Context, item *model.Item) error {
	return r.DB.WithContext(ctx).Create(item).Error
}

func (r *ItemRepository) FindByID(ctx context.Context, id uint64) (*model.Item, error) {
	var item model.Item
	err := r.DB.WithContext(ctx).First(&item, id).Error
	return &item, err
}

func (r *ItemRepository) NameTaken(ctx context.Context, name string, exceptID uint64) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Item{}).
		Where("name = ? AND id <> ?", name, exceptID).
		Count(&count).Error
	return count > 0, err
}

func (r *ItemRepository) ListByUser(ctx context.Context, userID uint64) ([]model.Item, error) {
	var list []model.Item
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&list).Error
	return list, err
}

func (r *ItemRepository) Delete(ctx context.Context, item *model.Item) error {
	return r.DB.WithContext(ctx).Delete(item).Error
}
