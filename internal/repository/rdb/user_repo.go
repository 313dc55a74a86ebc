package rdb

import (
	"context"

	"Itemizer/internal/model"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return r.DB.WithContext(ctx).Create(user).Error
}

// FindByLogin matches either the username or the email.
func (r *UserRepository) FindByLogin(ctx context.Context, login string) (*model.User, error) {
	var user model.User
	err := r.DB.WithContext(ctx).Where("username = ? OR email = ?", login, login).First(&user).Error
	return &user, err
}

func (r *UserRepository) FindByID(ctx context.Context, id uint64) (*model.User, error) {
	var user model.User
	err := r.DB.WithContext(ctx).First(&user, id).Error
	return &user, err
}

// FindProfile loads the user with memberships and their organizations.
func (r *UserRepository) FindProfile(ctx context.Context, id uint64) (*model.User, error) {
	var user model.User
	err := r.DB.WithContext(ctx).
		Preload("Memberships.Organization").
		First(&user, id).Error
	return &user, err
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var usr model.User
	err := r.DB.WithContext(ctx).Where("email = ?", email).First(&usr).Error
	return &usr, err
}

// Taken reports whether column already holds value on another user.
func (r *UserRepository) Taken(ctx context.Context, column, value string, exceptID uint64) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.User{}).
		Where(column+" = ? AND id <> ?", value, exceptID).
		Count(&count).Error
	return count > 0, err
}

func (r *UserRepository) UpdatePassword(ctx context.Context, user *model.User, hash string) error {
	return r.DB.WithContext(ctx).Model(user).Update("password", hash).Error
}

func (r *UserRepository) SetVerified(ctx context.Context, user *model.User) error {
	return r.DB.WithContext(ctx).Model(user).Update("is_verified", true).Error
}

func (r *UserRepository) SetBanned(ctx context.Context, user *model.User, banned bool) error {
	return r.DB.WithContext(ctx).Model(user).Update("is_banned", banned).Error
}

func (r *UserRepository) Delete(ctx context.Context, user *model.User) error {
	return r.DB.WithContext(ctx).Delete(user).Error
}
