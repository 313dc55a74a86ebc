package rdb

import (
	"context"

	"Itemizer/internal/model"

	"gorm.io/gorm"
)

type MembershipRepository struct {
	DB *gorm.DB
}

func (r *MembershipRepository) Create(ctx context.Context, m *model.Membership) error {
	return r.DB.WithContext(ctx).Create(m).Error
}

// FindByID loads the membership with its user and organization.
func (r *MembershipRepository) FindByID(ctx context.Context, id uint64) (*model.Membership, error) {
	var m model.Membership
	err := r.DB.WithContext(ctx).Preload("User").Preload("Organization").First(&m, id).Error
	return &m, err
}

func (r *MembershipRepository) Find(ctx context.Context, userID, orgID uint64) (*model.Membership, error) {
	var m model.Membership
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND organization_id = ?", userID, orgID).
		First(&m).Error
	return &m, err
}

func (r *MembershipRepository) IsMember(ctx context.Context, userID, orgID uint64) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Membership{}).
		Where("user_id = ? AND organization_id = ?", userID, orgID).
		Count(&count).Error
	return count > 0, err
}

func (r *MembershipRepository) CountByOrg(ctx context.Context, orgID uint64) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Membership{}).
		Where("organization_id = ?", orgID).
		Count(&count).Error
	return count, err
}

// CountOwners counts OWNER memberships of orgID other than exceptID.
func (r *MembershipRepository) CountOwners(ctx context.Context, orgID, exceptID uint64) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Membership{}).
		Where("organization_id = ? AND role = ? AND id <> ?", orgID, model.RoleOwner, exceptID).
		Count(&count).Error
	return count, err
}

func (r *MembershipRepository) UpdateRole(ctx context.Context, m *model.Membership, role model.Role) error {
	return r.DB.WithContext(ctx).Model(m).Update("role", role).Error
}

func (r *MembershipRepository) Delete(ctx context.Context, m *model.Membership) error {
	return r.DB.WithContext(ctx).Delete(m).Error
}

func (r *MembershipRepository) DeleteByUser(ctx context.Context, userID uint64) error {
	return r.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.Membership{}).Error
}
