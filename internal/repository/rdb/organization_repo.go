package rdb

import (
	"context"

	"Itemizer/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrganizationRepository struct {
	DB *gorm.DB
}

func (r *OrganizationRepository) Create(ctx context.Context, org *model.Organization) error {
	return r.DB.WithContext(ctx).Create(org).Error
}

func (r *OrganizationRepository) FindByID(ctx context.Context, id uint64) (*model.Organization, error) {
	var org model.Organization
	err := r.DB.WithContext(ctx).First(&org, id).Error
	return &org, err
}

// Lock takes a row lock on the organization so membership invariants are
// checked against a stable set of rows.
func (r *OrganizationRepository) Lock(ctx context.Context, id uint64) (*model.Organization, error) {
	var org model.Organization
	err := r.DB.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&org, id).Error
	return &org, err
}

func (r *OrganizationRepository) FindByName(ctx context.Context, name string) (*model.Organization, error) {
	var org model.Organization
	err := r.DB.WithContext(ctx).Where("name = ?", name).First(&org).Error
	return &org, err
}

func (r *OrganizationRepository) NameTaken(ctx context.Context, name string, exceptID uint64) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Organization{}).
		Where("name = ? AND id <> ?", name, exceptID).
		Count(&count).Error
	return count > 0, err
}

// OwnedBy lists organizations in which userID holds the OWNER role.
func (r *OrganizationRepository) OwnedBy(ctx context.Context, userID uint64) ([]model.Organization, error) {
	var list []model.Organization
	err := r.DB.WithContext(ctx).
		Joins("JOIN memberships ON memberships.organization_id = organizations.id").
		Where("memberships.user_id = ? AND memberships.role = ?", userID, model.RoleOwner).
		Find(&list).Error
	return list, err
}

// DeleteCascade removes the organization and its dependents. Run it inside
// a transaction.
func (r *OrganizationRepository) DeleteCascade(ctx context.Context, id uint64) error {
	db := r.DB.WithContext(ctx)
	for _, child := range []any{&model.OrganizationLog{}, &model.Request{}, &model.Assignment{}, &model.Membership{}} {
		if err := db.Where("organization_id = ?", id).Delete(child).Error; err != nil {
			return err
		}
	}
	return db.Delete(&model.Organization{}, id).Error
}
