package service

import (
	"context"
	"slices"

	"Itemizer/internal/model"
	"Itemizer/internal/repository/rdb"

	"gorm.io/gorm"
)

type MembershipService struct {
	db   *gorm.DB
	Crud *CrudService[model.Membership, *model.Membership]
}

func NewMembershipService(db *gorm.DB, logs *LogService) *MembershipService {
	s := &MembershipService{db: db}
	s.Crud = NewCrudService[model.Membership](db, logs, "User", "Organization").
		OnPatch(s.checkRoleChange).
		OnDelete(s.deleteMembership)
	return s
}

// createTx inserts m after checking the organization's membership rules.
func (s *MembershipService) createTx(ctx context.Context, tx *gorm.DB, m *model.Membership) error {
	if err := m.Validate(model.OpCreate); err != nil {
		return err
	}
	if _, err := (&rdb.OrganizationRepository{DB: tx}).Lock(ctx, m.OrganizationID); err != nil {
		return translate(err)
	}
	repo := &rdb.MembershipRepository{DB: tx}

	count, err := repo.CountByOrg(ctx, m.OrganizationID)
	if err != nil {
		return err
	}
	if count == 0 && m.Role != model.RoleOwner {
		return &model.ValidationError{Field: "role", Msg: "the first member of an organization must be its OWNER."}
	}
	if m.Role == model.RoleOwner && count > 0 {
		owners, err := repo.CountOwners(ctx, m.OrganizationID, 0)
		if err != nil {
			return err
		}
		if owners > 0 {
			return &model.ValidationError{Field: "role", Msg: "an organization can only have one OWNER."}
		}
	}

	member, err := repo.IsMember(ctx, m.UserID, m.OrganizationID)
	if err != nil {
		return err
	}
	if member {
		return conflict("user is already a member of this organization")
	}
	return translate(repo.Create(ctx, m))
}

// Join adds userID to orgID as a REGULAR member and drops any pending
// request of that user.
func (s *MembershipService) Join(ctx context.Context, userID, orgID uint64) (*model.Membership, error) {
	m := &model.Membership{Role: model.RoleRegular, UserID: userID, OrganizationID: orgID}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.createTx(ctx, tx, m); err != nil {
			return err
		}
		return tx.Where("user_id = ? AND organization_id = ?", userID, orgID).Delete(&model.Request{}).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Crud.Get(ctx, m.ID)
}

// AcceptRequest converts a join request into a REGULAR membership.
func (s *MembershipService) AcceptRequest(ctx context.Context, requestID uint64) (*model.Membership, error) {
	var m *model.Membership
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		requests := &rdb.RequestRepository{DB: tx}
		req, err := requests.FindByID(ctx, requestID)
		if err != nil {
			return translate(err)
		}
		if err := requests.Delete(ctx, req); err != nil {
			return err
		}
		m = &model.Membership{Role: model.RoleRegular, UserID: req.UserID, OrganizationID: req.OrganizationID}
		return s.createTx(ctx, tx, m)
	})
	if err != nil {
		return nil, err
	}
	return s.Crud.Get(ctx, m.ID)
}

// checkRoleChange keeps exactly one OWNER per organization.
func (s *MembershipService) checkRoleChange(ctx context.Context, tx *gorm.DB, m *model.Membership, changed []string) error {
	if !slices.Contains(changed, "role") {
		return nil
	}
	if _, err := (&rdb.OrganizationRepository{DB: tx}).Lock(ctx, m.OrganizationID); err != nil {
		return translate(err)
	}
	repo := &rdb.MembershipRepository{DB: tx}
	prev, err := repo.FindByID(ctx, m.ID)
	if err != nil {
		return translate(err)
	}
	if prev.Role == model.RoleOwner && m.Role != model.RoleOwner {
		return &model.ValidationError{Field: "role", Msg: "the OWNER cannot be demoted; transfer ownership instead."}
	}
	if m.Role == model.RoleOwner {
		owners, err := repo.CountOwners(ctx, m.OrganizationID, m.ID)
		if err != nil {
			return err
		}
		if owners > 0 {
			return &model.ValidationError{Field: "role", Msg: "an organization can only have one OWNER."}
		}
	}
	return nil
}

func (s *MembershipService) deleteMembership(ctx context.Context, tx *gorm.DB, m *model.Membership) ([]*model.OrganizationLog, error) {
	if m.Role == model.RoleOwner {
		return nil, forbidden("the OWNER cannot leave an organization; transfer ownership first")
	}
	return nil, (&rdb.MembershipRepository{DB: tx}).Delete(ctx, m)
}
