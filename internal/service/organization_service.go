package service

import (
	"context"
	"slices"
	"strings"
	"time"

	"Itemizer/internal/activity"
	"Itemizer/internal/model"
	"Itemizer/internal/pkg"
	"Itemizer/internal/repository/rdb"

	"gorm.io/gorm"
)

type OrganizationInput struct {
	Name        string
	Description string
	ImageURL    string
	BannerURL   string
}

type OrganizationService struct {
	db          *gorm.DB
	orgs        *rdb.OrganizationRepository
	memberships *MembershipService
	logs        *LogService
	email       *EmailService
	signer      *pkg.Signer
	Crud        *CrudService[model.Organization, *model.Organization]
}

func NewOrganizationService(db *gorm.DB, memberships *MembershipService, logs *LogService, email *EmailService, signer *pkg.Signer) *OrganizationService {
	s := &OrganizationService{
		db:          db,
		orgs:        &rdb.OrganizationRepository{DB: db},
		memberships: memberships,
		logs:        logs,
		email:       email,
		signer:      signer,
	}
	s.Crud = NewCrudService[model.Organization](db, logs,
		"Memberships.User", "Assignments.Item", "Requests.User", "Logs").
		OnPatch(s.checkName).
		OnDelete(s.deleteOrganization)
	return s
}

// Create inserts the organization and makes owner its OWNER. The returned
// membership carries the new organization.
func (s *OrganizationService) Create(ctx context.Context, owner *model.User, in OrganizationInput) (*model.Membership, error) {
	org := &model.Organization{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		ImageURL:    in.ImageURL,
		BannerURL:   in.BannerURL,
	}
	if err := org.Validate(model.OpCreate); err != nil {
		return nil, err
	}

	m := &model.Membership{Role: model.RoleOwner, UserID: owner.ID}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orgs := &rdb.OrganizationRepository{DB: tx}
		taken, err := orgs.NameTaken(ctx, org.Name, 0)
		if err != nil {
			return err
		}
		if taken {
			return conflict("organization name %q is already taken", org.Name)
		}
		if err := orgs.Create(ctx, org); err != nil {
			return translate(err)
		}
		m.OrganizationID = org.ID
		return s.memberships.createTx(ctx, tx, m)
	})
	if err != nil {
		return nil, err
	}
	return s.memberships.Crud.Get(ctx, m.ID)
}

func (s *OrganizationService) checkName(ctx context.Context, tx *gorm.DB, org *model.Organization, changed []string) error {
	if !slices.Contains(changed, "name") {
		return nil
	}
	org.Name = strings.TrimSpace(org.Name)
	taken, err := (&rdb.OrganizationRepository{DB: tx}).NameTaken(ctx, org.Name, org.ID)
	if err != nil {
		return err
	}
	if taken {
		return conflict("organization name %q is already taken", org.Name)
	}
	return nil
}

func (s *OrganizationService) deleteOrganization(ctx context.Context, tx *gorm.DB, org *model.Organization) ([]*model.OrganizationLog, error) {
	return nil, (&rdb.OrganizationRepository{DB: tx}).DeleteCascade(ctx, org.ID)
}

// Invite issues an invitation link and mails it when to is not empty.
func (s *OrganizationService) Invite(ctx context.Context, org *model.Organization, to string) (string, error) {
	token, err := s.signer.Issue(pkg.PurposeInvite, org.Name)
	if err != nil {
		return "", err
	}
	url := s.email.InvitationURL(token)
	if to != "" {
		if err := s.email.SendInvitation(to, org, url); err != nil {
			return "", err
		}
	}
	return url, nil
}

// ResolveInvitation returns the organization an invitation token points at.
func (s *OrganizationService) ResolveInvitation(ctx context.Context, token string) (*model.Organization, error) {
	name, err := s.signer.Redeem(token, pkg.PurposeInvite, pkg.InviteTTL)
	if err != nil {
		return nil, forbidden("the invitation link is invalid or has expired")
	}
	org, err := s.orgs.FindByName(ctx, name)
	if err != nil {
		return nil, translate(err)
	}
	return org, nil
}

func (s *OrganizationService) JoinByInvitation(ctx context.Context, user *model.User, token string) (*model.Membership, error) {
	org, err := s.ResolveInvitation(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.memberships.Join(ctx, user.ID, org.ID)
}

// TransferOwnership hands the OWNER role of orgID from caller to the member
// targetID and removes the caller from the organization. It writes one log.
func (s *OrganizationService) TransferOwnership(ctx context.Context, caller *model.User, orgID, targetID uint64) (*model.Membership, error) {
	var written *model.OrganizationLog
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := (&rdb.OrganizationRepository{DB: tx}).Lock(ctx, orgID); err != nil {
			return translate(err)
		}
		repo := &rdb.MembershipRepository{DB: tx}
		current, err := repo.Find(ctx, caller.ID, orgID)
		if err != nil || current.Role != model.RoleOwner {
			return forbidden("only the OWNER can transfer ownership")
		}
		target, err := repo.FindByID(ctx, targetID)
		if err != nil || target.OrganizationID != orgID || target.ID == current.ID {
			return &model.ValidationError{Field: "admin_id", Msg: "must be another member of this organization."}
		}
		if !target.Role.AtLeastAdmin() {
			return &model.ValidationError{Field: "admin_id", Msg: "ownership can only be transferred to an ADMIN."}
		}
		if err := repo.Delete(ctx, current); err != nil {
			return err
		}
		if err := repo.UpdateRole(ctx, target, model.RoleOwner); err != nil {
			return err
		}
		written, err = s.logs.Write(ctx, tx, orgID, activity.OwnershipTransferred(caller, target.User))
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logs.Publish(ctx, written)
	return s.memberships.Crud.Get(ctx, targetID)
}

// Report mails to a snapshot of the organization's stock levels.
func (s *OrganizationService) Report(ctx context.Context, org *model.Organization, to *model.User) error {
	list, err := (&rdb.AssignmentRepository{DB: s.db}).ListByOrg(ctx, org.ID)
	if err != nil {
		return err
	}
	data := pkg.InventoryReportData{
		OrganizationName: org.Name,
		GeneratedAt:      time.Now().UTC().Format(time.RFC1123),
	}
	for i := range list {
		a := &list[i]
		data.Rows = append(data.Rows, pkg.InventoryRow{
			Name:       a.Item.Name,
			PartNumber: a.Item.PartNumber,
			Current:    a.CurrentQuantity,
			Threshold:  a.EnoughThreshold,
			Low:        a.Low(),
		})
	}
	return s.email.SendInventoryReport(to, data)
}
