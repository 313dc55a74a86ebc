package service

import (
	"context"
	"strings"

	"Itemizer/internal/model"
	"Itemizer/internal/repository/rdb"

	"gorm.io/gorm"
)

type RequestService struct {
	db   *gorm.DB
	Crud *CrudService[model.Request, *model.Request]
}

func NewRequestService(db *gorm.DB, logs *LogService) *RequestService {
	return &RequestService{
		db:   db,
		Crud: NewCrudService[model.Request](db, logs, "User", "Organization"),
	}
}

// Submit files a request by userID to join orgID. An empty reason becomes
// model.DefaultReasonToJoin.
func (s *RequestService) Submit(ctx context.Context, userID, orgID uint64, reason string) (*model.Request, error) {
	if strings.TrimSpace(reason) == "" {
		reason = model.DefaultReasonToJoin
	}
	req := &model.Request{ReasonToJoin: reason, UserID: userID, OrganizationID: orgID}
	if err := req.Validate(model.OpCreate); err != nil {
		return nil, err
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := (&rdb.OrganizationRepository{DB: tx}).FindByID(ctx, orgID); err != nil {
			return translate(err)
		}
		member, err := (&rdb.MembershipRepository{DB: tx}).IsMember(ctx, userID, orgID)
		if err != nil {
			return err
		}
		if member {
			return conflict("user is already a member of this organization")
		}
		requests := &rdb.RequestRepository{DB: tx}
		pending, err := requests.Exists(ctx, userID, orgID)
		if err != nil {
			return err
		}
		if pending {
			return conflict("a request to join this organization is already pending")
		}
		return translate(requests.Create(ctx, req))
	})
	if err != nil {
		return nil, err
	}
	return s.Crud.Get(ctx, req.ID)
}
