package service

import (
	"context"

	"Itemizer/internal/model"
	"Itemizer/internal/repository/rdb"

	"gorm.io/gorm"
)

type AssignmentInput struct {
	ItemID          uint64
	OrganizationID  uint64
	CurrentQuantity int
	EnoughThreshold int
}

func (in AssignmentInput) assignment() *model.Assignment {
	return &model.Assignment{
		ItemID:          in.ItemID,
		OrganizationID:  in.OrganizationID,
		CurrentQuantity: in.CurrentQuantity,
		EnoughThreshold: in.EnoughThreshold,
	}
}

type AssignmentService struct {
	db   *gorm.DB
	Crud *CrudService[model.Assignment, *model.Assignment]
}

func NewAssignmentService(db *gorm.DB, logs *LogService) *AssignmentService {
	s := &AssignmentService{db: db}
	s.Crud = NewCrudService[model.Assignment](db, logs, "Item").
		OnPatch(func(ctx context.Context, tx *gorm.DB, a *model.Assignment, _ []string) error {
			return s.checkUnique(ctx, tx, a, model.OpPatch)
		})
	return s
}

// checkUnique allows one assignment per item and organization. On patch the
// record itself does not count.
func (s *AssignmentService) checkUnique(ctx context.Context, tx *gorm.DB, a *model.Assignment, op model.Op) error {
	var except uint64
	if op == model.OpPatch {
		except = a.ID
	}
	exists, err := (&rdb.AssignmentRepository{DB: tx}).Exists(ctx, a.ItemID, a.OrganizationID, except)
	if err != nil {
		return err
	}
	if exists {
		return conflict("item %d is already assigned to organization %d", a.ItemID, a.OrganizationID)
	}
	return nil
}

func (s *AssignmentService) createTx(ctx context.Context, tx *gorm.DB, a *model.Assignment) error {
	if err := a.Validate(model.OpCreate); err != nil {
		return err
	}
	if _, err := (&rdb.ItemRepository{DB: tx}).FindByID(ctx, a.ItemID); err != nil {
		return translate(err)
	}
	if _, err := (&rdb.OrganizationRepository{DB: tx}).FindByID(ctx, a.OrganizationID); err != nil {
		return translate(err)
	}
	if err := s.checkUnique(ctx, tx, a, model.OpCreate); err != nil {
		return err
	}
	return translate((&rdb.AssignmentRepository{DB: tx}).Create(ctx, a))
}

func (s *AssignmentService) Create(ctx context.Context, in AssignmentInput) (*model.Assignment, error) {
	a := in.assignment()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.createTx(ctx, tx, a)
	})
	if err != nil {
		return nil, err
	}
	return s.Crud.Get(ctx, a.ID)
}
