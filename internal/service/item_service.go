package service

import (
	"context"
	"slices"
	"strings"

	"Itemizer/internal/activity"
	"Itemizer/internal/model"
	"Itemizer/internal/pkg"
	"Itemizer/internal/repository/rdb"

	"gorm.io/gorm"
)

// MinReportLength is the shortest accepted item report text.
const MinReportLength = 50

type ItemInput struct {
	Name        string
	Description string
	ImageURL    string
	PartNumber  string
	IsPublic    bool
}

func (in ItemInput) item(ownerID uint64) *model.Item {
	return &model.Item{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		ImageURL:    in.ImageURL,
		PartNumber:  in.PartNumber,
		IsPublic:    in.IsPublic,
		UserID:      ownerID,
	}
}

type ItemService struct {
	db          *gorm.DB
	logs        *LogService
	email       *EmailService
	assignments *AssignmentService
	Crud        *CrudService[model.Item, *model.Item]
}

func NewItemService(db *gorm.DB, assignments *AssignmentService, logs *LogService, email *EmailService) *ItemService {
	s := &ItemService{db: db, logs: logs, email: email, assignments: assignments}
	s.Crud = NewCrudService[model.Item](db, logs, "User", "Assignments").
		OnPatch(s.checkName).
		OnDelete(s.removeTx)
	return s
}

func (s *ItemService) createTx(ctx context.Context, tx *gorm.DB, item *model.Item) error {
	if err := item.Validate(model.OpCreate); err != nil {
		return err
	}
	repo := &rdb.ItemRepository{DB: tx}
	taken, err := repo.NameTaken(ctx, item.Name, 0)
	if err != nil {
		return err
	}
	if taken {
		return conflict("item name %q is already taken", item.Name)
	}
	return translate(repo.Create(ctx, item))
}

func (s *ItemService) Create(ctx context.Context, owner *model.User, in ItemInput) (*model.Item, error) {
	item := in.item(owner.ID)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.createTx(ctx, tx, item)
	})
	if err != nil {
		return nil, err
	}
	return s.Crud.Get(ctx, item.ID)
}

// AddNewItem creates an item and assigns it to an organization in one
// transaction. The returned assignment has its item loaded.
func (s *ItemService) AddNewItem(ctx context.Context, owner *model.User, in ItemInput, a AssignmentInput) (*model.Item, *model.Assignment, error) {
	item := in.item(owner.ID)
	var assignment *model.Assignment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.createTx(ctx, tx, item); err != nil {
			return err
		}
		a.ItemID = item.ID
		assignment = a.assignment()
		return s.assignments.createTx(ctx, tx, assignment)
	})
	if err != nil {
		return nil, nil, err
	}
	created, err := s.Crud.Get(ctx, item.ID)
	if err != nil {
		return nil, nil, err
	}
	loaded, err := s.assignments.Crud.Get(ctx, assignment.ID)
	if err != nil {
		return nil, nil, err
	}
	return created, loaded, nil
}

func (s *ItemService) checkName(ctx context.Context, tx *gorm.DB, item *model.Item, changed []string) error {
	if !slices.Contains(changed, "name") {
		return nil
	}
	item.Name = strings.TrimSpace(item.Name)
	taken, err := (&rdb.ItemRepository{DB: tx}).NameTaken(ctx, item.Name, item.ID)
	if err != nil {
		return err
	}
	if taken {
		return conflict("item name %q is already taken", item.Name)
	}
	return nil
}

// removeTx deletes item and its assignments, writing one log to every
// organization that stocked it.
func (s *ItemService) removeTx(ctx context.Context, tx *gorm.DB, item *model.Item) ([]*model.OrganizationLog, error) {
	assignments := &rdb.AssignmentRepository{DB: tx}
	list, err := assignments.ListByItem(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	written := make([]*model.OrganizationLog, 0, len(list))
	for _, a := range list {
		l, err := s.logs.Write(ctx, tx, a.OrganizationID, activity.ItemRemoved(item))
		if err != nil {
			return nil, err
		}
		written = append(written, l)
	}
	if err := assignments.DeleteByItem(ctx, item.ID); err != nil {
		return nil, err
	}
	if err := (&rdb.ItemRepository{DB: tx}).Delete(ctx, item); err != nil {
		return nil, err
	}
	return written, nil
}

// Report mails a problem report about an item to support.
func (s *ItemService) Report(ctx context.Context, reporter *model.User, itemID uint64, text string) error {
	if len(strings.TrimSpace(text)) < MinReportLength {
		return &model.ValidationError{Field: "submission_text", Msg: "must be at least 50 characters long."}
	}
	item, err := (&rdb.ItemRepository{DB: s.db}).FindByID(ctx, itemID)
	if err != nil {
		return translate(err)
	}
	return s.email.SendItemReport(pkg.ItemReportData{
		Reporter:   reporter.Username,
		ItemID:     item.ID,
		ItemName:   item.Name,
		PartNumber: item.PartNumber,
		Text:       text,
	})
}
