package service

import (
	"context"
	"encoding/json"
	"reflect"
	"sort"

	"Itemizer/internal/model"
	"Itemizer/internal/repository/rdb"

	"gorm.io/gorm"
)

// Entity is a model type whose pointer implements model.Record.
type Entity[E any] interface {
	*E
	model.Record
}

// PatchHook runs inside the update transaction after the record has been
// validated. changed holds the json keys being written.
type PatchHook[P any] func(ctx context.Context, tx *gorm.DB, rec P, changed []string) error

// DeleteHook replaces the plain delete. It returns the logs it wrote so they
// can be published once the transaction commits.
type DeleteHook[P any] func(ctx context.Context, tx *gorm.DB, rec P) ([]*model.OrganizationLog, error)

// CrudService implements fetch, partial update and delete for one entity.
type CrudService[E any, P Entity[E]] struct {
	db          *gorm.DB
	repo        *rdb.CrudRepository[E]
	logs        *LogService
	beforePatch PatchHook[P]
	delete      DeleteHook[P]
}

func NewCrudService[E any, P Entity[E]](db *gorm.DB, logs *LogService, preloads ...string) *CrudService[E, P] {
	return &CrudService[E, P]{
		db:   db,
		repo: &rdb.CrudRepository[E]{DB: db, Preloads: preloads},
		logs: logs,
	}
}

func (s *CrudService[E, P]) OnPatch(h PatchHook[P]) *CrudService[E, P] {
	s.beforePatch = h
	return s
}

func (s *CrudService[E, P]) OnDelete(h DeleteHook[P]) *CrudService[E, P] {
	s.delete = h
	return s
}

func (s *CrudService[E, P]) Get(ctx context.Context, id uint64) (P, error) {
	rec, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	return P(rec), nil
}

func (s *CrudService[E, P]) List(ctx context.Context) ([]E, error) {
	return s.repo.FindAll(ctx)
}

// Patch applies the keys of body that are patchable and differ from the
// current value, then persists only those columns.
func (s *CrudService[E, P]) Patch(ctx context.Context, rec P, body map[string]any) (P, error) {
	return s.PatchThen(ctx, rec, body, nil)
}

// PatchThen is Patch with a further write run in the same transaction.
// then runs even when no column changed.
func (s *CrudService[E, P]) PatchThen(ctx context.Context, rec P, body map[string]any, then func(ctx context.Context, tx *gorm.DB) error) (P, error) {
	changed, err := changedFields(rec, rec.Patchable(), body)
	if err != nil {
		return nil, err
	}
	if len(changed) == 0 && then == nil {
		return rec, nil
	}
	if err := applyFields(rec, changed); err != nil {
		return nil, err
	}
	if err := rec.Validate(model.OpPatch); err != nil {
		return nil, err
	}

	cols := make([]string, 0, len(changed))
	for k := range changed {
		cols = append(cols, k)
	}
	sort.Strings(cols)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(cols) > 0 {
			if s.beforePatch != nil {
				if err := s.beforePatch(ctx, tx, rec, cols); err != nil {
					return err
				}
			}
			if err := s.repo.WithTx(tx).UpdateColumns(ctx, (*E)(rec), cols); err != nil {
				return err
			}
		}
		if then != nil {
			return then(ctx, tx)
		}
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}
	return s.Get(ctx, rec.GetID())
}

func (s *CrudService[E, P]) Delete(ctx context.Context, rec P) error {
	var written []*model.OrganizationLog
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if s.delete == nil {
			return s.repo.WithTx(tx).Delete(ctx, (*E)(rec))
		}
		var err error
		written, err = s.delete(ctx, tx, rec)
		return err
	})
	if err != nil {
		return translate(err)
	}
	s.logs.Publish(ctx, written...)
	return nil
}

// changedFields compares body against the json form of rec.
func changedFields(rec any, allowed []string, body map[string]any) (map[string]any, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	var current map[string]any
	if err := json.Unmarshal(raw, &current); err != nil {
		return nil, err
	}
	changed := make(map[string]any)
	for _, key := range allowed {
		v, ok := body[key]
		if !ok || reflect.DeepEqual(current[key], v) {
			continue
		}
		changed[key] = v
	}
	return changed, nil
}

func applyFields(rec any, fields map[string]any) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, rec); err != nil {
		return &model.ValidationError{Field: "body", Msg: err.Error()}
	}
	return nil
}
