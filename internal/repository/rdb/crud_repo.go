package rdb

import (
	"context"

	"gorm.io/gorm"
)

// CrudRepository covers the fetch/update/delete calls shared by every entity.
type CrudRepository[E any] struct {
	DB       *gorm.DB
	Preloads []string
}

func (r *CrudRepository[E]) WithTx(tx *gorm.DB) *CrudRepository[E] {
	return &CrudRepository[E]{DB: tx, Preloads: r.Preloads}
}

func (r *CrudRepository[E]) query(ctx context.Context) *gorm.DB {
	q := r.DB.WithContext(ctx)
	for _, p := range r.Preloads {
		q = q.Preload(p)
	}
	return q
}

func (r *CrudRepository[E]) FindByID(ctx context.Context, id uint64) (*E, error) {
	var rec E
	if err := r.query(ctx).First(&rec, id).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *CrudRepository[E]) FindAll(ctx context.Context) ([]E, error) {
	list := make([]E, 0)
	err := r.query(ctx).Order("id").Find(&list).Error
	return list, err
}

// UpdateColumns writes only columns, plus the update timestamp.
func (r *CrudRepository[E]) UpdateColumns(ctx context.Context, rec *E, columns []string) error {
	cols := append(append([]string{}, columns...), "last_updated")
	return r.DB.WithContext(ctx).Model(rec).Select(cols).Updates(rec).Error
}

func (r *CrudRepository[E]) Delete(ctx context.Context, rec *E) error {
	return r.DB.WithContext(ctx).Delete(rec).Error
}
