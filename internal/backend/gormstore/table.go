package gormstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/folio-space/folio/internal/backend"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Table is a backend.Table backed by one gorm model.
type Table[T any] struct {
	db   *gorm.DB
	name string
}

var _ backend.Table[struct{}] = (*Table[struct{}])(nil)

// NewTable binds T to its table. name is used for error messages and metrics;
// the physical table comes from T's TableName.
func NewTable[T any](db *gorm.DB, name string) *Table[T] {
	return &Table[T]{db: db, name: name}
}

func (t *Table[T]) Name() string { return t.name }

func (t *Table[T]) Select(ctx context.Context, q backend.Query) ([]T, error) {
	tx := t.db.WithContext(ctx).Model(new(T))
	if len(q.Where) > 0 {
		tx = tx.Where(map[string]interface{}(q.Where))
	}
	if q.Order.Column != "" {
		tx = tx.Order(clause.OrderByColumn{
			Column: clause.Column{Name: q.Order.Column},
			Desc:   q.Order.Desc,
		})
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	rows := make([]T, 0)
	if err := tx.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("select %s: %w", t.name, err)
	}
	return rows, nil
}

func (t *Table[T]) Get(ctx context.Context, id string) (*T, error) {
	var row T
	if err := t.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, t.wrap("get", err)
	}
	return &row, nil
}

func (t *Table[T]) Insert(ctx context.Context, rec *T) error {
	if err := t.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("insert %s: %w", t.name, err)
	}
	return nil
}

func (t *Table[T]) Update(ctx context.Context, id string, fields map[string]any) (*T, error) {
	var row T
	db := t.db.WithContext(ctx)
	if err := db.Where("id = ?", id).First(&row).Error; err != nil {
		return nil, t.wrap("update", err)
	}
	if len(fields) > 0 {
		if err := db.Model(&row).Updates(map[string]interface{}(fields)).Error; err != nil {
			return nil, t.wrap("update", err)
		}
	}
	if err := db.Where("id = ?", id).First(&row).Error; err != nil {
		return nil, t.wrap("update", err)
	}
	return &row, nil
}

func (t *Table[T]) Upsert(ctx context.Context, rec *T) error {
	if err := t.db.WithContext(ctx).Save(rec).Error; err != nil {
		return fmt.Errorf("upsert %s: %w", t.name, err)
	}
	return nil
}

func (t *Table[T]) Delete(ctx context.Context, id string) error {
	res := t.db.WithContext(ctx).Where("id = ?", id).Delete(new(T))
	if res.Error != nil {
		return fmt.Errorf("delete %s: %w", t.name, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete %s %s: %w", t.name, id, backend.ErrNotFound)
	}
	return nil
}

func (t *Table[T]) wrap(op string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %s: %w", op, t.name, backend.ErrNotFound)
	}
	return fmt.Errorf("%s %s: %w", op, t.name, err)
}
