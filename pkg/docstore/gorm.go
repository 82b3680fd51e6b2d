package docstore

import (
	"context"
	"fmt"
	"reflect"

	"gorm.io/gorm"
)

const (
	sqlIDColumn  = "id"
	sqlChunkSize = 1000
)

// GormCollection maps Collection onto a SQL table. Each InsertMany runs in
// one transaction so a rejected batch leaves nothing behind.
type GormCollection[T Document] struct {
	db    *gorm.DB
	table string
}

func NewGormCollection[T Document](db *gorm.DB, table string) *GormCollection[T] {
	return &GormCollection[T]{db: db, table: table}
}

func (c *GormCollection[T]) Name() string { return c.table }

func (c *GormCollection[T]) InsertMany(ctx context.Context, docs []T) ([]string, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	batch := make([]T, len(docs))
	copy(batch, docs)

	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Table(c.table).CreateInBatches(&batch, sqlChunkSize).Error
	})
	if err != nil {
		return nil, fmt.Errorf("%s: insert many: %w", c.table, err)
	}

	ids := make([]string, 0, len(batch))
	for _, doc := range batch {
		ids = append(ids, doc.DocumentID())
	}
	return ids, nil
}

func (c *GormCollection[T]) Find(ctx context.Context, filter Filter, projection ...string) ([]T, error) {
	query := c.db.WithContext(ctx).Table(c.table)
	if len(filter) > 0 {
		query = query.Where(columns(filter))
	}
	if len(projection) > 0 {
		query = query.Select(columnNames(projection))
	}
	out := make([]T, 0)
	if err := query.Order(sqlIDColumn).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("%s: find: %w", c.table, err)
	}
	return out, nil
}

func (c *GormCollection[T]) UpdateOne(ctx context.Context, id string, fields map[string]any) error {
	res := c.db.WithContext(ctx).Table(c.table).Where(sqlIDColumn+" = ?", id).Updates(columns(fields))
	if res.Error != nil {
		return fmt.Errorf("%s: update %s: %w", c.table, id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func columnName(field string) string {
	if field == idKey {
		return sqlIDColumn
	}
	return field
}

func columnNames(fields []string) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, columnName(f))
	}
	return out
}

// columns renames document fields to columns and unwraps named string types
// so every SQL driver binds them as text.
func columns(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		if v != nil {
			rv := reflect.ValueOf(v)
			if rv.Kind() == reflect.String {
				v = rv.String()
			}
		}
		out[columnName(k)] = v
	}
	return out
}
