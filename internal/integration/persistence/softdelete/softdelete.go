// Package softdelete provides logical deletion for persistence models.
//
// A model embedding Model is alive while its deleted_at column is NULL. Deleting
// stamps deleted_at instead of removing the row. Reads through Store.Active
// only see alive rows; Store.All sees every row and is meant for admin and
// audit paths.
package softdelete

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/finance-tracker/platform/internal/application/adapter"
)

// ErrMissingFilter is returned by Store.Delete when called without a filter.
var ErrMissingFilter = errors.New("soft delete requires at least one filter")

// Model adds the deletion marker to a persistence model. Embed it by value.
type Model struct {
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// IsDeleted reports whether the row has been logically deleted.
func (m Model) IsDeleted() bool {
	return m.DeletedAt.Valid
}

// DeletedTime returns the deletion time, or nil for an alive row.
func (m Model) DeletedTime() *time.Time {
	if !m.DeletedAt.Valid {
		return nil
	}
	t := m.DeletedAt.Time
	return &t
}

// At builds a Model from an optional deletion time.
func At(t *time.Time) Model {
	if t == nil {
		return Model{}
	}
	return Model{DeletedAt: gorm.DeletedAt{Time: *t, Valid: true}}
}

// Scope narrows a query. Scopes compose the same way on every Store path.
type Scope = func(*gorm.DB) *gorm.DB

// Where returns a scope applying a single condition.
func Where(query any, args ...any) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(query, args...)
	}
}

// ByID matches the row with the given primary key.
func ByID(id any) Scope {
	return Where("id = ?", id)
}

// ByIDs matches rows whose primary key is in ids.
func ByIDs[ID any](ids []ID) Scope {
	return Where("id IN ?", ids)
}

// Observer is notified after every delete that changed at least one row.
type Observer interface {
	ObserveSoftDelete(table string, rows int64)
}

// Option configures a Store.
type Option func(*options)

type options struct {
	observer Observer
}

// WithObserver reports deletions to o.
func WithObserver(o Observer) Option {
	return func(opts *options) {
		opts.observer = o
	}
}

// Store gives typed access to a soft-deletable table. T is the persistence
// model and must embed Model.
type Store[T any] struct {
	db       *gorm.DB
	clock    adapter.Clock
	observer Observer
}

// NewStore creates a Store over db. Deletion times are read from clock.
func NewStore[T any](db *gorm.DB, clock adapter.Clock, opts ...Option) *Store[T] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return &Store[T]{db: db, clock: clock, observer: o.observer}
}

// Active is the default read path. It excludes deleted rows.
func (s *Store[T]) Active(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Model(new(T))
}

// All is the unfiltered read path. It includes deleted rows.
func (s *Store[T]) All(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Unscoped().Model(new(T))
}

// ListActive returns the alive rows matching scopes.
func (s *Store[T]) ListActive(ctx context.Context, scopes ...Scope) ([]T, error) {
	return list[T](s.Active(ctx), scopes)
}

// ListAll returns every row matching scopes, deleted or not.
func (s *Store[T]) ListAll(ctx context.Context, scopes ...Scope) ([]T, error) {
	return list[T](s.All(ctx), scopes)
}

// FindActive returns the first alive row matching scopes, or
// gorm.ErrRecordNotFound.
func (s *Store[T]) FindActive(ctx context.Context, scopes ...Scope) (*T, error) {
	return first[T](s.Active(ctx), scopes)
}

// FindAny returns the first row matching scopes regardless of deletion, or
// gorm.ErrRecordNotFound.
func (s *Store[T]) FindAny(ctx context.Context, scopes ...Scope) (*T, error) {
	return first[T](s.All(ctx), scopes)
}

// Delete marks every alive row matching scopes as deleted in a single UPDATE
// and returns how many rows changed. Rows already deleted keep their original
// timestamp. Other columns, updated_at included, are left untouched.
func (s *Store[T]) Delete(ctx context.Context, scopes ...Scope) (int64, error) {
	if len(scopes) == 0 {
		return 0, ErrMissingFilter
	}

	result := s.db.WithContext(ctx).
		Model(new(T)).
		Scopes(scopes...).
		UpdateColumn("deleted_at", s.clock.Now().UTC())
	if result.Error != nil {
		return 0, result.Error
	}

	if s.observer != nil && result.RowsAffected > 0 {
		s.observer.ObserveSoftDelete(result.Statement.Table, result.RowsAffected)
	}
	return result.RowsAffected, nil
}

// DeleteByID marks a single row as deleted. Deleting a missing or already
// deleted row is not an error.
func (s *Store[T]) DeleteByID(ctx context.Context, id any) error {
	_, err := s.Delete(ctx, ByID(id))
	return err
}

func list[T any](db *gorm.DB, scopes []Scope) ([]T, error) {
	var rows []T
	if err := db.Scopes(scopes...).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func first[T any](db *gorm.DB, scopes []Scope) (*T, error) {
	var row T
	if err := db.Scopes(scopes...).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}
