package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is the repository-level not-found error. Repositories map
// gorm.ErrRecordNotFound to it so services never import gorm for checks.
var ErrNotFound = errors.New("record not found")

type ctxKey string

// txContextKey carries an open transaction through a context so that
// repository calls inside db.Transaction join it.
const txContextKey ctxKey = "tx"

// ContextWithTx returns ctx with the transaction attached.
func ContextWithTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txContextKey, tx)
}

// dbFromContext picks the transaction from ctx when present, otherwise the
// given connection bound to ctx.
func dbFromContext(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txContextKey).(*gorm.DB); ok && tx != nil {
		return tx
	}
	return db.WithContext(ctx)
}

// IBaseRepository provides the lookups every aggregate repository shares.
type IBaseRepository[T any] interface {
	FindByID(ctx context.Context, id uint) (*T, error)
	CountAll(ctx context.Context) (int64, error)
}

// BaseRepository is the generic core embedded by the typed repositories.
type BaseRepository[T any] struct {
	db *gorm.DB
}

// NewBaseRepository wraps a connection (or transaction).
func NewBaseRepository[T any](db *gorm.DB) *BaseRepository[T] {
	return &BaseRepository[T]{db: db}
}

func (r *BaseRepository[T]) FindByID(ctx context.Context, id uint) (*T, error) {
	if id == 0 {
		return nil, ErrNotFound
	}
	var entity T
	err := dbFromContext(ctx, r.db).First(&entity, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &entity, nil
}

func (r *BaseRepository[T]) CountAll(ctx context.Context) (int64, error) {
	var count int64
	var entity T
	err := dbFromContext(ctx, r.db).Model(&entity).Count(&count).Error
	return count, err
}
