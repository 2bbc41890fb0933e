package persistence

import (
	"context"
	"hash/fnv"

	"github.com/datahub/backend/internal/domain/shared"
	"gorm.io/gorm"
)

type txKey struct{}

// GormTransactionManager runs units of work inside a GORM transaction.
// Repositories pick the transaction up from the context they are called with.
type GormTransactionManager struct {
	db *gorm.DB
}

// NewGormTransactionManager creates a new GormTransactionManager
func NewGormTransactionManager(db *gorm.DB) *GormTransactionManager {
	return &GormTransactionManager{db: db}
}

// WithinTransaction executes fn in a transaction. A nested call joins the outer transaction.
func (m *GormTransactionManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// conn returns the transaction carried by ctx, or db when there is none
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// GormAdvisoryLocker takes Postgres transaction-scoped advisory locks.
type GormAdvisoryLocker struct {
	db *gorm.DB
}

// NewGormAdvisoryLocker creates a new GormAdvisoryLocker
func NewGormAdvisoryLocker(db *gorm.DB) *GormAdvisoryLocker {
	return &GormAdvisoryLocker{db: db}
}

// TryWithLock runs fn while holding the lock named key. It returns false without
// calling fn when another session holds the lock. The lock is released when the
// surrounding transaction ends. Databases without advisory locks always acquire.
func (l *GormAdvisoryLocker) TryWithLock(ctx context.Context, key string, fn func(ctx context.Context) error) (bool, error) {
	acquired := false
	err := NewGormTransactionManager(l.db).WithinTransaction(ctx, func(ctx context.Context) error {
		tx := conn(ctx, l.db)
		if tx.Dialector.Name() == "postgres" {
			if err := tx.Raw("SELECT pg_try_advisory_xact_lock(?)", lockID(key)).Scan(&acquired).Error; err != nil {
				return err
			}
		} else {
			acquired = true
		}
		if !acquired {
			return nil
		}
		return fn(ctx)
	})
	return acquired, err
}

func lockID(key string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(key))
	return int64(h.Sum64())
}

var _ shared.TransactionManager = (*GormTransactionManager)(nil)
