package repository

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Transactor opens database transactions for services that write several
// rows as one unit.
type Transactor struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewTransactor(db *gorm.DB, log *zap.Logger) *Transactor {
	return &Transactor{db: db, log: log}
}

func (t *Transactor) BeginTransaction(ctx context.Context) (*gorm.DB, error) {
	tx := t.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		t.log.Error("failed to start transaction", zap.Error(tx.Error))
		return nil, tx.Error
	}
	return tx, nil
}

func (t *Transactor) Commit(tx *gorm.DB) error {
	if err := tx.Commit().Error; err != nil {
		t.log.Error("failed to commit transaction", zap.Error(err))
		return err
	}
	return nil
}

func (t *Transactor) Rollback(tx *gorm.DB) {
	t.log.Debug("rolling back transaction")
	_ = tx.Rollback().Error
}

// InTx runs fn in tx when the caller already holds one, otherwise in a new
// transaction that is committed when fn returns nil.
func (t *Transactor) InTx(ctx context.Context, tx *gorm.DB, fn func(tx *gorm.DB) error) error {
	if tx != nil {
		return fn(tx)
	}
	tx, err := t.BeginTransaction(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			t.Rollback(tx)
			panic(p)
		}
	}()
	if err := fn(tx); err != nil {
		t.Rollback(tx)
		return err
	}
	return t.Commit(tx)
}

// conn returns tx when set, otherwise the repository's pool handle.
func conn(ctx context.Context, db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// Page is a 1-based page request.
type Page struct {
	Page  int
	Limit int
}

func (p Page) offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.limit()
}

func (p Page) limit() int {
	switch {
	case p.Limit <= 0:
		return 20
	case p.Limit > 100:
		return 100
	}
	return p.Limit
}
