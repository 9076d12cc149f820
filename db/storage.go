package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"procurement/internal/apperr"
)

type Storage struct {
	db *sqlx.DB
	q  querier
}

// querier покрывает и *sqlx.DB, и *sqlx.Tx: методы хранилища работают
// одинаково вне и внутри транзакции.
type querier interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

func NewStorage(db *sqlx.DB) *Storage {
	return &Storage{db: db, q: db}
}

// inTx выполняет fn в одной транзакции; откат на любой ошибке.
func (s *Storage) inTx(ctx context.Context, fn func(tx *Storage) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(&Storage{db: s.db, q: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Нарушение уникального ограничения Postgres (23505).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func notFoundOr(err error, message string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.New(apperr.NotFound, message)
	}
	return err
}
