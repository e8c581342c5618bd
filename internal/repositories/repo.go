package repositories

import (
	"database/sql"
	"errors"

	intconfig "hajjumrahflow/internal/config"
	intdb "hajjumrahflow/internal/db"
	"hajjumrahflow/internal/domain"
)

type scanner interface {
	Scan(dest ...any) error
}

// pick returns the transaction when bound, else the repository DB, else the shared pool.
func pick(db *sql.DB, tx *sql.Tx) intdb.DBTX {
	if tx != nil {
		return tx
	}
	if db != nil {
		return db
	}
	return intconfig.DB
}

func notFound(resource string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFoundError{Resource: resource, Err: err}
	}
	return err
}

func limitOffset(p domain.Pagination) (int, int) {
	return p.PageSize, p.Offset()
}
