package postgres

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// isUndefinedColumn detects writes against a schema that predates an
// additive column (pq error 42703). Repositories respond by adding the
// missing columns and retrying once; they never drop or rewrite columns.
func isUndefinedColumn(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == "42703"
}
