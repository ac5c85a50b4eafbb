package repository

import (
	"database/sql"
	"fmt"
)

// expectAffected turns a write that matched no rows into sql.ErrNoRows.
func expectAffected(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
