package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/eslsoft/revise/internal/entity"
)

const pgUniqueViolation = "23505"

// translatePgError maps driver errors onto domain errors where a
// sentinel exists, wrapping everything else.
func translatePgError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return entity.ErrDuplicateProgress
	}
	return fmt.Errorf("%s: %w", op, err)
}
