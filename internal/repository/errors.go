package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"blogapi/internal/model"
)

const (
	codeUniqueViolation     = pq.ErrorCode("23505")
	codeForeignKeyViolation = pq.ErrorCode("23503")
	codeCheckViolation      = pq.ErrorCode("23514")
)

// constraintErrors maps named CHECK constraints from schema.sql to domain errors.
var constraintErrors = map[string]error{
	"follows_no_self":        model.ErrSelfFollow,
	"likes_single_target":    model.ErrMultipleParents,
	"comments_single_parent": model.ErrMultipleParents,
}

// mapPQError translates constraint violations into domain errors so store
// specific text never reaches the client. unique and foreignKey override the
// generic duplicate/not-found errors when non-nil. Anything else is wrapped
// with op.
func mapPQError(err error, op string, unique, foreignKey error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return fmt.Errorf("%s: %w", op, err)
	}

	switch pqErr.Code {
	case codeUniqueViolation:
		if unique != nil {
			return unique
		}
		return model.ErrDuplicateRelation
	case codeForeignKeyViolation:
		if foreignKey != nil {
			return foreignKey
		}
		return model.ErrNotFound
	case codeCheckViolation:
		if mapped, ok := constraintErrors[pqErr.Constraint]; ok {
			return mapped
		}
		return model.ErrValidation
	}
	return fmt.Errorf("%s: %w", op, err)
}

// incrementCounter applies a relative delta to one counter column. Zero
// affected rows means the row does not exist.
func incrementCounter(ctx context.Context, tx *sqlx.Tx, table, column string, id int64, delta int, notFound error) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = %s + $1 WHERE id = $2`, table, column, column)
	result, err := tx.ExecContext(ctx, query, delta, id)
	if err != nil {
		return mapPQError(err, fmt.Sprintf("update %s.%s", table, column), nil, nil)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return notFound
	}
	return nil
}

// lockOwned takes the row lock on an author-owned row. It must run as its own
// statement before a delete so that the delete's snapshot includes likes
// committed while the lock was awaited.
func lockOwned(ctx context.Context, tx *sqlx.Tx, table string, id, authorID int64, notFound error) error {
	query := fmt.Sprintf(`SELECT id FROM %s WHERE id = $1 AND author_id = $2 FOR UPDATE`, table)
	var locked int64
	err := tx.GetContext(ctx, &locked, query, id, authorID)
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	if err != nil {
		return fmt.Errorf("lock %s: %w", table, err)
	}
	return nil
}

// exists runs a SELECT EXISTS query.
func exists(ctx context.Context, db *sqlx.DB, query string, args ...interface{}) (bool, error) {
	var ok bool
	if err := db.GetContext(ctx, &ok, query, args...); err != nil {
		return false, fmt.Errorf("check existence: %w", err)
	}
	return ok, nil
}

func authorSummary(id *int64, username *string) *model.UserSummary {
	if id == nil || username == nil {
		return nil
	}
	return &model.UserSummary{ID: *id, Username: *username}
}
