package sqlstore

import (
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"

	"github.com/marsone/crew-api/internal/core/domain"
)

// translate maps driver errors onto the domain kinds. Postgres and MySQL come
// through gorm's TranslateError; sqlite constraint failures are matched on
// their extended result codes.
func translate(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey), sqliteConstraint(err, sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey):
		return fmt.Errorf("%s: %w", op, domain.ErrConflict)
	case errors.Is(err, gorm.ErrForeignKeyViolated), sqliteConstraint(err, sqlite3.ErrConstraintForeignKey):
		return fmt.Errorf("%s: %w", op, domain.ErrIntegrityViolation)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func sqliteConstraint(err error, codes ...sqlite3.ErrNoExtended) bool {
	var se sqlite3.Error
	if !errors.As(err, &se) {
		return false
	}
	for _, code := range codes {
		if se.ExtendedCode == code {
			return true
		}
	}
	return false
}
