package pg

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
)

// DefaultNamespace is the schema all chat tables live in unless a binary is
// told otherwise.
const DefaultNamespace = "chat"

// TimeFormat can be used to extract and store time in a reproducible way.
const TimeFormat = "2006-01-02 15:04:05.000000 UTC"

// URLTest is the connection string integration tests fall back to.
const URLTest = "postgres://%s@127.0.0.1:5432/random_chat_test?sslmode=disable&connect_timeout=5"

const (
	codeRelationNotFound = "42P01"
	codeUniqueViolation  = "23505"

	fmtClause = "\nAND "
	fmtWHERE  = "WHERE\n%s"
)

// Postgres errors the services care about.
var (
	ErrRelationNotFound = errors.New("relation not found")
	ErrUniqueViolation  = errors.New("unique violation")
)

const guardIndex = `DO $$
		BEGIN
		IF NOT EXISTS (
			SELECT 1 FROM pg_indexes WHERE schemaname = '%s' AND indexname = '%s'
		) THEN
		%s;
		END IF;
		END$$;`

// ClausesToWhere transforms a list of SQL clauses into a WHERE statement.
func ClausesToWhere(clauses ...string) string {
	if len(clauses) == 0 {
		return ""
	}

	return fmt.Sprintf(fmtWHERE, strings.Join(clauses, fmtClause))
}

// GuardIndex wraps an index creation query with a condition to prevent conflicts.
func GuardIndex(namespace, index, query string) string {
	return fmt.Sprintf(
		guardIndex,
		namespace,
		index,
		fmt.Sprintf(query, index, namespace),
	)
}

// FormatTime normalises t for storage.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeFormat)
}

// ParseTime reads back a time written with FormatTime.
func ParseTime(raw string) (time.Time, error) {
	return time.Parse(TimeFormat, raw)
}

// IsRelationNotFound indicates if err is ErrRelationNotFound.
func IsRelationNotFound(err error) bool {
	return err == ErrRelationNotFound
}

// IsUniqueViolation indicates if err is ErrUniqueViolation.
func IsUniqueViolation(err error) bool {
	return err == ErrUniqueViolation
}

// WrapError maps known Postgres error codes to package errors, otherwise
// returns the original error.
func WrapError(err error) error {
	pqErr, ok := err.(*pq.Error)
	if !ok {
		return err
	}

	switch pqErr.Code {
	case codeRelationNotFound:
		return ErrRelationNotFound
	case codeUniqueViolation:
		return ErrUniqueViolation
	}

	return err
}
