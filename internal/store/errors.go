package store

import "errors"

// Low-level database operation errors. These are returned (or wrapped) by
// store methods when a SQL-level operation fails.
var (
	// ErrBuildingSQLQuery is returned when constructing a SQL query with the
	// query builder fails.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT against the
	// database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrExecutingStatement is returned when executing an INSERT or DELETE
	// statement fails.
	ErrExecutingStatement = errors.New("failed to executing statement")

	// ErrScanningRow is returned when scanning a key-value row fails.
	ErrScanningRow = errors.New("failed to scan key-value row")

	// ErrOpeningDatabase is returned when the SQLite file cannot be created,
	// opened or pinged.
	ErrOpeningDatabase = errors.New("error opening database")
)
