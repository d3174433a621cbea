package job

import "errors"

var (
	// ErrNotFound reports a lookup for a job id that does not exist.
	ErrNotFound = errors.New("job not found")

	// ErrSchemaMismatch reports a database created by an incompatible
	// version. Delete the database file to recover.
	ErrSchemaMismatch = errors.New("schema version mismatch")
)
