package repository

import (
	"database/sql"

	ierr "github.com/temaribet/temaribet/internal/errors"
)

// requireRowAffected turns a zero-row write into a not-found error so
// callers see updates to missing rows and deletes of missing rows the
// same way as failed reads.
func requireRowAffected(result sql.Result, entity, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to read affected rows").
			Mark(ierr.ErrDatabase)
	}
	if rows == 0 {
		return ierr.NewError(entity + " not found").
			WithHintf("%s with ID %s was not found", entity, id).
			WithReportableDetails(map[string]interface{}{"id": id}).
			Mark(ierr.ErrNotFound)
	}
	return nil
}
