package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/temaribet/temaribet/internal/domain/ledger"
	ierr "github.com/temaribet/temaribet/internal/errors"
	"github.com/temaribet/temaribet/internal/logger"
	"github.com/temaribet/temaribet/internal/postgres"
	"github.com/temaribet/temaribet/internal/types"
)

type ledgerRepository struct {
	db     postgres.IClient
	logger *logger.Logger
}

// NewLedgerRepository creates the postgres-backed ledger entry repository
func NewLedgerRepository(db postgres.IClient, logger *logger.Logger) ledger.Repository {
	return &ledgerRepository{
		db:     db,
		logger: logger,
	}
}

const ledgerColumns = `
	id, student_id, month, paid_amount, payment_status, entry_type,
	coverage_start, coverage_end, free_reason, linked_payment_id, source,
	school_id, status, created_at, updated_at, created_by, updated_by`

func (r *ledgerRepository) Create(ctx context.Context, entry *ledger.Entry) error {
	r.logger.Debugw("creating ledger entry",
		"entry_id", entry.ID,
		"student_id", entry.StudentID,
		"month", entry.Month)

	query := `
		INSERT INTO ledger_entries (
			id, student_id, month, paid_amount, payment_status, entry_type,
			coverage_start, coverage_end, free_reason, linked_payment_id, source,
			school_id, status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :student_id, :month, :paid_amount, :payment_status, :entry_type,
			:coverage_start, :coverage_end, :free_reason, :linked_payment_id, :source,
			:school_id, :status, :created_at, :updated_at, :created_by, :updated_by
		)`

	if _, err := r.db.Querier(ctx).NamedExec(query, entry); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create ledger entry").
			WithReportableDetails(map[string]interface{}{
				"entry_id":   entry.ID,
				"student_id": entry.StudentID,
			}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *ledgerRepository) Get(ctx context.Context, id string) (*ledger.Entry, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledger_entries WHERE id = $1 AND school_id = $2`

	var entry ledger.Entry
	err := r.db.Querier(ctx).GetContext(ctx, &entry, query, id, types.GetSchoolID(ctx))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewError("ledger entry not found").
				WithHintf("Ledger entry with ID %s was not found", id).
				WithReportableDetails(map[string]interface{}{"entry_id": id}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get ledger entry").
			Mark(ierr.ErrDatabase)
	}
	return &entry, nil
}

func (r *ledgerRepository) Update(ctx context.Context, entry *ledger.Entry) error {
	query := `
		UPDATE ledger_entries SET
			month = :month,
			paid_amount = :paid_amount,
			payment_status = :payment_status,
			entry_type = :entry_type,
			coverage_start = :coverage_start,
			coverage_end = :coverage_end,
			free_reason = :free_reason,
			linked_payment_id = :linked_payment_id,
			source = :source,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE id = :id AND school_id = :school_id`

	result, err := r.db.Querier(ctx).NamedExec(query, entry)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update ledger entry").
			WithReportableDetails(map[string]interface{}{"entry_id": entry.ID}).
			Mark(ierr.ErrDatabase)
	}
	return requireRowAffected(result, "ledger entry", entry.ID)
}

func (r *ledgerRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM ledger_entries WHERE id = $1 AND school_id = $2`

	result, err := r.db.Querier(ctx).ExecContext(ctx, query, id, types.GetSchoolID(ctx))
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to delete ledger entry").
			WithReportableDetails(map[string]interface{}{"entry_id": id}).
			Mark(ierr.ErrDatabase)
	}
	return requireRowAffected(result, "ledger entry", id)
}

func (r *ledgerRepository) ListByStudent(ctx context.Context, studentID string) ([]*ledger.Entry, error) {
	query := `SELECT ` + ledgerColumns + `
		FROM ledger_entries
		WHERE student_id = $1 AND school_id = $2
		ORDER BY month, created_at`

	entries := make([]*ledger.Entry, 0)
	err := r.db.Querier(ctx).SelectContext(ctx, &entries, query, studentID, types.GetSchoolID(ctx))
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list ledger entries").
			WithReportableDetails(map[string]interface{}{"student_id": studentID}).
			Mark(ierr.ErrDatabase)
	}
	return entries, nil
}

func (r *ledgerRepository) ListByStudentMonth(ctx context.Context, studentID string, month types.BillingMonth) ([]*ledger.Entry, error) {
	query := `SELECT ` + ledgerColumns + `
		FROM ledger_entries
		WHERE student_id = $1 AND month = $2 AND school_id = $3
		ORDER BY created_at`

	entries := make([]*ledger.Entry, 0)
	err := r.db.Querier(ctx).SelectContext(ctx, &entries, query, studentID, month, types.GetSchoolID(ctx))
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list ledger entries for month").
			WithReportableDetails(map[string]interface{}{
				"student_id": studentID,
				"month":      month.String(),
			}).
			Mark(ierr.ErrDatabase)
	}
	return entries, nil
}

func (r *ledgerRepository) GetByLinkedPaymentID(ctx context.Context, paymentID string) ([]*ledger.Entry, error) {
	query := `SELECT ` + ledgerColumns + `
		FROM ledger_entries
		WHERE linked_payment_id = $1 AND school_id = $2
		ORDER BY month`

	entries := make([]*ledger.Entry, 0)
	err := r.db.Querier(ctx).SelectContext(ctx, &entries, query, paymentID, types.GetSchoolID(ctx))
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to look up ledger entries by payment").
			WithReportableDetails(map[string]interface{}{"payment_id": paymentID}).
			Mark(ierr.ErrDatabase)
	}
	return entries, nil
}

func (r *ledgerRepository) EarliestMonth(ctx context.Context, studentID string) (types.BillingMonth, error) {
	// months are stored zero-padded so MIN over text is chronological
	query := `SELECT MIN(month) FROM ledger_entries WHERE student_id = $1 AND school_id = $2`

	var earliest sql.NullString
	err := r.db.Querier(ctx).GetContext(ctx, &earliest, query, studentID, types.GetSchoolID(ctx))
	if err != nil {
		return types.BillingMonth{}, ierr.WithError(err).
			WithHint("Failed to find earliest recorded month").
			WithReportableDetails(map[string]interface{}{"student_id": studentID}).
			Mark(ierr.ErrDatabase)
	}
	if !earliest.Valid || earliest.String == "" {
		return types.BillingMonth{}, nil
	}
	return types.ParseBillingMonth(earliest.String)
}
