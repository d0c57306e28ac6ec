package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/temaribet/temaribet/internal/domain/deposit"
	ierr "github.com/temaribet/temaribet/internal/errors"
	"github.com/temaribet/temaribet/internal/logger"
	"github.com/temaribet/temaribet/internal/postgres"
	"github.com/temaribet/temaribet/internal/types"
)

type depositRepository struct {
	db     postgres.IClient
	logger *logger.Logger
}

// NewDepositRepository creates the postgres-backed deposit repository
func NewDepositRepository(db postgres.IClient, logger *logger.Logger) deposit.Repository {
	return &depositRepository{
		db:     db,
		logger: logger,
	}
}

const depositColumns = `
	id, student_id, amount, deposit_status, source, reason, transaction_id,
	payment_date, metadata,
	school_id, status, created_at, updated_at, created_by, updated_by`

func (r *depositRepository) Create(ctx context.Context, d *deposit.Deposit) error {
	r.logger.Debugw("creating deposit",
		"deposit_id", d.ID,
		"student_id", d.StudentID,
		"amount", d.Amount)

	query := `
		INSERT INTO deposits (
			id, student_id, amount, deposit_status, source, reason, transaction_id,
			payment_date, metadata,
			school_id, status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :student_id, :amount, :deposit_status, :source, :reason, :transaction_id,
			:payment_date, :metadata,
			:school_id, :status, :created_at, :updated_at, :created_by, :updated_by
		)`

	if _, err := r.db.Querier(ctx).NamedExec(query, d); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create deposit").
			WithReportableDetails(map[string]interface{}{
				"deposit_id": d.ID,
				"student_id": d.StudentID,
			}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *depositRepository) Get(ctx context.Context, id string) (*deposit.Deposit, error) {
	query := `SELECT ` + depositColumns + ` FROM deposits WHERE id = $1 AND school_id = $2`

	var d deposit.Deposit
	err := r.db.Querier(ctx).GetContext(ctx, &d, query, id, types.GetSchoolID(ctx))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewError("deposit not found").
				WithHintf("Deposit with ID %s was not found", id).
				WithReportableDetails(map[string]interface{}{"deposit_id": id}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get deposit").
			Mark(ierr.ErrDatabase)
	}
	return &d, nil
}

func (r *depositRepository) Update(ctx context.Context, d *deposit.Deposit) error {
	query := `
		UPDATE deposits SET
			amount = :amount,
			deposit_status = :deposit_status,
			source = :source,
			reason = :reason,
			transaction_id = :transaction_id,
			payment_date = :payment_date,
			metadata = :metadata,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE id = :id AND school_id = :school_id`

	result, err := r.db.Querier(ctx).NamedExec(query, d)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update deposit").
			WithReportableDetails(map[string]interface{}{"deposit_id": d.ID}).
			Mark(ierr.ErrDatabase)
	}
	return requireRowAffected(result, "deposit", d.ID)
}

func (r *depositRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM deposits WHERE id = $1 AND school_id = $2`

	result, err := r.db.Querier(ctx).ExecContext(ctx, query, id, types.GetSchoolID(ctx))
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to delete deposit").
			WithReportableDetails(map[string]interface{}{"deposit_id": id}).
			Mark(ierr.ErrDatabase)
	}
	return requireRowAffected(result, "deposit", id)
}

func (r *depositRepository) ListByStudent(ctx context.Context, studentID string) ([]*deposit.Deposit, error) {
	query := `SELECT ` + depositColumns + `
		FROM deposits
		WHERE student_id = $1 AND school_id = $2
		ORDER BY payment_date, created_at`

	deposits := make([]*deposit.Deposit, 0)
	err := r.db.Querier(ctx).SelectContext(ctx, &deposits, query, studentID, types.GetSchoolID(ctx))
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list deposits").
			WithReportableDetails(map[string]interface{}{"student_id": studentID}).
			Mark(ierr.ErrDatabase)
	}
	return deposits, nil
}

func (r *depositRepository) GetByTransactionID(ctx context.Context, transactionID string) (*deposit.Deposit, error) {
	query := `SELECT ` + depositColumns + ` FROM deposits WHERE transaction_id = $1 AND school_id = $2`

	var d deposit.Deposit
	err := r.db.Querier(ctx).GetContext(ctx, &d, query, transactionID, types.GetSchoolID(ctx))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewError("deposit not found").
				WithHintf("No deposit recorded for transaction %s", transactionID).
				WithReportableDetails(map[string]interface{}{"transaction_id": transactionID}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to look up deposit by transaction").
			Mark(ierr.ErrDatabase)
	}
	return &d, nil
}

// LookupByTransactionID searches all schools; transaction references are
// globally unique per gateway, and callbacks arrive without a school
// header.
func (r *depositRepository) LookupByTransactionID(ctx context.Context, transactionID string) (*deposit.Deposit, error) {
	query := `SELECT ` + depositColumns + ` FROM deposits WHERE transaction_id = $1`

	var d deposit.Deposit
	err := r.db.Querier(ctx).GetContext(ctx, &d, query, transactionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewError("deposit not found").
				WithHintf("No deposit recorded for transaction %s", transactionID).
				WithReportableDetails(map[string]interface{}{"transaction_id": transactionID}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to look up deposit by transaction").
			Mark(ierr.ErrDatabase)
	}
	return &d, nil
}
