package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/temaribet/temaribet/internal/domain/commission"
	ierr "github.com/temaribet/temaribet/internal/errors"
	"github.com/temaribet/temaribet/internal/logger"
	"github.com/temaribet/temaribet/internal/postgres"
	"github.com/temaribet/temaribet/internal/types"
)

type commissionRepository struct {
	db     postgres.IClient
	logger *logger.Logger
}

// NewCommissionRepository creates the postgres-backed commission repository
func NewCommissionRepository(db postgres.IClient, logger *logger.Logger) commission.Repository {
	return &commissionRepository{
		db:     db,
		logger: logger,
	}
}

const commissionColumns = `
	id, agent_id, payment_id, amount, reason,
	school_id, status, created_at, updated_at, created_by, updated_by`

func (r *commissionRepository) Create(ctx context.Context, c *commission.Commission) error {
	r.logger.Debugw("creating commission",
		"commission_id", c.ID,
		"agent_id", c.AgentID,
		"payment_id", c.PaymentID)

	query := `
		INSERT INTO commissions (
			id, agent_id, payment_id, amount, reason,
			school_id, status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :agent_id, :payment_id, :amount, :reason,
			:school_id, :status, :created_at, :updated_at, :created_by, :updated_by
		)`

	if _, err := r.db.Querier(ctx).NamedExec(query, c); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create commission").
			WithReportableDetails(map[string]interface{}{
				"commission_id": c.ID,
				"payment_id":    c.PaymentID,
			}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *commissionRepository) GetByPaymentID(ctx context.Context, paymentID string) (*commission.Commission, error) {
	query := `SELECT ` + commissionColumns + ` FROM commissions WHERE payment_id = $1 AND school_id = $2`

	var c commission.Commission
	err := r.db.Querier(ctx).GetContext(ctx, &c, query, paymentID, types.GetSchoolID(ctx))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewError("commission not found").
				WithHintf("No commission recorded for payment %s", paymentID).
				WithReportableDetails(map[string]interface{}{"payment_id": paymentID}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to look up commission by payment").
			Mark(ierr.ErrDatabase)
	}
	return &c, nil
}

func (r *commissionRepository) ListByAgent(ctx context.Context, agentID string) ([]*commission.Commission, error) {
	query := `SELECT ` + commissionColumns + `
		FROM commissions
		WHERE agent_id = $1 AND school_id = $2
		ORDER BY created_at`

	commissions := make([]*commission.Commission, 0)
	err := r.db.Querier(ctx).SelectContext(ctx, &commissions, query, agentID, types.GetSchoolID(ctx))
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list commissions").
			WithReportableDetails(map[string]interface{}{"agent_id": agentID}).
			Mark(ierr.ErrDatabase)
	}
	return commissions, nil
}
