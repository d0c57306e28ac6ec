package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/temaribet/temaribet/internal/cache"
	"github.com/temaribet/temaribet/internal/domain/student"
	ierr "github.com/temaribet/temaribet/internal/errors"
	"github.com/temaribet/temaribet/internal/logger"
	"github.com/temaribet/temaribet/internal/postgres"
	"github.com/temaribet/temaribet/internal/types"
)

type studentRepository struct {
	db     postgres.IClient
	logger *logger.Logger
	cache  cache.Cache
}

// NewStudentRepository creates the postgres-backed student fee profile
// repository with a read-through cache. Fee profiles change rarely and
// are read on every ledger write.
func NewStudentRepository(db postgres.IClient, logger *logger.Logger, cache cache.Cache) student.Repository {
	return &studentRepository{
		db:     db,
		logger: logger,
		cache:  cache,
	}
}

func (r *studentRepository) GetFeeProfile(ctx context.Context, studentID string) (*student.FeeProfile, error) {
	if profile := r.getCachedProfile(ctx, studentID); profile != nil {
		return profile, nil
	}

	query := `
		SELECT
			student_id, base_monthly_fee, currency, enrollment_start, billing_agent_id,
			school_id, status, created_at, updated_at, created_by, updated_by
		FROM student_fee_profiles
		WHERE student_id = $1 AND school_id = $2`

	var profile student.FeeProfile
	err := r.db.Querier(ctx).GetContext(ctx, &profile, query, studentID, types.GetSchoolID(ctx))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewError("student not found").
				WithHintf("Student with ID %s was not found", studentID).
				WithReportableDetails(map[string]interface{}{"student_id": studentID}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get student fee profile").
			Mark(ierr.ErrDatabase)
	}

	r.setCachedProfile(ctx, &profile)
	return &profile, nil
}

func (r *studentRepository) getCachedProfile(ctx context.Context, studentID string) *student.FeeProfile {
	cacheKey := cache.GenerateKey(cache.PrefixFeeProfile, types.GetSchoolID(ctx), studentID)
	if value, found := r.cache.Get(ctx, cacheKey); found {
		if profile, ok := value.(*student.FeeProfile); ok {
			return profile
		}
	}
	return nil
}

func (r *studentRepository) setCachedProfile(ctx context.Context, profile *student.FeeProfile) {
	cacheKey := cache.GenerateKey(cache.PrefixFeeProfile, types.GetSchoolID(ctx), profile.StudentID)
	r.cache.Set(ctx, cacheKey, profile, cache.DefaultExpiration)
}
