package student

import "context"

// Repository defines read access to student fee profiles
type Repository interface {
	GetFeeProfile(ctx context.Context, studentID string) (*FeeProfile, error)
}
