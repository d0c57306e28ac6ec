package testutil

import (
	"context"

	"github.com/temaribet/temaribet/internal/domain/student"
	ierr "github.com/temaribet/temaribet/internal/errors"
)

// InMemoryStudentStore implements student.Repository
type InMemoryStudentStore struct {
	*InMemoryStore[*student.FeeProfile]
}

// NewInMemoryStudentStore creates a new in-memory fee profile repository
func NewInMemoryStudentStore() *InMemoryStudentStore {
	return &InMemoryStudentStore{
		InMemoryStore: NewInMemoryStore[*student.FeeProfile](),
	}
}

// AddFeeProfile seeds a fee profile into the store
func (m *InMemoryStudentStore) AddFeeProfile(ctx context.Context, profile *student.FeeProfile) error {
	return m.InMemoryStore.Create(ctx, profile.StudentID, profile)
}

// GetFeeProfile retrieves the fee profile for a student
func (m *InMemoryStudentStore) GetFeeProfile(ctx context.Context, studentID string) (*student.FeeProfile, error) {
	profile, err := m.InMemoryStore.Get(ctx, studentID)
	if err != nil {
		return nil, ierr.NewError("student not found").
			WithHintf("Student with ID %s was not found", studentID).
			Mark(ierr.ErrNotFound)
	}
	return profile, nil
}
