package types

import (
	"fmt"

	"github.com/samber/lo"
)

// DepositStatus represents the approval state of a deposit
type DepositStatus string

const (
	DepositStatusPending  DepositStatus = "pending"
	DepositStatusApproved DepositStatus = "approved"
	DepositStatusRejected DepositStatus = "rejected"
)

func (s DepositStatus) String() string {
	return string(s)
}

func (s DepositStatus) Validate() error {
	allowed := []DepositStatus{
		DepositStatusPending,
		DepositStatusApproved,
		DepositStatusRejected,
	}
	if !lo.Contains(allowed, s) {
		return fmt.Errorf("invalid deposit status: %s", s)
	}
	return nil
}
