package types

import (
	"fmt"

	"github.com/samber/lo"
)

// SubscriptionStatus represents the lifecycle state of a subscription
type SubscriptionStatus string

const (
	SubscriptionStatusTrialing  SubscriptionStatus = "trialing"
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
)

func (s SubscriptionStatus) String() string {
	return string(s)
}

func (s SubscriptionStatus) Validate() error {
	allowed := []SubscriptionStatus{
		SubscriptionStatusTrialing,
		SubscriptionStatusActive,
		SubscriptionStatusCancelled,
	}
	if !lo.Contains(allowed, s) {
		return fmt.Errorf("invalid subscription status: %s", s)
	}
	return nil
}

// CanTransition reports whether a plan change may start from this state.
func (s SubscriptionStatus) CanTransition() bool {
	return s == SubscriptionStatusTrialing || s == SubscriptionStatusActive
}

// TransitionKind represents the direction of a plan change
type TransitionKind string

const (
	TransitionKindUpgrade   TransitionKind = "upgrade"
	TransitionKindDowngrade TransitionKind = "downgrade"
)

func (k TransitionKind) String() string {
	return string(k)
}

func (k TransitionKind) Validate() error {
	allowed := []TransitionKind{
		TransitionKindUpgrade,
		TransitionKindDowngrade,
	}
	if !lo.Contains(allowed, k) {
		return fmt.Errorf("invalid transition kind: %s", k)
	}
	return nil
}
