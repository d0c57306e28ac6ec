package types

import (
	"fmt"

	"github.com/samber/lo"
)

// LedgerStatus represents the approval state of a ledger entry
type LedgerStatus string

const (
	LedgerStatusPending  LedgerStatus = "pending"
	LedgerStatusPaid     LedgerStatus = "paid"
	LedgerStatusRejected LedgerStatus = "rejected"
)

func (s LedgerStatus) String() string {
	return string(s)
}

func (s LedgerStatus) Validate() error {
	allowed := []LedgerStatus{
		LedgerStatusPending,
		LedgerStatusPaid,
		LedgerStatusRejected,
	}
	if !lo.Contains(allowed, s) {
		return fmt.Errorf("invalid ledger status: %s", s)
	}
	return nil
}

// LedgerEntryType represents how a ledger entry covers its month
type LedgerEntryType string

const (
	LedgerEntryTypeFull         LedgerEntryType = "full"
	LedgerEntryTypePartial      LedgerEntryType = "partial"
	LedgerEntryTypePrizePartial LedgerEntryType = "prize_partial"
	LedgerEntryTypeFree         LedgerEntryType = "free"
)

func (t LedgerEntryType) String() string {
	return string(t)
}

func (t LedgerEntryType) Validate() error {
	allowed := []LedgerEntryType{
		LedgerEntryTypeFull,
		LedgerEntryTypePartial,
		LedgerEntryTypePrizePartial,
		LedgerEntryTypeFree,
	}
	if !lo.Contains(allowed, t) {
		return fmt.Errorf("invalid ledger entry type: %s", t)
	}
	return nil
}

// BypassesSequencing reports whether a request of this type may be
// recorded even when earlier months remain uncovered.
func (t LedgerEntryType) BypassesSequencing() bool {
	return t == LedgerEntryTypePrizePartial ||
		t == LedgerEntryTypeFree ||
		t == LedgerEntryTypePartial
}

// PaymentSource represents where a payment originated
type PaymentSource string

const (
	PaymentSourceManual PaymentSource = "manual"
	PaymentSourceStripe PaymentSource = "stripe"
	PaymentSourceChapa  PaymentSource = "chapa"
)

func (s PaymentSource) String() string {
	return string(s)
}

func (s PaymentSource) Validate() error {
	allowed := []PaymentSource{
		PaymentSourceManual,
		PaymentSourceStripe,
		PaymentSourceChapa,
	}
	if !lo.Contains(allowed, s) {
		return fmt.Errorf("invalid payment source: %s", s)
	}
	return nil
}

// IsGateway reports whether the source is an external payment gateway.
func (s PaymentSource) IsGateway() bool {
	return s == PaymentSourceStripe || s == PaymentSourceChapa
}

// DefaultCurrency is used when a student's fee profile carries no currency.
const DefaultCurrency = "ETB"

// CommissionRate is the fraction of a paid ledger entry credited to the
// student's billing agent.
const CommissionRate = 0.10
