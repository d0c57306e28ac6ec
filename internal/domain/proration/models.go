package proration

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/temaribet/temaribet/internal/types"
)

// AverageDaysPerMonth is the day basis used to normalize a plan price to
// a daily rate independent of the month the transition lands in.
const AverageDaysPerMonth = 30.44

// Params holds all necessary input for calculating proration.
type Params struct {
	// Current plan
	CurrentPrice          decimal.Decimal // Total price for one cycle of the current plan
	CurrentDurationMonths int             // Cycle length of the current plan

	// New plan
	NewPrice          decimal.Decimal // Total price for one cycle of the new plan
	NewDurationMonths int             // Cycle length of the new plan

	// Cycle context
	OriginalStart  time.Time // Start of the current billing cycle
	CurrentEnd     time.Time // End of the current billing cycle
	TransitionDate time.Time // Effective date of the change

	// Direction of the change, used for charge clamping
	Kind types.TransitionKind
}

// Result holds the output of a proration calculation.
type Result struct {
	// Value of unused time on the old plan, rounded to 2 decimal places
	CreditAmount decimal.Decimal `json:"credit_amount"`
	// Full price of one cycle of the new plan
	NewPlanCharge decimal.Decimal `json:"new_plan_charge"`
	// NewPlanCharge minus CreditAmount; negative means customer credit
	NetAmount decimal.Decimal `json:"net_amount"`
	// Amount to collect immediately on an upgrade, never negative
	ChargeNow decimal.Decimal `json:"charge_now"`
	// Whole days elapsed on the old plan
	DaysUsed int `json:"days_used"`
	// Whole days left unused on the old plan, floored at 0
	DaysRemaining int `json:"days_remaining"`
	// Old plan price per day over the current cycle
	OldDailyRate decimal.Decimal `json:"old_daily_rate"`
	// New plan price per average day
	NewDailyRate decimal.Decimal `json:"new_daily_rate"`
	// New plan price normalized to one month, used for ledger rewrites
	NewMonthlyRate decimal.Decimal `json:"new_monthly_rate"`
}
