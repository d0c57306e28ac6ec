package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// BillingMonth identifies one calendar month a ledger entry is recorded
// against. The canonical wire and storage form is "YYYY-MM".
type BillingMonth struct {
	Year  int
	Month time.Month
}

// ParseBillingMonth parses a "YYYY-MM" string. Single-digit month input
// ("2025-1") is accepted and normalized.
func ParseBillingMonth(s string) (BillingMonth, error) {
	parts := strings.SplitN(strings.TrimSpace(s), "-", 2)
	if len(parts) != 2 {
		return BillingMonth{}, fmt.Errorf("invalid month %q: expected YYYY-MM", s)
	}

	year, err := strconv.Atoi(parts[0])
	if err != nil || year < 1000 || year > 9999 {
		return BillingMonth{}, fmt.Errorf("invalid year in month %q", s)
	}

	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return BillingMonth{}, fmt.Errorf("invalid month in %q: expected 1-12", s)
	}

	return BillingMonth{Year: year, Month: time.Month(month)}, nil
}

// MonthOf returns the billing month containing t.
func MonthOf(t time.Time) BillingMonth {
	return BillingMonth{Year: t.Year(), Month: t.Month()}
}

func (m BillingMonth) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

func (m BillingMonth) IsZero() bool {
	return m.Year == 0 && m.Month == 0
}

// FirstDay returns midnight UTC on the first day of the month.
func (m BillingMonth) FirstDay() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// LastDay returns midnight UTC on the last day of the month.
func (m BillingMonth) LastDay() time.Time {
	return m.FirstDay().AddDate(0, 1, -1)
}

// DaysInMonth returns the number of calendar days in the month.
func (m BillingMonth) DaysInMonth() int {
	return m.LastDay().Day()
}

func (m BillingMonth) Before(other BillingMonth) bool {
	if m.Year != other.Year {
		return m.Year < other.Year
	}
	return m.Month < other.Month
}

func (m BillingMonth) After(other BillingMonth) bool {
	return other.Before(m)
}

func (m BillingMonth) Equal(other BillingMonth) bool {
	return m.Year == other.Year && m.Month == other.Month
}

// Next returns the following calendar month.
func (m BillingMonth) Next() BillingMonth {
	return MonthOf(m.FirstDay().AddDate(0, 1, 0))
}

// Prev returns the preceding calendar month.
func (m BillingMonth) Prev() BillingMonth {
	return MonthOf(m.FirstDay().AddDate(0, -1, 0))
}

// MonthsBetween returns the ordered, inclusive range of months from from
// through to. Returns nil when from is after to.
func MonthsBetween(from, to BillingMonth) []BillingMonth {
	if from.After(to) {
		return nil
	}

	var months []BillingMonth
	for m := from; !m.After(to); m = m.Next() {
		months = append(months, m)
	}
	return months
}

// Scan implements the sql.Scanner interface
func (m *BillingMonth) Scan(value interface{}) error {
	if value == nil {
		*m = BillingMonth{}
		return nil
	}

	var s string
	switch v := value.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	case time.Time:
		*m = MonthOf(v)
		return nil
	default:
		return fmt.Errorf("cannot scan %T into BillingMonth", value)
	}

	parsed, err := ParseBillingMonth(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Value implements the driver.Valuer interface
func (m BillingMonth) Value() (driver.Value, error) {
	return m.String(), nil
}

// MarshalJSON implements the json.Marshaler interface
func (m BillingMonth) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface
func (m *BillingMonth) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*m = BillingMonth{}
		return nil
	}

	parsed, err := ParseBillingMonth(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
