package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBillingMonth(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{name: "canonical", input: "2025-01", expected: "2025-01"},
		{name: "single_digit_month", input: "2025-1", expected: "2025-01"},
		{name: "december", input: "2024-12", expected: "2024-12"},
		{name: "surrounding_whitespace", input: " 2025-03 ", expected: "2025-03"},
		{name: "missing_month", input: "2025", wantErr: true},
		{name: "month_out_of_range", input: "2025-13", wantErr: true},
		{name: "zero_month", input: "2025-00", wantErr: true},
		{name: "garbage", input: "banana", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ParseBillingMonth(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, m.String())
		})
	}
}

func TestBillingMonthOrdering(t *testing.T) {
	jan := BillingMonth{Year: 2025, Month: time.January}
	feb := BillingMonth{Year: 2025, Month: time.February}
	decPrev := BillingMonth{Year: 2024, Month: time.December}

	assert.True(t, jan.Before(feb))
	assert.True(t, feb.After(jan))
	assert.True(t, decPrev.Before(jan))
	assert.True(t, jan.Equal(jan))
	assert.Equal(t, feb, jan.Next())
	assert.Equal(t, decPrev, jan.Prev())
}

func TestBillingMonthDays(t *testing.T) {
	assert.Equal(t, 31, BillingMonth{Year: 2025, Month: time.January}.DaysInMonth())
	assert.Equal(t, 28, BillingMonth{Year: 2025, Month: time.February}.DaysInMonth())
	assert.Equal(t, 29, BillingMonth{Year: 2024, Month: time.February}.DaysInMonth())
	assert.Equal(t, 30, BillingMonth{Year: 2025, Month: time.April}.DaysInMonth())
}

func TestMonthsBetween(t *testing.T) {
	from := BillingMonth{Year: 2024, Month: time.November}
	to := BillingMonth{Year: 2025, Month: time.February}

	months := MonthsBetween(from, to)
	require.Len(t, months, 4)
	assert.Equal(t, "2024-11", months[0].String())
	assert.Equal(t, "2024-12", months[1].String())
	assert.Equal(t, "2025-01", months[2].String())
	assert.Equal(t, "2025-02", months[3].String())

	assert.Nil(t, MonthsBetween(to, from))
	assert.Len(t, MonthsBetween(from, from), 1)
}

func TestMonthOf(t *testing.T) {
	d := time.Date(2025, 6, 21, 13, 45, 0, 0, time.UTC)
	assert.Equal(t, "2025-06", MonthOf(d).String())
}
