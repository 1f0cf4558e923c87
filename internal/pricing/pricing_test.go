package pricing

import (
	"errors"
	"testing"
	"time"

	"evrental-backend/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	d, err := domain.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestInclusiveDays(t *testing.T) {
	tests := []struct {
		name     string
		start    string
		end      string
		expected int
	}{
		{"Same day", "2024-01-01", "2024-01-01", 1},
		{"Three days", "2024-01-01", "2024-01-03", 3},
		{"Across month end", "2024-01-30", "2024-02-02", 4},
		{"Leap day", "2024-02-28", "2024-03-01", 3},
		{"Non leap year", "2023-02-28", "2023-03-01", 2},
		{"Across year end", "2023-12-31", "2024-01-01", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			days, err := InclusiveDays(date(tt.start), date(tt.end))
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, days)
		})
	}

	t.Run("End before start", func(t *testing.T) {
		_, err := InclusiveDays(date("2024-01-03"), date("2024-01-01"))
		assert.True(t, errors.Is(err, domain.ErrValidation))
	})

	t.Run("Time of day is ignored", func(t *testing.T) {
		start := time.Date(2024, 1, 1, 23, 59, 0, 0, time.UTC)
		end := time.Date(2024, 1, 2, 0, 1, 0, 0, time.UTC)
		days, err := InclusiveDays(start, end)
		assert.NoError(t, err)
		assert.Equal(t, 2, days)
	})
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 2, DaysBetween(date("2024-01-03"), date("2024-01-05")))
	assert.Equal(t, 0, DaysBetween(date("2024-01-03"), date("2024-01-03")))
	assert.Equal(t, -1, DaysBetween(date("2024-01-03"), date("2024-01-02")))
}

func TestCalculate(t *testing.T) {
	t.Run("Reference example", func(t *testing.T) {
		snap, err := Calculate(Input{
			RentPerDay:         decimal.NewFromInt(500),
			StartDate:          date("2024-01-01"),
			ExpectedReturnDate: date("2024-01-03"),
			JoiningFee:         decimal.NewFromInt(1000),
			SecurityDeposit:    decimal.NewFromInt(1750),
		})
		require.NoError(t, err)
		assert.Equal(t, 3, snap.Days)
		assert.True(t, snap.Usage.Equal(decimal.NewFromInt(1500)))
		assert.True(t, snap.Total().Equal(decimal.NewFromInt(4250)), snap.Total().String())
		assert.Equal(t, domain.PricingSnapshotVersion, snap.Version)
	})

	t.Run("Same day bills one day", func(t *testing.T) {
		snap, err := Calculate(Input{
			RentPerDay:         decimal.NewFromInt(300),
			StartDate:          date("2024-05-10"),
			ExpectedReturnDate: date("2024-05-10"),
		})
		require.NoError(t, err)
		assert.Equal(t, 1, snap.Days)
		assert.True(t, snap.Total().Equal(decimal.NewFromInt(300)))
	})

	t.Run("Fractional rate stays exact", func(t *testing.T) {
		snap, err := Calculate(Input{
			RentPerDay:         decimal.RequireFromString("199.99"),
			StartDate:          date("2024-01-01"),
			ExpectedReturnDate: date("2024-01-07"),
		})
		require.NoError(t, err)
		assert.Equal(t, "1399.93", snap.Usage.StringFixed(2))
	})

	t.Run("Negative inputs are rejected per field", func(t *testing.T) {
		_, err := Calculate(Input{
			RentPerDay:         decimal.NewFromInt(-1),
			StartDate:          date("2024-01-01"),
			ExpectedReturnDate: date("2024-01-02"),
			JoiningFee:         decimal.NewFromInt(-5),
		})
		var verr *domain.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Len(t, verr.Fields, 2)
	})
}
