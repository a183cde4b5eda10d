package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Raunak-Sarmacharya/localcooks-api/internal/model"
)

func TestDaysOverdue(t *testing.T) {
	ends := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		checkedOut time.Time
		want       uint32
	}{
		{"on time", ends, 0},
		{"early", ends.Add(-time.Hour), 0},
		{"one hour late rounds up", ends.Add(time.Hour), 1},
		{"exactly one day", ends.Add(24 * time.Hour), 1},
		{"one day and a minute", ends.Add(24*time.Hour + time.Minute), 2},
		{"ten days", ends.Add(10 * 24 * time.Hour), 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DaysOverdue(ends, tt.checkedOut))
		})
	}
}

func TestCalculatePenalty(t *testing.T) {
	req := model.LocationRequirements{
		GracePeriodDays:    2,
		PenaltyRatePercent: 10,
		TaxRatePercent:     15,
	}
	// daily rate $50.00, 10% per day = $5.00/day

	t.Run("within grace", func(t *testing.T) {
		got := CalculatePenalty(req, 5000, 2)
		assert.Equal(t, uint32(2), got.DaysOverdue)
		assert.Zero(t, got.BillableDays)
		assert.Zero(t, got.FinalCents)
	})

	t.Run("past grace", func(t *testing.T) {
		got := CalculatePenalty(req, 5000, 5)
		assert.Equal(t, uint32(3), got.BillableDays)
		assert.Equal(t, uint32(1500), got.CalculatedCents)
		assert.Equal(t, uint32(225), got.TaxCents)
		assert.Equal(t, uint32(1725), got.FinalCents)
	})

	t.Run("capped", func(t *testing.T) {
		capped := req
		capped.MaxPenaltyCents = 1000
		got := CalculatePenalty(capped, 5000, 5)
		assert.Equal(t, uint32(1000), got.CalculatedCents)
		assert.Equal(t, uint32(150), got.TaxCents)
		assert.Equal(t, uint32(1150), got.FinalCents)
	})

	t.Run("no tax", func(t *testing.T) {
		untaxed := req
		untaxed.TaxRatePercent = 0
		got := CalculatePenalty(untaxed, 5000, 3)
		assert.Equal(t, uint32(500), got.CalculatedCents)
		assert.Zero(t, got.TaxCents)
		assert.Equal(t, uint32(500), got.FinalCents)
	})

	t.Run("zero overdue", func(t *testing.T) {
		got := CalculatePenalty(req, 5000, 0)
		assert.Zero(t, got.FinalCents)
	})
}
