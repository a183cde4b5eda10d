package workflow

import (
	"time"

	"github.com/Raunak-Sarmacharya/localcooks-api/internal/model"
)

// PenaltyAmounts is the result of an overstay calculation.
type PenaltyAmounts struct {
	DaysOverdue     uint32 // calendar days past the booking end, before grace
	BillableDays    uint32 // days actually billed after the grace period
	CalculatedCents uint32 // pre-tax penalty, capped
	TaxCents        uint32 // tax on the calculated amount
	FinalCents      uint32 // calculated + tax
}

// DaysOverdue counts whole days between the booking end and the actual
// checkout, rounding any partial day up. Zero when checkout happened on
// time.
func DaysOverdue(endsAt, checkedOutAt time.Time) uint32 {
	if !checkedOutAt.After(endsAt) {
		return 0
	}
	d := checkedOutAt.Sub(endsAt)
	days := uint32(d / (24 * time.Hour))
	if d%(24*time.Hour) != 0 {
		days++
	}
	return days
}

// CalculatePenalty derives the overstay charge from the location's
// requirement settings: days beyond the grace period are billed at
// PenaltyRatePercent of the booking's daily rate per day, capped at
// MaxPenaltyCents (0 = no cap), then taxed at TaxRatePercent.
func CalculatePenalty(req model.LocationRequirements, dailyRateCents uint32, daysOverdue uint32) PenaltyAmounts {
	out := PenaltyAmounts{DaysOverdue: daysOverdue}
	if daysOverdue <= uint32(req.GracePeriodDays) {
		return out
	}
	out.BillableDays = daysOverdue - uint32(req.GracePeriodDays)

	perDay := uint64(dailyRateCents) * uint64(req.PenaltyRatePercent) / 100
	calculated := perDay * uint64(out.BillableDays)
	if req.MaxPenaltyCents > 0 && calculated > uint64(req.MaxPenaltyCents) {
		calculated = uint64(req.MaxPenaltyCents)
	}
	tax := calculated * uint64(req.TaxRatePercent) / 100

	out.CalculatedCents = uint32(calculated)
	out.TaxCents = uint32(tax)
	out.FinalCents = uint32(calculated + tax)
	return out
}
