package booking

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/roomly/service-booking/internal/domain"
)

// minorUnitPlaces is the number of decimal places of the currency minor unit.
const minorUnitPlaces = 2

// PriceCalculator defines the interface for calculating booking prices.
type PriceCalculator interface {
	// Calculate returns the total price for booking a room at the given
	// hourly rate over the given slot.
	Calculate(hourlyRate decimal.Decimal, slot TimeSlot) (decimal.Decimal, error)
}

// HourlyRateCalculator prices a booking as rate × duration in hours.
// Fractional hours are charged proportionally. Computation runs at full
// decimal precision; rounding to the minor unit happens only on the result,
// half away from zero.
type HourlyRateCalculator struct{}

// NewHourlyRateCalculator creates a new HourlyRateCalculator.
func NewHourlyRateCalculator() *HourlyRateCalculator {
	return &HourlyRateCalculator{}
}

// Calculate computes the booking price. Pure and side-effect free; safe to
// call repeatedly for quotes.
func (c *HourlyRateCalculator) Calculate(hourlyRate decimal.Decimal, slot TimeSlot) (decimal.Decimal, error) {
	if hourlyRate.IsNegative() {
		return decimal.Zero, domain.NewValidationError("hourly rate must not be negative")
	}
	hours := decimal.NewFromInt(slot.Duration().Nanoseconds()).
		Div(decimal.NewFromInt(int64(time.Hour)))
	return hourlyRate.Mul(hours).Round(minorUnitPlaces), nil
}
