package parking

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var msPerHour = decimal.NewFromInt(int64(time.Hour / time.Millisecond))

type FareRates struct {
	CarPerHour  decimal.Decimal
	BikePerHour decimal.Decimal
	// Discount is the fraction taken off a recurring user's fare.
	Discount    decimal.Decimal
	GracePeriod time.Duration
}

func DefaultFareRates() FareRates {
	return FareRates{
		CarPerHour:  decimal.RequireFromString("1.5"),
		BikePerHour: decimal.RequireFromString("1.0"),
		Discount:    decimal.RequireFromString("0.05"),
		GracePeriod: 30 * time.Minute,
	}
}

type FareCalculator struct {
	rates FareRates
}

func NewFareCalculator(rates FareRates) *FareCalculator {
	return &FareCalculator{rates: rates}
}

// CalculateFare prices a closed ticket and stores the result on it. Stays
// inside the grace period are free; everything else is billed per hour,
// pro rata, and rounded half-up to cents.
func (fc *FareCalculator) CalculateFare(ticket *Ticket, applyDiscount bool) (decimal.Decimal, error) {
	if ticket.OutTime == nil {
		return decimal.Zero, fmt.Errorf("%w: exit time is not set", ErrInvalidArgument)
	}
	if ticket.OutTime.Before(ticket.InTime) {
		return decimal.Zero, fmt.Errorf("%w: exit time %s precedes entry time %s",
			ErrInvalidArgument, ticket.OutTime.Format(time.RFC3339), ticket.InTime.Format(time.RFC3339))
	}

	if ticket.Spot == nil {
		return decimal.Zero, fmt.Errorf("%w: ticket has no spot", ErrUnknownVehicleType)
	}
	rate, err := fc.hourlyRate(ticket.Spot.Type)
	if err != nil {
		return decimal.Zero, err
	}

	hours := decimal.NewFromInt(ticket.OutTime.Sub(ticket.InTime).Milliseconds()).Div(msPerHour)
	graceHours := decimal.NewFromInt(fc.rates.GracePeriod.Milliseconds()).Div(msPerHour)

	price := decimal.Zero
	if hours.GreaterThan(graceHours) {
		price = hours.Mul(rate)
		if applyDiscount {
			price = price.Mul(decimal.NewFromInt(1).Sub(fc.rates.Discount))
		}
		price = price.Round(2)
	}

	ticket.Price = decimal.NewNullDecimal(price)
	return price, nil
}

func (fc *FareCalculator) hourlyRate(vehicleType VehicleType) (decimal.Decimal, error) {
	switch vehicleType {
	case Car:
		return fc.rates.CarPerHour, nil
	case Bike:
		return fc.rates.BikePerHour, nil
	default:
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnknownVehicleType, vehicleType)
	}
}
