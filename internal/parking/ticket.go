package parking

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ticket records one parking session. OutTime and Price stay unset while the
// vehicle is parked.
type Ticket struct {
	ID               int
	Spot             *Spot
	VehicleRegNumber string
	InTime           time.Time
	OutTime          *time.Time
	Price            decimal.NullDecimal
}

func NewTicket(spot *Spot, regNumber string, inTime time.Time) *Ticket {
	return &Ticket{
		Spot:             spot,
		VehicleRegNumber: regNumber,
		InTime:           inTime,
	}
}

func (t *Ticket) IsOpen() bool {
	return t.OutTime == nil
}

func (t *Ticket) Close(outTime time.Time) {
	t.OutTime = &outTime
}

func (t *Ticket) Duration() time.Duration {
	if t.OutTime == nil {
		return 0
	}
	return t.OutTime.Sub(t.InTime)
}
