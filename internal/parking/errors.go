package parking

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnknownVehicleType also matches ErrInvalidArgument.
	ErrUnknownVehicleType = fmt.Errorf("%w: unknown vehicle type", ErrInvalidArgument)

	ErrNoSpotAvailable = errors.New("no parking spot available")
	ErrTicketNotFound  = errors.New("ticket not found")
	ErrAlreadyParked   = errors.New("vehicle is already parked")

	// ErrPersistence wraps every backend failure reported by a Store.
	ErrPersistence = errors.New("persistence failure")
)
