package parking

import "fmt"

type VehicleType string

const (
	Car  VehicleType = "CAR"
	Bike VehicleType = "BIKE"
)

// Menu selections accepted at check-in.
const (
	SelectionCar  = 1
	SelectionBike = 2
)

func VehicleTypeFromSelection(selection int) (VehicleType, error) {
	switch selection {
	case SelectionCar:
		return Car, nil
	case SelectionBike:
		return Bike, nil
	default:
		return "", fmt.Errorf("%w: selection %d", ErrUnknownVehicleType, selection)
	}
}

func ParseVehicleType(s string) (VehicleType, error) {
	switch VehicleType(s) {
	case Car, Bike:
		return VehicleType(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownVehicleType, s)
	}
}

func (v VehicleType) Valid() bool {
	return v == Car || v == Bike
}

func (v VehicleType) String() string {
	return string(v)
}
