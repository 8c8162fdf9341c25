package parking

type Spot struct {
	ID        int
	Type      VehicleType
	Available bool
}

func NewSpot(id int, vehicleType VehicleType) *Spot {
	return &Spot{
		ID:        id,
		Type:      vehicleType,
		Available: true,
	}
}

func (s *Spot) Occupy() {
	s.Available = false
}

func (s *Spot) Release() {
	s.Available = true
}
