package parking

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) NextAvailableSpot(ctx context.Context, vehicleType VehicleType) (int, error) {
	args := m.Called(ctx, vehicleType)
	return args.Int(0), args.Error(1)
}

func (m *MockStore) UpdateSpot(ctx context.Context, spot *Spot) error {
	args := m.Called(ctx, spot)
	return args.Error(0)
}

func (m *MockStore) ListSpots(ctx context.Context) ([]Spot, error) {
	args := m.Called(ctx)
	spots, _ := args.Get(0).([]Spot)
	return spots, args.Error(1)
}

func (m *MockStore) SaveTicket(ctx context.Context, ticket *Ticket) error {
	args := m.Called(ctx, ticket)
	return args.Error(0)
}

func (m *MockStore) UpdateTicket(ctx context.Context, ticket *Ticket) error {
	args := m.Called(ctx, ticket)
	return args.Error(0)
}

func (m *MockStore) OpenTicket(ctx context.Context, regNumber string) (*Ticket, error) {
	args := m.Called(ctx, regNumber)
	ticket, _ := args.Get(0).(*Ticket)
	return ticket, args.Error(1)
}

func (m *MockStore) CountClosedTickets(ctx context.Context, regNumber string) (int, error) {
	args := m.Called(ctx, regNumber)
	return args.Int(0), args.Error(1)
}
