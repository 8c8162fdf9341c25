package parking

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestFindNextAvailable(t *testing.T) {
	store := new(MockStore)
	store.On("NextAvailableSpot", mock.Anything, Car).Return(2, nil)

	a := NewSpotAllocator(store)

	assert.Equal(t, 2, a.FindNextAvailable(context.Background(), Car))
	store.AssertExpectations(t)
}

func TestFindNextAvailableNoVacancy(t *testing.T) {
	store := new(MockStore)
	store.On("NextAvailableSpot", mock.Anything, Bike).Return(0, ErrNoSpotAvailable)

	a := NewSpotAllocator(store)

	assert.Equal(t, NoSpot, a.FindNextAvailable(context.Background(), Bike))
}

func TestFindNextAvailableBackendFailure(t *testing.T) {
	store := new(MockStore)
	store.On("NextAvailableSpot", mock.Anything, Car).
		Return(0, fmt.Errorf("%w: connection refused", ErrPersistence))

	a := NewSpotAllocator(store)

	assert.Equal(t, NoSpot, a.FindNextAvailable(context.Background(), Car))
}

func TestUpdateSpot(t *testing.T) {
	spot := NewSpot(1, Car)
	store := new(MockStore)
	store.On("UpdateSpot", mock.Anything, spot).Return(nil).Once()
	store.On("UpdateSpot", mock.Anything, spot).Return(fmt.Errorf("%w: timeout", ErrPersistence)).Once()

	a := NewSpotAllocator(store)

	assert.True(t, a.UpdateSpot(context.Background(), spot))
	assert.False(t, a.UpdateSpot(context.Background(), spot))
	store.AssertNumberOfCalls(t, "UpdateSpot", 2)
}
