package parking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNearestPolicyIsDeterministic(t *testing.T) {
	facility, _, _ := newMall(t, NearestPolicy{}, newFakeClock())
	vehicle := mustVehicle(t, KindCar, "KA01")

	first, ok := NearestPolicy{}.FindSpot(facility, vehicle)
	require.True(t, ok)
	assert.Equal(t, "F1-S01", first.ID())

	for i := 0; i < 5; i++ {
		again, ok := NearestPolicy{}.FindSpot(facility, vehicle)
		require.True(t, ok)
		assert.Same(t, first, again)
	}
	assert.True(t, first.IsAvailable(), "finding a spot must not occupy it")

	require.NoError(t, first.Occupy(vehicle))

	next, ok := NearestPolicy{}.FindSpot(facility, mustVehicle(t, KindCar, "KA02"))
	require.True(t, ok)
	assert.Equal(t, "F1-S02", next.ID())
}

func TestNearestPolicyIgnoresCategory(t *testing.T) {
	facility, err := NewBuilder().Floors(1).Spots(CategorySmall, 1).AllocationPolicy(NearestPolicy{}).Build()
	require.NoError(t, err)

	spot, ok := NearestPolicy{}.FindSpot(facility, mustVehicle(t, KindBus, "BUS1"))
	require.True(t, ok)
	assert.Equal(t, CategorySmall, spot.Category())
}

func TestNearestPolicyFull(t *testing.T) {
	facility, err := NewBuilder().Floors(1).Spots(CategorySmall, 1).AllocationPolicy(NearestPolicy{}).Build()
	require.NoError(t, err)

	spot, _ := NearestPolicy{}.FindSpot(facility, mustVehicle(t, KindBike, "B1"))
	require.NoError(t, spot.Occupy(mustVehicle(t, KindBike, "B1")))

	_, ok := NearestPolicy{}.FindSpot(facility, mustVehicle(t, KindBike, "B2"))
	assert.False(t, ok)
}

func TestCategoryPolicy(t *testing.T) {
	policy := DefaultCategoryPolicy()
	facility, _, _ := newMall(t, policy, newFakeClock())

	bus, ok := policy.FindSpot(facility, mustVehicle(t, KindBus, "BUS1"))
	require.True(t, ok)
	assert.Equal(t, "F1-S09", bus.ID())
	assert.Equal(t, CategoryLarge, bus.Category())

	car, ok := policy.FindSpot(facility, mustVehicle(t, KindCar, "CAR1"))
	require.True(t, ok)
	assert.Equal(t, CategoryMedium, car.Category())

	bike, ok := policy.FindSpot(facility, mustVehicle(t, KindBike, "BIKE1"))
	require.True(t, ok)
	assert.Equal(t, "F1-S01", bike.ID())

	ecar := mustVehicle(t, KindElectricCar, "ECAR1")
	require.NoError(t, ecar.SetWantsCharging(true))
	charging, ok := policy.FindSpot(facility, ecar)
	require.True(t, ok)
	assert.Equal(t, CategoryElectric, charging.Category())
	assert.Equal(t, "F1-S11", charging.ID())

	require.NoError(t, ecar.SetWantsCharging(false))
	plain, ok := policy.FindSpot(facility, ecar)
	require.True(t, ok)
	assert.Equal(t, CategoryMedium, plain.Category())
}

func TestCategoryPolicyNoFit(t *testing.T) {
	policy := DefaultCategoryPolicy()
	facility, err := NewBuilder().Floors(2).Spots(CategorySmall, 3).AllocationPolicy(policy).Build()
	require.NoError(t, err)

	_, ok := policy.FindSpot(facility, mustVehicle(t, KindBus, "BUS1"))
	assert.False(t, ok)
}

func TestBalancedPolicy(t *testing.T) {
	facility, entry, _ := newMall(t, BalancedPolicy{}, newFakeClock())

	first, err := entry.Issue(mustVehicle(t, KindCar, "CAR1"))
	require.NoError(t, err)
	assert.Equal(t, "F1-S01", first.Spot().ID())

	second, err := entry.Issue(mustVehicle(t, KindCar, "CAR2"))
	require.NoError(t, err)
	assert.Equal(t, "F2-S01", second.Spot().ID())

	third, err := entry.Issue(mustVehicle(t, KindCar, "CAR3"))
	require.NoError(t, err)
	assert.Equal(t, "F1-S02", third.Spot().ID())

	assert.Equal(t, 21, facility.AvailableCount())
}

func TestAllocationFunc(t *testing.T) {
	var called bool
	policy := AllocationFunc(func(f *Facility, v *Vehicle) (*Spot, bool) {
		called = true
		return nil, false
	})

	facility, err := NewFacility(policy, NewFloor(1, NewSpot(1, 1, CategorySmall, false)))
	require.NoError(t, err)

	gate := NewEntryGate(1)
	facility.AddEntryGate(gate)

	ticket, err := gate.Issue(mustVehicle(t, KindCar, "KA01"))
	assert.NoError(t, err)
	assert.Nil(t, ticket)
	assert.True(t, called)
}

func TestAllocationPolicyByName(t *testing.T) {
	for name, want := range map[string]AllocationPolicy{
		"":         NearestPolicy{},
		"nearest":  NearestPolicy{},
		"BALANCED": BalancedPolicy{},
	} {
		got, err := AllocationPolicyByName(name)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	got, err := AllocationPolicyByName("category")
	require.NoError(t, err)
	assert.IsType(t, CategoryPolicy{}, got)

	_, err = AllocationPolicyByName("random")
	assert.ErrorIs(t, err, ErrUnknownPolicy)
}
