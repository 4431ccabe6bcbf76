package parking

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSingleSpotFacilityFillsUp(t *testing.T) {
	facility, err := NewBuilder().Floors(1).Spots(CategorySmall, 1).AllocationPolicy(NearestPolicy{}).Build()
	require.NoError(t, err)

	gate := NewEntryGate(1)
	facility.AddEntryGate(gate)

	ticket, err := gate.Issue(mustVehicle(t, KindBike, "KA01AB1234"))
	require.NoError(t, err)
	require.NotNil(t, ticket)
	assert.Equal(t, CategorySmall, ticket.Spot().Category())
	assert.False(t, ticket.Spot().IsAvailable())

	second, err := gate.Issue(mustVehicle(t, KindCar, "KA05EF9012"))
	assert.NoError(t, err)
	assert.Nil(t, second)
}

func TestIssueChargingEligibility(t *testing.T) {
	electric := NewSpot(1, 1, CategoryElectric, true)
	small := NewSpot(1, 2, CategorySmall, false)

	// Each facility only offers one of the spots.
	for _, tc := range []struct {
		spot *Spot
		want bool
	}{
		{electric, true},
		{small, false},
	} {
		facility, err := NewFacility(NearestPolicy{}, NewFloor(1, tc.spot))
		require.NoError(t, err)
		gate := NewEntryGate(1)
		facility.AddEntryGate(gate)

		ebike := mustVehicle(t, KindElectricBike, "KA02CD5678")
		require.NoError(t, ebike.SetWantsCharging(true))

		ticket, err := gate.Issue(ebike)
		require.NoError(t, err)
		require.NotNil(t, ticket)
		assert.Equal(t, tc.want, ticket.IsUsingCharging(), "spot %s", tc.spot.Category())
	}
}

func TestIssueWithoutChargingDesire(t *testing.T) {
	facility, err := NewFacility(NearestPolicy{}, NewFloor(1, NewSpot(1, 1, CategoryElectric, true)))
	require.NoError(t, err)
	gate := NewEntryGate(1)
	facility.AddEntryGate(gate)

	ticket, err := gate.Issue(mustVehicle(t, KindElectricBike, "KA02"))
	require.NoError(t, err)
	assert.False(t, ticket.IsUsingCharging())
}

func TestIssueUnboundGate(t *testing.T) {
	gate := NewEntryGate(7)

	ticket, err := gate.Issue(mustVehicle(t, KindCar, "KA01"))
	assert.ErrorIs(t, err, ErrUnboundGate)
	assert.Nil(t, ticket)
}

func TestIssueFullLeavesStateUnchanged(t *testing.T) {
	facility, err := NewFacility(NearestPolicy{}, NewFloor(1, NewSpot(1, 1, CategorySmall, false)))
	require.NoError(t, err)
	gate := NewEntryGate(1)
	facility.AddEntryGate(gate)

	first, err := gate.Issue(mustVehicle(t, KindCar, "KA01"))
	require.NoError(t, err)

	before := facility.Snapshot()
	ticket, err := gate.Issue(mustVehicle(t, KindCar, "KA02"))
	require.NoError(t, err)
	assert.Nil(t, ticket)
	assert.Equal(t, before, facility.Snapshot())

	occupant, _ := first.Spot().Occupant()
	assert.Equal(t, "KA01", occupant.Number())
}

func TestIssueRecordsGateClock(t *testing.T) {
	clock := newFakeClock()
	_, entry, _ := newMall(t, NearestPolicy{}, clock)

	ticket, err := entry.Issue(mustVehicle(t, KindCar, "KA01"))
	require.NoError(t, err)
	assert.Equal(t, clock.Now(), ticket.EntryTime())
}

func TestIssueSurfacesOccupiedSpotFromPolicy(t *testing.T) {
	spot := NewSpot(1, 1, CategorySmall, false)
	require.NoError(t, spot.Occupy(mustVehicle(t, KindCar, "KA01")))

	broken := AllocationFunc(func(*Facility, *Vehicle) (*Spot, bool) { return spot, true })
	facility, err := NewFacility(broken, NewFloor(1, spot))
	require.NoError(t, err)
	gate := NewEntryGate(1)
	facility.AddEntryGate(gate)

	ticket, err := gate.Issue(mustVehicle(t, KindCar, "KA02"))
	assert.ErrorIs(t, err, ErrAlreadyOccupied)
	assert.Nil(t, ticket)
}

func TestNewExitGateRequiresPricing(t *testing.T) {
	_, err := NewExitGate(1, nil)
	assert.ErrorIs(t, err, ErrMissingPricingPolicy)
}

func TestSettleImmediatelyChargesMinimumHour(t *testing.T) {
	clock := newFakeClock()
	_, entry, exit := newMall(t, NearestPolicy{}, clock)

	ticket, err := entry.Issue(mustVehicle(t, KindBike, "KA01AB1234"))
	require.NoError(t, err)

	fee, err := exit.Settle(ticket)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, fee, 1e-9)
	assert.GreaterOrEqual(t, fee, DefaultMinimumFee)
}

func TestEntryExitRoundTrip(t *testing.T) {
	clock := newFakeClock()
	facility, entry, exit := newMall(t, NearestPolicy{}, clock)
	before := facility.AvailableCount()

	car := mustVehicle(t, KindCar, "KA05EF9012")
	ticket, err := entry.Issue(car)
	require.NoError(t, err)

	clock.Advance(90 * time.Minute)

	fee, err := exit.Settle(ticket)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, fee, 1e-9)

	facility.Release(ticket)
	assert.True(t, ticket.Spot().IsAvailable())
	assert.Equal(t, before, facility.AvailableCount())
}

func TestConcurrentEntriesNeverShareASpot(t *testing.T) {
	facility, entry, _ := newMall(t, NearestPolicy{}, newFakeClock())
	second := NewEntryGate(2)
	facility.AddEntryGate(second)

	const vehicles = 60
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		tickets []*Ticket
		full    int
	)
	gates := []*EntryGate{entry, second}

	for i := 0; i < vehicles; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, _ := NewCar(fmt.Sprintf("CAR%03d", i))
			ticket, err := gates[i%2].Issue(v)
			assert.NoError(t, err)

			mu.Lock()
			defer mu.Unlock()
			if ticket == nil {
				full++
				return
			}
			tickets = append(tickets, ticket)
		}(i)
	}
	wg.Wait()

	assert.Len(t, tickets, facility.Capacity())
	assert.Equal(t, vehicles-facility.Capacity(), full)
	assert.Zero(t, facility.AvailableCount())

	spots := make(map[string]string)
	for _, ticket := range tickets {
		if holder, taken := spots[ticket.Spot().ID()]; taken {
			t.Fatalf("spot %s issued to %s and %s", ticket.Spot().ID(), holder, ticket.Vehicle().Number())
		}
		spots[ticket.Spot().ID()] = ticket.Vehicle().Number()

		occupant, ok := ticket.Spot().Occupant()
		require.True(t, ok)
		assert.True(t, occupant.Equal(ticket.Vehicle()))
	}
}

func TestConcurrentEntriesAndReleases(t *testing.T) {
	facility, entry, _ := newMall(t, NearestPolicy{}, newFakeClock())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				v, _ := NewCar(fmt.Sprintf("W%dC%d", worker, j))
				ticket, err := entry.Issue(v)
				if !assert.NoError(t, err) || ticket == nil {
					continue
				}
				facility.Release(ticket)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, facility.Capacity(), facility.AvailableCount())
}
