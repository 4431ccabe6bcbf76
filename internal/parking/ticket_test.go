package parking

import (
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ticketIDPattern = regexp.MustCompile(`^TKT-\d{8}-\d{6}-[0-9A-F]{12}$`)

func TestTicketIDFormat(t *testing.T) {
	clock := newFakeClock()
	_, entry, _ := newMall(t, NearestPolicy{}, clock)

	ticket, err := entry.Issue(mustVehicle(t, KindCar, "KA01"))
	require.NoError(t, err)

	assert.Regexp(t, ticketIDPattern, ticket.ID())
	assert.Contains(t, ticket.ID(), "TKT-20261019-093000-")
}

func TestTicketIDsAreUnique(t *testing.T) {
	at := time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)
	spot := NewSpot(1, 1, CategorySmall, false)

	const n = 5000
	seen := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		ticket := newTicket(mustVehicle(t, KindCar, fmt.Sprintf("KA%04d", i)), spot, at, false)
		require.False(t, seen[ticket.ID()], "duplicate ticket id %s", ticket.ID())
		seen[ticket.ID()] = true
	}
}

func TestTicketEquality(t *testing.T) {
	at := time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)
	spot := NewSpot(1, 1, CategorySmall, false)
	vehicle := mustVehicle(t, KindCar, "KA01")

	a := newTicket(vehicle, spot, at, false)
	b := newTicket(vehicle, spot, at, false)
	copyOfA := *a

	assert.True(t, a.Equal(&copyOfA))
	assert.False(t, a.Equal(b))
	assert.False(t, a.Equal(nil))
}

func TestTicketReceipt(t *testing.T) {
	at := time.Date(2026, 10, 19, 9, 30, 5, 0, time.UTC)
	spot := NewSpot(2, 11, CategoryElectric, true)
	vehicle := mustVehicle(t, KindElectricBike, "ka02cd5678")

	receipt := newTicket(vehicle, spot, at, true).Receipt()

	assert.Contains(t, receipt, "YOUR PARKING RECEIPT")
	assert.Contains(t, receipt, "Reference      : TKT-20261019-093005-")
	assert.Contains(t, receipt, "Vehicle        : KA02CD5678 (ELECTRIC_BIKE)")
	assert.Contains(t, receipt, "Spot           : F2-S11 (ELECTRIC)")
	assert.Contains(t, receipt, "Parked at      : 19-10-2026 09:30:05")
	assert.Contains(t, receipt, "Charging       : Yes, using charging station")

	plain := newTicket(mustVehicle(t, KindCar, "KA01"), spot, at, false)
	assert.Contains(t, plain.String(), "Charging       : No charging needed")
}

func TestTicketChargingFlagIsFixedAtIssue(t *testing.T) {
	facility, err := NewFacility(NearestPolicy{}, NewFloor(1, NewSpot(1, 1, CategoryElectric, true)))
	require.NoError(t, err)
	gate := NewEntryGate(1)
	facility.AddEntryGate(gate)

	ebike := mustVehicle(t, KindElectricBike, "KA02")
	require.NoError(t, ebike.SetWantsCharging(true))

	ticket, err := gate.Issue(ebike)
	require.NoError(t, err)

	require.NoError(t, ebike.SetWantsCharging(false))
	assert.True(t, ticket.IsUsingCharging())
}
