package parking

import (
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func mustVehicle(t *testing.T, kind Kind, number string) *Vehicle {
	t.Helper()
	v, err := NewVehicle(kind, number)
	if err != nil {
		t.Fatalf("NewVehicle(%s, %q): %v", kind, number, err)
	}
	return v
}

// newMall builds two floors of SMALL 5, MEDIUM 3, LARGE 2, ELECTRIC 2 with one
// entry and one exit gate on the given clock.
func newMall(t *testing.T, policy AllocationPolicy, clock *fakeClock) (*Facility, *EntryGate, *ExitGate) {
	t.Helper()

	facility, err := NewBuilder().
		Floors(2).
		Spots(CategorySmall, 5).
		Spots(CategoryMedium, 3).
		Spots(CategoryLarge, 2).
		Spots(CategoryElectric, 2).
		AllocationPolicy(policy).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	entry := NewEntryGate(1, WithClock(clock.Now))
	exit, err := NewExitGate(1, DefaultHourlyPricing(), WithClock(clock.Now))
	if err != nil {
		t.Fatalf("NewExitGate: %v", err)
	}
	facility.AddEntryGate(entry)
	facility.AddExitGate(exit)

	return facility, entry, exit
}
