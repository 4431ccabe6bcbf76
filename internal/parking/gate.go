package parking

import (
	"sync"
	"time"
)

type Clock func() time.Time

type GateOption func(*gateOptions)

type gateOptions struct {
	clock Clock
}

// WithClock replaces time.Now as the gate's source of the current time.
func WithClock(clock Clock) GateOption {
	return func(o *gateOptions) {
		if clock != nil {
			o.clock = clock
		}
	}
}

func applyGateOptions(opts []GateOption) gateOptions {
	o := gateOptions{clock: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

type EntryGate struct {
	id    int
	clock Clock

	mu       sync.RWMutex
	facility *Facility
}

// NewEntryGate returns an unbound gate; Facility.AddEntryGate binds it.
func NewEntryGate(id int, opts ...GateOption) *EntryGate {
	o := applyGateOptions(opts)
	return &EntryGate{
		id:    id,
		clock: o.clock,
	}
}

func (g *EntryGate) ID() int {
	return g.id
}

func (g *EntryGate) bind(facility *Facility) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.facility = facility
}

func (g *EntryGate) Facility() *Facility {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.facility
}

// Issue allocates a spot for the vehicle, occupies it and returns the ticket.
// A nil ticket with a nil error means the facility has no spot for the
// vehicle; callers decide whether to reject, queue or redirect it.
func (g *EntryGate) Issue(vehicle *Vehicle) (*Ticket, error) {
	facility := g.Facility()
	if facility == nil {
		return nil, ErrUnboundGate
	}

	facility.mu.Lock()
	defer facility.mu.Unlock()

	spot, ok := facility.policy.FindSpot(facility, vehicle)
	if !ok {
		return nil, nil
	}

	charging := vehicle.WantsCharging() && spot.HasCharging()

	if err := spot.Occupy(vehicle); err != nil {
		return nil, err
	}

	return newTicket(vehicle, spot, g.clock(), charging), nil
}

type ExitGate struct {
	id      int
	clock   Clock
	pricing PricingPolicy
}

func NewExitGate(id int, pricing PricingPolicy, opts ...GateOption) (*ExitGate, error) {
	if pricing == nil {
		return nil, ErrMissingPricingPolicy
	}

	o := applyGateOptions(opts)
	return &ExitGate{
		id:      id,
		clock:   o.clock,
		pricing: pricing,
	}, nil
}

func (g *ExitGate) ID() int {
	return g.id
}

func (g *ExitGate) Pricing() PricingPolicy {
	return g.pricing
}

// Settle computes the fee owed for the ticket at the gate's current time. It
// does not vacate the spot; see Facility.Release.
func (g *ExitGate) Settle(ticket *Ticket) (float64, error) {
	return g.SettleAt(ticket, g.clock())
}

func (g *ExitGate) SettleAt(ticket *Ticket, now time.Time) (float64, error) {
	return g.pricing.Calculate(ticket, now)
}

func (g *ExitGate) Now() time.Time {
	return g.clock()
}
