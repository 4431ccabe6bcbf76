package parking

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	ticketIDTimeLayout = "20060102-150405"
	receiptTimeLayout  = "02-01-2006 15:04:05"
	receiptRule        = "=========================================="
)

// Ticket records one parking transaction. It is never mutated after issue;
// two tickets are the same ticket when their ids match.
type Ticket struct {
	id        string
	vehicle   *Vehicle
	spot      *Spot
	entryTime time.Time
	charging  bool
}

func newTicket(vehicle *Vehicle, spot *Spot, entryTime time.Time, charging bool) *Ticket {
	return &Ticket{
		id:        newTicketID(entryTime),
		vehicle:   vehicle,
		spot:      spot,
		entryTime: entryTime,
		charging:  charging,
	}
}

func newTicketID(at time.Time) string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
	return "TKT-" + at.Format(ticketIDTimeLayout) + "-" + strings.ToUpper(suffix)
}

func (t *Ticket) ID() string {
	return t.id
}

func (t *Ticket) Vehicle() *Vehicle {
	return t.vehicle
}

func (t *Ticket) Spot() *Spot {
	return t.spot
}

func (t *Ticket) EntryTime() time.Time {
	return t.entryTime
}

func (t *Ticket) IsUsingCharging() bool {
	return t.charging
}

func (t *Ticket) Equal(other *Ticket) bool {
	if t == nil || other == nil {
		return t == other
	}
	return t.id == other.id
}

func (t *Ticket) Receipt() string {
	charging := "No charging needed"
	if t.charging {
		charging = "Yes, using charging station"
	}

	var b strings.Builder
	fmt.Fprintln(&b, receiptRule)
	fmt.Fprintln(&b, "           YOUR PARKING RECEIPT")
	fmt.Fprintln(&b, receiptRule)
	fmt.Fprintf(&b, "Reference      : %s\n", t.id)
	fmt.Fprintf(&b, "Vehicle        : %s (%s)\n", t.vehicle.Number(), t.vehicle.Kind())
	fmt.Fprintf(&b, "Spot           : %s (%s)\n", t.spot.ID(), t.spot.Category())
	fmt.Fprintf(&b, "Parked at      : %s\n", t.entryTime.Format(receiptTimeLayout))
	fmt.Fprintf(&b, "Charging       : %s\n", charging)
	fmt.Fprintln(&b, receiptRule)
	fmt.Fprintln(&b, "Keep this safe - you'll need it to leave!")
	b.WriteString(receiptRule)
	return b.String()
}

func (t *Ticket) String() string {
	return t.Receipt()
}
