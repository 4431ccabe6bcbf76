package parking

import "time"

type EventType string

const (
	EventVehicleEntered EventType = "vehicle_entered"
	EventVehicleExited  EventType = "vehicle_exited"
	EventFacilityFull   EventType = "facility_full"
)

type Event struct {
	Type          EventType `json:"type"`
	TicketID      string    `json:"ticket_id,omitempty"`
	VehicleNumber string    `json:"vehicle_number,omitempty"`
	VehicleKind   Kind      `json:"vehicle_kind,omitempty"`
	SpotID        string    `json:"spot_id,omitempty"`
	Charging      bool      `json:"charging,omitempty"`
	Fee           float64   `json:"fee,omitempty"`
	Available     int       `json:"available"`
	At            time.Time `json:"at"`
}

// EventSink receives facility events. Publish must not block.
type EventSink interface {
	Publish(event Event)
}

type EventSinkFunc func(event Event)

func (fn EventSinkFunc) Publish(event Event) {
	fn(event)
}
