package parking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"parking-facility/internal/logging"
)

type EntryRequest struct {
	Kind          Kind
	Number        string
	WantsCharging bool
	// GateID selects the entry gate; zero uses the first gate.
	GateID int
}

type Settlement struct {
	Ticket        *Ticket
	Fee           float64
	ExitTime      time.Time
	BillableHours int64
	GateID        int
}

// InstrumentedFacility runs the entry and exit protocols against a facility,
// keeps the registry of open tickets and records traces, metrics and events
// for every operation.
type InstrumentedFacility struct {
	*Facility
	telemetry *TelemetryProvider
	events    EventSink

	mu       sync.Mutex
	tickets  map[string]*Ticket
	vehicles map[string]*Ticket

	entryOperations   metric.Int64Counter
	exitOperations    metric.Int64Counter
	occupancyGauge    metric.Int64UpDownCounter
	totalSpotsGauge   metric.Int64UpDownCounter
	revenueCounter    metric.Float64Counter
	operationDuration metric.Float64Histogram
}

func NewInstrumentedFacility(facility *Facility, telemetry *TelemetryProvider, events EventSink) (*InstrumentedFacility, error) {
	if len(facility.EntryGates()) == 0 || len(facility.ExitGates()) == 0 {
		return nil, fmt.Errorf("%w: facility needs at least one entry and one exit gate", ErrInvalidLayout)
	}

	meter := telemetry.Meter()

	entryOperations, err := meter.Int64Counter("parking_entries_total",
		metric.WithDescription("Total number of entry attempts"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	exitOperations, err := meter.Int64Counter("parking_exits_total",
		metric.WithDescription("Total number of exit attempts"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	occupancyGauge, err := meter.Int64UpDownCounter("parking_facility_occupancy",
		metric.WithDescription("Current number of occupied spots"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	totalSpotsGauge, err := meter.Int64UpDownCounter("parking_facility_total_spots",
		metric.WithDescription("Total number of spots in the facility"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	revenueCounter, err := meter.Float64Counter("parking_revenue_total",
		metric.WithDescription("Fees settled at exit gates"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	operationDuration, err := meter.Float64Histogram("parking_operation_duration_seconds",
		metric.WithDescription("Duration of facility operations"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	if events == nil {
		events = EventSinkFunc(func(Event) {})
	}

	ifa := &InstrumentedFacility{
		Facility:          facility,
		telemetry:         telemetry,
		events:            events,
		tickets:           make(map[string]*Ticket),
		vehicles:          make(map[string]*Ticket),
		entryOperations:   entryOperations,
		exitOperations:    exitOperations,
		occupancyGauge:    occupancyGauge,
		totalSpotsGauge:   totalSpotsGauge,
		revenueCounter:    revenueCounter,
		operationDuration: operationDuration,
	}

	totalSpotsGauge.Add(context.Background(), int64(facility.Capacity()))

	return ifa, nil
}

func (f *InstrumentedFacility) entryGate(id int) (*EntryGate, error) {
	if id == 0 {
		return f.EntryGates()[0], nil
	}
	gate, ok := f.EntryGate(id)
	if !ok {
		return nil, fmt.Errorf("%w: entry gate %d", ErrGateNotFound, id)
	}
	return gate, nil
}

func (f *InstrumentedFacility) exitGate(id int) (*ExitGate, error) {
	if id == 0 {
		return f.ExitGates()[0], nil
	}
	gate, ok := f.ExitGate(id)
	if !ok {
		return nil, fmt.Errorf("%w: exit gate %d", ErrGateNotFound, id)
	}
	return gate, nil
}

func (f *InstrumentedFacility) Enter(ctx context.Context, req EntryRequest) (*Ticket, error) {
	ctx, span := f.telemetry.Tracer().Start(ctx, "facility.enter",
		trace.WithAttributes(
			attribute.String("vehicle.number", req.Number),
			attribute.String("vehicle.kind", string(req.Kind)),
			attribute.Bool("vehicle.wants_charging", req.WantsCharging),
			attribute.Int("gate.id", req.GateID),
		))
	defer span.End()

	start := time.Now()
	ticket, err := f.enter(span, req)
	duration := time.Since(start).Seconds()

	labels := []attribute.KeyValue{
		attribute.String("operation", "enter"),
		attribute.String("vehicle_kind", string(req.Kind)),
	}

	switch {
	case err == nil:
		labels = append(labels, attribute.String("status", "success"))
		span.SetAttributes(
			attribute.String("ticket.id", ticket.ID()),
			attribute.String("spot.id", ticket.Spot().ID()),
			attribute.Bool("ticket.charging", ticket.IsUsingCharging()),
		)
		span.AddEvent("spot_allocated", trace.WithAttributes(
			attribute.String("spot_id", ticket.Spot().ID()),
		))
		f.occupancyGauge.Add(ctx, 1)
		logging.Info(ctx, "vehicle entered",
			"ticket_id", ticket.ID(),
			"vehicle_number", ticket.Vehicle().Number(),
			"spot_id", ticket.Spot().ID(),
			"charging", ticket.IsUsingCharging(),
		)
		f.events.Publish(Event{
			Type:          EventVehicleEntered,
			TicketID:      ticket.ID(),
			VehicleNumber: ticket.Vehicle().Number(),
			VehicleKind:   ticket.Vehicle().Kind(),
			SpotID:        ticket.Spot().ID(),
			Charging:      ticket.IsUsingCharging(),
			Available:     f.AvailableCount(),
			At:            ticket.EntryTime(),
		})
	case errors.Is(err, ErrFacilityFull):
		labels = append(labels, attribute.String("status", "full"))
		span.AddEvent("facility_full")
		logging.Warn(ctx, "no spot available", "vehicle_number", req.Number, "vehicle_kind", req.Kind)
		f.events.Publish(Event{
			Type:          EventFacilityFull,
			VehicleNumber: req.Number,
			VehicleKind:   req.Kind,
			At:            time.Now(),
		})
	default:
		labels = append(labels, attribute.String("status", "failed"))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logging.Error(ctx, "entry failed", "vehicle_number", req.Number, "error", err)
	}

	f.entryOperations.Add(ctx, 1, metric.WithAttributes(labels...))
	f.operationDuration.Record(ctx, duration, metric.WithAttributes(labels...))

	return ticket, err
}

func (f *InstrumentedFacility) enter(span trace.Span, req EntryRequest) (*Ticket, error) {
	gate, err := f.entryGate(req.GateID)
	if err != nil {
		return nil, err
	}

	vehicle, err := NewVehicle(req.Kind, req.Number)
	if err != nil {
		return nil, err
	}
	if req.WantsCharging {
		if err := vehicle.SetWantsCharging(true); err != nil {
			return nil, err
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if existing, ok := f.vehicles[vehicle.Number()]; ok {
		return nil, fmt.Errorf("%w: %s holds ticket %s", ErrVehicleAlreadyParked, vehicle.Number(), existing.ID())
	}

	span.AddEvent("finding_available_spot")

	ticket, err := gate.Issue(vehicle)
	if err != nil {
		return nil, err
	}
	if ticket == nil {
		return nil, ErrFacilityFull
	}

	f.tickets[ticket.ID()] = ticket
	f.vehicles[vehicle.Number()] = ticket

	return ticket, nil
}

// Exit settles the ticket at the gate and only then vacates the spot.
func (f *InstrumentedFacility) Exit(ctx context.Context, ticketID string, gateID int) (*Settlement, error) {
	ctx, span := f.telemetry.Tracer().Start(ctx, "facility.exit",
		trace.WithAttributes(
			attribute.String("ticket.id", ticketID),
			attribute.Int("gate.id", gateID),
		))
	defer span.End()

	start := time.Now()
	settlement, err := f.exit(span, ticketID, gateID)
	duration := time.Since(start).Seconds()

	labels := []attribute.KeyValue{
		attribute.String("operation", "exit"),
	}

	if err != nil {
		labels = append(labels, attribute.String("status", "failed"))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logging.Error(ctx, "exit failed", "ticket_id", ticketID, "error", err)
	} else {
		ticket := settlement.Ticket
		labels = append(labels,
			attribute.String("status", "success"),
			attribute.String("vehicle_kind", string(ticket.Vehicle().Kind())),
		)
		span.SetAttributes(
			attribute.Float64("settlement.fee", settlement.Fee),
			attribute.Int64("settlement.billable_hours", settlement.BillableHours),
			attribute.String("spot.id", ticket.Spot().ID()),
		)
		span.AddEvent("spot_released")
		f.occupancyGauge.Add(ctx, -1)
		f.revenueCounter.Add(ctx, settlement.Fee, metric.WithAttributes(
			attribute.String("vehicle_kind", string(ticket.Vehicle().Kind())),
			attribute.Bool("charging", ticket.IsUsingCharging()),
		))
		logging.Info(ctx, "vehicle exited",
			"ticket_id", ticket.ID(),
			"vehicle_number", ticket.Vehicle().Number(),
			"fee", settlement.Fee,
			"billable_hours", settlement.BillableHours,
		)
		f.events.Publish(Event{
			Type:          EventVehicleExited,
			TicketID:      ticket.ID(),
			VehicleNumber: ticket.Vehicle().Number(),
			VehicleKind:   ticket.Vehicle().Kind(),
			SpotID:        ticket.Spot().ID(),
			Charging:      ticket.IsUsingCharging(),
			Fee:           settlement.Fee,
			Available:     f.AvailableCount(),
			At:            settlement.ExitTime,
		})
	}

	f.exitOperations.Add(ctx, 1, metric.WithAttributes(labels...))
	f.operationDuration.Record(ctx, duration, metric.WithAttributes(labels...))

	return settlement, err
}

func (f *InstrumentedFacility) exit(span trace.Span, ticketID string, gateID int) (*Settlement, error) {
	gate, err := f.exitGate(gateID)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	ticket, ok := f.tickets[strings.TrimSpace(ticketID)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTicketNotFound, ticketID)
	}

	span.AddEvent("settling_ticket")

	now := gate.Now()
	fee, err := gate.SettleAt(ticket, now)
	if err != nil {
		return nil, err
	}

	f.Release(ticket)
	delete(f.tickets, ticket.ID())
	delete(f.vehicles, ticket.Vehicle().Number())

	return &Settlement{
		Ticket:        ticket,
		Fee:           fee,
		ExitTime:      now,
		BillableHours: BillableHours(now.Sub(ticket.EntryTime())),
		GateID:        gate.ID(),
	}, nil
}

func (f *InstrumentedFacility) Status(ctx context.Context) FacilitySnapshot {
	ctx, span := f.telemetry.Tracer().Start(ctx, "facility.status")
	defer span.End()

	start := time.Now()
	snap := f.Snapshot()

	span.SetAttributes(
		attribute.Int("facility.capacity", snap.Capacity),
		attribute.Int("facility.occupied", snap.Occupied),
	)

	f.operationDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(
		attribute.String("operation", "status"),
		attribute.String("status", "success"),
	))

	return snap
}

func (f *InstrumentedFacility) Ticket(ctx context.Context, id string) (*Ticket, error) {
	_, span := f.telemetry.Tracer().Start(ctx, "facility.get_ticket",
		trace.WithAttributes(attribute.String("ticket.id", id)))
	defer span.End()

	f.mu.Lock()
	defer f.mu.Unlock()

	ticket, ok := f.tickets[strings.TrimSpace(id)]
	if !ok {
		span.AddEvent("ticket_not_found")
		return nil, fmt.Errorf("%w: %s", ErrTicketNotFound, id)
	}
	return ticket, nil
}

func (f *InstrumentedFacility) FindByVehicle(ctx context.Context, number string) (*Ticket, error) {
	_, span := f.telemetry.Tracer().Start(ctx, "facility.find_by_vehicle",
		trace.WithAttributes(attribute.String("vehicle.number", number)))
	defer span.End()

	normalized := strings.ToUpper(strings.TrimSpace(number))
	if normalized == "" {
		return nil, ErrInvalidVehicleNumber
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	ticket, ok := f.vehicles[normalized]
	if !ok {
		span.AddEvent("vehicle_not_found")
		return nil, fmt.Errorf("%w: no open ticket for %s", ErrTicketNotFound, normalized)
	}
	span.AddEvent("vehicle_found", trace.WithAttributes(
		attribute.String("spot_id", ticket.Spot().ID()),
	))
	return ticket, nil
}

// OpenTickets returns the number of tickets issued but not yet settled.
func (f *InstrumentedFacility) OpenTickets() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tickets)
}
