package parking

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const shellUsage = `Commands:
  enter <kind> <number> [charge] [gate]
  exit <ticket_id> [gate]
  status
  ticket <ticket_id>
  find <number>
  help`

type Shell struct {
	facility  *InstrumentedFacility
	telemetry *TelemetryProvider
	scanner   *bufio.Scanner
	out       io.Writer
}

func NewShell(facility *InstrumentedFacility, telemetry *TelemetryProvider, in io.Reader, out io.Writer) *Shell {
	return &Shell{
		facility:  facility,
		telemetry: telemetry,
		scanner:   bufio.NewScanner(in),
		out:       out,
	}
}

func (s *Shell) Run(ctx context.Context) {
	tracer := s.telemetry.Tracer()
	ctx, span := tracer.Start(ctx, "shell.run")
	defer span.End()

	span.AddEvent("shell_started")

	for {
		if ctx.Err() != nil || !s.scanner.Scan() {
			break
		}

		input := strings.TrimSpace(s.scanner.Text())
		if input == "" {
			continue
		}

		cmdCtx, cmdSpan := tracer.Start(ctx, "shell.process_command",
			trace.WithAttributes(attribute.String("command.input", input)))

		s.processCommand(cmdCtx, input)
		cmdSpan.End()
	}

	span.AddEvent("shell_ended")
}

func (s *Shell) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

func (s *Shell) processCommand(ctx context.Context, input string) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return
	}

	command := strings.ToLower(parts[0])
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("command.name", command))

	switch command {
	case "enter", "park":
		s.handleEnter(ctx, parts)
	case "exit", "leave":
		s.handleExit(ctx, parts)
	case "status":
		s.handleStatus(ctx)
	case "ticket":
		s.handleTicket(ctx, parts)
	case "find":
		s.handleFind(ctx, parts)
	case "help":
		s.printf("%s\n", shellUsage)
	default:
		trace.SpanFromContext(ctx).AddEvent("unknown_command")
		s.printf("Unknown command: %s\n", command)
	}
}

func (s *Shell) handleEnter(ctx context.Context, parts []string) {
	if len(parts) < 3 || len(parts) > 5 {
		s.printf("Usage: enter <kind> <number> [charge] [gate]\n")
		return
	}

	kind, err := ParseKind(parts[1])
	if err != nil {
		s.printf("Unknown vehicle kind: %s\n", parts[1])
		return
	}

	req := EntryRequest{Kind: kind, Number: parts[2]}
	for _, arg := range parts[3:] {
		if strings.EqualFold(arg, "charge") {
			req.WantsCharging = true
			continue
		}
		gate, err := strconv.Atoi(arg)
		if err != nil || gate <= 0 {
			s.printf("Invalid gate: %s\n", arg)
			return
		}
		req.GateID = gate
	}

	ticket, err := s.facility.Enter(ctx, req)
	switch {
	case errors.Is(err, ErrFacilityFull):
		s.printf("Sorry, facility is full\n")
	case err != nil:
		s.printf("Error: %s\n", err.Error())
	default:
		s.printf("%s\n", ticket.Receipt())
	}
}

func (s *Shell) handleExit(ctx context.Context, parts []string) {
	if len(parts) < 2 || len(parts) > 3 {
		s.printf("Usage: exit <ticket_id> [gate]\n")
		return
	}

	gate := 0
	if len(parts) == 3 {
		g, err := strconv.Atoi(parts[2])
		if err != nil || g <= 0 {
			s.printf("Invalid gate: %s\n", parts[2])
			return
		}
		gate = g
	}

	settlement, err := s.facility.Exit(ctx, parts[1], gate)
	if err != nil {
		s.printf("Error: %s\n", err.Error())
		return
	}

	ticket := settlement.Ticket
	s.printf("Vehicle %s left spot %s\n", ticket.Vehicle().Number(), ticket.Spot().ID())
	s.printf("Billable hours: %d\n", settlement.BillableHours)
	s.printf("Parking fee: $%.2f\n", settlement.Fee)
}

func (s *Shell) handleStatus(ctx context.Context) {
	snap := s.facility.Status(ctx)

	s.printf("Capacity: %d  Occupied: %d  Available: %d\n", snap.Capacity, snap.Occupied, snap.Available)
	for _, category := range Categories() {
		if count, ok := snap.Categories[category]; ok {
			s.printf("  %-9s %d/%d free\n", category, count.Available, count.Capacity)
		}
	}

	if snap.Occupied == 0 {
		s.printf("Facility is empty\n")
		return
	}

	s.printf("Spot\tCategory\tVehicle\tKind\n")
	for _, floor := range snap.Floors {
		for _, spot := range floor.Spots {
			if spot.Occupied {
				s.printf("%s\t%s\t%s\t%s\n", spot.ID, spot.Category, spot.VehicleNumber, spot.VehicleKind)
			}
		}
	}
}

func (s *Shell) handleTicket(ctx context.Context, parts []string) {
	if len(parts) != 2 {
		s.printf("Usage: ticket <ticket_id>\n")
		return
	}

	ticket, err := s.facility.Ticket(ctx, parts[1])
	if err != nil {
		s.printf("Not found\n")
		return
	}
	s.printf("%s\n", ticket.Receipt())
}

func (s *Shell) handleFind(ctx context.Context, parts []string) {
	if len(parts) != 2 {
		s.printf("Usage: find <number>\n")
		return
	}

	ticket, err := s.facility.FindByVehicle(ctx, parts[1])
	if err != nil {
		s.printf("Not found\n")
		return
	}
	s.printf("%s %s\n", ticket.Spot().ID(), ticket.ID())
}
