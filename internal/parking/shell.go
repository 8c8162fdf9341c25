package parking

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/fatih/color"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"parking-system/internal/logging"
	"parking-system/internal/telemetry"
)

// Menu options.
const (
	MenuIncoming = 1
	MenuExiting  = 2
	MenuShutdown = 3
)

const timeLayout = "2006-01-02 15:04:05"

var (
	noticeColor = color.New(color.FgGreen)
	errorColor  = color.New(color.FgRed)
)

type Shell struct {
	lifecycle Lifecycle
	input     *ConsoleReader
	out       io.Writer
	telemetry *telemetry.Provider
}

func NewShell(lifecycle Lifecycle, in io.Reader, out io.Writer, telemetry *telemetry.Provider) *Shell {
	return &Shell{
		lifecycle: lifecycle,
		input:     NewConsoleReader(in),
		out:       out,
		telemetry: telemetry,
	}
}

// Run loops over the menu until the operator shuts down, input ends or ctx
// is cancelled. A failed operation never ends the loop.
func (s *Shell) Run(ctx context.Context) {
	tracer := s.telemetry.Tracer()
	ctx, span := tracer.Start(ctx, "shell.run")
	defer span.End()

	span.AddEvent("shell_started")
	fmt.Fprintln(s.out, "Welcome to Parking System!")

	for ctx.Err() == nil {
		s.printMenu()

		selection, err := s.input.ReadSelection()
		if err != nil {
			if !isEOF(err) {
				logging.Error(ctx, "error reading menu selection", slog.Any("error", err))
			}
			break
		}

		if !s.processSelection(ctx, selection) {
			break
		}
	}

	span.AddEvent("shell_ended")
}

func (s *Shell) printMenu() {
	fmt.Fprintln(s.out, "Please select an option. Simply enter the number to choose an action")
	fmt.Fprintf(s.out, "%d New Vehicle Entering - Allocate Parking Space\n", MenuIncoming)
	fmt.Fprintf(s.out, "%d Vehicle Exiting - Generate Ticket Price\n", MenuExiting)
	fmt.Fprintf(s.out, "%d Shutdown System\n", MenuShutdown)
}

// processSelection reports whether the loop should continue.
func (s *Shell) processSelection(ctx context.Context, selection int) bool {
	ctx, span := s.telemetry.Tracer().Start(ctx, "shell.process_command",
		trace.WithAttributes(attribute.Int("command.selection", selection)))
	defer span.End()

	switch selection {
	case MenuIncoming:
		s.handleIncoming(ctx)
	case MenuExiting:
		s.handleExiting(ctx)
	case MenuShutdown:
		span.AddEvent("shutdown_requested")
		fmt.Fprintln(s.out, "Exiting from the system!")
		return false
	default:
		span.AddEvent("unknown_command")
		fmt.Fprintln(s.out, "Unsupported option. Please enter a number corresponding to the provided menu")
	}
	return true
}

func (s *Shell) handleIncoming(ctx context.Context) {
	ctx, span := s.telemetry.Tracer().Start(ctx, "shell.incoming_vehicle")
	defer span.End()
	defer s.recoverCommand(ctx, span, "Unable to process incoming vehicle")

	result, err := s.lifecycle.ProcessIncomingVehicle(ctx, s.prompting())
	if err != nil {
		s.fail(ctx, span, "Unable to process incoming vehicle", err)
		return
	}

	ticket := result.Ticket
	if result.Recurring {
		noticeColor.Fprintln(s.out, "Welcome back! As a recurring user of our parking lot, you'll benefit from a discount.")
	}
	fmt.Fprintln(s.out, "Generated Ticket and saved in DB")
	fmt.Fprintf(s.out, "Please park your vehicle in spot number: %d\n", ticket.Spot.ID)
	fmt.Fprintf(s.out, "Recorded in-time for vehicle number: %s is: %s\n",
		ticket.VehicleRegNumber, ticket.InTime.Format(timeLayout))
}

func (s *Shell) handleExiting(ctx context.Context) {
	ctx, span := s.telemetry.Tracer().Start(ctx, "shell.exiting_vehicle")
	defer span.End()
	defer s.recoverCommand(ctx, span, "Unable to process exiting vehicle")

	result, err := s.lifecycle.ProcessExitingVehicle(ctx, s.prompting())
	if err != nil {
		s.fail(ctx, span, "Unable to process exiting vehicle", err)
		return
	}

	ticket := result.Ticket
	fmt.Fprintf(s.out, "Please pay the parking fare: %s\n", result.Price.StringFixed(2))
	fmt.Fprintf(s.out, "Recorded out-time for vehicle number: %s is: %s\n",
		ticket.VehicleRegNumber, ticket.OutTime.Format(timeLayout))
}

func (s *Shell) fail(ctx context.Context, span trace.Span, message string, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	logging.Error(ctx, message, slog.Any("error", err))
	errorColor.Fprintln(s.out, message)
}

func (s *Shell) recoverCommand(ctx context.Context, span trace.Span, message string) {
	if r := recover(); r != nil {
		s.fail(ctx, span, message, fmt.Errorf("panic: %v", r))
	}
}

func (s *Shell) prompting() InputReader {
	return &promptingReader{input: s.input, out: s.out}
}

// promptingReader asks the operator before every read.
type promptingReader struct {
	input InputReader
	out   io.Writer
}

func (p *promptingReader) ReadSelection() (int, error) {
	fmt.Fprintln(p.out, "Please select vehicle type from menu")
	fmt.Fprintf(p.out, "%d CAR\n", SelectionCar)
	fmt.Fprintf(p.out, "%d BIKE\n", SelectionBike)
	return p.input.ReadSelection()
}

func (p *promptingReader) ReadRegistration() (string, error) {
	fmt.Fprintln(p.out, "Please type the vehicle registration number and press enter key")
	return p.input.ReadRegistration()
}
