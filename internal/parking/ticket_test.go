package parking

import (
	"testing"
	"time"
)

func TestTicketLifecycle(t *testing.T) {
	in := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	ticket := NewTicket(NewSpot(1, Car), "ABCDEF", in)

	if !ticket.IsOpen() {
		t.Error("Expected new ticket to be open")
	}
	if ticket.Price.Valid {
		t.Error("Expected new ticket to have no price")
	}
	if ticket.Duration() != 0 {
		t.Errorf("Expected zero duration for open ticket, got %v", ticket.Duration())
	}

	ticket.Close(in.Add(90 * time.Minute))

	if ticket.IsOpen() {
		t.Error("Expected ticket to be closed")
	}
	if ticket.Duration() != 90*time.Minute {
		t.Errorf("Expected duration 90m, got %v", ticket.Duration())
	}
}
