// Package booking implements the customer and admin booking flows:
// the seat selection model, the pricing calculator, the payment
// countdown and the wizard state machine that drives them.
package booking

import "github.com/iamsuteerth/skyfox-frontend/internal/model"

// Selection holds the ordered seat numbers a user has picked for a
// show.  It enforces the selection policy: occupied seats are
// refused, picking a selected seat deselects it, and once the
// desired count is reached the oldest pick is evicted to make room
// for the new one so a user can correct a choice without
// deselecting first.
type Selection struct {
	limit int
	seats []string
}

// NewSelection returns an empty selection capped at limit seats.
// Callers validate the limit (at least 1, at most the per-booking
// maximum and the show's availability) before constructing.
func NewSelection(limit int) *Selection {
	return &Selection{limit: limit, seats: make([]string, 0, limit)}
}

// Toggle applies one pick to the selection and reports whether the
// selection changed.  Toggling an occupied seat is a no-op even if
// the calling UI failed to disable it.
func (s *Selection) Toggle(seat model.Seat) bool {
	if seat.Occupied {
		return false
	}
	for i, n := range s.seats {
		if n == seat.SeatNumber {
			s.seats = append(s.seats[:i], s.seats[i+1:]...)
			return true
		}
	}
	if len(s.seats) >= s.limit {
		// sliding window: evict the oldest pick, keep insertion order
		s.seats = append(s.seats[1:], seat.SeatNumber)
		return true
	}
	s.seats = append(s.seats, seat.SeatNumber)
	return true
}

// Contains reports whether the seat number is currently selected.
func (s *Selection) Contains(seatNumber string) bool {
	for _, n := range s.seats {
		if n == seatNumber {
			return true
		}
	}
	return false
}

// Len returns the number of selected seats.
func (s *Selection) Len() int { return len(s.seats) }

// Seats returns a copy of the selected seat numbers in pick order.
func (s *Selection) Seats() []string {
	out := make([]string, len(s.seats))
	copy(out, s.seats)
	return out
}
