package model

import "sort"

// SeatType enumerates the categories a seat can have.  Rows are
// homogeneous: every seat in a row shares the type of the first
// seat, an invariant upheld by the backend seat map endpoint.
type SeatType string

const (
	SeatStandard SeatType = "Standard" // regular seat priced at the show's base cost
	SeatDeluxe   SeatType = "Deluxe"   // premium seat priced at base cost plus the deluxe surcharge
)

// Seat describes one seat inside a show's seating chart.  Seats are
// fetched fresh from the backend every time a booking dialog opens
// and are never mutated locally; the Occupied flag reflects the
// server snapshot and other users' bookings are not applied
// optimistically on top of it.
//
// Fields:
//  SeatNumber – row label plus column ("A1", "D10"); unique per show.
//  Column     – 1-based column position within the row.
//  Type       – Standard or Deluxe.
//  Occupied   – whether the seat is already booked in the snapshot.
//  Price      – informational backend price; the pricing calculator
//               derives the authoritative amount from the show's base
//               cost and the deluxe surcharge instead.
type Seat struct {
	SeatNumber string   `json:"seat_number"`
	Column     uint32   `json:"column"`
	Type       SeatType `json:"type"`
	Occupied   bool     `json:"occupied"`
	Price      float64  `json:"price"`
}

// SeatMap maps a row label to the ordered seats of that row.
type SeatMap map[string][]Seat

// RowType classifies a row by the type of its first seat.  Rows are
// homogeneous so inspecting the first seat is sufficient; per-seat
// revalidation is deliberately skipped.  Unknown or empty rows
// classify as Standard.
func (m SeatMap) RowType(label string) SeatType {
	seats, ok := m[label]
	if !ok || len(seats) == 0 {
		return SeatStandard
	}
	return seats[0].Type
}

// Find returns the seat with the given seat number, searching every
// row of the map.
func (m SeatMap) Find(seatNumber string) (Seat, bool) {
	for _, seats := range m {
		for _, s := range seats {
			if s.SeatNumber == seatNumber {
				return s, true
			}
		}
	}
	return Seat{}, false
}

// StandardRows returns the sorted labels of all standard rows.
func (m SeatMap) StandardRows() []string { return m.rowsOfType(SeatStandard) }

// DeluxeRows returns the sorted labels of all deluxe rows.
func (m SeatMap) DeluxeRows() []string { return m.rowsOfType(SeatDeluxe) }

func (m SeatMap) rowsOfType(t SeatType) []string {
	labels := make([]string, 0, len(m))
	for label := range m {
		if m.RowType(label) == t {
			labels = append(labels, label)
		}
	}
	sort.Strings(labels)
	return labels
}
