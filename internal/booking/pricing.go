package booking

import (
	"math"

	"github.com/iamsuteerth/skyfox-frontend/internal/model"
)

// ComputeTotal derives the payable total and the deluxe seat count
// for a selection.  Each selected seat contributes the show's base
// price, plus the deluxe surcharge when its row is a deluxe row.
// The total is recomputed from scratch on every call rather than
// accumulated incrementally, so a refreshed seat map can never leave
// a stale partial sum behind.  The per-seat price reported by the
// backend inside the seat map is intentionally not consulted; the
// base-plus-surcharge formula is the authoritative source for both
// display and submission.
func ComputeTotal(basePrice, deluxeSurcharge float64, selected []string, seatMap model.SeatMap) (total float64, deluxeCount int) {
	for _, seatNumber := range selected {
		if rowOf(seatMap, seatNumber) == model.SeatDeluxe {
			total += basePrice + deluxeSurcharge
			deluxeCount++
			continue
		}
		total += basePrice
	}
	return total, deluxeCount
}

// rowOf returns the type of the row containing the seat number.
// Unknown seats classify as standard.
func rowOf(seatMap model.SeatMap, seatNumber string) model.SeatType {
	for label, seats := range seatMap {
		for _, s := range seats {
			if s.SeatNumber == seatNumber {
				return seatMap.RowType(label)
			}
		}
	}
	return model.SeatStandard
}

// Truncate cuts a price down to two decimal places without rounding,
// matching what the backend expects on submission.  499.999 becomes
// 499.99, not 500.00.
func Truncate(price float64) float64 {
	return math.Floor(price*100) / 100
}
