// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingConfirmedEvent is published when a booking reaches its
// SUCCESS confirmation.  It carries enough context for downstream
// consumers to log or notify without calling the backend again.
type BookingConfirmedEvent struct {
	BookingID   uint64   `json:"booking_id"`
	ShowID      uint64   `json:"show_id"`
	MovieTitle  string   `json:"movie_title"`
	ShowDate    string   `json:"show_date"`
	SlotName    string   `json:"slot_name"`
	SeatNumbers []string `json:"seats"`
	AmountPaid  float64  `json:"amount_paid"`
	Channel     string   `json:"channel"` // CUSTOMER or ADMIN
	ConfirmedAt string   `json:"confirmed_at"`
}
