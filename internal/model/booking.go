package model

// Step identifies a stage of the booking wizard.  The customer flow
// moves MOVIE_INFO → SEAT_SELECTION → PAYMENT → CONFIRMATION while
// the admin flow replaces PAYMENT with CUSTOMER_DETAILS and skips the
// payment window entirely.
type Step string

const (
	StepMovieInfo       Step = "MOVIE_INFO"
	StepSeatSelection   Step = "SEAT_SELECTION"
	StepPayment         Step = "PAYMENT"
	StepCustomerDetails Step = "CUSTOMER_DETAILS"
	StepConfirmation    Step = "CONFIRMATION"
)

// BookingStatus tracks the outcome of a booking session.  PENDING is
// the only non-terminal status; the other three are mutually
// exclusive terminal outcomes of the payment step.
type BookingStatus string

const (
	BookingPending BookingStatus = "PENDING"
	BookingSuccess BookingStatus = "SUCCESS"
	BookingFailed  BookingStatus = "FAILED"
	BookingTimeout BookingStatus = "TIMEOUT"
)

// BookingSession is the reservation handle returned by the backend's
// initialize-booking call.  The seats it names are held server-side
// until the session is paid, cancelled, or expires; the client holds
// only this reference and must treat the server expiry as
// authoritative.
//
// Fields:
//  BookingID       – identifier of the reservation on the backend.
//  ShowID          – show the seats were reserved against.
//  SeatNumbers     – echo of the selection at initialization time.
//  AmountDue       – total the backend expects to be paid.
//  ExpirationTime  – server-issued expiry timestamp (RFC 3339).
//  TimeRemainingMS – initial countdown issued by the server.
type BookingSession struct {
	BookingID       uint64   `json:"booking_id"`
	ShowID          uint64   `json:"show_id"`
	SeatNumbers     []string `json:"seat_numbers"`
	AmountDue       float64  `json:"amount_due"`
	ExpirationTime  string   `json:"expiration_time"`
	TimeRemainingMS int64    `json:"time_remaining_ms"`
}
