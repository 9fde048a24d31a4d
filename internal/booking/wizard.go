package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/iamsuteerth/skyfox-frontend/internal/backend"
	"github.com/iamsuteerth/skyfox-frontend/internal/model"
	"github.com/iamsuteerth/skyfox-frontend/internal/notify"
	"github.com/iamsuteerth/skyfox-frontend/internal/queue"
)

// Config carries the constants governing a booking flow.
type Config struct {
	MaxSeats         int     // hard cap of seats per booking
	DeluxeSurcharge  float64 // rupees added on top of base cost per deluxe seat
	PaymentWindowSec int     // countdown fallback when the server omits time_remaining_ms
}

// DefaultConfig mirrors the product constants: at most 10 seats per
// booking, a 150 rupee deluxe surcharge and a 295 second payment
// window.
func DefaultConfig() Config {
	return Config{MaxSeats: 10, DeluxeSurcharge: 150, PaymentWindowSec: 295}
}

// ConfirmationPublisher receives the confirmed-booking event.  The
// RabbitMQ publisher satisfies it in production; a nil publisher
// disables the notification.  Publish failures are logged and
// ignored, they never disturb the booking outcome.
type ConfirmationPublisher interface {
	PublishBookingConfirmed(ctx context.Context, event queue.BookingConfirmedEvent) error
}

// Validation and guard errors surfaced to the user as notifications.
// Backend failures keep their own normalized messages from the
// backend package.
var (
	ErrSeatCountTooLow     = errors.New("select at least one seat")
	ErrSelectionIncomplete = errors.New("select the required number of seats to continue")
	ErrWrongStep           = errors.New("operation not available on this step")
	ErrBackFromPayment     = errors.New("cannot go back once payment has started")
	ErrCloseBlocked        = errors.New("a payment is pending for this booking")
	ErrBusy                = errors.New("another request is still in progress")
	ErrWindowExpired       = errors.New("the payment window has expired")
	ErrInvalidCard         = errors.New("enter valid payment details")
	ErrInvalidCustomer     = errors.New("enter a valid customer name and 10 digit phone number")
)

// PaymentCard is the card form submitted on the payment step.
type PaymentCard struct {
	Number         string `json:"card_number"`
	CVV            string `json:"cvv"`
	ExpiryMonth    string `json:"expiry_month"`
	ExpiryYear     string `json:"expiry_year"`
	CardholderName string `json:"cardholder_name"`
}

// CustomerDetails is the admin counter form naming the walk-in
// customer a staff booking is made for.
type CustomerDetails struct {
	Name        string `json:"customer_name"`
	PhoneNumber string `json:"phone_number"`
}

// Wizard drives one booking dialog through its steps.  All state is
// owned by the wizard, guarded by a single mutex, and discarded when
// the dialog closes; nothing is shared between wizard instances.
// Reads that decide cancellation behaviour always go through the
// mutex so a racing unload can never act on a stale snapshot of the
// booking status.
type Wizard struct {
	mu  sync.Mutex
	api backend.API
	hub *notify.Hub
	pub ConfirmationPublisher
	cfg Config

	token   string
	variant Variant
	show    model.Show

	step             model.Step
	numberOfSeats    int
	seatMap          model.SeatMap
	selection        *Selection
	totalPrice       float64
	deluxeCount      int
	session          *model.BookingSession
	status           model.BookingStatus
	paymentInitiated bool
	released         bool
	timeLeft         int
	countdown        *Countdown
	busy             bool
}

// NewWizard opens a booking flow for the given show.  The token is
// the caller's bearer token, forwarded on every backend call.  hub
// and pub may be nil.
func NewWizard(api backend.API, hub *notify.Hub, pub ConfirmationPublisher, cfg Config, variant Variant, show model.Show, token string) *Wizard {
	if api == nil {
		panic("nil backend API passed to NewWizard")
	}
	if cfg.MaxSeats <= 0 {
		cfg = DefaultConfig()
	}
	return &Wizard{
		api:     api,
		hub:     hub,
		pub:     pub,
		cfg:     cfg,
		token:   token,
		variant: variant,
		show:    show,
		step:    model.StepMovieInfo,
		status:  model.BookingPending,
	}
}

// Variant returns the flow flavour the wizard runs.
func (w *Wizard) Variant() Variant {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.variant
}

// Step returns the current wizard step.
func (w *Wizard) Step() model.Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// Status returns the current booking status.
func (w *Wizard) Status() model.BookingStatus {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

// SetSeatCount records how many seats the user wants.  Validation
// happens on Next so the user can keep typing freely.
func (w *Wizard) SetSeatCount(n int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.numberOfSeats = n
}

// validateSeatCount enforces the movie-info step guard: at least one
// seat, no more than the per-booking cap, no more than the show has
// left.  Each rejection carries its own message.
func (w *Wizard) validateSeatCount() error {
	switch {
	case w.numberOfSeats <= 0:
		return ErrSeatCountTooLow
	case w.numberOfSeats > w.cfg.MaxSeats:
		return fmt.Errorf("a maximum of %d seats can be booked at once", w.cfg.MaxSeats)
	case w.numberOfSeats > int(w.show.AvailableSeats):
		return fmt.Errorf("only %d seats are available for this show", w.show.AvailableSeats)
	}
	return nil
}

// Next advances the wizard one step.  Leaving MOVIE_INFO fetches a
// fresh seat map; leaving SEAT_SELECTION either initializes the
// booking session and opens the payment window (customer flow) or
// moves to the customer details form (admin flow).  On any failure
// the wizard stays on its current step.
func (w *Wizard) Next(ctx context.Context) error {
	w.mu.Lock()
	if w.busy {
		w.mu.Unlock()
		return ErrBusy
	}
	switch w.step {
	case model.StepMovieInfo:
		if err := w.validateSeatCount(); err != nil {
			w.mu.Unlock()
			return err
		}
		w.busy = true
		token, showID := w.token, w.show.ID
		w.mu.Unlock()

		seatMap, err := w.api.FetchSeatMap(ctx, token, showID)

		w.mu.Lock()
		w.busy = false
		if err != nil {
			w.mu.Unlock()
			return err
		}
		w.seatMap = seatMap
		w.selection = NewSelection(w.numberOfSeats)
		w.totalPrice, w.deluxeCount = 0, 0
		w.step = model.StepSeatSelection
		w.mu.Unlock()
		return nil

	case model.StepSeatSelection:
		if w.selection == nil || w.selection.Len() != w.numberOfSeats {
			w.mu.Unlock()
			return ErrSelectionIncomplete
		}
		if !w.variant.RequiresPayment() {
			w.step = nextStep(w.variant, w.step)
			w.mu.Unlock()
			return nil
		}
		w.busy = true
		req := backend.InitializeRequest{
			ShowID:      w.show.ID,
			SeatNumbers: w.selection.Seats(),
			Amount:      Truncate(w.totalPrice),
		}
		token := w.token
		w.mu.Unlock()

		session, err := w.api.InitializeBooking(ctx, token, req)

		w.mu.Lock()
		w.busy = false
		if err != nil {
			// no session exists, so nothing to clean up and no timer runs
			w.mu.Unlock()
			return err
		}
		w.session = session
		w.step = model.StepPayment
		w.timeLeft = int(session.TimeRemainingMS / 1000)
		if w.timeLeft <= 0 {
			w.timeLeft = w.cfg.PaymentWindowSec
		}
		w.countdown = NewCountdown(w.timeLeft, w.tick, w.expire)
		w.countdown.Start()
		w.mu.Unlock()
		return nil

	default:
		w.mu.Unlock()
		return ErrWrongStep
	}
}

// Back moves one step backwards.  PAYMENT is exempt: once a booking
// session exists the only ways out are Cancel, Pay or the timeout.
func (w *Wizard) Back() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	switch w.step {
	case model.StepPayment:
		return ErrBackFromPayment
	case model.StepSeatSelection, model.StepCustomerDetails:
		w.step = prevStep(w.variant, w.step)
		return nil
	default:
		return ErrWrongStep
	}
}

// ToggleSeat applies one seat pick on the selection step and
// recomputes the price from scratch.
func (w *Wizard) ToggleSeat(seatNumber string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step != model.StepSeatSelection || w.selection == nil {
		return ErrWrongStep
	}
	seat, ok := w.seatMap.Find(seatNumber)
	if !ok {
		return fmt.Errorf("unknown seat %q", seatNumber)
	}
	if w.selection.Toggle(seat) {
		w.totalPrice, w.deluxeCount = ComputeTotal(w.show.Cost, w.cfg.DeluxeSurcharge, w.selection.Seats(), w.seatMap)
	}
	return nil
}

// tick records the advisory countdown value for display.  The server
// expiry stays authoritative.
func (w *Wizard) tick(remaining int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.timeLeft = remaining
}

// expire is invoked by the countdown when the payment window runs
// out.  If the user already submitted payment the flag set in Pay
// wins and the expiry is ignored; otherwise the booking terminates
// with TIMEOUT.  No cancellation call is issued, the server expires
// the reservation on its own.
func (w *Wizard) expire() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step != model.StepPayment || w.paymentInitiated || w.status != model.BookingPending {
		return
	}
	w.timeLeft = 0
	w.status = model.BookingTimeout
	w.step = model.StepConfirmation
	w.released = true
}

// validCard checks the payment form.  Card number must be 16 digits,
// CVV 3 digits, expiry a real month/year and the holder non-empty.
func validCard(card PaymentCard) bool {
	if !digits(card.Number, 16) || !digits(card.CVV, 3) {
		return false
	}
	m, err := strconv.Atoi(card.ExpiryMonth)
	if err != nil || m < 1 || m > 12 {
		return false
	}
	y, err := strconv.Atoi(card.ExpiryYear)
	if err != nil || y < 0 {
		return false
	}
	if y < 100 {
		y += 2000
	}
	now := time.Now()
	if y < now.Year() || (y == now.Year() && m < int(now.Month())) {
		return false
	}
	return strings.TrimSpace(card.CardholderName) != ""
}

func digits(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Pay submits the payment for the open booking session.  The
// paymentInitiated flag is set synchronously before the backend call
// starts; this is what resolves the race against the countdown in
// favour of whichever reaches the wizard mutex first.  On a payment
// failure the session is cancelled best-effort (a cancel failure is
// swallowed so one failure is not compounded by another) and the
// wizard terminates with FAILED.
func (w *Wizard) Pay(ctx context.Context, card PaymentCard) error {
	w.mu.Lock()
	if w.busy {
		w.mu.Unlock()
		return ErrBusy
	}
	if w.step != model.StepPayment || w.session == nil || w.status != model.BookingPending || w.released {
		w.mu.Unlock()
		return ErrWrongStep
	}
	if w.timeLeft <= 0 {
		w.mu.Unlock()
		return ErrWindowExpired
	}
	if !validCard(card) {
		w.mu.Unlock()
		return ErrInvalidCard
	}
	w.paymentInitiated = true
	w.busy = true
	if w.countdown != nil {
		w.countdown.Stop()
	}
	req := backend.PaymentRequest{
		BookingID:      w.session.BookingID,
		CardNumber:     card.Number,
		CVV:            card.CVV,
		ExpiryMonth:    card.ExpiryMonth,
		ExpiryYear:     card.ExpiryYear,
		CardholderName: card.CardholderName,
	}
	token := w.token
	w.mu.Unlock()

	payErr := w.api.ProcessPayment(ctx, token, req)

	w.mu.Lock()
	w.busy = false
	bookingID := w.session.BookingID
	if payErr != nil {
		w.released = true
		w.status = model.BookingFailed
		w.step = model.StepConfirmation
		w.mu.Unlock()
		if err := w.api.CancelBooking(ctx, token, bookingID); err != nil {
			log.Printf("booking: cancel after failed payment for booking %d: %v", bookingID, err)
		}
		return payErr
	}
	w.released = true
	w.status = model.BookingSuccess
	w.step = model.StepConfirmation
	event := w.confirmedEventLocked()
	w.mu.Unlock()
	w.publishConfirmed(ctx, event)
	return nil
}

// ConfirmAdmin finalizes an admin counter booking.  No payment window
// is involved; the backend records the sale immediately.
func (w *Wizard) ConfirmAdmin(ctx context.Context, details CustomerDetails) error {
	w.mu.Lock()
	if w.busy {
		w.mu.Unlock()
		return ErrBusy
	}
	if w.variant != AdminFlow || w.step != model.StepCustomerDetails {
		w.mu.Unlock()
		return ErrWrongStep
	}
	if strings.TrimSpace(details.Name) == "" || !digits(details.PhoneNumber, 10) {
		w.mu.Unlock()
		return ErrInvalidCustomer
	}
	w.busy = true
	req := backend.AdminBookingRequest{
		ShowID:       w.show.ID,
		CustomerName: strings.TrimSpace(details.Name),
		PhoneNumber:  details.PhoneNumber,
		SeatNumbers:  w.selection.Seats(),
		AmountPaid:   Truncate(w.totalPrice),
	}
	token := w.token
	w.mu.Unlock()

	bookingID, err := w.api.AdminCreateBooking(ctx, token, req)

	w.mu.Lock()
	w.busy = false
	if err != nil {
		w.mu.Unlock()
		return err
	}
	w.session = &model.BookingSession{
		BookingID:   bookingID,
		ShowID:      w.show.ID,
		SeatNumbers: req.SeatNumbers,
		AmountDue:   req.AmountPaid,
	}
	w.released = true
	w.status = model.BookingSuccess
	w.step = model.StepConfirmation
	event := w.confirmedEventLocked()
	w.mu.Unlock()
	w.publishConfirmed(ctx, event)
	return nil
}

// Cancel is the explicit user cancellation of an open payment
// window.  The backend cancel is idempotent, so a failure here (for
// example a racing unload already cancelled it) is logged and
// swallowed.  After Cancel the close guard no longer blocks.
func (w *Wizard) Cancel(ctx context.Context) error {
	w.mu.Lock()
	if w.busy {
		// a payment call is in flight; its own outcome settles the session
		w.mu.Unlock()
		return ErrBusy
	}
	if w.session == nil || w.status != model.BookingPending || w.released {
		w.mu.Unlock()
		return nil
	}
	w.released = true
	if w.countdown != nil {
		w.countdown.Stop()
	}
	bookingID, token := w.session.BookingID, w.token
	w.mu.Unlock()
	if err := w.api.CancelBooking(ctx, token, bookingID); err != nil {
		log.Printf("booking: cancel booking %d: %v", bookingID, err)
	}
	return nil
}

// Abandon is the unload path: fire-and-forget cancellation of an
// open session when the page is going away.  The state that decides
// whether to fire is read under the mutex at call time, never from a
// snapshot captured earlier, and the network call happens on its own
// goroutine so the unload is never delayed.
func (w *Wizard) Abandon() {
	w.mu.Lock()
	if w.step != model.StepPayment || w.status != model.BookingPending || w.session == nil || w.released {
		w.mu.Unlock()
		return
	}
	w.released = true
	if w.countdown != nil {
		w.countdown.Stop()
	}
	bookingID, token := w.session.BookingID, w.token
	w.mu.Unlock()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := w.api.CancelBooking(ctx, token, bookingID); err != nil {
			log.Printf("booking: abandon cancel booking %d: %v", bookingID, err)
		}
	}()
}

// Close tears the wizard down.  While a payment is pending with a
// live session the dialog must not close, so callers get
// ErrCloseBlocked and silently orphaned reservations cannot happen.
// Closing after a successful customer booking publishes the
// show-refresh notification so listings re-fetch availability.
func (w *Wizard) Close() error {
	w.mu.Lock()
	if w.step == model.StepPayment && w.status == model.BookingPending && !w.released {
		w.mu.Unlock()
		return ErrCloseBlocked
	}
	if w.countdown != nil {
		w.countdown.Stop()
	}
	refresh := w.status == model.BookingSuccess && w.variant == CustomerFlow
	hub := w.hub
	w.mu.Unlock()
	if refresh && hub != nil {
		hub.Publish(notify.TopicShowsRefresh)
	}
	return nil
}

// confirmedEventLocked builds the broker event for the current
// session.  Caller must hold w.mu.
func (w *Wizard) confirmedEventLocked() queue.BookingConfirmedEvent {
	return queue.BookingConfirmedEvent{
		BookingID:   w.session.BookingID,
		ShowID:      w.show.ID,
		MovieTitle:  w.show.Movie.Name,
		ShowDate:    w.show.Date,
		SlotName:    w.show.Slot.Name,
		SeatNumbers: w.session.SeatNumbers,
		AmountPaid:  Truncate(w.totalPrice),
		Channel:     string(w.variant),
		ConfirmedAt: time.Now().UTC().Format(time.RFC3339),
	}
}

func (w *Wizard) publishConfirmed(ctx context.Context, event queue.BookingConfirmedEvent) {
	if w.pub == nil {
		return
	}
	if err := w.pub.PublishBookingConfirmed(ctx, event); err != nil {
		log.Printf("booking: publish confirmation for booking %d: %v", event.BookingID, err)
	}
}

// Snapshot is the wire representation of the wizard state consumed
// by the dialog UI.
type Snapshot struct {
	Variant       Variant             `json:"variant"`
	Step          model.Step          `json:"current_step"`
	Status        model.BookingStatus `json:"booking_status"`
	Show          model.Show          `json:"show"`
	NumberOfSeats int                 `json:"number_of_seats"`
	SeatMap       model.SeatMap       `json:"seat_map,omitempty"`
	StandardRows  []string            `json:"standard_rows,omitempty"`
	DeluxeRows    []string            `json:"deluxe_rows,omitempty"`
	SelectedSeats []string            `json:"selected_seats"`
	TotalPrice    float64             `json:"total_price"`
	TotalDisplay  string              `json:"total_display"`
	DeluxeCount   int                 `json:"deluxe_count"`
	BookingID     uint64              `json:"booking_id,omitempty"`
	TimeLeft      int                 `json:"time_left_seconds"`
}

// Snapshot returns a consistent copy of the visible wizard state.
func (w *Wizard) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	snap := Snapshot{
		Variant:       w.variant,
		Step:          w.step,
		Status:        w.status,
		Show:          w.show,
		NumberOfSeats: w.numberOfSeats,
		SeatMap:       w.seatMap,
		TotalPrice:    Truncate(w.totalPrice),
		TotalDisplay:  fmt.Sprintf("₹%.2f", Truncate(w.totalPrice)),
		DeluxeCount:   w.deluxeCount,
		TimeLeft:      w.timeLeft,
		SelectedSeats: []string{},
	}
	if w.seatMap != nil {
		snap.StandardRows = w.seatMap.StandardRows()
		snap.DeluxeRows = w.seatMap.DeluxeRows()
	}
	if w.selection != nil {
		snap.SelectedSeats = w.selection.Seats()
	}
	if w.session != nil {
		snap.BookingID = w.session.BookingID
	}
	return snap
}
