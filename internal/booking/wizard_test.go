package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/iamsuteerth/skyfox-frontend/internal/backend"
	"github.com/iamsuteerth/skyfox-frontend/internal/model"
	"github.com/iamsuteerth/skyfox-frontend/internal/notify"
	"github.com/iamsuteerth/skyfox-frontend/internal/queue"
)

// MockAPI is a testify mock of the backend surface.

type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) FetchSeatMap(ctx context.Context, token string, showID uint64) (model.SeatMap, error) {
	args := m.Called(ctx, token, showID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(model.SeatMap), args.Error(1)
}

func (m *MockAPI) InitializeBooking(ctx context.Context, token string, req backend.InitializeRequest) (*model.BookingSession, error) {
	args := m.Called(ctx, token, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BookingSession), args.Error(1)
}

func (m *MockAPI) ProcessPayment(ctx context.Context, token string, req backend.PaymentRequest) error {
	args := m.Called(ctx, token, req)
	return args.Error(0)
}

func (m *MockAPI) CancelBooking(ctx context.Context, token string, bookingID uint64) error {
	args := m.Called(ctx, token, bookingID)
	return args.Error(0)
}

func (m *MockAPI) AdminCreateBooking(ctx context.Context, token string, req backend.AdminBookingRequest) (uint64, error) {
	args := m.Called(ctx, token, req)
	return args.Get(0).(uint64), args.Error(1)
}

// capturingPublisher records confirmed-booking events.
type capturingPublisher struct {
	mu     sync.Mutex
	events []queue.BookingConfirmedEvent
}

func (p *capturingPublisher) PublishBookingConfirmed(_ context.Context, ev queue.BookingConfirmedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *capturingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

func testShow() model.Show {
	return model.Show{
		ID:             42,
		Date:           "2026-09-10",
		Cost:           200,
		AvailableSeats: 5,
		Slot:           model.Slot{ID: 2, Name: "Evening"},
		Movie:          model.Movie{Name: "Interstellar"},
	}
}

func validTestCard() PaymentCard {
	return PaymentCard{
		Number:         "4111111111111111",
		CVV:            "123",
		ExpiryMonth:    "09",
		ExpiryYear:     "2030",
		CardholderName: "A Kumar",
	}
}

// toPayment walks a customer wizard up to an open payment window.
func toPayment(t *testing.T, api *MockAPI, hub *notify.Hub, pub ConfirmationPublisher) *Wizard {
	t.Helper()
	api.On("FetchSeatMap", mock.Anything, "tok", uint64(42)).Return(testSeatMap(), nil)
	api.On("InitializeBooking", mock.Anything, "tok", mock.Anything).Return(&model.BookingSession{
		BookingID:       77,
		ShowID:          42,
		SeatNumbers:     []string{"A1", "D1"},
		AmountDue:       550,
		TimeRemainingMS: 295000,
	}, nil)

	w := NewWizard(api, hub, pub, DefaultConfig(), CustomerFlow, testShow(), "tok")
	w.SetSeatCount(2)
	assert.NoError(t, w.Next(context.Background()))
	assert.NoError(t, w.ToggleSeat("A1"))
	assert.NoError(t, w.ToggleSeat("D1"))
	assert.NoError(t, w.Next(context.Background()))
	assert.Equal(t, model.StepPayment, w.Step())
	return w
}

func TestSeatCountGuardRejectsOutOfBounds(t *testing.T) {
	api := &MockAPI{}
	w := NewWizard(api, nil, nil, DefaultConfig(), CustomerFlow, testShow(), "tok")

	w.SetSeatCount(11)
	err := w.Next(context.Background())
	assert.EqualError(t, err, "a maximum of 10 seats can be booked at once")
	assert.Equal(t, model.StepMovieInfo, w.Step())

	w.SetSeatCount(0)
	assert.ErrorIs(t, w.Next(context.Background()), ErrSeatCountTooLow)
	assert.Equal(t, model.StepMovieInfo, w.Step())

	// show only has 5 seats left
	w.SetSeatCount(6)
	err = w.Next(context.Background())
	assert.EqualError(t, err, "only 5 seats are available for this show")
	assert.Equal(t, model.StepMovieInfo, w.Step())

	api.AssertNotCalled(t, "FetchSeatMap", mock.Anything, mock.Anything, mock.Anything)
}

func TestSeatSelectionGuardRequiresFullSelection(t *testing.T) {
	api := &MockAPI{}
	api.On("FetchSeatMap", mock.Anything, "tok", uint64(42)).Return(testSeatMap(), nil)

	w := NewWizard(api, nil, nil, DefaultConfig(), CustomerFlow, testShow(), "tok")
	w.SetSeatCount(2)
	assert.NoError(t, w.Next(context.Background()))
	assert.NoError(t, w.ToggleSeat("A1"))

	assert.ErrorIs(t, w.Next(context.Background()), ErrSelectionIncomplete)
	assert.Equal(t, model.StepSeatSelection, w.Step())
	api.AssertNotCalled(t, "InitializeBooking", mock.Anything, mock.Anything, mock.Anything)
}

func TestInitializeFailureStaysOnSeatSelection(t *testing.T) {
	api := &MockAPI{}
	api.On("FetchSeatMap", mock.Anything, "tok", uint64(42)).Return(testSeatMap(), nil)
	api.On("InitializeBooking", mock.Anything, "tok", mock.Anything).Return(nil, backend.ErrBookingRejected)

	w := NewWizard(api, nil, nil, DefaultConfig(), CustomerFlow, testShow(), "tok")
	w.SetSeatCount(1)
	assert.NoError(t, w.Next(context.Background()))
	assert.NoError(t, w.ToggleSeat("A1"))

	assert.ErrorIs(t, w.Next(context.Background()), backend.ErrBookingRejected)
	assert.Equal(t, model.StepSeatSelection, w.Step())
	// no session means nothing to cancel and no timer running
	assert.Equal(t, 0, w.Snapshot().TimeLeft)
}

func TestCustomerBookingEndToEnd(t *testing.T) {
	api := &MockAPI{}
	hub := notify.NewHub()
	pub := &capturingPublisher{}

	refreshed := 0
	cancel := hub.Subscribe(notify.TopicShowsRefresh, func(notify.Event) { refreshed++ })
	defer cancel()

	w := toPayment(t, api, hub, pub)

	// the initialize call carried the truncated client-computed amount
	api.AssertCalled(t, "InitializeBooking", mock.Anything, "tok", backend.InitializeRequest{
		ShowID:      42,
		SeatNumbers: []string{"A1", "D1"},
		Amount:      550,
	})

	snap := w.Snapshot()
	assert.Equal(t, 550.0, snap.TotalPrice) // 200 standard + 350 deluxe
	assert.Equal(t, "₹550.00", snap.TotalDisplay)
	assert.Equal(t, 1, snap.DeluxeCount)
	assert.Equal(t, 295, snap.TimeLeft)
	assert.Equal(t, uint64(77), snap.BookingID)

	api.On("ProcessPayment", mock.Anything, "tok", mock.Anything).Return(nil)
	assert.NoError(t, w.Pay(context.Background(), validTestCard()))

	snap = w.Snapshot()
	assert.Equal(t, model.StepConfirmation, snap.Step)
	assert.Equal(t, model.BookingSuccess, snap.Status)
	assert.Equal(t, []string{"A1", "D1"}, snap.SelectedSeats)
	assert.Equal(t, 1, pub.count())

	// closing from SUCCESS refreshes the show listing exactly once
	assert.NoError(t, w.Close())
	assert.Equal(t, 1, refreshed)
	api.AssertNotCalled(t, "CancelBooking", mock.Anything, mock.Anything, mock.Anything)
}

func TestPaymentFailureCancelsBestEffort(t *testing.T) {
	api := &MockAPI{}
	w := toPayment(t, api, nil, nil)

	api.On("ProcessPayment", mock.Anything, "tok", mock.Anything).Return(backend.ErrPaymentRejected)
	// the follow-up cancel itself failing must be swallowed
	api.On("CancelBooking", mock.Anything, "tok", uint64(77)).Return(errors.New("already cancelled"))

	assert.ErrorIs(t, w.Pay(context.Background(), validTestCard()), backend.ErrPaymentRejected)
	assert.Equal(t, model.BookingFailed, w.Status())
	assert.Equal(t, model.StepConfirmation, w.Step())
	api.AssertNumberOfCalls(t, "CancelBooking", 1)

	// terminal: the dialog may close now
	assert.NoError(t, w.Close())
}

func TestTimeoutIsTerminalAndDisablesRepay(t *testing.T) {
	api := &MockAPI{}
	w := toPayment(t, api, nil, nil)

	w.expire()

	assert.Equal(t, model.BookingTimeout, w.Status())
	assert.Equal(t, model.StepConfirmation, w.Step())
	assert.Equal(t, 0, w.Snapshot().TimeLeft)

	// no cancellation on timeout: the server reaps the reservation itself
	api.AssertNotCalled(t, "CancelBooking", mock.Anything, mock.Anything, mock.Anything)

	// paying after the timeout is rejected and never reaches the backend
	assert.ErrorIs(t, w.Pay(context.Background(), validTestCard()), ErrWrongStep)
	api.AssertNotCalled(t, "ProcessPayment", mock.Anything, mock.Anything, mock.Anything)
}

func TestPaymentInitiatedWinsOverExpiry(t *testing.T) {
	api := &MockAPI{}
	w := toPayment(t, api, nil, nil)

	api.On("ProcessPayment", mock.Anything, "tok", mock.Anything).Return(nil)
	assert.NoError(t, w.Pay(context.Background(), validTestCard()))

	// a straggling expiry after the synchronous flag set must not
	// overwrite the outcome
	w.expire()
	assert.Equal(t, model.BookingSuccess, w.Status())
}

func TestCloseGuardWhilePaymentPending(t *testing.T) {
	api := &MockAPI{}
	w := toPayment(t, api, nil, nil)

	assert.ErrorIs(t, w.Close(), ErrCloseBlocked)
	assert.Equal(t, model.StepPayment, w.Step())

	api.On("CancelBooking", mock.Anything, "tok", uint64(77)).Return(nil)
	assert.NoError(t, w.Cancel(context.Background()))

	// cancellation completed, closing is unblocked
	assert.NoError(t, w.Close())
}

func TestCancelIsIdempotent(t *testing.T) {
	api := &MockAPI{}
	w := toPayment(t, api, nil, nil)

	api.On("CancelBooking", mock.Anything, "tok", uint64(77)).Return(nil)
	assert.NoError(t, w.Cancel(context.Background()))
	assert.NoError(t, w.Cancel(context.Background()))
	w.Abandon()

	// the released guard keeps every additional path from re-firing
	api.AssertNumberOfCalls(t, "CancelBooking", 1)
}

func TestAbandonFiresOnlyWhilePending(t *testing.T) {
	api := &MockAPI{}
	w := toPayment(t, api, nil, nil)

	cancelled := make(chan struct{})
	api.On("CancelBooking", mock.Anything, "tok", uint64(77)).Run(func(mock.Arguments) {
		close(cancelled)
	}).Return(nil)
	w.Abandon()

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("abandon never cancelled the booking")
	}

	// resolved bookings are left alone on a later unload
	w.Abandon()
	time.Sleep(20 * time.Millisecond)
	api.AssertNumberOfCalls(t, "CancelBooking", 1)
}

func TestAbandonAfterSuccessDoesNothing(t *testing.T) {
	api := &MockAPI{}
	w := toPayment(t, api, nil, nil)

	api.On("ProcessPayment", mock.Anything, "tok", mock.Anything).Return(nil)
	assert.NoError(t, w.Pay(context.Background(), validTestCard()))

	w.Abandon()
	time.Sleep(20 * time.Millisecond)
	api.AssertNotCalled(t, "CancelBooking", mock.Anything, mock.Anything, mock.Anything)
}

func TestBackIsExemptFromPayment(t *testing.T) {
	api := &MockAPI{}
	w := toPayment(t, api, nil, nil)

	assert.ErrorIs(t, w.Back(), ErrBackFromPayment)
	assert.Equal(t, model.StepPayment, w.Step())
}

func TestBackFromSeatSelection(t *testing.T) {
	api := &MockAPI{}
	api.On("FetchSeatMap", mock.Anything, "tok", uint64(42)).Return(testSeatMap(), nil)

	w := NewWizard(api, nil, nil, DefaultConfig(), CustomerFlow, testShow(), "tok")
	w.SetSeatCount(2)
	assert.NoError(t, w.Next(context.Background()))
	assert.NoError(t, w.Back())
	assert.Equal(t, model.StepMovieInfo, w.Step())
}

func TestInvalidCardRejectedBeforeBackend(t *testing.T) {
	api := &MockAPI{}
	w := toPayment(t, api, nil, nil)

	card := validTestCard()
	card.CVV = "12"
	assert.ErrorIs(t, w.Pay(context.Background(), card), ErrInvalidCard)
	assert.Equal(t, model.BookingPending, w.Status())
	api.AssertNotCalled(t, "ProcessPayment", mock.Anything, mock.Anything, mock.Anything)
}

func TestAdminFlowCompletesWithoutPayment(t *testing.T) {
	api := &MockAPI{}
	hub := notify.NewHub()
	pub := &capturingPublisher{}
	refreshed := 0
	cancel := hub.Subscribe(notify.TopicShowsRefresh, func(notify.Event) { refreshed++ })
	defer cancel()

	api.On("FetchSeatMap", mock.Anything, "tok", uint64(42)).Return(testSeatMap(), nil)
	api.On("AdminCreateBooking", mock.Anything, "tok", mock.Anything).Return(uint64(88), nil)

	w := NewWizard(api, hub, pub, DefaultConfig(), AdminFlow, testShow(), "tok")
	w.SetSeatCount(1)
	assert.NoError(t, w.Next(context.Background()))
	assert.NoError(t, w.ToggleSeat("D3"))
	assert.NoError(t, w.Next(context.Background()))
	assert.Equal(t, model.StepCustomerDetails, w.Step())

	// bad phone number never reaches the backend
	assert.ErrorIs(t, w.ConfirmAdmin(context.Background(), CustomerDetails{Name: "Walk In", PhoneNumber: "12345"}), ErrInvalidCustomer)

	assert.NoError(t, w.ConfirmAdmin(context.Background(), CustomerDetails{Name: "Walk In", PhoneNumber: "9876543210"}))
	snap := w.Snapshot()
	assert.Equal(t, model.StepConfirmation, snap.Step)
	assert.Equal(t, model.BookingSuccess, snap.Status)
	assert.Equal(t, uint64(88), snap.BookingID)
	assert.Equal(t, 350.0, snap.TotalPrice) // deluxe seat
	assert.Equal(t, 1, pub.count())

	api.AssertCalled(t, "AdminCreateBooking", mock.Anything, "tok", backend.AdminBookingRequest{
		ShowID:       42,
		CustomerName: "Walk In",
		PhoneNumber:  "9876543210",
		SeatNumbers:  []string{"D3"},
		AmountPaid:   350,
	})
	api.AssertNotCalled(t, "InitializeBooking", mock.Anything, mock.Anything, mock.Anything)
	api.AssertNotCalled(t, "ProcessPayment", mock.Anything, mock.Anything, mock.Anything)

	// the counter flow does not force a customer-facing listing refresh
	assert.NoError(t, w.Close())
	assert.Equal(t, 0, refreshed)
}

func TestToggleRecomputesFromScratch(t *testing.T) {
	api := &MockAPI{}
	api.On("FetchSeatMap", mock.Anything, "tok", uint64(42)).Return(testSeatMap(), nil)

	w := NewWizard(api, nil, nil, DefaultConfig(), CustomerFlow, testShow(), "tok")
	w.SetSeatCount(2)
	assert.NoError(t, w.Next(context.Background()))

	assert.NoError(t, w.ToggleSeat("D1"))
	assert.Equal(t, 350.0, w.Snapshot().TotalPrice)

	assert.NoError(t, w.ToggleSeat("A1"))
	assert.Equal(t, 550.0, w.Snapshot().TotalPrice)

	// deselect the deluxe seat; total drops to the single standard seat
	assert.NoError(t, w.ToggleSeat("D1"))
	snap := w.Snapshot()
	assert.Equal(t, 200.0, snap.TotalPrice)
	assert.Equal(t, 0, snap.DeluxeCount)

	// occupied seats cannot enter the selection even directly
	assert.NoError(t, w.ToggleSeat("D2"))
	assert.Equal(t, []string{"A1"}, w.Snapshot().SelectedSeats)
}
