package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamsuteerth/skyfox-frontend/internal/backend"
	"github.com/iamsuteerth/skyfox-frontend/internal/booking"
	"github.com/iamsuteerth/skyfox-frontend/internal/model"
	"github.com/iamsuteerth/skyfox-frontend/internal/notify"
	"github.com/iamsuteerth/skyfox-frontend/internal/store"
)

// fakeAPI is a happy-path backend for handler tests.
type fakeAPI struct {
	payErr error
}

func (f *fakeAPI) FetchSeatMap(context.Context, string, uint64) (model.SeatMap, error) {
	return model.SeatMap{
		"A": {{SeatNumber: "A1", Column: 1, Type: model.SeatStandard}, {SeatNumber: "A2", Column: 2, Type: model.SeatStandard}},
		"D": {{SeatNumber: "D1", Column: 1, Type: model.SeatDeluxe}},
	}, nil
}

func (f *fakeAPI) InitializeBooking(_ context.Context, _ string, req backend.InitializeRequest) (*model.BookingSession, error) {
	return &model.BookingSession{
		BookingID:       77,
		ShowID:          req.ShowID,
		SeatNumbers:     req.SeatNumbers,
		AmountDue:       req.Amount,
		TimeRemainingMS: 295000,
	}, nil
}

func (f *fakeAPI) ProcessPayment(context.Context, string, backend.PaymentRequest) error {
	return f.payErr
}
func (f *fakeAPI) CancelBooking(context.Context, string, uint64) error { return nil }
func (f *fakeAPI) AdminCreateBooking(context.Context, string, backend.AdminBookingRequest) (uint64, error) {
	return 88, nil
}

type harness struct {
	e *echo.Echo
	h *BookingHandler
}

func newHarness(api backend.API) *harness {
	st := store.NewSessionStore(time.Minute)
	return &harness{
		e: echo.New(),
		h: NewBookingHandler(st, api, notify.NewHub(), nil, booking.DefaultConfig()),
	}
}

// call invokes an echo handler directly with an authenticated
// context, optionally bound to a session ID path param.
func (h *harness) call(t *testing.T, fn echo.HandlerFunc, method, body, sessionID string) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	t.Helper()
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := h.e.NewContext(req, rec)
	c.Set("token", "tok")
	c.Set("role", "CUSTOMER")
	if sessionID != "" {
		c.SetParamNames("id")
		c.SetParamValues(sessionID)
	}
	require.NoError(t, fn(c))
	var env map[string]json.RawMessage
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func openBody() string {
	return `{"flow":"customer","show":{"id":42,"cost":200,"availableseats":5,"movie":{"name":"Interstellar"}}}`
}

func sessionID(t *testing.T, env map[string]json.RawMessage) string {
	t.Helper()
	var id string
	require.NoError(t, json.Unmarshal(env["session_id"], &id))
	return id
}

func stateOf(t *testing.T, env map[string]json.RawMessage) booking.Snapshot {
	t.Helper()
	var snap booking.Snapshot
	require.NoError(t, json.Unmarshal(env["state"], &snap))
	return snap
}

func TestOpenCreatesSession(t *testing.T) {
	h := newHarness(&fakeAPI{})

	rec, env := h.call(t, h.h.Open, http.MethodPost, openBody(), "")
	assert.Equal(t, http.StatusCreated, rec.Code)

	id := sessionID(t, env)
	assert.NotEmpty(t, id)
	snap := stateOf(t, env)
	assert.Equal(t, model.StepMovieInfo, snap.Step)
	assert.Equal(t, model.BookingPending, snap.Status)

	_, ok := h.h.Store.Get(id)
	assert.True(t, ok)
}

func TestOpenAdminFlowRequiresStaffRole(t *testing.T) {
	h := newHarness(&fakeAPI{})

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"flow":"admin","show":{"id":42,"availableseats":5}}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := h.e.NewContext(req, rec)
	c.Set("token", "tok")
	c.Set("role", "CUSTOMER")
	require.NoError(t, h.h.Open(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestWizardFlowOverHTTP(t *testing.T) {
	h := newHarness(&fakeAPI{})

	_, env := h.call(t, h.h.Open, http.MethodPost, openBody(), "")
	id := sessionID(t, env)

	// seat count out of bounds is rejected on next with a message
	h.call(t, h.h.SeatCount, http.MethodPost, `{"number_of_seats":11}`, id)
	rec, _ := h.call(t, h.h.Next, http.MethodPost, "", id)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	h.call(t, h.h.SeatCount, http.MethodPost, `{"number_of_seats":2}`, id)
	rec, env = h.call(t, h.h.Next, http.MethodPost, "", id)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.StepSeatSelection, stateOf(t, env).Step)

	h.call(t, h.h.ToggleSeat, http.MethodPost, `{"seat_number":"A1"}`, id)
	_, env = h.call(t, h.h.ToggleSeat, http.MethodPost, `{"seat_number":"D1"}`, id)
	snap := stateOf(t, env)
	assert.Equal(t, []string{"A1", "D1"}, snap.SelectedSeats)
	assert.Equal(t, 550.0, snap.TotalPrice)

	rec, env = h.call(t, h.h.Next, http.MethodPost, "", id)
	assert.Equal(t, http.StatusOK, rec.Code)
	snap = stateOf(t, env)
	assert.Equal(t, model.StepPayment, snap.Step)
	assert.Equal(t, uint64(77), snap.BookingID)
	assert.Equal(t, 295, snap.TimeLeft)

	// close guard holds while payment is pending
	rec, _ = h.call(t, h.h.Close, http.MethodDelete, "", id)
	assert.Equal(t, http.StatusConflict, rec.Code)

	card := `{"card_number":"4111111111111111","cvv":"123","expiry_month":"09","expiry_year":"2030","cardholder_name":"A Kumar"}`
	rec, env = h.call(t, h.h.Pay, http.MethodPost, card, id)
	assert.Equal(t, http.StatusOK, rec.Code)
	snap = stateOf(t, env)
	assert.Equal(t, model.StepConfirmation, snap.Step)
	assert.Equal(t, model.BookingSuccess, snap.Status)
	assert.Equal(t, "₹550.00", snap.TotalDisplay)

	// terminal state closes cleanly and the session is gone
	rec, _ = h.call(t, h.h.Close, http.MethodDelete, "", id)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	_, ok := h.h.Store.Get(id)
	assert.False(t, ok)
}

func TestAbandonAlwaysReturnsNoContent(t *testing.T) {
	h := newHarness(&fakeAPI{})

	_, env := h.call(t, h.h.Open, http.MethodPost, openBody(), "")
	id := sessionID(t, env)

	rec, _ := h.call(t, h.h.Abandon, http.MethodPost, "", id)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	_, ok := h.h.Store.Get(id)
	assert.False(t, ok)

	// unknown sessions are fine too: the page is unloading either way
	rec, _ = h.call(t, h.h.Abandon, http.MethodPost, "", "missing")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestGetUnknownSessionIs404(t *testing.T) {
	h := newHarness(&fakeAPI{})
	rec, _ := h.call(t, h.h.Get, http.MethodGet, "", "missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
