package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iamsuteerth/skyfox-frontend/internal/backend"
	"github.com/iamsuteerth/skyfox-frontend/internal/booking"
	"github.com/iamsuteerth/skyfox-frontend/internal/model"
	"github.com/iamsuteerth/skyfox-frontend/internal/notify"
	"github.com/iamsuteerth/skyfox-frontend/internal/store"
)

// BookingHandler exposes the booking wizard over HTTP.  Each dialog
// the UI opens becomes one wizard session in the store; every
// endpoint resolves the session, applies one wizard operation and
// returns the fresh snapshot.  All endpoints assume CookieAuth ran
// first so the bearer token and role are on the context.
type BookingHandler struct {
	Store *store.SessionStore
	API   backend.API
	Hub   *notify.Hub
	Pub   booking.ConfirmationPublisher
	Cfg   booking.Config
}

// NewBookingHandler constructs a BookingHandler.  Store and API must
// be non-nil; Hub and Pub may be nil to disable notifications.
func NewBookingHandler(st *store.SessionStore, api backend.API, hub *notify.Hub, pub booking.ConfirmationPublisher, cfg booking.Config) *BookingHandler {
	if st == nil || api == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Store: st, API: api, Hub: hub, Pub: pub, Cfg: cfg}
}

// getToken extracts the bearer token placed on the context by the
// auth middleware.
func getToken(c echo.Context) (string, error) {
	tok, _ := c.Get("token").(string)
	if tok == "" {
		return "", errors.New("no token in context")
	}
	return tok, nil
}

// wizardFor resolves the session referenced by the :id path param.
func (h *BookingHandler) wizardFor(c echo.Context) (*booking.Wizard, string, bool) {
	id := c.Param("id")
	w, ok := h.Store.Get(id)
	return w, id, ok
}

// statusFor maps wizard errors onto HTTP statuses.  Validation and
// guard failures are client errors; everything else reads as a
// failed backend dependency.
func statusFor(err error) int {
	switch {
	case errors.Is(err, booking.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, booking.ErrCloseBlocked):
		return http.StatusConflict
	case errors.Is(err, booking.ErrWrongStep),
		errors.Is(err, booking.ErrBackFromPayment),
		errors.Is(err, booking.ErrSeatCountTooLow),
		errors.Is(err, booking.ErrSelectionIncomplete),
		errors.Is(err, booking.ErrWindowExpired),
		errors.Is(err, booking.ErrInvalidCard),
		errors.Is(err, booking.ErrInvalidCustomer):
		return http.StatusBadRequest
	case errors.Is(err, backend.ErrSeatMapUnavailable),
		errors.Is(err, backend.ErrBookingRejected),
		errors.Is(err, backend.ErrPaymentRejected),
		errors.Is(err, backend.ErrBookingUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusBadRequest
	}
}

// Open handles POST /v1/booking/sessions.  The body names the flow
// variant and carries the target show payload, mirroring the
// dialog-open context of the UI.  The admin variant is restricted to
// staff roles.
func (h *BookingHandler) Open(c echo.Context) error {
	token, err := getToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		Flow string     `json:"flow"`
		Show model.Show `json:"show"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Show.ID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "show is required"})
	}
	variant := booking.CustomerFlow
	if strings.EqualFold(body.Flow, string(booking.AdminFlow)) {
		role, _ := c.Get("role").(string)
		if !strings.EqualFold(role, "ADMIN") && !strings.EqualFold(role, "STAFF") {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		variant = booking.AdminFlow
	}
	w := booking.NewWizard(h.API, h.Hub, h.Pub, h.Cfg, variant, body.Show, token)
	id := h.Store.Put(w)
	return c.JSON(http.StatusCreated, echo.Map{
		"session_id": id,
		"state":      w.Snapshot(),
	})
}

// Get handles GET /v1/booking/sessions/:id and returns the current
// snapshot, including the advisory countdown value.
func (h *BookingHandler) Get(c echo.Context) error {
	w, _, ok := h.wizardFor(c)
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"state": w.Snapshot()})
}

// SeatCount handles POST /v1/booking/sessions/:id/seat-count.  The
// value is stored as typed; validation fires on Next.
func (h *BookingHandler) SeatCount(c echo.Context) error {
	w, _, ok := h.wizardFor(c)
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
	}
	var body struct {
		NumberOfSeats int `json:"number_of_seats"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	w.SetSeatCount(body.NumberOfSeats)
	return c.JSON(http.StatusOK, echo.Map{"state": w.Snapshot()})
}

// Next handles POST /v1/booking/sessions/:id/next.
func (h *BookingHandler) Next(c echo.Context) error {
	w, _, ok := h.wizardFor(c)
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
	}
	if err := w.Next(c.Request().Context()); err != nil {
		return c.JSON(statusFor(err), echo.Map{"error": err.Error(), "state": w.Snapshot()})
	}
	return c.JSON(http.StatusOK, echo.Map{"state": w.Snapshot()})
}

// Back handles POST /v1/booking/sessions/:id/back.
func (h *BookingHandler) Back(c echo.Context) error {
	w, _, ok := h.wizardFor(c)
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
	}
	if err := w.Back(); err != nil {
		return c.JSON(statusFor(err), echo.Map{"error": err.Error(), "state": w.Snapshot()})
	}
	return c.JSON(http.StatusOK, echo.Map{"state": w.Snapshot()})
}

// ToggleSeat handles POST /v1/booking/sessions/:id/seats/toggle.
func (h *BookingHandler) ToggleSeat(c echo.Context) error {
	w, _, ok := h.wizardFor(c)
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
	}
	var body struct {
		SeatNumber string `json:"seat_number"`
	}
	if err := c.Bind(&body); err != nil || body.SeatNumber == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_number is required"})
	}
	if err := w.ToggleSeat(body.SeatNumber); err != nil {
		return c.JSON(statusFor(err), echo.Map{"error": err.Error(), "state": w.Snapshot()})
	}
	return c.JSON(http.StatusOK, echo.Map{"state": w.Snapshot()})
}

// Pay handles POST /v1/booking/sessions/:id/pay.  A payment failure
// still returns the snapshot: the wizard has already moved to its
// FAILED confirmation and the dialog renders that, not a retry.
func (h *BookingHandler) Pay(c echo.Context) error {
	w, _, ok := h.wizardFor(c)
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
	}
	var card booking.PaymentCard
	if err := c.Bind(&card); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := w.Pay(c.Request().Context(), card); err != nil {
		return c.JSON(statusFor(err), echo.Map{"error": err.Error(), "state": w.Snapshot()})
	}
	return c.JSON(http.StatusOK, echo.Map{"state": w.Snapshot()})
}

// Confirm handles POST /v1/booking/sessions/:id/customer for the
// admin counter flow.
func (h *BookingHandler) Confirm(c echo.Context) error {
	w, _, ok := h.wizardFor(c)
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
	}
	var details booking.CustomerDetails
	if err := c.Bind(&details); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := w.ConfirmAdmin(c.Request().Context(), details); err != nil {
		return c.JSON(statusFor(err), echo.Map{"error": err.Error(), "state": w.Snapshot()})
	}
	return c.JSON(http.StatusOK, echo.Map{"state": w.Snapshot()})
}

// Cancel handles DELETE /v1/booking/sessions/:id/booking, the
// explicit cancellation of an open payment window.  Double cancels
// are harmless.
func (h *BookingHandler) Cancel(c echo.Context) error {
	w, _, ok := h.wizardFor(c)
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
	}
	if err := w.Cancel(c.Request().Context()); err != nil {
		return c.JSON(statusFor(err), echo.Map{"error": err.Error(), "state": w.Snapshot()})
	}
	return c.JSON(http.StatusOK, echo.Map{"state": w.Snapshot()})
}

// Abandon handles POST /v1/booking/sessions/:id/abandon, the beacon
// the page fires on unload.  It must never block the navigation, so
// the wizard's fire-and-forget path runs and a 204 returns
// immediately; the session is dropped without the close guard since
// the page is already gone.
func (h *BookingHandler) Abandon(c echo.Context) error {
	w, id, ok := h.wizardFor(c)
	if !ok {
		return c.NoContent(http.StatusNoContent)
	}
	w.Abandon()
	h.Store.Delete(id)
	return c.NoContent(http.StatusNoContent)
}

// Close handles DELETE /v1/booking/sessions/:id, the normal dialog
// close.  While a payment is pending the wizard refuses and the
// dialog stays open (409); after any terminal status or a completed
// cancellation the session is torn down and removed.
func (h *BookingHandler) Close(c echo.Context) error {
	w, id, ok := h.wizardFor(c)
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
	}
	if err := w.Close(); err != nil {
		return c.JSON(statusFor(err), echo.Map{"error": err.Error(), "state": w.Snapshot()})
	}
	h.Store.Delete(id)
	return c.NoContent(http.StatusNoContent)
}
