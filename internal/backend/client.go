package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/iamsuteerth/skyfox-frontend/internal/model"
)

// API is the surface of the external booking backend consumed by the
// wizard.  It is an interface so the state machine can be exercised
// in tests without a network.
type API interface {
	// FetchSeatMap loads the seating chart for a show, including
	// per-seat occupancy from the current server snapshot.
	FetchSeatMap(ctx context.Context, token string, showID uint64) (model.SeatMap, error)
	// InitializeBooking reserves the given seats and opens a
	// time-boxed payment window on the server.
	InitializeBooking(ctx context.Context, token string, req InitializeRequest) (*model.BookingSession, error)
	// ProcessPayment charges the card against an open booking session.
	ProcessPayment(ctx context.Context, token string, req PaymentRequest) error
	// CancelBooking releases the seats held by a booking session.  The
	// backend treats it as idempotent; cancelling an already resolved
	// booking is not an error worth surfacing.
	CancelBooking(ctx context.Context, token string, bookingID uint64) error
	// AdminCreateBooking records a counter sale with no payment window.
	AdminCreateBooking(ctx context.Context, token string, req AdminBookingRequest) (uint64, error)
}

// InitializeRequest is the payload for the initialize-booking call.
type InitializeRequest struct {
	ShowID      uint64   `json:"show_id"`
	SeatNumbers []string `json:"seat_numbers"`
	Amount      float64  `json:"amount"`
}

// PaymentRequest is the payload for the process-payment call.
type PaymentRequest struct {
	BookingID      uint64 `json:"booking_id"`
	CardNumber     string `json:"card_number"`
	CVV            string `json:"cvv"`
	ExpiryMonth    string `json:"expiry_month"`
	ExpiryYear     string `json:"expiry_year"`
	CardholderName string `json:"cardholder_name"`
}

// AdminBookingRequest is the payload for the admin counter booking
// call.  AmountPaid is recorded as collected in cash; no card details
// are involved.
type AdminBookingRequest struct {
	ShowID       uint64   `json:"show_id"`
	CustomerName string   `json:"customer_name"`
	PhoneNumber  string   `json:"phone_number"`
	SeatNumbers  []string `json:"seat_numbers"`
	AmountPaid   float64  `json:"amount_paid"`
}

// Client is the HTTP implementation of API.  All requests carry the
// caller's bearer token and the service API key.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient returns a Client bound to the given backend base URL.
// The URL must not end with a slash.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

// errorBody is the error envelope the backend uses on non-2xx
// responses.  Message is optional.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// do sends a JSON request and decodes a JSON response into out when
// out is non-nil.  Non-2xx statuses are returned as an error carrying
// the backend message when one was provided, otherwise fallback.
func (c *Client) do(ctx context.Context, token, method, path string, body, out any, fallback error) error {
	var rdr io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			log.Printf("backend: marshal %s %s: %v", method, path, err)
			return fallback
		}
		rdr = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		log.Printf("backend: build %s %s: %v", method, path, err)
		return fallback
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		log.Printf("backend: %s %s: %v", method, path, err)
		return fallback
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		_ = json.Unmarshal(raw, &eb)
		log.Printf("backend: %s %s -> %d: %s", method, path, resp.StatusCode, raw)
		if eb.Message != "" {
			return fmt.Errorf("%s", eb.Message)
		}
		return fallback
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		log.Printf("backend: decode %s %s: %v", method, path, err)
		return fallback
	}
	return nil
}

// FetchSeatMap implements API.
func (c *Client) FetchSeatMap(ctx context.Context, token string, showID uint64) (model.SeatMap, error) {
	var payload struct {
		SeatMap model.SeatMap `json:"seat_map"`
	}
	path := fmt.Sprintf("/shows/%d/seat-map", showID)
	if err := c.do(ctx, token, http.MethodGet, path, nil, &payload, ErrSeatMapUnavailable); err != nil {
		return nil, err
	}
	if len(payload.SeatMap) == 0 {
		log.Printf("backend: empty seat map for show %d", showID)
		return nil, ErrSeatMapUnavailable
	}
	return payload.SeatMap, nil
}

// InitializeBooking implements API.
func (c *Client) InitializeBooking(ctx context.Context, token string, req InitializeRequest) (*model.BookingSession, error) {
	var session model.BookingSession
	if err := c.do(ctx, token, http.MethodPost, "/bookings/initialize", req, &session, ErrBookingRejected); err != nil {
		return nil, err
	}
	if session.BookingID == 0 {
		log.Printf("backend: initialize booking returned no booking id for show %d", req.ShowID)
		return nil, ErrBookingRejected
	}
	return &session, nil
}

// ProcessPayment implements API.
func (c *Client) ProcessPayment(ctx context.Context, token string, req PaymentRequest) error {
	path := fmt.Sprintf("/bookings/%d/payment", req.BookingID)
	return c.do(ctx, token, http.MethodPost, path, req, nil, ErrPaymentRejected)
}

// CancelBooking implements API.
func (c *Client) CancelBooking(ctx context.Context, token string, bookingID uint64) error {
	path := fmt.Sprintf("/bookings/%d", bookingID)
	return c.do(ctx, token, http.MethodDelete, path, nil, nil, ErrBookingUnavailable)
}

// AdminCreateBooking implements API.
func (c *Client) AdminCreateBooking(ctx context.Context, token string, req AdminBookingRequest) (uint64, error) {
	var payload struct {
		BookingID uint64 `json:"booking_id"`
	}
	if err := c.do(ctx, token, http.MethodPost, "/admin/bookings", req, &payload, ErrBookingUnavailable); err != nil {
		return 0, err
	}
	if payload.BookingID == 0 {
		log.Printf("backend: admin booking returned no booking id for show %d", req.ShowID)
		return 0, ErrBookingUnavailable
	}
	return payload.BookingID, nil
}
