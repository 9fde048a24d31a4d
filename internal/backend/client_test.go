package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "key", 2*time.Second)
}

func TestFetchSeatMapParsesRowsAndAuth(t *testing.T) {
	var gotAuth, gotKey string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotKey = r.Header.Get("X-Api-Key")
		assert.Equal(t, "/shows/42/seat-map", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"seat_map": map[string]any{
				"A": []map[string]any{{"seat_number": "A1", "column": 1, "type": "Standard", "occupied": false}},
				"D": []map[string]any{{"seat_number": "D1", "column": 1, "type": "Deluxe", "occupied": true}},
			},
		})
	})

	sm, err := c.FetchSeatMap(context.Background(), "tok", 42)
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "key", gotKey)
	assert.Len(t, sm, 2)
	assert.True(t, sm["D"][0].Occupied)
	assert.Equal(t, []string{"D"}, sm.DeluxeRows())
}

func TestFetchSeatMapNormalizesFailures(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.FetchSeatMap(context.Background(), "tok", 42)
	assert.ErrorIs(t, err, ErrSeatMapUnavailable)
}

func TestInitializeBookingRoundTrip(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var req InitializeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, InitializeRequest{ShowID: 42, SeatNumbers: []string{"A1", "D1"}, Amount: 550}, req)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"booking_id":        77,
			"show_id":           42,
			"seat_numbers":      []string{"A1", "D1"},
			"amount_due":        550,
			"expiration_time":   "2026-09-10T18:04:55Z",
			"time_remaining_ms": 295000,
		})
	})

	s, err := c.InitializeBooking(context.Background(), "tok", InitializeRequest{ShowID: 42, SeatNumbers: []string{"A1", "D1"}, Amount: 550})
	require.NoError(t, err)
	assert.Equal(t, uint64(77), s.BookingID)
	assert.EqualValues(t, 295000, s.TimeRemainingMS)
}

func TestInitializeBookingSurfacesBackendMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "seats no longer available"})
	})

	_, err := c.InitializeBooking(context.Background(), "tok", InitializeRequest{ShowID: 42})
	assert.EqualError(t, err, "seats no longer available")
}

func TestCancelBookingHitsDeleteAndIgnoresBody(t *testing.T) {
	var method, path string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	})

	assert.NoError(t, c.CancelBooking(context.Background(), "tok", 77))
	assert.Equal(t, http.MethodDelete, method)
	assert.Equal(t, "/bookings/77", path)
}

func TestProcessPaymentFailureIsNormalized(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
	})

	err := c.ProcessPayment(context.Background(), "tok", PaymentRequest{BookingID: 77})
	assert.ErrorIs(t, err, ErrPaymentRejected)
}

func TestAdminCreateBookingReturnsID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/bookings", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{"booking_id": 88})
	})

	id, err := c.AdminCreateBooking(context.Background(), "tok", AdminBookingRequest{ShowID: 42})
	require.NoError(t, err)
	assert.Equal(t, uint64(88), id)
}
