// Package backend talks to the external SkyFox API on behalf of the
// booking wizard and the passthrough routes.  This file defines the
// sentinel errors shared across calls.  Raw transport and decoding
// failures are logged at the call site and normalized to these
// user-presentable values so that handlers never leak wire details
// to the end user.
package backend

import "errors"

// ErrSeatMapUnavailable is returned when the seat map for a show
// cannot be fetched or decoded.
var ErrSeatMapUnavailable = errors.New("could not load the seat layout for this show")

// ErrBookingRejected is returned when initialize-booking fails and
// the backend supplied no usable message.  No booking session exists
// when this is returned, so callers need no cleanup.
var ErrBookingRejected = errors.New("could not reserve the selected seats")

// ErrPaymentRejected is returned when process-payment fails for any
// reason.  The caller owns cancelling the underlying session.
var ErrPaymentRejected = errors.New("payment could not be processed")

// ErrBookingUnavailable is returned when admin booking creation fails.
var ErrBookingUnavailable = errors.New("could not create the booking")
