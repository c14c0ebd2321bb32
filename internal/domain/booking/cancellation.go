package booking

import (
	"time"

	"github.com/bookora/service-marketplace/pkg/domain"
)

// Clock supplies the current time. Abstracted so the time-dependent fee
// policy can be tested against fixed instants.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock backed by time.Now.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// CancellationPolicy computes the fee withheld when a booking is cancelled,
// based on how far in the future the booking starts.
//
// Under the strict policy the time-bracketed fee applies regardless of
// status. Under the lenient policy a pending booking cancels free of charge
// (no penalty before provider acceptance) and only confirmed bookings incur
// the bracketed fee; other statuses are not cancellable.
type CancellationPolicy struct {
	Lenient bool
}

// FeeFor returns the cancellation fee for the booking at the given instant.
func (p CancellationPolicy) FeeFor(b *Booking, now time.Time) (float64, error) {
	if p.Lenient {
		switch b.Status() {
		case StatusPending:
			return 0, nil
		case StatusConfirmed:
			return CancellationFee(b.TotalAmount(), b.HoursUntilStart(now)), nil
		default:
			return 0, newNotCancellableError(b.Status())
		}
	}
	return CancellationFee(b.TotalAmount(), b.HoursUntilStart(now)), nil
}

func newNotCancellableError(s BookingStatus) error {
	return domain.NewInvalidTransitionError(string(s), string(StatusCancelled))
}

// CancellationFee returns the fee for cancelling a booking of the given total
// with hoursUntil hours remaining before its start instant. A boundary value
// belongs to the lower-fee bracket: exactly 48 hours out is free, exactly 24
// hours out is 10%, exactly 2 hours out is 50%.
func CancellationFee(totalAmount, hoursUntil float64) float64 {
	switch {
	case hoursUntil >= 48:
		return 0
	case hoursUntil >= 24:
		return round2(totalAmount * 0.10)
	case hoursUntil >= 2:
		return round2(totalAmount * 0.50)
	default:
		return totalAmount
	}
}
