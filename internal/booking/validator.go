package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kinohall/cinema-ticketing-engine/internal/model"
	"github.com/kinohall/cinema-ticketing-engine/internal/ticket"
)

// RejectReason identifies why a scanned ticket was rejected.  Every
// rejection is surfaced to the door operator with its distinct
// reason; a replayed ticket is a reportable event, never a silent
// success.
type RejectReason string

const (
	ReasonMalformedToken   RejectReason = "MALFORMED_TOKEN"
	ReasonTamperedToken    RejectReason = "TAMPERED_TOKEN"
	ReasonNotFound         RejectReason = "NOT_FOUND"
	ReasonCancelled        RejectReason = "CANCELLED"
	ReasonExpired          RejectReason = "EXPIRED"
	ReasonAlreadyValidated RejectReason = "ALREADY_VALIDATED"
)

// ValidationResult is the outcome of a door scan.  Reservation is set
// on acceptance so the operator UI can show who was admitted.
type ValidationResult struct {
	Accepted    bool
	Reason      RejectReason
	Reservation *model.Reservation
}

func rejected(reason RejectReason) ValidationResult {
	return ValidationResult{Accepted: false, Reason: reason}
}

// Validator is the door-scanning path.  It decodes a ticket token,
// applies the validation rules and performs the one-way
// Unvalidated -> Validated transition on the reservation.
type Validator struct {
	codec *ticket.Codec
	inv   Inventory
	store Store
	now   func() time.Time
}

// NewValidator constructs a Validator.  All dependencies must be non-nil.
func NewValidator(codec *ticket.Codec, inv Inventory, store Store) *Validator {
	if codec == nil || inv == nil || store == nil {
		panic("nil dependency passed to NewValidator")
	}
	return &Validator{codec: codec, inv: inv, store: store, now: func() time.Time { return time.Now().UTC() }}
}

// Validate checks a scanned token and flips the reservation to
// validated.  Business rejections come back in the ValidationResult;
// the error return is reserved for storage failures.  Concurrent
// scans of the same token resolve to exactly one acceptance: the flip
// is a compare-and-set in the store, not a read-then-write here.
//
// The time rule is the strict one from the booking flow: a ticket is
// expired once the showtime has started, with no grace window.
func (v *Validator) Validate(ctx context.Context, token string) (ValidationResult, error) {
	id, err := v.codec.Decode(token)
	if err != nil {
		if errors.Is(err, ticket.ErrTamperedToken) {
			return rejected(ReasonTamperedToken), nil
		}
		return rejected(ReasonMalformedToken), nil
	}

	res, err := v.store.GetReservation(ctx, id.ReservationID)
	if err != nil {
		if errors.Is(err, ErrReservationNotFound) {
			return rejected(ReasonNotFound), nil
		}
		return ValidationResult{}, fmt.Errorf("load reservation: %w", err)
	}
	// A signed token always matches its reservation row unless the
	// row was reassigned out of band; treat a mismatch as unknown.
	if res.ShowtimeID != id.ShowtimeID || res.UserID != id.UserID {
		return rejected(ReasonNotFound), nil
	}
	if res.Status == model.ReservationCancelled {
		return rejected(ReasonCancelled), nil
	}

	st, err := v.inv.GetShowtime(ctx, res.ShowtimeID)
	if err != nil {
		if errors.Is(err, ErrShowtimeNotFound) {
			return rejected(ReasonNotFound), nil
		}
		return ValidationResult{}, fmt.Errorf("load showtime: %w", err)
	}
	if !st.StartsAt.After(v.now()) {
		return rejected(ReasonExpired), nil
	}

	if res.Validated {
		return rejected(ReasonAlreadyValidated), nil
	}
	flipped, err := v.store.MarkValidated(ctx, res.ID)
	if err != nil {
		return ValidationResult{}, fmt.Errorf("mark validated: %w", err)
	}
	if !flipped {
		// Lost the race against a concurrent scan of the same token.
		return rejected(ReasonAlreadyValidated), nil
	}
	res.Validated = true
	return ValidationResult{Accepted: true, Reservation: res}, nil
}
