package booking

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kinohall/cinema-ticketing-engine/internal/ticket"
)

func validatorFixture(t *testing.T) (*memStore, *Service, *Validator, time.Time) {
	t.Helper()
	st, svc, codec, now := fixture(t)
	val := NewValidator(codec, st, st)
	val.now = func() time.Time { return now }
	return st, svc, val, now
}

func TestValidateAcceptsThenRejectsReplay(t *testing.T) {
	_, svc, val, _ := validatorFixture(t)
	ctx := context.Background()

	res, _, err := svc.CreateReservation(ctx, 1, 1, []string{"A1", "A2"})
	require.NoError(t, err)

	result, err := val.Validate(ctx, res.TicketToken)
	require.NoError(t, err)
	assert.True(t, result.Accepted)
	require.NotNil(t, result.Reservation)
	assert.True(t, result.Reservation.Validated)

	// Second scan of the same ticket is a distinct, reportable event.
	result, err = val.Validate(ctx, res.TicketToken)
	require.NoError(t, err)
	assert.False(t, result.Accepted)
	assert.Equal(t, ReasonAlreadyValidated, result.Reason)
}

func TestValidateExpiredAfterShowtimeStart(t *testing.T) {
	_, svc, val, now := validatorFixture(t)
	ctx := context.Background()

	res, _, err := svc.CreateReservation(ctx, 1, 1, []string{"A3"})
	require.NoError(t, err)

	// First use after the showtime has started: expired, not consumed.
	val.now = func() time.Time { return now.Add(2*time.Hour + time.Minute) }
	result, err := val.Validate(ctx, res.TicketToken)
	require.NoError(t, err)
	assert.False(t, result.Accepted)
	assert.Equal(t, ReasonExpired, result.Reason)
}

func TestValidateMalformedAndTampered(t *testing.T) {
	_, svc, val, _ := validatorFixture(t)
	ctx := context.Background()

	result, err := val.Validate(ctx, "not a token")
	require.NoError(t, err)
	assert.Equal(t, ReasonMalformedToken, result.Reason)

	res, _, err := svc.CreateReservation(ctx, 1, 1, []string{"A4"})
	require.NoError(t, err)
	tampered := strings.Replace(res.TicketToken, "UserId:1", "UserId:2", 1)
	result, err = val.Validate(ctx, tampered)
	require.NoError(t, err)
	assert.Equal(t, ReasonTamperedToken, result.Reason)
}

func TestValidateUnknownReservation(t *testing.T) {
	_, _, val, _ := validatorFixture(t)

	// Properly signed token whose reservation id does not exist.
	token := ticket.NewCodec("door-secret").Encode(12345, 1, 1)
	result, err := val.Validate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, ReasonNotFound, result.Reason)
}

func TestValidateCancelledReservation(t *testing.T) {
	_, svc, val, _ := validatorFixture(t)
	ctx := context.Background()

	res, _, err := svc.CreateReservation(ctx, 1, 1, []string{"A5"})
	require.NoError(t, err)
	require.NoError(t, svc.CancelReservation(ctx, 1, res.ID))

	result, err := val.Validate(ctx, res.TicketToken)
	require.NoError(t, err)
	assert.False(t, result.Accepted)
	assert.Equal(t, ReasonCancelled, result.Reason)
}

// Two simultaneous scans of one token must produce exactly one
// acceptance and one ALREADY_VALIDATED rejection.
func TestValidateConcurrentScans(t *testing.T) {
	_, svc, val, _ := validatorFixture(t)
	ctx := context.Background()

	res, _, err := svc.CreateReservation(ctx, 1, 1, []string{"A6"})
	require.NoError(t, err)

	const scans = 8
	results := make([]ValidationResult, scans)
	errs := make([]error, scans)
	var wg sync.WaitGroup
	for i := 0; i < scans; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = val.Validate(ctx, res.TicketToken)
		}(i)
	}
	wg.Wait()

	accepted := 0
	for i, r := range results {
		require.NoError(t, errs[i])
		if r.Accepted {
			accepted++
		} else {
			assert.Equal(t, ReasonAlreadyValidated, r.Reason)
		}
	}
	assert.Equal(t, 1, accepted)
}
