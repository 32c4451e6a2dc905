// Package pricing computes the per-seat price of a showtime from its
// projection quality, a signed adjustment and an optional promotion
// discount.  It is pure: no I/O, no clock, fully deterministic.  The
// result is used once, when a showtime is scheduled; bookings reuse
// the stored price.
package pricing

import (
	"errors"
	"fmt"

	"github.com/kinohall/cinema-ticketing-engine/internal/model"
)

// ErrInvalidQuality is returned when the projection quality is not in
// the base price table.  This indicates a data or config defect and
// must abort the scheduling operation; it is never retried.
var ErrInvalidQuality = errors.New("invalid projection quality")

// ErrInvalidPrice is returned when the computed price is not strictly
// positive, which happens when a misconfigured negative adjustment
// swallows the base price.
var ErrInvalidPrice = errors.New("invalid price")

// promotionNum/promotionDen apply the fixed 10% promotion discount in
// integer math (cents × 9 / 10, truncated toward zero).
const (
	promotionNum = 9
	promotionDen = 10
)

// basePriceCents maps each projection quality to its base price.
var basePriceCents = map[model.ProjectionQuality]int64{
	model.QualityStandard2D: 400,
	model.Quality3D:         550,
	model.Quality4K:         600,
	model.QualityIMAX:       800,
	model.Quality4DX:        900,
	model.QualityPremium:    700,
}

// Compute returns the final per-seat price in cents:
// base(quality) + adjustment, times 0.9 when isPromotion is set.
// It fails with ErrInvalidQuality for unknown qualities and with
// ErrInvalidPrice when the result is not strictly positive.
func Compute(quality model.ProjectionQuality, adjustmentCents int64, isPromotion bool) (int64, error) {
	base, ok := basePriceCents[quality]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidQuality, quality)
	}
	price := base + adjustmentCents
	if isPromotion {
		price = price * promotionNum / promotionDen
	}
	if price <= 0 {
		return 0, fmt.Errorf("%w: %d cents (quality %s, adjustment %d)", ErrInvalidPrice, price, quality, adjustmentCents)
	}
	return price, nil
}

// BasePriceCents returns the base price for a quality without any
// adjustment or promotion applied.  It reports false for qualities
// missing from the table.
func BasePriceCents(quality model.ProjectionQuality) (int64, bool) {
	base, ok := basePriceCents[quality]
	return base, ok
}
