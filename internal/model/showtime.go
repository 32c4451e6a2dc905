package model

import "time"

// ProjectionQuality is the presentation format of a showtime.  It
// drives the base ticket price.  Values match the quality column in
// both theaters and showtimes.
type ProjectionQuality string

// Supported projection qualities.
const (
	QualityStandard2D ProjectionQuality = "STANDARD_2D"
	Quality3D         ProjectionQuality = "3D"
	Quality4K         ProjectionQuality = "4K"
	QualityIMAX       ProjectionQuality = "IMAX"
	Quality4DX        ProjectionQuality = "4DX"
	QualityPremium    ProjectionQuality = "PREMIUM"
)

// Showtime represents a scheduled screening of a movie in a theater.
// FinalPriceCents is computed once by the pricing engine when the
// showtime is scheduled and never recomputed at booking time; a
// reservation only multiplies it by the seat count.
//
// Fields:
//  ID              – primary key identifier.
//  MovieID         – movie being screened (external catalog reference).
//  TheaterID       – theater hosting the screening.
//  CinemaID        – cinema the theater belongs to (denormalized).
//  StartsAt        – when the screening begins (UTC).
//  EndsAt          – when the screening ends (UTC).
//  Quality         – projection quality of this screening.
//  AdjustmentCents – signed per-seat price adjustment in cents.
//  IsPromotion     – whether the promotion discount applies.
//  FinalPriceCents – per-seat price locked in at scheduling time.
//  SeatsRemaining  – counter of seats not held by active reservations.
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last update timestamp.
type Showtime struct {
	ID              uint64            // showtimes.id
	MovieID         uint64            // showtimes.movie_id
	TheaterID       uint64            // showtimes.theater_id
	CinemaID        uint64            // showtimes.cinema_id
	StartsAt        time.Time         // showtimes.starts_at
	EndsAt          time.Time         // showtimes.ends_at
	Quality         ProjectionQuality // showtimes.quality
	AdjustmentCents int64             // showtimes.adjustment_cents
	IsPromotion     bool              // showtimes.is_promotion
	FinalPriceCents int64             // showtimes.final_price_cents
	SeatsRemaining  uint32            // showtimes.seats_remaining
	CreatedAt       time.Time         // showtimes.created_at
	UpdatedAt       time.Time         // showtimes.updated_at
}
