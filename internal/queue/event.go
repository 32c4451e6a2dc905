// Package queue defines message payloads exchanged over the message broker.
package queue

// ReservationConfirmedEvent is published when a reservation is
// successfully confirmed.  It contains enough information for
// downstream consumers to log, notify, or trigger analytics without
// querying the primary database.
type ReservationConfirmedEvent struct {
	ReservationID   uint64   `json:"reservation_id"`
	UserID          uint64   `json:"user_id"`
	ShowtimeID      uint64   `json:"showtime_id"`
	SeatLabels      []string `json:"seats"`
	TotalPriceCents int64    `json:"total_price_cents"`
	ConfirmedAt     string   `json:"confirmed_at"`
}

// TicketValidatedEvent is published when a scanner accepts a ticket at
// the entrance.  Downstream consumers use it for attendance tracking.
type TicketValidatedEvent struct {
	ReservationID uint64 `json:"reservation_id"`
	ShowtimeID    uint64 `json:"showtime_id"`
	UserID        uint64 `json:"user_id"`
	ValidatedAt   string `json:"validated_at"`
}
