package model

import "time"

// Theater describes a single auditorium inside a cinema.  Seat
// capacity is fixed at provisioning time: one Seat row is generated
// per capacity unit.  Deleting a theater cascades to its seats.
//
// Fields:
//  ID            – primary key identifier.
//  CinemaID      – cinema the theater belongs to.
//  Name          – display name (e.g. "Salle A").
//  Capacity      – number of seats the theater holds.
//  Quality       – projection quality installed in this theater.
//  IsOperational – whether the theater currently accepts showtimes.
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type Theater struct {
	ID            uint64            // theaters.id
	CinemaID      uint64            // theaters.cinema_id
	Name          string            // theaters.name
	Capacity      uint32            // theaters.capacity
	Quality       ProjectionQuality // theaters.quality
	IsOperational bool              // theaters.is_operational
	CreatedAt     time.Time         // theaters.created_at
	UpdatedAt     time.Time         // theaters.updated_at
}
