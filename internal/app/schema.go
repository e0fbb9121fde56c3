package app

import (
	"context"
	"database/sql"
	"fmt"
)

// schemaStatements create the tables and constraints the service relies
// on. Statements are idempotent so startup against an existing database
// is a no-op.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS organizations (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		total_earnings DOUBLE PRECISION NOT NULL DEFAULT 0,
		no_of_trips INTEGER NOT NULL DEFAULT 0
	)`,

	`CREATE TABLE IF NOT EXISTS drivers (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		license_number TEXT NOT NULL,
		organization_id UUID NOT NULL REFERENCES organizations (id),
		total_earnings DOUBLE PRECISION NOT NULL DEFAULT 0,
		no_of_trips INTEGER NOT NULL DEFAULT 0
	)`,

	`CREATE TABLE IF NOT EXISTS passengers (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		phone TEXT
	)`,

	`CREATE TABLE IF NOT EXISTS vehicles (
		id UUID PRIMARY KEY,
		registration_number TEXT NOT NULL UNIQUE,
		organization_id UUID NOT NULL REFERENCES organizations (id),
		driver_id UUID UNIQUE REFERENCES drivers (id),
		vehicle_type TEXT NOT NULL,
		company_made TEXT NOT NULL DEFAULT '',
		model TEXT NOT NULL DEFAULT '',
		color TEXT NOT NULL DEFAULT '',
		seating_capacity INTEGER NOT NULL,
		available_seat INTEGER NOT NULL,
		CHECK (available_seat >= 0 AND available_seat <= seating_capacity)
	)`,

	`CREATE TABLE IF NOT EXISTS seats (
		id UUID PRIMARY KEY,
		vehicle_id UUID NOT NULL REFERENCES vehicles (id),
		seat_number TEXT NOT NULL,
		is_occupied BOOLEAN NOT NULL DEFAULT FALSE,
		reserved_for_driver BOOLEAN NOT NULL DEFAULT FALSE,
		reserved_for_conductor BOOLEAN NOT NULL DEFAULT FALSE,
		UNIQUE (vehicle_id, seat_number)
	)`,

	`CREATE TABLE IF NOT EXISTS trips (
		id UUID PRIMARY KEY,
		trip_id TEXT NOT NULL UNIQUE,
		organization_id UUID NOT NULL REFERENCES organizations (id),
		vehicle_id UUID NOT NULL UNIQUE REFERENCES vehicles (id),
		from_location TEXT NOT NULL,
		to_location TEXT NOT NULL,
		start_datetime TIMESTAMPTZ NOT NULL,
		end_datetime TIMESTAMPTZ NOT NULL,
		is_completed BOOLEAN NOT NULL DEFAULT FALSE,
		total_earnings DOUBLE PRECISION NOT NULL DEFAULT 0,
		passenger_count INTEGER NOT NULL DEFAULT 0,
		last_updated_by TEXT
	)`,

	`CREATE TABLE IF NOT EXISTS trip_prices (
		trip_id UUID PRIMARY KEY REFERENCES trips (id),
		price DOUBLE PRECISION NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS bookings (
		id UUID PRIMARY KEY,
		booking_id TEXT NOT NULL UNIQUE,
		passenger_id UUID NOT NULL REFERENCES passengers (id),
		trip_id UUID NOT NULL REFERENCES trips (id),
		trip_date DATE NOT NULL,
		num_passengers INTEGER NOT NULL,
		price DOUBLE PRECISION NOT NULL,
		is_confirmed BOOLEAN NOT NULL DEFAULT FALSE,
		is_paid BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS booking_seats (
		booking_id UUID NOT NULL REFERENCES bookings (id) ON DELETE CASCADE,
		seat_id UUID NOT NULL REFERENCES seats (id),
		PRIMARY KEY (booking_id, seat_id)
	)`,

	`CREATE TABLE IF NOT EXISTS daily_earnings (
		id UUID PRIMARY KEY,
		trip_id UUID NOT NULL REFERENCES trips (id),
		trip_date DATE NOT NULL,
		total_earnings DOUBLE PRECISION NOT NULL,
		num_passengers INTEGER NOT NULL,
		is_completed BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (trip_id, trip_date)
	)`,

	`CREATE TABLE IF NOT EXISTS daily_earnings_bookings (
		daily_earnings_id UUID NOT NULL REFERENCES daily_earnings (id) ON DELETE CASCADE,
		booking_id UUID NOT NULL REFERENCES bookings (id) ON DELETE CASCADE,
		PRIMARY KEY (daily_earnings_id, booking_id)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_bookings_trip_id ON bookings (trip_id)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_passenger_id ON bookings (passenger_id)`,
	`CREATE INDEX IF NOT EXISTS idx_seats_vehicle_id ON seats (vehicle_id)`,
	`CREATE INDEX IF NOT EXISTS idx_daily_earnings_trip_id ON daily_earnings (trip_id)`,
}

// EnsureSchema creates the database schema if it does not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	return nil
}
