package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/sannchesda/hotel-reservation-backend/internal/config"
	"github.com/sannchesda/hotel-reservation-backend/internal/database"
)

// Creates the schema if missing and loads the sample room inventory.
// Safe to run repeatedly; existing rooms are left untouched.
func main() {
	var dbURLFlag string
	flag.StringVar(&dbURLFlag, "database-url", "", "PostgreSQL connection string (overrides DATABASE_URL)")
	flag.Parse()

	// Try loading .env from current working directory (optional)
	_ = godotenv.Load()

	dbURL := dbURLFlag
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set and -database-url was not provided")
	}

	dbCfg := config.DatabaseConfig{
		URL:                dbURL,
		MaxConnections:     5,
		MaxIdleConnections: 2,
	}

	db, err := database.NewConnection(dbCfg)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	pg, ok := db.(*database.PostgresDB)
	if !ok {
		log.Fatal("failed to cast database connection to PostgresDB")
	}

	fmt.Println("Connected to database. Applying schema...")
	if _, err := pg.DB.Exec(schemaSQL); err != nil {
		log.Fatalf("failed to apply schema: %v", err)
	}

	fmt.Println("Seeding sample rooms...")
	for _, room := range sampleRooms {
		res, err := pg.DB.Exec(`
			INSERT INTO rooms (number, room_type, price_cents, capacity, description)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (number) DO NOTHING`,
			room.number, room.roomType, room.priceCents, room.capacity, room.description,
		)
		if err != nil {
			log.Fatalf("failed to seed room %s: %v", room.number, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			fmt.Printf("Created room: %s - %s\n", room.number, room.roomType)
		} else {
			fmt.Printf("Room %s already exists\n", room.number)
		}
	}

	fmt.Println("Successfully populated database with sample data")
}

type seedRoom struct {
	number      string
	roomType    string
	priceCents  int64
	capacity    int
	description string
}

var sampleRooms = []seedRoom{
	{"101", "Standard Room", 8000, 2, "Comfortable standard room with city view"},
	{"102", "Standard Room", 8500, 2, "Standard room with balcony"},
	{"201", "Deluxe Room", 12000, 3, "Spacious deluxe room with ocean view"},
	{"202", "Deluxe Room", 13000, 3, "Deluxe room with city view and mini bar"},
	{"301", "Family Suite", 18000, 4, "Large family suite with kitchenette"},
	{"302", "Family Suite", 20000, 4, "Premium family suite with ocean view"},
	{"401", "Presidential Suite", 35000, 6, "Luxury presidential suite with all amenities"},
	{"501", "Penthouse", 50000, 8, "Top floor penthouse with panoramic views"},
}

const schemaSQL = `
CREATE EXTENSION IF NOT EXISTS "pgcrypto";

DO $$ BEGIN
    CREATE TYPE booking_status AS ENUM ('PENDING', 'CONFIRMED', 'CANCELLED');
EXCEPTION WHEN duplicate_object THEN NULL;
END $$;

DO $$ BEGIN
    CREATE TYPE payment_status AS ENUM ('PENDING', 'PAID', 'FAILED', 'REFUNDED');
EXCEPTION WHEN duplicate_object THEN NULL;
END $$;

CREATE TABLE IF NOT EXISTS rooms (
    id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    number      TEXT NOT NULL UNIQUE,
    room_type   TEXT NOT NULL DEFAULT '',
    price_cents BIGINT NOT NULL DEFAULT 0,
    capacity    INT NOT NULL DEFAULT 1,
    description TEXT NOT NULL DEFAULT '',
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS amenities (
    id   UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS room_amenities (
    room_id    UUID NOT NULL REFERENCES rooms(id) ON DELETE CASCADE,
    amenity_id UUID NOT NULL REFERENCES amenities(id) ON DELETE CASCADE,
    PRIMARY KEY (room_id, amenity_id)
);

CREATE TABLE IF NOT EXISTS guests (
    id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    full_name  TEXT NOT NULL,
    email      TEXT NOT NULL,
    phone      TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_guests_email ON guests(email);

CREATE TABLE IF NOT EXISTS bookings (
    id             UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    reference_code TEXT NOT NULL UNIQUE,
    room_id        UUID NOT NULL REFERENCES rooms(id) ON DELETE CASCADE,
    guest_id       UUID NOT NULL REFERENCES guests(id),
    check_in       DATE NOT NULL,
    check_out      DATE NOT NULL,
    total_cents    BIGINT NOT NULL DEFAULT 0,
    status         booking_status NOT NULL DEFAULT 'PENDING',
    created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CONSTRAINT bookings_range_check CHECK (check_out > check_in)
);
CREATE INDEX IF NOT EXISTS idx_bookings_room_dates ON bookings(room_id, check_in, check_out);
CREATE INDEX IF NOT EXISTS idx_bookings_status ON bookings(status);

CREATE TABLE IF NOT EXISTS payments (
    id           UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    booking_id   UUID NOT NULL UNIQUE REFERENCES bookings(id) ON DELETE CASCADE,
    amount_cents BIGINT NOT NULL DEFAULT 0,
    status       payment_status NOT NULL DEFAULT 'PENDING',
    provider_ref TEXT NOT NULL UNIQUE,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`
