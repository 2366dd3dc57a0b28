// seed-units upserts the default measurement units for one restaurant.
// Run it after creating a tenant so the unit picker is not empty.
//
// Usage: RESTAURANT_ID=1 go run ./cmd/seed-units
package main

import (
	"context"
	"log"
	"os"
	"strconv"

	"restaurant-inventory/internal/db"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	restaurantID, err := strconv.Atoi(os.Getenv("RESTAURANT_ID"))
	if err != nil || restaurantID <= 0 {
		log.Fatal("RESTAURANT_ID must be set to a positive integer")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer pool.Close()

	defaults := []struct {
		code      string
		name      string
		precision int
	}{
		{"G", "Grams", 0},
		{"KG", "Kilograms", 3},
		{"ML", "Milliliters", 0},
		{"L", "Liters", 3},
		{"CT", "Count", 0},
	}

	for _, u := range defaults {
		_, err := pool.Exec(ctx, `
			INSERT INTO units (restaurant_id, code, name, precision)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (restaurant_id, code)
			DO UPDATE SET name = EXCLUDED.name, precision = EXCLUDED.precision, updated_at = NOW()
		`, restaurantID, u.code, u.name, u.precision)
		if err != nil {
			log.Fatalf("Failed to upsert unit %s: %v", u.code, err)
		}
		log.Printf("Upserted unit %s", u.code)
	}
	log.Println("Units seeded")
}
