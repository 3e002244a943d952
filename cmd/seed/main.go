// Command seed populates the users table with fake records for local
// development and manual testing.
package main

import (
	"context"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/fkhayef/spartan/internal/config"
	"github.com/fkhayef/spartan/internal/database"
)

const seedCount = 30

func main() {
	log := logrus.New()

	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}

	driver, dsn, err := cfg.Database()
	if err != nil {
		log.WithError(err).Fatal("Failed to resolve database configuration")
	}

	db, err := database.Open(driver, dsn)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.EnsureSchema(ctx); err != nil {
		log.WithError(err).Fatal("Failed to ensure database schema")
	}

	now := time.Now().UTC()
	twoMonthsAgo := now.AddDate(0, 0, -60)

	query := db.Rebind(`
		INSERT INTO users (username, email, password, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`)

	inserted := 0
	for i := 0; i < seedCount; i++ {
		createdAt := gofakeit.DateRange(twoMonthsAgo, now)
		updatedAt := gofakeit.DateRange(createdAt, now)

		_, err := db.ExecContext(ctx, query,
			gofakeit.Username(),
			gofakeit.Email(),
			gofakeit.Password(true, true, true, true, false, 16),
			createdAt,
			updatedAt,
		)
		if err != nil {
			// fake usernames/emails can collide with earlier runs
			if database.IsUniqueViolation(err) {
				log.WithError(err).Warn("Skipping duplicate fake user")
				continue
			}
			log.WithError(err).Fatal("Failed to insert fake user")
		}
		inserted++
	}

	log.WithField("inserted", inserted).Info("Seeding complete")
}
