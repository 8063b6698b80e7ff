package database

import (
	"log"

	"github.com/eventful/ticketing-service/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewPostgresDB(dsn string) *gorm.DB {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.Event{}, &models.Ticket{}, &models.Payment{}); err != nil {
		log.Fatalf("failed to auto-migrate: %v", err)
	}

	// Partial unique index: one non-refunded ticket per (event, user)
	db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_ticket_active
		ON tickets (event_id, user_id)
		WHERE status <> 'refunded'
	`)

	// Partial unique index: at most one completed payment per ticket
	db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_payment_completed
		ON payments (ticket_id)
		WHERE status = 'completed'
	`)

	return db
}
