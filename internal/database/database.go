// Package database handles the postgres connection and schema bootstrap.
package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/selforder/payments-service/internal/core/domain"
)

// Connect opens the postgres connection. TranslateError lets unique-index
// violations surface as gorm.ErrDuplicatedKey, which the repository maps to
// the already-exists domain error.
func Connect(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return db, nil
}

// AutoMigrate creates or updates the payment_orders table, including the
// unique index on order_id.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&domain.PaymentOrder{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
