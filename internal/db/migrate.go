package db

import (
	"fmt"

	"github.com/wednesdayfs/helpdesk/internal/models"
	"gorm.io/gorm"
)

// Migrate creates or updates the schema for every persisted entity.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}
	return conn.AutoMigrate(
		&models.AdminUser{},
		&models.AdminResetToken{},
		&models.CustomerLoginToken{},
		&models.Ticket{},
		&models.TicketNote{},
		&models.TicketStatusLog{},
	)
}
