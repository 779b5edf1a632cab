package migration

import (
	"gorm.io/gorm"

	"github.com/beesaferoot/rental-engine/internal/models"
)

// Models lists every model the registered migrations create.
func Models() []interface{} {
	return []interface{}{&models.User{}, &models.Property{}, &models.Image{}, &models.Booking{}}
}

func init() {
	RegisterMigration(&Migration{
		Version: "20240601000001",
		Name:    "create_users",
		Up: func(db *gorm.DB) error {
			return db.Migrator().CreateTable(&models.User{})
		},
		Down: func(db *gorm.DB) error {
			return db.Migrator().DropTable(&models.User{})
		},
	})

	RegisterMigration(&Migration{
		Version: "20240601000002",
		Name:    "create_properties",
		Up: func(db *gorm.DB) error {
			return db.Migrator().CreateTable(&models.Property{}, &models.Image{})
		},
		Down: func(db *gorm.DB) error {
			return db.Migrator().DropTable(&models.Image{}, &models.Property{})
		},
	})

	RegisterMigration(&Migration{
		Version: "20240601000003",
		Name:    "create_bookings",
		Up: func(db *gorm.DB) error {
			return db.Migrator().CreateTable(&models.Booking{})
		},
		Down: func(db *gorm.DB) error {
			return db.Migrator().DropTable(&models.Booking{})
		},
	})
}
