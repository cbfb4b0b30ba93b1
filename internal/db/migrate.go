package db

import (
	"parking_system/internal/domain" // Domain models

	"github.com/sirupsen/logrus" // Logging library
	"golang.org/x/crypto/bcrypt" // Password hashing for the seed admin

	"gorm.io/driver/mysql" // MySQL driver for GORM
	"gorm.io/gorm"         // GORM ORM library
)

// Bootstrap admin identity seeded when no admin exists yet
const (
	seedAdminUsername = "admin"
	seedAdminEmail    = "admin@parking.com"
	seedAdminPassword = "admin123"
)

// Migrate opens a connection to the database and runs the schema
// migration plus the admin bootstrap. Used by the migrate binary.
func Migrate(dsn string) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("failed to connect database: %v", err)
	}
	if err := MigrateDB(db); err != nil {
		logrus.Fatalf("migration failed: %v", err)
	}
	logrus.Info("Migration completed.")
}

// MigrateDB creates tables, constraints and indexes for the three
// relational tables and seeds the bootstrap admin.
func MigrateDB(db *gorm.DB) error {
	if err := db.AutoMigrate(&domain.User{}, &domain.ParkingLot{}, &domain.ParkingSpot{}); err != nil {
		return err
	}
	return SeedAdmin(db)
}

// SeedAdmin creates the bootstrap admin identity if no admin exists.
func SeedAdmin(db *gorm.DB) error {
	var count int64
	if err := db.Model(&domain.User{}).Where("is_admin = ?", true).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil // An admin already exists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(seedAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := domain.User{
		Username:     seedAdminUsername,
		Email:        seedAdminEmail,
		PasswordHash: string(hash),
		IsAdmin:      true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{"username": seedAdminUsername}).Info("Seeded bootstrap admin")
	return nil
}
