package domain

import "time"

// ParkingLot Model
type ParkingLot struct {
	ID           uint      `gorm:"primaryKey"`         // Primary key
	Name         string    `gorm:"not null"`           // Lot name
	Location     string    `gorm:"not null"`           // Lot location
	TotalSpots   int       `gorm:"not null"`           // Declared capacity
	PricePerHour float64   `gorm:"not null;default:0"` // Hourly price (stored, never charged)
	CreatedAt    time.Time `gorm:"autoCreateTime"`     // Timestamp of creation
}
