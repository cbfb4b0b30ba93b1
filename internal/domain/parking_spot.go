package domain

import "time"

// ParkingSpot Model
//
// A spot is free when VehicleNumber, UserID and BookedAt are all nil and
// IsOccupied is false; occupied means all three are set. The only write
// paths allowed to flip occupancy are the store's Claim and Release
// conditional updates.
type ParkingSpot struct {
	ID            uint       `gorm:"primaryKey"`                           // Primary key
	LotID         uint       `gorm:"not null;uniqueIndex:idx_lot_number"`  // Foreign key to ParkingLot
	SpotNumber    int        `gorm:"not null;uniqueIndex:idx_lot_number"`  // Unique within the lot
	IsOccupied    bool       `gorm:"not null;default:false"`               // Occupancy flag
	VehicleNumber *string    // Vehicle plate while occupied
	UserID        *uint      // Owning user while occupied
	BookedAt      *time.Time // Booking timestamp while occupied
}
