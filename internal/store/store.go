// Package store is the GORM/MySQL persistence layer. It implements the
// narrow store interfaces declared by the allocation, lots and auth
// packages against the three relational tables.
package store

import (
	"context" // Context for database operations
	"errors"  // Error inspection
	"time"    // Booking timestamps

	"parking_system/internal/allocation" // Allocator store interface
	"parking_system/internal/domain"     // Domain models
	"parking_system/internal/lots"       // Admin store interface

	"gorm.io/gorm" // GORM ORM library
)

// Store implements allocation.SpotStore, lots.LotStore and auth.UserStore.
type Store struct {
	db *gorm.DB
}

// New returns a Store over the given database handle.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// --- allocation.SpotStore ---

// FirstFreeSpot returns the lowest-numbered unoccupied spot of the lot,
// or nil when every spot is taken.
func (s *Store) FirstFreeSpot(ctx context.Context, lotID uint) (*domain.ParkingSpot, error) {
	var spot domain.ParkingSpot
	err := s.db.WithContext(ctx).
		Where("lot_id = ? AND is_occupied = ?", lotID, false).
		Order("spot_number asc").
		First(&spot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil // Lot is full
	}
	if err != nil {
		return nil, err
	}
	return &spot, nil
}

// ClaimSpot flips the spot to occupied only if it is still free. The
// is_occupied guard plus the rows-affected check make the claim atomic:
// of two concurrent bookings for the same spot exactly one matches.
func (s *Store) ClaimSpot(ctx context.Context, spotID, userID uint, vehicleNumber string, bookedAt time.Time) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&domain.ParkingSpot{}).
		Where("id = ? AND is_occupied = ?", spotID, false).
		Updates(map[string]any{
			"is_occupied":    true,
			"vehicle_number": vehicleNumber,
			"user_id":        userID,
			"booked_at":      bookedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ReleaseSpot clears the spot only if it is occupied by userID, keeping
// the occupied ⇔ vehicle+user invariant in a single row update.
func (s *Store) ReleaseSpot(ctx context.Context, spotID, userID uint) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&domain.ParkingSpot{}).
		Where("id = ? AND user_id = ? AND is_occupied = ?", spotID, userID, true).
		Updates(map[string]any{
			"is_occupied":    false,
			"vehicle_number": nil,
			"user_id":        nil,
			"booked_at":      nil,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// UserBookings returns the user's occupied spots joined with lot details.
func (s *Store) UserBookings(ctx context.Context, userID uint) ([]allocation.BookingView, error) {
	var bookings []allocation.BookingView
	err := s.db.WithContext(ctx).
		Model(&domain.ParkingSpot{}).
		Select("parking_spots.*, parking_lots.name AS lot_name, parking_lots.location, parking_lots.price_per_hour").
		Joins("JOIN parking_lots ON parking_lots.id = parking_spots.lot_id").
		Where("parking_spots.user_id = ? AND parking_spots.is_occupied = ?", userID, true).
		Order("parking_spots.booked_at asc").
		Scan(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

// --- lots.LotStore ---

// CreateLot inserts the lot and its spots numbered 1..TotalSpots in one
// transaction.
func (s *Store) CreateLot(ctx context.Context, lot *domain.ParkingLot) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(lot).Error; err != nil {
			return err
		}
		spots := make([]domain.ParkingSpot, 0, lot.TotalSpots)
		for n := 1; n <= lot.TotalSpots; n++ {
			spots = append(spots, domain.ParkingSpot{LotID: lot.ID, SpotNumber: n})
		}
		return tx.Create(&spots).Error
	})
}

// LotByID returns the lot or nil when absent.
func (s *Store) LotByID(ctx context.Context, lotID uint) (*domain.ParkingLot, error) {
	var lot domain.ParkingLot
	err := s.db.WithContext(ctx).First(&lot, lotID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &lot, nil
}

// ResizeLot updates the lot row and adjusts its spot rows. Growth appends
// spots numbered oldTotal+1..new total; shrink deletes only unoccupied
// spots above the new total, leaving occupied stragglers in place.
func (s *Store) ResizeLot(ctx context.Context, lot *domain.ParkingLot, oldTotal int) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(lot).Error; err != nil {
			return err
		}
		if lot.TotalSpots > oldTotal {
			spots := make([]domain.ParkingSpot, 0, lot.TotalSpots-oldTotal)
			for n := oldTotal + 1; n <= lot.TotalSpots; n++ {
				spots = append(spots, domain.ParkingSpot{LotID: lot.ID, SpotNumber: n})
			}
			return tx.Create(&spots).Error
		}
		if lot.TotalSpots < oldTotal {
			return tx.
				Where("lot_id = ? AND spot_number > ? AND is_occupied = ?", lot.ID, lot.TotalSpots, false).
				Delete(&domain.ParkingSpot{}).Error
		}
		return nil
	})
}

// OccupiedCount returns the number of occupied spots in the lot.
func (s *Store) OccupiedCount(ctx context.Context, lotID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&domain.ParkingSpot{}).
		Where("lot_id = ? AND is_occupied = ?", lotID, true).
		Count(&count).Error
	return count, err
}

// DeleteLot removes the spot rows then the lot row. The occupied check
// runs inside the same transaction so a booking racing the delete cannot
// strand an occupied spot without its lot.
func (s *Store) DeleteLot(ctx context.Context, lotID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var occupied int64
		if err := tx.Model(&domain.ParkingSpot{}).
			Where("lot_id = ? AND is_occupied = ?", lotID, true).
			Count(&occupied).Error; err != nil {
			return err
		}
		if occupied > 0 {
			return lots.ErrLotHasOccupiedSpots
		}
		if err := tx.Where("lot_id = ?", lotID).Delete(&domain.ParkingSpot{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.ParkingLot{}, lotID).Error
	})
}

// Overview returns every lot with per-lot occupancy counts. Counts come
// from the spots table, not the declared total, so a lenient shrink that
// left occupied stragglers behind is visible on the dashboard.
func (s *Store) Overview(ctx context.Context) ([]lots.LotStats, error) {
	var stats []lots.LotStats
	err := s.db.WithContext(ctx).
		Model(&domain.ParkingLot{}).
		Select(`parking_lots.*,
			COUNT(parking_spots.id) AS spot_count,
			COALESCE(SUM(CASE WHEN parking_spots.is_occupied THEN 1 ELSE 0 END), 0) AS occupied_spots,
			COALESCE(SUM(CASE WHEN parking_spots.is_occupied THEN 0 ELSE 1 END), 0) AS available_spots`).
		Joins("LEFT JOIN parking_spots ON parking_spots.lot_id = parking_lots.id").
		Group("parking_lots.id").
		Order("parking_lots.created_at desc").
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// SpotsWithUsers returns the lot's spots with occupant usernames.
func (s *Store) SpotsWithUsers(ctx context.Context, lotID uint) ([]lots.SpotWithUser, error) {
	var spots []lots.SpotWithUser
	err := s.db.WithContext(ctx).
		Model(&domain.ParkingSpot{}).
		Select("parking_spots.*, users.username").
		Joins("LEFT JOIN users ON users.id = parking_spots.user_id").
		Where("parking_spots.lot_id = ?", lotID).
		Order("parking_spots.spot_number asc").
		Scan(&spots).Error
	if err != nil {
		return nil, err
	}
	return spots, nil
}

// --- auth.UserStore ---

// UserByUsername returns the user or nil when absent.
func (s *Store) UserByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// IdentityTaken reports whether the username or email is already in use.
func (s *Store) IdentityTaken(ctx context.Context, username, email string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error
	return count > 0, err
}

// CreateUser inserts the user row.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	return s.db.WithContext(ctx).Create(user).Error
}
