// Package lots implements the admin-side lot and spot administration:
// creating a lot with its numbered spots, resizing, and deleting.
package lots

import (
	"context" // Context for store operations
	"errors"  // Sentinel errors

	"parking_system/internal/domain" // Domain models

	"github.com/sirupsen/logrus" // Logging library
)

// Errors surfaced to the request boundary
var (
	ErrLotNotFound         = errors.New("parking lot not found")
	ErrLotHasOccupiedSpots = errors.New("parking lot has occupied spots")
	ErrInvalidCapacity     = errors.New("total spots must be at least 1")
	ErrInvalidPrice        = errors.New("price per hour must not be negative")
)

// LotStats is a lot joined with its per-spot occupancy counts.
type LotStats struct {
	domain.ParkingLot
	SpotCount      int // Actual spot rows (may exceed TotalSpots after a lenient shrink)
	OccupiedSpots  int // Spots currently occupied
	AvailableSpots int // Spots currently free
}

// SpotWithUser is a spot joined with its occupant's username, if any.
type SpotWithUser struct {
	domain.ParkingSpot
	Username *string // Occupant username, nil while free
}

// LotStore is the slice of persistence the admin component needs.
type LotStore interface {
	// CreateLot transactionally inserts the lot and spots numbered 1..TotalSpots.
	CreateLot(ctx context.Context, lot *domain.ParkingLot) error
	// LotByID returns the lot or nil when absent.
	LotByID(ctx context.Context, lotID uint) (*domain.ParkingLot, error)
	// ResizeLot transactionally updates the lot row, appends spots numbered
	// oldTotal+1..lot.TotalSpots on growth, and on shrink deletes only the
	// unoccupied spots whose number exceeds the new total.
	ResizeLot(ctx context.Context, lot *domain.ParkingLot, oldTotal int) error
	// OccupiedCount returns the number of occupied spots in the lot.
	OccupiedCount(ctx context.Context, lotID uint) (int64, error)
	// DeleteLot transactionally deletes all spot rows then the lot row,
	// refusing with ErrLotHasOccupiedSpots while any spot is occupied.
	DeleteLot(ctx context.Context, lotID uint) error
	// Overview returns every lot with its occupancy counts.
	Overview(ctx context.Context) ([]LotStats, error)
	// SpotsWithUsers returns the lot's spots ordered by spot number,
	// joined with occupant usernames.
	SpotsWithUsers(ctx context.Context, lotID uint) ([]SpotWithUser, error)
}

// Service implements lot administration on top of a LotStore.
type Service struct {
	store LotStore
}

// NewService returns a lot administration service.
func NewService(store LotStore) *Service {
	return &Service{store: store}
}

// Create validates the request and inserts the lot plus its spot rows.
func (s *Service) Create(ctx context.Context, name, location string, totalSpots int, pricePerHour float64) (*domain.ParkingLot, error) {
	if totalSpots < 1 {
		return nil, ErrInvalidCapacity
	}
	if pricePerHour < 0 {
		return nil, ErrInvalidPrice
	}
	lot := &domain.ParkingLot{
		Name:         name,
		Location:     location,
		TotalSpots:   totalSpots,
		PricePerHour: pricePerHour,
	}
	if err := s.store.CreateLot(ctx, lot); err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"lot_id":      lot.ID,
		"name":        name,
		"total_spots": totalSpots,
	}).Info("Parking lot created")
	return lot, nil
}

// Update resizes the lot. Growth appends new spot numbers above the old
// total. Shrinking removes only unoccupied spots above the new total:
// occupied spots in the trimmed range are left in place, so the actual
// row count can sit above the declared total until they are released.
func (s *Service) Update(ctx context.Context, lotID uint, name, location string, totalSpots int, pricePerHour float64) error {
	if totalSpots < 1 {
		return ErrInvalidCapacity
	}
	if pricePerHour < 0 {
		return ErrInvalidPrice
	}
	lot, err := s.store.LotByID(ctx, lotID)
	if err != nil {
		return err
	}
	if lot == nil {
		return ErrLotNotFound
	}
	oldTotal := lot.TotalSpots
	lot.Name = name
	lot.Location = location
	lot.TotalSpots = totalSpots
	lot.PricePerHour = pricePerHour
	if err := s.store.ResizeLot(ctx, lot, oldTotal); err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"lot_id":    lotID,
		"old_total": oldTotal,
		"new_total": totalSpots,
	}).Info("Parking lot updated")
	return nil
}

// Delete removes the lot and all its spot rows. A lot with at least one
// occupied spot cannot be deleted.
func (s *Service) Delete(ctx context.Context, lotID uint) error {
	lot, err := s.store.LotByID(ctx, lotID)
	if err != nil {
		return err
	}
	if lot == nil {
		return ErrLotNotFound
	}
	if err := s.store.DeleteLot(ctx, lotID); err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{"lot_id": lotID, "name": lot.Name}).Info("Parking lot deleted")
	return nil
}

// Lot returns a single lot for the edit form.
func (s *Service) Lot(ctx context.Context, lotID uint) (*domain.ParkingLot, error) {
	lot, err := s.store.LotByID(ctx, lotID)
	if err != nil {
		return nil, err
	}
	if lot == nil {
		return nil, ErrLotNotFound
	}
	return lot, nil
}

// Overview returns every lot with occupancy counts for the dashboards.
func (s *Service) Overview(ctx context.Context) ([]LotStats, error) {
	return s.store.Overview(ctx)
}

// Spots returns the lot's spots with occupant usernames for the admin view.
func (s *Service) Spots(ctx context.Context, lotID uint) (*domain.ParkingLot, []SpotWithUser, error) {
	lot, err := s.store.LotByID(ctx, lotID)
	if err != nil {
		return nil, nil, err
	}
	if lot == nil {
		return nil, nil, ErrLotNotFound
	}
	spots, err := s.store.SpotsWithUsers(ctx, lotID)
	if err != nil {
		return nil, nil, err
	}
	return lot, spots, nil
}
