// Package allocation mediates the transition of a parking spot between
// free and occupied. Book and Release are the only entry points that may
// flip occupancy; everything else in the system reads spot state.
package allocation

import (
	"context" // Context for store operations
	"errors"  // Sentinel errors
	"time"    // Booking timestamps

	"parking_system/internal/domain" // Domain models

	"github.com/sirupsen/logrus" // Logging library
)

// Errors surfaced to the request boundary
var (
	ErrNoAvailableSpot         = errors.New("no available spot in this lot")
	ErrNotAuthorizedOrNotFound = errors.New("spot not found or not owned by this user")
	ErrVehicleRequired         = errors.New("vehicle number is required")
)

// maxClaimAttempts bounds the rescan loop when a concurrent booking wins
// the claim race. Each lost race means another request occupied the spot,
// so the rescan lands on the next free number or finds the lot full.
const maxClaimAttempts = 5

// BookingView is an active booking joined with its lot for display.
type BookingView struct {
	domain.ParkingSpot
	LotName      string  // Lot name
	Location     string  // Lot location
	PricePerHour float64 // Hourly price of the lot
}

// SpotStore is the slice of persistence the allocator needs.
type SpotStore interface {
	// FirstFreeSpot returns the unoccupied spot of the lot with the lowest
	// spot number, or nil when the lot is full.
	FirstFreeSpot(ctx context.Context, lotID uint) (*domain.ParkingSpot, error)
	// ClaimSpot conditionally marks the spot occupied. It reports false
	// when the spot was already occupied (a lost race), without error.
	ClaimSpot(ctx context.Context, spotID, userID uint, vehicleNumber string, bookedAt time.Time) (bool, error)
	// ReleaseSpot conditionally clears the spot when it is occupied by
	// userID. It reports false when no such row exists.
	ReleaseSpot(ctx context.Context, spotID, userID uint) (bool, error)
	// UserBookings returns the user's occupied spots joined with lot details.
	UserBookings(ctx context.Context, userID uint) ([]BookingView, error)
}

// Service implements the spot allocation core.
type Service struct {
	spots SpotStore
}

// NewService returns an allocation service backed by the given store.
func NewService(spots SpotStore) *Service {
	return &Service{spots: spots}
}

// Book assigns the lowest-numbered free spot of the lot to the user.
// The scan-then-claim sequence is retried on a lost race: the claim is an
// atomic conditional update, so two concurrent bookings can both see the
// same free spot but only one write succeeds.
func (s *Service) Book(ctx context.Context, lotID, userID uint, vehicleNumber string) (*domain.ParkingSpot, error) {
	if vehicleNumber == "" {
		return nil, ErrVehicleRequired
	}
	for attempt := 1; attempt <= maxClaimAttempts; attempt++ {
		spot, err := s.spots.FirstFreeSpot(ctx, lotID)
		if err != nil {
			return nil, err
		}
		if spot == nil {
			// Lot is full
			return nil, ErrNoAvailableSpot
		}
		bookedAt := time.Now()
		claimed, err := s.spots.ClaimSpot(ctx, spot.ID, userID, vehicleNumber, bookedAt)
		if err != nil {
			return nil, err
		}
		if !claimed {
			// Lost the race for this spot, rescan
			logrus.WithFields(logrus.Fields{
				"lot_id":  lotID,
				"user_id": userID,
				"spot_id": spot.ID,
				"attempt": attempt,
			}).Warn("Spot claim lost race, rescanning")
			continue
		}
		// Reflect the claim on the returned record
		spot.IsOccupied = true
		spot.VehicleNumber = &vehicleNumber
		spot.UserID = &userID
		spot.BookedAt = &bookedAt
		logrus.WithFields(logrus.Fields{
			"lot_id":      lotID,
			"user_id":     userID,
			"spot_id":     spot.ID,
			"spot_number": spot.SpotNumber,
			"vehicle":     vehicleNumber,
		}).Info("Spot booked")
		return spot, nil
	}
	return nil, ErrNoAvailableSpot
}

// Release frees the spot if and only if it is currently occupied by userID.
// Ownership is the sole authorization check; an admin cannot release a
// user's spot through this path. Releasing twice fails the second time
// because the conditional update no longer matches a row.
func (s *Service) Release(ctx context.Context, spotID, userID uint) error {
	released, err := s.spots.ReleaseSpot(ctx, spotID, userID)
	if err != nil {
		return err
	}
	if !released {
		return ErrNotAuthorizedOrNotFound
	}
	logrus.WithFields(logrus.Fields{
		"spot_id": spotID,
		"user_id": userID,
	}).Info("Spot released")
	return nil
}

// Bookings returns the user's active bookings for the dashboard.
func (s *Service) Bookings(ctx context.Context, userID uint) ([]BookingView, error) {
	return s.spots.UserBookings(ctx, userID)
}
