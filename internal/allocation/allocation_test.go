package allocation

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"parking_system/internal/domain"
)

// fakeSpotStore is an in-memory SpotStore. Claim and Release apply the
// same conditional-update semantics as the real store, guarded by a
// mutex so concurrent bookings exercise the claim race honestly.
type fakeSpotStore struct {
	mu    sync.Mutex
	spots map[uint]*domain.ParkingSpot

	failClaims int // Number of upcoming claims to report as lost races
}

func newFakeSpotStore(spots ...*domain.ParkingSpot) *fakeSpotStore {
	m := make(map[uint]*domain.ParkingSpot, len(spots))
	for _, s := range spots {
		m[s.ID] = s
	}
	return &fakeSpotStore{spots: m}
}

func (f *fakeSpotStore) FirstFreeSpot(_ context.Context, lotID uint) (*domain.ParkingSpot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var free []*domain.ParkingSpot
	for _, s := range f.spots {
		if s.LotID == lotID && !s.IsOccupied {
			free = append(free, s)
		}
	}
	if len(free) == 0 {
		return nil, nil
	}
	sort.Slice(free, func(i, j int) bool { return free[i].SpotNumber < free[j].SpotNumber })
	cp := *free[0]
	return &cp, nil
}

func (f *fakeSpotStore) ClaimSpot(_ context.Context, spotID, userID uint, vehicle string, bookedAt time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failClaims > 0 {
		f.failClaims--
		return false, nil
	}
	s, ok := f.spots[spotID]
	if !ok || s.IsOccupied {
		return false, nil
	}
	s.IsOccupied = true
	s.VehicleNumber = &vehicle
	s.UserID = &userID
	s.BookedAt = &bookedAt
	return true, nil
}

func (f *fakeSpotStore) ReleaseSpot(_ context.Context, spotID, userID uint) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.spots[spotID]
	if !ok || !s.IsOccupied || s.UserID == nil || *s.UserID != userID {
		return false, nil
	}
	s.IsOccupied = false
	s.VehicleNumber = nil
	s.UserID = nil
	s.BookedAt = nil
	return true, nil
}

func (f *fakeSpotStore) UserBookings(_ context.Context, userID uint) ([]BookingView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []BookingView
	for _, s := range f.spots {
		if s.IsOccupied && s.UserID != nil && *s.UserID == userID {
			out = append(out, BookingView{ParkingSpot: *s})
		}
	}
	return out, nil
}

func spot(id uint, lotID uint, number int, occupied bool) *domain.ParkingSpot {
	s := &domain.ParkingSpot{ID: id, LotID: lotID, SpotNumber: number, IsOccupied: occupied}
	if occupied {
		owner := uint(99)
		vehicle := "ZZ-0000"
		now := time.Now()
		s.UserID = &owner
		s.VehicleNumber = &vehicle
		s.BookedAt = &now
	}
	return s
}

func TestBookAssignsLowestNumberedSpot(t *testing.T) {
	// Spot 3 is occupied; 1 and 2 are free. Lowest number wins.
	store := newFakeSpotStore(
		spot(10, 1, 2, false),
		spot(11, 1, 1, false),
		spot(12, 1, 3, true),
	)
	svc := NewService(store)

	got, err := svc.Book(context.Background(), 1, 7, "KA-01-1234")
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	if got.SpotNumber != 1 {
		t.Fatalf("expected spot 1, got %d", got.SpotNumber)
	}
	if !got.IsOccupied || got.UserID == nil || *got.UserID != 7 {
		t.Fatalf("returned spot not marked as claimed by user 7: %+v", got)
	}
	if got.VehicleNumber == nil || *got.VehicleNumber != "KA-01-1234" {
		t.Fatalf("vehicle number not stored on returned spot")
	}
	if got.BookedAt == nil {
		t.Fatalf("booking timestamp not stamped")
	}
}

func TestBookRequiresVehicleNumber(t *testing.T) {
	store := newFakeSpotStore(spot(1, 1, 1, false))
	svc := NewService(store)

	if _, err := svc.Book(context.Background(), 1, 7, ""); !errors.Is(err, ErrVehicleRequired) {
		t.Fatalf("expected ErrVehicleRequired, got %v", err)
	}
	if got, _ := store.FirstFreeSpot(context.Background(), 1); got == nil {
		t.Fatalf("spot must stay free when booking is rejected")
	}
}

func TestBookFullLot(t *testing.T) {
	store := newFakeSpotStore(spot(1, 1, 1, true), spot(2, 1, 2, true))
	svc := NewService(store)

	if _, err := svc.Book(context.Background(), 1, 7, "KA-01-1234"); !errors.Is(err, ErrNoAvailableSpot) {
		t.Fatalf("expected ErrNoAvailableSpot, got %v", err)
	}
}

func TestBookRescansAfterLostClaim(t *testing.T) {
	// The first claim reports a lost race; the rescan must still land a spot.
	store := newFakeSpotStore(spot(1, 1, 1, false), spot(2, 1, 2, false))
	store.failClaims = 1
	svc := NewService(store)

	got, err := svc.Book(context.Background(), 1, 7, "KA-01-1234")
	if err != nil {
		t.Fatalf("Book after lost race: %v", err)
	}
	if got.SpotNumber != 1 {
		t.Fatalf("rescan should retry the lowest free spot, got %d", got.SpotNumber)
	}
}

func TestReleaseOwnedSpot(t *testing.T) {
	s := spot(1, 1, 1, false)
	store := newFakeSpotStore(s)
	svc := NewService(store)

	booked, err := svc.Book(context.Background(), 1, 7, "KA-01-1234")
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	if err := svc.Release(context.Background(), booked.ID, 7); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if s.IsOccupied || s.UserID != nil || s.VehicleNumber != nil || s.BookedAt != nil {
		t.Fatalf("release must clear occupancy, vehicle, user and timestamp: %+v", s)
	}
}

func TestReleaseByNonOwnerFails(t *testing.T) {
	store := newFakeSpotStore(spot(1, 1, 1, false))
	svc := NewService(store)

	booked, err := svc.Book(context.Background(), 1, 7, "KA-01-1234")
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	// User 8 does not own the spot
	if err := svc.Release(context.Background(), booked.ID, 8); !errors.Is(err, ErrNotAuthorizedOrNotFound) {
		t.Fatalf("expected ErrNotAuthorizedOrNotFound, got %v", err)
	}
	// Owner's booking must be untouched
	bookings, _ := store.UserBookings(context.Background(), 7)
	if len(bookings) != 1 {
		t.Fatalf("owner booking lost after denied release")
	}
}

func TestReleaseTwiceFailsSecondTime(t *testing.T) {
	store := newFakeSpotStore(spot(1, 1, 1, false))
	svc := NewService(store)

	booked, err := svc.Book(context.Background(), 1, 7, "KA-01-1234")
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	if err := svc.Release(context.Background(), booked.ID, 7); err != nil {
		t.Fatalf("first Release: %v", err)
	}
	if err := svc.Release(context.Background(), booked.ID, 7); !errors.Is(err, ErrNotAuthorizedOrNotFound) {
		t.Fatalf("second Release must fail, got %v", err)
	}
}

func TestReleaseUnknownSpot(t *testing.T) {
	svc := NewService(newFakeSpotStore())
	if err := svc.Release(context.Background(), 42, 7); !errors.Is(err, ErrNotAuthorizedOrNotFound) {
		t.Fatalf("expected ErrNotAuthorizedOrNotFound, got %v", err)
	}
}

func TestConcurrentBookingsSingleFreeSpot(t *testing.T) {
	// N concurrent bookings against a lot with exactly one free spot:
	// exactly one succeeds, the rest see the lot as full.
	const n = 16
	store := newFakeSpotStore(spot(1, 1, 1, false), spot(2, 1, 2, true))
	svc := NewService(store)

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(userID uint) {
			defer wg.Done()
			_, err := svc.Book(context.Background(), 1, userID, "KA-01-1234")
			errs <- err
		}(uint(i + 1))
	}
	wg.Wait()
	close(errs)

	var wins, full int
	for err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrNoAvailableSpot):
			full++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 || full != n-1 {
		t.Fatalf("expected 1 success and %d full-lot failures, got %d/%d", n-1, wins, full)
	}
}
