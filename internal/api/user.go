package api

import (
	"errors"   // Error inspection
	"fmt"      // Flash message formatting
	"net/http" // HTTP status codes

	"parking_system/internal/allocation" // Spot allocation core
	"parking_system/internal/lots"       // Lot overview for availability
	"parking_system/internal/utils"      // Cache and flash helpers

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
)

// UserDashboardHandler shows the user's bookings and lots with free spots
func UserDashboardHandler(alloc *allocation.Service, lotSvc *lots.Service, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userID")
		bookings, err := alloc.Bookings(c.Request.Context(), userID)
		if err != nil {
			utils.SetFlash(c, "Failed to load your bookings.")
			c.Redirect(http.StatusFound, "/")
			return
		}
		stats, err := cachedOverview(c, lotSvc, rdb)
		if err != nil {
			utils.SetFlash(c, "Failed to load parking lots.")
			c.Redirect(http.StatusFound, "/")
			return
		}
		// Only offer lots that still have a free spot
		available := make([]lots.LotStats, 0, len(stats))
		for _, s := range stats {
			if s.AvailableSpots > 0 {
				available = append(available, s)
			}
		}
		c.HTML(http.StatusOK, "user_dashboard.html", gin.H{
			"Flash":    utils.PopFlash(c),
			"Username": c.GetString("username"),
			"Bookings": bookings,
			"Lots":     available,
		})
	}
}

// BookSpotHandler allocates the lowest-numbered free spot of the lot
func BookSpotHandler(alloc *allocation.Service, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		lotID, ok := paramID(c, "lotID")
		if !ok {
			utils.SetFlash(c, "Invalid parking lot.")
			c.Redirect(http.StatusFound, "/user/dashboard")
			return
		}
		userID := c.GetUint("userID")
		vehicleNumber := c.PostForm("vehicle_number")
		spot, err := alloc.Book(c.Request.Context(), lotID, userID, vehicleNumber)
		switch {
		case errors.Is(err, allocation.ErrVehicleRequired):
			utils.SetFlash(c, "Please enter your vehicle number.")
		case errors.Is(err, allocation.ErrNoAvailableSpot):
			utils.SetFlash(c, "No available spots in this parking lot.")
		case err != nil:
			utils.SetFlash(c, "Booking failed, please try again.")
		default:
			invalidateOverview(c.Request.Context(), rdb)
			utils.SetFlash(c, fmt.Sprintf("Successfully booked spot #%d!", spot.SpotNumber))
		}
		c.Redirect(http.StatusFound, "/user/dashboard")
	}
}

// ReleaseSpotHandler frees a spot owned by the current user
func ReleaseSpotHandler(alloc *allocation.Service, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		spotID, ok := paramID(c, "spotID")
		if !ok {
			utils.SetFlash(c, "Invalid spot.")
			c.Redirect(http.StatusFound, "/user/dashboard")
			return
		}
		userID := c.GetUint("userID")
		err := alloc.Release(c.Request.Context(), spotID, userID)
		switch {
		case errors.Is(err, allocation.ErrNotAuthorizedOrNotFound):
			utils.SetFlash(c, "Invalid spot or you do not have permission to release this spot.")
		case err != nil:
			utils.SetFlash(c, "Release failed, please try again.")
		default:
			invalidateOverview(c.Request.Context(), rdb)
			utils.SetFlash(c, "Successfully released your spot!")
		}
		c.Redirect(http.StatusFound, "/user/dashboard")
	}
}
