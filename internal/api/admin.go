package api

import (
	"context"  // Context for Redis operations
	"errors"   // Error inspection
	"fmt"      // Flash message formatting
	"net/http" // HTTP status codes
	"strconv"  // Form field conversion
	"time"     // Cache TTL

	"parking_system/internal/lots"  // Lot administration service
	"parking_system/internal/utils" // Cache and flash helpers

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
)

// overviewCacheKey holds the cached lot occupancy snapshot shared by the
// admin and user dashboards.
const overviewCacheKey = "lots:overview"

// overviewCacheTTL bounds staleness of the dashboard snapshot; every
// mutation also invalidates the key explicitly.
const overviewCacheTTL = 60 * time.Second

// paramID parses a positive integer route parameter.
func paramID(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || v == 0 {
		return 0, false
	}
	return uint(v), true
}

// cachedOverview returns the lot occupancy snapshot, serving from Redis
// when a fresh copy exists.
func cachedOverview(c *gin.Context, lotSvc *lots.Service, rdb *redis.Client) ([]lots.LotStats, error) {
	ctx := c.Request.Context()
	var stats []lots.LotStats
	if found, err := utils.GetCache(ctx, rdb, overviewCacheKey, &stats); err == nil && found {
		return stats, nil
	}
	stats, err := lotSvc.Overview(ctx)
	if err != nil {
		return nil, err
	}
	_ = utils.SetCache(ctx, rdb, overviewCacheKey, stats, overviewCacheTTL)
	return stats, nil
}

// invalidateOverview drops the cached snapshot after any lot or spot mutation.
func invalidateOverview(ctx context.Context, rdb *redis.Client) {
	_ = utils.DeleteCache(ctx, rdb, overviewCacheKey)
}

// AdminDashboardHandler lists all lots with their occupancy counts
func AdminDashboardHandler(lotSvc *lots.Service, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := cachedOverview(c, lotSvc, rdb)
		if err != nil {
			utils.SetFlash(c, "Failed to load parking lots.")
			c.Redirect(http.StatusFound, "/")
			return
		}
		c.HTML(http.StatusOK, "admin_dashboard.html", gin.H{
			"Flash":    utils.PopFlash(c),
			"Username": c.GetString("username"),
			"Lots":     stats,
		})
	}
}

// CreateLotPageHandler renders the lot creation form
func CreateLotPageHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, "create_lot.html", gin.H{"Flash": utils.PopFlash(c)})
	}
}

// CreateLotHandler creates a lot and its numbered spots
func CreateLotHandler(lotSvc *lots.Service, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.PostForm("name")
		location := c.PostForm("location")
		totalSpots, err := strconv.Atoi(c.PostForm("total_spots"))
		if err != nil {
			utils.SetFlash(c, "Total spots must be a number.")
			c.Redirect(http.StatusFound, "/admin/create_lot")
			return
		}
		pricePerHour, err := strconv.ParseFloat(c.PostForm("price_per_hour"), 64)
		if err != nil {
			utils.SetFlash(c, "Price per hour must be a number.")
			c.Redirect(http.StatusFound, "/admin/create_lot")
			return
		}
		lot, err := lotSvc.Create(c.Request.Context(), name, location, totalSpots, pricePerHour)
		if err != nil {
			utils.SetFlash(c, "Failed to create parking lot: "+err.Error())
			c.Redirect(http.StatusFound, "/admin/create_lot")
			return
		}
		invalidateOverview(c.Request.Context(), rdb)
		utils.SetFlash(c, fmt.Sprintf("Parking lot %q created successfully with %d spots!", lot.Name, lot.TotalSpots))
		c.Redirect(http.StatusFound, "/admin/dashboard")
	}
}

// EditLotPageHandler renders the lot edit form
func EditLotPageHandler(lotSvc *lots.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		lotID, ok := paramID(c, "id")
		if !ok {
			utils.SetFlash(c, "Invalid parking lot.")
			c.Redirect(http.StatusFound, "/admin/dashboard")
			return
		}
		lot, err := lotSvc.Lot(c.Request.Context(), lotID)
		if err != nil {
			utils.SetFlash(c, "Parking lot not found.")
			c.Redirect(http.StatusFound, "/admin/dashboard")
			return
		}
		c.HTML(http.StatusOK, "edit_lot.html", gin.H{"Flash": utils.PopFlash(c), "Lot": lot})
	}
}

// EditLotHandler resizes a lot. Shrinking never deletes occupied spots.
func EditLotHandler(lotSvc *lots.Service, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		lotID, ok := paramID(c, "id")
		if !ok {
			utils.SetFlash(c, "Invalid parking lot.")
			c.Redirect(http.StatusFound, "/admin/dashboard")
			return
		}
		name := c.PostForm("name")
		location := c.PostForm("location")
		totalSpots, err := strconv.Atoi(c.PostForm("total_spots"))
		if err != nil {
			utils.SetFlash(c, "Total spots must be a number.")
			c.Redirect(http.StatusFound, "/admin/edit_lot/"+c.Param("id"))
			return
		}
		pricePerHour, err := strconv.ParseFloat(c.PostForm("price_per_hour"), 64)
		if err != nil {
			utils.SetFlash(c, "Price per hour must be a number.")
			c.Redirect(http.StatusFound, "/admin/edit_lot/"+c.Param("id"))
			return
		}
		if err := lotSvc.Update(c.Request.Context(), lotID, name, location, totalSpots, pricePerHour); err != nil {
			utils.SetFlash(c, "Failed to update parking lot: "+err.Error())
			c.Redirect(http.StatusFound, "/admin/dashboard")
			return
		}
		invalidateOverview(c.Request.Context(), rdb)
		utils.SetFlash(c, "Parking lot updated successfully!")
		c.Redirect(http.StatusFound, "/admin/dashboard")
	}
}

// DeleteLotHandler deletes a lot unless any of its spots is occupied
func DeleteLotHandler(lotSvc *lots.Service, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		lotID, ok := paramID(c, "id")
		if !ok {
			utils.SetFlash(c, "Invalid parking lot.")
			c.Redirect(http.StatusFound, "/admin/dashboard")
			return
		}
		err := lotSvc.Delete(c.Request.Context(), lotID)
		switch {
		case errors.Is(err, lots.ErrLotHasOccupiedSpots):
			utils.SetFlash(c, "Cannot delete parking lot. Some spots are currently occupied.")
		case errors.Is(err, lots.ErrLotNotFound):
			utils.SetFlash(c, "Parking lot not found.")
		case err != nil:
			utils.SetFlash(c, "Failed to delete parking lot.")
		default:
			invalidateOverview(c.Request.Context(), rdb)
			utils.SetFlash(c, "Parking lot deleted successfully!")
		}
		c.Redirect(http.StatusFound, "/admin/dashboard")
	}
}

// ViewSpotsHandler lists a lot's spots with occupant usernames
func ViewSpotsHandler(lotSvc *lots.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		lotID, ok := paramID(c, "id")
		if !ok {
			utils.SetFlash(c, "Invalid parking lot.")
			c.Redirect(http.StatusFound, "/admin/dashboard")
			return
		}
		lot, spots, err := lotSvc.Spots(c.Request.Context(), lotID)
		if err != nil {
			utils.SetFlash(c, "Parking lot not found.")
			c.Redirect(http.StatusFound, "/admin/dashboard")
			return
		}
		c.HTML(http.StatusOK, "view_spots.html", gin.H{
			"Flash": utils.PopFlash(c),
			"Lot":   lot,
			"Spots": spots,
		})
	}
}
