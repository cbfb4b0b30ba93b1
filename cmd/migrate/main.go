package main

import (
	"parking_system/internal/config" // Custom import path (Config)
	"parking_system/internal/db"     // Custom import path (Database)
)

// Main entry point for migration
func main() {
	cfg := config.LoadConfig() // Load configuration
	db.Migrate(cfg.DSN())      // Run schema migration and admin bootstrap
}
