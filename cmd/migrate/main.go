package main

import (
	"voting_system/internal/config" // Custom import path (Config)
	"voting_system/internal/db"     // Custom import path (Database)

	"gorm.io/driver/mysql" // MySQL driver for GORM
)

// Main entry point for migration
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Migrate the election schema against MySQL
	db.Migrate(mysql.Open(cfg.DSN()))
}
