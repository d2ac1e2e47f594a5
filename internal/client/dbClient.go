package client

import (
	"log"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"sejoli-paypal-gateway/internal/model"
)

// InitDatabase opens the gateway database. MySQL DSNs are used as-is;
// anything ending in .db (or the empty default) falls back to a local
// SQLite file, which is enough for development.
func InitDatabase(databaseURL string) *gorm.DB {
	var (
		db  *gorm.DB
		err error
	)

	if databaseURL == "" || strings.HasSuffix(databaseURL, ".db") {
		if databaseURL == "" {
			databaseURL = "gateway.db"
		}
		db, err = gorm.Open(sqlite.Open(databaseURL), &gorm.Config{})
	} else {
		db, err = gorm.Open(mysql.Open(databaseURL), &gorm.Config{})
	}
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal(err)
	}

	// Connection pool (important for webhooks)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := Migrate(db); err != nil {
		log.Fatal(err)
	}

	return db
}

// Migrate creates the gateway tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Product{},
		&model.Order{},
		&model.AffiliateCommission{},
		&model.Transaction{},
		&model.TokenState{},
		&model.EventLog{},
	)
}
