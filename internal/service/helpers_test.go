package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"sejoli-paypal-gateway/internal/client"
	"sejoli-paypal-gateway/internal/config"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	// a single connection keeps every query on the same in-memory db
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := client.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return db
}

func testPaypalConfig() *config.Paypal {
	return &config.Paypal{
		Mode:             "sandbox",
		IPNSecretSandbox: "test-secret",
		InvoicePrefix:    "sjl1",
	}
}

// signIPN computes the hex signature the gateway expects for a body.
func signIPN(t *testing.T, secret, data string) string {
	t.Helper()

	canonical, err := canonicalize(data)
	if err != nil {
		t.Fatalf("canonicalize: %v", err)
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(canonical)
	return hex.EncodeToString(mac.Sum(nil))
}
