package repository

import (
	"context"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"sejoli-paypal-gateway/internal/model"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&model.Product{},
		&model.Order{},
		&model.AffiliateCommission{},
		&model.Transaction{},
		&model.TokenState{},
		&model.EventLog{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return db
}

func TestTransactionCreateResetsExistingRow(t *testing.T) {
	db := testDB(t)
	repo := NewTransactionRepository(db)
	ctx := context.Background()

	first, err := repo.Create(ctx, 42)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if first.Status != model.TrxPending {
		t.Fatalf("expected pending, got %s", first.Status)
	}
	if first.Ref == "" {
		t.Fatal("ref must be generated")
	}

	if err := repo.UpdateStatus(ctx, 42, model.TrxFailed); err != nil {
		t.Fatalf("update status: %v", err)
	}
	if err := repo.UpdatePayload(ctx, 42, []byte(`{"stale":true}`)); err != nil {
		t.Fatalf("update payload: %v", err)
	}

	// re-entering checkout resets the row instead of failing on order_id
	second, err := repo.Create(ctx, 42)
	if err != nil {
		t.Fatalf("second create: %v", err)
	}
	if second.Ref == first.Ref {
		t.Fatal("reset must issue a fresh ref")
	}

	trx, err := repo.FindByOrderID(ctx, 42)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if trx.Status != model.TrxPending {
		t.Fatalf("expected pending after reset, got %s", trx.Status)
	}
	if trx.Payload != "" {
		t.Fatalf("stale payload must be cleared, got %s", trx.Payload)
	}

	var count int64
	if err := db.Model(&model.Transaction{}).Where("order_id = ?", 42).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one row per order, got %d", count)
	}
}

func TestTransactionStatusAndPayload(t *testing.T) {
	repo := NewTransactionRepository(testDB(t))
	ctx := context.Background()

	if _, err := repo.Create(ctx, 42); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := repo.UpdateStatus(ctx, 42, model.TrxPaid); err != nil {
		t.Fatalf("update status: %v", err)
	}
	if err := repo.UpdatePayload(ctx, 42, []byte(`{"v":2}`)); err != nil {
		t.Fatalf("update payload: %v", err)
	}
	// payload overwrites, no history
	if err := repo.UpdatePayload(ctx, 42, []byte(`{"v":3}`)); err != nil {
		t.Fatalf("update payload: %v", err)
	}

	trx, err := repo.FindByOrderID(ctx, 42)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if trx.Status != model.TrxPaid {
		t.Fatalf("expected paid, got %s", trx.Status)
	}
	if trx.Payload != `{"v":3}` {
		t.Fatalf("expected latest payload, got %s", trx.Payload)
	}
	if trx.LastUpdate == nil {
		t.Fatal("last_update must be set after a status change")
	}
}

func TestOrderAdvanceStatusIsForwardOnly(t *testing.T) {
	db := testDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	if err := db.Create(&model.Order{
		ID: 42, ProductID: 1, Status: model.OrderOnHold,
		Type: model.OrderTypeRegular, Quantity: 1, Currency: "IDR",
	}).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}

	changed, err := repo.AdvanceStatus(ctx, 42, model.OrderCompleted, model.OrderOnHold, model.OrderPaymentConfirm)
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if changed != 1 {
		t.Fatalf("expected one row changed, got %d", changed)
	}

	changed, err = repo.AdvanceStatus(ctx, 42, model.OrderCompleted, model.OrderOnHold, model.OrderPaymentConfirm)
	if err != nil {
		t.Fatalf("advance replay: %v", err)
	}
	if changed != 0 {
		t.Fatalf("replay must change nothing, got %d", changed)
	}

	order, _ := repo.FindByID(ctx, 42)
	if order.Status != model.OrderCompleted {
		t.Fatalf("expected completed, got %s", order.Status)
	}
}

func TestTokenSaveUpserts(t *testing.T) {
	repo := NewTokenRepository(testDB(t))
	ctx := context.Background()

	if state, err := repo.Get(ctx, model.EnvSandbox); err != nil || state != nil {
		t.Fatalf("expected empty state, got %+v (err %v)", state, err)
	}

	first := time.Now().Add(time.Hour)
	if err := repo.Save(ctx, model.EnvSandbox, "tok-1", first); err != nil {
		t.Fatalf("save: %v", err)
	}
	// renewal overwrites: last writer wins
	second := time.Now().Add(2 * time.Hour)
	if err := repo.Save(ctx, model.EnvSandbox, "tok-2", second); err != nil {
		t.Fatalf("save again: %v", err)
	}

	state, err := repo.Get(ctx, model.EnvSandbox)
	if err != nil || state == nil {
		t.Fatalf("get: %v", err)
	}
	if state.AccessToken != "tok-2" {
		t.Fatalf("expected tok-2, got %s", state.AccessToken)
	}
}

func TestAffiliateMarkPaid(t *testing.T) {
	db := testDB(t)
	repo := NewAffiliateRepository(db)
	ctx := context.Background()

	if err := db.Create(&model.AffiliateCommission{OrderID: 42, Commission: 50000}).Error; err != nil {
		t.Fatalf("seed commission: %v", err)
	}

	changed, err := repo.MarkPaid(ctx, 42)
	if err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if changed != 1 {
		t.Fatalf("expected one row changed, got %d", changed)
	}

	comm, err := repo.FindByOrderID(ctx, 42)
	if err != nil || comm == nil {
		t.Fatalf("find: %v", err)
	}
	if comm.PaidStatus != 1 {
		t.Fatalf("expected paid_status 1, got %d", comm.PaidStatus)
	}

	if comm, err := repo.FindByOrderID(ctx, 7); err != nil || comm != nil {
		t.Fatalf("missing row must yield nil, got %+v (err %v)", comm, err)
	}
}

func TestEventLogWriteAndFind(t *testing.T) {
	repo := NewEventLogRepository(testDB(t))
	ctx := context.Background()

	if err := repo.Write(ctx, "ipn-paypal-failed", map[string]interface{}{"hash": "abc"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := repo.Write(ctx, "ipn-paypal-success", map[string]interface{}{"payload": "{}"}); err != nil {
		t.Fatalf("write: %v", err)
	}

	logs, err := repo.FindByEvent(ctx, "ipn-paypal-failed")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(logs) != 1 || logs[0].Payload == "" {
		t.Fatalf("unexpected logs %+v", logs)
	}
}
