package repository

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/hilthontt/ephemera/domain/model"
	"github.com/hilthontt/ephemera/infrastructure/persistence/migration"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDb, _ := db.DB()
	sqlDb.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDb.Close() })

	if err := migration.Up1(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestAnalyticsRepository_Summary(t *testing.T) {
	repo := NewAnalyticsRepository(newTestDB(t), zap.NewNop())
	ctx := context.Background()

	for _, id := range []string{"r1", "r2"} {
		if err := repo.RecordRoom(ctx, model.RoomRecord{RoomID: id, CreatedAt: time.Now(), TTLSeconds: 600}); err != nil {
			t.Fatalf("RecordRoom(%s) failed: %v", id, err)
		}
	}
	if err := repo.RecordMessage(ctx, model.MessageRecord{MessageID: "m1", Sender: "alice", Timestamp: 1, RoomID: "r1"}); err != nil {
		t.Fatalf("RecordMessage failed: %v", err)
	}

	summary, err := repo.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if summary.TotalRooms != 2 {
		t.Errorf("TotalRooms = %d, want 2", summary.TotalRooms)
	}
	if summary.TotalMessages != 1 {
		t.Errorf("TotalMessages = %d, want 1", summary.TotalMessages)
	}
}

func TestAnalyticsRepository_RecordRoom_Idempotent(t *testing.T) {
	repo := NewAnalyticsRepository(newTestDB(t), zap.NewNop())
	ctx := context.Background()

	record := model.RoomRecord{RoomID: "r1", CreatedAt: time.Now(), TTLSeconds: 600}
	for i := 0; i < 2; i++ {
		if err := repo.RecordRoom(ctx, record); err != nil {
			t.Fatalf("RecordRoom #%d failed: %v", i, err)
		}
	}

	summary, _ := repo.Summary(ctx)
	if summary.TotalRooms != 1 {
		t.Errorf("TotalRooms = %d, want 1", summary.TotalRooms)
	}
}
