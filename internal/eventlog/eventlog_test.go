package eventlog

import (
	"testing"

	"github.com/pantheonlabs/zeta/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openEventTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&models.EventLog{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestAppend(t *testing.T) {
	db := openEventTestDB(t)

	if err := Append(db, 1, ActorUser, KindVisionUpdate, map[string]interface{}{"vision": "v"}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	var row models.EventLog
	if err := db.First(&row).Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if row.ProjectID != 1 || row.Actor != ActorUser || row.Kind != KindVisionUpdate {
		t.Fatalf("row = %+v", row)
	}
	if !row.Applied {
		t.Fatal("Append must record applied=true")
	}
	if Details(&row)["vision"] != "v" {
		t.Fatalf("details = %q", row.Details)
	}
}

func TestAppend_NilDetails(t *testing.T) {
	db := openEventTestDB(t)

	if err := Append(db, 1, ActorZeta, KindStatusUpdate, nil); err != nil {
		t.Fatalf("Append: %v", err)
	}
	var row models.EventLog
	if err := db.First(&row).Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if row.Details != "{}" {
		t.Fatalf("details = %q, want {}", row.Details)
	}
}

func TestAppendAutonomy_ShadowFlag(t *testing.T) {
	db := openEventTestDB(t)

	if err := AppendAutonomy(db, 1, ActorZeta, KindTasksUpdate, nil, false); err != nil {
		t.Fatalf("AppendAutonomy: %v", err)
	}
	var row models.EventLog
	if err := db.First(&row).Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if row.Applied {
		t.Fatal("applied flag not persisted as false")
	}
}

func TestLatestByKind(t *testing.T) {
	db := openEventTestDB(t)

	row, err := LatestByKind(db, 1, KindVisionUpdate)
	if err != nil {
		t.Fatalf("LatestByKind empty: %v", err)
	}
	if row != nil {
		t.Fatal("want nil row when no event exists")
	}

	for _, v := range []string{"first", "second"} {
		if err := Append(db, 1, ActorUser, KindVisionUpdate, map[string]interface{}{"vision": v}); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	// A different project and a different kind must not leak in.
	if err := Append(db, 2, ActorUser, KindVisionUpdate, map[string]interface{}{"vision": "other"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := Append(db, 1, ActorUser, KindTasksUpdate, nil); err != nil {
		t.Fatalf("Append: %v", err)
	}

	row, err = LatestByKind(db, 1, KindVisionUpdate)
	if err != nil {
		t.Fatalf("LatestByKind: %v", err)
	}
	if row == nil {
		t.Fatal("no row")
	}
	if Details(row)["vision"] != "second" {
		t.Fatalf("latest = %q, want the second append", row.Details)
	}
}

func TestListByKind(t *testing.T) {
	db := openEventTestDB(t)

	rows, err := ListByKind(db, 1, KindAPIConnect)
	if err != nil {
		t.Fatalf("ListByKind empty: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("want no rows, got %d", len(rows))
	}

	for _, provider := range []string{"Telegram", "GitHub"} {
		if err := Append(db, 1, ActorZeta, KindAPIConnect, map[string]interface{}{"provider": provider}); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	if err := Append(db, 2, ActorZeta, KindAPIConnect, map[string]interface{}{"provider": "other"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := Append(db, 1, ActorUser, KindVisionUpdate, nil); err != nil {
		t.Fatalf("Append: %v", err)
	}

	rows, err = ListByKind(db, 1, KindAPIConnect)
	if err != nil {
		t.Fatalf("ListByKind: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len = %d, want 2", len(rows))
	}
	if Details(&rows[0])["provider"] != "GitHub" || Details(&rows[1])["provider"] != "Telegram" {
		t.Fatal("want newest first")
	}
}

func TestRecent(t *testing.T) {
	db := openEventTestDB(t)

	kinds := []string{KindVisionUpdate, KindGoalsLongUpdate, KindTasksUpdate}
	for _, k := range kinds {
		if err := Append(db, 1, ActorZeta, k, nil); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	rows, err := Recent(db, 1, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0].Kind != KindTasksUpdate {
		t.Fatalf("rows[0] = %s, want newest first", rows[0].Kind)
	}

	// Non-positive limit falls back to the default.
	rows, err = Recent(db, 1, 0)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
}

func TestDetails_Malformed(t *testing.T) {
	row := &models.EventLog{Details: "not json"}
	if d := Details(row); len(d) != 0 {
		t.Fatalf("details = %v, want empty map", d)
	}
	if d := Details(nil); len(d) != 0 {
		t.Fatalf("details = %v, want empty map for nil row", d)
	}
	if d := Details(&models.EventLog{}); len(d) != 0 {
		t.Fatalf("details = %v, want empty map for empty payload", d)
	}
}
