package sqlitedb

import "testing"

func TestMigrateIsIdempotent(t *testing.T) {
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	if err := Migrate(db); err != nil {
		t.Fatalf("first migrate: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("second migrate: %v", err)
	}

	var cnt int
	if err := db.Get(&cnt, `SELECT COUNT(*) FROM _migrations`); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if cnt == 0 {
		t.Fatalf("no migrations recorded")
	}

	// schema is usable
	if _, err := db.Exec(`INSERT INTO players (id, access_token, created_at) VALUES ('p', 't', '2026-01-01T00:00:00Z')`); err != nil {
		t.Fatalf("insert into migrated schema: %v", err)
	}
}
