package main

import (
	"testing"
	"time"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestDBPilots(t *testing.T) {
	db := testDB(t)

	exists, err := db.UsernameExists("ace")
	if err != nil {
		t.Fatal(err)
	}
	if exists {
		t.Error("username should not exist yet")
	}

	id, err := db.CreatePilot("ace", "hash123")
	if err != nil {
		t.Fatalf("create pilot: %v", err)
	}
	if id == 0 {
		t.Error("pilot id should be non-zero")
	}

	exists, _ = db.UsernameExists("ace")
	if !exists {
		t.Error("username should exist now")
	}

	p, err := db.GetPilotByUsername("ace")
	if err != nil {
		t.Fatal(err)
	}
	if p == nil || p.ID != id || p.PasswordHash != "hash123" {
		t.Errorf("pilot = %+v", p)
	}

	p, err = db.GetPilotByUsername("nobody")
	if err != nil {
		t.Fatal(err)
	}
	if p != nil {
		t.Error("missing pilot should return nil, not error")
	}

	// Duplicates are rejected at the schema level
	if _, err := db.CreatePilot("ace", "other"); err == nil {
		t.Error("duplicate username should fail")
	}
}

func TestDBSettings(t *testing.T) {
	db := testDB(t)

	v, err := db.GetSetting("missing")
	if err != nil || v != "" {
		t.Errorf("missing setting = (%q, %v), want (\"\", nil)", v, err)
	}

	if err := db.SetSetting("k", "v1"); err != nil {
		t.Fatal(err)
	}
	if err := db.SetSetting("k", "v2"); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	v, _ = db.GetSetting("k")
	if v != "v2" {
		t.Errorf("setting = %q, want v2", v)
	}
}

func TestDBRuns(t *testing.T) {
	db := testDB(t)

	if err := db.RecordRun("sess-1", 123.5); err != nil {
		t.Fatal(err)
	}
	if err := db.RecordRun("sess-2", 10); err != nil {
		t.Fatal(err)
	}

	runs, err := db.RecentRuns(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("runs = %d, want 2", len(runs))
	}
}

func TestDBEvents(t *testing.T) {
	db := testDB(t)
	now := time.Now()

	batch := []RunEvent{
		{Type: EvtEnemyKill, PilotID: 7, SessionID: "s", Data: "drone", At: now},
		{Type: EvtEnemyKill, PilotID: 7, SessionID: "s", Data: "walker", At: now},
		{Type: EvtEnemyKill, PilotID: 9, SessionID: "s", Data: "drone", At: now},
		{Type: EvtPlayerDeath, PilotID: 7, SessionID: "s", At: now},
	}
	if err := db.InsertEvents(batch); err != nil {
		t.Fatal(err)
	}
	if err := db.InsertEvents(nil); err != nil {
		t.Errorf("empty batch should be a no-op, got %v", err)
	}

	n, err := db.PilotKillCount(7)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("kill count = %d, want 2", n)
	}
}
