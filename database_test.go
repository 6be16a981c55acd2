package main

import (
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSessionLifecycle(t *testing.T) {
	db := openTestDB(t)

	if err := db.CreateSession("s1", "host", 1); err != nil {
		t.Fatalf("create: %v", err)
	}
	s, err := db.GetSession("s1")
	if err != nil || s == nil {
		t.Fatalf("get: %v", err)
	}
	if s.Role != "host" || s.LevelReached != 1 || s.EndedAt.Valid {
		t.Errorf("unexpected fresh row %+v", s)
	}

	db.UpdateSession("s1", 3, 7)
	db.UpdateSession("s1", 2, 9)
	s, _ = db.GetSession("s1")
	if s.LevelReached != 3 || s.Kills != 9 {
		t.Errorf("level should only move up, got level %d kills %d", s.LevelReached, s.Kills)
	}

	if err := db.EndSession("s1", "victory", 5, 12); err != nil {
		t.Fatalf("end: %v", err)
	}
	s, _ = db.GetSession("s1")
	if !s.EndedAt.Valid || s.EndCause != "victory" || s.LevelReached != 5 || s.Kills != 12 {
		t.Errorf("unexpected ended row %+v", s)
	}
}

func TestGetSessionUnknown(t *testing.T) {
	db := openTestDB(t)
	s, err := db.GetSession("nope")
	if err != nil || s != nil {
		t.Errorf("expected nil, nil for unknown session, got %v, %v", s, err)
	}
}

func TestRecentSessions(t *testing.T) {
	db := openTestDB(t)
	for _, id := range []string{"a", "b", "c"} {
		if err := db.CreateSession(id, "solo", 1); err != nil {
			t.Fatal(err)
		}
	}
	rows, err := db.RecentSessions(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Errorf("limit not applied, got %d rows", len(rows))
	}
	all, _ := db.RecentSessions(10)
	if len(all) != 3 {
		t.Errorf("expected 3 rows, got %d", len(all))
	}
}

func TestSettingsUpsert(t *testing.T) {
	db := openTestDB(t)
	if v := db.GetSetting("k"); v != "" {
		t.Errorf("missing key should be empty, got %q", v)
	}
	db.SetSetting("k", "one")
	db.SetSetting("k", "two")
	if v := db.GetSetting("k"); v != "two" {
		t.Errorf("expected overwritten value, got %q", v)
	}
}

func TestJournalFlushesOnStop(t *testing.T) {
	db := openTestDB(t)
	db.CreateSession("s1", "host", 1)

	j := NewJournal(db, "s1")
	j.LogEvent("out", EvItemCollected, ItemCollectedPayload{Type: CollectTreasure.String(), Index: 0})
	j.LogEvent("in", EvGameRestart, nil)
	j.Stop()
	j.Stop()

	events, err := db.SessionEvents("s1")
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 journaled events, got %d", len(events))
	}
	if events[0].Direction != "out" || events[0].Type != EvItemCollected || events[0].Data == "" {
		t.Errorf("unexpected first entry %+v", events[0])
	}
	if events[1].Type != EvGameRestart || events[1].Data != "" {
		t.Errorf("unexpected second entry %+v", events[1])
	}
}
