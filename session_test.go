package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func sessionConfig(t *testing.T, role string) Config {
	t.Helper()
	return Config{
		Role:         role,
		Addr:         "127.0.0.1:0",
		Level:        1,
		DBPath:       filepath.Join(t.TempDir(), "session.db"),
		FrameRate:    120,
		PushRate:     StatePushRate,
		SnapshotRate: SnapshotRate,
		PublicURL:    "http://127.0.0.1:0",
	}
}

func runFor(t *testing.T, s *Session, d time.Duration) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	return s.Run(ctx)
}

func TestSoloSessionRecordsRun(t *testing.T) {
	cfg := sessionConfig(t, "solo")
	s, err := NewSession(cfg)
	if err != nil {
		t.Fatal(err)
	}
	s.Input = func() AvatarInput { return AvatarInput{MoveX: 1} }

	if err := runFor(t, s, 150*time.Millisecond); err != nil {
		t.Fatalf("run: %v", err)
	}
	if s.Game.Role() != SoloRole {
		t.Errorf("expected solo role, got %s", s.Game.Role().Name())
	}

	db, err := OpenDB(cfg.DBPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	row, err := db.GetSession(s.ID)
	if err != nil || row == nil {
		t.Fatalf("session row missing: %v", err)
	}
	if row.Role != "solo" || row.EndCause != "quit" || !row.EndedAt.Valid {
		t.Errorf("unexpected session row %+v", row)
	}
}

func TestHostSessionServes(t *testing.T) {
	cfg := sessionConfig(t, "host")
	s, err := NewSession(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if s.Link == nil || !s.Link.IsHost() {
		t.Fatal("host session needs a host link")
	}
	if err := runFor(t, s, 100*time.Millisecond); err != nil {
		t.Fatalf("run: %v", err)
	}

	db, err := OpenDB(cfg.DBPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	if db.GetSetting("ticket_secret") == "" {
		t.Error("host should persist its ticket secret")
	}
}

func TestClientSessionDialFailure(t *testing.T) {
	cfg := sessionConfig(t, "client")
	cfg.HostURL = "http://127.0.0.1:1"
	s, err := NewSession(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if s.Game.Local() != PeerClient {
		t.Error("client session should own the client avatar")
	}
	if err := runFor(t, s, time.Second); err == nil {
		t.Error("dialing a dead host should fail")
	}

	db, err := OpenDB(cfg.DBPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	row, _ := db.GetSession(s.ID)
	if row == nil || !row.EndedAt.Valid {
		t.Error("failed run should still close its session row")
	}
}

func TestNewSessionWithoutDB(t *testing.T) {
	cfg := sessionConfig(t, "solo")
	cfg.DBPath = ""
	s, err := NewSession(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := runFor(t, s, 50*time.Millisecond); err != nil {
		t.Fatalf("run: %v", err)
	}
}
