package main

import (
	"math"
	"regexp"
	"strings"
	"testing"
)

var uuidRegex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

func TestGenerateUUIDFormat(t *testing.T) {
	for i := 0; i < 20; i++ {
		id := GenerateUUID()
		if !uuidRegex.MatchString(id) {
			t.Errorf("GenerateUUID() = %q, does not match UUID v4 format", id)
		}
	}
}

func TestGenerateUUIDUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := GenerateUUID()
		if seen[id] {
			t.Fatalf("duplicate UUID generated: %s", id)
		}
		seen[id] = true
	}
}

func TestGenerateIDLength(t *testing.T) {
	if id := GenerateID(4); len(id) != 8 {
		t.Errorf("expected 8 chars, got %d: %s", len(id), id)
	}
	if id := GenerateID(8); len(id) != 16 {
		t.Errorf("expected 16 chars, got %d: %s", len(id), id)
	}
}

func TestNewItemID(t *testing.T) {
	a, b := NewItemID(1234), NewItemID(1234)
	if !strings.HasPrefix(a, "1234-") {
		t.Errorf("item id should start with its timestamp, got %q", a)
	}
	if a == b {
		t.Error("item ids created in the same ms should differ")
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		v, min, max, want float64
	}{
		{5, 0, 10, 5},
		{-1, 0, 10, 0},
		{15, 0, 10, 10},
		{0, 0, 10, 0},
		{10, 0, 10, 10},
	}
	for _, tt := range tests {
		got := Clamp(tt.v, tt.min, tt.max)
		if got != tt.want {
			t.Errorf("Clamp(%f, %f, %f) = %f, want %f", tt.v, tt.min, tt.max, got, tt.want)
		}
	}
}

func TestDistance(t *testing.T) {
	if d := Distance(0, 0, 3, 4); d != 5 {
		t.Errorf("Distance(0,0,3,4) = %f, want 5", d)
	}
	if d := DistanceSq(0, 0, 3, 4); d != 25 {
		t.Errorf("DistanceSq(0,0,3,4) = %f, want 25", d)
	}
}

func TestNormalizeAngle(t *testing.T) {
	tests := []struct {
		input, wantApprox float64
	}{
		{0, 0},
		{3.14159, 3.14159},
		{-3.14159, -3.14159},
		{7, 7 - 2*math.Pi},
	}
	for _, tt := range tests {
		got := NormalizeAngle(tt.input)
		if math.Abs(got-tt.wantApprox) > 0.01 {
			t.Errorf("NormalizeAngle(%f) = %f, want ~%f", tt.input, got, tt.wantApprox)
		}
	}
}

func TestLerpAngleShortPath(t *testing.T) {
	if got := LerpAngle(0, 1, 0.5); math.Abs(got-0.5) > 0.01 {
		t.Errorf("LerpAngle(0, 1, 0.5) = %f, want ~0.5", got)
	}
	// 3 to -3 crosses the seam at PI rather than turning through zero
	if got := LerpAngle(3, -3, 0.5); got < 3 {
		t.Errorf("expected the short way round, got %f", got)
	}
}
