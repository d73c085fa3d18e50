package kv

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.Set(ctx, "k", "v"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if v, err := s.Get(ctx, "k"); err != nil || v != "v" {
		t.Fatalf("Get = %q, %v", v, err)
	}
	if err := s.Remove(ctx, "k"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := s.Remove(ctx, "k"); err != nil {
		t.Fatalf("second Remove: %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("Len = %d, want 0", s.Len())
	}
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	type prefs struct {
		DarkMode bool `json:"dark_mode"`
	}
	if err := SetJSON(ctx, s, "prefs", prefs{DarkMode: true}); err != nil {
		t.Fatalf("SetJSON: %v", err)
	}
	got, err := GetJSON[prefs](ctx, s, "prefs")
	if err != nil || !got.DarkMode {
		t.Fatalf("GetJSON = %+v, %v", got, err)
	}

	_ = s.Set(ctx, "broken", "{")
	if _, err := GetJSON[prefs](ctx, s, "broken"); err == nil {
		t.Fatal("expected decode error")
	}
	if _, err := GetJSON[prefs](ctx, s, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPreferences(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	p := NewPreferences(store)

	if v, err := p.Get(ctx, "notifications"); err != nil || !v {
		t.Fatalf("default notifications = %v, %v", v, err)
	}
	if err := p.Set(ctx, "dark_mode", true); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if v, _ := p.Get(ctx, "dark_mode"); !v {
		t.Error("dark_mode should be true")
	}
	if err := p.Set(ctx, "root", true); !errors.Is(err, ErrUnknownPreference) {
		t.Errorf("expected ErrUnknownPreference, got %v", err)
	}
	if _, err := p.Get(ctx, "root"); !errors.Is(err, ErrUnknownPreference) {
		t.Errorf("expected ErrUnknownPreference, got %v", err)
	}

	_ = store.Set(ctx, "pref:share_data", "garbage")
	if v, _ := p.Get(ctx, "share_data"); v {
		t.Error("garbage value should fall back to default false")
	}

	all, err := p.All(ctx)
	if err != nil || len(all) != len(PreferenceKeys()) {
		t.Fatalf("All = %v, %v", all, err)
	}
}
