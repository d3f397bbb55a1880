package assets

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/daroga0002/tech-controllers/internal/emodul"
)

// fakeSource returns a fixed language pack.
type fakeSource struct {
	data map[string]string
	err  error
}

func (f *fakeSource) GetTranslations(_ context.Context, _ string) (*emodul.Translations, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &emodul.Translations{Data: f.data}, nil
}

func loadedManager(t *testing.T) *TranslationManager {
	t.Helper()

	m := NewTranslationManager()
	src := &fakeSource{data: map[string]string{
		"940": "Temperature sensor",
		"962": "Relay",
	}}
	if err := m.Load(context.Background(), "en", src); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return m
}

func TestText(t *testing.T) {
	m := loadedManager(t)

	if got := m.Text(940); got != "Temperature sensor" {
		t.Errorf("Text(940) = %q, want Temperature sensor", got)
	}
	if got := m.Text(12345); got != "txtId 12345" {
		t.Errorf("Text(12345) = %q, want txtId fallback", got)
	}
	if got := m.Text(0); got != "txtId 0" {
		t.Errorf("Text(0) = %q, want txtId 0", got)
	}
}

func TestTextUnloaded(t *testing.T) {
	m := NewTranslationManager()

	if m.IsLoaded() {
		t.Error("IsLoaded() = true for fresh manager")
	}
	if got := m.Text(940); got != "txtId 940" {
		t.Errorf("Text() before Load = %q, want fallback", got)
	}
}

func TestTextID(t *testing.T) {
	m := loadedManager(t)

	if got := m.TextID("Relay"); got != 962 {
		t.Errorf("TextID(Relay) = %d, want 962", got)
	}
	if got := m.TextID("Unknown"); got != 0 {
		t.Errorf("TextID(Unknown) = %d, want 0", got)
	}
	if got := m.TextID(""); got != 0 {
		t.Errorf("TextID(empty) = %d, want 0", got)
	}
}

func TestTextByType(t *testing.T) {
	m := loadedManager(t)

	if got := m.TextByType(emodul.TileTypeTemperature); got != "Temperature sensor" {
		t.Errorf("TextByType(temperature) = %q", got)
	}
	if got := m.TextByType(999); got != "type 999" {
		t.Errorf("TextByType(999) = %q, want type fallback", got)
	}
}

func TestLoadFailure(t *testing.T) {
	m := NewTranslationManager()
	src := &fakeSource{err: errors.New("network down")}

	err := m.Load(context.Background(), "en", src)
	if err == nil {
		t.Fatal("Load() expected error")
	}
	if m.IsLoaded() {
		t.Error("IsLoaded() = true after failed Load")
	}
}

func TestClear(t *testing.T) {
	m := loadedManager(t)

	if m.Count() != 2 {
		t.Errorf("Count() = %d, want 2", m.Count())
	}
	m.Clear()
	if m.IsLoaded() {
		t.Error("IsLoaded() = true after Clear")
	}
	if m.Count() != 0 {
		t.Errorf("Count() = %d after Clear, want 0", m.Count())
	}
}

func TestIcon(t *testing.T) {
	if got := Icon(50); got != "mdi:thermometer" {
		t.Errorf("Icon(50) = %q", got)
	}
	if got := Icon(99999); got != DefaultIcon {
		t.Errorf("Icon(unknown) = %q, want default", got)
	}
}

func TestIconByType(t *testing.T) {
	if got := IconByType(emodul.TileTypeRelay); got != "mdi:toggle-switch" {
		t.Errorf("IconByType(relay) = %q", got)
	}
	if got := IconByType(0); got != DefaultIcon {
		t.Errorf("IconByType(0) = %q, want default", got)
	}
}

func TestRedact(t *testing.T) {
	data := map[string]any{"username": "user@example.com", "password": "secret", "udid": "abc"}

	got := Redact(data, "password")
	if strings.Contains(got, "secret") {
		t.Errorf("Redact() leaked password: %s", got)
	}
	if !strings.Contains(got, "***HIDDEN***") {
		t.Errorf("Redact() missing placeholder: %s", got)
	}
	if !strings.Contains(got, "abc") {
		t.Errorf("Redact() hid non-sensitive field: %s", got)
	}

	// Original map untouched
	if data["password"] != "secret" {
		t.Error("Redact() mutated input")
	}
}
