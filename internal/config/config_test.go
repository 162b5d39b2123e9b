package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseWindowsKeepsFileOrder(t *testing.T) {
	content := `
NOITE:
  nome: Noite
  inicio: "19:00"
  fim: "23:00"
MANHA:
  nome: Manhã (Madrugada)
  inicio: "04:00"
  fim: "09:00"
TARDE:
  inicio: "13:00"
  fim: "18:30"
`
	windows, err := ParseWindows([]byte(content))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(windows) != 3 {
		t.Fatalf("expected 3 windows, got %d", len(windows))
	}
	keys := []string{windows[0].Key, windows[1].Key, windows[2].Key}
	if keys[0] != "NOITE" || keys[1] != "MANHA" || keys[2] != "TARDE" {
		t.Fatalf("expected file order, got %v", keys)
	}
	if windows[1].Start != 4*60 || windows[1].End != 9*60 {
		t.Fatalf("unexpected MANHA range: %+v", windows[1])
	}
	if windows[2].Name != "TARDE" {
		t.Fatalf("expected key as fallback name, got %q", windows[2].Name)
	}
	if windows[2].End != 18*60+30 {
		t.Fatalf("unexpected TARDE end: %d", windows[2].End)
	}
}

func TestParseWindowsRejectsBadClock(t *testing.T) {
	_, err := ParseWindows([]byte("MANHA:\n  inicio: \"4h\"\n  fim: \"09:00\"\n"))
	if err == nil {
		t.Fatalf("expected error for invalid start time")
	}
}

func TestLoadWindowsMissingFileUsesDefaults(t *testing.T) {
	windows, err := LoadWindows(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(windows) != 3 || windows[0].Key != WindowMorning {
		t.Fatalf("expected default windows, got %+v", windows)
	}
}

func TestLoadWindowsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "windows.yaml")
	if err := os.WriteFile(path, []byte("EXTRA:\n  nome: Extra\n  inicio: \"10:00\"\n  fim: \"12:00\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	windows, err := LoadWindows(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(windows) != 1 || windows[0].Key != "EXTRA" || windows[0].Start != 600 {
		t.Fatalf("unexpected windows: %+v", windows)
	}
}

func TestKeywords(t *testing.T) {
	cfg := Config{VehicleKeywords: " Veiculo, ,MODAL "}
	got := cfg.Keywords()
	if len(got) != 2 || got[0] != "veiculo" || got[1] != "modal" {
		t.Fatalf("unexpected keywords: %v", got)
	}
	if (Config{}).Keywords() != nil {
		t.Fatalf("expected nil keywords when unset")
	}
}
