package msgcat

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEmbeddedDefaults(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	text, err := c.Render("room.not_found", map[string]any{"Code": "ZZZ999"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(text, "ZZZ999") {
		t.Fatalf("unexpected render: %q", text)
	}

	for _, key := range []string{"room.created", "room.joined", "room.status", "room.invite", "room.no_active", "room.remote_failure", "room.invalid_input", "info", "help", "unknown_command"} {
		if _, ok := c.data[key]; !ok {
			t.Fatalf("missing embedded template %q", key)
		}
	}
}

func TestRenderMissingKeyFails(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := c.Render("room.not_found", map[string]any{}); err == nil {
		t.Fatalf("expected error for missing template variable")
	}
	if _, err := c.Render("does.not.exist", nil); err == nil {
		t.Fatalf("expected error for unknown key")
	}
}

func TestOverrideDir(t *testing.T) {
	dir := t.TempDir()
	override := "room:\n  not_found: \"nope: {{.Code}}\"\n"
	if err := os.WriteFile(filepath.Join(dir, "10-local.yaml"), []byte(override), 0o644); err != nil {
		t.Fatalf("write override: %v", err)
	}

	c, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	text, err := c.Render("room.not_found", map[string]any{"Code": "ABC123"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if text != "nope: ABC123" {
		t.Fatalf("override not applied: %q", text)
	}
	// Untouched keys keep their embedded defaults
	if _, err := c.Render("unknown_command", map[string]any{"Prefix": "!"}); err != nil {
		t.Fatalf("Render default after override: %v", err)
	}
}

func TestOverrideDirMissing(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Fatalf("expected error for missing override dir")
	}
}
