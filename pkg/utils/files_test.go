package utils

import (
	"path/filepath"
	"testing"
)

func TestDefaultOutputPath(t *testing.T) {
	tests := []struct {
		in, ext, expected string
	}{
		{"game.bas", ".js", "game.js"},
		{"dir/game.BAS", ".js", "dir/game.js"},
		{"game", ".js", "game.js"},
		{"my.game.bas", ".mjs", "my.game.mjs"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := DefaultOutputPath(tt.in, tt.ext); got != tt.expected {
				t.Errorf("DefaultOutputPath(%q, %q) = %q, want %q", tt.in, tt.ext, got, tt.expected)
			}
		})
	}
}

func TestAbsPath(t *testing.T) {
	full, err := AbsPath(filepath.Join("a", "..", "b", "prog.bas"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !filepath.IsAbs(full) || filepath.Base(full) != "prog.bas" {
		t.Errorf("unexpected full path %q", full)
	}
	if filepath.Base(filepath.Dir(full)) != "b" {
		t.Errorf("expected parent dir b, got %q", filepath.Dir(full))
	}
}
