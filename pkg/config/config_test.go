package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, DefaultFile)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Output.Color != ColorAuto {
		t.Errorf("expected color %q, got %q", ColorAuto, cfg.Output.Color)
	}
	if cfg.Output.Extension != ".js" {
		t.Errorf("expected extension .js, got %q", cfg.Output.Extension)
	}
	if opts := cfg.Compiler.Options(); opts.AllowDirect || opts.ImplicitLines || opts.NoDeadLabels || opts.Trace {
		t.Errorf("expected all compiler switches off, got %+v", opts)
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
		check   func(t *testing.T, cfg *Config)
	}{
		{
			name: "full config",
			content: `
[compiler]
allow_direct = true
implicit_lines = true
no_dead_labels = true
trace = true

[output]
color = "never"
extension = "mjs"
`,
			check: func(t *testing.T, cfg *Config) {
				opts := cfg.Compiler.Options()
				if !opts.AllowDirect || !opts.ImplicitLines || !opts.NoDeadLabels || !opts.Trace {
					t.Errorf("expected all compiler switches on, got %+v", opts)
				}
				if cfg.Output.Color != ColorNever {
					t.Errorf("expected color never, got %q", cfg.Output.Color)
				}
				if cfg.Output.Extension != ".mjs" {
					t.Errorf("expected extension .mjs, got %q", cfg.Output.Extension)
				}
			},
		},
		{
			name:    "partial config keeps defaults",
			content: "[compiler]\ntrace = true\n",
			check: func(t *testing.T, cfg *Config) {
				if !cfg.Compiler.Trace || cfg.Compiler.AllowDirect {
					t.Errorf("unexpected compiler section %+v", cfg.Compiler)
				}
				if cfg.Output.Color != ColorAuto || cfg.Output.Extension != ".js" {
					t.Errorf("expected default output section, got %+v", cfg.Output)
				}
			},
		},
		{
			name:    "invalid toml",
			content: "[compiler\n",
			wantErr: "failed to parse config",
		},
		{
			name:    "unknown key",
			content: "[compiler]\noptimize = true\n",
			wantErr: "unknown config keys",
		},
		{
			name:    "bad color",
			content: "[output]\ncolor = \"sometimes\"\n",
			wantErr: "output.color",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), tt.content)
			cfg, err := Load(path)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err == nil || !strings.Contains(err.Error(), "config file not found") {
		t.Errorf("expected not found error, got %v", err)
	}
}

func TestLoadDefaultFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error without config file: %v", err)
	}
	if cfg.Compiler.ImplicitLines {
		t.Error("expected defaults without config file")
	}

	writeConfig(t, dir, "[compiler]\nimplicit_lines = true\n")
	cfg, err = Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.Compiler.ImplicitLines {
		t.Error("expected locobasic.toml in the working directory to be loaded")
	}
}
