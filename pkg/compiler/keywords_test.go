package compiler

import "testing"

func TestKeywordTableParses(t *testing.T) {
	for name, sig := range keywordTable {
		if _, err := parseKeywordSignature(name, sig); err != nil {
			t.Errorf("keyword %s: %v", name, err)
		}
	}
}

func TestParseKeywordSignature(t *testing.T) {
	tests := []struct {
		name     string
		sig      string
		class    KeywordClass
		expected []ParamSpec
		wantErr  bool
	}{
		{
			name:  "optional default stream",
			sig:   "c #0? n n",
			class: ClassCommand,
			expected: []ParamSpec{
				{Kind: ParamStream, Optional: true, Default: true},
				{Kind: ParamNumber},
				{Kind: ParamNumber},
			},
		},
		{
			name:  "nullable and repeat",
			sig:   "c n0? v*",
			class: ClassCommand,
			expected: []ParamSpec{
				{Kind: ParamNumber, Optional: true, Nullable: true},
				{Kind: ParamVariable, Optional: true, Repeat: true},
			},
		},
		{
			name:     "function with line range",
			sig:      "f q? s",
			class:    ClassFunction,
			expected: []ParamSpec{{Kind: ParamLineRange, Optional: true}, {Kind: ParamString}},
		},
		{
			name:     "bare star",
			sig:      "c *",
			class:    ClassCommand,
			expected: []ParamSpec{{Kind: ParamAny, Optional: true, Repeat: true}},
		},
		{name: "empty", sig: "", wantErr: true},
		{name: "unknown class", sig: "z n", wantErr: true},
		{name: "unknown parameter", sig: "c k", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := parseKeywordSignature("test", tt.sig)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected an error for %q", tt.sig)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if spec.Class != tt.class {
				t.Errorf("expected class %c, got %c", tt.class, spec.Class)
			}
			if len(spec.Params) != len(tt.expected) {
				t.Fatalf("expected %d params, got %d", len(tt.expected), len(spec.Params))
			}
			for i, p := range spec.Params {
				if p != tt.expected[i] {
					t.Errorf("param %d: expected %+v, got %+v", i, tt.expected[i], p)
				}
			}
		})
	}
}

func TestLookupKeyword(t *testing.T) {
	tests := []struct {
		ident    string
		expected bool
	}{
		{"PRINT", true},
		{"print", true},
		{"Left$", true},
		{"windowSwap", false},
		{"_rsx", false},
		{"foo", false},
	}
	for _, tt := range tests {
		t.Run(tt.ident, func(t *testing.T) {
			if got := IsKeyword(tt.ident); got != tt.expected {
				t.Errorf("IsKeyword(%q) = %v, want %v", tt.ident, got, tt.expected)
			}
		})
	}
}

func TestDisplayName(t *testing.T) {
	tests := map[string]string{
		"goto":        "GOTO",
		"windowSwap":  "WINDOW SWAP",
		"onErrorGoto": "ON ERROR GOTO",
		"left$":       "LEFT$",
	}
	for name, expected := range tests {
		if got := displayName(name); got != expected {
			t.Errorf("displayName(%q) = %q, want %q", name, got, expected)
		}
	}
}
