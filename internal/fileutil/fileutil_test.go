package fileutil

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestIsModelFile(t *testing.T) {
	cases := []struct {
		path string
		want bool
	}{
		{"parts/bracket.stl", true},
		{"parts/BRACKET.STL", true},
		{"notes/readme.txt", false},
		{"archive.stl.bak", false},
		{"stl", false},
	}
	for _, tc := range cases {
		if got := IsModelFile(tc.path); got != tc.want {
			t.Errorf("IsModelFile(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}

func TestFingerprintIsStable(t *testing.T) {
	a := Fingerprint([]byte("solid cube"))
	b := Fingerprint([]byte("solid cube"))
	if a != b {
		t.Fatalf("fingerprint not deterministic: %s vs %s", a, b)
	}
	if len(a) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(a))
	}
	if a == Fingerprint([]byte("solid sphere")) {
		t.Fatal("distinct inputs produced identical fingerprints")
	}
}

func TestExpandPathResolvesTilde(t *testing.T) {
	expanded, err := ExpandPath("~/models")
	if err != nil {
		t.Fatalf("ExpandPath failed: %v", err)
	}
	if strings.HasPrefix(expanded, "~") {
		t.Fatalf("tilde not expanded: %q", expanded)
	}
	if !filepath.IsAbs(expanded) {
		t.Fatalf("expected absolute path, got %q", expanded)
	}
}

func TestExpandPathEmpty(t *testing.T) {
	expanded, err := ExpandPath("")
	if err != nil {
		t.Fatalf("ExpandPath failed: %v", err)
	}
	if expanded != "" {
		t.Fatalf("expected empty result, got %q", expanded)
	}
}
