package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"plinth/internal/testsupport"
)

func TestScanFindsModelFilesInOrder(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(root, "b-part.stl"), testsupport.BinarySTL(t, 4))
	testsupport.WriteFile(t, filepath.Join(root, "a", "nested.stl"), testsupport.BinarySTL(t, 2))
	testsupport.WriteFile(t, filepath.Join(root, "a", "readme.txt"), []byte("not a model"))
	testsupport.WriteFile(t, filepath.Join(root, ".hidden", "ghost.stl"), testsupport.BinarySTL(t, 1))

	result, err := New(nil).Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(result.Skipped) != 0 {
		t.Fatalf("expected no skipped entries, got %v", result.Skipped)
	}
	got := make([]string, 0, len(result.Candidates))
	for _, c := range result.Candidates {
		got = append(got, c.RelPath)
	}
	want := []string{"a/nested.stl", "b-part.stl"}
	if len(got) != len(want) {
		t.Fatalf("candidates = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("candidates = %v, want %v", got, want)
		}
	}
}

func TestScanPopulatesFileDetails(t *testing.T) {
	root := t.TempDir()
	data := testsupport.BinarySTL(t, 3)
	path := filepath.Join(root, "gear.stl")
	testsupport.WriteFile(t, path, data)

	result, err := New(nil).Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(result.Candidates) != 1 {
		t.Fatalf("expected one candidate, got %d", len(result.Candidates))
	}
	c := result.Candidates[0]
	if c.AbsPath != path {
		t.Errorf("AbsPath = %q, want %q", c.AbsPath, path)
	}
	if c.SizeBytes != int64(len(data)) {
		t.Errorf("SizeBytes = %d, want %d", c.SizeBytes, len(data))
	}
	if c.LastModified.IsZero() {
		t.Error("LastModified should be populated")
	}
}

func TestScanEmptyTree(t *testing.T) {
	result, err := New(nil).Scan(context.Background(), t.TempDir())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(result.Candidates) != 0 {
		t.Fatalf("expected no candidates, got %d", len(result.Candidates))
	}
}

func TestScanMissingRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nope")
	result, err := New(nil).Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(result.Candidates) != 0 {
		t.Fatalf("expected no candidates, got %d", len(result.Candidates))
	}
	if len(result.Skipped) != 1 {
		t.Fatalf("expected one skipped entry, got %d", len(result.Skipped))
	}
}

func TestScanSkipsUnreadableDirectory(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}
	root := t.TempDir()
	locked := filepath.Join(root, "locked")
	testsupport.WriteFile(t, filepath.Join(locked, "inner.stl"), testsupport.BinarySTL(t, 1))
	testsupport.WriteFile(t, filepath.Join(root, "outer.stl"), testsupport.BinarySTL(t, 1))
	if err := os.Chmod(locked, 0o000); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	result, err := New(nil).Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(result.Candidates) != 1 || result.Candidates[0].RelPath != "outer.stl" {
		t.Fatalf("candidates = %v, want just outer.stl", result.Candidates)
	}
	if len(result.Skipped) == 0 {
		t.Fatal("expected the locked directory to be reported as skipped")
	}
}

func TestScanHonorsCancellation(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(root, "part.stl"), testsupport.BinarySTL(t, 1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(nil).Scan(ctx, root); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}
