package testsupport

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// BinarySTL builds a syntactically valid binary STL payload with the given
// number of triangles. Geometry is deterministic so derived attributes are
// stable across runs.
func BinarySTL(t testing.TB, triangles int) []byte {
	t.Helper()

	var buf bytes.Buffer
	header := make([]byte, 80)
	copy(header, "plinth test fixture")
	buf.Write(header)

	if err := binary.Write(&buf, binary.LittleEndian, uint32(triangles)); err != nil {
		t.Fatalf("write triangle count: %v", err)
	}
	for i := 0; i < triangles; i++ {
		base := float32(i)
		facet := []float32{
			0, 0, 1, // normal
			base, 0, 0,
			base + 1, 0, 0,
			base, 1, float32(math.Mod(float64(i), 3)),
		}
		if err := binary.Write(&buf, binary.LittleEndian, facet); err != nil {
			t.Fatalf("write facet: %v", err)
		}
		if err := binary.Write(&buf, binary.LittleEndian, uint16(0)); err != nil {
			t.Fatalf("write attribute: %v", err)
		}
	}
	return buf.Bytes()
}

// ASCIISTL builds an ASCII STL payload with the given solid name and number
// of triangles.
func ASCIISTL(t testing.TB, name string, triangles int) []byte {
	t.Helper()

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "solid %s\n", name)
	for i := 0; i < triangles; i++ {
		fmt.Fprintf(&buf, "  facet normal 0 0 1\n    outer loop\n")
		fmt.Fprintf(&buf, "      vertex %d 0 0\n", i)
		fmt.Fprintf(&buf, "      vertex %d 0 0\n", i+1)
		fmt.Fprintf(&buf, "      vertex %d 1 %d\n", i, i%3)
		fmt.Fprintf(&buf, "    endloop\n  endfacet\n")
	}
	fmt.Fprintf(&buf, "endsolid %s\n", name)
	return buf.Bytes()
}

// WriteModelFile writes a binary STL with the given triangle count to path,
// creating parent directories as needed.
func WriteModelFile(t testing.TB, path string, triangles int) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, BinarySTL(t, triangles), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteFile fills the target path with arbitrary bytes, creating parent
// directories as needed.
func WriteFile(t testing.TB, path string, data []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
