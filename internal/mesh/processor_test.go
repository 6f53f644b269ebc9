package mesh

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"plinth/internal/scanner"
	"plinth/internal/testsupport"
)

func newTestProcessor(t *testing.T) *Processor {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	return NewProcessor(cfg)
}

func TestProcessBinaryCandidate(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "benchy_boat.stl")
	data := testsupport.BinarySTL(t, 12)
	testsupport.WriteFile(t, path, data)

	modified := time.Now().UTC()
	record, err := newTestProcessor(t).Process(scanner.Candidate{
		RelPath:      "benchy_boat.stl",
		AbsPath:      path,
		SizeBytes:    int64(len(data)),
		LastModified: modified,
	})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if record.LocalID == "" {
		t.Error("LocalID should be assigned")
	}
	if record.Name != "Benchy Boat" {
		t.Errorf("Name = %q, want %q", record.Name, "Benchy Boat")
	}
	if record.Triangles != 12 {
		t.Errorf("Triangles = %d, want 12", record.Triangles)
	}
	if record.SizeBytes != int64(len(data)) {
		t.Errorf("SizeBytes = %d, want %d", record.SizeBytes, len(data))
	}
	if len(record.PreviewPNG) == 0 {
		t.Error("PreviewPNG should be rendered")
	}
	if record.Metadata.Format != FormatBinarySTL {
		t.Errorf("Format = %q, want %q", record.Metadata.Format, FormatBinarySTL)
	}
	if record.Metadata.Fingerprint == "" {
		t.Error("Fingerprint should be computed")
	}
	if record.LastModified == nil || !record.LastModified.Equal(modified) {
		t.Errorf("LastModified = %v, want %v", record.LastModified, modified)
	}
}

func TestProcessInlineData(t *testing.T) {
	data := testsupport.ASCIISTL(t, "vase", 2)
	record, err := newTestProcessor(t).Process(scanner.Candidate{
		RelPath:   "vases/spiral-vase.stl",
		SizeBytes: int64(len(data)),
		Data:      data,
	})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if record.Name != "Spiral Vase" {
		t.Errorf("Name = %q, want %q", record.Name, "Spiral Vase")
	}
	if record.Metadata.SolidName != "vase" {
		t.Errorf("SolidName = %q, want %q", record.Metadata.SolidName, "vase")
	}
	if record.LastModified != nil {
		t.Errorf("LastModified = %v, want nil", record.LastModified)
	}
}

func TestProcessRejectsOversizeFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Import.MaxFileMiB = 1

	_, err := NewProcessor(cfg).Process(scanner.Candidate{
		RelPath:   "huge.stl",
		SizeBytes: 2 * 1024 * 1024,
	})
	if err == nil || !strings.Contains(err.Error(), "exceeds") {
		t.Fatalf("err = %v, want size limit rejection", err)
	}
}

func TestProcessRejectsMalformedData(t *testing.T) {
	_, err := newTestProcessor(t).Process(scanner.Candidate{
		RelPath:   "broken.stl",
		SizeBytes: 5,
		Data:      []byte("nope!"),
	})
	if err == nil {
		t.Fatal("expected decode error")
	}
}

func TestProcessIsDeterministic(t *testing.T) {
	data := testsupport.BinarySTL(t, 6)
	p := newTestProcessor(t)
	candidate := scanner.Candidate{RelPath: "gear.stl", SizeBytes: int64(len(data)), Data: data}

	first, err := p.Process(candidate)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	second, err := p.Process(candidate)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !bytes.Equal(first.PreviewPNG, second.PreviewPNG) {
		t.Error("previews should be identical for identical input")
	}
	if first.Metadata.Fingerprint != second.Metadata.Fingerprint {
		t.Error("fingerprints should be identical for identical input")
	}
}

func TestDisplayName(t *testing.T) {
	cases := map[string]string{
		"dragons/fire_dragon-v2.stl": "Fire Dragon V2",
		"cube.stl":                   "Cube",
		"weird..stl":                 "Weird.",
		"___.stl":                    "Untitled",
	}
	for input, want := range cases {
		if got := DisplayName(input); got != want {
			t.Errorf("DisplayName(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestClassify(t *testing.T) {
	small := &Solid{
		Triangles: make([]Triangle, 10),
		Bounds:    Bounds{MaxX: 20, MaxY: 20, MaxZ: 20},
	}
	tags := Classify(small)
	if len(tags) != 2 || tags[0] != "miniature" || tags[1] != "low-poly" {
		t.Errorf("tags = %v, want [miniature low-poly]", tags)
	}

	big := &Solid{
		Triangles: make([]Triangle, 100_000),
		Bounds:    Bounds{MaxX: 300, MaxY: 100, MaxZ: 100},
	}
	tags = Classify(big)
	if len(tags) != 2 || tags[0] != "large-format" || tags[1] != "high-detail" {
		t.Errorf("tags = %v, want [large-format high-detail]", tags)
	}

	if tags := Classify(&Solid{}); len(tags) != 0 {
		t.Errorf("empty solid tags = %v, want none", tags)
	}
}
