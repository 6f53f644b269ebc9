package mesh

import (
	"encoding/json"
	"fmt"
	"time"
)

// Bounds is the axis-aligned bounding box of a decoded model.
type Bounds struct {
	MinX, MinY, MinZ float64
	MaxX, MaxY, MaxZ float64
}

// Width returns the X extent.
func (b Bounds) Width() float64 { return b.MaxX - b.MinX }

// Depth returns the Y extent.
func (b Bounds) Depth() float64 { return b.MaxY - b.MinY }

// Height returns the Z extent.
func (b Bounds) Height() float64 { return b.MaxZ - b.MinZ }

// MaxDimension returns the largest extent across all three axes.
func (b Bounds) MaxDimension() float64 {
	result := b.Width()
	if d := b.Depth(); d > result {
		result = d
	}
	if h := b.Height(); h > result {
		result = h
	}
	return result
}

// Metadata carries derived statistics and bookkeeping persisted alongside an
// item.
type Metadata struct {
	Fingerprint string    `json:"fingerprint"`
	Format      string    `json:"format"`
	SolidName   string    `json:"solid_name,omitempty"`
	Bounds      Bounds    `json:"bounds"`
	ImportedAt  time.Time `json:"imported_at"`
}

// Record is the in-memory, processed representation of one candidate item.
//
// LocalID is generated per session; after staging settles it is rewritten to
// the store's canonical identifier. Name and Tags are the user-editable
// fields during review.
type Record struct {
	LocalID      string
	Name         string
	RelPath      string
	AbsPath      string
	SizeBytes    int64
	Triangles    int64
	Tags         []string
	PreviewPNG   []byte
	LastModified *time.Time
	Metadata     Metadata
}

// MetadataJSON serializes the record's metadata for persistence.
func (r *Record) MetadataJSON() (string, error) {
	data, err := json.Marshal(r.Metadata)
	if err != nil {
		return "", fmt.Errorf("marshal metadata: %w", err)
	}
	return string(data), nil
}
