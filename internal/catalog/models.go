package catalog

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a staged item row.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
)

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	switch normalized {
	case StatusPending, StatusConfirmed:
		return normalized, true
	default:
		return "", false
	}
}

// Directory is a registered import root.
type Directory struct {
	ID            int64
	Path          string
	Name          string
	AddedAt       time.Time
	LastScannedAt *time.Time
}

// Item is a staged model row persisted in SQLite.
type Item struct {
	ID           string
	DirectoryID  int64
	RelPath      string
	Name         string
	SizeBytes    int64
	Triangles    int64
	PreviewPNG   []byte
	Status       Status
	ImportedAt   time.Time
	LastModified *time.Time
	UpdatedAt    time.Time
	MetadataJSON string
	Tags         []string
}

// StagedItem carries the content fields Stage writes for one item. The ID is
// the caller's locally generated identifier; the store may resolve it to a
// different canonical identifier when the (directory, relative path) pair
// already exists.
type StagedItem struct {
	ID           string
	DirectoryID  int64
	RelPath      string
	Name         string
	SizeBytes    int64
	Triangles    int64
	PreviewPNG   []byte
	LastModified *time.Time
	MetadataJSON string
	Tags         []string
}

// Edit is a user-supplied review adjustment applied by canonical identifier.
type Edit struct {
	ID   string
	Name string
	Tags []string
}
