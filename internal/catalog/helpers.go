package catalog

import (
	"database/sql"
	"errors"
	"time"
)

const itemColumns = "id, directory_id, rel_path, name, size_bytes, triangles, preview_png, status, imported_at, last_modified, updated_at, metadata_json"

func scanItem(scanner interface{ Scan(dest ...any) error }) (*Item, error) {
	var (
		id           string
		directoryID  int64
		relPath      string
		name         string
		sizeBytes    int64
		triangles    int64
		preview      []byte
		statusStr    string
		importedRaw  sql.NullString
		modifiedRaw  sql.NullString
		updatedRaw   sql.NullString
		metadataJSON sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&directoryID,
		&relPath,
		&name,
		&sizeBytes,
		&triangles,
		&preview,
		&statusStr,
		&importedRaw,
		&modifiedRaw,
		&updatedRaw,
		&metadataJSON,
	); err != nil {
		return nil, err
	}

	item := &Item{
		ID:           id,
		DirectoryID:  directoryID,
		RelPath:      relPath,
		Name:         name,
		SizeBytes:    sizeBytes,
		Triangles:    triangles,
		PreviewPNG:   preview,
		Status:       Status(statusStr),
		MetadataJSON: metadataJSON.String,
	}
	if imported, err := parseTimeString(importedRaw.String); err == nil {
		item.ImportedAt = imported
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		item.UpdatedAt = updated
	}
	if modifiedRaw.Valid {
		if modified, err := parseTimeString(modifiedRaw.String); err == nil {
			item.LastModified = &modified
		}
	}
	return item, nil
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return value.UTC().Format(time.RFC3339Nano)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
