package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"
)

// AddDirectory registers an import root, returning the existing row when the
// path is already known.
func (s *Store) AddDirectory(ctx context.Context, path string) (*Directory, error) {
	if path == "" {
		return nil, errors.New("directory path is required")
	}

	existing, err := s.DirectoryByPath(ctx, path)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	now := time.Now().UTC()
	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO directories (path, name, added_at) VALUES (?, ?, ?)
         ON CONFLICT(path) DO NOTHING`,
		path,
		filepath.Base(path),
		now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert directory: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		// Raced with another writer; the row exists now.
		return s.DirectoryByPath(ctx, path)
	}

	return s.DirectoryByPath(ctx, path)
}

// DirectoryByPath fetches a registered directory by its absolute path.
func (s *Store) DirectoryByPath(ctx context.Context, path string) (*Directory, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT id, path, name, added_at, last_scanned_at FROM directories WHERE path = ?`,
		path,
	)
	dir, err := scanDirectory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get directory: %w", err)
	}
	return dir, nil
}

// DirectoryByID fetches a registered directory by identifier.
func (s *Store) DirectoryByID(ctx context.Context, id int64) (*Directory, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT id, path, name, added_at, last_scanned_at FROM directories WHERE id = ?`,
		id,
	)
	dir, err := scanDirectory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get directory: %w", err)
	}
	return dir, nil
}

// ListDirectories returns all registered directories ordered by path.
func (s *Store) ListDirectories(ctx context.Context) ([]*Directory, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, path, name, added_at, last_scanned_at FROM directories ORDER BY path`,
	)
	if err != nil {
		return nil, fmt.Errorf("list directories: %w", err)
	}
	defer rows.Close()

	var dirs []*Directory
	for rows.Next() {
		dir, err := scanDirectory(rows)
		if err != nil {
			return nil, err
		}
		dirs = append(dirs, dir)
	}
	return dirs, rows.Err()
}

// RemoveDirectory deletes a registered directory; item rows cascade away
// with it.
func (s *Store) RemoveDirectory(ctx context.Context, id int64) error {
	if _, err := s.execWithRetry(ctx, `DELETE FROM directories WHERE id = ?`, id); err != nil {
		return fmt.Errorf("remove directory: %w", err)
	}
	return nil
}

// TouchLastScanned records the completion time of a scan against a directory.
func (s *Store) TouchLastScanned(ctx context.Context, id int64) error {
	if err := retryOnBusy(ensureContext(ctx), func() error {
		_, err := s.db.ExecContext(
			ctx,
			`UPDATE directories SET last_scanned_at = ? WHERE id = ?`,
			time.Now().UTC().Format(time.RFC3339Nano),
			id,
		)
		return err
	}); err != nil {
		return fmt.Errorf("touch last scanned: %w", err)
	}
	return nil
}

func scanDirectory(scanner interface{ Scan(dest ...any) error }) (*Directory, error) {
	var (
		id         int64
		path       string
		name       string
		addedRaw   sql.NullString
		scannedRaw sql.NullString
	)
	if err := scanner.Scan(&id, &path, &name, &addedRaw, &scannedRaw); err != nil {
		return nil, err
	}

	dir := &Directory{ID: id, Path: path, Name: name}
	if added, err := parseTimeString(addedRaw.String); err == nil {
		dir.AddedAt = added
	}
	if scannedRaw.Valid {
		if scanned, err := parseTimeString(scannedRaw.String); err == nil {
			dir.LastScannedAt = &scanned
		}
	}
	return dir, nil
}
