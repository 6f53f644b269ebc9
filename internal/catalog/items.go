package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Stage inserts or refreshes the row for one staged item and returns the
// canonical identifier. New rows are written with status pending under the
// caller's identifier. When (directory, relative path) already exists, the
// existing row keeps its identifier, its content fields are replaced with
// the incoming values, and a confirmed status is never downgraded. The
// whole write, including tag replacement, happens in a single transaction.
func (s *Store) Stage(ctx context.Context, item StagedItem) (string, error) {
	if item.ID == "" {
		return "", errors.New("staged item requires an identifier")
	}
	if item.DirectoryID == 0 || item.RelPath == "" {
		return "", errors.New("staged item requires a directory and relative path")
	}

	ctx = ensureContext(ctx)
	now := time.Now().UTC().Format(time.RFC3339Nano)

	var canonicalID string
	err := retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin stage tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		row := tx.QueryRowContext(
			ctx,
			`INSERT INTO items (
                id, directory_id, rel_path, name, size_bytes, triangles,
                preview_png, status, imported_at, last_modified, updated_at, metadata_json
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
            ON CONFLICT(directory_id, rel_path) DO UPDATE SET
                name = excluded.name,
                size_bytes = excluded.size_bytes,
                triangles = excluded.triangles,
                preview_png = excluded.preview_png,
                last_modified = excluded.last_modified,
                updated_at = excluded.updated_at,
                metadata_json = excluded.metadata_json,
                status = CASE WHEN items.status = ? THEN ? ELSE excluded.status END
            RETURNING id`,
			item.ID,
			item.DirectoryID,
			item.RelPath,
			item.Name,
			item.SizeBytes,
			item.Triangles,
			item.PreviewPNG,
			StatusPending,
			now,
			nullableTime(item.LastModified),
			now,
			nullableString(item.MetadataJSON),
			StatusConfirmed,
			StatusConfirmed,
		)
		if err := row.Scan(&canonicalID); err != nil {
			return fmt.Errorf("stage item: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM item_tags WHERE item_id = ?`, canonicalID); err != nil {
			return fmt.Errorf("clear tags: %w", err)
		}
		for _, tag := range item.Tags {
			if tag == "" {
				continue
			}
			if _, err := tx.ExecContext(
				ctx,
				`INSERT INTO item_tags (item_id, tag) VALUES (?, ?) ON CONFLICT DO NOTHING`,
				canonicalID,
				tag,
			); err != nil {
				return fmt.Errorf("insert tag: %w", err)
			}
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit stage: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return canonicalID, nil
}

// ConfirmBatch sets status confirmed for every given identifier in one
// transaction. Unknown identifiers are ignored, so confirming twice is a
// no-op the second time.
func (s *Store) ConfirmBatch(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	ctx = ensureContext(ctx)
	now := time.Now().UTC().Format(time.RFC3339Nano)

	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin confirm tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		placeholders := makePlaceholders(len(ids))
		args := make([]any, 0, len(ids)+2)
		args = append(args, StatusConfirmed, now)
		for _, id := range ids {
			args = append(args, id)
		}
		query := `UPDATE items SET status = ?, updated_at = ? WHERE id IN (` + placeholders + `)`
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("confirm items: %w", err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit confirm: %w", err)
		}
		return nil
	})
}

// CancelBatch deletes pending rows whose identifier is in the given set.
// Rows that are confirmed, or that belong to other identifiers, are never
// touched. Returns the number of rows removed.
func (s *Store) CancelBatch(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	placeholders := makePlaceholders(len(ids))
	args := make([]any, 0, len(ids)+1)
	args = append(args, StatusPending)
	for _, id := range ids {
		args = append(args, id)
	}
	res, err := s.execWithRetry(
		ctx,
		`DELETE FROM items WHERE status = ? AND id IN (`+placeholders+`)`,
		args...,
	)
	if err != nil {
		return 0, fmt.Errorf("cancel items: %w", err)
	}
	return res.RowsAffected()
}

// CancelAllPending deletes every pending row regardless of origin. This is
// an administrative fallback; session cancellation always uses CancelBatch
// with an explicit identifier set.
func (s *Store) CancelAllPending(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM items WHERE status = ?`, StatusPending)
	if err != nil {
		return 0, fmt.Errorf("cancel pending items: %w", err)
	}
	return res.RowsAffected()
}

// ApplyEdits overwrites user-editable fields for the given rows in one
// transaction, keyed by canonical identifier.
func (s *Store) ApplyEdits(ctx context.Context, edits []Edit) error {
	if len(edits) == 0 {
		return nil
	}
	ctx = ensureContext(ctx)
	now := time.Now().UTC().Format(time.RFC3339Nano)

	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin edits tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		for _, edit := range edits {
			if edit.ID == "" {
				continue
			}
			if edit.Name != "" {
				if _, err := tx.ExecContext(
					ctx,
					`UPDATE items SET name = ?, updated_at = ? WHERE id = ?`,
					edit.Name,
					now,
					edit.ID,
				); err != nil {
					return fmt.Errorf("apply name edit: %w", err)
				}
			}
			if edit.Tags != nil {
				if _, err := tx.ExecContext(ctx, `DELETE FROM item_tags WHERE item_id = ?`, edit.ID); err != nil {
					return fmt.Errorf("clear tags for edit: %w", err)
				}
				for _, tag := range edit.Tags {
					if tag == "" {
						continue
					}
					if _, err := tx.ExecContext(
						ctx,
						`INSERT INTO item_tags (item_id, tag) VALUES (?, ?) ON CONFLICT DO NOTHING`,
						edit.ID,
						tag,
					); err != nil {
						return fmt.Errorf("insert edited tag: %w", err)
					}
				}
			}
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit edits: %w", err)
		}
		return nil
	})
}

// GetItem fetches one row by canonical identifier, including tags.
func (s *Store) GetItem(ctx context.Context, id string) (*Item, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = ?`, id)
	item, err := scanItem(row)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	if err := s.attachTags(ctx, []*Item{item}); err != nil {
		return nil, err
	}
	return item, nil
}

// ListConfirmed returns confirmed rows, optionally restricted to one
// directory (directoryID 0 means all), ordered by relative path.
func (s *Store) ListConfirmed(ctx context.Context, directoryID int64) ([]*Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE status = ?`
	args := []any{StatusConfirmed}
	if directoryID != 0 {
		query += ` AND directory_id = ?`
		args = append(args, directoryID)
	}
	query += ` ORDER BY rel_path`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list confirmed: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := s.attachTags(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// ListPending returns pending rows ordered by relative path. Used by tests
// and administrative tooling.
func (s *Store) ListPending(ctx context.Context) ([]*Item, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+itemColumns+` FROM items WHERE status = ? ORDER BY rel_path`,
		StatusPending,
	)
	if err != nil {
		return nil, fmt.Errorf("list pending: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *Store) attachTags(ctx context.Context, items []*Item) error {
	if len(items) == 0 {
		return nil
	}
	byID := make(map[string]*Item, len(items))
	args := make([]any, 0, len(items))
	for _, item := range items {
		byID[item.ID] = item
		args = append(args, item.ID)
	}

	query := `SELECT item_id, tag FROM item_tags WHERE item_id IN (` + makePlaceholders(len(items)) + `) ORDER BY tag`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var itemID, tag string
		if err := rows.Scan(&itemID, &tag); err != nil {
			return err
		}
		if item, ok := byID[itemID]; ok {
			item.Tags = append(item.Tags, tag)
		}
	}
	return rows.Err()
}
