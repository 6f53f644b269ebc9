package catalog_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"plinth/internal/catalog"
	"plinth/internal/testsupport"
)

func stageFixture(t *testing.T, directoryID int64, relPath string) catalog.StagedItem {
	t.Helper()
	modified := time.Now().UTC().Add(-time.Hour)
	return catalog.StagedItem{
		ID:           uuid.NewString(),
		DirectoryID:  directoryID,
		RelPath:      relPath,
		Name:         "Bracket",
		SizeBytes:    1024,
		Triangles:    12,
		PreviewPNG:   []byte{0x89, 'P', 'N', 'G'},
		LastModified: &modified,
		MetadataJSON: `{"fingerprint":"abc"}`,
		Tags:         []string{"mechanical", "small"},
	}
}

func mustDirectory(t *testing.T, store *catalog.Store, path string) *catalog.Directory {
	t.Helper()
	dir, err := store.AddDirectory(context.Background(), path)
	if err != nil {
		t.Fatalf("AddDirectory failed: %v", err)
	}
	return dir
}

func TestStageReturnsLocalIDOnInsert(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	dir := mustDirectory(t, store, "/models/a")

	ctx := context.Background()
	staged := stageFixture(t, dir.ID, "bracket.stl")
	canonical, err := store.Stage(ctx, staged)
	if err != nil {
		t.Fatalf("Stage failed: %v", err)
	}
	if canonical != staged.ID {
		t.Fatalf("fresh insert should keep the local identifier: got %s, want %s", canonical, staged.ID)
	}

	item, err := store.GetItem(ctx, canonical)
	if err != nil {
		t.Fatalf("GetItem failed: %v", err)
	}
	if item == nil || item.Status != catalog.StatusPending {
		t.Fatalf("expected pending row, got %#v", item)
	}
	if len(item.Tags) != 2 {
		t.Fatalf("expected 2 tags, got %v", item.Tags)
	}
}

func TestStageResolvesConflictToExistingRow(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	dir := mustDirectory(t, store, "/models/a")

	ctx := context.Background()
	first := stageFixture(t, dir.ID, "bracket.stl")
	firstID, err := store.Stage(ctx, first)
	if err != nil {
		t.Fatalf("first Stage failed: %v", err)
	}

	second := stageFixture(t, dir.ID, "bracket.stl")
	second.SizeBytes = 4096
	second.Tags = []string{"revised"}
	secondID, err := store.Stage(ctx, second)
	if err != nil {
		t.Fatalf("second Stage failed: %v", err)
	}

	if secondID != firstID {
		t.Fatalf("conflict should resolve to existing row %s, got %s", firstID, secondID)
	}
	if secondID == second.ID {
		t.Fatal("conflict must not adopt the new local identifier")
	}

	item, err := store.GetItem(ctx, firstID)
	if err != nil {
		t.Fatalf("GetItem failed: %v", err)
	}
	if item.SizeBytes != 4096 {
		t.Fatalf("content fields should refresh on conflict: size = %d", item.SizeBytes)
	}
	if len(item.Tags) != 1 || item.Tags[0] != "revised" {
		t.Fatalf("tags should be replaced on restage: %v", item.Tags)
	}

	pending, err := store.ListPending(ctx)
	if err != nil {
		t.Fatalf("ListPending failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("re-staging must not duplicate rows: %d pending", len(pending))
	}
}

func TestStageNeverDowngradesConfirmed(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	dir := mustDirectory(t, store, "/models/a")

	ctx := context.Background()
	staged := stageFixture(t, dir.ID, "a.stl")
	id, err := store.Stage(ctx, staged)
	if err != nil {
		t.Fatalf("Stage failed: %v", err)
	}
	if err := store.ConfirmBatch(ctx, []string{id}); err != nil {
		t.Fatalf("ConfirmBatch failed: %v", err)
	}

	restaged := stageFixture(t, dir.ID, "a.stl")
	restaged.SizeBytes = 9000
	restaged.PreviewPNG = []byte{1, 2, 3}
	if _, err := store.Stage(ctx, restaged); err != nil {
		t.Fatalf("restage failed: %v", err)
	}

	item, err := store.GetItem(ctx, id)
	if err != nil {
		t.Fatalf("GetItem failed: %v", err)
	}
	if item.Status != catalog.StatusConfirmed {
		t.Fatalf("restage downgraded status to %s", item.Status)
	}
	if item.SizeBytes != 9000 {
		t.Fatalf("restage should still refresh content fields: size = %d", item.SizeBytes)
	}
}

func TestConfirmBatchIsIdempotent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	dir := mustDirectory(t, store, "/models/a")

	ctx := context.Background()
	id, err := store.Stage(ctx, stageFixture(t, dir.ID, "a.stl"))
	if err != nil {
		t.Fatalf("Stage failed: %v", err)
	}

	ids := []string{id, "no-such-row"}
	if err := store.ConfirmBatch(ctx, ids); err != nil {
		t.Fatalf("first ConfirmBatch failed: %v", err)
	}
	if err := store.ConfirmBatch(ctx, ids); err != nil {
		t.Fatalf("second ConfirmBatch failed: %v", err)
	}

	confirmed, err := store.ListConfirmed(ctx, dir.ID)
	if err != nil {
		t.Fatalf("ListConfirmed failed: %v", err)
	}
	if len(confirmed) != 1 {
		t.Fatalf("expected exactly one confirmed row, got %d", len(confirmed))
	}
}

func TestCancelBatchOnlyTouchesListedPendingRows(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	dir := mustDirectory(t, store, "/models/a")

	ctx := context.Background()
	keptPending, err := store.Stage(ctx, stageFixture(t, dir.ID, "kept.stl"))
	if err != nil {
		t.Fatalf("Stage failed: %v", err)
	}
	cancelled, err := store.Stage(ctx, stageFixture(t, dir.ID, "cancelled.stl"))
	if err != nil {
		t.Fatalf("Stage failed: %v", err)
	}
	confirmedID, err := store.Stage(ctx, stageFixture(t, dir.ID, "confirmed.stl"))
	if err != nil {
		t.Fatalf("Stage failed: %v", err)
	}
	if err := store.ConfirmBatch(ctx, []string{confirmedID}); err != nil {
		t.Fatalf("ConfirmBatch failed: %v", err)
	}

	// The confirmed id is listed but must survive: the delete is scoped to
	// pending rows in the same statement as the id set.
	removed, err := store.CancelBatch(ctx, []string{cancelled, confirmedID})
	if err != nil {
		t.Fatalf("CancelBatch failed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 row removed, got %d", removed)
	}

	if item, err := store.GetItem(ctx, cancelled); err != nil || item != nil {
		t.Fatalf("cancelled row should be gone: item=%#v err=%v", item, err)
	}
	if item, err := store.GetItem(ctx, keptPending); err != nil || item == nil {
		t.Fatalf("unlisted pending row should survive: item=%#v err=%v", item, err)
	}
	if item, err := store.GetItem(ctx, confirmedID); err != nil || item == nil {
		t.Fatalf("confirmed row should survive: item=%#v err=%v", item, err)
	}
}

func TestCancelBatchEmptySetIsNoOp(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	dir := mustDirectory(t, store, "/models/a")

	ctx := context.Background()
	if _, err := store.Stage(ctx, stageFixture(t, dir.ID, "a.stl")); err != nil {
		t.Fatalf("Stage failed: %v", err)
	}

	removed, err := store.CancelBatch(ctx, nil)
	if err != nil {
		t.Fatalf("CancelBatch failed: %v", err)
	}
	if removed != 0 {
		t.Fatalf("empty set must remove nothing, removed %d", removed)
	}
	pending, err := store.ListPending(ctx)
	if err != nil {
		t.Fatalf("ListPending failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("pending rows disturbed by empty cancel: %d", len(pending))
	}
}

func TestCancelAllPendingLeavesConfirmed(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	dir := mustDirectory(t, store, "/models/a")

	ctx := context.Background()
	if _, err := store.Stage(ctx, stageFixture(t, dir.ID, "p1.stl")); err != nil {
		t.Fatalf("Stage failed: %v", err)
	}
	if _, err := store.Stage(ctx, stageFixture(t, dir.ID, "p2.stl")); err != nil {
		t.Fatalf("Stage failed: %v", err)
	}
	confirmedID, err := store.Stage(ctx, stageFixture(t, dir.ID, "c.stl"))
	if err != nil {
		t.Fatalf("Stage failed: %v", err)
	}
	if err := store.ConfirmBatch(ctx, []string{confirmedID}); err != nil {
		t.Fatalf("ConfirmBatch failed: %v", err)
	}

	removed, err := store.CancelAllPending(ctx)
	if err != nil {
		t.Fatalf("CancelAllPending failed: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 pending rows removed, got %d", removed)
	}
	confirmed, err := store.ListConfirmed(ctx, 0)
	if err != nil {
		t.Fatalf("ListConfirmed failed: %v", err)
	}
	if len(confirmed) != 1 {
		t.Fatalf("confirmed rows should be untouched, got %d", len(confirmed))
	}
}

func TestApplyEditsReplacesNameAndTags(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	dir := mustDirectory(t, store, "/models/a")

	ctx := context.Background()
	id, err := store.Stage(ctx, stageFixture(t, dir.ID, "a.stl"))
	if err != nil {
		t.Fatalf("Stage failed: %v", err)
	}

	edits := []catalog.Edit{{ID: id, Name: "Renamed Bracket", Tags: []string{"archived"}}}
	if err := store.ApplyEdits(ctx, edits); err != nil {
		t.Fatalf("ApplyEdits failed: %v", err)
	}

	item, err := store.GetItem(ctx, id)
	if err != nil {
		t.Fatalf("GetItem failed: %v", err)
	}
	if item.Name != "Renamed Bracket" {
		t.Fatalf("name edit not applied: %q", item.Name)
	}
	if len(item.Tags) != 1 || item.Tags[0] != "archived" {
		t.Fatalf("tag edit not applied: %v", item.Tags)
	}
}

func TestListConfirmedFiltersByDirectory(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	dirA := mustDirectory(t, store, "/models/a")
	dirB := mustDirectory(t, store, "/models/b")

	ctx := context.Background()
	idA, err := store.Stage(ctx, stageFixture(t, dirA.ID, "a.stl"))
	if err != nil {
		t.Fatalf("Stage failed: %v", err)
	}
	idB, err := store.Stage(ctx, stageFixture(t, dirB.ID, "b.stl"))
	if err != nil {
		t.Fatalf("Stage failed: %v", err)
	}
	if err := store.ConfirmBatch(ctx, []string{idA, idB}); err != nil {
		t.Fatalf("ConfirmBatch failed: %v", err)
	}

	onlyA, err := store.ListConfirmed(ctx, dirA.ID)
	if err != nil {
		t.Fatalf("ListConfirmed failed: %v", err)
	}
	if len(onlyA) != 1 || onlyA[0].ID != idA {
		t.Fatalf("directory filter broken: %#v", onlyA)
	}

	all, err := store.ListConfirmed(ctx, 0)
	if err != nil {
		t.Fatalf("ListConfirmed all failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected both confirmed rows, got %d", len(all))
	}
}

func TestDirectoryDeleteCascadesToItems(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	dir := mustDirectory(t, store, "/models/a")

	ctx := context.Background()
	id, err := store.Stage(ctx, stageFixture(t, dir.ID, "a.stl"))
	if err != nil {
		t.Fatalf("Stage failed: %v", err)
	}

	if err := store.RemoveDirectory(ctx, dir.ID); err != nil {
		t.Fatalf("RemoveDirectory failed: %v", err)
	}
	item, err := store.GetItem(ctx, id)
	if err != nil {
		t.Fatalf("GetItem failed: %v", err)
	}
	if item != nil {
		t.Fatalf("item should cascade away with its directory: %#v", item)
	}
}
