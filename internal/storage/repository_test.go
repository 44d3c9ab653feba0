package storage

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	domerrors "github.com/garyellow/docmock/internal/errors"
)

func setupTestDB(t *testing.T, ttl time.Duration) *DB {
	t.Helper()
	db, err := New(context.Background(), MemoryPath, ttl)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testAsset(id string) *Asset {
	return &Asset{
		ID:          id,
		Kind:        "logo",
		ContentType: "image/png",
		Width:       64,
		Height:      32,
		Data:        []byte{0x89, 'P', 'N', 'G', 1, 2, 3},
	}
}

func TestNew_FileSystemDatabase(t *testing.T) {
	t.Parallel()
	dbPath := filepath.Join(t.TempDir(), "nested", "assets.db")

	ctx := context.Background()
	db, err := New(ctx, dbPath, time.Hour)
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	defer func() { _ = db.Close() }()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Errorf("Database file not created: %s", dbPath)
	}
	if err := db.Ping(ctx); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
	if db.Path() != dbPath {
		t.Errorf("Path() = %q, want %q", db.Path(), dbPath)
	}
}

func TestSaveAndGetAsset(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t, time.Hour)
	ctx := context.Background()

	asset := testAsset("a1")
	if err := db.SaveAsset(ctx, asset); err != nil {
		t.Fatalf("SaveAsset failed: %v", err)
	}
	if asset.CreatedAt == 0 {
		t.Error("Expected CreatedAt to be set")
	}

	got, err := db.GetAsset(ctx, "a1")
	if err != nil {
		t.Fatalf("GetAsset failed: %v", err)
	}
	if got.Kind != "logo" || got.Width != 64 || got.Height != 32 {
		t.Errorf("Unexpected asset metadata: %+v", got)
	}
	if !bytes.Equal(got.Data, asset.Data) {
		t.Error("Asset data mismatch")
	}
}

func TestSaveAsset_DuplicateID(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t, time.Hour)
	ctx := context.Background()

	if err := db.SaveAsset(ctx, testAsset("dup")); err != nil {
		t.Fatalf("First save failed: %v", err)
	}
	if err := db.SaveAsset(ctx, testAsset("dup")); err == nil {
		t.Error("Expected error for duplicate ID")
	}
}

func TestSaveAsset_InvalidKind(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t, time.Hour)

	asset := testAsset("bad")
	asset.Kind = "banner"
	if err := db.SaveAsset(context.Background(), asset); err == nil {
		t.Error("Expected CHECK constraint violation")
	}
}

func TestGetAsset_NotFound(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t, time.Hour)

	_, err := db.GetAsset(context.Background(), "missing")
	if !errors.Is(err, domerrors.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestAssetExpiry(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t, time.Hour)
	ctx := context.Background()

	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	db.now = func() time.Time { return base }

	if err := db.SaveAsset(ctx, testAsset("old")); err != nil {
		t.Fatalf("SaveAsset failed: %v", err)
	}

	db.now = func() time.Time { return base.Add(30 * time.Minute) }
	if err := db.SaveAsset(ctx, testAsset("fresh")); err != nil {
		t.Fatalf("SaveAsset failed: %v", err)
	}

	// 70 minutes in: "old" is past the hour, "fresh" is 40 minutes old.
	db.now = func() time.Time { return base.Add(70 * time.Minute) }

	if _, err := db.GetAsset(ctx, "old"); !errors.Is(err, domerrors.ErrNotFound) {
		t.Errorf("Expected expired asset to be not found, got %v", err)
	}
	if _, err := db.GetAsset(ctx, "fresh"); err != nil {
		t.Errorf("Expected fresh asset, got %v", err)
	}

	deleted, err := db.DeleteExpiredAssets(ctx, db.AssetTTL())
	if err != nil {
		t.Fatalf("DeleteExpiredAssets failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("Expected 1 deleted asset, got %d", deleted)
	}

	stats, err := db.AssetStats(ctx)
	if err != nil {
		t.Fatalf("AssetStats failed: %v", err)
	}
	if stats.Count != 1 {
		t.Errorf("Expected 1 remaining asset, got %d", stats.Count)
	}
	if stats.Bytes != int64(len(testAsset("x").Data)) {
		t.Errorf("Expected %d bytes, got %d", len(testAsset("x").Data), stats.Bytes)
	}
}

func TestAssetStats_Empty(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t, time.Hour)

	stats, err := db.AssetStats(context.Background())
	if err != nil {
		t.Fatalf("AssetStats failed: %v", err)
	}
	if stats.Count != 0 || stats.Bytes != 0 {
		t.Errorf("Expected empty stats, got %+v", stats)
	}
}
