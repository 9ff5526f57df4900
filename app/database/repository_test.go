package database

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewConnection(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Expected connection, got error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	version, dirty, err := RunMigrations(db)
	if err != nil {
		t.Fatalf("Expected migrations to run, got error: %v", err)
	}
	if version != 2 || dirty {
		t.Fatalf("Expected clean migration version 2, got %d (dirty=%v)", version, dirty)
	}

	return db
}

func TestNewConnection_EmptyPath(t *testing.T) {
	if _, err := NewConnection(""); err == nil {
		t.Error("Expected error for empty database path")
	}
}

func TestRunMigrations_Idempotent(t *testing.T) {
	db := newTestDB(t)

	version, _, err := RunMigrations(db)
	if err != nil {
		t.Fatalf("Expected second run to be a no-op, got error: %v", err)
	}
	if version != 2 {
		t.Errorf("Expected version 2, got %d", version)
	}
}

func TestSourceRepo_UpsertAndRecordLoad(t *testing.T) {
	repo := NewSourceRepository(newTestDB(t))

	if err := repo.UpsertSource("nouns", "https://a.example/sheet.csv", "csv"); err != nil {
		t.Fatal(err)
	}
	if err := repo.UpsertSource("nouns", "https://b.example/sheet.csv", "csv"); err != nil {
		t.Fatal(err)
	}

	source, err := repo.GetSource("nouns")
	if err != nil {
		t.Fatal(err)
	}
	if source == nil || source.URL != "https://b.example/sheet.csv" {
		t.Fatalf("Expected updated source URL, got %+v", source)
	}
	if source.LastLoadedAt != nil {
		t.Errorf("Expected no load time before first load, got %v", source.LastLoadedAt)
	}

	now := time.Now()
	err = repo.RecordLoad("nouns", LoadResult{
		Status: "loaded", EntryCount: 12, Fingerprint: "abc",
		Duration: 250 * time.Millisecond, LoadedAt: now, NextLoadAt: now.Add(5 * time.Minute),
	})
	if err != nil {
		t.Fatal(err)
	}

	err = repo.RecordLoad("nouns", LoadResult{
		Status: "failed", Error: "fetch failure: HTTP 500", LoadedAt: now, NextLoadAt: now.Add(time.Minute),
	})
	if err != nil {
		t.Fatal(err)
	}

	source, _ = repo.GetSource("nouns")
	if source.LastStatus != "failed" || !strings.Contains(source.LastError, "HTTP 500") {
		t.Errorf("Expected failed status with error, got %+v", source)
	}
	if source.EntryCount != 12 || source.Fingerprint != "abc" {
		t.Errorf("Expected failure to keep last good count and fingerprint, got %d %q", source.EntryCount, source.Fingerprint)
	}
	if source.NextLoadAt == nil || !source.NextLoadAt.After(now) {
		t.Errorf("Expected next load time in the future, got %v", source.NextLoadAt)
	}

	loads, err := repo.GetRecentLoads("nouns", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(loads) != 2 || loads[0].Status != "failed" || loads[1].Duration != 250*time.Millisecond {
		t.Errorf("Expected two history records, newest first, got %+v", loads)
	}

	count, err := repo.GetSourceCount()
	if err != nil || count != 1 {
		t.Errorf("Expected 1 source, got %d (err=%v)", count, err)
	}
}

func TestSourceRepo_GetMissing(t *testing.T) {
	repo := NewSourceRepository(newTestDB(t))

	source, err := repo.GetSource("missing")
	if err != nil || source != nil {
		t.Errorf("Expected nil source without error, got %+v (err=%v)", source, err)
	}
}

func TestSnapshotRepo_RoundTripCompressed(t *testing.T) {
	db := newTestDB(t)
	if err := NewSourceRepository(db).UpsertSource("nouns", "https://a.example", "csv"); err != nil {
		t.Fatal(err)
	}
	repo, err := NewSnapshotRepository(db)
	if err != nil {
		t.Fatalf("Expected snapshot repository, got error: %v", err)
	}
	defer repo.Close()

	body := bytes.Repeat([]byte("Name,URL\nArt Club,https://x.io\n"), 200)
	fetchedAt := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	if err := repo.SaveSnapshot(Snapshot{SourceName: "nouns", URL: "https://a.example", Fingerprint: "fp1", Body: body, FetchedAt: fetchedAt}); err != nil {
		t.Fatal(err)
	}

	var stored int
	if err := db.QueryRow("SELECT length(body) FROM snapshots WHERE source_name = ?", "nouns").Scan(&stored); err != nil {
		t.Fatal(err)
	}
	if stored >= len(body) {
		t.Errorf("Expected compressed body smaller than %d bytes, got %d", len(body), stored)
	}

	snapshot, err := repo.GetSnapshot("nouns")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(snapshot.Body, body) {
		t.Error("Expected decompressed body to match original")
	}
	if snapshot.Fingerprint != "fp1" || !snapshot.FetchedAt.Equal(fetchedAt) {
		t.Errorf("Unexpected snapshot metadata: %+v", snapshot)
	}

	missing, err := repo.GetSnapshot("other")
	if err != nil || missing != nil {
		t.Errorf("Expected no snapshot, got %+v (err=%v)", missing, err)
	}
}

func TestSnapshotRepo_CorruptBody(t *testing.T) {
	db := newTestDB(t)
	if err := NewSourceRepository(db).UpsertSource("nouns", "https://a.example", "csv"); err != nil {
		t.Fatal(err)
	}
	repo, err := NewSnapshotRepository(db)
	if err != nil {
		t.Fatalf("Expected snapshot repository, got error: %v", err)
	}
	defer repo.Close()

	_, err = db.Exec(`INSERT INTO snapshots (source_name, source_url, fingerprint, body, fetched_at)
		VALUES (?, ?, ?, ?, ?)`, "nouns", "https://a.example", "fp", []byte("not zstd"), "2026-10-01T12:00:00Z")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := repo.GetSnapshot("nouns"); err == nil {
		t.Error("Expected error for a body that is not zstd data")
	}
}

func TestExcerptRepo(t *testing.T) {
	repo := NewExcerptRepository(newTestDB(t))

	if _, ok, err := repo.GetExcerpt("https://x.io"); ok || err != nil {
		t.Errorf("Expected cache miss, got ok=%v err=%v", ok, err)
	}

	if err := repo.SaveExcerpt("https://x.io", "Makes art"); err != nil {
		t.Fatal(err)
	}
	if err := repo.SaveExcerpt("https://x.io", "Makes more art"); err != nil {
		t.Fatal(err)
	}

	excerpt, ok, err := repo.GetExcerpt("https://x.io")
	if err != nil || !ok || excerpt != "Makes more art" {
		t.Errorf("Expected updated excerpt, got %q ok=%v err=%v", excerpt, ok, err)
	}
}
