package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/ccollicutt/bundlereport/pkg/report"
)

// testDB creates a temporary database for testing
func testDB(t *testing.T) *DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "nested", "history.db")
	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})
	return db
}

const layout = "Group Default (Bundles: 2, Total Size: 1.50MB, Explicit Asset Count: 2)\n" +
	"\t\tAssets/a.png (Size: 500.00KB, foo)\n" +
	"\t\tAssets/b.png (Size: 1.00MB, bar)\n" +
	"Group Empty (Bundles: 0, Total Size: 0.00B, Explicit Asset Count: 0)\n" +
	"Group Odd (Bundles: 1, Total Size: 1.00KB, Explicit Asset Count: 1)\n" +
	"\t\tAssets/odd.bin (Size: 2.00TB, baz)"

func TestOpen_MigrateIdempotent(t *testing.T) {
	db := testDB(t)

	if err := db.Migrate(); err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}

	var version int
	if err := db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version); err != nil {
		t.Fatal(err)
	}
	if version != 2 {
		t.Errorf("schema version = %d, want 2", version)
	}
}

func TestSaveResult_RoundTrip(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	result := report.Parse(layout)
	parsedAt := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

	rec, err := db.SaveResult(ctx, result, SaveOptions{Label: "nightly", Source: "layout.txt", ParsedAt: parsedAt})
	if err != nil {
		t.Fatalf("SaveResult() error = %v", err)
	}
	if rec.ID == 0 {
		t.Fatal("SaveResult() returned zero ID")
	}
	if rec.GroupCount != 3 || rec.EntryCount != 3 {
		t.Errorf("counts = %d groups, %d entries, want 3 and 3", rec.GroupCount, rec.EntryCount)
	}
	if rec.IssueCount != 1 {
		t.Errorf("IssueCount = %d, want 1", rec.IssueCount)
	}
	if rec.TotalBytes != 1500000 {
		t.Errorf("TotalBytes = %v, want 1500000", rec.TotalBytes)
	}

	got, err := db.GetParse(ctx, rec.ID)
	if err != nil {
		t.Fatalf("GetParse() error = %v", err)
	}
	if got.Label != "nightly" || got.Source != "layout.txt" {
		t.Errorf("GetParse() = %+v", got)
	}
	if !got.ParsedAt.Equal(parsedAt) {
		t.Errorf("ParsedAt = %v, want %v", got.ParsedAt, parsedAt)
	}

	groups, err := db.LoadGroups(ctx, rec.ID)
	if err != nil {
		t.Fatalf("LoadGroups() error = %v", err)
	}
	if len(groups) != 3 {
		t.Fatalf("len(groups) = %d, want 3", len(groups))
	}
	if groups[0].Name != "Default" || groups[1].Name != "Empty" || groups[2].Name != "Odd" {
		t.Errorf("group order = %s,%s,%s", groups[0].Name, groups[1].Name, groups[2].Name)
	}
	if len(groups[1].Entries) != 0 {
		t.Errorf("Empty entries = %d, want 0", len(groups[1].Entries))
	}

	def := groups[0]
	if def.BundleCount != 2 || def.ExplicitAssetCount != 2 || def.SizeUnit != "MB" {
		t.Errorf("Default = %+v", def)
	}
	if len(def.Entries) != 2 || def.Entries[0].Address != "Assets/b.png" || def.Entries[1].Address != "Assets/a.png" {
		t.Errorf("Default entries not in stored order")
	}
	if def.Entries[0].Line != 3 {
		t.Errorf("Entries[0].Line = %d, want 3", def.Entries[0].Line)
	}

	if _, err := groups[2].Entries[0].ByteSize(); !errors.Is(err, report.ErrUnknownUnit) {
		t.Errorf("odd entry ByteSize() error = %v, want ErrUnknownUnit", err)
	}
}

func TestSaveResult_EmptyResult(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	rec, err := db.SaveResult(ctx, report.Parse(""), SaveOptions{Source: "empty.txt"})
	if err != nil {
		t.Fatalf("SaveResult() error = %v", err)
	}
	if rec.GroupCount != 0 || rec.IssueCount != 1 {
		t.Errorf("record = %+v, want 0 groups and 1 issue", rec)
	}
	if rec.ParsedAt.IsZero() {
		t.Error("ParsedAt should default to now")
	}

	groups, err := db.LoadGroups(ctx, rec.ID)
	if err != nil {
		t.Fatalf("LoadGroups() error = %v", err)
	}
	if len(groups) != 0 {
		t.Errorf("len(groups) = %d, want 0", len(groups))
	}
}

func TestListParses(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		if _, err := db.SaveResult(ctx, report.Parse(layout), SaveOptions{
			Label:    []string{"first", "second", "third"}[i],
			ParsedAt: base.Add(time.Duration(i) * time.Hour),
		}); err != nil {
			t.Fatal(err)
		}
	}

	all, err := db.ListParses(ctx, 0)
	if err != nil {
		t.Fatalf("ListParses() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len(ListParses) = %d, want 3", len(all))
	}
	if all[0].Label != "third" || all[2].Label != "first" {
		t.Errorf("order = %s..%s, want third..first", all[0].Label, all[2].Label)
	}

	limited, err := db.ListParses(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 2 {
		t.Errorf("len(ListParses(2)) = %d, want 2", len(limited))
	}
}

func TestAssetHistory(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

	older := "Group G (Bundles: 1, Total Size: 1.00MB, Explicit Asset Count: 1)\n\t\tAssets/a.png (Size: 400.00KB, x)"
	if _, err := db.SaveResult(ctx, report.Parse(older), SaveOptions{ParsedAt: base}); err != nil {
		t.Fatal(err)
	}
	if _, err := db.SaveResult(ctx, report.Parse(layout), SaveOptions{ParsedAt: base.Add(time.Hour)}); err != nil {
		t.Fatal(err)
	}

	hist, err := db.AssetHistory(ctx, "Assets/a.png", 0)
	if err != nil {
		t.Fatalf("AssetHistory() error = %v", err)
	}
	if len(hist) != 2 {
		t.Fatalf("len(AssetHistory) = %d, want 2", len(hist))
	}
	if hist[0].ByteSize == nil || *hist[0].ByteSize != 500000 {
		t.Errorf("newest = %+v, want 500000 bytes", hist[0])
	}
	if hist[1].Group != "G" || hist[1].ByteSize == nil || *hist[1].ByteSize != 400000 {
		t.Errorf("oldest = %+v, want group G with 400000 bytes", hist[1])
	}

	odd, err := db.AssetHistory(ctx, "Assets/odd.bin", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(odd) != 1 || odd[0].ByteSize != nil {
		t.Errorf("odd history = %+v, want one entry with nil ByteSize", odd)
	}
}

func TestDeleteParse(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	rec, err := db.SaveResult(ctx, report.Parse(layout), SaveOptions{})
	if err != nil {
		t.Fatal(err)
	}

	if err := db.DeleteParse(ctx, rec.ID); err != nil {
		t.Fatalf("DeleteParse() error = %v", err)
	}
	if _, err := db.GetParse(ctx, rec.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetParse() after delete error = %v, want ErrNotFound", err)
	}

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM entries").Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("entries after delete = %d, want 0 (cascade)", n)
	}
	if err := db.QueryRow("SELECT COUNT(*) FROM issues").Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("issues after delete = %d, want 0 (cascade)", n)
	}

	if err := db.DeleteParse(ctx, rec.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteParse() error = %v, want ErrNotFound", err)
	}
}

func TestLoadGroups_NotFound(t *testing.T) {
	db := testDB(t)

	if _, err := db.LoadGroups(context.Background(), 42); !errors.Is(err, ErrNotFound) {
		t.Errorf("LoadGroups() error = %v, want ErrNotFound", err)
	}
}

func TestLoadIssues(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	text := layout + "\n" +
		"Group Short (Bundles: 1, Total Size: 1.00KB, Explicit Asset Count: 2)\n" +
		"\t\tAssets/c.png (Size: 1.00KB, foo)"
	result := report.Parse(text)

	rec, err := db.SaveResult(ctx, result, SaveOptions{})
	if err != nil {
		t.Fatal(err)
	}

	issues, err := db.LoadIssues(ctx, rec.ID)
	if err != nil {
		t.Fatalf("LoadIssues() error = %v", err)
	}
	if len(issues) != len(result.Issues) {
		t.Fatalf("len(issues) = %d, want %d", len(issues), len(result.Issues))
	}
	for i, issue := range issues {
		want := result.Issues[i]
		if issue.Kind != want.Kind || issue.Line != want.Line || issue.Group != want.Group || issue.Message != want.Message {
			t.Errorf("issue %d = %+v, want %+v", i, issue, want)
		}
	}

	loaded := &report.Result{Issues: issues}
	if loaded.IssueCount() != rec.IssueCount {
		t.Errorf("reloaded IssueCount() = %d, stored %d", loaded.IssueCount(), rec.IssueCount)
	}
	if !errors.Is(issues[0], report.ErrUnknownUnit) {
		t.Errorf("issues[0] = %v, want ErrUnknownUnit", issues[0])
	}
	if !errors.Is(issues[1], report.ErrCountMismatch) || !issues[1].Informational() {
		t.Errorf("issues[1] = %+v, want informational count mismatch", issues[1])
	}
}

func TestLoadIssues_NotFound(t *testing.T) {
	db := testDB(t)

	if _, err := db.LoadIssues(context.Background(), 99); !errors.Is(err, ErrNotFound) {
		t.Errorf("LoadIssues() error = %v, want ErrNotFound", err)
	}
}
