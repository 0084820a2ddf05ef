package storage

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "drafts.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestAppendAndLatest(t *testing.T) {
	db := openTestDB(t)

	if _, ok, err := db.Latest("p1"); err != nil || ok {
		t.Fatalf("Latest on empty = ok=%v err=%v", ok, err)
	}

	for _, c := range []string{"v1", "v2", "v3"} {
		if err := db.Append("p1", c); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	if err := db.Append("p2", "other"); err != nil {
		t.Fatalf("Append: %v", err)
	}

	dr, ok, err := db.Latest("p1")
	if err != nil || !ok {
		t.Fatalf("Latest: ok=%v err=%v", ok, err)
	}
	if dr.Content != "v3" || dr.Page != "p1" {
		t.Errorf("latest = %+v", dr)
	}
	if dr.CreatedAt.IsZero() {
		t.Error("created_at not populated")
	}
	if since := time.Since(dr.CreatedAt); since > time.Hour || since < -time.Hour {
		t.Errorf("created_at looks wrong: %v", dr.CreatedAt)
	}
}

func TestAppendTrimsPerPage(t *testing.T) {
	db := openTestDB(t)
	for i := 0; i < keepPerPage+10; i++ {
		if err := db.Append("p1", fmt.Sprintf("v%d", i)); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	drafts, err := db.List("p1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(drafts) != keepPerPage {
		t.Fatalf("kept %d drafts, want %d", len(drafts), keepPerPage)
	}
	if drafts[0].Content != fmt.Sprintf("v%d", keepPerPage+9) {
		t.Errorf("newest = %q", drafts[0].Content)
	}
}

func TestClearAndPrune(t *testing.T) {
	db := openTestDB(t)
	db.Append("p1", "a")
	db.Append("p2", "b")

	if err := db.Clear("p1"); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, ok, _ := db.Latest("p1"); ok {
		t.Fatal("p1 drafts survived Clear")
	}
	if _, ok, _ := db.Latest("p2"); !ok {
		t.Fatal("Clear removed the wrong page")
	}

	// nothing is old enough to prune yet
	n, err := db.Prune(time.Hour)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if n != 0 {
		t.Errorf("pruned %d fresh drafts", n)
	}
	// everything is older than a negative cutoff in the future
	n, err = db.Prune(-time.Hour)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if n != 1 {
		t.Errorf("pruned %d, want 1", n)
	}
}
