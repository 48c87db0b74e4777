package cache

import (
	"reflect"
	"testing"
	"time"

	"canopy/internal/model"
	"canopy/internal/slogutil"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir(), slogutil.NewDiscardLogger())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestPutGetRoundTrip(t *testing.T) {
	s := openTestStore(t)

	refreshed := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	item := model.ReviewItem{
		Number:       42,
		Title:        "Add login form",
		State:        model.ReviewOpen,
		SourceBranch: "feature/login",
		Draft:        true,
		Labels:       []string{"frontend"},
		Assignees:    []string{"alice"},
		Reviewers:    []string{"bob"},
		Decision:     model.DecisionApproved,
		Checks:       model.ChecksPending,
		Additions:    10,
		Deletions:    2,
		ChangedFiles: 3,
		RefreshedAt:  refreshed,
	}
	if err := s.Put(item); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := s.Get("feature/login")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil {
		t.Fatal("Get returned nil for stored branch")
	}
	if !reflect.DeepEqual(*got, item) {
		t.Errorf("round trip mismatch:\n got  %+v\n want %+v", *got, item)
	}
}

func TestGetMissingBranch(t *testing.T) {
	s := openTestStore(t)
	got, err := s.Get("nope")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Errorf("Get(missing) = %+v, want nil", got)
	}
}

func TestPutUpserts(t *testing.T) {
	s := openTestStore(t)
	first := model.ReviewItem{SourceBranch: "feat", Number: 1, Checks: model.ChecksPending}
	second := model.ReviewItem{SourceBranch: "feat", Number: 1, Checks: model.ChecksSuccess}

	if err := s.Put(first); err != nil {
		t.Fatal(err)
	}
	if err := s.Put(second); err != nil {
		t.Fatal(err)
	}

	items, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("len = %d, want 1 after upsert", len(items))
	}
	if items[0].Checks != model.ChecksSuccess {
		t.Errorf("Checks = %q, want success after update", items[0].Checks)
	}
	if items[0].RefreshedAt.IsZero() {
		t.Error("Put should stamp RefreshedAt when missing")
	}
}

func TestListOrderedAndDelete(t *testing.T) {
	s := openTestStore(t)
	for _, b := range []string{"zeta", "alpha", "mid"} {
		if err := s.Put(model.ReviewItem{SourceBranch: b, Number: 1}); err != nil {
			t.Fatal(err)
		}
	}

	items, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, i := range items {
		names = append(names, i.SourceBranch)
	}
	want := []string{"alpha", "mid", "zeta"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("List order = %v, want %v", names, want)
	}

	if err := s.Delete("mid"); err != nil {
		t.Fatal(err)
	}
	items, _ = s.List()
	if len(items) != 2 {
		t.Errorf("len = %d after delete, want 2", len(items))
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	s1, err := Open(dir, slogutil.NewDiscardLogger())
	if err != nil {
		t.Fatal(err)
	}
	if err := s1.Put(model.ReviewItem{SourceBranch: "keep", Number: 9}); err != nil {
		t.Fatal(err)
	}
	_ = s1.Close()

	s2, err := Open(dir, slogutil.NewDiscardLogger())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()
	got, err := s2.Get("keep")
	if err != nil || got == nil || got.Number != 9 {
		t.Errorf("data should survive reopen: %+v, %v", got, err)
	}
}
