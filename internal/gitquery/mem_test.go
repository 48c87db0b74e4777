package gitquery

import (
	"context"
	"fmt"
	"testing"
)

// buildForked creates:
//
//	c1 - c2 - c3        (main)
//	       \
//	        f1 - f2     (feature)
func buildForked() *Mem {
	m := NewMem()
	m.Chain("", "c1", "c2", "c3")
	m.Chain("c2", "f1", "f2")
	m.AddBranch("main", "c3")
	m.AddBranch("feature", "f2")
	return m
}

func TestMemMergeBase(t *testing.T) {
	m := buildForked()
	ctx := context.Background()

	base, err := m.MergeBase(ctx, "main", "feature")
	if err != nil {
		t.Fatalf("MergeBase: %v", err)
	}
	if base != "c2" {
		t.Errorf("MergeBase = %q, want c2", base)
	}
}

func TestMemMergeBaseUnrelated(t *testing.T) {
	m := NewMem()
	m.Chain("", "a1")
	m.Chain("", "b1")
	m.AddBranch("a", "a1")
	m.AddBranch("b", "b1")

	base, err := m.MergeBase(context.Background(), "a", "b")
	if err != nil {
		t.Fatalf("MergeBase: %v", err)
	}
	if base != "" {
		t.Errorf("MergeBase = %q, want empty for unrelated histories", base)
	}
}

func TestMemDistance(t *testing.T) {
	m := buildForked()

	d, err := m.Distance(context.Background(), "main", "feature")
	if err != nil {
		t.Fatalf("Distance: %v", err)
	}
	if d.Ahead != 2 || d.Behind != 1 {
		t.Errorf("Distance = %+v, want ahead=2 behind=1", d)
	}
}

func TestMemIsAncestor(t *testing.T) {
	m := buildForked()
	ctx := context.Background()

	tests := []struct {
		a, b string
		want bool
	}{
		{"c2", "f2", true},
		{"c3", "f2", false},
		{"c1", "c3", true},
		{"f2", "c3", false},
	}
	for _, tc := range tests {
		t.Run(tc.a+"_"+tc.b, func(t *testing.T) {
			got, err := m.IsAncestor(ctx, tc.a, tc.b)
			if err != nil {
				t.Fatalf("IsAncestor: %v", err)
			}
			if got != tc.want {
				t.Errorf("IsAncestor(%s, %s) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
		})
	}
}

func TestMemInjectedFailure(t *testing.T) {
	m := buildForked()
	m.Errs["distance:main:feature"] = fmt.Errorf("boom")

	if _, err := m.Distance(context.Background(), "main", "feature"); err == nil {
		t.Error("expected injected failure")
	}
	// Other queries stay healthy.
	if _, err := m.Distance(context.Background(), "feature", "main"); err != nil {
		t.Errorf("unrelated query failed: %v", err)
	}
}
