package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name string
		err  *CanopyError
		want string
	}{
		{
			name: "without cause",
			err:  New(QueryFailed, "merge-base lookup failed", nil),
			want: "[QUERY_FAILED] merge-base lookup failed",
		},
		{
			name: "with cause",
			err:  New(CacheUnavailable, "open cache", fmt.Errorf("disk full")),
			want: "[CACHE_UNAVAILABLE] open cache: disk full",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.err.Error(); got != tc.want {
				t.Errorf("Error() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	cause := fmt.Errorf("exit status 128")
	err := New(QueryFailed, "git rev-list", cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
}

func TestCodeOf(t *testing.T) {
	if got := CodeOf(New(PatternInvalid, "bad pattern", nil)); got != PatternInvalid {
		t.Errorf("CodeOf = %q, want %q", got, PatternInvalid)
	}
	if got := CodeOf(fmt.Errorf("plain")); got != InternalError {
		t.Errorf("CodeOf(plain) = %q, want %q", got, InternalError)
	}
}

func TestWithDetails(t *testing.T) {
	err := New(StaleDesignRef, "edge references missing branch", nil).
		WithDetails(map[string]string{"branch": "release/1.0"})

	details, ok := err.Details.(map[string]string)
	if !ok {
		t.Fatalf("Details type = %T, want map[string]string", err.Details)
	}
	if details["branch"] != "release/1.0" {
		t.Errorf("Details[branch] = %q, want release/1.0", details["branch"])
	}
	if !strings.Contains(err.Error(), "STALE_DESIGN_REF") {
		t.Error("Error() should contain the code")
	}
}
