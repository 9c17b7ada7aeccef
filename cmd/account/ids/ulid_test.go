package ids

import (
	"testing"
	"time"
)

func TestNewULID(t *testing.T) {
	t.Parallel()

	a, err := NewULID(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("NewULID: %v", err)
	}
	b, err := NewULID(time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("NewULID: %v", err)
	}

	if len(a) != 26 || !Valid(a) {
		t.Fatalf("invalid ulid %q", a)
	}
	if a >= b {
		t.Fatalf("expected time ordering: %q >= %q", a, b)
	}
	if Valid("not-a-ulid") {
		t.Fatalf("expected invalid")
	}
}

func TestNewULID_ZeroTime(t *testing.T) {
	t.Parallel()

	id, err := NewULID(time.Time{})
	if err != nil || !Valid(id) {
		t.Fatalf("NewULID zero time: %q %v", id, err)
	}
}
