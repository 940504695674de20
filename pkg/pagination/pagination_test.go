package pagination

import "testing"

func TestNormalizeLimit(t *testing.T) {
	if got := NormalizeLimit(0); got != DefaultLimit {
		t.Fatalf("zero limit should default, got %d", got)
	}
	if got := NormalizeLimit(1000); got != MaxLimit {
		t.Fatalf("limit should cap at %d, got %d", MaxLimit, got)
	}
	if got := NormalizeLimit(5); got != 5 {
		t.Fatalf("in-range limit changed: %d", got)
	}
}

func TestOffset(t *testing.T) {
	p := Params{Page: 3, Limit: 10}
	if got := p.Offset(); got != 20 {
		t.Fatalf("expected offset 20, got %d", got)
	}
	p = Params{Page: 0, Limit: 10}
	if got := p.Offset(); got != 0 {
		t.Fatalf("page floor should yield offset 0, got %d", got)
	}
}

func TestPages(t *testing.T) {
	if got := Pages(0, 10); got != 1 {
		t.Fatalf("empty set should still report one page, got %d", got)
	}
	if got := Pages(21, 10); got != 3 {
		t.Fatalf("expected 3 pages, got %d", got)
	}
	if got := Pages(20, 10); got != 2 {
		t.Fatalf("expected 2 pages, got %d", got)
	}
}
