package utils

import "testing"

func TestNewPage(t *testing.T) {
	cases := []struct {
		page, limit         int
		wantPage, wantLimit int
	}{
		{0, 0, 1, DefaultPageSize},
		{-3, 5, 1, 5},
		{2, 500, 2, MaxPageSize},
		{4, 25, 4, 25},
	}
	for _, tc := range cases {
		p := NewPage(tc.page, tc.limit)
		if p.Page != tc.wantPage || p.Limit != tc.wantLimit {
			t.Fatalf("NewPage(%d,%d) = %+v", tc.page, tc.limit, p)
		}
	}
	if off := NewPage(3, 10).Offset(); off != 20 {
		t.Fatalf("offset = %d, want 20", off)
	}
	if n := NewPage(1, 10).Pages(21); n != 3 {
		t.Fatalf("pages = %d, want 3", n)
	}
}

func TestAtoiDefault(t *testing.T) {
	if AtoiDefault("", 7) != 7 || AtoiDefault("x", 7) != 7 || AtoiDefault("12", 7) != 12 {
		t.Fatalf("AtoiDefault mismatch")
	}
}
