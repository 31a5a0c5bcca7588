package pagination

import "testing"

func TestPageNumberForOffset(t *testing.T) {
	tests := []struct {
		offset, size, want int
	}{
		{0, 12, 1},
		{11, 12, 1},
		{12, 12, 2},
		{24, 12, 3},
		{35, 12, 3},
		{-5, 12, 1},
		{100, 0, 1},
		{7, 1, 8},
	}

	for _, tt := range tests {
		if got := PageNumberForOffset(tt.offset, tt.size); got != tt.want {
			t.Errorf("PageNumberForOffset(%d, %d) = %d, want %d", tt.offset, tt.size, got, tt.want)
		}
	}
}

func TestOffsetForPage(t *testing.T) {
	for n := 1; n <= 5; n++ {
		offset := OffsetForPage(n, 12)
		if back := PageNumberForOffset(offset, 12); back != n {
			t.Errorf("page %d -> offset %d -> page %d", n, offset, back)
		}
	}
	if OffsetForPage(0, 12) != 0 {
		t.Error("page 0 should map to offset 0")
	}
}

func TestPageCount(t *testing.T) {
	tests := []struct {
		total, size, want int
	}{
		{0, 12, 0},
		{1, 12, 1},
		{12, 12, 1},
		{13, 12, 2},
		{100, 12, 9},
		{10, 0, 0},
	}
	for _, tt := range tests {
		if got := PageCount(tt.total, tt.size); got != tt.want {
			t.Errorf("PageCount(%d, %d) = %d, want %d", tt.total, tt.size, got, tt.want)
		}
	}
}
