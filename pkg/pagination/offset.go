package pagination

// PageNumberForOffset maps a zero-based record offset to a 1-based page
// number: offset/pageSize + 1. Negative offsets count as 0 and a
// non-positive pageSize yields page 1.
func PageNumberForOffset(offset, pageSize int) int {
	if pageSize <= 0 || offset < 0 {
		return 1
	}
	return offset/pageSize + 1
}

// OffsetForPage is the first record offset of page n.
func OffsetForPage(n, pageSize int) int {
	if n < 1 || pageSize <= 0 {
		return 0
	}
	return (n - 1) * pageSize
}

// PageCount returns how many pages of pageSize cover total records.
func PageCount(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}
