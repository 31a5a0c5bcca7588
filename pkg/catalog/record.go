// Package catalog fetches pages of records from a remotely paginated
// collection endpoint and maps them into Record and Page values.
package catalog

// DefaultTotalRecords is reported as Page.TotalRecords when the upstream
// omits pagination.total, so pagination controls always have a size.
const DefaultTotalRecords = 100

// Record is one catalog entry. ID is its identity; every other field is for
// display only.
type Record struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	DateStart     *int   `json:"date_start,omitempty"`
	DateEnd       *int   `json:"date_end,omitempty"`
	ArtistDisplay string `json:"artist_display"`
	PlaceOfOrigin string `json:"place_of_origin"`
	Inscriptions  string `json:"inscriptions"`
}

// Page is one fetched batch of records. It is replaced, never merged.
type Page struct {
	// Number is the 1-based page that was requested.
	Number int `json:"page"`

	Records []Record `json:"records"`

	// TotalRecords across all pages; DefaultTotalRecords when unreported.
	TotalRecords int `json:"total_records"`

	// TotalPages is 0 when the upstream does not report it.
	TotalPages int `json:"total_pages"`

	// Limit is the upstream page size, 0 when unreported.
	Limit int `json:"limit,omitempty"`
}

// HasNext reports whether the upstream says pages exist after this one.
func (p *Page) HasNext() bool {
	if p == nil {
		return false
	}
	return p.TotalPages > 0 && p.Number < p.TotalPages
}

// IDs returns the record identifiers in page order.
func (p *Page) IDs() []int64 {
	if p == nil {
		return nil
	}
	ids := make([]int64, len(p.Records))
	for i, r := range p.Records {
		ids[i] = r.ID
	}
	return ids
}

// Len returns the number of records on the page.
func (p *Page) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Records)
}
