package catalog

import (
	"encoding/json"
	"fmt"
	"io"
)

type rawRecord struct {
	ID            *int64  `json:"id"`
	Title         *string `json:"title"`
	DateStart     *int    `json:"date_start"`
	DateEnd       *int    `json:"date_end"`
	ArtistDisplay *string `json:"artist_display"`
	PlaceOfOrigin *string `json:"place_of_origin"`
	Inscriptions  *string `json:"inscriptions"`
}

type rawPagination struct {
	Total       *int `json:"total"`
	TotalPages  *int `json:"total_pages"`
	Limit       *int `json:"limit"`
	CurrentPage *int `json:"current_page"`
}

type rawPage struct {
	Data       *[]rawRecord   `json:"data"`
	Pagination *rawPagination `json:"pagination"`
}

// decodePage maps a collection payload into a Page for the requested number.
func decodePage(r io.Reader, number int) (*Page, error) {
	var raw rawPage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrMalformedResponse, err)
	}
	if raw.Data == nil {
		return nil, fmt.Errorf("%w: missing data", ErrMalformedResponse)
	}

	page := &Page{
		Number:       number,
		Records:      make([]Record, 0, len(*raw.Data)),
		TotalRecords: DefaultTotalRecords,
	}

	for i, item := range *raw.Data {
		if item.ID == nil {
			return nil, fmt.Errorf("%w: record %d has no id", ErrMalformedResponse, i)
		}
		page.Records = append(page.Records, Record{
			ID:            *item.ID,
			Title:         deref(item.Title),
			DateStart:     item.DateStart,
			DateEnd:       item.DateEnd,
			ArtistDisplay: deref(item.ArtistDisplay),
			PlaceOfOrigin: deref(item.PlaceOfOrigin),
			Inscriptions:  deref(item.Inscriptions),
		})
	}

	if p := raw.Pagination; p != nil {
		if p.Total != nil {
			page.TotalRecords = *p.Total
		}
		if p.TotalPages != nil {
			page.TotalPages = *p.TotalPages
		}
		if p.Limit != nil {
			page.Limit = *p.Limit
		}
	}

	return page, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
