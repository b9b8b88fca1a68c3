package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// ErrNoRows is returned when the CSV input has no header or no data rows.
var ErrNoRows = errors.New("csv has no header and data rows")

// RowError describes a CSV row that was skipped or only partially converted.
// Row is the 1-based data row number (the header is row 0).
type RowError struct {
	Row    int
	Reason string
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
}

// Conversion is the result of ParseCSV.
type Conversion struct {
	Products []Product
	Warnings []RowError
}

// Column name prefixes collected into ordered sequences. "image1", "image2", ...
// all land in Images in header order.
const (
	prefixImage       = "image"
	prefixCategory    = "category"
	prefixLocation    = "location"
	prefixExternalURL = "externalUrl"
	prefixTag         = "tag"
)

// ParseCSV converts spreadsheet rows into products. The first row names the
// columns. Rows whose cell count differs from the header are skipped and
// reported; the remaining rows are normalized.
func ParseCSV(r io.Reader) (*Conversion, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) < 2 {
		return nil, ErrNoRows
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	conv := &Conversion{Products: make([]Product, 0, len(records)-1)}
	for i, rec := range records[1:] {
		row := i + 1
		if len(rec) != len(headers) {
			conv.Warnings = append(conv.Warnings, RowError{
				Row:    row,
				Reason: fmt.Sprintf("expected %d columns, got %d; skipped", len(headers), len(rec)),
			})
			continue
		}
		p, warns := csvRowToProduct(headers, rec, row)
		conv.Warnings = append(conv.Warnings, warns...)
		p.Normalize()
		conv.Products = append(conv.Products, p)
	}
	return conv, nil
}

// csvRowToProduct maps one row onto a Product using the header names.
func csvRowToProduct(headers, rec []string, row int) (Product, []RowError) {
	p := Product{IsAvailable: true}
	var warns []RowError
	warn := func(format string, args ...any) {
		warns = append(warns, RowError{Row: row, Reason: fmt.Sprintf(format, args...)})
	}

	for i, h := range headers {
		v := strings.TrimSpace(rec[i])

		switch {
		case strings.HasPrefix(h, prefixImage):
			if v != "" {
				p.Images = append(p.Images, v)
			}
			continue
		case strings.HasPrefix(h, prefixCategory):
			if v != "" {
				p.Categories = append(p.Categories, v)
			}
			continue
		case strings.HasPrefix(h, prefixLocation):
			if v != "" {
				p.Locations = append(p.Locations, v)
			}
			continue
		case strings.HasPrefix(h, prefixExternalURL):
			if v != "" {
				p.ExternalURLs = append(p.ExternalURLs, v)
			}
			continue
		case strings.HasPrefix(h, prefixTag):
			if v != "" {
				p.Tags = append(p.Tags, v)
			}
			continue
		}

		switch h {
		case "id":
			p.ID = v
		case "name":
			p.Name = v
		case "description":
			p.Description = v
		case "views":
			p.Views = atoiOrZero(v)
		case "isRecommended":
			p.IsRecommended = parseFlag(v)
		case "isAvailable":
			p.IsAvailable = parseFlag(v)
		case "price":
			if v == "" {
				continue
			}
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil || n < 0 {
				warn("invalid price %q; using default", v)
				continue
			}
			p.Price = &n
		case "discount":
			if v == "" {
				continue
			}
			d := atoiOrZero(v)
			p.Discount = &d
		case "createdAt", "startDate", "endDate":
			if v == "" {
				continue
			}
			t, err := parseDate(v)
			if err != nil {
				warn("invalid %s %q: %v", h, v, err)
				continue
			}
			switch h {
			case "createdAt":
				p.CreatedAt = &t
			case "startDate":
				p.StartDate = &t
			default:
				p.EndDate = &t
			}
		}
	}

	if p.ID == "" {
		p.ID = fmt.Sprintf("product_%d", row)
	}
	return p, warns
}

// atoiOrZero parses the leading integer of s, returning 0 when there is none.
func atoiOrZero(s string) int {
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

func parseFlag(s string) bool {
	return s == "true" || s == "1"
}

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

func parseDate(s string) (time.Time, error) {
	var err error
	for _, layout := range dateLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}
