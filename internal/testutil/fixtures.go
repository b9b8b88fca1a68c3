package testutil

import (
	"time"

	pkgcatalog "github.com/HerbHall/tourstream/pkg/catalog"
)

// NewProduct returns a normalized Product with sensible defaults, suitable for
// test fixtures.
func NewProduct(id string, opts ...func(*pkgcatalog.Product)) *pkgcatalog.Product {
	p := &pkgcatalog.Product{
		ID:          id,
		Name:        "테스트 투어 " + id,
		Description: "test tour",
		Images:      []string{"/images/test.jpg"},
		IsAvailable: true,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.Normalize()
	return p
}

// WithName sets the product name.
func WithName(name string) func(*pkgcatalog.Product) {
	return func(p *pkgcatalog.Product) { p.Name = name }
}

// WithDescription sets the product description.
func WithDescription(desc string) func(*pkgcatalog.Product) {
	return func(p *pkgcatalog.Product) { p.Description = desc }
}

// WithViews sets the view count.
func WithViews(n int) func(*pkgcatalog.Product) {
	return func(p *pkgcatalog.Product) { p.Views = n }
}

// WithPrice sets the list price.
func WithPrice(price int64) func(*pkgcatalog.Product) {
	return func(p *pkgcatalog.Product) { p.Price = &price }
}

// WithDiscount sets the discount percentage.
func WithDiscount(d int) func(*pkgcatalog.Product) {
	return func(p *pkgcatalog.Product) { p.Discount = &d }
}

// WithRecommended marks the product as recommended.
func WithRecommended() func(*pkgcatalog.Product) {
	return func(p *pkgcatalog.Product) { p.IsRecommended = true }
}

// WithCategories sets the category list.
func WithCategories(cs ...string) func(*pkgcatalog.Product) {
	return func(p *pkgcatalog.Product) { p.Categories = cs }
}

// WithLocations sets the location list.
func WithLocations(ls ...string) func(*pkgcatalog.Product) {
	return func(p *pkgcatalog.Product) { p.Locations = ls }
}

// WithTags sets the tag list.
func WithTags(ts ...string) func(*pkgcatalog.Product) {
	return func(p *pkgcatalog.Product) { p.Tags = ts }
}

// WithURLs sets the booking links.
func WithURLs(urls ...string) func(*pkgcatalog.Product) {
	return func(p *pkgcatalog.Product) { p.ExternalURLs = urls }
}

// WithCreatedAt sets the creation timestamp.
func WithCreatedAt(t time.Time) func(*pkgcatalog.Product) {
	return func(p *pkgcatalog.Product) { p.CreatedAt = &t }
}

// Values dereferences ps, for building a catalog from fixtures.
func Values(ps ...*pkgcatalog.Product) []pkgcatalog.Product {
	out := make([]pkgcatalog.Product, len(ps))
	for i, p := range ps {
		out[i] = *p
	}
	return out
}

// IDs returns the ids of ps in order.
func IDs(ps []*pkgcatalog.Product) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}
