// Package catalog defines the tour product model, the data set format it is
// stored in, and the offline CSV conversion that produces that data set.
package catalog

import (
	"strconv"
	"strings"
	"time"
)

// PlaceholderImage is substituted when a product has no images.
const PlaceholderImage = "/images/default.jpg"

// DefaultPrice is the per-person price used when a record carries none.
const DefaultPrice int64 = 50000

// Product is a single tour in the catalog. Products are immutable once a
// collection has been loaded; consumers receive pointers and must not modify
// them.
type Product struct {
	ID            string     `json:"id" yaml:"id"`
	Name          string     `json:"name" yaml:"name"`
	Description   string     `json:"description" yaml:"description"`
	Images        []string   `json:"images" yaml:"images"`
	Categories    []string   `json:"categories" yaml:"categories"`
	Locations     []string   `json:"locations" yaml:"locations"`
	Tags          []string   `json:"tags" yaml:"tags"`
	ExternalURLs  []string   `json:"externalUrls" yaml:"externalUrls"`
	Views         int        `json:"views" yaml:"views"`
	IsRecommended bool       `json:"isRecommended" yaml:"isRecommended"`
	IsAvailable   bool       `json:"isAvailable" yaml:"isAvailable"`
	Price         *int64     `json:"price,omitempty" yaml:"price,omitempty"`
	Discount      *int       `json:"discount,omitempty" yaml:"discount,omitempty"`
	CreatedAt     *time.Time `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
	StartDate     *time.Time `json:"startDate,omitempty" yaml:"startDate,omitempty"`
	EndDate       *time.Time `json:"endDate,omitempty" yaml:"endDate,omitempty"`
}

// Normalize resolves load-time defaults in place: an empty image list gets the
// placeholder, nil sequences become empty, negative views become zero and the
// discount is clamped to 0..100.
func (p *Product) Normalize() {
	if len(p.Images) == 0 {
		p.Images = []string{PlaceholderImage}
	}
	if p.Categories == nil {
		p.Categories = []string{}
	}
	if p.Locations == nil {
		p.Locations = []string{}
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if p.ExternalURLs == nil {
		p.ExternalURLs = []string{}
	}
	if p.Views < 0 {
		p.Views = 0
	}
	if p.Discount != nil {
		d := min(max(*p.Discount, 0), 100)
		p.Discount = &d
	}
}

// ListPrice returns the undiscounted price, falling back to DefaultPrice.
func (p *Product) ListPrice() int64 {
	if p.Price == nil {
		return DefaultPrice
	}
	return *p.Price
}

// DiscountPercent returns the discount percentage, 0 when absent.
func (p *Product) DiscountPercent() int {
	if p.Discount == nil {
		return 0
	}
	return *p.Discount
}

// EffectivePrice returns the list price after the percentage discount,
// floored to a whole currency unit.
func (p *Product) EffectivePrice() int64 {
	return EffectivePrice(p.ListPrice(), p.DiscountPercent())
}

// EffectivePrice applies a percentage discount to price. Integer arithmetic
// keeps the floor exact for the non-negative prices the catalog carries.
func EffectivePrice(price int64, discount int) int64 {
	if discount <= 0 {
		return price
	}
	return price * int64(100-discount) / 100
}

// Sequence returns the numeric suffix of the product id ("product_12" -> 12).
// ok is false when the id carries no parseable suffix.
func (p *Product) Sequence() (n int64, ok bool) {
	i := strings.LastIndexByte(p.ID, '_')
	if i < 0 || i == len(p.ID)-1 {
		return 0, false
	}
	n, err := strconv.ParseInt(p.ID[i+1:], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
