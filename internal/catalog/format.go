package catalog

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	pkgcatalog "github.com/HerbHall/tourstream/pkg/catalog"
)

// Storefront labels.
const (
	AllLabel    = "전체"
	SiteName    = "투어 스트림"
	PrimaryBook = "예약하기"
)

// SortLabels maps each sort mode to its storefront label.
var SortLabels = map[SortMode]string{
	SortPopular:   "인기순",
	SortLatest:    "최신순",
	SortPriceLow:  "가격 낮은순",
	SortPriceHigh: "가격 높은순",
}

// FormatWon formats an amount in won with Korean digit grouping: ₩8,000.
func FormatWon(amount int64) string {
	return message.NewPrinter(language.Korean).Sprintf("₩%d", amount)
}

// DiscountBadge returns the discount banner text, empty without a discount.
func DiscountBadge(discount int) string {
	if discount <= 0 {
		return ""
	}
	return fmt.Sprintf("%d%% 할인 중!", discount)
}

// BookingLabel names the booking link at index i: the first is the primary
// button, the rest are numbered from 2.
func BookingLabel(i int) string {
	if i == 0 {
		return PrimaryBook
	}
	return fmt.Sprintf("예약 링크 %d", i+1)
}

// PageTitle is the detail page title.
func PageTitle(p *pkgcatalog.Product) string {
	return p.Name + " - " + SiteName
}

// NormalizeFilter maps the empty value and the storefront "all" label to All.
func NormalizeFilter(v string) string {
	v = strings.TrimSpace(v)
	if v == "" || v == AllLabel || strings.EqualFold(v, All) {
		return All
	}
	return v
}

// ParseSortMode maps an empty value to popular. Unknown values are kept so
// the query passes the filtered order through unchanged.
func ParseSortMode(v string) SortMode {
	v = strings.TrimSpace(v)
	if v == "" {
		return SortPopular
	}
	return SortMode(v)
}

// Known reports whether m is one of the recognized sort modes.
func (m SortMode) Known() bool {
	_, ok := SortLabels[m]
	return ok
}
