package analytics

import "strings"

// Event names.
const (
	EventSearch       = "search"
	EventFilterChange = "filter_change"
	EventProductClick = "product_click"
)

// Attribute keys.
const (
	AttrSearchTerm    = "search_term"
	AttrFilterType    = "filter_type"
	AttrFilterValue   = "filter_value"
	AttrProductID     = "product_id"
	AttrEventCategory = "event_category"
	AttrEventLabel    = "event_label"
)

// Filter dimensions reported by FilterChange.
const (
	FilterLocation = "location"
	FilterCategory = "category"
)

// Search records a keyword search. Blank keywords are not reported.
func Search(s Sink, keyword string) {
	if strings.TrimSpace(keyword) == "" {
		return
	}
	s.Record(EventSearch, map[string]any{
		AttrSearchTerm:    keyword,
		AttrEventCategory: "search",
		AttrEventLabel:    "keyword_search",
	})
}

// FilterChange records a filter selection on one dimension.
func FilterChange(s Sink, filterType, value string) {
	s.Record(EventFilterChange, map[string]any{
		AttrFilterType:    filterType,
		AttrFilterValue:   value,
		AttrEventCategory: "engagement",
		AttrEventLabel:    "filter_interaction",
	})
}

// ProductClick records that a product detail was opened.
func ProductClick(s Sink, productID string) {
	s.Record(EventProductClick, map[string]any{
		AttrProductID:     productID,
		AttrEventCategory: "engagement",
		AttrEventLabel:    "product_card_click",
	})
}
