package catalog

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/HerbHall/tourstream/internal/analytics"
	"github.com/HerbHall/tourstream/internal/server"
	pkgcatalog "github.com/HerbHall/tourstream/pkg/catalog"
)

// ProductSummary is a product as listed in query results.
type ProductSummary struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Image          string   `json:"image"`
	Images         []string `json:"images"`
	Categories     []string `json:"categories"`
	Locations      []string `json:"locations"`
	Tags           []string `json:"tags"`
	Views          int      `json:"views"`
	IsRecommended  bool     `json:"isRecommended"`
	IsAvailable    bool     `json:"isAvailable"`
	Price          int64    `json:"price"`
	Discount       int      `json:"discount"`
	EffectivePrice int64    `json:"effectivePrice"`
	DisplayPrice   string   `json:"displayPrice"`
	// OriginalDisplayPrice is the struck-through list price, set only when
	// a discount applies.
	OriginalDisplayPrice string `json:"originalDisplayPrice,omitempty"`
}

// BookingLink is one external booking button.
type BookingLink struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// PageMeta carries the SEO tags of the detail page.
type PageMeta struct {
	Title         string `json:"title"`
	OGTitle       string `json:"ogTitle"`
	OGDescription string `json:"ogDescription"`
	OGImage       string `json:"ogImage"`
}

// ProductDetail is the response for GET /api/v1/catalog/products/{id}.
type ProductDetail struct {
	ProductSummary
	DiscountBadge string        `json:"discountBadge,omitempty"`
	BookingLinks  []BookingLink `json:"bookingLinks"`
	StartDate     *time.Time    `json:"startDate,omitempty"`
	EndDate       *time.Time    `json:"endDate,omitempty"`
	Meta          PageMeta      `json:"meta"`
}

// ProductsResponse is the response for GET /api/v1/catalog/products.
type ProductsResponse struct {
	Count       int              `json:"count"`
	Params      Params           `json:"params"`
	Recommended []ProductSummary `json:"recommended"`
	Regular     []ProductSummary `json:"regular"`
}

// Option is a selectable filter or sort value with its label.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// FiltersResponse is the response for GET /api/v1/catalog/filters.
type FiltersResponse struct {
	Locations  []Option `json:"locations"`
	Categories []Option `json:"categories"`
	Sorts      []Option `json:"sorts"`
}

// Handler serves the catalog API.
type Handler struct {
	engine     *Engine
	sink       analytics.Sink
	logger     *zap.Logger
	locations  []string
	categories []string
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithVocabulary sets the location and category filter values offered by
// the filters endpoint.
func WithVocabulary(locations, categories []string) HandlerOption {
	return func(h *Handler) {
		h.locations = locations
		h.categories = categories
	}
}

// NewHandler creates a catalog API handler. A nil sink disables analytics.
func NewHandler(engine *Engine, sink analytics.Sink, logger *zap.Logger, opts ...HandlerOption) *Handler {
	if sink == nil {
		sink = analytics.Nop{}
	}
	h := &Handler{engine: engine, sink: sink, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes implements server.RouteRegistrar.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/catalog/products", h.handleQuery)
	mux.HandleFunc("GET /api/v1/catalog/products/{id}", h.handleDetail)
	mux.HandleFunc("GET /api/v1/catalog/filters", h.handleFilters)
}

// ParamsFromQuery reads keyword, location, category and sort from the URL
// query, normalizing the filter sentinels.
func ParamsFromQuery(r *http.Request) Params {
	q := r.URL.Query()
	return Params{
		Keyword:  q.Get("keyword"),
		Location: NormalizeFilter(q.Get("location")),
		Category: NormalizeFilter(q.Get("category")),
		Sort:     ParseSortMode(q.Get("sort")),
	}
}

func (h *Handler) handleQuery(w http.ResponseWriter, r *http.Request) {
	params := ParamsFromQuery(r)

	res, err := h.engine.Query(params)
	if err != nil {
		h.logger.Error("failed to query catalog", zap.Error(err))
		server.Unavailable(w, "product catalog failed to load", r.URL.Path)
		return
	}
	RecordQuery(h.sink, params)

	writeJSON(w, http.StatusOK, ProductsResponse{
		Count:       len(res.Products),
		Params:      params,
		Recommended: summaries(res.Recommended),
		Regular:     summaries(res.Regular),
	})
}

// RecordQuery reports the search and filter events implied by params.
func RecordQuery(sink analytics.Sink, params Params) {
	analytics.Search(sink, params.Keyword)
	if params.Location != All {
		analytics.FilterChange(sink, analytics.FilterLocation, params.Location)
	}
	if params.Category != All {
		analytics.FilterChange(sink, analytics.FilterCategory, params.Category)
	}
}

func (h *Handler) handleDetail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	p, ok, err := h.engine.Lookup(id)
	if err != nil {
		h.logger.Error("failed to load catalog", zap.Error(err))
		server.Unavailable(w, "product catalog failed to load", r.URL.Path)
		return
	}
	if !ok {
		server.NotFound(w, "product "+id+" not found", r.URL.Path)
		return
	}
	analytics.ProductClick(h.sink, p.ID)

	writeJSON(w, http.StatusOK, Detail(p))
}

func (h *Handler) handleFilters(w http.ResponseWriter, _ *http.Request) {
	resp := FiltersResponse{
		Locations:  vocabulary(h.locations),
		Categories: vocabulary(h.categories),
		Sorts:      make([]Option, 0, len(SortModes)),
	}
	for _, m := range SortModes {
		resp.Sorts = append(resp.Sorts, Option{Value: string(m), Label: SortLabels[m]})
	}
	writeJSON(w, http.StatusOK, resp)
}

func vocabulary(values []string) []Option {
	out := make([]Option, 0, len(values)+1)
	out = append(out, Option{Value: All, Label: AllLabel})
	for _, v := range values {
		out = append(out, Option{Value: v, Label: v})
	}
	return out
}

// Summary converts a product to its list representation.
func Summary(p *pkgcatalog.Product) ProductSummary {
	s := ProductSummary{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		Image:          p.Images[0],
		Images:         p.Images,
		Categories:     p.Categories,
		Locations:      p.Locations,
		Tags:           p.Tags,
		Views:          p.Views,
		IsRecommended:  p.IsRecommended,
		IsAvailable:    p.IsAvailable,
		Price:          p.ListPrice(),
		Discount:       p.DiscountPercent(),
		EffectivePrice: p.EffectivePrice(),
	}
	s.DisplayPrice = FormatWon(s.EffectivePrice)
	if s.Discount > 0 {
		s.OriginalDisplayPrice = FormatWon(s.Price)
	}
	return s
}

// Detail converts a product to its detail representation.
func Detail(p *pkgcatalog.Product) ProductDetail {
	d := ProductDetail{
		ProductSummary: Summary(p),
		DiscountBadge:  DiscountBadge(p.DiscountPercent()),
		BookingLinks:   make([]BookingLink, 0, len(p.ExternalURLs)),
		StartDate:      p.StartDate,
		EndDate:        p.EndDate,
		Meta: PageMeta{
			Title:         PageTitle(p),
			OGTitle:       p.Name,
			OGDescription: p.Description,
			OGImage:       p.Images[0],
		},
	}
	for i, u := range p.ExternalURLs {
		d.BookingLinks = append(d.BookingLinks, BookingLink{Label: BookingLabel(i), URL: u})
	}
	return d
}

func summaries(ps []*pkgcatalog.Product) []ProductSummary {
	out := make([]ProductSummary, 0, len(ps))
	for _, p := range ps {
		out = append(out, Summary(p))
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
