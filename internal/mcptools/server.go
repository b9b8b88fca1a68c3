// Package mcptools exposes the tour catalog as Model Context Protocol tools
// so assistants can search and inspect tours over stdio.
package mcptools

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/HerbHall/tourstream/internal/analytics"
	"github.com/HerbHall/tourstream/internal/catalog"
	pkgcatalog "github.com/HerbHall/tourstream/pkg/catalog"
)

// ServerName is the implementation name reported during initialization.
const ServerName = "tourstream"

// Tool names.
const (
	ToolSearchProducts = "search_products"
	ToolGetProduct     = "get_product"
	ToolListFilters    = "list_filters"
)

// SearchInput is the argument of search_products.
type SearchInput struct {
	Keyword  string `json:"keyword,omitempty" jsonschema:"free text matched against name, description, tags, categories and locations"`
	Location string `json:"location,omitempty" jsonschema:"location substring, or ALL"`
	Category string `json:"category,omitempty" jsonschema:"exact category, or ALL"`
	Sort     string `json:"sort,omitempty" jsonschema:"one of popular, latest, price-low, price-high"`
}

// Tour is a product as returned to tool callers.
type Tour struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Locations      []string `json:"locations"`
	Categories     []string `json:"categories"`
	Tags           []string `json:"tags"`
	Views          int      `json:"views"`
	Recommended    bool     `json:"recommended"`
	Price          int64    `json:"price"`
	Discount       int      `json:"discount"`
	EffectivePrice int64    `json:"effectivePrice"`
	DisplayPrice   string   `json:"displayPrice"`
}

// SearchOutput is the result of search_products.
type SearchOutput struct {
	Count       int    `json:"count"`
	Recommended []Tour `json:"recommended"`
	Regular     []Tour `json:"regular"`
}

// GetInput is the argument of get_product.
type GetInput struct {
	ID string `json:"id" jsonschema:"product id, for example product_3"`
}

// GetOutput is the result of get_product.
type GetOutput struct {
	Tour          Tour          `json:"tour"`
	Title         string        `json:"title"`
	DiscountBadge string        `json:"discountBadge"`
	BookingLinks  []BookingLink `json:"bookingLinks"`
	StartDate     string        `json:"startDate"`
	EndDate       string        `json:"endDate"`
}

// BookingLink is a labelled external booking URL.
type BookingLink struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// FiltersInput is the (empty) argument of list_filters.
type FiltersInput struct{}

// FiltersOutput is the result of list_filters.
type FiltersOutput struct {
	Locations  []string `json:"locations"`
	Categories []string `json:"categories"`
	Sorts      []string `json:"sorts"`
}

// Tools holds the dependencies of the tool handlers.
type Tools struct {
	engine     *catalog.Engine
	sink       analytics.Sink
	logger     *zap.Logger
	locations  []string
	categories []string
}

// NewTools creates the tool set. A nil sink disables analytics.
func NewTools(engine *catalog.Engine, sink analytics.Sink, logger *zap.Logger, locations, categories []string) *Tools {
	if sink == nil {
		sink = analytics.Nop{}
	}
	return &Tools{
		engine:     engine,
		sink:       sink,
		logger:     logger,
		locations:  locations,
		categories: categories,
	}
}

// NewServer builds an MCP server with every catalog tool registered.
func NewServer(tools *Tools, version string) *mcp.Server {
	s := mcp.NewServer(&mcp.Implementation{Name: ServerName, Version: version}, nil)
	mcp.AddTool(s, &mcp.Tool{
		Name:        ToolSearchProducts,
		Description: "Search the tour catalog. Results are split into recommended and regular tours.",
	}, tools.Search)
	mcp.AddTool(s, &mcp.Tool{
		Name:        ToolGetProduct,
		Description: "Get the full details and booking links of one tour.",
	}, tools.Get)
	mcp.AddTool(s, &mcp.Tool{
		Name:        ToolListFilters,
		Description: "List the location, category and sort values accepted by search_products.",
	}, tools.Filters)
	return s
}

// Serve runs the server over stdin/stdout until the client disconnects or
// ctx is canceled.
func Serve(ctx context.Context, s *mcp.Server) error {
	return s.Run(ctx, &mcp.StdioTransport{})
}

// Search implements search_products.
func (t *Tools) Search(_ context.Context, _ *mcp.CallToolRequest, in SearchInput) (*mcp.CallToolResult, SearchOutput, error) {
	params := catalog.Params{
		Keyword:  in.Keyword,
		Location: catalog.NormalizeFilter(in.Location),
		Category: catalog.NormalizeFilter(in.Category),
		Sort:     catalog.ParseSortMode(in.Sort),
	}
	res, err := t.engine.Query(params)
	if err != nil {
		t.logger.Error("mcp search failed", zap.Error(err))
		return nil, SearchOutput{}, fmt.Errorf("catalog unavailable: %w", err)
	}
	catalog.RecordQuery(t.sink, params)

	return nil, SearchOutput{
		Count:       len(res.Products),
		Recommended: tours(res.Recommended),
		Regular:     tours(res.Regular),
	}, nil
}

// Get implements get_product.
func (t *Tools) Get(_ context.Context, _ *mcp.CallToolRequest, in GetInput) (*mcp.CallToolResult, GetOutput, error) {
	p, ok, err := t.engine.Lookup(in.ID)
	if err != nil {
		t.logger.Error("mcp lookup failed", zap.Error(err))
		return nil, GetOutput{}, fmt.Errorf("catalog unavailable: %w", err)
	}
	if !ok {
		return nil, GetOutput{}, fmt.Errorf("product %q not found", in.ID)
	}
	analytics.ProductClick(t.sink, p.ID)

	d := catalog.Detail(p)
	out := GetOutput{
		Tour:          tour(p),
		Title:         d.Meta.Title,
		DiscountBadge: d.DiscountBadge,
		BookingLinks:  make([]BookingLink, 0, len(d.BookingLinks)),
		StartDate:     formatDate(p.StartDate),
		EndDate:       formatDate(p.EndDate),
	}
	for _, l := range d.BookingLinks {
		out.BookingLinks = append(out.BookingLinks, BookingLink{Label: l.Label, URL: l.URL})
	}
	return nil, out, nil
}

// Filters implements list_filters.
func (t *Tools) Filters(_ context.Context, _ *mcp.CallToolRequest, _ FiltersInput) (*mcp.CallToolResult, FiltersOutput, error) {
	out := FiltersOutput{
		Locations:  append([]string{catalog.All}, t.locations...),
		Categories: append([]string{catalog.All}, t.categories...),
		Sorts:      make([]string, 0, len(catalog.SortModes)),
	}
	for _, m := range catalog.SortModes {
		out.Sorts = append(out.Sorts, string(m))
	}
	return nil, out, nil
}

func tour(p *pkgcatalog.Product) Tour {
	s := catalog.Summary(p)
	return Tour{
		ID:             s.ID,
		Name:           s.Name,
		Description:    s.Description,
		Locations:      nonNil(s.Locations),
		Categories:     nonNil(s.Categories),
		Tags:           nonNil(s.Tags),
		Views:          s.Views,
		Recommended:    s.IsRecommended,
		Price:          s.Price,
		Discount:       s.Discount,
		EffectivePrice: s.EffectivePrice,
		DisplayPrice:   s.DisplayPrice,
	}
}

func tours(ps []*pkgcatalog.Product) []Tour {
	out := make([]Tour, 0, len(ps))
	for _, p := range ps {
		out = append(out, tour(p))
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.DateOnly)
}
