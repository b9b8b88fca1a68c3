// Package catalog provides the query engine that filters, sorts and partitions
// the tour product collection, and the HTTP API that serves it.
package catalog

import (
	"sort"
	"strings"
	"sync"

	"github.com/golang/groupcache/lru"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	pkgcatalog "github.com/HerbHall/tourstream/pkg/catalog"
)

// All is the filter value meaning no constraint on that dimension.
const All = "ALL"

// SortMode selects the ordering applied after filtering.
type SortMode string

const (
	SortPopular   SortMode = "popular"
	SortLatest    SortMode = "latest"
	SortPriceLow  SortMode = "price-low"
	SortPriceHigh SortMode = "price-high"
)

// SortModes lists the recognized sort modes in display order.
var SortModes = []SortMode{SortPopular, SortLatest, SortPriceLow, SortPriceHigh}

// Params are the query inputs. Params is comparable and is used directly as
// the memo cache key.
type Params struct {
	Keyword  string   `json:"keyword"`
	Location string   `json:"location"`
	Category string   `json:"category"`
	Sort     SortMode `json:"sort"`
}

// DefaultParams matches everything, ordered by popularity.
func DefaultParams() Params {
	return Params{Location: All, Category: All, Sort: SortPopular}
}

// Result is the ordered query output and its recommended/regular split.
// Recommended followed by Regular is exactly Products.
type Result struct {
	Products    []*pkgcatalog.Product
	Recommended []*pkgcatalog.Product
	Regular     []*pkgcatalog.Product
}

// Recency identifies the key used by the latest sort.
type Recency int

const (
	// RecencySequence ranks by the numeric id suffix.
	RecencySequence Recency = iota
	// RecencyCreated ranks by the creation timestamp.
	RecencyCreated
)

func (r Recency) String() string {
	if r == RecencyCreated {
		return "created"
	}
	return "sequence"
}

// ResolveRecency picks timestamp recency only when every product carries a
// creation timestamp. Mixed collections fall back to id sequence numbers so
// the two keys are never compared against each other.
func ResolveRecency(products []*pkgcatalog.Product) Recency {
	if len(products) == 0 {
		return RecencySequence
	}
	for _, p := range products {
		if p.CreatedAt == nil {
			return RecencySequence
		}
	}
	return RecencyCreated
}

// Query filters, sorts and partitions products. It never fails and never
// modifies its input; the returned slices share the product pointers.
func Query(products []*pkgcatalog.Product, params Params) Result {
	return query(products, params, ResolveRecency(products))
}

func query(products []*pkgcatalog.Product, params Params, recency Recency) Result {
	sorted := Sort(Filter(products, params), params.Sort, recency)
	rec, reg := Partition(sorted)
	return Result{Products: sorted, Recommended: rec, Regular: reg}
}

// Filter returns the products matching all three parameter constraints, in
// input order.
func Filter(products []*pkgcatalog.Product, params Params) []*pkgcatalog.Product {
	caser := cases.Lower(language.Und)
	keyword := caser.String(params.Keyword)

	out := make([]*pkgcatalog.Product, 0, len(products))
	for _, p := range products {
		if !matchKeyword(caser, p, keyword) {
			continue
		}
		if !MatchLocation(p, params.Location) {
			continue
		}
		if !MatchCategory(p, params.Category) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// MatchKeyword reports whether keyword is a case-insensitive substring of the
// product search corpus. An empty keyword matches everything.
func MatchKeyword(p *pkgcatalog.Product, keyword string) bool {
	caser := cases.Lower(language.Und)
	return matchKeyword(caser, p, caser.String(keyword))
}

// matchKeyword expects keyword to be lower-cased already.
func matchKeyword(caser cases.Caser, p *pkgcatalog.Product, keyword string) bool {
	if keyword == "" {
		return true
	}
	return strings.Contains(caser.String(SearchCorpus(p)), keyword)
}

// SearchCorpus joins name, description, tags, categories and locations with
// single spaces.
func SearchCorpus(p *pkgcatalog.Product) string {
	parts := make([]string, 0, 2+len(p.Tags)+len(p.Categories)+len(p.Locations))
	parts = append(parts, p.Name, p.Description)
	parts = append(parts, p.Tags...)
	parts = append(parts, p.Categories...)
	parts = append(parts, p.Locations...)
	return strings.Join(parts, " ")
}

// MatchLocation reports whether some product location contains location.
func MatchLocation(p *pkgcatalog.Product, location string) bool {
	if location == All {
		return true
	}
	for _, l := range p.Locations {
		if strings.Contains(l, location) {
			return true
		}
	}
	return false
}

// MatchCategory reports whether category is an exact member of the product
// categories.
func MatchCategory(p *pkgcatalog.Product, category string) bool {
	if category == All {
		return true
	}
	for _, c := range p.Categories {
		if c == category {
			return true
		}
	}
	return false
}

// Sort returns a stably sorted copy of products. Unknown modes return the
// input order unchanged.
func Sort(products []*pkgcatalog.Product, mode SortMode, recency Recency) []*pkgcatalog.Product {
	out := make([]*pkgcatalog.Product, len(products))
	copy(out, products)

	var less func(a, b *pkgcatalog.Product) bool
	switch mode {
	case SortPopular:
		less = func(a, b *pkgcatalog.Product) bool { return a.Views > b.Views }
	case SortLatest:
		if recency == RecencyCreated {
			less = newerCreated
		} else {
			less = newerSequence
		}
	case SortPriceLow:
		less = func(a, b *pkgcatalog.Product) bool { return a.EffectivePrice() < b.EffectivePrice() }
	case SortPriceHigh:
		less = func(a, b *pkgcatalog.Product) bool { return a.EffectivePrice() > b.EffectivePrice() }
	default:
		return out
	}

	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func newerCreated(a, b *pkgcatalog.Product) bool {
	switch {
	case a.CreatedAt == nil:
		return false
	case b.CreatedAt == nil:
		return true
	}
	return a.CreatedAt.After(*b.CreatedAt)
}

// newerSequence orders by descending id suffix. Ids without a suffix rank
// after every parseable id and keep their relative order.
func newerSequence(a, b *pkgcatalog.Product) bool {
	na, okA := a.Sequence()
	nb, okB := b.Sequence()
	switch {
	case !okA:
		return false
	case !okB:
		return true
	}
	return na > nb
}

// Partition splits products into recommended and regular, preserving order.
func Partition(products []*pkgcatalog.Product) (recommended, regular []*pkgcatalog.Product) {
	recommended = make([]*pkgcatalog.Product, 0, len(products))
	regular = make([]*pkgcatalog.Product, 0, len(products))
	for _, p := range products {
		if p.IsRecommended {
			recommended = append(recommended, p)
		} else {
			regular = append(regular, p)
		}
	}
	return recommended, regular
}

// DefaultCacheSize bounds the memo cache when NewEngine is given a
// non-positive size.
const DefaultCacheSize = 256

// Engine binds a loaded product collection and memoizes query results.
// It is safe for concurrent use.
type Engine struct {
	cat     *pkgcatalog.Catalog
	mu      sync.Mutex
	memo    *lru.Cache
	byID    map[string]*pkgcatalog.Product
	recency Recency
	loaded  bool
}

// NewEngine creates an engine over cat with an LRU memo of cacheSize entries.
func NewEngine(cat *pkgcatalog.Catalog, cacheSize int) *Engine {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	return &Engine{cat: cat, memo: lru.New(cacheSize)}
}

// Catalog returns the collection the engine queries.
func (e *Engine) Catalog() *pkgcatalog.Catalog {
	return e.cat
}

// Products returns the full collection in data set order.
func (e *Engine) Products() ([]*pkgcatalog.Product, error) {
	return e.cat.Products()
}

// Recency reports the recency key resolved for the collection.
func (e *Engine) Recency() (Recency, error) {
	if err := e.ensureIndex(); err != nil {
		return RecencySequence, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.recency, nil
}

// Query runs the pipeline for params. Identical params return the cached
// result; callers must treat the returned slices as read-only.
func (e *Engine) Query(params Params) (Result, error) {
	products, err := e.cat.Products()
	if err != nil {
		return Result{}, err
	}
	if err := e.ensureIndex(); err != nil {
		return Result{}, err
	}

	e.mu.Lock()
	if v, ok := e.memo.Get(params); ok {
		e.mu.Unlock()
		return v.(Result), nil
	}
	recency := e.recency
	e.mu.Unlock()

	res := query(products, params, recency)

	e.mu.Lock()
	e.memo.Add(params, res)
	e.mu.Unlock()
	return res, nil
}

// Lookup returns the product with the given id. ok is false when no product
// has that id.
func (e *Engine) Lookup(id string) (p *pkgcatalog.Product, ok bool, err error) {
	if err := e.ensureIndex(); err != nil {
		return nil, false, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	p, ok = e.byID[id]
	return p, ok, nil
}

// CacheLen returns the number of memoized results.
func (e *Engine) CacheLen() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.memo.Len()
}

func (e *Engine) ensureIndex() error {
	e.mu.Lock()
	loaded := e.loaded
	e.mu.Unlock()
	if loaded {
		return nil
	}

	products, err := e.cat.Products()
	if err != nil {
		return err
	}
	byID := make(map[string]*pkgcatalog.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	recency := ResolveRecency(products)

	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.loaded {
		e.byID = byID
		e.recency = recency
		e.loaded = true
	}
	return nil
}
