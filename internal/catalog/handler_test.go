package catalog_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/HerbHall/tourstream/internal/analytics"
	"github.com/HerbHall/tourstream/internal/catalog"
	"github.com/HerbHall/tourstream/internal/testutil"
	pkgcatalog "github.com/HerbHall/tourstream/pkg/catalog"
)

type handlerEnv struct {
	mux  *http.ServeMux
	sink *testutil.MockSink
}

func setupHandlerEnv(t *testing.T, products ...*pkgcatalog.Product) *handlerEnv {
	t.Helper()
	cat := pkgcatalog.FromProducts(testutil.Values(products...))
	sink := testutil.NewMockSink()
	h := catalog.NewHandler(catalog.NewEngine(cat, 16), sink, zap.NewNop(),
		catalog.WithVocabulary([]string{"서울", "부산"}, []string{"해양스포츠"}))
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return &handlerEnv{mux: mux, sink: sink}
}

func (e *handlerEnv) get(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	e.mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func fixtures() []*pkgcatalog.Product {
	return []*pkgcatalog.Product{
		testutil.NewProduct("product_1",
			testutil.WithName("부산 요트 투어"),
			testutil.WithCategories("해양스포츠"),
			testutil.WithLocations("부산광역시 해운대구"),
			testutil.WithViews(30),
			testutil.WithPrice(10000),
			testutil.WithDiscount(20),
			testutil.WithRecommended(),
			testutil.WithURLs("https://book.test/a", "https://book.test/b"),
		),
		testutil.NewProduct("product_2",
			testutil.WithName("서울 궁궐 야간 투어"),
			testutil.WithCategories("도심체험"),
			testutil.WithLocations("서울특별시 종로구"),
			testutil.WithViews(50),
		),
	}
}

func TestHandleQuery_Defaults(t *testing.T) {
	env := setupHandlerEnv(t, fixtures()...)

	rec := env.get(t, "/api/v1/catalog/products")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp catalog.ProductsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, catalog.DefaultParams(), resp.Params)
	require.Len(t, resp.Recommended, 1)
	require.Len(t, resp.Regular, 1)

	yacht := resp.Recommended[0]
	assert.Equal(t, "product_1", yacht.ID)
	assert.Equal(t, int64(8000), yacht.EffectivePrice)
	assert.Equal(t, "₩8,000", yacht.DisplayPrice)
	assert.Equal(t, "₩10,000", yacht.OriginalDisplayPrice)

	palace := resp.Regular[0]
	assert.Equal(t, pkgcatalog.DefaultPrice, palace.Price)
	assert.Equal(t, "₩50,000", palace.DisplayPrice)
	assert.Empty(t, palace.OriginalDisplayPrice)

	assert.Empty(t, env.sink.Events(), "no analytics for an unfiltered query")
}

func TestHandleQuery_SentinelNormalization(t *testing.T) {
	for _, v := range []string{"", "전체", "ALL", "all"} {
		t.Run("location="+v, func(t *testing.T) {
			env := setupHandlerEnv(t, fixtures()...)
			rec := env.get(t, "/api/v1/catalog/products?location="+url.QueryEscape(v))
			require.Equal(t, http.StatusOK, rec.Code)

			var resp catalog.ProductsResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, catalog.All, resp.Params.Location)
			assert.Equal(t, 2, resp.Count)
			assert.Empty(t, env.sink.Named(analytics.EventFilterChange))
		})
	}
}

func TestHandleQuery_FiltersAndAnalytics(t *testing.T) {
	env := setupHandlerEnv(t, fixtures()...)

	rec := env.get(t, "/api/v1/catalog/products?keyword="+url.QueryEscape("요트")+
		"&location="+url.QueryEscape("부산")+"&category="+url.QueryEscape("해양스포츠")+"&sort=price-low")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp catalog.ProductsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, catalog.SortPriceLow, resp.Params.Sort)

	search := env.sink.Named(analytics.EventSearch)
	require.Len(t, search, 1)
	assert.Equal(t, "요트", search[0].Attrs[analytics.AttrSearchTerm])

	filters := env.sink.Named(analytics.EventFilterChange)
	require.Len(t, filters, 2)
	assert.Equal(t, analytics.FilterLocation, filters[0].Attrs[analytics.AttrFilterType])
	assert.Equal(t, "부산", filters[0].Attrs[analytics.AttrFilterValue])
	assert.Equal(t, analytics.FilterCategory, filters[1].Attrs[analytics.AttrFilterType])
}

func TestHandleQuery_UnknownSortKeepsOrder(t *testing.T) {
	env := setupHandlerEnv(t, fixtures()...)

	rec := env.get(t, "/api/v1/catalog/products?sort=random")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp catalog.ProductsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, catalog.SortMode("random"), resp.Params.Sort)
	assert.Equal(t, 2, resp.Count)
}

func TestHandleQuery_NoResults(t *testing.T) {
	env := setupHandlerEnv(t, fixtures()...)

	rec := env.get(t, "/api/v1/catalog/products?keyword=xyz")
	require.Equal(t, http.StatusOK, rec.Code)

	var raw map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&raw))
	assert.EqualValues(t, 0, raw["count"])
	assert.Equal(t, []any{}, raw["recommended"], "empty lists encode as [] not null")
	assert.Equal(t, []any{}, raw["regular"])
}

func TestHandleQuery_CatalogUnavailable(t *testing.T) {
	dup := testutil.NewProduct("dup")
	env := setupHandlerEnv(t, dup, dup)

	rec := env.get(t, "/api/v1/catalog/products")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
}

func TestHandleDetail(t *testing.T) {
	env := setupHandlerEnv(t, fixtures()...)

	rec := env.get(t, "/api/v1/catalog/products/product_1")
	require.Equal(t, http.StatusOK, rec.Code)

	var d catalog.ProductDetail
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&d))
	assert.Equal(t, "product_1", d.ID)
	assert.Equal(t, "20% 할인 중!", d.DiscountBadge)
	assert.Equal(t, []catalog.BookingLink{
		{Label: "예약하기", URL: "https://book.test/a"},
		{Label: "예약 링크 2", URL: "https://book.test/b"},
	}, d.BookingLinks)
	assert.Equal(t, "부산 요트 투어 - 투어 스트림", d.Meta.Title)
	assert.Equal(t, "/images/test.jpg", d.Meta.OGImage)

	clicks := env.sink.Named(analytics.EventProductClick)
	require.Len(t, clicks, 1)
	assert.Equal(t, "product_1", clicks[0].Attrs[analytics.AttrProductID])
}

func TestHandleDetail_NotFound(t *testing.T) {
	env := setupHandlerEnv(t, fixtures()...)

	rec := env.get(t, "/api/v1/catalog/products/product_404")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	assert.Empty(t, env.sink.Events(), "no click recorded for unknown products")
}

func TestHandleFilters(t *testing.T) {
	env := setupHandlerEnv(t, fixtures()...)

	rec := env.get(t, "/api/v1/catalog/filters")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp catalog.FiltersResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, []catalog.Option{
		{Value: "ALL", Label: "전체"},
		{Value: "서울", Label: "서울"},
		{Value: "부산", Label: "부산"},
	}, resp.Locations)
	assert.Len(t, resp.Categories, 2)
	require.Len(t, resp.Sorts, 4)
	assert.Equal(t, catalog.Option{Value: "popular", Label: "인기순"}, resp.Sorts[0])
	assert.Equal(t, catalog.Option{Value: "price-high", Label: "가격 높은순"}, resp.Sorts[3])
}
