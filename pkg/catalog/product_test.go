package catalog

import "testing"

func ptr[T any](v T) *T { return &v }

func TestEffectivePrice(t *testing.T) {
	tests := []struct {
		name     string
		price    int64
		discount int
		want     int64
	}{
		{name: "twenty percent", price: 10000, discount: 20, want: 8000},
		{name: "no discount", price: 10000, discount: 0, want: 10000},
		{name: "floors fraction", price: 9999, discount: 15, want: 8499},
		{name: "full discount", price: 10000, discount: 100, want: 0},
		{name: "negative discount ignored", price: 10000, discount: -5, want: 10000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EffectivePrice(tt.price, tt.discount); got != tt.want {
				t.Errorf("EffectivePrice(%d, %d) = %d, want %d", tt.price, tt.discount, got, tt.want)
			}
		})
	}
}

func TestProduct_PriceDefaults(t *testing.T) {
	p := Product{ID: "product_1"}
	if got := p.ListPrice(); got != DefaultPrice {
		t.Errorf("ListPrice() = %d, want %d", got, DefaultPrice)
	}
	if got := p.DiscountPercent(); got != 0 {
		t.Errorf("DiscountPercent() = %d, want 0", got)
	}
	if got := p.EffectivePrice(); got != DefaultPrice {
		t.Errorf("EffectivePrice() = %d, want %d", got, DefaultPrice)
	}

	p.Price = ptr[int64](10000)
	p.Discount = ptr(20)
	if got := p.EffectivePrice(); got != 8000 {
		t.Errorf("EffectivePrice() = %d, want 8000", got)
	}
}

func TestProduct_Normalize(t *testing.T) {
	p := Product{ID: "x", Views: -3, Discount: ptr(150)}
	p.Normalize()

	if len(p.Images) != 1 || p.Images[0] != PlaceholderImage {
		t.Errorf("Images = %v, want [%s]", p.Images, PlaceholderImage)
	}
	if p.Categories == nil || p.Locations == nil || p.Tags == nil || p.ExternalURLs == nil {
		t.Error("expected nil sequences to become empty slices")
	}
	if p.Views != 0 {
		t.Errorf("Views = %d, want 0", p.Views)
	}
	if *p.Discount != 100 {
		t.Errorf("Discount = %d, want 100", *p.Discount)
	}
}

func TestProduct_NormalizeKeepsImageOrder(t *testing.T) {
	p := Product{Images: []string{"b.jpg", "a.jpg", "b.jpg"}}
	p.Normalize()
	if len(p.Images) != 3 || p.Images[0] != "b.jpg" || p.Images[1] != "a.jpg" {
		t.Errorf("Images = %v, want source order without dedup", p.Images)
	}
}

func TestProduct_Sequence(t *testing.T) {
	tests := []struct {
		id     string
		want   int64
		wantOK bool
	}{
		{id: "product_12", want: 12, wantOK: true},
		{id: "tour_summer_7", want: 7, wantOK: true},
		{id: "product_", wantOK: false},
		{id: "product_abc", wantOK: false},
		{id: "noseparator", wantOK: false},
		{id: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			p := Product{ID: tt.id}
			got, ok := p.Sequence()
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("Sequence(%q) = (%d, %v), want (%d, %v)", tt.id, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
