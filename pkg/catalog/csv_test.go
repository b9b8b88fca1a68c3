package catalog

import (
	"errors"
	"strings"
	"testing"
)

const sampleCSV = `name,description,image1,image2,category1,location1,location2,tag1,tag2,externalUrl1,views,isRecommended,isAvailable,price,discount
제주 서핑,초보 강습,/a.jpg,,해양스포츠,제주도,,서핑,초보,https://x.test/1,120,true,true,65000,20
부산 요트,야경 크루즈,,,해양스포츠,부산,해운대,요트,,https://x.test/2,abc,1,false,,
broken,row,only
서울 투어,궁궐,/c.jpg,/d.jpg,도심체험,서울,,역사,,,,0,,30000,
`

func TestParseCSV(t *testing.T) {
	conv, err := ParseCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}

	if len(conv.Products) != 3 {
		t.Fatalf("Products len = %d, want 3", len(conv.Products))
	}
	if len(conv.Warnings) != 1 || conv.Warnings[0].Row != 3 {
		t.Fatalf("Warnings = %v, want one warning for row 3", conv.Warnings)
	}

	surf := conv.Products[0]
	if surf.ID != "product_1" {
		t.Errorf("ID = %q, want product_1", surf.ID)
	}
	if len(surf.Images) != 1 || surf.Images[0] != "/a.jpg" {
		t.Errorf("Images = %v, want [/a.jpg]", surf.Images)
	}
	if len(surf.Tags) != 2 || surf.Tags[1] != "초보" {
		t.Errorf("Tags = %v, want [서핑 초보]", surf.Tags)
	}
	if surf.Views != 120 || !surf.IsRecommended || !surf.IsAvailable {
		t.Errorf("views/flags = %d/%v/%v", surf.Views, surf.IsRecommended, surf.IsAvailable)
	}
	if surf.Price == nil || *surf.Price != 65000 || surf.EffectivePrice() != 52000 {
		t.Errorf("price = %v effective = %d", surf.Price, surf.EffectivePrice())
	}

	yacht := conv.Products[1]
	if yacht.ID != "product_2" {
		t.Errorf("ID = %q, want product_2", yacht.ID)
	}
	if len(yacht.Images) != 1 || yacht.Images[0] != PlaceholderImage {
		t.Errorf("Images = %v, want placeholder", yacht.Images)
	}
	if len(yacht.Locations) != 2 || yacht.Locations[1] != "해운대" {
		t.Errorf("Locations = %v, want [부산 해운대]", yacht.Locations)
	}
	if yacht.Views != 0 {
		t.Errorf("Views = %d, want 0 for non-numeric input", yacht.Views)
	}
	if !yacht.IsRecommended || yacht.IsAvailable {
		t.Errorf("flags = %v/%v, want true/false", yacht.IsRecommended, yacht.IsAvailable)
	}
	if yacht.Price != nil || yacht.ListPrice() != DefaultPrice {
		t.Errorf("Price = %v, want absent with default list price", yacht.Price)
	}

	// The skipped row still consumes its row number.
	seoul := conv.Products[2]
	if seoul.ID != "product_4" {
		t.Errorf("ID = %q, want product_4", seoul.ID)
	}
	if seoul.IsRecommended {
		t.Error("IsRecommended = true, want false for 0")
	}
	if seoul.IsAvailable {
		t.Error("IsAvailable = true, want false for empty cell when column present")
	}
	if len(seoul.ExternalURLs) != 0 {
		t.Errorf("ExternalURLs = %v, want empty", seoul.ExternalURLs)
	}
}

func TestParseCSV_AvailableDefaultsTrueWithoutColumn(t *testing.T) {
	in := "id,name,views\ntour_9,야간 투어,5\n"
	conv, err := ParseCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	if len(conv.Products) != 1 {
		t.Fatalf("Products len = %d, want 1", len(conv.Products))
	}
	p := conv.Products[0]
	if p.ID != "tour_9" {
		t.Errorf("ID = %q, want explicit id tour_9", p.ID)
	}
	if !p.IsAvailable {
		t.Error("IsAvailable = false, want true when the column is absent")
	}
}

func TestParseCSV_Dates(t *testing.T) {
	in := "name,createdAt,startDate,endDate\n투어,2025-03-01T09:00:00Z,2025-04-01,not-a-date\n"
	conv, err := ParseCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	p := conv.Products[0]
	if p.CreatedAt == nil || p.CreatedAt.Year() != 2025 {
		t.Errorf("CreatedAt = %v, want 2025-03-01", p.CreatedAt)
	}
	if p.StartDate == nil || p.StartDate.Month() != 4 {
		t.Errorf("StartDate = %v, want 2025-04-01", p.StartDate)
	}
	if p.EndDate != nil {
		t.Errorf("EndDate = %v, want nil for invalid input", p.EndDate)
	}
	if len(conv.Warnings) != 1 {
		t.Errorf("Warnings = %v, want one for endDate", conv.Warnings)
	}
}

func TestParseCSV_NoRows(t *testing.T) {
	_, err := ParseCSV(strings.NewReader("name,views\n"))
	if !errors.Is(err, ErrNoRows) {
		t.Fatalf("err = %v, want ErrNoRows", err)
	}
}

func TestAtoiOrZero(t *testing.T) {
	tests := map[string]int{
		"42":    42,
		"12abc": 12,
		"":      0,
		"abc":   0,
		"-7":    -7,
	}
	for in, want := range tests {
		if got := atoiOrZero(in); got != want {
			t.Errorf("atoiOrZero(%q) = %d, want %d", in, got, want)
		}
	}
}
