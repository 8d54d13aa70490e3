package render

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/yourusername/pricefeed/internal/domain/entity"
)

func extractJSONLD(t *testing.T, page string) string {
	t.Helper()
	const open = `<script type="application/ld+json">`
	start := strings.Index(page, open)
	if start < 0 {
		t.Fatalf("structured data block not found")
	}
	rest := page[start+len(open):]
	end := strings.Index(rest, "</script>")
	if end < 0 {
		t.Fatalf("structured data block is not closed")
	}
	return rest[:end]
}

func TestRenderPageContent(t *testing.T) {
	offer := testCatalog().Offers[1]

	body, err := RenderPage(offer, testShop.Name, testShop.URL)
	if err != nil {
		t.Fatalf("RenderPage failed: %v", err)
	}
	page := string(body)

	for _, want := range []string{
		"<title>Клавиатура | Краммерти.рф</title>",
		"<h1>Клавиатура</h1>",
		"Код товара: 1424",
		`src="https://cdn.example/logo.svg"`,
		"Механическая",
		"Цена: 3.50 USD",
		`href="https://shop.example/?buy=1424"`,
		`<link rel="canonical" href="https://shop.example/product/1424">`,
	} {
		if !strings.Contains(page, want) {
			t.Errorf("page does not contain %q", want)
		}
	}

	var ld jsonLDProduct
	if err := json.Unmarshal([]byte(extractJSONLD(t, page)), &ld); err != nil {
		t.Fatalf("structured data is not valid JSON: %v", err)
	}
	if ld.SKU != "1424" || ld.Name != "Клавиатура" || ld.Description != "Механическая" {
		t.Errorf("unexpected structured data %+v", ld)
	}
	if ld.Offers.PriceCurrency != "USD" || ld.Offers.Price != "3.50" || ld.Offers.Availability != "https://schema.org/InStock" {
		t.Errorf("unexpected offer block %+v", ld.Offers)
	}
}

func TestRenderPageEscapesQuotesInStructuredData(t *testing.T) {
	offer := entity.Offer{
		ID:         "77",
		Name:       `Пакет "Проф" </script><b>x</b>`,
		Price:      decimal.RequireFromString("100"),
		CurrencyID: "RUR",
		Picture:    "https://cdn.example/logo.svg",
	}

	body, err := RenderPage(offer, testShop.Name, testShop.URL)
	if err != nil {
		t.Fatalf("RenderPage failed: %v", err)
	}
	page := string(body)

	var ld jsonLDProduct
	if err := json.Unmarshal([]byte(extractJSONLD(t, page)), &ld); err != nil {
		t.Fatalf("structured data is not valid JSON: %v", err)
	}
	if ld.Name != offer.Name {
		t.Errorf("expected name %q, got %q", offer.Name, ld.Name)
	}
	if ld.Offers.PriceCurrency != "RUB" {
		t.Errorf("expected RUB, got %s", ld.Offers.PriceCurrency)
	}
	if strings.Contains(page, "<b>x</b>") {
		t.Errorf("expected HTML in the name to be escaped")
	}
}

func TestRenderPagesOnePerOfferID(t *testing.T) {
	catalog := testCatalog()
	duplicate := catalog.Offers[0]
	duplicate.Name = "Мышь новая"
	catalog.Offers = append(catalog.Offers, duplicate)

	pages, err := RenderPages(catalog, testShop)
	if err != nil {
		t.Fatalf("RenderPages failed: %v", err)
	}

	if len(pages) != 3 {
		t.Fatalf("expected 3 pages, got %d", len(pages))
	}
	if pages[0].Path != "product/1423.html" {
		t.Errorf("unexpected path %s", pages[0].Path)
	}
	if !strings.Contains(string(pages[0].Body), "Мышь новая") {
		t.Errorf("expected the last duplicate offer to win")
	}
}

func TestMetaDescriptionIsTruncated(t *testing.T) {
	offer := entity.Offer{ID: "1", Name: strings.Repeat("Длинное название ", 20), CurrencyID: "RUR"}

	got := metaDescription(offer, "10.00")
	if n := len([]rune(got)); n > maxMetaDescription {
		t.Errorf("expected at most %d runes, got %d", maxMetaDescription, n)
	}
	if !strings.HasSuffix(got, "…") {
		t.Errorf("expected ellipsis, got %q", got)
	}
}
