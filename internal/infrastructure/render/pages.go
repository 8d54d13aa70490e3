package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"net/url"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/yourusername/pricefeed/internal/domain/entity"
)

// PagesDir mahsulot sahifalari papkasi
const PagesDir = "product"

const maxMetaDescription = 160

var pageTemplate = template.Must(template.New("product").Parse(`<!DOCTYPE html>
<html lang="ru">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.Offer.Name}} | {{.ShopName}}</title>
  <meta name="description" content="{{.MetaDescription}}">
  <link rel="canonical" href="{{.PageURL}}">
  <script type="application/ld+json">{{.JSONLD}}</script>
</head>
<body>
  <main class="product">
    <h1>{{.Offer.Name}}</h1>
    <p class="product-code">Код товара: {{.Offer.ID}}</p>
    <img class="product-image" src="{{.Offer.Picture}}" alt="{{.Offer.Name}}">
    <p class="product-description">{{.Description}}</p>
    <p class="product-price">Цена: {{.Price}} {{.CurrencyLabel}}</p>
    <a class="buy-button" href="{{.BuyURL}}">Купить</a>
  </main>
</body>
</html>
`))

type pageData struct {
	Offer           entity.Offer
	ShopName        string
	MetaDescription string
	Description     string
	PageURL         string
	BuyURL          string
	Price           string
	CurrencyLabel   string
	JSONLD          template.JS
}

type jsonLDProduct struct {
	Context     string      `json:"@context"`
	Type        string      `json:"@type"`
	Name        string      `json:"name"`
	Image       string      `json:"image"`
	Description string      `json:"description"`
	SKU         string      `json:"sku"`
	Offers      jsonLDOffer `json:"offers"`
}

type jsonLDOffer struct {
	Type          string `json:"@type"`
	URL           string `json:"url"`
	PriceCurrency string `json:"priceCurrency"`
	Price         string `json:"price"`
	Availability  string `json:"availability"`
}

// PagePath mahsulot sahifasi fayl yo'li
func PagePath(offerID string) string {
	return path.Join(PagesDir, offerID+".html")
}

// ProductURL sahifaning kanonik havolasi
func ProductURL(baseURL, offerID string) string {
	return strings.TrimRight(baseURL, "/") + "/" + PagesDir + "/" + url.PathEscape(offerID)
}

// RenderPages har bir mahsulot uchun HTML sahifa.
// Takrorlangan ID lar uchun oxirgi mahsulot sahifasi qoladi.
func RenderPages(catalog *entity.Catalog, shop ShopInfo) ([]entity.Artifact, error) {
	baseURL := ASCIIURL(shop.URL)
	index := make(map[string]int, len(catalog.Offers))
	var pages []entity.Artifact

	for _, offer := range catalog.Offers {
		body, err := RenderPage(offer, shop.Name, baseURL)
		if err != nil {
			return nil, err
		}

		artifact := entity.Artifact{Path: PagePath(offer.ID), Body: body}
		if i, ok := index[offer.ID]; ok {
			pages[i] = artifact
			continue
		}
		index[offer.ID] = len(pages)
		pages = append(pages, artifact)
	}

	return pages, nil
}

// RenderPage bitta mahsulot sahifasini yaratish
func RenderPage(offer entity.Offer, shopName, baseURL string) ([]byte, error) {
	pageURL := ProductURL(baseURL, offer.ID)
	price := offer.Price.StringFixed(2)
	description := offer.DisplayDescription()

	ld, err := json.Marshal(jsonLDProduct{
		Context:     "https://schema.org",
		Type:        "Product",
		Name:        offer.Name,
		Image:       offer.Picture,
		Description: description,
		SKU:         offer.ID,
		Offers: jsonLDOffer{
			Type:          "Offer",
			URL:           pageURL,
			PriceCurrency: isoCurrency(offer.CurrencyID),
			Price:         price,
			Availability:  "https://schema.org/InStock",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode structured data for %s: %w", offer.ID, err)
	}

	data := pageData{
		Offer:           offer,
		ShopName:        shopName,
		MetaDescription: metaDescription(offer, price),
		Description:     description,
		PageURL:         pageURL,
		BuyURL:          strings.TrimRight(baseURL, "/") + "/?buy=" + url.QueryEscape(offer.ID),
		Price:           price,
		CurrencyLabel:   currencyLabel(offer.CurrencyID),
		// json.Marshal <, > va & ni escape qiladi, script ichida xavfsiz
		JSONLD: template.JS(ld),
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render page %s: %w", offer.ID, err)
	}
	return buf.Bytes(), nil
}

func metaDescription(offer entity.Offer, price string) string {
	text := fmt.Sprintf("Купить %s по цене %s %s. Код товара %s.", offer.Name, price, currencyLabel(offer.CurrencyID), offer.ID)
	if utf8.RuneCountInString(text) <= maxMetaDescription {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:maxMetaDescription-1])) + "…"
}

// isoCurrency YML dagi RUR -> ISO 4217 RUB
func isoCurrency(code string) string {
	if code == entity.BaseCurrency {
		return "RUB"
	}
	return code
}

func currencyLabel(code string) string {
	if code == entity.BaseCurrency {
		return "руб."
	}
	return code
}
