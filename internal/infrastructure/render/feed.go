package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"time"

	"github.com/yourusername/pricefeed/internal/domain/entity"
)

// FeedDateLayout yml_catalog date atributi formati
const FeedDateLayout = "2006-01-02 15:04"

// ShopInfo feed va sahifalar uchun do'kon ma'lumotlari
type ShopInfo struct {
	Name    string
	Company string
	URL     string
}

type ymlCatalog struct {
	XMLName xml.Name `xml:"yml_catalog"`
	Date    string   `xml:"date,attr"`
	Shop    ymlShop  `xml:"shop"`
}

type ymlShop struct {
	Name       string        `xml:"name"`
	Company    string        `xml:"company"`
	URL        string        `xml:"url"`
	Currencies []ymlCurrency `xml:"currencies>currency"`
	Categories []ymlCategory `xml:"categories>category"`
	Offers     []ymlOffer    `xml:"offers>offer"`
}

type ymlCurrency struct {
	ID   string `xml:"id,attr"`
	Rate string `xml:"rate,attr"`
}

type ymlCategory struct {
	ID   string `xml:"id,attr"`
	Name string `xml:",chardata"`
}

type ymlOffer struct {
	ID          string `xml:"id,attr"`
	Available   string `xml:"available,attr"`
	URL         string `xml:"url"`
	Price       string `xml:"price"`
	CurrencyID  string `xml:"currencyId"`
	CategoryID  string `xml:"categoryId"`
	Picture     string `xml:"picture"`
	Name        string `xml:"name"`
	Description string `xml:"description"`
}

// RenderFeed katalogdan YML feed yaratish
func RenderFeed(catalog *entity.Catalog, shop ShopInfo, now time.Time) ([]byte, error) {
	doc := ymlCatalog{
		Date: now.Format(FeedDateLayout),
		Shop: ymlShop{
			Name:    shop.Name,
			Company: shop.Company,
			URL:     shop.URL,
		},
	}

	for _, code := range catalog.Currencies.Sorted() {
		doc.Shop.Currencies = append(doc.Shop.Currencies, ymlCurrency{ID: code, Rate: currencyRate(code)})
	}

	for _, cat := range catalog.Categories {
		doc.Shop.Categories = append(doc.Shop.Categories, ymlCategory{ID: cat.ID, Name: cat.Name})
	}

	for _, offer := range catalog.Offers {
		doc.Shop.Offers = append(doc.Shop.Offers, ymlOffer{
			ID:          offer.ID,
			Available:   "true",
			URL:         offer.URL,
			Price:       FeedPrice(offer),
			CurrencyID:  offer.CurrencyID,
			CategoryID:  offer.CategoryID,
			Picture:     offer.Picture,
			Name:        offer.Name,
			Description: offer.DisplayDescription(),
		})
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to encode feed: %w", err)
	}
	buf.WriteByte('\n')

	return buf.Bytes(), nil
}

// FeedPrice butun songa yaxlitlangan narx (juftga yaxlitlash)
func FeedPrice(offer entity.Offer) string {
	return offer.Price.RoundBank(0).String()
}

func currencyRate(code string) string {
	if code == entity.BaseCurrency {
		return "1"
	}
	return "CBRF"
}
