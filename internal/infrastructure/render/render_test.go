package render

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/yourusername/pricefeed/internal/domain/entity"
)

var testShop = ShopInfo{
	Name:    "Краммерти.рф",
	Company: `ООО "Краммерти"`,
	URL:     "https://shop.example",
}

var testTime = time.Date(2026, 10, 19, 3, 0, 0, 0, time.UTC)

func testCatalog() *entity.Catalog {
	currencies := entity.NewCurrencySet()
	currencies.Add("USD")
	currencies.Add("EUR")

	return &entity.Catalog{
		Categories: []entity.Category{
			{ID: "12", Name: "Периферия"},
			{ID: "3", Name: "Программы"},
		},
		Offers: []entity.Offer{
			{ID: "1423", Name: "Мышь", Price: decimal.RequireFromString("2.5"), CurrencyID: "RUR", CategoryID: "12", URL: "https://shop.example/product/1423", Picture: "https://cdn.example/logo.svg"},
			{ID: "1424", Name: "Клавиатура", Price: decimal.RequireFromString("3.5"), CurrencyID: "USD", CategoryID: "12", URL: "https://shop.example/product/1424", Picture: "https://cdn.example/logo.svg", Description: "Механическая"},
			{ID: "300", Name: "1С:Бухгалтерия", Price: decimal.RequireFromString("1500.50"), CurrencyID: "EUR", CategoryID: "3", URL: "https://shop.example/product/300", Picture: "https://cdn.example/logo.svg"},
		},
		Currencies: currencies,
	}
}
