package entity

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// BaseCurrency noma'lum valyutalar uchun default kod
const BaseCurrency = "RUR"

// Category prays-listdagi "Раздел N" bo'limi
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Offer sotuvdagi mahsulot
type Offer struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	CurrencyID  string          `json:"currencyId"`
	CategoryID  string          `json:"categoryId"`
	URL         string          `json:"url"`
	Picture     string          `json:"picture"`
	Description string          `json:"description,omitempty"`
}

// DisplayDescription tavsif bo'sh bo'lsa nomini qaytaradi
func (o Offer) DisplayDescription() string {
	if o.Description != "" {
		return o.Description
	}
	return o.Name
}

// CurrencySet prays-listda uchragan valyutalar
type CurrencySet map[string]struct{}

// NewCurrencySet base valyuta bilan yangi to'plam yaratish
func NewCurrencySet() CurrencySet {
	return CurrencySet{BaseCurrency: {}}
}

func (s CurrencySet) Add(code string) {
	s[code] = struct{}{}
}

func (s CurrencySet) Has(code string) bool {
	_, ok := s[code]
	return ok
}

// Sorted kodlarni alifbo tartibida qaytaradi
func (s CurrencySet) Sorted() []string {
	codes := make([]string, 0, len(s))
	for code := range s {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Catalog bitta prays-listdan olingan kategoriyalar va mahsulotlar
type Catalog struct {
	Categories  []Category  `json:"categories"`
	Offers      []Offer     `json:"offers"`
	Currencies  CurrencySet `json:"-"`
	GeneratedAt time.Time   `json:"generatedAt"`
	Source      string      `json:"source"` // prays-list fayl nomi

	// Unreadable kod yoki narxi sana/formula bo'lib o'qilgan, tashlangan qatorlar
	Unreadable int `json:"-"`
}

// IsEmpty mahsulot yo'qligini tekshirish
func (c *Catalog) IsEmpty() bool {
	return c == nil || len(c.Offers) == 0
}

// CategoryByID ID bo'yicha kategoriyani topish.
// Offer.CategoryID har doim ham ro'yxatda bo'lmasligi mumkin.
func (c *Catalog) CategoryByID(id string) (Category, bool) {
	for _, cat := range c.Categories {
		if cat.ID == id {
			return cat, true
		}
	}
	return Category{}, false
}
