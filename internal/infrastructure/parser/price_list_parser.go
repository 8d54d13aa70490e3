package parser

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yourusername/pricefeed/internal/domain/entity"
	"github.com/yourusername/pricefeed/internal/domain/repository"
)

// Columns prays-list ustunlari indekslari
type Columns struct {
	ID       int
	Name     int
	Currency int
	Price    int
}

// DefaultColumns 1C prays-listining ustunlari
var DefaultColumns = Columns{ID: 0, Name: 1, Currency: 3, Price: 4}

// Options parser sozlamalari
type Options struct {
	ShopURL    string
	PictureURL string
	HeaderRows int // sarlavha qatorlari (skip qilinadi)
	Columns    Columns
}

// CurrencyMap prays-listdagi valyuta yozuvlari -> feed kodlari
var CurrencyMap = map[string]string{
	"РУБ.": "RUR",
	"USD":  "USD",
	"У.Е.": "USD",
	"KZT":  "KZT",
	"BYN":  "BYN",
	"KGS":  "KGS",
	"EUR":  "EUR",
	"MDL":  "MDL",
	"TJS":  "TJS",
	"GEL":  "GEL",
}

var (
	sectionRegex       = regexp.MustCompile(`(?i)^\s*Раздел\s+(\d+)`)
	sectionPrefixRegex = regexp.MustCompile(`(?i)^\s*Раздел\s*\d+\s*[:.]?\s*`)
	// xls reader sana formatidagi sonlarni RFC3339 ko'rinishida beradi
	dateCellRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(Z|[+-]\d{2}:\d{2})$`)
)

// formulaCell xls reader formula katakchasi o'rniga qaytaradigan matn
const formulaCell = "FormulaCol"

type priceListParser struct {
	opts Options
}

// NewPriceListParser yangi prays-list parser yaratish
func NewPriceListParser(opts Options) repository.PriceListParser {
	return &priceListParser{opts: opts}
}

// ParseFile fayldan o'qish
func (p *priceListParser) ParseFile(ctx context.Context, filePath string) (*entity.Catalog, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read price list: %w", err)
	}
	return p.ParseBytes(ctx, data, filepath.Base(filePath))
}

// ParseBytes byte array dan parse qilish
func (p *priceListParser) ParseBytes(ctx context.Context, data []byte, filename string) (*entity.Catalog, error) {
	rows, err := ReadRows(data, filename)
	if err != nil {
		return nil, err
	}
	log.Printf("📊 %s: %d rows", filename, len(rows))

	if p.opts.HeaderRows >= len(rows) {
		rows = nil
	} else if p.opts.HeaderRows > 0 {
		rows = rows[p.opts.HeaderRows:]
	}

	catalog := ParseRows(rows, p.opts)
	catalog.Source = filename
	return catalog, nil
}

// ParseRows qatorlarni kategoriya va mahsulotlarga ajratish.
// Birinchi "Раздел N" qatoridan oldingi qatorlar e'tiborsiz qoldiriladi,
// yaroqsiz qatorlar jimgina tashlab yuboriladi.
func ParseRows(rows [][]string, opts Options) *entity.Catalog {
	cols := opts.Columns
	if cols == (Columns{}) {
		cols = DefaultColumns
	}

	catalog := &entity.Catalog{
		Currencies:  entity.NewCurrencySet(),
		GeneratedAt: time.Now(),
	}
	currentCategoryID := ""

	for _, row := range rows {
		rawID := strings.TrimSpace(cell(row, cols.ID))
		name := strings.TrimSpace(cell(row, cols.Name))

		textToCheck := name
		if textToCheck == "" {
			textToCheck = rawID
		}
		if textToCheck == "" {
			continue
		}

		if match := sectionRegex.FindStringSubmatch(textToCheck); match != nil {
			currentCategoryID = match[1]
			catalog.Categories = append(catalog.Categories, entity.Category{
				ID:   currentCategoryID,
				Name: strings.TrimSpace(sectionPrefixRegex.ReplaceAllString(textToCheck, "")),
			})
			continue
		}

		if currentCategoryID == "" {
			continue
		}

		if isUnreadable(rawID) || isUnreadable(cell(row, cols.Price)) {
			catalog.Unreadable++
			continue
		}

		price, ok := parsePrice(cell(row, cols.Price))
		if !ok || rawID == "" || name == "" {
			continue
		}

		id := normalizeID(rawID)
		currencyID := mapCurrency(cell(row, cols.Currency))
		catalog.Currencies.Add(currencyID)

		catalog.Offers = append(catalog.Offers, entity.Offer{
			ID:         id,
			Name:       name,
			Price:      price,
			CurrencyID: currencyID,
			CategoryID: currentCategoryID,
			URL:        fmt.Sprintf("%s/product/%s", strings.TrimRight(opts.ShopURL, "/"), id),
			Picture:    opts.PictureURL,
		})
	}

	log.Printf("📦 Parsed categories: %d, offers: %d", len(catalog.Categories), len(catalog.Offers))
	log.Printf("💱 Currencies: %v", catalog.Currencies.Sorted())
	if catalog.Unreadable > 0 {
		log.Printf("⚠️ %d rows dropped: code or price was read as a date or formula", catalog.Unreadable)
	}

	return catalog
}

// cell qator qisqa bo'lsa bo'sh string qaytaradi
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// parsePrice narxni parse qilish: vergul -> nuqta, faqat musbat qiymat
func parsePrice(raw string) (decimal.Decimal, bool) {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	if raw == "" {
		return decimal.Zero, false
	}

	price, err := decimal.NewFromString(raw)
	if err != nil || !price.IsPositive() {
		return decimal.Zero, false
	}
	return price, true
}

// isUnreadable son o'rniga sana yoki formula o'qilganini aniqlash
func isUnreadable(raw string) bool {
	raw = strings.TrimSpace(raw)
	return raw == formulaCell || dateCellRegex.MatchString(raw)
}

// normalizeID "1423.0" -> "1423"
func normalizeID(raw string) string {
	if idx := strings.Index(raw, "."); idx >= 0 {
		return raw[:idx]
	}
	return raw
}

func mapCurrency(raw string) string {
	if code, ok := CurrencyMap[strings.ToUpper(strings.TrimSpace(raw))]; ok {
		return code
	}
	return entity.BaseCurrency
}
