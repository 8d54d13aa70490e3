package parser

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

var (
	// ErrUnsupportedFormat fayl .xls yoki .xlsx emas
	ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")
	// ErrNoSheets faylda sheet yo'q
	ErrNoSheets = errors.New("spreadsheet has no sheets")
)

// IsSpreadsheet fayl nomi bo'yicha tekshirish
func IsSpreadsheet(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xls", ".xlsx":
		return true
	}
	return false
}

// ReadRows birinchi sheet qatorlarini string sifatida o'qish
func ReadRows(data []byte, filename string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		return readXLSX(data)
	case ".xls":
		return readXLS(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filename)
	}
}

func readXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoSheets
	}

	// Raw qiymatlar: narx va kodlar formatlanmagan holda kerak
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	return rows, nil
}

func readXLS(data []byte) (rows [][]string, err error) {
	// xls reader buzilgan BIFF yozuvlarida panic qiladi
	defer func() {
		if r := recover(); r != nil {
			rows, err = nil, fmt.Errorf("failed to read xls: %v", r)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("failed to open xls: %w", err)
	}
	if wb == nil || wb.NumSheets() == 0 {
		return nil, ErrNoSheets
	}
	dropUserFormats(wb)

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, ErrNoSheets
	}
	if sheet.MaxRow == 0 {
		// Bitta qatorli sheet: mahsulot bo'lishi mumkin emas
		return nil, nil
	}

	// Row(i) ROW yozuvi yo'q qatorlarda panic qiladi, ReadAllCells esa
	// bo'sh qatorlarni nil qoldiradi. Limit faqat birinchi sheetni oladi.
	return wb.ReadAllCells(int(sheet.MaxRow) + 1), nil
}

// dropUserFormats 164+ formatlarni o'chiradi: xls reader bunday formatdagi
// RK sonlarni (narx ustunlari ko'pincha shunday) sana qilib qaytaradi
func dropUserFormats(wb *xls.WorkBook) {
	for idx := range wb.Formats {
		if idx >= 164 {
			delete(wb.Formats, idx)
		}
	}
}
