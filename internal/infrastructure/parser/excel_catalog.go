package parser

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/bestoffer/assistant-bot/internal/domain/entity"
)

// Catalog sheet layout, one product per row:
//
//	merchant_id | merchant_name | merchant_type | product_id | product_name |
//	description | category | price | discounted_price | free_delivery |
//	offer_label | rating | avg_delivery_mins | completed_orders
//
// The first row is the header. Used to seed the in-memory store for
// local runs and demos without the platform database.
const catalogSheetName = "Catalog"

// LoadCatalogFile reads a merchant-product workbook from disk
func LoadCatalogFile(path string) ([]entity.Candidate, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer f.Close()
	return readCatalog(f)
}

// LoadCatalog reads a merchant-product workbook from a stream
func LoadCatalog(r io.Reader) ([]entity.Candidate, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog stream: %w", err)
	}
	defer f.Close()
	return readCatalog(f)
}

func readCatalog(f *excelize.File) ([]entity.Candidate, error) {
	sheet := catalogSheetName
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	var candidates []entity.Candidate
	for i, row := range rows[1:] {
		if rowEmpty(row) {
			continue
		}
		candidate, err := parseCatalogRow(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		candidates = append(candidates, candidate)
	}
	return candidates, nil
}

func parseCatalogRow(row []string) (entity.Candidate, error) {
	merchantID, err := cellInt64(row, 0)
	if err != nil {
		return entity.Candidate{}, fmt.Errorf("merchant_id: %w", err)
	}
	productID, err := cellInt64(row, 3)
	if err != nil {
		return entity.Candidate{}, fmt.Errorf("product_id: %w", err)
	}
	price, err := cellInt(row, 7)
	if err != nil {
		return entity.Candidate{}, fmt.Errorf("price: %w", err)
	}
	name := cell(row, 4)
	if name == "" {
		return entity.Candidate{}, fmt.Errorf("product_name is empty")
	}

	discounted := cellIntDefault(row, 8, 0)
	effective := price
	if discounted > 0 && discounted < price {
		effective = discounted
	}

	return entity.Candidate{
		ProductID:               productID,
		MerchantID:              merchantID,
		ProductName:             name,
		ProductDescription:      cell(row, 5),
		CategoryName:            cell(row, 6),
		EffectivePrice:          effective,
		BasePrice:               price,
		DiscountedPrice:         discounted,
		FreeDelivery:            cellBool(row, 9),
		OfferLabel:              cell(row, 10),
		MerchantName:            cell(row, 1),
		MerchantType:            cell(row, 2),
		MerchantAvgRating:       cellFloatDefault(row, 11, 0),
		MerchantAvgDeliveryMins: cellFloatDefault(row, 12, 0),
		MerchantCompletedOrders: cellIntDefault(row, 13, 0),
	}, nil
}

func rowEmpty(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func cellInt64(row []string, idx int) (int64, error) {
	raw := cell(row, idx)
	if raw == "" {
		return 0, fmt.Errorf("empty cell")
	}
	return strconv.ParseInt(raw, 10, 64)
}

func cellInt(row []string, idx int) (int, error) {
	raw := cell(row, idx)
	if raw == "" {
		return 0, fmt.Errorf("empty cell")
	}
	// excelize renders numeric cells like "1500" or "1500.0"
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	return int(val), nil
}

func cellIntDefault(row []string, idx, fallback int) int {
	val, err := cellInt(row, idx)
	if err != nil {
		return fallback
	}
	return val
}

func cellFloatDefault(row []string, idx int, fallback float64) float64 {
	raw := cell(row, idx)
	if raw == "" {
		return fallback
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return val
}

func cellBool(row []string, idx int) bool {
	switch strings.ToLower(cell(row, idx)) {
	case "1", "true", "yes", "y":
		return true
	}
	return false
}
