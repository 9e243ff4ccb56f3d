package parser

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"
)

func buildCatalogWorkbook(t *testing.T, sheet string, rows [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	if sheet != "Sheet1" {
		if _, err := f.NewSheet(sheet); err != nil {
			t.Fatalf("NewSheet: %v", err)
		}
	}
	header := []any{
		"merchant_id", "merchant_name", "merchant_type", "product_id", "product_name",
		"description", "category", "price", "discounted_price", "free_delivery",
		"offer_label", "rating", "avg_delivery_mins", "completed_orders",
	}
	all := append([][]any{header}, rows...)
	for i, row := range all {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("CoordinatesToCellName: %v", err)
		}
		if err := f.SetSheetRow(sheet, cellRef, &row); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}
	return buf
}

func TestLoadCatalog(t *testing.T) {
	buf := buildCatalogWorkbook(t, "Catalog", [][]any{
		{10, "بيت البرغر", "restaurant", 1, "برغر لحم", "لحم عراقي", "برغر", 6000, 5000, "yes", "خصم", 4.2, 25, 120},
		{20, "بيتزا النخلة", "restaurant", 2, "بيتزا مارغريتا", "", "بيتزا", 12000, 0, "", "", 4.8, 35, 300},
	})

	candidates, err := LoadCatalog(buf)
	if err != nil {
		t.Fatalf("LoadCatalog error: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("len(candidates) = %d, want 2", len(candidates))
	}

	first := candidates[0]
	if first.MerchantID != 10 || first.ProductID != 1 {
		t.Errorf("ids = %d/%d, want 10/1", first.MerchantID, first.ProductID)
	}
	if first.EffectivePrice != 5000 {
		t.Errorf("EffectivePrice = %d, want the discounted 5000", first.EffectivePrice)
	}
	if first.BasePrice != 6000 {
		t.Errorf("BasePrice = %d, want 6000", first.BasePrice)
	}
	if !first.FreeDelivery {
		t.Error("FreeDelivery = false, want true")
	}
	if first.MerchantAvgRating != 4.2 {
		t.Errorf("MerchantAvgRating = %v, want 4.2", first.MerchantAvgRating)
	}

	second := candidates[1]
	if second.EffectivePrice != 12000 {
		t.Errorf("EffectivePrice = %d, want the base 12000 with no discount", second.EffectivePrice)
	}
	if second.FreeDelivery {
		t.Error("FreeDelivery = true, want false")
	}
	if second.MerchantCompletedOrders != 300 {
		t.Errorf("MerchantCompletedOrders = %d, want 300", second.MerchantCompletedOrders)
	}
}

func TestLoadCatalogFallsBackToFirstSheet(t *testing.T) {
	buf := buildCatalogWorkbook(t, "Sheet1", [][]any{
		{10, "بيت البرغر", "restaurant", 1, "برغر لحم", "", "برغر", 6000, 0, "", "", 0, 0, 0},
	})

	candidates, err := LoadCatalog(buf)
	if err != nil {
		t.Fatalf("LoadCatalog error: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("len(candidates) = %d, want 1", len(candidates))
	}
}

func TestLoadCatalogSkipsEmptyRows(t *testing.T) {
	buf := buildCatalogWorkbook(t, "Catalog", [][]any{
		{10, "بيت البرغر", "restaurant", 1, "برغر لحم", "", "برغر", 6000, 0, "", "", 0, 0, 0},
		{"", "", "", "", "", "", "", "", "", "", "", "", "", ""},
		{10, "بيت البرغر", "restaurant", 2, "برغر دجاج", "", "برغر", 5000, 0, "", "", 0, 0, 0},
	})

	candidates, err := LoadCatalog(buf)
	if err != nil {
		t.Fatalf("LoadCatalog error: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("len(candidates) = %d, want 2", len(candidates))
	}
}

func TestLoadCatalogBadRow(t *testing.T) {
	buf := buildCatalogWorkbook(t, "Catalog", [][]any{
		{"not-a-number", "بيت البرغر", "restaurant", 1, "برغر لحم", "", "برغر", 6000, 0, "", "", 0, 0, 0},
	})

	if _, err := LoadCatalog(buf); err == nil {
		t.Fatal("LoadCatalog accepted a row with a bad merchant_id")
	}
}

func TestLoadCatalogMissingProductName(t *testing.T) {
	buf := buildCatalogWorkbook(t, "Catalog", [][]any{
		{10, "بيت البرغر", "restaurant", 1, "", "", "برغر", 6000, 0, "", "", 0, 0, 0},
	})

	if _, err := LoadCatalog(buf); err == nil {
		t.Fatal("LoadCatalog accepted a row without a product name")
	}
}
