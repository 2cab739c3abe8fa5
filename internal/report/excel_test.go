package report

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"farmcraft/internal/farm"
	"farmcraft/internal/pricing"
)

func TestExportCrafts(t *testing.T) {
	ingredients := []pricing.Ingredient{{Name: "Wood", Quantity: 10}, {Name: "Iron", Quantity: 2}}
	f := farm.Farm{
		ID:   "f1",
		Name: "North Farm",
		Crafts: []farm.Craft{{
			ID:               "c1",
			Name:             "Plank",
			Type:             "building",
			Ingredients:      ingredients,
			QuantityProduced: 5,
			Margin:           20,
			Details:          pricing.Calculate(ingredients, 5, 20, pricing.CostTable{"Wood": 0.5, "Iron": 3}),
		}},
	}
	dir := t.TempDir()
	now := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

	path, err := ExportCrafts(f, dir, now)
	if err != nil {
		t.Fatalf("ExportCrafts: %v", err)
	}
	if want := filepath.Join(dir, "crafts_north_farm_20260301_093000.xlsx"); path != want {
		t.Errorf("path = %s, want %s", path, want)
	}

	book, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer book.Close()

	checks := map[string]string{
		"A1": "ID",
		"L1": "Unit Selling Price",
		"B2": "Plank",
		"D2": "5",
		"F2": "Wood×10, Iron×2",
		"G2": "11",
		"L2": "2.64",
	}
	for cell, want := range checks {
		got, err := book.GetCellValue(sheetName, cell)
		if err != nil {
			t.Fatalf("GetCellValue(%s): %v", cell, err)
		}
		if got != want {
			t.Errorf("%s = %q, want %q", cell, got, want)
		}
	}
}

func TestExportCrafts_EmptyFarm(t *testing.T) {
	path, err := ExportCrafts(farm.Farm{Name: "  "}, t.TempDir(), time.Now())
	if err != nil {
		t.Fatalf("ExportCrafts: %v", err)
	}
	if !strings.Contains(filepath.Base(path), "crafts_farm_") {
		t.Errorf("path = %s", path)
	}
}
