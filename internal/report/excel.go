package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/xuri/excelize/v2"

	"farmcraft/internal/farm"
	"farmcraft/internal/pricing"
)

const sheetName = "Crafts"

var headers = []string{
	"ID", "Name", "Type", "Qty Produced", "Margin %", "Ingredients",
	"Total Cost", "Unit Cost", "Total Profit", "Unit Profit",
	"Total Selling Price", "Unit Selling Price",
}

// ExportCrafts writes one row per craft of f into a new workbook under dir
// and returns the file path. Figures are rounded to two decimals.
func ExportCrafts(f farm.Farm, dir string, now time.Time) (string, error) {
	book := excelize.NewFile()
	defer book.Close()

	index, err := book.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := book.DeleteSheet("Sheet1"); err != nil {
		return "", fmt.Errorf("failed to drop default sheet: %w", err)
	}

	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		book.SetCellValue(sheetName, cell, header)
	}

	for row, c := range f.Crafts {
		d := c.Details.Rounded()
		data := []interface{}{
			c.ID,
			c.Name,
			c.Type,
			c.QuantityProduced,
			c.Margin,
			IngredientSummary(c.Ingredients),
			d.TotalCost,
			d.UnitCost,
			d.TotalProfit,
			d.UnitProfit,
			d.TotalSellingPrice,
			d.UnitSellingPrice,
		}
		for col, value := range data {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			book.SetCellValue(sheetName, cell, value)
		}
	}

	// Formatting
	style, err := book.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err == nil {
		last, _ := excelize.CoordinatesToCellName(len(headers), 1)
		book.SetCellStyle(sheetName, "A1", last, style)
	}
	book.SetActiveSheet(index)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create reports directory: %w", err)
	}
	filename := fmt.Sprintf("crafts_%s_%s.xlsx", slug(f.Name), now.Format("20060102_150405"))
	path := filepath.Join(dir, filename)
	if err := book.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save Excel file: %w", err)
	}
	return path, nil
}

// IngredientSummary renders "Wood×10, Iron×2".
func IngredientSummary(ingredients []pricing.Ingredient) string {
	parts := make([]string, 0, len(ingredients))
	for _, ing := range ingredients {
		parts = append(parts, fmt.Sprintf("%s×%g", ing.Name, ing.Quantity))
	}
	return strings.Join(parts, ", ")
}

func slug(name string) string {
	s := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return '_'
	}, strings.TrimSpace(name))
	if s == "" {
		return "farm"
	}
	return s
}
