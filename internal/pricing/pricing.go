package pricing

import (
	"fmt"
	"math"
	"strings"
)

// Ingredient is one line of a craft recipe: how much of a named input a
// single batch consumes.
type Ingredient struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
}

// CostTable maps a trimmed ingredient name to its unit cost.
type CostTable map[string]float64

// Details holds the six figures derived from a recipe and the cost table.
type Details struct {
	TotalCost         float64 `json:"totalCost"`
	UnitCost          float64 `json:"unitCost"`
	TotalProfit       float64 `json:"totalProfit"`
	UnitProfit        float64 `json:"unitProfit"`
	TotalSellingPrice float64 `json:"totalSellingPrice"`
	UnitSellingPrice  float64 `json:"unitSellingPrice"`
}

// Cost returns the unit cost for name. Unknown ingredients cost nothing.
func (c CostTable) Cost(name string) float64 {
	return c[strings.TrimSpace(name)]
}

// Clone returns an independent copy of the table.
func (c CostTable) Clone() CostTable {
	out := make(CostTable, len(c))
	for name, cost := range c {
		out[name] = cost
	}
	return out
}

// Calculate derives cost, profit and selling price for a batch of
// quantityProduced units sold at marginPercent over cost. No rounding is
// applied; a non-positive quantityProduced yields zero unit figures.
func Calculate(ingredients []Ingredient, quantityProduced int, marginPercent float64, costs CostTable) Details {
	var d Details

	// Base costs
	for _, ing := range ingredients {
		d.TotalCost += costs.Cost(ing.Name) * ing.Quantity
	}
	if quantityProduced > 0 {
		d.UnitCost = d.TotalCost / float64(quantityProduced)
	}

	// Profit from margin
	margin := marginPercent / 100
	d.TotalProfit = d.TotalCost * margin
	d.UnitProfit = d.UnitCost * margin

	// Selling price
	d.TotalSellingPrice = d.TotalCost + d.TotalProfit
	d.UnitSellingPrice = d.UnitCost + d.UnitProfit

	return d
}

// Rounded returns a copy with every figure rounded to two decimals for display.
func (d Details) Rounded() Details {
	return Details{
		TotalCost:         Round2(d.TotalCost),
		UnitCost:          Round2(d.UnitCost),
		TotalProfit:       Round2(d.TotalProfit),
		UnitProfit:        Round2(d.UnitProfit),
		TotalSellingPrice: Round2(d.TotalSellingPrice),
		UnitSellingPrice:  Round2(d.UnitSellingPrice),
	}
}

// Round2 rounds v half away from zero to two decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// FormatAmount renders v with exactly two decimals.
func FormatAmount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
