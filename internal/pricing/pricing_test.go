package pricing

import (
	"math"
	"testing"
)

const tolerance = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= tolerance*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}

func TestCalculate(t *testing.T) {
	ingredients := []Ingredient{
		{ID: "1", Name: "Wood", Quantity: 10},
		{ID: "2", Name: "Iron", Quantity: 2},
	}
	costs := CostTable{"Wood": 0.5, "Iron": 3}

	got := Calculate(ingredients, 5, 20, costs)

	want := Details{
		TotalCost:         11,
		UnitCost:          2.2,
		TotalProfit:       2.2,
		UnitProfit:        0.44,
		TotalSellingPrice: 13.2,
		UnitSellingPrice:  2.64,
	}
	checkDetails(t, got, want)
}

func TestCalculate_CostUpdate(t *testing.T) {
	ingredients := []Ingredient{
		{Name: "Wood", Quantity: 10},
		{Name: "Iron", Quantity: 2},
	}

	got := Calculate(ingredients, 5, 20, CostTable{"Wood": 1, "Iron": 3})

	want := Details{
		TotalCost:         16,
		UnitCost:          3.2,
		TotalProfit:       3.2,
		UnitProfit:        0.64,
		TotalSellingPrice: 19.2,
		UnitSellingPrice:  3.84,
	}
	checkDetails(t, got, want)
}

func TestCalculate_TrimsNames(t *testing.T) {
	got := Calculate([]Ingredient{{Name: "  Wood ", Quantity: 4}}, 1, 0, CostTable{"Wood": 2})
	if got.TotalCost != 8 {
		t.Errorf("TotalCost = %v, want 8", got.TotalCost)
	}
}

func TestCalculate_MissingCostIsZero(t *testing.T) {
	costs := CostTable{"Wood": 0.5}
	with := Calculate([]Ingredient{{Name: "Wood", Quantity: 10}, {Name: "X", Quantity: 7}}, 3, 15, costs)
	without := Calculate([]Ingredient{{Name: "Wood", Quantity: 10}, {Name: "X", Quantity: 0}}, 3, 15, costs)

	if with != without {
		t.Errorf("unknown ingredient changed totals: %+v vs %+v", with, without)
	}
}

func TestCalculate_NonPositiveQuantityProduced(t *testing.T) {
	ingredients := []Ingredient{{Name: "Wood", Quantity: 10}}
	costs := CostTable{"Wood": 2}

	for _, qp := range []int{0, -3} {
		got := Calculate(ingredients, qp, 50, costs)
		if got.UnitCost != 0 || got.UnitProfit != 0 || got.UnitSellingPrice != 0 {
			t.Errorf("quantityProduced=%d: unit figures = %+v, want zeros", qp, got)
		}
		if got.TotalCost != 20 || got.TotalProfit != 10 {
			t.Errorf("quantityProduced=%d: totals = %+v", qp, got)
		}
	}
}

func TestCalculate_EmptyRecipe(t *testing.T) {
	got := Calculate(nil, 1, 10, nil)
	if got != (Details{}) {
		t.Errorf("Calculate(nil) = %+v, want zero value", got)
	}
}

func TestCalculate_Identities(t *testing.T) {
	cases := []struct {
		name        string
		ingredients []Ingredient
		qp          int
		margin      float64
		costs       CostTable
	}{
		{"thirds", []Ingredient{{Name: "A", Quantity: 1}}, 3, 33.3, CostTable{"A": 1}},
		{"many", []Ingredient{{Name: "A", Quantity: 0.7}, {Name: "B", Quantity: 13}, {Name: "C", Quantity: 2.25}}, 7, 12.5, CostTable{"A": 0.1, "B": 9.99, "C": 1e-3}},
		{"zero margin", []Ingredient{{Name: "A", Quantity: 5}}, 9, 0, CostTable{"A": 0.3}},
		{"large", []Ingredient{{Name: "A", Quantity: 123456}}, 11, 250, CostTable{"A": 78.9}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := Calculate(tc.ingredients, tc.qp, tc.margin, tc.costs)
			if !almostEqual(d.UnitCost*float64(tc.qp), d.TotalCost) {
				t.Errorf("unitCost*qp = %v, totalCost = %v", d.UnitCost*float64(tc.qp), d.TotalCost)
			}
			if !almostEqual(d.TotalSellingPrice-d.TotalCost, d.TotalProfit) {
				t.Errorf("price-cost = %v, profit = %v", d.TotalSellingPrice-d.TotalCost, d.TotalProfit)
			}
		})
	}
}

func TestRounded(t *testing.T) {
	d := Details{TotalCost: 1.005, UnitCost: 2.2222, TotalProfit: -0.125}
	r := d.Rounded()
	if r.UnitCost != 2.22 {
		t.Errorf("UnitCost = %v, want 2.22", r.UnitCost)
	}
	if FormatAmount(13.2) != "13.20" {
		t.Errorf("FormatAmount(13.2) = %q", FormatAmount(13.2))
	}
}

func checkDetails(t *testing.T, got, want Details) {
	t.Helper()
	fields := []struct {
		name      string
		got, want float64
	}{
		{"TotalCost", got.TotalCost, want.TotalCost},
		{"UnitCost", got.UnitCost, want.UnitCost},
		{"TotalProfit", got.TotalProfit, want.TotalProfit},
		{"UnitProfit", got.UnitProfit, want.UnitProfit},
		{"TotalSellingPrice", got.TotalSellingPrice, want.TotalSellingPrice},
		{"UnitSellingPrice", got.UnitSellingPrice, want.UnitSellingPrice},
	}
	for _, f := range fields {
		if !almostEqual(f.got, f.want) {
			t.Errorf("%s = %v, want %v", f.name, f.got, f.want)
		}
	}
}
