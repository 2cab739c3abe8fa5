package bot

import (
	"testing"

	"farmcraft/internal/farm"
	"farmcraft/internal/pricing"
)

func TestSplitArgs(t *testing.T) {
	got, err := splitArgs(" North |  Alice ", 2)
	if err != nil {
		t.Fatalf("splitArgs: %v", err)
	}
	if got[0] != "North" || got[1] != "Alice" {
		t.Errorf("got %q", got)
	}

	for _, in := range []string{"", "North", "a | b | c"} {
		if _, err := splitArgs(in, 2); err == nil {
			t.Errorf("splitArgs(%q) expected an error", in)
		}
	}
}

func TestParseCraft(t *testing.T) {
	in, err := parseCraft([]string{"Plank", "building", "5", "20%", "Wood=10, , Iron = 2"})
	if err != nil {
		t.Fatalf("parseCraft: %v", err)
	}
	if in.Name != "Plank" || in.QuantityProduced != 5 || in.Margin != 20 {
		t.Errorf("in = %+v", in)
	}
	want := []farm.IngredientInput{{Name: "Wood", Quantity: "10"}, {Name: "Iron", Quantity: "2"}}
	if len(in.Ingredients) != len(want) {
		t.Fatalf("ingredients = %+v", in.Ingredients)
	}
	for i := range want {
		if in.Ingredients[i] != want[i] {
			t.Errorf("ingredient %d = %+v, want %+v", i, in.Ingredients[i], want[i])
		}
	}

	blank, err := parseCraft([]string{"Plank", "", "1", "", "Wood=1"})
	if err != nil || blank.Margin != 0 {
		t.Errorf("blank margin: %+v, %v", blank, err)
	}

	bad := [][]string{
		{"Plank", "", "1.5", "0", "Wood=1"},
		{"Plank", "", "1", "lots", "Wood=1"},
		{"Plank", "", "1", "0", "Wood"},
	}
	for _, fields := range bad {
		if _, err := parseCraft(fields); err == nil {
			t.Errorf("parseCraft(%q) expected an error", fields)
		}
	}
}

func TestParseCosts(t *testing.T) {
	got, err := parseCosts("Wood=0.5, Iron=")
	if err != nil {
		t.Fatalf("parseCosts: %v", err)
	}
	if got["Wood"] != "0.5" || got["Iron"] != "" {
		t.Errorf("got %v", got)
	}
	if _, err := parseCosts(" , "); err == nil {
		t.Error("expected an error for no costs")
	}
}

func TestReuseIngredientIDs(t *testing.T) {
	existing := farm.Craft{Ingredients: []pricing.Ingredient{
		{ID: "w", Name: "Wood"},
		{ID: "i", Name: "Iron"},
	}}
	in := []farm.IngredientInput{{Name: "Iron"}, {Name: "Stone"}}

	reuseIngredientIDs(in, existing)

	if in[0].ID != "i" || in[1].ID != "" {
		t.Errorf("in = %+v", in)
	}
}
