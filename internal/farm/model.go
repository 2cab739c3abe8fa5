package farm

import "farmcraft/internal/pricing"

// Craft is a recipe together with the figures derived from it. The derived
// fields are always the result of pricing.Calculate over the craft's own
// inputs and the current cost table.
type Craft struct {
	ID               string               `json:"id"`
	Name             string               `json:"name"`
	Type             string               `json:"type"`
	Ingredients      []pricing.Ingredient `json:"ingredients"`
	QuantityProduced int                  `json:"quantityProduced"`
	Margin           float64              `json:"margin"`
	pricing.Details
}

// Farm groups crafts under a name and owner.
type Farm struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Owner  string  `json:"owner"`
	Crafts []Craft `json:"crafts,omitempty"`
}

// CraftInput is the form a user submits to add or edit a craft. An empty
// ID adds a new craft.
type CraftInput struct {
	ID               string
	Name             string
	Type             string
	QuantityProduced int
	Margin           float64
	Ingredients      []IngredientInput
}

// IngredientInput carries the raw quantity text as typed by the user.
type IngredientInput struct {
	ID       string
	Name     string
	Quantity string
}

func (c Craft) clone() Craft {
	c.Ingredients = append([]pricing.Ingredient(nil), c.Ingredients...)
	return c
}

func (f Farm) clone() Farm {
	if f.Crafts != nil {
		crafts := make([]Craft, len(f.Crafts))
		for i, c := range f.Crafts {
			crafts[i] = c.clone()
		}
		f.Crafts = crafts
	}
	return f
}

func cloneFarms(farms []Farm) []Farm {
	out := make([]Farm, len(farms))
	for i, f := range farms {
		out[i] = f.clone()
	}
	return out
}
