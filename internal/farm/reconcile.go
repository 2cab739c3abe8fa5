package farm

import (
	"bytes"
	"encoding/json"
	"math"

	"github.com/google/uuid"

	"farmcraft/internal/pricing"
)

// looseNumber decodes any JSON value and remembers whether it was a number.
// Older records may carry strings, nulls or nothing at all where numbers
// belong.
type looseNumber struct {
	value float64
	valid bool
}

func (n *looseNumber) UnmarshalJSON(data []byte) error {
	*n = looseNumber{}
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	n.value, n.valid = v.(float64)
	return nil
}

type storedIngredient struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Quantity looseNumber `json:"quantity"`
}

type storedCraft struct {
	ID                string             `json:"id"`
	Name              string             `json:"name"`
	Type              string             `json:"type"`
	Ingredients       []storedIngredient `json:"ingredients"`
	QuantityProduced  looseNumber        `json:"quantityProduced"`
	Margin            looseNumber        `json:"margin"`
	TotalCost         looseNumber        `json:"totalCost"`
	UnitCost          looseNumber        `json:"unitCost"`
	TotalProfit       looseNumber        `json:"totalProfit"`
	UnitProfit        looseNumber        `json:"unitProfit"`
	TotalSellingPrice looseNumber        `json:"totalSellingPrice"`
	UnitSellingPrice  looseNumber        `json:"unitSellingPrice"`
}

type storedFarm struct {
	ID     string        `json:"id"`
	Name   string        `json:"name"`
	Owner  string        `json:"owner"`
	Crafts []storedCraft `json:"crafts"`
}

// migrateFarms upgrades stored farms to the current shape. It reports
// whether anything differs from what was stored, so callers can skip the
// write when the data was already consistent. With keepStored set, complete
// stored figures are kept instead of being compared against costs.
func migrateFarms(stored []storedFarm, costs pricing.CostTable, keepStored bool, newID func() string) ([]Farm, bool) {
	changed := false
	farms := make([]Farm, 0, len(stored))

	for _, sf := range stored {
		f := Farm{ID: sf.ID, Name: sf.Name, Owner: sf.Owner}
		if f.ID == "" {
			f.ID = newID()
			changed = true
		}
		if len(sf.Crafts) > 0 {
			f.Crafts = make([]Craft, 0, len(sf.Crafts))
			for _, sc := range sf.Crafts {
				c, craftChanged := migrateCraft(sc, costs, keepStored, newID)
				f.Crafts = append(f.Crafts, c)
				changed = changed || craftChanged
			}
		}
		farms = append(farms, f)
	}
	return farms, changed
}

func migrateCraft(sc storedCraft, costs pricing.CostTable, keepStored bool, newID func() string) (Craft, bool) {
	changed := false

	c := Craft{
		ID:               sc.ID,
		Name:             sc.Name,
		Type:             sc.Type,
		Ingredients:      make([]pricing.Ingredient, 0, len(sc.Ingredients)),
		QuantityProduced: normalizeQuantityProduced(sc.QuantityProduced),
		Margin:           normalizeMargin(sc.Margin),
	}
	if c.ID == "" {
		c.ID = newID()
		changed = true
	}
	if sc.Ingredients == nil {
		changed = true
	}
	for _, si := range sc.Ingredients {
		ing := pricing.Ingredient{ID: si.ID, Name: si.Name, Quantity: si.Quantity.value}
		if !si.Quantity.valid {
			ing.Quantity = 0
			changed = true
		}
		c.Ingredients = append(c.Ingredients, ing)
	}

	inputsNormalized := !sc.QuantityProduced.valid || float64(c.QuantityProduced) != sc.QuantityProduced.value ||
		!sc.Margin.valid || c.Margin != sc.Margin.value

	stored, complete := storedDetails(sc)
	if keepStored && complete && !inputsNormalized {
		c.Details = stored
		return c, changed
	}

	derived := pricing.Calculate(c.Ingredients, c.QuantityProduced, c.Margin, costs)
	c.Details = derived
	if inputsNormalized || !complete || stored != derived {
		changed = true
	}
	return c, changed
}

// normalizeQuantityProduced keeps positive whole numbers and falls back to 1.
func normalizeQuantityProduced(n looseNumber) int {
	if !n.valid || n.value <= 0 || n.value != math.Trunc(n.value) || n.value > math.MaxInt32 {
		return 1
	}
	return int(n.value)
}

func normalizeMargin(n looseNumber) float64 {
	if !n.valid {
		return 0
	}
	return n.value
}

func storedDetails(sc storedCraft) (pricing.Details, bool) {
	fields := []looseNumber{sc.TotalCost, sc.UnitCost, sc.TotalProfit, sc.UnitProfit, sc.TotalSellingPrice, sc.UnitSellingPrice}
	for _, f := range fields {
		if !f.valid {
			return pricing.Details{}, false
		}
	}
	return pricing.Details{
		TotalCost:         sc.TotalCost.value,
		UnitCost:          sc.UnitCost.value,
		TotalProfit:       sc.TotalProfit.value,
		UnitProfit:        sc.UnitProfit.value,
		TotalSellingPrice: sc.TotalSellingPrice.value,
		UnitSellingPrice:  sc.UnitSellingPrice.value,
	}, true
}

// recalculate returns a copy of farms with every craft priced against costs.
func recalculate(farms []Farm, costs pricing.CostTable) []Farm {
	out := cloneFarms(farms)
	for i := range out {
		for j := range out[i].Crafts {
			c := &out[i].Crafts[j]
			c.Details = pricing.Calculate(c.Ingredients, c.QuantityProduced, c.Margin, costs)
		}
	}
	return out
}

func newUUID() string {
	return uuid.NewString()
}
