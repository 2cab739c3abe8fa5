package bot

import (
	"fmt"
	"strings"

	"farmcraft/internal/farm"
	"farmcraft/internal/pricing"
	"farmcraft/internal/report"
)

const helpText = `Commands:
/newfarm Name | Owner
/farms
/use <farmID>
/crafts
/ingredients
/addcraft Name | Type | Qty | Margin | Wood=10, Iron=2
/editcraft ID | Name | Type | Qty | Margin | Wood=10, Iron=2
/delcraft ID
/costs Wood=0.5, Iron=3
/export`

func formatFarms(farms []farm.Farm, selected string) string {
	var sb strings.Builder
	sb.WriteString("Farms:\n")
	for _, f := range farms {
		marker := "•"
		if f.ID == selected {
			marker = "▶"
		}
		fmt.Fprintf(&sb, "%s %s (%s), %d crafts\n  id: %s\n", marker, f.Name, f.Owner, len(f.Crafts), f.ID)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatCraft(c farm.Craft) string {
	d := c.Details
	var sb strings.Builder
	fmt.Fprintf(&sb, "🛠 %s", c.Name)
	if c.Type != "" {
		fmt.Fprintf(&sb, " (%s)", c.Type)
	}
	fmt.Fprintf(&sb, "\n  id: %s\n", c.ID)
	fmt.Fprintf(&sb, "  Produces %d, margin %s%%\n", c.QuantityProduced, pricing.FormatAmount(c.Margin))
	fmt.Fprintf(&sb, "  Ingredients: %s\n", report.IngredientSummary(c.Ingredients))
	fmt.Fprintf(&sb, "  Cost: %s total, %s unit\n", pricing.FormatAmount(d.TotalCost), pricing.FormatAmount(d.UnitCost))
	fmt.Fprintf(&sb, "  Profit: %s total, %s unit\n", pricing.FormatAmount(d.TotalProfit), pricing.FormatAmount(d.UnitProfit))
	fmt.Fprintf(&sb, "  Price: %s total, %s unit", pricing.FormatAmount(d.TotalSellingPrice), pricing.FormatAmount(d.UnitSellingPrice))
	return sb.String()
}

func formatCrafts(f farm.Farm) string {
	if len(f.Crafts) == 0 {
		return fmt.Sprintf("%s has no crafts yet. Add one with /addcraft.", f.Name)
	}
	blocks := make([]string, 0, len(f.Crafts)+1)
	blocks = append(blocks, fmt.Sprintf("Crafts of %s:", f.Name))
	for _, c := range f.Crafts {
		blocks = append(blocks, formatCraft(c))
	}
	return strings.Join(blocks, "\n\n")
}

func formatCosts(names []string, costs pricing.CostTable) string {
	var sb strings.Builder
	sb.WriteString("Ingredient costs:\n")
	for _, name := range names {
		fmt.Fprintf(&sb, "• %s: %s\n", name, pricing.FormatAmount(costs.Cost(name)))
	}
	return strings.TrimRight(sb.String(), "\n")
}
