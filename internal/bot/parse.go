package bot

import (
	"fmt"
	"strconv"
	"strings"

	"farmcraft/internal/farm"
)

// splitArgs splits "a | b | c" into exactly n trimmed fields.
func splitArgs(args string, n int) ([]string, error) {
	if strings.TrimSpace(args) == "" {
		return nil, fmt.Errorf("expected %d fields separated by |", n)
	}
	parts := strings.Split(args, "|")
	if len(parts) != n {
		return nil, fmt.Errorf("expected %d fields separated by |, got %d", n, len(parts))
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts, nil
}

// parsePairs reads "Name=value, Name=value". Blank entries are skipped and
// the value text is passed through untouched.
func parsePairs(s string) ([][2]string, error) {
	var pairs [][2]string
	for _, entry := range strings.Split(s, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, value, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, fmt.Errorf("%q is not in Name=value form", entry)
		}
		pairs = append(pairs, [2]string{strings.TrimSpace(name), strings.TrimSpace(value)})
	}
	return pairs, nil
}

func parseIngredients(s string) ([]farm.IngredientInput, error) {
	pairs, err := parsePairs(s)
	if err != nil {
		return nil, err
	}
	ingredients := make([]farm.IngredientInput, 0, len(pairs))
	for _, p := range pairs {
		ingredients = append(ingredients, farm.IngredientInput{Name: p[0], Quantity: p[1]})
	}
	return ingredients, nil
}

func parseCosts(s string) (map[string]string, error) {
	pairs, err := parsePairs(s)
	if err != nil {
		return nil, err
	}
	if len(pairs) == 0 {
		return nil, fmt.Errorf("no costs given")
	}
	edits := make(map[string]string, len(pairs))
	for _, p := range pairs {
		edits[p[0]] = p[1]
	}
	return edits, nil
}

// parseCraft reads Name | Type | Qty | Margin | Ingredients.
func parseCraft(fields []string) (farm.CraftInput, error) {
	qty, err := strconv.Atoi(fields[2])
	if err != nil {
		return farm.CraftInput{}, fmt.Errorf("quantity produced must be a whole number, got %q", fields[2])
	}

	var margin float64
	if fields[3] != "" {
		margin, err = strconv.ParseFloat(strings.TrimSuffix(fields[3], "%"), 64)
		if err != nil {
			return farm.CraftInput{}, fmt.Errorf("margin must be a number, got %q", fields[3])
		}
	}

	ingredients, err := parseIngredients(fields[4])
	if err != nil {
		return farm.CraftInput{}, err
	}

	return farm.CraftInput{
		Name:             fields[0],
		Type:             fields[1],
		QuantityProduced: qty,
		Margin:           margin,
		Ingredients:      ingredients,
	}, nil
}

// reuseIngredientIDs keeps the IDs of ingredients that survive an edit,
// matched by name.
func reuseIngredientIDs(in []farm.IngredientInput, existing farm.Craft) {
	ids := make(map[string]string, len(existing.Ingredients))
	for _, ing := range existing.Ingredients {
		ids[strings.TrimSpace(ing.Name)] = ing.ID
	}
	for i := range in {
		if id, ok := ids[in[i].Name]; ok {
			in[i].ID = id
			delete(ids, in[i].Name)
		}
	}
}
