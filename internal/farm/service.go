// Package farm owns the farm and craft records, keeps their derived pricing
// figures consistent with the cost table, and writes every change through
// the slot store before exposing it.
package farm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"farmcraft/internal/pricing"
	"farmcraft/internal/storage"
)

// Service holds the in-memory view of both slots. The view only advances
// after the matching store write succeeded.
type Service struct {
	store  storage.Store
	logger *zap.Logger
	newID  func() string

	mu     sync.Mutex
	loaded bool
	farms  []Farm
	costs  pricing.CostTable
}

func NewService(store storage.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  store,
		logger: logger,
		newID:  newUUID,
		costs:  pricing.CostTable{},
	}
}

// Load reads both slots, upgrades older records and persists the upgrade.
// When nothing needed upgrading no write is issued.
func (s *Service) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *Service) load(ctx context.Context) error {
	costs, costsValid, err := s.readCosts(ctx)
	if err != nil {
		return err
	}
	stored, err := s.readFarms(ctx)
	if err != nil {
		return err
	}

	farms, changed := migrateFarms(stored, costs, !costsValid, s.newID)
	if changed {
		if err := s.saveFarms(ctx, farms); err != nil {
			return fmt.Errorf("persist migrated farms: %w", err)
		}
		s.logger.Info("Migrated stored farms",
			zap.Int("farms", len(farms)))
	}

	s.farms = farms
	s.costs = costs
	s.loaded = true
	return nil
}

func (s *Service) ensureLoaded(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	return s.load(ctx)
}

// readCosts reports false when the slot held malformed data and an empty
// table was substituted.
func (s *Service) readCosts(ctx context.Context) (pricing.CostTable, bool, error) {
	data, err := s.store.Load(ctx, storage.SlotIngredientCosts)
	if errors.Is(err, storage.ErrNotFound) {
		return pricing.CostTable{}, true, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load ingredient costs: %w", err)
	}

	var costs pricing.CostTable
	if err := json.Unmarshal(data, &costs); err != nil {
		s.logger.Warn("Malformed ingredient costs, starting with an empty table and keeping stored figures",
			zap.Error(err))
		return pricing.CostTable{}, false, nil
	}
	if costs == nil {
		costs = pricing.CostTable{}
	}
	return costs, true, nil
}

func (s *Service) readFarms(ctx context.Context) ([]storedFarm, error) {
	data, err := s.store.Load(ctx, storage.SlotFarms)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load farms: %w", err)
	}

	var stored []storedFarm
	if err := json.Unmarshal(data, &stored); err != nil {
		s.logger.Warn("Malformed farms slot, starting with no farms",
			zap.Error(err))
		return nil, nil
	}
	return stored, nil
}

func (s *Service) saveFarms(ctx context.Context, farms []Farm) error {
	data, err := json.Marshal(farms)
	if err != nil {
		return fmt.Errorf("marshal farms: %w", err)
	}
	if err := s.store.Save(ctx, storage.Write{Slot: storage.SlotFarms, Data: data}); err != nil {
		s.logger.Error("Failed to save farms", zap.Error(err))
		return fmt.Errorf("save farms: %w", err)
	}
	return nil
}

// HasFarms reports whether at least one farm exists.
func (s *Service) HasFarms(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return false, err
	}
	return len(s.farms) > 0, nil
}

// Farms returns a copy of every farm in stored order.
func (s *Service) Farms(ctx context.Context) ([]Farm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return cloneFarms(s.farms), nil
}

func (s *Service) Farm(ctx context.Context, farmID string) (Farm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return Farm{}, err
	}
	i := s.farmIndex(farmID)
	if i < 0 {
		return Farm{}, ErrFarmNotFound
	}
	return s.farms[i].clone(), nil
}

func (s *Service) farmIndex(farmID string) int {
	for i, f := range s.farms {
		if f.ID == farmID {
			return i
		}
	}
	return -1
}

// CreateFarm appends a farm without crafts.
func (s *Service) CreateFarm(ctx context.Context, name, owner string) (Farm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return Farm{}, err
	}

	f := Farm{
		ID:    s.newID(),
		Name:  strings.TrimSpace(name),
		Owner: strings.TrimSpace(owner),
	}
	if f.Name == "" {
		return Farm{}, newValidationError("farm name is required")
	}
	if f.Owner == "" {
		return Farm{}, newValidationError("farm owner is required")
	}

	next := append(cloneFarms(s.farms), f)
	if err := s.saveFarms(ctx, next); err != nil {
		return Farm{}, err
	}
	s.farms = next

	s.logger.Info("Farm created",
		zap.String("farm_id", f.ID),
		zap.String("name", f.Name))
	return f.clone(), nil
}

// SaveCraft adds a craft when in.ID is empty and replaces the craft with
// that ID otherwise. Derived figures are priced against the current table.
func (s *Service) SaveCraft(ctx context.Context, farmID string, in CraftInput) (Craft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return Craft{}, err
	}

	fi := s.farmIndex(farmID)
	if fi < 0 {
		return Craft{}, ErrFarmNotFound
	}
	ingredients, err := s.validateCraft(in)
	if err != nil {
		return Craft{}, err
	}

	next := cloneFarms(s.farms)
	crafts := next[fi].Crafts

	craft := Craft{
		ID:               in.ID,
		Name:             strings.TrimSpace(in.Name),
		Type:             strings.TrimSpace(in.Type),
		Ingredients:      ingredients,
		QuantityProduced: in.QuantityProduced,
		Margin:           in.Margin,
		Details:          pricing.Calculate(ingredients, in.QuantityProduced, in.Margin, s.costs),
	}

	if in.ID != "" {
		ci := craftIndex(crafts, in.ID)
		if ci < 0 {
			return Craft{}, ErrCraftNotFound
		}
		crafts[ci] = craft
	} else {
		craft.ID = s.newID()
		crafts = append(crafts, craft)
	}
	next[fi].Crafts = crafts

	if err := s.saveFarms(ctx, next); err != nil {
		return Craft{}, err
	}
	s.farms = next

	s.logger.Info("Craft saved",
		zap.String("farm_id", farmID),
		zap.String("craft_id", craft.ID),
		zap.Bool("edit", in.ID != ""))
	return craft.clone(), nil
}

// validateCraft checks the simple field rules and returns the cleaned
// ingredient list. Blank or non-positive ingredient rows are dropped.
func (s *Service) validateCraft(in CraftInput) ([]pricing.Ingredient, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, newValidationError("craft name is required")
	}
	if in.QuantityProduced <= 0 {
		return nil, newValidationError("quantity produced must be greater than zero")
	}
	if in.Margin < 0 || math.IsNaN(in.Margin) || math.IsInf(in.Margin, 0) {
		return nil, newValidationError("margin must be a non-negative number")
	}

	ingredients := make([]pricing.Ingredient, 0, len(in.Ingredients))
	for _, ing := range in.Ingredients {
		name := strings.TrimSpace(ing.Name)
		if name == "" {
			continue
		}
		qty, err := strconv.ParseFloat(strings.TrimSpace(ing.Quantity), 64)
		if err != nil || !(qty > 0) || math.IsInf(qty, 0) {
			continue
		}
		id := ing.ID
		if id == "" {
			id = s.newID()
		}
		ingredients = append(ingredients, pricing.Ingredient{ID: id, Name: name, Quantity: qty})
	}
	if len(ingredients) == 0 {
		return nil, newValidationError("add at least one valid ingredient")
	}
	return ingredients, nil
}

func craftIndex(crafts []Craft, craftID string) int {
	for i, c := range crafts {
		if c.ID == craftID {
			return i
		}
	}
	return -1
}

// DeleteCraft removes exactly one craft from the farm.
func (s *Service) DeleteCraft(ctx context.Context, farmID, craftID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}

	fi := s.farmIndex(farmID)
	if fi < 0 {
		return ErrFarmNotFound
	}
	ci := craftIndex(s.farms[fi].Crafts, craftID)
	if ci < 0 {
		return ErrCraftNotFound
	}

	next := cloneFarms(s.farms)
	crafts := next[fi].Crafts
	next[fi].Crafts = append(crafts[:ci:ci], crafts[ci+1:]...)

	if err := s.saveFarms(ctx, next); err != nil {
		return err
	}
	s.farms = next

	s.logger.Info("Craft deleted",
		zap.String("farm_id", farmID),
		zap.String("craft_id", craftID))
	return nil
}

// Costs returns a copy of the ingredient cost table.
func (s *Service) Costs(ctx context.Context) (pricing.CostTable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return s.costs.Clone(), nil
}

// UniqueIngredients lists every trimmed ingredient name used by any craft of
// any farm, sorted.
func (s *Service) UniqueIngredients(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return uniqueIngredientNames(s.farms), nil
}

func uniqueIngredientNames(farms []Farm) []string {
	seen := make(map[string]struct{})
	for _, f := range farms {
		for _, c := range f.Crafts {
			for _, ing := range c.Ingredients {
				name := strings.TrimSpace(ing.Name)
				if name == "" {
					continue
				}
				seen[name] = struct{}{}
			}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SaveCosts applies cost edits given as user-typed text and recomputes every
// craft of every farm. The table covers each ingredient in use, starting from
// its current cost; costs stored for names outside that set are kept. Costs and
// farms are written in a single store call.
func (s *Service) SaveCosts(ctx context.Context, edits map[string]string) (pricing.CostTable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	table := s.costs.Clone()
	for _, name := range uniqueIngredientNames(s.farms) {
		if _, ok := table[name]; !ok {
			table[name] = 0
		}
	}

	names := make([]string, 0, len(edits))
	for name := range edits {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			return nil, newValidationError("ingredient name is required")
		}
		cost, err := parseCost(edits[raw])
		if err != nil {
			return nil, newValidationError(fmt.Sprintf("invalid cost for %q: %q", name, edits[raw]))
		}
		table[name] = cost
	}

	recalculated := recalculate(s.farms, table)

	costsData, err := json.Marshal(table)
	if err != nil {
		return nil, fmt.Errorf("marshal ingredient costs: %w", err)
	}
	farmsData, err := json.Marshal(recalculated)
	if err != nil {
		return nil, fmt.Errorf("marshal farms: %w", err)
	}
	err = s.store.Save(ctx,
		storage.Write{Slot: storage.SlotIngredientCosts, Data: costsData},
		storage.Write{Slot: storage.SlotFarms, Data: farmsData},
	)
	if err != nil {
		s.logger.Error("Failed to save ingredient costs", zap.Error(err))
		return nil, fmt.Errorf("save ingredient costs: %w", err)
	}

	s.costs = table
	s.farms = recalculated

	s.logger.Info("Ingredient costs saved, crafts recalculated",
		zap.Int("ingredients", len(table)))
	return table.Clone(), nil
}

// parseCost accepts a blank field (or a lone dot) as zero and rejects
// anything that is not a non-negative finite number.
func parseCost(raw string) (float64, error) {
	v := strings.TrimSpace(raw)
	if v == "" || v == "." {
		return 0, nil
	}
	cost, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(cost) || math.IsInf(cost, 0) || cost < 0 {
		return 0, fmt.Errorf("cost out of range: %v", cost)
	}
	return cost, nil
}
