package bot

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"farmcraft/internal/farm"
	"farmcraft/internal/report"
)

func (b *Bot) handleStart(ctx context.Context, chatID int64, _ string) {
	hasFarms, err := b.farms.HasFarms(ctx)
	if err != nil {
		b.replyError(chatID, "load farms", err)
		return
	}
	if !hasFarms {
		b.sendText(chatID, "👋 No farms yet. Create one with /newfarm Name | Owner.\n\n"+helpText)
		return
	}
	b.sendText(chatID, "👋 Welcome back. Send /farms to pick a farm.\n\n"+helpText)
}

func (b *Bot) handleNewFarm(ctx context.Context, chatID int64, args string) {
	fields, err := splitArgs(args, 2)
	if err != nil {
		b.sendError(chatID, "Usage: /newfarm Name | Owner")
		return
	}
	f, err := b.farms.CreateFarm(ctx, fields[0], fields[1])
	if err != nil {
		b.replyError(chatID, "create the farm", err)
		return
	}
	b.selected[chatID] = f.ID
	b.sendSuccess(chatID, fmt.Sprintf("Farm %s created and selected.\nid: %s", f.Name, f.ID))
}

func (b *Bot) handleFarms(ctx context.Context, chatID int64, _ string) {
	farms, err := b.farms.Farms(ctx)
	if err != nil {
		b.replyError(chatID, "load farms", err)
		return
	}
	if len(farms) == 0 {
		b.sendText(chatID, "No farms yet. Create one with /newfarm Name | Owner.")
		return
	}
	b.sendText(chatID, formatFarms(farms, b.selected[chatID]))
}

func (b *Bot) handleUse(ctx context.Context, chatID int64, args string) {
	id := strings.TrimSpace(args)
	if id == "" {
		b.sendError(chatID, "Usage: /use <farmID>")
		return
	}
	f, err := b.farms.Farm(ctx, id)
	if err != nil {
		b.replyError(chatID, "select the farm", err)
		return
	}
	b.selected[chatID] = f.ID
	b.sendSuccess(chatID, fmt.Sprintf("Using farm %s.", f.Name))
}

// currentFarm resolves the chat's farm. It replies and reports false when
// no farm can be used.
func (b *Bot) currentFarm(ctx context.Context, chatID int64) (farm.Farm, bool) {
	if id, ok := b.selected[chatID]; ok {
		f, err := b.farms.Farm(ctx, id)
		if err == nil {
			return f, true
		}
		if !errors.Is(err, farm.ErrFarmNotFound) {
			b.replyError(chatID, "load the farm", err)
			return farm.Farm{}, false
		}
		delete(b.selected, chatID)
	}

	farms, err := b.farms.Farms(ctx)
	if err != nil {
		b.replyError(chatID, "load farms", err)
		return farm.Farm{}, false
	}
	switch len(farms) {
	case 0:
		b.sendError(chatID, "No farms yet. Create one with /newfarm Name | Owner.")
		return farm.Farm{}, false
	case 1:
		return farms[0], true
	default:
		b.sendError(chatID, "Select a farm first with /use <farmID>. Send /farms to list them.")
		return farm.Farm{}, false
	}
}

func (b *Bot) handleCrafts(ctx context.Context, chatID int64, _ string) {
	f, ok := b.currentFarm(ctx, chatID)
	if !ok {
		return
	}
	b.sendText(chatID, formatCrafts(f))
}

func (b *Bot) handleIngredients(ctx context.Context, chatID int64, _ string) {
	names, err := b.farms.UniqueIngredients(ctx)
	if err != nil {
		b.replyError(chatID, "load ingredients", err)
		return
	}
	if len(names) == 0 {
		b.sendText(chatID, "No ingredients in use yet.")
		return
	}
	costs, err := b.farms.Costs(ctx)
	if err != nil {
		b.replyError(chatID, "load ingredient costs", err)
		return
	}
	b.sendText(chatID, formatCosts(names, costs))
}

func (b *Bot) handleAddCraft(ctx context.Context, chatID int64, args string) {
	const usage = "Usage: /addcraft Name | Type | Qty | Margin | Wood=10, Iron=2"

	fields, err := splitArgs(args, 5)
	if err != nil {
		b.sendError(chatID, usage)
		return
	}
	in, err := parseCraft(fields)
	if err != nil {
		b.sendError(chatID, err.Error()+"\n"+usage)
		return
	}
	f, ok := b.currentFarm(ctx, chatID)
	if !ok {
		return
	}
	c, err := b.farms.SaveCraft(ctx, f.ID, in)
	if err != nil {
		b.replyError(chatID, "save the craft", err)
		return
	}
	b.sendSuccess(chatID, "Craft added.\n"+formatCraft(c))
}

func (b *Bot) handleEditCraft(ctx context.Context, chatID int64, args string) {
	const usage = "Usage: /editcraft ID | Name | Type | Qty | Margin | Wood=10, Iron=2"

	fields, err := splitArgs(args, 6)
	if err != nil {
		b.sendError(chatID, usage)
		return
	}
	in, err := parseCraft(fields[1:])
	if err != nil {
		b.sendError(chatID, err.Error()+"\n"+usage)
		return
	}
	in.ID = fields[0]
	if in.ID == "" {
		b.sendError(chatID, usage)
		return
	}

	f, ok := b.currentFarm(ctx, chatID)
	if !ok {
		return
	}
	for _, existing := range f.Crafts {
		if existing.ID == in.ID {
			reuseIngredientIDs(in.Ingredients, existing)
			break
		}
	}

	c, err := b.farms.SaveCraft(ctx, f.ID, in)
	if err != nil {
		b.replyError(chatID, "save the craft", err)
		return
	}
	b.sendSuccess(chatID, "Craft updated.\n"+formatCraft(c))
}

func (b *Bot) handleDeleteCraft(ctx context.Context, chatID int64, args string) {
	id := strings.TrimSpace(args)
	if id == "" {
		b.sendError(chatID, "Usage: /delcraft ID")
		return
	}
	f, ok := b.currentFarm(ctx, chatID)
	if !ok {
		return
	}
	for _, c := range f.Crafts {
		if c.ID == id {
			msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("Delete craft %s from %s?", c.Name, f.Name))
			msg.ReplyMarkup = deleteConfirmationKeyboard(c.ID)
			b.sendMessage(msg)
			return
		}
	}
	b.replyError(chatID, "delete the craft", farm.ErrCraftNotFound)
}

func (b *Bot) confirmDeleteCraft(ctx context.Context, chatID int64, craftID string) {
	f, ok := b.currentFarm(ctx, chatID)
	if !ok {
		return
	}
	if err := b.farms.DeleteCraft(ctx, f.ID, craftID); err != nil {
		b.replyError(chatID, "delete the craft", err)
		return
	}
	b.sendSuccess(chatID, "Craft deleted.")
}

func (b *Bot) handleCosts(ctx context.Context, chatID int64, args string) {
	if strings.TrimSpace(args) == "" {
		b.handleIngredients(ctx, chatID, "")
		return
	}
	edits, err := parseCosts(args)
	if err != nil {
		b.sendError(chatID, err.Error()+"\nUsage: /costs Wood=0.5, Iron=3")
		return
	}
	table, err := b.farms.SaveCosts(ctx, edits)
	if err != nil {
		b.replyError(chatID, "save ingredient costs", err)
		return
	}

	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)
	b.sendSuccess(chatID, "Costs saved, crafts recalculated.\n"+formatCosts(names, table))
}

func (b *Bot) handleExport(ctx context.Context, chatID int64, _ string) {
	f, ok := b.currentFarm(ctx, chatID)
	if !ok {
		return
	}
	if len(f.Crafts) == 0 {
		b.sendError(chatID, "Nothing to export: the farm has no crafts.")
		return
	}

	path, err := report.ExportCrafts(f, b.reportsDir, b.now())
	if err != nil {
		b.logger.Error("Failed to export crafts",
			zap.String("farm_id", f.ID),
			zap.Error(err))
		b.sendError(chatID, "Could not build the report.")
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(path))
	doc.Caption = fmt.Sprintf("Crafts of %s", f.Name)
	if _, err := b.sender.Send(doc); err != nil {
		b.logger.Error("Failed to send report",
			zap.String("path", path),
			zap.Error(err))
		b.sendError(chatID, "Could not send the report.")
		return
	}
	b.logger.Info("Report sent",
		zap.Int64("chat_id", chatID),
		zap.String("path", path))
}
