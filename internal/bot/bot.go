package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"farmcraft/internal/farm"
)

// Sender is the part of the Telegram API the bot talks to.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type Bot struct {
	api        *tgbotapi.BotAPI
	sender     Sender
	farms      *farm.Service
	logger     *zap.Logger
	reportsDir string
	now        func() time.Time

	mu       sync.Mutex
	selected map[int64]string
	handlers map[string]func(context.Context, int64, string)
}

func New(
	token string,
	debug bool,
	farms *farm.Service,
	logger *zap.Logger,
	reportsDir string,
) (*Bot, error) {
	botAPI, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}
	botAPI.Debug = debug

	logger.Info("Bot authorized",
		zap.String("username", botAPI.Self.UserName),
		zap.Int64("id", botAPI.Self.ID))

	b := newBot(botAPI, farms, logger, reportsDir)
	b.api = botAPI
	return b, nil
}

func newBot(sender Sender, farms *farm.Service, logger *zap.Logger, reportsDir string) *Bot {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &Bot{
		sender:     sender,
		farms:      farms,
		logger:     logger,
		reportsDir: reportsDir,
		now:        time.Now,
		selected:   make(map[int64]string),
	}
	b.registerHandlers()
	return b
}

func (b *Bot) registerHandlers() {
	b.handlers = map[string]func(context.Context, int64, string){
		"start":       b.handleStart,
		"help":        b.handleStart,
		"newfarm":     b.handleNewFarm,
		"farms":       b.handleFarms,
		"use":         b.handleUse,
		"crafts":      b.handleCrafts,
		"ingredients": b.handleIngredients,
		"addcraft":    b.handleAddCraft,
		"editcraft":   b.handleEditCraft,
		"delcraft":    b.handleDeleteCraft,
		"costs":       b.handleCosts,
		"export":      b.handleExport,
	}
}

// Start polls for updates until ctx is cancelled. Updates are handled one
// at a time.
func (b *Bot) Start(ctx context.Context) error {
	if b.api == nil {
		return errors.New("bot API is not initialized")
	}
	b.logger.Info("Starting bot")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Shutting down bot")
			b.api.StopReceivingUpdates()
			return nil

		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if update.Message != nil {
		b.processMessage(ctx, update.Message)
	} else if update.CallbackQuery != nil {
		b.processCallback(ctx, update.CallbackQuery)
	}
}

func (b *Bot) processMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.Chat == nil {
		return
	}
	chatID := msg.Chat.ID

	b.logger.Debug("Processing message",
		zap.Int64("chat_id", chatID),
		zap.String("text", msg.Text))

	if !msg.IsCommand() {
		b.sendText(chatID, "Send /help to see the available commands.")
		return
	}

	handler, ok := b.handlers[msg.Command()]
	if !ok {
		b.sendError(chatID, "Unknown command. Send /help to see the available commands.")
		return
	}
	handler(ctx, chatID, msg.CommandArguments())
}

func (b *Bot) processCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	if _, err := b.sender.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		b.logger.Warn("Failed to answer callback", zap.Error(err))
	}
	if callback.Message == nil || callback.Message.Chat == nil {
		return
	}
	chatID := callback.Message.Chat.ID

	b.logger.Debug("Processing callback",
		zap.Int64("chat_id", chatID),
		zap.String("data", callback.Data))

	switch {
	case callback.Data == callbackCancel:
		b.sendText(chatID, "Deletion cancelled.")
	case strings.HasPrefix(callback.Data, callbackDeletePrefix):
		b.confirmDeleteCraft(ctx, chatID, strings.TrimPrefix(callback.Data, callbackDeletePrefix))
	default:
		b.sendError(chatID, "Unknown action")
	}
}

func (b *Bot) sendMessage(msg tgbotapi.MessageConfig) {
	if _, err := b.sender.Send(msg); err != nil {
		b.logger.Error("Failed to send message",
			zap.Int64("chat_id", msg.ChatID),
			zap.String("text", msg.Text),
			zap.Error(err))
	}
}

func (b *Bot) sendText(chatID int64, text string) {
	b.sendMessage(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) sendSuccess(chatID int64, text string) {
	b.sendText(chatID, "✅ "+text)
}

func (b *Bot) sendError(chatID int64, text string) {
	b.sendText(chatID, "❌ "+text)
}

// replyError turns a service error into a user reply. Anything that is not
// a validation or lookup failure is logged and reported generically.
func (b *Bot) replyError(chatID int64, action string, err error) {
	switch {
	case farm.IsValidation(err):
		b.sendError(chatID, err.Error())
	case errors.Is(err, farm.ErrFarmNotFound):
		b.sendError(chatID, "Farm not found. Send /farms to list them.")
	case errors.Is(err, farm.ErrCraftNotFound):
		b.sendError(chatID, "Craft not found. Send /crafts to list them.")
	default:
		b.logger.Error("Request failed",
			zap.Int64("chat_id", chatID),
			zap.String("action", action),
			zap.Error(err))
		b.sendError(chatID, "Could not "+action+", please try again later.")
	}
}
