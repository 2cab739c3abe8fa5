package bot

import tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

const (
	callbackDeletePrefix = "delcraft:"
	callbackCancel       = "cancel"
)

func deleteConfirmationKeyboard(craftID string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑 Delete", callbackDeletePrefix+craftID),
			tgbotapi.NewInlineKeyboardButtonData("Cancel", callbackCancel),
		),
	)
}
