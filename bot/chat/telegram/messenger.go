package telegram

import (
	"strconv"

	tgbotapi "github.com/PaulSonOfLars/gotgbot/v2"
)

// ChannelID is the channel id of Telegram conversations.
const ChannelID = "telegram"

// TelegramAPI defines the Telegram bot methods needed by the messenger.
type TelegramAPI interface {
	SendMessage(chatId int64, text string, opts *tgbotapi.SendMessageOpts) (*tgbotapi.Message, error)
}

// Messenger implements chat.Messenger for Telegram using reply keyboards.
type Messenger struct {
	api TelegramAPI
}

// NewMessenger creates a new Telegram Messenger.
func NewMessenger(api TelegramAPI) *Messenger {
	return &Messenger{api: api}
}

func (m *Messenger) SendText(chatID, text string) error {
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return err
	}
	_, err = m.api.SendMessage(id, text, &tgbotapi.SendMessageOpts{
		ReplyMarkup: tgbotapi.ReplyKeyboardRemove{RemoveKeyboard: true},
	})
	return err
}

// SendChoices sends the choices as a one time keyboard, one button per row.
func (m *Messenger) SendChoices(chatID, text string, choices []string) error {
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return err
	}

	keyboard := make([][]tgbotapi.KeyboardButton, len(choices))
	for i, c := range choices {
		keyboard[i] = []tgbotapi.KeyboardButton{{Text: c}}
	}

	_, err = m.api.SendMessage(id, text, &tgbotapi.SendMessageOpts{
		ReplyMarkup: tgbotapi.ReplyKeyboardMarkup{
			Keyboard:        keyboard,
			ResizeKeyboard:  true,
			OneTimeKeyboard: true,
		},
	})
	return err
}
