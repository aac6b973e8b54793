package bot

import (
	"Genie/bot/chat"
	"Genie/bot/chat/telegram"
	"Genie/bot/dialog"
	"Genie/internal/lib/sl"
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"
	"github.com/PaulSonOfLars/gotgbot/v2/ext/handlers"
)

// TurnHandler runs a dialog turn for a Telegram update.
type TurnHandler interface {
	HandleActivity(ctx context.Context, m chat.Messenger, a chat.Activity) error
}

type TgBot struct {
	log         *slog.Logger
	api         *tgbotapi.Bot
	botUsername string
	adminId     int64
	handler     TurnHandler
	messenger   *telegram.Messenger
}

func NewTgBot(botName, apiKey string, adminId int64, log *slog.Logger) (*TgBot, error) {
	tgBot := &TgBot{
		log:         log.With(sl.Module("tgbot")),
		adminId:     adminId,
		botUsername: botName,
	}

	api, err := tgbotapi.NewBot(apiKey, nil)
	if err != nil {
		return nil, fmt.Errorf("creating api instance: %v", err)
	}
	tgBot.api = api
	tgBot.messenger = telegram.NewMessenger(api)

	return tgBot, nil
}

// SetTurnHandler sets the handler that receives user messages.
func (t *TgBot) SetTurnHandler(handler TurnHandler) {
	t.handler = handler
}

func (t *TgBot) Start() error {

	dispatcher := ext.NewDispatcher(&ext.DispatcherOpts{
		// If an error is returned by a handler, log it and continue going.
		Error: func(b *tgbotapi.Bot, ctx *ext.Context, err error) ext.DispatcherAction {
			t.log.Warn("handling update", sl.Err(err))
			return ext.DispatcherActionNoop
		},
		MaxRoutines: ext.DefaultMaxRoutines,
	})
	updater := ext.NewUpdater(dispatcher, nil)

	dispatcher.AddHandler(handlers.NewMessage(joined, t.handleJoin))
	dispatcher.AddHandler(handlers.NewMessage(userContent, t.handleMessage))

	// Start receiving updates.
	err := updater.StartPolling(t.api, &ext.PollingOpts{
		DropPendingUpdates: true,
		GetUpdatesOpts: &tgbotapi.GetUpdatesOpts{
			Timeout: 9,
			RequestOpts: &tgbotapi.RequestOpts{
				Timeout: time.Second * 10,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to start polling: %w", err)
	}

	t.log.Info("telegram bot started", slog.String("username", t.botUsername))

	// Idle, to keep updates coming in, and avoid bot stopping.
	updater.Idle()

	return nil
}

func joined(msg *tgbotapi.Message) bool {
	return len(msg.NewChatMembers) > 0
}

func userContent(msg *tgbotapi.Message) bool {
	return msg.Text != "" || len(msg.Photo) > 0 || msg.Document != nil
}

func (t *TgBot) handleJoin(b *tgbotapi.Bot, ctx *ext.Context) error {
	if t.handler == nil {
		return nil
	}
	msg := ctx.EffectiveMessage
	a := t.activity(msg, chat.ActivityConversationUpdate)
	for _, m := range msg.NewChatMembers {
		a.MembersAdded = append(a.MembersAdded, account(m))
	}
	return t.handler.HandleActivity(context.Background(), t.messenger, a)
}

func (t *TgBot) handleMessage(b *tgbotapi.Bot, ctx *ext.Context) error {
	if t.handler == nil {
		t.log.Warn("turn handler not initialized")
		return nil
	}
	msg := ctx.EffectiveMessage
	a := t.activity(msg, chat.ActivityMessage)
	a.Text = strings.TrimPrefix(msg.Text, "/start")
	if a.Text == "" {
		a.Text = msg.Caption
	}
	a.Attachments = t.attachments(msg)

	err := t.handler.HandleActivity(context.Background(), t.messenger, a)
	if err != nil {
		t.log.With(
			slog.Int64("chat_id", msg.Chat.Id),
			sl.Err(err),
		).Error("handle message")
	}
	return err
}

func (t *TgBot) activity(msg *tgbotapi.Message, kind string) chat.Activity {
	a := chat.Activity{
		ID:           strconv.FormatInt(msg.MessageId, 10),
		Type:         kind,
		ChannelID:    telegram.ChannelID,
		Conversation: chat.ConversationAccount{ID: strconv.FormatInt(msg.Chat.Id, 10)},
		Recipient:    account(t.api.User),
		Timestamp:    time.Unix(msg.Date, 0).UTC(),
	}
	if msg.From != nil {
		a.From = account(*msg.From)
	}
	return a
}

// attachments resolves the downloadable files of a message. The largest
// photo size is used.
func (t *TgBot) attachments(msg *tgbotapi.Message) []dialog.Attachment {
	var out []dialog.Attachment
	if n := len(msg.Photo); n > 0 {
		if link, ok := t.fileURL(msg.Photo[n-1].FileId); ok {
			out = append(out, dialog.Attachment{ContentType: "image/jpeg", ContentURL: link, Name: "photo.jpg"})
		}
	}
	if doc := msg.Document; doc != nil {
		if link, ok := t.fileURL(doc.FileId); ok {
			contentType := doc.MimeType
			if contentType == "" {
				contentType = "application/octet-stream"
			}
			out = append(out, dialog.Attachment{ContentType: contentType, ContentURL: link, Name: doc.FileName})
		}
	}
	return out
}

func (t *TgBot) fileURL(fileID string) (string, bool) {
	file, err := t.api.GetFile(fileID, nil)
	if err != nil {
		t.log.With(slog.String("file_id", fileID)).Warn("get file", sl.Err(err))
		return "", false
	}
	return fmt.Sprintf("https://api.telegram.org/file/bot%s/%s", t.api.Token, file.FilePath), true
}

func account(u tgbotapi.User) chat.Account {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	return chat.Account{ID: strconv.FormatInt(u.Id, 10), Name: name}
}

// SendMessage delivers log records to the admin chat.
func (t *TgBot) SendMessage(msg string) {

	t.plainResponse(t.adminId, msg)
}

func (t *TgBot) plainResponse(chatId int64, text string) {
	if chatId == 0 {
		return
	}

	sanitized := sanitize(text)
	if sanitized == "" {
		t.log.With(
			slog.Int64("id", chatId),
		).Debug("empty message")
		return
	}

	_, err := t.api.SendMessage(chatId, sanitized, &tgbotapi.SendMessageOpts{
		ParseMode: "MarkdownV2",
	})
	if err != nil {
		// no logging through t.log here, it may be routed back to this chat
		_, _ = t.api.SendMessage(chatId, text, &tgbotapi.SendMessageOpts{})
	}
}

// sanitize escapes the MarkdownV2 reserved characters.
func sanitize(input string) string {
	const reservedChars = "\\`_{}#+-.!|()[]*~>=<"

	var sb strings.Builder
	for _, char := range input {
		if strings.ContainsRune(reservedChars, char) {
			sb.WriteRune('\\')
		}
		sb.WriteRune(char)
	}

	return sb.String()
}
