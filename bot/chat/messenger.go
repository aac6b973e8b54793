package chat

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Messenger is the channel adapter interface. Each channel (HTTP, websocket,
// Telegram) implements it to deliver replies.
type Messenger interface {
	SendText(chatID, text string) error
	SendChoices(chatID, text string, choices []string) error
}

// responder binds a messenger to the chat of the current turn.
type responder struct {
	m      Messenger
	chatID string
}

func (r *responder) SendText(text string) error {
	return r.m.SendText(r.chatID, text)
}

func (r *responder) SendChoices(text string, choices []string) error {
	return r.m.SendChoices(r.chatID, text, choices)
}

// Transcript collects replies as outbound activities, for channels that
// answer within the inbound request.
type Transcript struct {
	mu         sync.Mutex
	channelID  string
	bot        Account
	activities []Activity
}

// NewTranscript creates a transcript for replies sent as bot.
func NewTranscript(channelID string, bot Account) *Transcript {
	return &Transcript{channelID: channelID, bot: bot}
}

func (t *Transcript) SendText(chatID, text string) error {
	t.append(NewReply(t.channelID, chatID, t.bot, text, nil))
	return nil
}

func (t *Transcript) SendChoices(chatID, text string, choices []string) error {
	t.append(NewReply(t.channelID, chatID, t.bot, text, choices))
	return nil
}

// Activities returns the replies collected so far.
func (t *Transcript) Activities() []Activity {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Activity, len(t.activities))
	copy(out, t.activities)
	return out
}

// Texts returns the text of every reply, in order.
func (t *Transcript) Texts() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, 0, len(t.activities))
	for _, a := range t.activities {
		out = append(out, a.Text)
	}
	return out
}

func (t *Transcript) append(a Activity) {
	t.mu.Lock()
	t.activities = append(t.activities, a)
	t.mu.Unlock()
}

// NewReply builds an outbound message activity.
func NewReply(channelID, chatID string, from Account, text string, choices []string) Activity {
	a := Activity{
		ID:           uuid.NewString(),
		Type:         ActivityMessage,
		ChannelID:    channelID,
		Conversation: ConversationAccount{ID: chatID},
		From:         from,
		Text:         text,
		Timestamp:    time.Now().UTC(),
	}
	if len(choices) > 0 {
		actions := make([]CardAction, 0, len(choices))
		for _, c := range choices {
			actions = append(actions, CardAction{Type: "imBack", Title: c, Value: c})
		}
		a.SuggestedActions = &SuggestedActions{Actions: actions}
	}
	return a
}
