package core

import (
	"Genie/bot/chat"
	"Genie/bot/dialog"
	"Genie/internal/lib/sl"
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"time"
)

// Engine runs the dialog turns of every channel.
type Engine interface {
	HandleActivity(ctx context.Context, m chat.Messenger, a chat.Activity) error
	ResetConversation(ctx context.Context, channelID, conversationID string) error
	GetState(ctx context.Context, channelID, conversationID string) (*dialog.ConversationState, error)
}

type Core struct {
	engine  Engine
	bot     chat.Account
	authKey string
	timeout time.Duration
	log     *slog.Logger
}

func New(log *slog.Logger) *Core {
	return &Core{
		log:     log.With(sl.Module("core")),
		timeout: 30 * time.Second,
	}
}

func (c *Core) SetEngine(engine Engine) {
	c.engine = engine
}

// SetBotAccount sets the account replies are sent from.
func (c *Core) SetBotAccount(id, name string) {
	c.bot = chat.Account{ID: id, Name: name}
}

// SetAuthKey enables bearer authentication of the API when key is not empty.
func (c *Core) SetAuthKey(key string) {
	c.authKey = key
}

func (c *Core) AuthRequired() bool {
	return c.authKey != ""
}

func (c *Core) AuthenticateByToken(token string) error {
	if subtle.ConstantTimeCompare([]byte(token), []byte(c.authKey)) != 1 {
		return fmt.Errorf("invalid token")
	}
	return nil
}

// ProcessActivity runs one turn and returns the replies produced by it.
func (c *Core) ProcessActivity(ctx context.Context, a chat.Activity) ([]chat.Activity, error) {
	if c.engine == nil {
		return nil, fmt.Errorf("%w: chat engine not set", dialog.ErrConfiguration)
	}
	if a.Recipient.ID == "" {
		a.Recipient = c.bot
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	transcript := chat.NewTranscript(a.ChannelID, c.bot)
	err := c.engine.HandleActivity(ctx, transcript, a)
	replies := transcript.Activities()
	for i := range replies {
		replies[i].ReplyToID = a.ID
		replies[i].Recipient = a.From
	}
	if err != nil {
		c.log.With(
			slog.String("channel", a.ChannelID),
			slog.String("conversation", a.Conversation.ID),
			sl.Err(err),
		).Error("process activity")
		return replies, err
	}
	return replies, nil
}

// HandleActivity runs a turn whose replies go through m.
func (c *Core) HandleActivity(ctx context.Context, m chat.Messenger, a chat.Activity) error {
	if c.engine == nil {
		return fmt.Errorf("%w: chat engine not set", dialog.ErrConfiguration)
	}
	if a.Recipient.ID == "" {
		a.Recipient = c.bot
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.engine.HandleActivity(ctx, m, a)
}

func (c *Core) ResetConversation(ctx context.Context, channelID, conversationID string) error {
	if c.engine == nil {
		return fmt.Errorf("%w: chat engine not set", dialog.ErrConfiguration)
	}
	return c.engine.ResetConversation(ctx, channelID, conversationID)
}

func (c *Core) ConversationState(ctx context.Context, channelID, conversationID string) (*dialog.ConversationState, error) {
	if c.engine == nil {
		return nil, fmt.Errorf("%w: chat engine not set", dialog.ErrConfiguration)
	}
	return c.engine.GetState(ctx, channelID, conversationID)
}
