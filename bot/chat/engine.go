package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"Genie/bot/dialog"
	"Genie/internal/lib/sl"
)

const (
	cancelWord  = "cancel"
	saveTimeout = 10 * time.Second
)

// ChatEngine is the turn orchestrator: it loads the conversation state, routes
// the activity into the dialog stack and saves the state again.
type ChatEngine struct {
	dialogs       *dialog.Set
	storage       dialog.StateStore
	defaultDialog string
	botName       string
	locks         *Locker
	log           *slog.Logger
}

// NewChatEngine creates a new chat engine. Missing collaborators are
// configuration errors.
func NewChatEngine(storage dialog.StateStore, dialogs *dialog.Set, defaultDialog, botName string, log *slog.Logger) (*ChatEngine, error) {
	if storage == nil {
		return nil, fmt.Errorf("%w: conversation state storage is required", dialog.ErrConfiguration)
	}
	if dialogs == nil {
		return nil, fmt.Errorf("%w: dialog set is required", dialog.ErrConfiguration)
	}
	if !dialogs.Has(defaultDialog) {
		return nil, fmt.Errorf("%w: default dialog %q is not registered", dialog.ErrConfiguration, defaultDialog)
	}
	return &ChatEngine{
		dialogs:       dialogs,
		storage:       storage,
		defaultDialog: defaultDialog,
		botName:       botName,
		locks:         NewLocker(),
		log:           log.With(sl.Module("chat.engine")),
	}, nil
}

// HandleActivity processes one inbound activity. Turns of the same
// conversation run one at a time, in arrival order.
func (e *ChatEngine) HandleActivity(ctx context.Context, m Messenger, a Activity) (err error) {
	key := ResolveIdentity(a)
	unlock := e.locks.Lock(key)
	defer unlock()

	start := time.Now()
	status := "error"
	defer func() {
		turnsTotal.WithLabelValues(a.ChannelID, status).Inc()
		turnDuration.WithLabelValues(a.ChannelID).Observe(time.Since(start).Seconds())
	}()

	log := e.log.With(
		slog.String("conversation", key),
		slog.String("type", a.Type),
	)

	state, loadErr := e.storage.Load(ctx, key)
	if loadErr != nil {
		log.Warn("loading state, starting fresh", sl.Err(loadErr))
		if !errors.Is(loadErr, dialog.ErrCorruptState) {
			state = nil
		}
	}
	if state == nil {
		state = dialog.NewConversationState(key, a.ChannelID)
	}
	if state.ChannelID == "" {
		state.ChannelID = a.ChannelID
	}

	defer func() {
		// replies may already be out, so a cancelled turn still persists
		saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), saveTimeout)
		defer cancel()
		if saveErr := e.storage.Save(saveCtx, state); saveErr != nil {
			log.Error("saving state", sl.Err(saveErr))
			err = errors.Join(err, fmt.Errorf("saving state: %w", saveErr))
		}
	}()

	if a.Type == ActivityConversationUpdate {
		status = "welcome"
		return e.welcome(m, a)
	}

	turn := &dialog.Turn{
		ConversationID: key,
		ChannelID:      a.ChannelID,
		Input:          a.Input(),
		Responder:      &responder{m: m, chatID: a.Conversation.ID},
	}
	dc := e.dialogs.CreateContext(state, turn)

	if strings.EqualFold(strings.TrimSpace(a.Text), cancelWord) && dc.ActiveDialog() != nil {
		dc.CancelAllDialogs()
		status = string(dialog.StatusCancelled)
		log.Info("conversation cancelled by user")
		return m.SendText(a.Conversation.ID, "Okay, let's start over. Type anything to get started.")
	}

	res, err := dc.ContinueDialog(ctx)
	if err != nil {
		log.Error("continue dialog", sl.Err(err))
		return err
	}
	if res.Status == dialog.StatusEmpty {
		res, err = dc.BeginDialog(ctx, e.defaultDialog, nil)
		if err != nil {
			log.Error("begin dialog", sl.Err(err), slog.String("dialog_id", e.defaultDialog))
			return err
		}
	}
	status = string(res.Status)

	log.Debug("turn processed",
		slog.String("status", status),
		slog.Int("depth", len(state.DialogStack)),
	)
	return nil
}

// ResetConversation drops the stored state of a conversation.
func (e *ChatEngine) ResetConversation(ctx context.Context, channelID, conversationID string) error {
	key := ResolveIdentity(Activity{ChannelID: channelID, Conversation: ConversationAccount{ID: conversationID}})
	unlock := e.locks.Lock(key)
	defer unlock()

	if err := e.storage.Delete(ctx, key); err != nil {
		return fmt.Errorf("deleting state: %w", err)
	}
	e.log.Info("conversation reset", slog.String("conversation", key))
	return nil
}

// GetState returns the stored state of a conversation, nil when absent.
func (e *ChatEngine) GetState(ctx context.Context, channelID, conversationID string) (*dialog.ConversationState, error) {
	key := ResolveIdentity(Activity{ChannelID: channelID, Conversation: ConversationAccount{ID: conversationID}})
	return e.storage.Load(ctx, key)
}

// welcome greets every joined member except the bot itself.
func (e *ChatEngine) welcome(m Messenger, a Activity) error {
	var errs []error
	for _, member := range a.MembersAdded {
		if member.ID == a.Recipient.ID {
			continue
		}
		text := fmt.Sprintf("Hi %s, I am %s. This Bot is a work in progress. At this time we have some dialogs working. Type anything to get started.", member.Name, e.botName)
		if err := m.SendText(a.Conversation.ID, text); err != nil {
			errs = append(errs, fmt.Errorf("welcome %s: %w", member.ID, err))
		}
	}
	return errors.Join(errs...)
}
