package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"Genie/bot/chat"
	"Genie/internal/lib/sl"
)

// ChannelID is the channel id of websocket conversations.
const ChannelID = "websocket"

// TurnHandler runs a dialog turn for a websocket client.
type TurnHandler interface {
	HandleActivity(ctx context.Context, m chat.Messenger, a chat.Activity) error
}

// Hub keeps one client per conversation and delivers bot replies to it.
type Hub struct {
	clients map[string]*Client
	bot     chat.Account
	mu      sync.RWMutex
	handler TurnHandler
	log     *slog.Logger
}

// NewHub creates a new Hub instance.
func NewHub(handler TurnHandler, bot chat.Account, log *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		bot:     bot,
		handler: handler,
		log:     log.With(sl.Module("ws.hub")),
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c.conversationID] = c
	h.mu.Unlock()
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	if cur, ok := h.clients[c.conversationID]; ok && cur == c {
		delete(h.clients, c.conversationID)
		close(c.send)
	}
	h.mu.Unlock()
}

// Clients returns the number of connected conversations.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) SendText(chatID, text string) error {
	return h.deliver(chat.NewReply(ChannelID, chatID, h.bot, text, nil))
}

func (h *Hub) SendChoices(chatID, text string, choices []string) error {
	return h.deliver(chat.NewReply(ChannelID, chatID, h.bot, text, choices))
}

func (h *Hub) deliver(a chat.Activity) error {
	data, err := json.Marshal(a)
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.clients[a.Conversation.ID]
	if !ok {
		return fmt.Errorf("conversation %s is not connected", a.Conversation.ID)
	}
	select {
	case c.send <- data:
		return nil
	default:
		return fmt.Errorf("conversation %s send buffer is full", a.Conversation.ID)
	}
}
