package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"Genie/bot/chat"
	"Genie/internal/lib/sl"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 64 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client is one websocket conversation with a user.
type Client struct {
	hub            *Hub
	conn           *websocket.Conn
	send           chan []byte
	conversationID string
	user           chat.Account
	log            *slog.Logger
}

// readPump turns every inbound frame into a dialog turn. Turns of a client
// run in order since the pump waits for each one.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn("read message", sl.Err(err))
			}
			break
		}

		a, ok := c.activity(raw)
		if !ok {
			continue
		}
		if err := c.hub.handler.HandleActivity(context.Background(), c.hub, a); err != nil {
			c.log.Error("handle activity", sl.Err(err))
		}
	}
}

// activity accepts either a JSON activity or a plain text frame.
func (c *Client) activity(raw []byte) (chat.Activity, bool) {
	var a chat.Activity
	if err := json.Unmarshal(raw, &a); err != nil || a.Type == "" {
		a = chat.Activity{Type: chat.ActivityMessage, Text: string(raw)}
	}
	if a.Type != chat.ActivityMessage && a.Type != chat.ActivityConversationUpdate {
		c.log.Debug("ignoring activity", slog.String("type", a.Type))
		return a, false
	}
	a.ChannelID = ChannelID
	a.Conversation = chat.ConversationAccount{ID: c.conversationID}
	a.From = c.user
	a.Recipient = c.hub.bot
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.Timestamp = time.Now().UTC()
	return a, true
}

// writePump pumps replies from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeWs upgrades the request and starts a conversation. The conversation
// query parameter resumes an earlier conversation; a new id is issued
// otherwise. The user is greeted through a conversationUpdate turn.
func ServeWs(hub *Hub, log *slog.Logger, w http.ResponseWriter, r *http.Request) {
	conversationID := r.URL.Query().Get("conversation")
	resumed := conversationID != ""
	if !resumed {
		conversationID = uuid.NewString()
	}
	userName := r.URL.Query().Get("name")
	if userName == "" {
		userName = "User"
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("websocket upgrade failed", sl.Err(err))
		return
	}

	user := chat.Account{ID: "user-" + conversationID, Name: userName}
	client := &Client{
		hub:            hub,
		conn:           conn,
		send:           make(chan []byte, 256),
		conversationID: conversationID,
		user:           user,
		log: log.With(
			sl.Module("ws.client"),
			slog.String("conversation", conversationID),
		),
	}

	hub.register(client)

	go client.writePump()

	if !resumed {
		greet := chat.Activity{
			ID:           uuid.NewString(),
			Type:         chat.ActivityConversationUpdate,
			ChannelID:    ChannelID,
			Conversation: chat.ConversationAccount{ID: conversationID},
			Recipient:    hub.bot,
			MembersAdded: []chat.Account{hub.bot, user},
		}
		if err := hub.handler.HandleActivity(context.Background(), hub, greet); err != nil {
			client.log.Error("welcome", sl.Err(err))
		}
	}

	go client.readPump()
}
