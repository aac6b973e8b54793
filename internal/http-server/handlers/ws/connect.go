package ws

import (
	"Genie/internal/ws"
	"log/slog"
	"net/http"
)

// Connect opens a websocket conversation with the bot.
func Connect(log *slog.Logger, hub *ws.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("websocket connect", slog.Int("clients", hub.Clients()))
		ws.ServeWs(hub, log, w, r)
	}
}
