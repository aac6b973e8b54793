package conversation

import (
	"Genie/internal/lib/api/response"
	"Genie/internal/lib/sl"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

func GetState(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conversationID := chi.URLParam(r, "id")
		channelID := r.URL.Query().Get("channel")
		if conversationID == "" || channelID == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Missing conversation id or channel parameter"))
			return
		}

		state, err := handler.ConversationState(r.Context(), channelID, conversationID)
		if err != nil {
			log.Error("get conversation state", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to load conversation state"))
			return
		}
		if state == nil {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("Conversation not found"))
			return
		}

		render.JSON(w, r, response.Ok(state))
	}
}
