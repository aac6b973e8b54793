package conversation

import (
	"Genie/internal/lib/api/response"
	"Genie/internal/lib/sl"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// ResetConversation deletes the dialog state of a conversation. The channel
// is taken from the channel query parameter.
func ResetConversation(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if handler == nil {
			log.Error("reset conversation not available")
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, response.Error("Reset conversation not available"))
			return
		}

		conversationID := chi.URLParam(r, "id")
		channelID := r.URL.Query().Get("channel")
		if conversationID == "" || channelID == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Missing conversation id or channel parameter"))
			return
		}

		err := handler.ResetConversation(r.Context(), channelID, conversationID)
		if err != nil {
			log.With(
				slog.String("channel", channelID),
				slog.String("conversation", conversationID),
			).Error("reset conversation", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Reset failed: "+err.Error()))
			return
		}

		render.JSON(w, r, response.Ok("Conversation reset successfully"))
	}
}
