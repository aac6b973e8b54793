package activity

import (
	"Genie/bot/chat"
	"Genie/internal/lib/api/response"
	"Genie/internal/lib/sl"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// PostActivity runs one turn for the posted activity and answers with the
// replies of the bot.
func PostActivity(log *slog.Logger, handler Core) http.HandlerFunc {
	mod := sl.Module("http.handlers.activity")

	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var a chat.Activity
		if err := render.DecodeJSON(r.Body, &a); err != nil {
			logger.Debug("decode activity", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid request body"))
			return
		}

		if err := validate.Struct(a); err != nil {
			var ve validator.ValidationErrors
			msg := "Invalid activity"
			if errors.As(err, &ve) && len(ve) > 0 {
				msg = fmt.Sprintf("Invalid activity: field %s failed on %s", ve[0].Namespace(), ve[0].Tag())
			}
			logger.Debug("validate activity", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(msg))
			return
		}

		replies, err := handler.ProcessActivity(r.Context(), a)
		if err != nil {
			logger.Error("process activity", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error(fmt.Sprintf("Processing failed: %v", err)))
			return
		}

		render.JSON(w, r, response.Ok(replies))
	}
}
