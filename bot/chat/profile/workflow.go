package profile

import (
	"Genie/bot/dialog"
	"log/slog"

	"Genie/internal/lib/sl"
)

const (
	WorkflowID = "profile"
)

// Prompt IDs
const (
	ConfirmPrompt    = "profile.confirm"
	NumberPrompt     = "profile.number"
	AttachmentPrompt = "profile.attachment"
)

// State data keys
const (
	KeyAge     = "age"
	KeyPicture = "picture"
)

// Channels that cannot deliver attachments to the bot.
const channelTeams = "msteams"

const (
	ageRetry       = "The value entered must be greater than 0 and less than 150."
	noPictureNote  = "No attachments received. Proceeding without a profile picture..."
	pictureRetry   = "The attachment must be a jpeg/png image file."
	minAge, maxAge = 0, 150
)

// Profile is what the profile dialog returns to its parent.
type Profile struct {
	Age     float64            `json:"age"`
	Picture *dialog.Attachment `json:"picture,omitempty"`
}

type workflow struct {
	log *slog.Logger
}

// Register adds the profile waterfall and its prompts to the set.
func Register(set *dialog.Set, log *slog.Logger) error {
	w := &workflow{log: log.With(sl.Module("dialogs.profile"))}

	prompts := []*dialog.Prompt{
		dialog.NewConfirmPrompt(ConfirmPrompt),
		dialog.NewNumberPrompt(NumberPrompt, dialog.NumberRange(minAge, maxAge, ageRetry)),
		dialog.NewAttachmentPrompt(AttachmentPrompt, dialog.ContentTypes(noPictureNote, "image/jpeg", "image/png")),
	}
	for _, p := range prompts {
		if err := set.AddPrompt(p); err != nil {
			return err
		}
	}

	return set.AddWaterfall(dialog.NewWaterfall(WorkflowID,
		w.askAgeStep,
		w.ageStep,
		w.pictureStep,
		w.confirmStep,
		w.summaryStep,
	))
}
