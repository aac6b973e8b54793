package urlcheck

import (
	"Genie/bot/chat/profile"
	"Genie/bot/dialog"
	"Genie/internal/lib/sl"
	"Genie/internal/service/reputation"
	"context"
	"log/slog"
	"regexp"
)

const (
	WorkflowID = "urlcheck"
)

// Prompt IDs
const (
	ChoicePrompt  = "urlcheck.choice"
	TextPrompt    = "urlcheck.text"
	ConfirmPrompt = "urlcheck.confirm"
)

// Menu choices
const (
	ChoiceCheckURL  = "Check URL"
	ChoiceCheckText = "Check Text"
	ChoiceProfile   = "My Profile"
)

// State data keys
const (
	KeyTransport = "transport"
	KeyName      = "name"
	KeyMore      = "more"
)

const (
	phishingWarning = "This is a suspicious URL pretending to be a bank. Please close the URL and don't share any information with the site."
	scamTips        = "Here a couple of things to always check:\n- Unrealistic low prices\n- Fake company addresses"
	generalTips     = "I have no specific warning for this one. When in doubt, don't enter passwords or card details on a site you reached from a message."
	closing         = "Hope this helps."
)

var (
	phishingPattern = regexp.MustCompile(`example-phish\.com`)
	scamPattern     = regexp.MustCompile(`scam-eshop\.com`)
)

var menu = []string{ChoiceCheckURL, ChoiceCheckText, ChoiceProfile}

// ReputationService defines the interface for URL reputation lookups.
type ReputationService interface {
	CheckURL(ctx context.Context, url string) (reputation.Verdict, error)
}

// Result is what the dialog ends with.
type Result struct {
	Transport string `json:"transport"`
	Subject   string `json:"subject"`
}

type workflow struct {
	reputation ReputationService
	log        *slog.Logger
}

// Register adds the URL check waterfall and its prompts to the set. The
// profile dialog must be registered on the same set.
func Register(set *dialog.Set, reputation ReputationService, log *slog.Logger) error {
	w := &workflow{
		reputation: reputation,
		log:        log.With(sl.Module("dialogs.urlcheck")),
	}

	prompts := []*dialog.Prompt{
		dialog.NewChoicePrompt(ChoicePrompt),
		dialog.NewTextPrompt(TextPrompt),
		dialog.NewConfirmPrompt(ConfirmPrompt),
	}
	for _, p := range prompts {
		if err := set.AddPrompt(p); err != nil {
			return err
		}
	}

	return set.AddWaterfall(dialog.NewWaterfall(WorkflowID,
		w.transportStep,
		w.nameStep,
		w.lookupStep,
		w.adviceStep,
		w.summaryStep,
	))
}

// profileDialog is begun for the profile menu entry.
const profileDialog = profile.WorkflowID
