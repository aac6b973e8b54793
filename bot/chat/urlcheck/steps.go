package urlcheck

import (
	"context"
	"fmt"
	"log/slog"

	"Genie/bot/dialog"
	"Genie/internal/lib/sl"
)

// transportStep offers the menu.
func (w *workflow) transportStep(ctx context.Context, sc *dialog.StepContext) (dialog.StepResult, error) {
	return dialog.PromptFor(ChoicePrompt, dialog.PromptOptions{
		Text:    "How can I help you today?",
		Choices: menu,
	}), nil
}

// nameStep asks for the thing to check according to the chosen entry.
func (w *workflow) nameStep(ctx context.Context, sc *dialog.StepContext) (dialog.StepResult, error) {
	transport, _ := sc.Result.(string)
	sc.Values.Set(KeyTransport, transport)

	switch transport {
	case ChoiceCheckURL:
		return dialog.PromptFor(TextPrompt, dialog.PromptOptions{Text: "What is the URL?"}), nil
	case ChoiceCheckText:
		return dialog.PromptFor(TextPrompt, dialog.PromptOptions{Text: "What is the text you received?"}), nil
	case ChoiceProfile:
		return dialog.Begin(profileDialog, nil), nil
	}

	if err := sc.SendText("Please select a valid choice."); err != nil {
		return dialog.StepResult{}, err
	}
	return dialog.Cancel(), nil
}

// lookupStep checks every link and asks whether the user wants to know more.
func (w *workflow) lookupStep(ctx context.Context, sc *dialog.StepContext) (dialog.StepResult, error) {
	transport := sc.Values.GetString(KeyTransport)

	// Back from the profile dialog.
	if transport == ChoiceProfile {
		if err := sc.SendText(closing); err != nil {
			return dialog.StepResult{}, err
		}
		return dialog.End(Result{Transport: transport}), nil
	}

	subject, _ := sc.Result.(string)
	sc.Values.Set(KeyName, subject)

	var links []string
	if transport == ChoiceCheckURL {
		links = []string{NormalizeURL(subject)}
	} else {
		links = ExtractURLs(subject)
		if len(links) == 0 {
			if err := sc.SendText("I could not find a link in that text."); err != nil {
				return dialog.StepResult{}, err
			}
		}
	}

	for _, link := range links {
		if err := w.check(ctx, sc, link); err != nil {
			return dialog.StepResult{}, err
		}
	}

	return dialog.PromptFor(ConfirmPrompt, dialog.PromptOptions{
		Text:    "Would you like to know more?",
		Choices: []string{"Yes", "No"},
	}), nil
}

// check reports the verdict for one link. Lookup failures are shown to the
// user and never abort the dialog.
func (w *workflow) check(ctx context.Context, sc *dialog.StepContext, link string) error {
	if !IsValidURL(link) {
		return sc.SendText(fmt.Sprintf("%q does not look like a web address, so I could not check it.", link))
	}
	if w.reputation == nil {
		return sc.SendText("Sorry, I could not check that URL right now: lookup service is not configured")
	}

	verdict, err := w.reputation.CheckURL(ctx, link)
	if err != nil {
		w.log.With(
			slog.String("url", link),
			sl.Err(err),
		).Debug("reputation lookup")
		return sc.SendText(fmt.Sprintf("Sorry, I could not check that URL right now: %v", err))
	}
	return sc.SendText(verdict.String())
}

// adviceStep warns about known scam patterns whatever the answer was.
func (w *workflow) adviceStep(ctx context.Context, sc *dialog.StepContext) (dialog.StepResult, error) {
	more, _ := sc.Result.(bool)
	sc.Values.Set(KeyMore, more)
	subject := sc.Values.GetString(KeyName)

	var msg string
	switch {
	case phishingPattern.MatchString(subject):
		msg = phishingWarning
	case scamPattern.MatchString(subject):
		msg = scamTips
	case more:
		msg = generalTips
	}
	if msg != "" {
		if err := sc.SendText(msg); err != nil {
			return dialog.StepResult{}, err
		}
	}

	// Nothing else to collect; -1 tells the next step so.
	return dialog.Next(-1), nil
}

// summaryStep closes the conversation.
func (w *workflow) summaryStep(ctx context.Context, sc *dialog.StepContext) (dialog.StepResult, error) {
	if err := sc.SendText(closing); err != nil {
		return dialog.StepResult{}, err
	}
	return dialog.End(Result{
		Transport: sc.Values.GetString(KeyTransport),
		Subject:   sc.Values.GetString(KeyName),
	}), nil
}
