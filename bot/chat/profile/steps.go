package profile

import (
	"context"
	"fmt"
	"log/slog"

	"Genie/bot/dialog"
)

// askAgeStep asks whether the user wants to share an age at all.
func (w *workflow) askAgeStep(ctx context.Context, sc *dialog.StepContext) (dialog.StepResult, error) {
	return dialog.PromptFor(ConfirmPrompt, dialog.PromptOptions{
		Text: "Would you like to give your age?",
	}), nil
}

// ageStep asks for the age, or skips with -1.
func (w *workflow) ageStep(ctx context.Context, sc *dialog.StepContext) (dialog.StepResult, error) {
	if give, _ := sc.Result.(bool); give {
		return dialog.PromptFor(NumberPrompt, dialog.PromptOptions{
			Text:      "Please enter your age.",
			RetryText: ageRetry,
		}), nil
	}
	return dialog.Next(-1), nil
}

// pictureStep records the age and asks for a picture where the channel allows it.
func (w *workflow) pictureStep(ctx context.Context, sc *dialog.StepContext) (dialog.StepResult, error) {
	sc.Values.Set(KeyAge, sc.Result)

	msg := "No age given."
	if age := sc.Values.GetFloat(KeyAge); age != -1 {
		msg = fmt.Sprintf("I have your age as %g.", age)
	}
	if err := sc.SendText(msg); err != nil {
		return dialog.StepResult{}, err
	}

	if sc.Turn.ChannelID == channelTeams {
		if err := sc.SendText("Skipping attachment prompt in Teams channel..."); err != nil {
			return dialog.StepResult{}, err
		}
		return dialog.Next(nil), nil
	}

	return dialog.PromptFor(AttachmentPrompt, dialog.PromptOptions{
		Text:      "Please attach a profile picture (or type any message to skip).",
		RetryText: pictureRetry,
	}), nil
}

// confirmStep keeps the first valid picture and asks for confirmation.
func (w *workflow) confirmStep(ctx context.Context, sc *dialog.StepContext) (dialog.StepResult, error) {
	if pictures := dialog.AsAttachments(sc.Result); len(pictures) > 0 {
		sc.Values.Set(KeyPicture, pictures[0])
	}
	return dialog.PromptFor(ConfirmPrompt, dialog.PromptOptions{
		Text: "Is this okay?",
	}), nil
}

// summaryStep reports what was collected and hands it to the parent dialog.
func (w *workflow) summaryStep(ctx context.Context, sc *dialog.StepContext) (dialog.StepResult, error) {
	if ok, _ := sc.Result.(bool); !ok {
		if err := sc.SendText("Thanks. Your profile will not be kept."); err != nil {
			return dialog.StepResult{}, err
		}
		return dialog.End(nil), nil
	}

	p := Profile{Age: sc.Values.GetFloat(KeyAge)}
	if pictures := sc.Values.GetAttachments(KeyPicture); len(pictures) > 0 {
		p.Picture = &pictures[0]
	}

	msg := "I have no age for you"
	if p.Age != -1 {
		msg = fmt.Sprintf("I have your age as %g", p.Age)
	}
	if p.Picture != nil {
		msg += " and a profile picture"
	}
	if err := sc.SendText(msg + "."); err != nil {
		return dialog.StepResult{}, err
	}

	w.log.Debug("profile collected",
		slog.Float64("age", p.Age),
		slog.Bool("picture", p.Picture != nil),
	)
	return dialog.End(p), nil
}
