package dialog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"Genie/internal/lib/sl"
)

// Status is what a turn left the dialog stack in.
type Status string

const (
	// StatusEmpty means nothing was active; the caller should begin a dialog.
	StatusEmpty Status = "empty"
	// StatusWaiting means a prompt is pending.
	StatusWaiting Status = "waiting"
	// StatusComplete means the top frame ended this turn.
	StatusComplete Status = "complete"
	// StatusCancelled means the top frame was cancelled this turn.
	StatusCancelled Status = "cancelled"
)

// StartOverMessage is sent when a persisted frame no longer fits its definition.
const StartOverMessage = "Sorry, something changed on my side. Let's start over."

// maxStackDepth bounds nested begins within one turn.
const maxStackDepth = 32

// TurnResult is returned by BeginDialog and ContinueDialog.
type TurnResult struct {
	Status Status
	Result any
}

// DialogContext routes one turn into the dialog stack of one conversation.
type DialogContext struct {
	set   *Set
	state *ConversationState
	turn  *Turn
	log   *slog.Logger
}

// State returns the conversation state the context mutates.
func (dc *DialogContext) State() *ConversationState {
	return dc.state
}

// ActiveDialog returns the top frame or nil.
func (dc *DialogContext) ActiveDialog() *DialogInstance {
	return dc.state.Top()
}

// BeginDialog pushes dialogID, unless it is already on top and untouched,
// and runs it for the current turn.
func (dc *DialogContext) BeginDialog(ctx context.Context, dialogID string, options any) (TurnResult, error) {
	if !dc.set.Has(dialogID) {
		return TurnResult{Status: StatusEmpty}, fmt.Errorf("%w: dialog %s is not registered", ErrConfiguration, dialogID)
	}
	top := dc.state.Top()
	if top == nil || top.DialogID != dialogID || !top.fresh() {
		dc.state.push(NewDialogInstance(dialogID))
	}
	dc.log.Debug("begin dialog", slog.String("dialog_id", dialogID), slog.Int("depth", len(dc.state.DialogStack)))
	return dc.runTop(ctx, options)
}

// ContinueDialog routes the turn into the top frame.
func (dc *DialogContext) ContinueDialog(ctx context.Context) (TurnResult, error) {
	if dc.state.Top() == nil {
		return TurnResult{Status: StatusEmpty}, nil
	}
	return dc.runTop(ctx, nil)
}

// CancelAllDialogs empties the stack.
func (dc *DialogContext) CancelAllDialogs() {
	for dc.state.Top() != nil {
		dc.state.pop()
	}
}

func (dc *DialogContext) runTop(ctx context.Context, value any) (TurnResult, error) {
	defer func() { dc.state.UpdatedAt = time.Now() }()

	for {
		inst := dc.state.Top()
		w, ok := dc.set.waterfall(inst.DialogID)
		if !ok {
			return dc.startOver(fmt.Errorf("%w: dialog %s is not registered", ErrUnexpectedStep, inst.DialogID))
		}

		out, err := w.run(ctx, dc, inst, value)
		if err != nil {
			if errors.Is(err, ErrUnexpectedStep) || errors.Is(err, ErrStepLoop) {
				return dc.startOver(err)
			}
			return TurnResult{Status: StatusWaiting}, err
		}

		switch out.kind {
		case outcomeWaiting:
			return TurnResult{Status: StatusWaiting}, nil

		case outcomeBegin:
			if len(dc.state.DialogStack) >= maxStackDepth {
				return dc.startOver(fmt.Errorf("%w: stack depth %d reached", ErrStepLoop, maxStackDepth))
			}
			dc.state.push(NewDialogInstance(out.dialogID))
			dc.log.Debug("begin child dialog", slog.String("dialog_id", out.dialogID), slog.String("parent_id", inst.DialogID))
			value = out.value

		case outcomeEnd:
			dc.state.pop()
			if parent := dc.state.Top(); parent != nil {
				parent.ChildResult = out.value
			}
			dc.log.Debug("dialog completed", slog.String("dialog_id", inst.DialogID))
			return TurnResult{Status: StatusComplete, Result: out.value}, nil

		case outcomeCancel:
			dc.state.pop()
			dc.log.Debug("dialog cancelled", slog.String("dialog_id", inst.DialogID))
			return TurnResult{Status: StatusCancelled}, nil
		}
	}
}

// startOver pops a frame that cannot continue and tells the user.
func (dc *DialogContext) startOver(cause error) (TurnResult, error) {
	inst := dc.state.pop()
	attrs := []any{sl.Err(cause)}
	if inst != nil {
		attrs = append(attrs, slog.String("dialog_id", inst.DialogID), slog.Int("step_index", inst.StepIndex))
	}
	dc.log.Warn("dialog frame dropped", attrs...)
	startOvers.Inc()

	if err := dc.turn.Responder.SendText(StartOverMessage); err != nil {
		return TurnResult{Status: StatusCancelled}, fmt.Errorf("sending start over: %w", err)
	}
	return TurnResult{Status: StatusCancelled}, nil
}

func (dc *DialogContext) sendPrompt(p *Prompt, opts PromptOptions, text string) error {
	choices := p.Choices(opts)
	if len(choices) > 0 {
		return dc.turn.Responder.SendChoices(text, choices)
	}
	if text == "" {
		return nil
	}
	return dc.turn.Responder.SendText(text)
}
