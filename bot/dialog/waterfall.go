package dialog

import (
	"context"
	"fmt"
)

// Waterfall is an ordered, immutable list of steps.
type Waterfall struct {
	id    string
	steps []Step
}

// NewWaterfall creates a waterfall definition. Step indices are part of the
// persisted state, so steps must not be reordered once deployed.
func NewWaterfall(id string, steps ...Step) *Waterfall {
	list := make([]Step, len(steps))
	copy(list, steps)
	return &Waterfall{id: id, steps: list}
}

func (w *Waterfall) ID() string { return w.id }
func (w *Waterfall) Len() int   { return len(w.steps) }

type outcomeKind int

const (
	outcomeWaiting outcomeKind = iota
	outcomeEnd
	outcomeCancel
	outcomeBegin
)

type outcome struct {
	kind     outcomeKind
	value    any
	dialogID string
}

// run advances inst for the current turn until it prompts or terminates.
func (w *Waterfall) run(ctx context.Context, dc *DialogContext, inst *DialogInstance, value any) (outcome, error) {
	// restored when the first step fails, so the input is evaluated again
	resumedPrompt, resumedChild := inst.PendingPrompt, inst.ChildResult

	// a pending prompt implies the prompting step ran
	lowest := -1
	if inst.PendingPrompt != nil {
		lowest = 0
	}
	if inst.StepIndex < lowest || inst.StepIndex >= len(w.steps) {
		return outcome{}, fmt.Errorf("%w: %s at %d of %d steps", ErrUnexpectedStep, w.id, inst.StepIndex, len(w.steps))
	}

	if pending := inst.PendingPrompt; pending != nil {
		p, ok := dc.set.prompt(pending.PromptID)
		if !ok {
			return outcome{}, fmt.Errorf("%w: prompt %s is not registered", ErrUnexpectedStep, pending.PromptID)
		}
		res := p.Evaluate(ctx, dc.turn.Input, pending.Options, pending.Retries)
		if !res.Accepted {
			pending.Retries++
			promptRetries.WithLabelValues(w.id, pending.PromptID).Inc()
			if err := dc.sendPrompt(p, pending.Options, res.RetryMessage); err != nil {
				return outcome{}, fmt.Errorf("sending retry: %w", err)
			}
			return outcome{kind: outcomeWaiting}, nil
		}
		if res.Notice != "" {
			if err := dc.turn.Responder.SendText(res.Notice); err != nil {
				return outcome{}, fmt.Errorf("sending notice: %w", err)
			}
		}
		inst.PendingPrompt = nil
		value = res.Value
	} else if inst.ChildResult != nil {
		value = inst.ChildResult
		inst.ChildResult = nil
	}

	guard := len(w.steps) + 1
	for i := 0; i < guard; i++ {
		next := inst.StepIndex + 1
		if inst.StepIndex < -1 || next > len(w.steps) {
			return outcome{}, fmt.Errorf("%w: %s at %d of %d steps", ErrUnexpectedStep, w.id, inst.StepIndex, len(w.steps))
		}
		if next == len(w.steps) {
			return outcome{kind: outcomeEnd, value: value}, nil
		}

		sc := &StepContext{
			Turn:     dc.turn,
			Values:   inst.Values,
			Result:   value,
			Index:    next,
			DialogID: w.id,
		}
		res, err := w.steps[next](ctx, sc)
		if err != nil {
			if i == 0 {
				inst.PendingPrompt, inst.ChildResult = resumedPrompt, resumedChild
			}
			return outcome{}, fmt.Errorf("dialog %s step %d: %w", w.id, next, err)
		}

		switch res.kind {
		case resultNext:
			inst.StepIndex = next
			value = res.value

		case resultPrompt:
			p, ok := dc.set.prompt(res.promptID)
			if !ok {
				return outcome{}, fmt.Errorf("%w: prompt %s is not registered", ErrConfiguration, res.promptID)
			}
			if err := p.check(res.options); err != nil {
				return outcome{}, err
			}
			inst.StepIndex = next
			inst.PendingPrompt = &PendingPrompt{
				PromptID: p.ID,
				Kind:     p.Kind,
				Options:  res.options,
			}
			if err := dc.sendPrompt(p, res.options, res.options.Text); err != nil {
				return outcome{}, fmt.Errorf("sending prompt: %w", err)
			}
			return outcome{kind: outcomeWaiting}, nil

		case resultEnd:
			inst.StepIndex = next
			return outcome{kind: outcomeEnd, value: res.value}, nil

		case resultCancel:
			inst.StepIndex = next
			return outcome{kind: outcomeCancel}, nil

		case resultBegin:
			if !dc.set.Has(res.dialogID) {
				return outcome{}, fmt.Errorf("%w: dialog %s is not registered", ErrConfiguration, res.dialogID)
			}
			inst.StepIndex = next
			return outcome{kind: outcomeBegin, value: res.value, dialogID: res.dialogID}, nil
		}
	}

	return outcome{}, fmt.Errorf("%w: %s exceeded %d iterations", ErrStepLoop, w.id, guard)
}
