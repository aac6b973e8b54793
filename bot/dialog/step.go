package dialog

import "context"

// Responder sends replies for the turn being processed.
type Responder interface {
	SendText(text string) error
	SendChoices(text string, choices []string) error
}

// Turn is one inbound message as the dialog engine sees it.
type Turn struct {
	ConversationID string
	ChannelID      string
	Input          Input
	Responder      Responder
}

// StepContext is what a waterfall step works with.
type StepContext struct {
	Turn   *Turn
	Values Values
	// Result is the accepted prompt value, the value carried by Next, the begin
	// options or a child result; nil when the step runs without input.
	Result any
	// Index of the running step.
	Index    int
	DialogID string
}

// SendText replies to the user.
func (sc *StepContext) SendText(text string) error {
	return sc.Turn.Responder.SendText(text)
}

// SendChoices replies with a list of options.
func (sc *StepContext) SendChoices(text string, choices []string) error {
	return sc.Turn.Responder.SendChoices(text, choices)
}

// Step is a unit of waterfall logic.
type Step func(ctx context.Context, sc *StepContext) (StepResult, error)

type resultKind int

const (
	resultNext resultKind = iota
	resultPrompt
	resultEnd
	resultCancel
	resultBegin
)

// StepResult tells the waterfall what to do after a step.
type StepResult struct {
	kind     resultKind
	value    any
	promptID string
	options  PromptOptions
	dialogID string
}

// PromptFor suspends the waterfall on a registered prompt.
func PromptFor(promptID string, opts PromptOptions) StepResult {
	return StepResult{kind: resultPrompt, promptID: promptID, options: opts}
}

// Next advances to the following step within the same turn, handing it value.
func Next(value any) StepResult {
	return StepResult{kind: resultNext, value: value}
}

// End finishes the waterfall with result.
func End(result any) StepResult {
	return StepResult{kind: resultEnd, value: result}
}

// Cancel terminates the waterfall and discards its values.
func Cancel() StepResult {
	return StepResult{kind: resultCancel}
}

// Begin starts a child dialog on top of the current one. The child's first
// step receives options as its Result.
func Begin(dialogID string, options any) StepResult {
	return StepResult{kind: resultBegin, dialogID: dialogID, value: options}
}
