package dialog

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind is the type of input a prompt collects.
type Kind string

const (
	KindText       Kind = "text"
	KindChoice     Kind = "choice"
	KindConfirm    Kind = "confirm"
	KindNumber     Kind = "number"
	KindAttachment Kind = "attachment"
)

// Attachment is a file carried by an inbound message.
type Attachment struct {
	ContentType string `json:"contentType" validate:"required"`
	ContentURL  string `json:"contentUrl,omitempty"`
	Name        string `json:"name,omitempty"`
}

// Input is the raw content of an inbound message.
type Input struct {
	Text        string
	Attachments []Attachment
}

// PromptOptions is what a step asks for when it prompts.
type PromptOptions struct {
	Text      string   `json:"text"`
	RetryText string   `json:"retry_text,omitempty"`
	Choices   []string `json:"choices,omitempty"`
}

// Recognized is the kind-specific reading of an input before validation.
type Recognized struct {
	Succeeded bool
	Value     any
}

// PromptContext is handed to validators.
type PromptContext struct {
	Input      Input
	Options    PromptOptions
	Recognized Recognized
	Retries    int
}

// ValidationResult is the outcome of validating one input.
// Notice is an informational message sent even though the input is accepted.
type ValidationResult struct {
	Accepted     bool
	Value        any
	RetryMessage string
	Notice       string
}

// Validator classifies a recognized input. It must not touch dialog state.
type Validator func(ctx context.Context, pc *PromptContext) ValidationResult

// Prompt is a registered input request. The validator is looked up by ID
// when a suspended frame resumes.
type Prompt struct {
	ID        string
	Kind      Kind
	Validator Validator
}

func NewTextPrompt(id string) *Prompt {
	return &Prompt{ID: id, Kind: KindText}
}

func NewChoicePrompt(id string) *Prompt {
	return &Prompt{ID: id, Kind: KindChoice}
}

func NewConfirmPrompt(id string) *Prompt {
	return &Prompt{ID: id, Kind: KindConfirm}
}

func NewNumberPrompt(id string, validator Validator) *Prompt {
	return &Prompt{ID: id, Kind: KindNumber, Validator: validator}
}

func NewAttachmentPrompt(id string, validator Validator) *Prompt {
	return &Prompt{ID: id, Kind: KindAttachment, Validator: validator}
}

var defaultConfirmChoices = []string{"Yes", "No"}

var (
	yesWords = map[string]bool{"yes": true, "y": true, "yeah": true, "yep": true, "sure": true, "ok": true, "okay": true, "true": true, "1": true}
	noWords  = map[string]bool{"no": true, "n": true, "nope": true, "nah": true, "false": true, "0": true}
)

// Choices returns the choices shown with the prompt.
func (p *Prompt) Choices(opts PromptOptions) []string {
	if p.Kind == KindConfirm && len(opts.Choices) == 0 {
		return defaultConfirmChoices
	}
	if p.Kind == KindChoice || p.Kind == KindConfirm {
		return opts.Choices
	}
	return nil
}

func (p *Prompt) check(opts PromptOptions) error {
	if p.Kind == KindChoice && len(opts.Choices) == 0 {
		return fmt.Errorf("%w: choice prompt %s without choices", ErrConfiguration, p.ID)
	}
	return nil
}

// Recognize reads the input according to the prompt kind.
func (p *Prompt) Recognize(in Input, opts PromptOptions) Recognized {
	text := strings.TrimSpace(in.Text)

	switch p.Kind {
	case KindText:
		if text == "" {
			return Recognized{}
		}
		return Recognized{Succeeded: true, Value: in.Text}

	case KindChoice:
		if choice, ok := matchChoice(text, opts.Choices); ok {
			return Recognized{Succeeded: true, Value: choice}
		}
		return Recognized{}

	case KindConfirm:
		lower := strings.ToLower(text)
		if yesWords[lower] {
			return Recognized{Succeeded: true, Value: true}
		}
		if noWords[lower] {
			return Recognized{Succeeded: true, Value: false}
		}
		choices := p.Choices(opts)
		if len(choices) == 2 {
			if strings.EqualFold(text, choices[0]) {
				return Recognized{Succeeded: true, Value: true}
			}
			if strings.EqualFold(text, choices[1]) {
				return Recognized{Succeeded: true, Value: false}
			}
		}
		return Recognized{}

	case KindNumber:
		n, err := strconv.ParseFloat(text, 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return Recognized{}
		}
		return Recognized{Succeeded: true, Value: n}

	case KindAttachment:
		if len(in.Attachments) == 0 {
			return Recognized{}
		}
		list := make([]Attachment, len(in.Attachments))
		copy(list, in.Attachments)
		return Recognized{Succeeded: true, Value: list}
	}

	return Recognized{}
}

// Evaluate recognizes and validates one input. A rejected result always
// carries a retry message.
func (p *Prompt) Evaluate(ctx context.Context, in Input, opts PromptOptions, retries int) ValidationResult {
	pc := &PromptContext{
		Input:      in,
		Options:    opts,
		Recognized: p.Recognize(in, opts),
		Retries:    retries,
	}

	var res ValidationResult
	if p.Validator != nil {
		res = p.Validator(ctx, pc)
	} else {
		res = ValidationResult{Accepted: pc.Recognized.Succeeded, Value: pc.Recognized.Value}
	}

	if !res.Accepted && res.RetryMessage == "" {
		res.RetryMessage = opts.RetryText
		if res.RetryMessage == "" {
			res.RetryMessage = p.defaultRetry()
		}
	}
	return res
}

func (p *Prompt) defaultRetry() string {
	switch p.Kind {
	case KindChoice:
		return "Please select a valid choice."
	case KindConfirm:
		return "Please answer yes or no."
	case KindNumber:
		return "Please enter a number."
	case KindAttachment:
		return "Please attach a file."
	default:
		return "Please enter some text."
	}
}

// matchChoice accepts the choice text in any case or its 1-based number.
func matchChoice(text string, choices []string) (string, bool) {
	if text == "" {
		return "", false
	}
	for _, c := range choices {
		if strings.EqualFold(strings.TrimSpace(c), text) {
			return c, true
		}
	}
	num, err := strconv.Atoi(text)
	if err != nil || num < 1 || num > len(choices) {
		return "", false
	}
	return choices[num-1], true
}
