package dialog

import (
	"fmt"
	"log/slog"

	"Genie/internal/lib/sl"
)

// Set is the registry of waterfalls and prompts a conversation can run.
type Set struct {
	waterfalls map[string]*Waterfall
	prompts    map[string]*Prompt
	base       *slog.Logger
	log        *slog.Logger
}

// NewSet creates an empty registry.
func NewSet(log *slog.Logger) *Set {
	return &Set{
		waterfalls: make(map[string]*Waterfall),
		prompts:    make(map[string]*Prompt),
		base:       log,
		log:        log.With(sl.Module("dialog.set")),
	}
}

// AddWaterfall registers a waterfall definition.
func (s *Set) AddWaterfall(w *Waterfall) error {
	if w == nil || w.id == "" {
		return fmt.Errorf("%w: waterfall without id", ErrConfiguration)
	}
	if len(w.steps) == 0 {
		return fmt.Errorf("%w: waterfall %s has no steps", ErrConfiguration, w.id)
	}
	if s.taken(w.id) {
		return fmt.Errorf("%w: duplicate dialog id %s", ErrConfiguration, w.id)
	}
	s.waterfalls[w.id] = w
	s.log.Info("registered waterfall", slog.String("dialog_id", w.id), slog.Int("steps", len(w.steps)))
	return nil
}

// AddPrompt registers a prompt.
func (s *Set) AddPrompt(p *Prompt) error {
	if p == nil || p.ID == "" {
		return fmt.Errorf("%w: prompt without id", ErrConfiguration)
	}
	switch p.Kind {
	case KindText, KindChoice, KindConfirm, KindNumber, KindAttachment:
	default:
		return fmt.Errorf("%w: prompt %s has unknown kind %q", ErrConfiguration, p.ID, p.Kind)
	}
	if s.taken(p.ID) {
		return fmt.Errorf("%w: duplicate dialog id %s", ErrConfiguration, p.ID)
	}
	s.prompts[p.ID] = p
	s.log.Debug("registered prompt", slog.String("prompt_id", p.ID), slog.String("kind", string(p.Kind)))
	return nil
}

// Has reports whether a waterfall with this id is registered.
func (s *Set) Has(dialogID string) bool {
	_, ok := s.waterfalls[dialogID]
	return ok
}

// CreateContext binds the registry to one conversation for one turn.
func (s *Set) CreateContext(state *ConversationState, turn *Turn) *DialogContext {
	return &DialogContext{
		set:   s,
		state: state,
		turn:  turn,
		log: s.base.With(
			sl.Module("dialog.context"),
			slog.String("conversation_id", state.ConversationID),
		),
	}
}

func (s *Set) taken(id string) bool {
	_, w := s.waterfalls[id]
	_, p := s.prompts[id]
	return w || p
}

func (s *Set) waterfall(id string) (*Waterfall, bool) {
	w, ok := s.waterfalls[id]
	return w, ok
}

func (s *Set) prompt(id string) (*Prompt, bool) {
	p, ok := s.prompts[id]
	return p, ok
}
