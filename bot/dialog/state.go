package dialog

import (
	"encoding/json"
	"fmt"
	"time"
)

// ConversationState is the durable per-conversation dialog state.
type ConversationState struct {
	ConversationID string            `json:"conversation_id"`
	ChannelID      string            `json:"channel_id"`
	DialogStack    []*DialogInstance `json:"dialog_stack"`
	Version        int64             `json:"version"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// NewConversationState creates an empty state for a conversation.
func NewConversationState(conversationID, channelID string) *ConversationState {
	return &ConversationState{
		ConversationID: conversationID,
		ChannelID:      channelID,
		DialogStack:    []*DialogInstance{},
		UpdatedAt:      time.Now(),
	}
}

// Top returns the active frame or nil when no dialog is running.
func (s *ConversationState) Top() *DialogInstance {
	if len(s.DialogStack) == 0 {
		return nil
	}
	return s.DialogStack[len(s.DialogStack)-1]
}

func (s *ConversationState) push(inst *DialogInstance) {
	s.DialogStack = append(s.DialogStack, inst)
}

func (s *ConversationState) pop() *DialogInstance {
	top := s.Top()
	if top != nil {
		s.DialogStack[len(s.DialogStack)-1] = nil
		s.DialogStack = s.DialogStack[:len(s.DialogStack)-1]
	}
	return top
}

// DialogInstance is one frame of the dialog stack.
type DialogInstance struct {
	DialogID string `json:"dialog_id"`
	// StepIndex is the step that ran last; -1 before the first step.
	StepIndex     int            `json:"step_index"`
	Values        Values         `json:"values"`
	PendingPrompt *PendingPrompt `json:"pending_prompt,omitempty"`
	// ChildResult is what a popped child dialog returned to this frame.
	ChildResult any `json:"child_result,omitempty"`
}

// NewDialogInstance creates a frame that has not run any step yet.
func NewDialogInstance(dialogID string) *DialogInstance {
	return &DialogInstance{
		DialogID:  dialogID,
		StepIndex: -1,
		Values:    Values{},
	}
}

func (i *DialogInstance) fresh() bool {
	return i.StepIndex == -1 && len(i.Values) == 0 && i.PendingPrompt == nil
}

// PendingPrompt describes the prompt a frame is suspended on.
type PendingPrompt struct {
	PromptID string        `json:"prompt_id"`
	Kind     Kind          `json:"kind"`
	Options  PromptOptions `json:"options"`
	Retries  int           `json:"retries"`
}

// Values is the accumulator of results collected by a waterfall.
type Values map[string]any

// Set stores a value under key.
func (v Values) Set(key string, value any) {
	v[key] = value
}

// Has reports whether key was collected.
func (v Values) Has(key string) bool {
	_, ok := v[key]
	return ok
}

// GetString retrieves a string value.
func (v Values) GetString(key string) string {
	if val, ok := v[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}

// GetFloat retrieves a numeric value as float64.
func (v Values) GetFloat(key string) float64 {
	if val, ok := v[key]; ok {
		switch n := val.(type) {
		case float64:
			return n
		case float32:
			return float64(n)
		case int:
			return float64(n)
		case int32:
			return float64(n)
		case int64:
			return float64(n)
		}
	}
	return 0
}

// GetInt retrieves a numeric value truncated to int.
func (v Values) GetInt(key string) int {
	return int(v.GetFloat(key))
}

// GetBool retrieves a boolean value.
func (v Values) GetBool(key string) bool {
	if val, ok := v[key]; ok {
		if b, ok := val.(bool); ok {
			return b
		}
	}
	return false
}

// GetAttachments retrieves attachments, also after a JSON round trip turned
// them into generic maps.
func (v Values) GetAttachments(key string) []Attachment {
	return AsAttachments(v[key])
}

// AsAttachments converts a prompt result back to attachments.
func AsAttachments(val any) []Attachment {
	switch a := val.(type) {
	case nil:
		return nil
	case []Attachment:
		return a
	case Attachment:
		return []Attachment{a}
	}
	raw, err := json.Marshal(val)
	if err != nil {
		return nil
	}
	var out []Attachment
	if err := json.Unmarshal(raw, &out); err != nil {
		var single Attachment
		if err := json.Unmarshal(raw, &single); err != nil || single.ContentType == "" {
			return nil
		}
		return []Attachment{single}
	}
	return out
}

// EncodeState serializes a conversation state into the opaque blob kept by
// the stores.
func EncodeState(state *ConversationState) ([]byte, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("encoding conversation state: %w", err)
	}
	return data, nil
}

// DecodeState restores a conversation state from its blob.
func DecodeState(data []byte) (*ConversationState, error) {
	var state ConversationState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decoding conversation state: %w", err)
	}
	if state.DialogStack == nil {
		state.DialogStack = []*DialogInstance{}
	}
	stack := state.DialogStack[:0]
	for _, inst := range state.DialogStack {
		if inst == nil {
			continue
		}
		if inst.Values == nil {
			inst.Values = Values{}
		}
		stack = append(stack, inst)
	}
	state.DialogStack = stack
	return &state, nil
}
