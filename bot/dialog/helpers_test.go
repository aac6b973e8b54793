package dialog

import (
	"context"
	"testing"

	"github.com/neilotoole/slogt"
	"github.com/stretchr/testify/require"
)

type sent struct {
	text    string
	choices []string
}

type recorder struct {
	replies []sent
}

func (r *recorder) SendText(text string) error {
	r.replies = append(r.replies, sent{text: text})
	return nil
}

func (r *recorder) SendChoices(text string, choices []string) error {
	r.replies = append(r.replies, sent{text: text, choices: choices})
	return nil
}

func (r *recorder) texts() []string {
	out := make([]string, 0, len(r.replies))
	for _, s := range r.replies {
		out = append(out, s.text)
	}
	return out
}

func (r *recorder) reset() {
	r.replies = nil
}

// harness drives turns against one conversation state.
type harness struct {
	t     *testing.T
	set   *Set
	state *ConversationState
	rec   *recorder
}

func newHarness(t *testing.T) *harness {
	return &harness{
		t:     t,
		set:   NewSet(slogt.New(t)),
		state: NewConversationState("test:1", "test"),
		rec:   &recorder{},
	}
}

func (h *harness) context(text string, attachments ...Attachment) *DialogContext {
	turn := &Turn{
		ConversationID: h.state.ConversationID,
		ChannelID:      h.state.ChannelID,
		Input:          Input{Text: text, Attachments: attachments},
		Responder:      h.rec,
	}
	return h.set.CreateContext(h.state, turn)
}

func (h *harness) begin(id, text string) TurnResult {
	h.t.Helper()
	res, err := h.context(text).BeginDialog(context.Background(), id, nil)
	require.NoError(h.t, err)
	return res
}

func (h *harness) send(text string, attachments ...Attachment) TurnResult {
	h.t.Helper()
	res, err := h.context(text, attachments...).ContinueDialog(context.Background())
	require.NoError(h.t, err)
	return res
}

// roundTrip replaces the state with its decoded blob, like a store would.
func (h *harness) roundTrip() {
	h.t.Helper()
	blob, err := EncodeState(h.state)
	require.NoError(h.t, err)
	h.state, err = DecodeState(blob)
	require.NoError(h.t, err)
}
