package dialog

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// parentChild registers a parent that begins a child asking one question.
func parentChild(t *testing.T, h *harness) {
	t.Helper()
	require.NoError(t, h.set.AddPrompt(NewTextPrompt("color")))
	require.NoError(t, h.set.AddWaterfall(NewWaterfall("child",
		func(ctx context.Context, sc *StepContext) (StepResult, error) {
			sc.Values.Set("greeting", sc.Result)
			return PromptFor("color", PromptOptions{Text: "Favourite color?"}), nil
		},
		func(ctx context.Context, sc *StepContext) (StepResult, error) {
			return End(sc.Values.GetString("greeting") + " " + sc.Result.(string)), nil
		},
	)))
	require.NoError(t, h.set.AddWaterfall(NewWaterfall("parent",
		func(ctx context.Context, sc *StepContext) (StepResult, error) {
			sc.Values.Set("started", true)
			return Begin("child", "hello"), nil
		},
		func(ctx context.Context, sc *StepContext) (StepResult, error) {
			if err := sc.SendText("child said " + sc.Result.(string)); err != nil {
				return StepResult{}, err
			}
			return End(sc.Values.GetBool("started")), nil
		},
	)))
}

func TestNestedDialogResumesParentOnNextTurn(t *testing.T) {
	h := newHarness(t)
	parentChild(t, h)

	res := h.begin("parent", "")
	assert.Equal(t, StatusWaiting, res.Status)
	require.Len(t, h.state.DialogStack, 2)
	assert.Equal(t, "child", h.state.Top().DialogID)
	assert.Equal(t, []string{"Favourite color?"}, h.rec.texts())

	h.roundTrip()
	h.rec.reset()
	res = h.send("blue")
	assert.Equal(t, StatusComplete, res.Status)
	assert.Equal(t, "hello blue", res.Result)
	require.Len(t, h.state.DialogStack, 1)
	parent := h.state.Top()
	assert.Equal(t, "parent", parent.DialogID)
	assert.Equal(t, "hello blue", parent.ChildResult)
	assert.Empty(t, h.rec.replies)

	h.roundTrip()
	res = h.send("anything")
	assert.Equal(t, StatusComplete, res.Status)
	assert.Equal(t, true, res.Result)
	assert.Equal(t, []string{"child said hello blue"}, h.rec.texts())
	assert.Empty(t, h.state.DialogStack)
}

func TestContinueWithEmptyStack(t *testing.T) {
	h := newHarness(t)
	res := h.send("hi")
	assert.Equal(t, StatusEmpty, res.Status)
	assert.Empty(t, h.rec.replies)
}

func TestBeginUnknownDialog(t *testing.T) {
	h := newHarness(t)
	_, err := h.context("").BeginDialog(context.Background(), "missing", nil)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestBeginReusesFreshTopFrame(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.set.AddWaterfall(NewWaterfall("once",
		func(ctx context.Context, sc *StepContext) (StepResult, error) {
			return StepResult{}, assert.AnError
		},
	)))

	_, err := h.context("").BeginDialog(context.Background(), "once", nil)
	require.Error(t, err)
	_, err = h.context("").BeginDialog(context.Background(), "once", nil)
	require.Error(t, err)
	assert.Len(t, h.state.DialogStack, 1)
}

func TestCancelAllDialogs(t *testing.T) {
	h := newHarness(t)
	parentChild(t, h)
	h.begin("parent", "")
	require.Len(t, h.state.DialogStack, 2)

	h.context("").CancelAllDialogs()
	assert.Empty(t, h.state.DialogStack)
	assert.Nil(t, h.context("").ActiveDialog())
}

func TestStartOverOnStaleFrames(t *testing.T) {
	tests := []struct {
		name  string
		frame *DialogInstance
	}{
		{name: "unknown dialog", frame: &DialogInstance{DialogID: "removed", StepIndex: 0, Values: Values{}}},
		{name: "step index past the end", frame: &DialogInstance{DialogID: "form", StepIndex: 7, Values: Values{}}},
		{name: "negative step index", frame: &DialogInstance{DialogID: "form", StepIndex: -4, Values: Values{}}},
		{name: "unknown prompt", frame: &DialogInstance{
			DialogID:      "form",
			StepIndex:     0,
			Values:        Values{},
			PendingPrompt: &PendingPrompt{PromptID: "gone", Kind: KindText},
		}},
		{name: "step index past the end with a registered prompt", frame: &DialogInstance{
			DialogID:      "form",
			StepIndex:     7,
			Values:        Values{},
			PendingPrompt: &PendingPrompt{PromptID: "age", Kind: KindNumber},
		}},
		{name: "pending prompt before the first step", frame: &DialogInstance{
			DialogID:      "form",
			StepIndex:     -1,
			Values:        Values{},
			PendingPrompt: &PendingPrompt{PromptID: "name", Kind: KindText},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			nameAge(t, h)
			h.state.DialogStack = []*DialogInstance{tt.frame}

			res := h.send("x")
			assert.Equal(t, StatusCancelled, res.Status)
			assert.Empty(t, h.state.DialogStack)
			assert.Equal(t, []string{StartOverMessage}, h.rec.texts())
		})
	}
}

func TestStartOverKeepsParent(t *testing.T) {
	h := newHarness(t)
	parentChild(t, h)
	h.begin("parent", "")
	h.state.Top().StepIndex = 9
	h.rec.reset()

	res := h.send("blue")
	assert.Equal(t, StatusCancelled, res.Status)
	require.Len(t, h.state.DialogStack, 1)
	assert.Equal(t, "parent", h.state.Top().DialogID)
	assert.Equal(t, []string{StartOverMessage}, h.rec.texts())
}

func TestRegistrationErrors(t *testing.T) {
	h := newHarness(t)
	step := func(ctx context.Context, sc *StepContext) (StepResult, error) { return End(nil), nil }

	assert.ErrorIs(t, h.set.AddWaterfall(NewWaterfall("")), ErrConfiguration)
	assert.ErrorIs(t, h.set.AddWaterfall(NewWaterfall("empty")), ErrConfiguration)
	require.NoError(t, h.set.AddWaterfall(NewWaterfall("w", step)))
	assert.ErrorIs(t, h.set.AddWaterfall(NewWaterfall("w", step)), ErrConfiguration)
	assert.ErrorIs(t, h.set.AddPrompt(NewTextPrompt("w")), ErrConfiguration)
	assert.ErrorIs(t, h.set.AddPrompt(&Prompt{ID: "odd", Kind: "video"}), ErrConfiguration)
	assert.True(t, h.set.Has("w"))
	assert.False(t, h.set.Has("odd"))
}

func TestContextLogsOneModule(t *testing.T) {
	var buf bytes.Buffer
	set := NewSet(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	require.NoError(t, set.AddWaterfall(NewWaterfall("done",
		func(ctx context.Context, sc *StepContext) (StepResult, error) { return End(nil), nil },
	)))
	buf.Reset()

	state := NewConversationState("test:1", "test")
	dc := set.CreateContext(state, &Turn{Responder: &recorder{}})
	_, err := dc.BeginDialog(context.Background(), "done", nil)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.NotEmpty(t, lines)
	for _, line := range lines {
		assert.Equal(t, 1, strings.Count(line, "mod="), line)
		assert.Contains(t, line, "mod=dialog.context")
	}
}
