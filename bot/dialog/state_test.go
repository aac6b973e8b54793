package dialog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateRoundTrip(t *testing.T) {
	state := NewConversationState("test:42", "test")
	parent := NewDialogInstance("urlcheck")
	parent.StepIndex = 1
	parent.Values.Set("transport", "My Profile")
	child := NewDialogInstance("profile")
	child.StepIndex = 2
	child.Values.Set("age", 30.0)
	child.Values.Set("picture", []Attachment{{ContentType: "image/png", ContentURL: "http://x/p.png"}})
	child.PendingPrompt = &PendingPrompt{
		PromptID: "profile.confirm",
		Kind:     KindConfirm,
		Options:  PromptOptions{Text: "Is this correct?", Choices: []string{"Yes", "No"}},
		Retries:  2,
	}
	state.push(parent)
	state.push(child)

	blob, err := EncodeState(state)
	require.NoError(t, err)
	got, err := DecodeState(blob)
	require.NoError(t, err)

	assert.Equal(t, "test:42", got.ConversationID)
	require.Len(t, got.DialogStack, 2)
	assert.Equal(t, "profile", got.Top().DialogID)
	assert.Equal(t, 2, got.Top().StepIndex)
	assert.Equal(t, *child.PendingPrompt, *got.Top().PendingPrompt)
	assert.Equal(t, 30, got.Top().Values.GetInt("age"))
	assert.Equal(t, []Attachment{{ContentType: "image/png", ContentURL: "http://x/p.png"}}, got.Top().Values.GetAttachments("picture"))
	assert.Equal(t, "My Profile", got.DialogStack[0].Values.GetString("transport"))
}

func TestDecodeStateRepairs(t *testing.T) {
	got, err := DecodeState([]byte(`{"conversation_id":"c","dialog_stack":[null,{"dialog_id":"x","step_index":0}]}`))
	require.NoError(t, err)
	require.Len(t, got.DialogStack, 1)
	assert.NotNil(t, got.Top().Values)

	got, err = DecodeState([]byte(`{"conversation_id":"c"}`))
	require.NoError(t, err)
	assert.NotNil(t, got.DialogStack)
	assert.Nil(t, got.Top())

	_, err = DecodeState([]byte(`{not json`))
	assert.Error(t, err)
}

func TestValuesAccessors(t *testing.T) {
	v := Values{}
	v.Set("n", 3)
	v.Set("s", "text")
	v.Set("b", true)

	assert.True(t, v.Has("n"))
	assert.False(t, v.Has("missing"))
	assert.Equal(t, 3.0, v.GetFloat("n"))
	assert.Equal(t, 3, v.GetInt("n"))
	assert.Equal(t, "text", v.GetString("s"))
	assert.Equal(t, "", v.GetString("n"))
	assert.True(t, v.GetBool("b"))
	assert.Nil(t, v.GetAttachments("missing"))
}

func TestMemoryStorage(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStateStorage()

	got, err := s.Load(ctx, "c")
	require.NoError(t, err)
	assert.Nil(t, got)

	state := NewConversationState("c", "test")
	state.push(NewDialogInstance("form"))
	require.NoError(t, s.Save(ctx, state))
	assert.Equal(t, int64(1), state.Version)

	first, err := s.Load(ctx, "c")
	require.NoError(t, err)
	second, err := s.Load(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.Version)
	assert.Equal(t, "form", first.Top().DialogID)

	require.NoError(t, s.Save(ctx, first))
	assert.ErrorIs(t, s.Save(ctx, second), ErrStaleState)

	require.NoError(t, s.Delete(ctx, "c"))
	got, err = s.Load(ctx, "c")
	require.NoError(t, err)
	assert.Nil(t, got)
}

type fakeRepository struct {
	blobs    map[string][]byte
	versions map[string]int64
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{blobs: map[string][]byte{}, versions: map[string]int64{}}
}

func (r *fakeRepository) SaveConversationState(_ context.Context, id string, expected, next int64, blob []byte) error {
	if r.versions[id] != expected {
		return ErrStaleState
	}
	r.blobs[id] = blob
	r.versions[id] = next
	return nil
}

func (r *fakeRepository) LoadConversationState(_ context.Context, id string) ([]byte, int64, error) {
	return r.blobs[id], r.versions[id], nil
}

func (r *fakeRepository) DeleteConversationState(_ context.Context, id string) error {
	delete(r.blobs, id)
	delete(r.versions, id)
	return nil
}

func TestMongoStorageAdapter(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	s := NewMongoStateStorage(repo)

	state := NewConversationState("c", "test")
	require.NoError(t, s.Save(ctx, state))
	require.NoError(t, s.Save(ctx, state))
	assert.Equal(t, int64(2), state.Version)
	assert.Equal(t, int64(2), repo.versions["c"])

	loaded, err := s.Load(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, int64(2), loaded.Version)

	stale := NewConversationState("c", "test")
	assert.ErrorIs(t, s.Save(ctx, stale), ErrStaleState)
}

func TestCorruptBlobIsReplaced(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	repo.blobs["c"] = []byte("garbage")
	repo.versions["c"] = 4
	s := NewMongoStateStorage(repo)

	state, err := s.Load(ctx, "c")
	assert.ErrorIs(t, err, ErrCorruptState)
	require.NotNil(t, state)
	assert.Equal(t, int64(4), state.Version)
	assert.Empty(t, state.DialogStack)

	require.NoError(t, s.Save(ctx, state))
	assert.Equal(t, int64(5), repo.versions["c"])
}
