package urlcheck

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"Genie/bot/chat"
	"Genie/bot/chat/profile"
	"Genie/bot/dialog"
	"Genie/internal/service/reputation"

	"github.com/neilotoole/slogt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReputation struct {
	err     error
	checked []string
}

func (f *fakeReputation) CheckURL(_ context.Context, url string) (reputation.Verdict, error) {
	f.checked = append(f.checked, url)
	if f.err != nil {
		return reputation.Verdict{}, f.err
	}
	return reputation.Verdict{URL: url, Raw: json.RawMessage(`{"results": [{"key": "` + url + `"}]}`)}, nil
}

type conversation struct {
	t        *testing.T
	engine   *chat.ChatEngine
	channel  string
	lastTurn *chat.Transcript
}

var bot = chat.Account{ID: "genie", Name: "Genie"}

func newConversation(t *testing.T, rep ReputationService, channel string) *conversation {
	t.Helper()
	log := slogt.New(t)
	set := dialog.NewSet(log)
	require.NoError(t, profile.Register(set, log))
	require.NoError(t, Register(set, rep, log))

	engine, err := chat.NewChatEngine(dialog.NewMemoryStateStorage(), set, WorkflowID, bot.Name, log)
	require.NoError(t, err)
	return &conversation{t: t, engine: engine, channel: channel}
}

func (c *conversation) say(text string, attachments ...dialog.Attachment) []string {
	c.t.Helper()
	c.lastTurn = chat.NewTranscript(c.channel, bot)
	err := c.engine.HandleActivity(context.Background(), c.lastTurn, chat.Activity{
		Type:         chat.ActivityMessage,
		ChannelID:    c.channel,
		Conversation: chat.ConversationAccount{ID: "c1"},
		From:         chat.Account{ID: "u1", Name: "Ann"},
		Recipient:    bot,
		Text:         text,
		Attachments:  attachments,
	})
	require.NoError(c.t, err)
	return c.lastTurn.Texts()
}

func (c *conversation) stack() []*dialog.DialogInstance {
	c.t.Helper()
	state, err := c.engine.GetState(context.Background(), c.channel, "c1")
	require.NoError(c.t, err)
	require.NotNil(c.t, state)
	return state.DialogStack
}

func TestMenuOffersChoices(t *testing.T) {
	c := newConversation(t, &fakeReputation{}, "test")

	assert.Equal(t, []string{"How can I help you today?"}, c.say("hello"))
	acts := c.lastTurn.Activities()
	require.Len(t, acts, 1)
	require.NotNil(t, acts[0].SuggestedActions)
	assert.Len(t, acts[0].SuggestedActions.Actions, 3)
}

func TestPhishingURL(t *testing.T) {
	rep := &fakeReputation{}
	c := newConversation(t, rep, "test")

	c.say("hello")
	assert.Equal(t, []string{"What is the URL?"}, c.say("Check URL"))

	texts := c.say("http://example-phish.com/login")
	require.Len(t, texts, 2)
	assert.JSONEq(t, `{"results":[{"key":"http://example-phish.com/login"}]}`, texts[0])
	assert.Equal(t, "Would you like to know more?", texts[1])
	assert.Equal(t, []string{"http://example-phish.com/login"}, rep.checked)

	assert.Equal(t, []string{phishingWarning, "Hope this helps."}, c.say("no"))
	assert.Empty(t, c.stack())
}

func TestBareHostIsNormalized(t *testing.T) {
	rep := &fakeReputation{}
	c := newConversation(t, rep, "test")

	c.say("hello")
	c.say("check url")
	c.say("example.com/path")
	assert.Equal(t, []string{"http://example.com/path"}, rep.checked)
}

func TestScamTextWithTips(t *testing.T) {
	rep := &fakeReputation{}
	c := newConversation(t, rep, "test")

	c.say("hello")
	assert.Equal(t, []string{"What is the text you received?"}, c.say("2"))

	texts := c.say("Huge sale at https://scam-eshop.com/deals, only today!")
	require.Len(t, texts, 2)
	assert.Equal(t, []string{"https://scam-eshop.com/deals"}, rep.checked)

	assert.Equal(t, []string{scamTips, "Hope this helps."}, c.say("yes"))
}

func TestGeneralTipsOnlyWhenAsked(t *testing.T) {
	c := newConversation(t, &fakeReputation{}, "test")

	c.say("hello")
	c.say("Check URL")
	c.say("https://example.org")
	assert.Equal(t, []string{"Hope this helps."}, c.say("no"))

	c.say("hello")
	c.say("Check URL")
	c.say("https://example.org")
	assert.Equal(t, []string{generalTips, "Hope this helps."}, c.say("yes"))
}

func TestLookupFailureStillAsksToConfirm(t *testing.T) {
	rep := &fakeReputation{err: fmt.Errorf("decoding verdict: %w", reputation.ErrMalformedResponse)}
	c := newConversation(t, rep, "test")

	c.say("hello")
	c.say("Check URL")
	texts := c.say("http://example.com")
	require.Len(t, texts, 2)
	assert.Contains(t, texts[0], "Sorry, I could not check that URL right now:")
	assert.Contains(t, texts[0], reputation.ErrMalformedResponse.Error())
	assert.Equal(t, "Would you like to know more?", texts[1])

	stack := c.stack()
	require.Len(t, stack, 1)
	require.NotNil(t, stack[0].PendingPrompt)
	assert.Equal(t, ConfirmPrompt, stack[0].PendingPrompt.PromptID)
}

func TestTextWithoutLinks(t *testing.T) {
	rep := &fakeReputation{}
	c := newConversation(t, rep, "test")

	c.say("hello")
	c.say("Check Text")
	texts := c.say("you won a prize, call us")
	assert.Equal(t, []string{"I could not find a link in that text.", "Would you like to know more?"}, texts)
	assert.Empty(t, rep.checked)
}

func TestInvalidMenuChoiceRetries(t *testing.T) {
	c := newConversation(t, &fakeReputation{}, "test")

	c.say("hello")
	assert.Equal(t, []string{"Please select a valid choice."}, c.say("Check Mail"))
	assert.Equal(t, []string{"What is the URL?"}, c.say("Check URL"))
}

func TestProfileChildDialog(t *testing.T) {
	c := newConversation(t, &fakeReputation{}, "test")

	c.say("hello")
	assert.Equal(t, []string{"Would you like to give your age?"}, c.say("My Profile"))
	require.Len(t, c.stack(), 2)

	assert.Equal(t, []string{"Please enter your age."}, c.say("yes"))
	assert.Equal(t, []string{"The value entered must be greater than 0 and less than 150."}, c.say("150"))
	assert.Equal(t, []string{
		"I have your age as 30.",
		"Please attach a profile picture (or type any message to skip).",
	}, c.say("30"))

	assert.Equal(t, []string{"The attachment must be a jpeg/png image file."},
		c.say("", dialog.Attachment{ContentType: "application/pdf", Name: "cv.pdf"}))
	assert.Equal(t, []string{"Is this okay?"},
		c.say("", dialog.Attachment{ContentType: "image/png", ContentURL: "http://files/me.png", Name: "me.png"}))

	assert.Equal(t, []string{"I have your age as 30 and a profile picture."}, c.say("yes"))
	stack := c.stack()
	require.Len(t, stack, 1)
	assert.Equal(t, WorkflowID, stack[0].DialogID)

	assert.Equal(t, []string{"Hope this helps."}, c.say("thanks"))
	assert.Empty(t, c.stack())
}

func TestProfileWithoutAgeOrPicture(t *testing.T) {
	c := newConversation(t, &fakeReputation{}, "test")

	c.say("hello")
	c.say("My Profile")
	assert.Equal(t, []string{
		"No age given.",
		"Please attach a profile picture (or type any message to skip).",
	}, c.say("no"))
	assert.Equal(t, []string{
		"No attachments received. Proceeding without a profile picture...",
		"Is this okay?",
	}, c.say("skip"))
	assert.Equal(t, []string{"I have no age for you."}, c.say("yes"))
}

func TestProfileSkipsPictureOnTeams(t *testing.T) {
	c := newConversation(t, &fakeReputation{}, "msteams")

	c.say("hello")
	c.say("My Profile")
	assert.Equal(t, []string{
		"No age given.",
		"Skipping attachment prompt in Teams channel...",
		"Is this okay?",
	}, c.say("no"))
	assert.Equal(t, []string{"Thanks. Your profile will not be kept."}, c.say("no"))
	assert.Equal(t, []string{"Hope this helps."}, c.say("ok"))
}
