package chat

import (
	"time"

	"Genie/bot/dialog"
)

// Activity types understood by the engine.
const (
	ActivityMessage            = "message"
	ActivityConversationUpdate = "conversationUpdate"
)

// Account identifies a user or the bot on a channel.
type Account struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// ConversationAccount identifies the conversation on a channel.
type ConversationAccount struct {
	ID string `json:"id" validate:"required"`
}

// CardAction is one suggested reply.
type CardAction struct {
	Type  string `json:"type"`
	Title string `json:"title"`
	Value string `json:"value"`
}

// SuggestedActions carries the choices of a prompt.
type SuggestedActions struct {
	Actions []CardAction `json:"actions"`
}

// Activity is an inbound or outbound message exchanged with a channel.
type Activity struct {
	ID               string              `json:"id,omitempty"`
	Type             string              `json:"type" validate:"required,oneof=message conversationUpdate"`
	ChannelID        string              `json:"channelId" validate:"required"`
	Conversation     ConversationAccount `json:"conversation"`
	From             Account             `json:"from"`
	Recipient        Account             `json:"recipient"`
	Text             string              `json:"text,omitempty"`
	Attachments      []dialog.Attachment `json:"attachments,omitempty" validate:"dive"`
	MembersAdded     []Account           `json:"membersAdded,omitempty"`
	SuggestedActions *SuggestedActions   `json:"suggestedActions,omitempty"`
	ReplyToID        string              `json:"replyToId,omitempty"`
	Timestamp        time.Time           `json:"timestamp,omitempty"`
}

// Input returns the dialog view of the activity content.
func (a Activity) Input() dialog.Input {
	return dialog.Input{
		Text:        a.Text,
		Attachments: a.Attachments,
	}
}

// ResolveIdentity maps an activity to the key its conversation state is
// stored under.
func ResolveIdentity(a Activity) string {
	return a.ChannelID + ":" + a.Conversation.ID
}
