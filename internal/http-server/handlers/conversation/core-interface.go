package conversation

import (
	"Genie/bot/dialog"
	"context"
)

type Core interface {
	ResetConversation(ctx context.Context, channelID, conversationID string) error
	ConversationState(ctx context.Context, channelID, conversationID string) (*dialog.ConversationState, error)
}
