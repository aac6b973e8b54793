package activity

import (
	"Genie/bot/chat"
	"context"
)

type Core interface {
	ProcessActivity(ctx context.Context, a chat.Activity) ([]chat.Activity, error)
}
