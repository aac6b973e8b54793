package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captured struct {
	messages []string
}

func (c *captured) SendMessage(msg string) {
	c.messages = append(c.messages, msg)
}

func TestTelegramHandlerForwardsFromLevel(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	sender := &captured{}

	lg := SetupTelegramHandler(base, sender, slog.LevelWarn).With(slog.String("module", "test"))
	lg.Info("quiet")
	lg.Warn("loud", slog.Int("n", 7))

	require.Len(t, sender.messages, 1)
	assert.Equal(t, "WARN: loud\nmodule: test\nn: 7", sender.messages[0])
	assert.Contains(t, buf.String(), "quiet")
	assert.Contains(t, buf.String(), "loud")
}

func TestSetupTelegramHandlerWithoutSender(t *testing.T) {
	base := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	assert.Same(t, base, SetupTelegramHandler(base, nil, slog.LevelWarn))
}
