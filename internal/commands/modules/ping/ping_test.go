package ping

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"ditto/internal/commands/types"
)

func TestRegister(t *testing.T) {
	cmds := make(map[string]*types.Command)
	New().Register(cmds, &types.Dependencies{})

	cmd, ok := cmds["ping"]
	assert.True(t, ok)
	assert.Equal(t, "ping", cmd.ApplicationCommand.Name)
	assert.NotNil(t, cmd.HandlerFunc)
}

func TestPongMessage(t *testing.T) {
	assert.Equal(t, "🏓 Pong!", pongMessage(0))
	assert.Equal(t, "🏓 Pong! Gateway latency is 42ms.", pongMessage(42*time.Millisecond))
}
