package messaging

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusManager_ExpiresOnlyCurrentMessage(t *testing.T) {
	sm := NewStatusManager(time.Second)

	cmd := sm.SetMessage("first", MessageInfo)
	require.NotNil(t, cmd)
	first := ExpiredMsg{At: sm.(*StatusManagerImpl).messageTimer}

	time.Sleep(time.Millisecond)
	sm.SetMessage("second", MessageSuccess)
	sm.Expire(first)
	msg, msgType, ok := sm.GetMessage()
	assert.True(t, ok)
	assert.Equal(t, "second", msg)
	assert.Equal(t, MessageSuccess, msgType)

	sm.Expire(ExpiredMsg{At: sm.(*StatusManagerImpl).messageTimer})
	assert.False(t, sm.HasMessage())
	assert.Empty(t, sm.RenderMessage())
}

func TestStatusManager_NoTTL(t *testing.T) {
	sm := NewStatusManager(0)
	assert.Nil(t, sm.SetMessage("sticky", MessageWarning))
	assert.Contains(t, sm.RenderMessage(), "sticky")

	sm.ClearMessage()
	assert.False(t, sm.HasMessage())
}
