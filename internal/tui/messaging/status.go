package messaging

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/HaiFongPan/r2s3-browser/internal/tui/theme"
)

// MessageType represents different message types for status display
type MessageType = theme.Tone

const (
	MessageInfo    = theme.ToneInfo
	MessageSuccess = theme.ToneSuccess
	MessageWarning = theme.ToneWarning
	MessageError   = theme.ToneError
)

// DefaultTTL is how long a notice stays on screen
const DefaultTTL = 4 * time.Second

// ExpiredMsg asks the status line to clear the message set at At
type ExpiredMsg struct {
	At time.Time
}

// StatusManager holds the single status line of a screen
type StatusManager interface {
	SetMessage(message string, msgType MessageType) tea.Cmd
	ClearMessage()
	Expire(msg ExpiredMsg)
	GetMessage() (string, MessageType, bool)
	RenderMessage() string
	HasMessage() bool
}

// StatusManagerImpl implements the StatusManager interface
type StatusManagerImpl struct {
	statusMessage string
	messageType   MessageType
	messageTimer  time.Time
	ttl           time.Duration
}

// NewStatusManager creates a status manager whose messages expire after ttl.
// ttl <= 0 keeps messages until replaced.
func NewStatusManager(ttl time.Duration) StatusManager {
	return &StatusManagerImpl{
		messageType: MessageInfo,
		ttl:         ttl,
	}
}

// SetMessage shows message and returns the command that later expires it
func (sm *StatusManagerImpl) SetMessage(message string, msgType MessageType) tea.Cmd {
	sm.statusMessage = message
	sm.messageType = msgType
	sm.messageTimer = time.Now()

	logrus.Debugf("status: %q (type %d)", message, msgType)

	if sm.ttl <= 0 || message == "" {
		return nil
	}
	at := sm.messageTimer
	return tea.Tick(sm.ttl, func(time.Time) tea.Msg {
		return ExpiredMsg{At: at}
	})
}

func (sm *StatusManagerImpl) ClearMessage() {
	sm.statusMessage = ""
}

// Expire clears the message only if it is the one the timer was started for
func (sm *StatusManagerImpl) Expire(msg ExpiredMsg) {
	if msg.At.Equal(sm.messageTimer) {
		sm.ClearMessage()
	}
}

func (sm *StatusManagerImpl) GetMessage() (string, MessageType, bool) {
	return sm.statusMessage, sm.messageType, sm.statusMessage != ""
}

func (sm *StatusManagerImpl) HasMessage() bool {
	return sm.statusMessage != ""
}

// RenderMessage renders the current status message with appropriate styling
func (sm *StatusManagerImpl) RenderMessage() string {
	if !sm.HasMessage() {
		return ""
	}

	style := lipgloss.NewStyle().
		Foreground(lipgloss.Color(theme.ToneColor(sm.messageType))).
		Bold(true)

	return style.Render(fmt.Sprintf("%s %s", theme.ToneIcon(sm.messageType), sm.statusMessage))
}
