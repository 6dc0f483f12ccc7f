package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"github.com/HaiFongPan/r2s3-browser/internal/browser"
	"github.com/HaiFongPan/r2s3-browser/internal/config"
	"github.com/HaiFongPan/r2s3-browser/internal/storage"
	tuiconfig "github.com/HaiFongPan/r2s3-browser/internal/tui/config"
	"github.com/HaiFongPan/r2s3-browser/internal/tui/messaging"
	"github.com/HaiFongPan/r2s3-browser/internal/tui/theme"
)

// BucketItem represents a bucket in the selector
type BucketItem struct {
	storage.BucketInfo
	IsLast bool
}

// BucketSelectorModel lists the buckets of one connection
type BucketSelectorModel struct {
	session      session
	connectionID string
	userData     *config.UserData

	buckets       []BucketItem
	selectedIndex int
	loading       bool
	loadErr       error
	showHelp      bool
	searching     bool
	search        textinput.Model

	status       messaging.StatusManager
	keyMap       BucketSelectorKeyMap
	help         help.Model
	spinner      spinner.Model
	windowWidth  int
	windowHeight int
}

// BucketSelectorKeyMap defines keybindings for bucket selector
type BucketSelectorKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Select   key.Binding
	Remember key.Binding
	Help     key.Binding
	Quit     key.Binding
	Refresh  key.Binding
	Search   key.Binding
}

// DefaultBucketSelectorKeyMap returns default keybindings
func DefaultBucketSelectorKeyMap() BucketSelectorKeyMap {
	return BucketSelectorKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "move down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open bucket"),
		),
		Remember: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "open on start"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q/esc", "quit"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
	}
}

// ShortHelp returns the short help view
func (k BucketSelectorKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.Search, k.Remember, k.Help, k.Quit}
}

// FullHelp returns the full help view
func (k BucketSelectorKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select, k.Remember},
		{k.Search, k.Refresh, k.Help, k.Quit},
	}
}

type bucketRememberedMsg struct {
	bucket string
	err    error
}

// NewBucketSelectorModel creates a new bucket selector model
func NewBucketSelectorModel(sess session, connectionID string, userData *config.UserData) *BucketSelectorModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = theme.LoadingStyle()

	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "filter by name"
	ti.CharLimit = 63

	return &BucketSelectorModel{
		session:      sess,
		connectionID: connectionID,
		userData:     userData,
		loading:      true,
		search:       ti,
		status:       messaging.NewStatusManager(messaging.DefaultTTL),
		keyMap:       DefaultBucketSelectorKeyMap(),
		help:         help.New(),
		spinner:      s,
		windowWidth:  80,
		windowHeight: 24,
	}
}

// Init starts loading the bucket list
func (m *BucketSelectorModel) Init() tea.Cmd {
	return tea.Batch(m.session.loadBuckets(), m.spinner.Tick)
}

// Update handles messages in the bucket selector
func (m *BucketSelectorModel) Update(msg tea.Msg) (*BucketSelectorModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.windowWidth = msg.Width
		m.windowHeight = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case bucketsLoadedMsg:
		m.loading = false
		m.loadErr = msg.err
		if msg.err != nil {
			logrus.WithError(msg.err).Error("failed to list buckets")
			return m, m.status.SetMessage("Failed to list buckets", messaging.MessageError)
		}
		m.setBuckets(msg.buckets)
		return m, nil

	case bucketRememberedMsg:
		if msg.err != nil {
			logrus.WithError(msg.err).Warn("failed to save user data")
			return m, m.status.SetMessage("Failed to remember bucket", messaging.MessageError)
		}
		for i := range m.buckets {
			m.buckets[i].IsLast = m.buckets[i].Name == msg.bucket
		}
		return m, m.status.SetMessage(fmt.Sprintf("%s opens on start", msg.bucket), messaging.MessageSuccess)

	case messaging.ExpiredMsg:
		m.status.Expire(msg)
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *BucketSelectorModel) setBuckets(buckets []storage.BucketInfo) {
	last := ""
	if m.userData != nil {
		last = m.userData.LastBucket(m.connectionID)
	}
	m.buckets = make([]BucketItem, 0, len(buckets))
	for _, b := range buckets {
		m.buckets = append(m.buckets, BucketItem{BucketInfo: b, IsLast: b.Name == last})
	}
	if m.selectedIndex >= len(m.visible()) {
		m.selectedIndex = 0
	}
	logrus.Infof("BucketSelector: loaded %d buckets", len(m.buckets))
}

// visible are the buckets whose name matches the search phrase
func (m *BucketSelectorModel) visible() []BucketItem {
	phrase := m.search.Value()
	if strings.TrimSpace(phrase) == "" {
		return m.buckets
	}
	var out []BucketItem
	for _, b := range m.buckets {
		if browser.MatchesSearch(b.Name, phrase) {
			out = append(out, b)
		}
	}
	return out
}

// Selected returns the highlighted bucket
func (m *BucketSelectorModel) Selected() (storage.BucketInfo, bool) {
	buckets := m.visible()
	if m.selectedIndex < 0 || m.selectedIndex >= len(buckets) {
		return storage.BucketInfo{}, false
	}
	return buckets[m.selectedIndex].BucketInfo, true
}

// handleSearchKey edits the search phrase; esc drops it, enter keeps it
func (m *BucketSelectorModel) handleSearchKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		m.selectedIndex = 0
		return nil
	case tea.KeyEnter:
		m.searching = false
		m.search.Blur()
		return nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.selectedIndex = 0
	return cmd
}

// handleKeyPress processes keyboard input
func (m *BucketSelectorModel) handleKeyPress(msg tea.KeyMsg) (*BucketSelectorModel, tea.Cmd) {
	if m.loading {
		if key.Matches(msg, m.keyMap.Quit) {
			return m, tea.Quit
		}
		return m, nil
	}
	if m.searching {
		return m, m.handleSearchKey(msg)
	}

	switch {
	case msg.Type == tea.KeyEsc && m.search.Value() != "":
		m.search.SetValue("")
		m.selectedIndex = 0

	case key.Matches(msg, m.keyMap.Up):
		if m.selectedIndex > 0 {
			m.selectedIndex--
		}

	case key.Matches(msg, m.keyMap.Down):
		if m.selectedIndex < len(m.visible())-1 {
			m.selectedIndex++
		}

	case key.Matches(msg, m.keyMap.Search):
		m.searching = true
		return m, m.search.Focus()

	case key.Matches(msg, m.keyMap.Select):
		if b, ok := m.Selected(); ok {
			return m, func() tea.Msg { return bucketChosenMsg{bucket: b} }
		}

	case key.Matches(msg, m.keyMap.Remember):
		if b, ok := m.Selected(); ok && m.userData != nil {
			return m, m.remember(b.Name)
		}

	case key.Matches(msg, m.keyMap.Help):
		m.showHelp = !m.showHelp

	case key.Matches(msg, m.keyMap.Refresh):
		m.loading = true
		return m, tea.Batch(m.session.loadBuckets(), m.spinner.Tick)

	case key.Matches(msg, m.keyMap.Quit):
		return m, tea.Quit
	}
	return m, nil
}

func (m *BucketSelectorModel) remember(bucket string) tea.Cmd {
	userData, connectionID := m.userData, m.connectionID
	return func() tea.Msg {
		logrus.Infof("BucketSelector: remembering bucket %s for %s", bucket, connectionID)
		return bucketRememberedMsg{bucket: bucket, err: userData.RememberBucket(connectionID, bucket)}
	}
}

// View renders the bucket selector
func (m *BucketSelectorModel) View() string {
	title := theme.HeaderStyle().Render("🗂️  Buckets on " + m.connectionID)

	var body string
	switch {
	case m.loading:
		body = m.spinner.View() + theme.LoadingStyle().Render(" Loading buckets...")
	case m.showHelp:
		body = m.help.FullHelpView(m.keyMap.FullHelp())
	case m.loadErr != nil:
		body = theme.ErrorStyle().Render("Could not list buckets") + "\n\n" +
			theme.FooterStyle().Render("Press 'r' to retry or 'q' to quit")
	case len(m.buckets) == 0:
		body = theme.SecondaryTextStyle().Render("No buckets found") + "\n\n" +
			theme.FooterStyle().Render("Press 'r' to refresh or 'q' to quit")
	case len(m.visible()) == 0:
		body = theme.SecondaryTextStyle().Render("No buckets match " + m.search.Value())
	default:
		body = m.renderBucketList()
	}
	if m.searching || m.search.Value() != "" {
		body = lipgloss.JoinVertical(lipgloss.Left, m.search.View(), "", body)
	}

	content := lipgloss.JoinVertical(lipgloss.Left, title, "", body)
	if msg := m.status.RenderMessage(); msg != "" {
		content = lipgloss.JoinVertical(lipgloss.Left, content, "", msg)
	}
	if !m.loading && !m.showHelp {
		content = lipgloss.JoinVertical(lipgloss.Left, content, "", m.help.ShortHelpView(m.keyMap.ShortHelp()))
	}

	return lipgloss.Place(
		m.windowWidth, m.windowHeight,
		lipgloss.Center, lipgloss.Center,
		theme.DialogStyle(tuiconfig.DialogLargeWidth, "").Render(content),
	)
}

// renderBucketList renders one line per bucket: marker, name, provider and age
func (m *BucketSelectorModel) renderBucketList() string {
	buckets := m.visible()
	lines := make([]string, 0, len(buckets))
	for i, bucket := range buckets {
		prefix := "  "
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(theme.ColorWhite)).Padding(0, 1)
		if i == m.selectedIndex {
			prefix = "▶ "
			style = lipgloss.NewStyle().
				Background(lipgloss.Color(theme.ColorSelectionBg)).
				Foreground(lipgloss.Color(theme.ColorWhite)).
				Bold(true).
				Padding(0, 1)
		}
		if bucket.IsLast {
			prefix += "* "
		} else {
			prefix += "  "
		}

		line := prefix + bucket.Name
		var details []string
		details = append(details, bucket.Provider.DisplayName())
		if bucket.Region != "" {
			details = append(details, bucket.Region)
		}
		if bucket.CreationDate != nil {
			details = append(details, "created "+humanize.Time(*bucket.CreationDate))
		}
		lines = append(lines, style.Render(line)+" "+theme.SecondaryTextStyle().Render(strings.Join(details, " · ")))
	}
	return strings.Join(lines, "\n")
}
