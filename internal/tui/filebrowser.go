package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
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

// inputMode is what the keyboard currently drives
type inputMode int

const (
	modeBrowse inputMode = iota
	modeSearch
	modeCreateFolder
	modeUpload
	modeDownloadDir
	modeMove
)

// downloadFunc runs a download into the chosen directory
type downloadFunc func(ctx context.Context, dir string) browser.Outcome

// FileBrowserModel is the listing screen of one bucket
type FileBrowserModel struct {
	session  session
	ctrl     *browser.Controller
	cache    *browser.Cache
	orch     *browser.Orchestrator
	renderer *ImageRenderer
	userData *config.UserData

	mode         inputMode
	input        textinput.Model
	downloadDir  string
	pendingSave  downloadFunc
	picker       *browser.MovePicker
	pickerTarget bool
	pickerCursor int

	rows           []browser.Entry
	fileTable      table.Model
	previewPane    viewport.Model
	previewLoading bool
	shareURL       string
	busy           int
	ticking        bool

	status  messaging.StatusManager
	keyMap  KeyMap
	help    help.Model
	spinner spinner.Model

	windowWidth  int
	windowHeight int
}

// NewFileBrowserModel creates a browser screen driven by ctrl
func NewFileBrowserModel(sess session, ctrl *browser.Controller, cache *browser.Cache, orch *browser.Orchestrator, renderer *ImageRenderer, userData *config.UserData, downloadDir string) *FileBrowserModel {
	t := table.New(
		table.WithColumns(listColumns(80)),
		table.WithHeight(20),
		table.WithFocused(true),
		table.WithStyles(theme.TableStyles()),
	)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = theme.LoadingStyle()

	ti := textinput.New()
	ti.CharLimit = 1024

	if userData != nil && userData.DownloadDir != "" {
		downloadDir = userData.DownloadDir
	}

	return &FileBrowserModel{
		session:      sess,
		ctrl:         ctrl,
		cache:        cache,
		orch:         orch,
		renderer:     renderer,
		userData:     userData,
		input:        ti,
		downloadDir:  downloadDir,
		fileTable:    t,
		previewPane:  viewport.New(40, 10),
		status:       messaging.NewStatusManager(messaging.DefaultTTL),
		keyMap:       DefaultKeyMap(),
		help:         help.New(),
		spinner:      s,
		windowWidth:  80,
		windowHeight: 24,
	}
}

// listColumns sizes the table for a listing panel of width cells
func listColumns(width int) []table.Column {
	fixed := tuiconfig.ColumnSizeWidth + tuiconfig.ColumnClassWidth + tuiconfig.ColumnModifiedWidth + 8
	name := min(max(width-fixed, tuiconfig.ColumnNameMinWidth), tuiconfig.ColumnNameMaxWidth)
	return []table.Column{
		{Title: "NAME", Width: name},
		{Title: "SIZE", Width: tuiconfig.ColumnSizeWidth},
		{Title: "CLASS", Width: tuiconfig.ColumnClassWidth},
		{Title: "MODIFIED", Width: tuiconfig.ColumnModifiedWidth},
	}
}

// Start loads the listing of the controller's current prefix
func (m *FileBrowserModel) Start() tea.Cmd {
	m.mode = modeBrowse
	m.picker = nil
	m.shareURL = ""
	m.previewLoading = false
	m.resize()
	return tea.Batch(m.beginListing(), m.tick())
}

// tick starts the spinner once; it keeps itself running afterwards
func (m *FileBrowserModel) tick() tea.Cmd {
	if m.ticking {
		return nil
	}
	m.ticking = true
	return m.spinner.Tick
}

func (m *FileBrowserModel) bucketName() string {
	if b := m.ctrl.Bucket(); b != nil {
		return b.Name
	}
	return ""
}

// beginListing fetches the current listing; cached rows show meanwhile
func (m *FileBrowserModel) beginListing() tea.Cmd {
	key, gen, ok := m.ctrl.BeginListing()
	m.refreshTable()
	if !ok {
		return nil
	}
	logrus.Debugf("FileBrowser: listing %s/%s", key.Bucket, key.Prefix)
	return m.session.loadListing(key, gen)
}

// Update handles messages for the browser screen
func (m *FileBrowserModel) Update(msg tea.Msg) (*FileBrowserModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.windowWidth = msg.Width
		m.windowHeight = msg.Height
		m.help.Width = msg.Width
		m.resize()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case listingLoadedMsg:
		return m, m.applyListing(msg)

	case previewLoadedMsg:
		return m, m.applyPreview(msg)

	case operationDoneMsg:
		return m, m.settle(msg.outcome)

	case messaging.ExpiredMsg:
		m.status.Expire(msg)
		if !m.status.HasMessage() {
			m.shareURL = ""
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *FileBrowserModel) applyListing(msg listingLoadedMsg) tea.Cmd {
	if m.picker != nil && msg.key == m.picker.Key() && msg.key != m.ctrl.Key() {
		m.cache.Resolve(msg.key, msg.gen, msg.entries, msg.err)
		m.pickerCursor = 0
		return nil
	}
	if !m.ctrl.ApplyListing(msg.key, msg.gen, msg.entries, msg.err) {
		logrus.Debugf("FileBrowser: dropped listing of %s/%s", msg.key.Bucket, msg.key.Prefix)
		return nil
	}
	m.refreshTable()
	if msg.err != nil {
		logrus.WithError(msg.err).Error("failed to list objects")
		return m.status.SetMessage("Failed to list objects", messaging.MessageError)
	}
	return nil
}

func (m *FileBrowserModel) applyPreview(msg previewLoadedMsg) tea.Cmd {
	if msg.preview.Key != m.ctrl.PreviewKey() {
		m.ctrl.SetPreview(msg.preview)
		return nil
	}
	m.previewLoading = false
	m.ctrl.SetPreview(msg.preview)
	m.renderPreview()
	if msg.err != nil {
		logrus.WithError(msg.err).WithField("key", msg.preview.Key).Error("failed to load preview")
		return m.status.SetMessage("Failed to load preview", messaging.MessageError)
	}
	return nil
}

// settle applies a finished operation and refreshes whatever it invalidated
func (m *FileBrowserModel) settle(out browser.Outcome) tea.Cmd {
	m.busy = max(m.busy-1, 0)
	notice, isErr := m.ctrl.Settle(out)

	if out.Op == browser.OpMove && !out.Failed() && !out.Skipped() {
		m.mode = modeBrowse
		m.picker = nil
	}
	m.shareURL = out.URL
	if out.Op == browser.OpDownload || out.Op == browser.OpDownloadMany || out.Op == browser.OpDownloadFolder {
		for _, p := range out.Paths {
			logrus.Infof("FileBrowser: saved %s", p)
		}
	}

	var cmds []tea.Cmd
	switch {
	case isErr:
		cmds = append(cmds, m.status.SetMessage(notice, messaging.MessageError))
	case notice != "":
		cmds = append(cmds, m.status.SetMessage(notice, messaging.MessageSuccess))
	}
	if len(out.Invalidate) > 0 {
		cmds = append(cmds, m.beginListing())
	}
	m.refreshTable()
	return tea.Batch(cmds...)
}

// run dispatches an operation off the event loop
func (m *FileBrowserModel) run(op func(ctx context.Context) browser.Outcome) tea.Cmd {
	m.busy++
	return tea.Batch(m.session.run(op), m.tick())
}

func (m *FileBrowserModel) handleKey(msg tea.KeyMsg) (*FileBrowserModel, tea.Cmd) {
	if m.ctrl.Coord.Dialog().Open() {
		return m, m.handleDialogKey(msg)
	}
	switch m.mode {
	case modeSearch:
		return m, m.handleSearchKey(msg)
	case modeCreateFolder, modeUpload, modeDownloadDir:
		return m, m.handlePromptKey(msg)
	case modeMove:
		return m, m.handleMoveKey(msg)
	}
	return m, m.handleBrowseKey(msg)
}

// current returns the row under the cursor
func (m *FileBrowserModel) current() (browser.Entry, bool) {
	i := m.fileTable.Cursor()
	if i < 0 || i >= len(m.rows) {
		return browser.Entry{}, false
	}
	return m.rows[i], true
}

func (m *FileBrowserModel) handleBrowseKey(msg tea.KeyMsg) tea.Cmd {
	at := m.ctrl.Key()
	entry, hasEntry := m.current()
	isFile := hasEntry && !entry.IsFolder

	switch {
	case key.Matches(msg, m.keyMap.Quit):
		return tea.Quit

	case key.Matches(msg, m.keyMap.Up), key.Matches(msg, m.keyMap.Down):
		var cmd tea.Cmd
		m.fileTable, cmd = m.fileTable.Update(msg)
		return cmd

	case key.Matches(msg, m.keyMap.PrevPage):
		m.ctrl.Pager.Prev()
		m.refreshTable()
		m.fileTable.SetCursor(0)

	case key.Matches(msg, m.keyMap.NextPage):
		m.ctrl.Pager.Next()
		m.refreshTable()
		m.fileTable.SetCursor(0)

	case key.Matches(msg, m.keyMap.Open):
		if hasEntry {
			return m.activate(m.ctrl.ActivateEntry(entry))
		}

	case key.Matches(msg, m.keyMap.Back):
		return m.activate(m.ctrl.Up())

	case key.Matches(msg, m.keyMap.Select):
		if isFile {
			m.ctrl.Coord.Selection.Toggle(entry.Key)
			m.refreshTable()
		}

	case key.Matches(msg, m.keyMap.Download):
		if keys := m.ctrl.Coord.Selection.Keys(); len(keys) > 0 {
			return m.promptDownload(func(ctx context.Context, dir string) browser.Outcome {
				return m.orch.DownloadMany(ctx, at, keys, dir)
			})
		}
		if hasEntry {
			return m.downloadRow(at, entry)
		}

	case key.Matches(msg, m.keyMap.RowDownload):
		if hasEntry {
			return m.downloadRow(at, entry)
		}

	case key.Matches(msg, m.keyMap.Upload):
		return m.prompt(modeUpload, "Upload: ", "files or globs, separated by spaces", "")

	case key.Matches(msg, m.keyMap.NewFolder):
		return m.prompt(modeCreateFolder, "New folder: ", "folder name", "")

	case key.Matches(msg, m.keyMap.Delete):
		if keys := m.ctrl.Coord.Selection.Keys(); len(keys) > 0 {
			m.ctrl.Coord.OpenDeleteObjects(keys)
		} else if hasEntry {
			m.deleteRow(entry)
		}

	case key.Matches(msg, m.keyMap.RowDelete):
		if hasEntry {
			m.deleteRow(entry)
		}

	case key.Matches(msg, m.keyMap.Move):
		if keys := m.ctrl.Coord.Selection.Keys(); len(keys) > 0 {
			return m.openPicker(at, keys, false)
		}
		if isFile {
			return m.openPicker(at, []string{entry.Key}, true)
		}

	case key.Matches(msg, m.keyMap.RowMove):
		if isFile {
			return m.openPicker(at, []string{entry.Key}, true)
		}

	case key.Matches(msg, m.keyMap.CopyURL):
		if isFile {
			k := entry.Key
			return m.run(func(ctx context.Context) browser.Outcome {
				return m.orch.ShareURL(ctx, at, k)
			})
		}

	case key.Matches(msg, m.keyMap.Search):
		return m.prompt(modeSearch, "/", "filter by key", m.ctrl.Search())

	case key.Matches(msg, m.keyMap.Refresh):
		m.cache.Invalidate(at)
		m.refreshTable()
		return m.beginListing()

	case key.Matches(msg, m.keyMap.Buckets):
		return func() tea.Msg { return leaveBucketMsg{} }

	case key.Matches(msg, m.keyMap.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize()
	}
	return nil
}

// downloadRow asks where to save the row under the cursor, ignoring the
// selection
func (m *FileBrowserModel) downloadRow(at browser.ListingKey, e browser.Entry) tea.Cmd {
	switch {
	case e.IsParent:
		return nil
	case e.IsFolder:
		prefix := e.Key
		return m.promptDownload(func(ctx context.Context, dir string) browser.Outcome {
			return m.orch.DownloadFolder(ctx, at, prefix, dir)
		})
	default:
		k := e.Key
		return m.promptDownload(func(ctx context.Context, dir string) browser.Outcome {
			return m.orch.Download(ctx, at, k, dir)
		})
	}
}

// deleteRow opens a delete dialog aimed at the row alone
func (m *FileBrowserModel) deleteRow(e browser.Entry) {
	switch {
	case e.IsParent:
	case e.IsFolder:
		m.ctrl.Coord.OpenDeleteFolder(e.Key)
	default:
		m.ctrl.Coord.OpenDeleteTarget(e.Key)
	}
}

func (m *FileBrowserModel) openPicker(at browser.ListingKey, keys []string, target bool) tea.Cmd {
	m.picker = browser.NewMovePicker(at, keys)
	m.pickerTarget = target
	m.pickerCursor = 0
	m.mode = modeMove
	return m.loadPicker()
}

// activate follows up on a row activation
func (m *FileBrowserModel) activate(a browser.Activation) tea.Cmd {
	switch a {
	case browser.ActivatedFolder:
		m.previewLoading = false
		m.fileTable.SetCursor(0)
		m.resize()
		return m.beginListing()
	case browser.ActivatedPreview:
		p := m.ctrl.Preview()
		m.previewLoading = true
		m.resize()
		return m.session.loadPreview(m.bucketName(), p.Key)
	case browser.ClosedPreview:
		m.previewLoading = false
		m.resize()
	case browser.LeftBucket:
		return func() tea.Msg { return leaveBucketMsg{} }
	}
	return nil
}

func (m *FileBrowserModel) prompt(mode inputMode, label, placeholder, value string) tea.Cmd {
	m.mode = mode
	m.input.Prompt = label
	m.input.Placeholder = placeholder
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *FileBrowserModel) closePrompt() {
	m.mode = modeBrowse
	m.input.Blur()
	m.input.SetValue("")
	m.pendingSave = nil
}

func (m *FileBrowserModel) promptDownload(save downloadFunc) tea.Cmd {
	cmd := m.prompt(modeDownloadDir, "Save to: ", "directory", m.downloadDir)
	m.pendingSave = save
	return cmd
}

func (m *FileBrowserModel) handleSearchKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.ctrl.SetSearch("")
		m.closePrompt()
		m.refreshTable()
		return nil
	case tea.KeyEnter:
		m.mode = modeBrowse
		m.input.Blur()
		return nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.ctrl.SetSearch(m.input.Value())
	m.refreshTable()
	return cmd
}

func (m *FileBrowserModel) handlePromptKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.closePrompt()
		return nil
	case tea.KeyEnter:
		return m.submitPrompt()
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *FileBrowserModel) submitPrompt() tea.Cmd {
	value := m.input.Value()
	mode, save := m.mode, m.pendingSave
	at := m.ctrl.Key()
	m.closePrompt()

	switch mode {
	case modeCreateFolder:
		var existing []browser.Entry
		if l, ok := m.ctrl.Listing(); ok {
			existing = l.Entries
		}
		return m.run(func(ctx context.Context) browser.Outcome {
			return m.orch.CreateFolder(ctx, at, value, existing)
		})

	case modeUpload:
		files, err := browser.PickFiles(value)
		if err != nil {
			return m.localFailure(browser.OpUpload, err)
		}
		return m.run(func(ctx context.Context) browser.Outcome {
			return m.orch.Upload(ctx, at, files)
		})

	case modeDownloadDir:
		if save == nil {
			return nil
		}
		dir, err := browser.PickDirectory(value)
		if err != nil {
			return m.localFailure(browser.OpDownload, err)
		}
		m.downloadDir = dir
		if m.userData != nil {
			if err := m.userData.RememberDownloadDir(dir); err != nil {
				logrus.WithError(err).Warn("failed to save download directory")
			}
		}
		return m.run(func(ctx context.Context) browser.Outcome { return save(ctx, dir) })
	}
	return nil
}

// localFailure reports a local picker error the same way an operation would
func (m *FileBrowserModel) localFailure(op browser.Op, err error) tea.Cmd {
	if browser.IsValidation(err) {
		logrus.Debugf("%s skipped: %v", op, err)
		return nil
	}
	logrus.WithError(err).WithField("op", op.String()).Error("operation failed")
	return m.status.SetMessage("Failed to "+op.String(), messaging.MessageError)
}

func (m *FileBrowserModel) handleDialogKey(msg tea.KeyMsg) tea.Cmd {
	if m.busy > 0 {
		return nil
	}
	dialog := m.ctrl.Coord.Dialog()
	at := m.ctrl.Key()

	switch {
	case key.Matches(msg, m.keyMap.Confirm):
		switch dialog.Kind {
		case browser.DialogDeleteObjects:
			return m.run(func(ctx context.Context) browser.Outcome {
				return m.orch.DeleteObjects(ctx, at, dialog.Keys)
			})
		case browser.DialogDeleteFolder:
			return m.run(func(ctx context.Context) browser.Outcome {
				return m.orch.DeleteFolder(ctx, at, dialog.Prefix)
			})
		case browser.DialogMove:
			if m.picker == nil {
				m.ctrl.Coord.Close()
				return nil
			}
			destination := m.picker.Destination()
			return m.run(func(ctx context.Context) browser.Outcome {
				return m.orch.Move(ctx, at, dialog.Keys, destination)
			})
		}

	case key.Matches(msg, m.keyMap.Cancel):
		m.ctrl.Coord.Close()
	}
	return nil
}

// pickerRows are the folders shown by the move picker, with a parent row
// when not at the root
func (m *FileBrowserModel) pickerRows() []browser.Entry {
	if m.picker == nil {
		return nil
	}
	var rows []browser.Entry
	if m.picker.Destination() != "" {
		rows = append(rows, browser.ParentEntry(m.picker.Destination()))
	}
	if l, ok := m.cache.Get(m.picker.Key()); ok && l.State == browser.ListingReady {
		rows = append(rows, browser.Folders(l.Entries)...)
	}
	return rows
}

func (m *FileBrowserModel) loadPicker() tea.Cmd {
	key := m.picker.Key()
	return m.session.loadListing(key, m.cache.Begin(key))
}

func (m *FileBrowserModel) handleMoveKey(msg tea.KeyMsg) tea.Cmd {
	rows := m.pickerRows()
	switch {
	case msg.Type == tea.KeyEsc:
		m.mode = modeBrowse
		m.picker = nil

	case key.Matches(msg, m.keyMap.Up):
		if m.pickerCursor > 0 {
			m.pickerCursor--
		}

	case key.Matches(msg, m.keyMap.Down):
		if m.pickerCursor < len(rows)-1 {
			m.pickerCursor++
		}

	case key.Matches(msg, m.keyMap.Open):
		if m.pickerCursor < len(rows) {
			row := rows[m.pickerCursor]
			if row.IsParent {
				m.picker.Up()
			} else {
				m.picker.Enter(row.Key)
			}
			m.pickerCursor = 0
			return m.loadPicker()
		}

	case key.Matches(msg, m.keyMap.Back):
		m.picker.Up()
		m.pickerCursor = 0
		return m.loadPicker()

	case key.Matches(msg, m.keyMap.Confirm):
		if m.pickerTarget {
			m.ctrl.Coord.OpenMoveTarget(m.picker.Keys()[0])
		} else {
			m.ctrl.Coord.OpenMove(m.picker.Keys())
		}
	}
	return nil
}

// resize recomputes pane sizes for the window and preview state
func (m *FileBrowserModel) resize() {
	listWidth := m.listWidth()
	m.fileTable.SetColumns(listColumns(listWidth))
	m.fileTable.SetWidth(listWidth)

	footer := tuiconfig.FooterLines
	if m.help.ShowAll {
		footer += len(m.keyMap.FullHelp()[0]) - 1
	}
	m.ctrl.Pager.Resize(m.windowHeight - tuiconfig.HeaderLines - footer - tuiconfig.TableHeaderLines)

	previewWidth := m.windowWidth - listWidth - 1
	m.previewPane.Width = max(previewWidth-tuiconfig.PreviewChromeCols, 1)
	m.previewPane.Height = max(m.windowHeight-tuiconfig.HeaderLines-footer-tuiconfig.PreviewChromeLines, 1)

	m.refreshTable()
	m.renderPreview()
}

func (m *FileBrowserModel) listWidth() int {
	if m.ctrl.Preview() == nil {
		return m.windowWidth
	}
	return int(float64(m.windowWidth) * tuiconfig.ListWidthRatio)
}

// refreshTable rebuilds the visible page from the controller
func (m *FileBrowserModel) refreshTable() {
	m.rows = browser.Visible(m.ctrl.Pager, m.ctrl.Rows())

	rows := make([]table.Row, 0, len(m.rows))
	for _, e := range m.rows {
		rows = append(rows, m.tableRow(e))
	}
	m.fileTable.SetRows(rows)

	state := m.ctrl.Pager.State()
	m.fileTable.SetHeight(max(state.PageSize, 1) + tuiconfig.TableHeaderLines)
	if m.fileTable.Cursor() >= len(rows) {
		m.fileTable.SetCursor(max(len(rows)-1, 0))
	}
}

func (m *FileBrowserModel) tableRow(e browser.Entry) table.Row {
	category := storage.FileCategory(e.Key)
	switch {
	case e.IsParent:
		category = "parent"
	case e.IsFolder:
		category = "folder"
	}

	mark := "  "
	if m.ctrl.Coord.Selection.Has(e.Key) {
		mark = "● "
	}
	name := mark + theme.FileIcon(category) + " " + e.Label
	if e.IsFolder && !e.IsParent {
		name += "/"
	}

	size, class, modified := "", "", ""
	if e.Size != nil {
		size = humanize.IBytes(uint64(*e.Size))
	}
	if !e.IsFolder {
		class = storage.StorageClassName(e.StorageClass)
	}
	if e.LastModified != nil {
		modified = e.LastModified.Local().Format("2006-01-02 15:04")
	}
	return table.Row{name, size, class, modified}
}

// renderPreview prepares the preview pane content
func (m *FileBrowserModel) renderPreview() {
	p := m.ctrl.Preview()
	if p == nil || m.previewLoading {
		m.previewPane.SetContent("")
		return
	}

	switch p.Kind {
	case browser.PreviewImage:
		if p.Path == "" || m.renderer == nil {
			m.previewPane.SetContent(m.metadata(p.Key))
			return
		}
		out, err := m.renderer.Render(p.Path, m.previewPane.Width, m.previewPane.Height)
		if err != nil {
			logrus.WithError(err).WithField("key", p.Key).Warn("failed to render image")
			m.previewPane.SetContent(m.metadata(p.Key))
			return
		}
		m.previewPane.SetContent(out)
	case browser.PreviewText:
		m.previewPane.SetContent(p.Text)
	default:
		m.previewPane.SetContent(m.metadata(p.Key))
	}
	m.previewPane.GotoTop()
}

// metadata describes an object that has no visual preview
func (m *FileBrowserModel) metadata(objectKey string) string {
	lines := []string{
		theme.SectionHeaderStyle().Render(browser.BaseOf(objectKey)),
		"",
	}
	for _, e := range m.ctrl.Entries() {
		if e.Key != objectKey {
			continue
		}
		if e.Size != nil {
			lines = append(lines, fmt.Sprintf("Size:     %s (%s bytes)", humanize.IBytes(uint64(*e.Size)), humanize.Comma(*e.Size)))
		}
		if e.LastModified != nil {
			lines = append(lines, fmt.Sprintf("Modified: %s", humanize.Time(*e.LastModified)))
		}
		lines = append(lines, fmt.Sprintf("Class:    %s", storage.StorageClassName(e.StorageClass)))
		break
	}
	lines = append(lines, fmt.Sprintf("Type:     %s", storage.FileCategory(objectKey)), "",
		theme.SecondaryTextStyle().Render("No preview available"))
	return strings.Join(lines, "\n")
}

// View renders the browser screen
func (m *FileBrowserModel) View() string {
	if d := m.ctrl.Coord.Dialog(); d.Open() {
		return lipgloss.Place(m.windowWidth, m.windowHeight, lipgloss.Center, lipgloss.Center, m.renderDialog(d))
	}

	header := lipgloss.JoinVertical(lipgloss.Left, m.renderTitle(), m.renderBreadcrumbs())

	var body string
	if m.mode == modeMove {
		body = m.renderPicker()
	} else {
		body = m.renderListing()
		if m.ctrl.Preview() != nil {
			body = lipgloss.JoinHorizontal(lipgloss.Top, body, " ", m.renderPreviewPane())
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, body, m.renderFooter())
}

func (m *FileBrowserModel) renderTitle() string {
	title := theme.HeaderStyle().Render("🪣 " + m.bucketName())
	if n := m.ctrl.Coord.Selection.Len(); n > 0 {
		title += theme.PromptStyle().Render(fmt.Sprintf("  %d selected", n))
	}
	if s := m.ctrl.Search(); s != "" && m.mode != modeSearch {
		title += theme.SecondaryTextStyle().Render("  filter: " + s)
	}
	return title
}

func (m *FileBrowserModel) renderBreadcrumbs() string {
	crumbs := browser.Breadcrumbs(m.ctrl.Prefix())
	parts := []string{theme.BreadcrumbStyle(len(crumbs) == 0).Render(m.bucketName())}
	for i, c := range crumbs {
		parts = append(parts, theme.BreadcrumbStyle(i == len(crumbs)-1).Render(c.Label))
	}
	return strings.Join(parts, theme.FooterStyle().Render(" / "))
}

func (m *FileBrowserModel) renderListing() string {
	width := m.listWidth()
	l, ok := m.ctrl.Listing()
	switch {
	case !ok || l.State == browser.ListingPending:
		return lipgloss.NewStyle().Width(width).Render(m.spinner.View() + theme.LoadingStyle().Render(" Loading..."))
	case l.State == browser.ListingFailed:
		return lipgloss.NewStyle().Width(width).Render(
			theme.ErrorStyle().Render("Failed to list objects") + "\n" +
				theme.FooterStyle().Render("Press 'r' to retry"))
	}

	view := m.fileTable.View()
	if bar := m.renderPageBar(); bar != "" {
		view = lipgloss.JoinVertical(lipgloss.Left, view, "", bar)
	}
	return lipgloss.NewStyle().Width(width).Render(view)
}

// renderPageBar draws the pager links, empty when everything fits
func (m *FileBrowserModel) renderPageBar() string {
	links := m.ctrl.Pager.Links()
	if links == nil {
		return ""
	}
	parts := make([]string, 0, len(links))
	for _, l := range links {
		switch l.Kind {
		case browser.LinkPrev:
			parts = append(parts, theme.PageLinkStyle(false).Render("‹"))
		case browser.LinkNext:
			parts = append(parts, theme.PageLinkStyle(false).Render("›"))
		case browser.LinkEllipsis:
			parts = append(parts, theme.FooterStyle().Render("…"))
		default:
			parts = append(parts, theme.PageLinkStyle(l.Current).Render(fmt.Sprint(l.Page)))
		}
	}
	return strings.Join(parts, " ")
}

func (m *FileBrowserModel) renderPreviewPane() string {
	p := m.ctrl.Preview()
	width := m.windowWidth - m.listWidth() - 1
	height := m.windowHeight - tuiconfig.HeaderLines - tuiconfig.FooterLines - 2

	title := theme.SectionHeaderStyle().Render(browser.BaseOf(p.Key))
	content := m.previewPane.View()
	if m.previewLoading {
		content = m.spinner.View() + theme.LoadingStyle().Render(" Loading preview...")
	}
	return theme.PanelStyle(max(width-2, 1), max(height, 1)).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, "", content))
}

func (m *FileBrowserModel) renderPicker() string {
	lines := []string{
		theme.PromptStyle().Render(fmt.Sprintf("Move %d file(s) to /%s", len(m.picker.Keys()), m.picker.Destination())),
		"",
	}
	if l, ok := m.cache.Get(m.picker.Key()); !ok || l.State == browser.ListingPending {
		lines = append(lines, m.spinner.View()+theme.LoadingStyle().Render(" Loading folders..."))
	}
	for i, row := range m.pickerRows() {
		label := theme.FileIcon("folder") + " " + row.Label
		if row.IsParent {
			label = theme.FileIcon("parent") + " " + row.Label
		}
		if i == m.pickerCursor {
			label = theme.TableStyles().Selected.Render("▶ " + label)
		} else {
			label = "  " + label
		}
		lines = append(lines, label)
	}
	lines = append(lines, "", theme.FooterStyle().Render("enter open · ⌫ up · y move here · esc cancel"))
	return strings.Join(lines, "\n")
}

func (m *FileBrowserModel) renderDialog(d browser.Dialog) string {
	var title, body string
	borderColor := theme.ColorBrightRed
	switch d.Kind {
	case browser.DialogDeleteObjects:
		title = fmt.Sprintf("Delete %d file(s)?", len(d.Keys))
		body = listPreview(d.Keys, 8)
	case browser.DialogDeleteFolder:
		title = "Delete folder and everything in it?"
		body = d.Prefix
	case browser.DialogMove:
		borderColor = theme.ColorBrightBlue
		dest := "/"
		if m.picker != nil {
			dest = "/" + m.picker.Destination()
		}
		title = fmt.Sprintf("Move %d file(s) to %s?", len(d.Keys), dest)
		body = listPreview(d.Keys, 8)
	}

	footer := theme.FooterStyle().Render("y confirm · n cancel")
	if m.busy > 0 {
		footer = m.spinner.View() + theme.LoadingStyle().Render(" Working...")
	}
	content := lipgloss.JoinVertical(lipgloss.Left,
		theme.PromptStyle().Render(title), "", body, "", footer)
	return theme.DialogStyle(tuiconfig.DialogWidth, borderColor).Render(content)
}

// listPreview shows up to n keys and a count of the rest
func listPreview(keys []string, n int) string {
	if len(keys) <= n {
		return strings.Join(keys, "\n")
	}
	return strings.Join(keys[:n], "\n") + fmt.Sprintf("\n… and %d more", len(keys)-n)
}

func (m *FileBrowserModel) renderFooter() string {
	var status string
	switch {
	case m.mode == modeSearch || m.mode == modeCreateFolder || m.mode == modeUpload || m.mode == modeDownloadDir:
		status = m.input.View()
	case m.status.HasMessage():
		status = m.status.RenderMessage()
		if m.shareURL != "" {
			status += " " + theme.URLStyle().Render(theme.Hyperlink(m.shareURL, m.shareURL))
		}
	case m.busy > 0:
		status = m.spinner.View() + theme.LoadingStyle().Render(" Working...")
	}
	return lipgloss.JoinVertical(lipgloss.Left, status, m.help.View(m.keyMap))
}
