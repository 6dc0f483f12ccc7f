package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/HaiFongPan/r2s3-browser/internal/browser"
	"github.com/HaiFongPan/r2s3-browser/internal/config"
	"github.com/HaiFongPan/r2s3-browser/internal/storage"
	tuiconfig "github.com/HaiFongPan/r2s3-browser/internal/tui/config"
	"github.com/HaiFongPan/r2s3-browser/internal/tui/messaging"
)

type screen int

const (
	screenBuckets screen = iota
	screenBrowser
)

// Options wire the interactive browser to one connection
type Options struct {
	Backend      storage.Backend
	ConnectionID string
	UserData     *config.UserData
	UI           config.UIConfig
	Timeout      time.Duration
	DownloadDir  string

	// InitialBucket opens straight into a bucket instead of the bucket list
	InitialBucket string

	// CacheDir holds preview images; defaults to a temp directory
	CacheDir string
}

// App is the root model: the bucket list and the browser of the chosen bucket
type App struct {
	screen  screen
	ctrl    *browser.Controller
	blobs   *browser.BlobStore
	buckets *BucketSelectorModel
	files   *FileBrowserModel

	provider      storage.Provider
	initialBucket string
}

// NewApp builds the screens for a connection
func NewApp(opts Options) (*App, error) {
	dir := opts.CacheDir
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "r2s3-browser", "previews")
	}
	blobs, err := browser.NewBlobStore(dir, tuiconfig.PreviewCacheBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to create preview cache: %w", err)
	}

	sess := session{backend: opts.Backend, blobs: blobs, timeout: opts.Timeout}
	cache := browser.NewCache()
	ctrl := browser.NewController(opts.ConnectionID, cache, blobs, browser.TerminalLayout)
	orch := browser.NewOrchestrator(opts.Backend, nil, nil)

	var renderer *ImageRenderer
	if opts.UI.ImagePreview {
		renderer = NewImageRenderer(DetectProtocol(opts.UI.ImageProtocol), opts.UI.PreviewColumns, opts.UI.PreviewRows)
	}

	return &App{
		ctrl:          ctrl,
		blobs:         blobs,
		buckets:       NewBucketSelectorModel(sess, opts.ConnectionID, opts.UserData),
		files:         NewFileBrowserModel(sess, ctrl, cache, orch, renderer, opts.UserData, opts.DownloadDir),
		provider:      opts.Backend.Provider(),
		initialBucket: opts.InitialBucket,
	}, nil
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	if a.initialBucket != "" {
		return a.openBucket(storage.BucketInfo{Name: a.initialBucket, Provider: a.provider})
	}
	return a.buckets.Init()
}

func (a *App) openBucket(b storage.BucketInfo) tea.Cmd {
	logrus.Infof("App: opening bucket %s", b.Name)
	a.ctrl.SelectBucket(b)
	a.ctrl.Activate()
	a.screen = screenBrowser
	return a.files.Start()
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		var c1, c2 tea.Cmd
		a.buckets, c1 = a.buckets.Update(msg)
		a.files, c2 = a.files.Update(msg)
		return a, tea.Batch(c1, c2)

	case spinner.TickMsg, messaging.ExpiredMsg:
		// spinners ignore ticks carrying another id, status lines ignore
		// expiries for messages they no longer show
		var c1, c2 tea.Cmd
		a.buckets, c1 = a.buckets.Update(msg)
		a.files, c2 = a.files.Update(msg)
		return a, tea.Batch(c1, c2)

	case bucketChosenMsg:
		return a, a.openBucket(msg.bucket)

	case leaveBucketMsg:
		a.ctrl.LeaveBucket()
		a.ctrl.Deactivate()
		a.screen = screenBuckets
		if len(a.buckets.buckets) == 0 {
			a.buckets.loading = true
			return a, tea.Batch(a.buckets.session.loadBuckets(), a.buckets.spinner.Tick)
		}
		return a, nil

	case bucketsLoadedMsg, bucketRememberedMsg:
		var cmd tea.Cmd
		a.buckets, cmd = a.buckets.Update(msg)
		return a, cmd

	case listingLoadedMsg, previewLoadedMsg, operationDoneMsg:
		// results for a screen that is gone are still handed over so the
		// controller can discard them and release preview files
		var cmd tea.Cmd
		a.files, cmd = a.files.Update(msg)
		return a, cmd
	}

	var cmd tea.Cmd
	if a.screen == screenBrowser {
		a.files, cmd = a.files.Update(msg)
	} else {
		a.buckets, cmd = a.buckets.Update(msg)
	}
	return a, cmd
}

// View implements tea.Model
func (a *App) View() string {
	if a.screen == screenBrowser && a.ctrl.Bucket() != nil {
		return a.files.View()
	}
	return a.buckets.View()
}

// Close releases the preview cache
func (a *App) Close() error {
	a.ctrl.Deactivate()
	return a.blobs.Close()
}

// Run starts the interactive browser and blocks until it exits
func Run(opts Options) error {
	app, err := NewApp(opts)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logrus.WithError(err).Warn("failed to clean up preview cache")
		}
	}()

	program := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err = program.Run()
	return err
}
