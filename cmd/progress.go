package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/HaiFongPan/r2s3-browser/internal/browser"
	"github.com/HaiFongPan/r2s3-browser/internal/storage"
)

// progressMinSize is the smallest known transfer that gets a bar
const progressMinSize = 100 * 1024

var noProgress bool

// activeBar is the bar of the running transfer command, if any
var activeBar *progressBar

// progressBar redraws one status line per transfer on a terminal stream
type progressBar struct {
	mu      sync.Mutex
	out     io.Writer
	starts  map[string]time.Time
	lastLen int
}

func newProgressBar(out io.Writer) *progressBar {
	return &progressBar{out: out, starts: make(map[string]time.Time)}
}

// update is a storage.ProgressFunc
func (p *progressBar) update(name string, done, total int64) {
	if total > 0 && total < progressMinSize {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	start, ok := p.starts[name]
	if !ok {
		start = time.Now()
		p.starts[name] = start
	}
	line := formatProgress(name, done, total, time.Since(start))
	if p.lastLen > len(line) {
		fmt.Fprintf(p.out, "\r%s\r", strings.Repeat(" ", p.lastLen))
	}
	fmt.Fprintf(p.out, "\r%s", line)
	p.lastLen = len(line)

	if total > 0 && done >= total {
		fmt.Fprintln(p.out)
		p.lastLen = 0
	}
}

// finish ends a line left open by a transfer of unknown size
func (p *progressBar) finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.lastLen > 0 {
		fmt.Fprintln(p.out)
		p.lastLen = 0
	}
}

// formatProgress renders "name [====    ] 50.0% (1.0 MiB/2.0 MiB) 512 KiB/s".
// Without a total only the byte count and speed are shown.
func formatProgress(name string, done, total int64, elapsed time.Duration) string {
	var speed string
	if elapsed.Seconds() > 0.1 {
		speed = fmt.Sprintf(" %s/s", humanize.IBytes(uint64(float64(done)/elapsed.Seconds())))
	}
	if total <= 0 {
		return fmt.Sprintf("%s %s%s", name, humanize.IBytes(uint64(done)), speed)
	}

	percentage := float64(done) / float64(total) * 100
	const barWidth = 40
	filled := min(int(percentage*barWidth/100), barWidth)
	bar := "[" + strings.Repeat("=", filled) + strings.Repeat(" ", barWidth-filled) + "]"
	return fmt.Sprintf("%s %s %.1f%% (%s/%s)%s", name, bar, percentage,
		humanize.IBytes(uint64(done)), humanize.IBytes(uint64(total)), speed)
}

// transferOrchestrator is an orchestrator whose transfers draw a progress
// bar on stderr unless output is quiet or progress is turned off.
func transferOrchestrator(backend storage.Backend) *browser.Orchestrator {
	orch := browser.NewOrchestrator(backend, nil, nil)
	if quiet || noProgress {
		return orch
	}
	activeBar = newProgressBar(os.Stderr)
	return orch.WithProgress(activeBar.update)
}
