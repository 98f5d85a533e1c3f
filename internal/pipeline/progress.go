package pipeline

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// ProgressFunc is the progress sink the core reports through. The scanner
// never imports a terminal library; the CLI decides what progress looks
// like.
type ProgressFunc func(stage string, detail string)

// redrawInterval throttles in-place line updates so fast scans do not
// spend their time repainting stderr.
const redrawInterval = 80 * time.Millisecond

// Progress renders scan stages as a single self-overwriting stderr line:
//
//	[loct] extract: src/app.ts (0.4s)
//
// Unlike an animated spinner there is no background goroutine; a line is
// drawn only when the scanner reports an event, rate-limited to
// redrawInterval, so piped output and CI logs stay clean. When the writer
// is not a TTY every draw is suppressed and only Done prints.
type Progress struct {
	mu        sync.Mutex
	writer    *os.File
	isTTY     bool
	start     time.Time
	lastDraw  time.Time
	lastStage string
	lastWidth int
}

// NewProgress creates a Progress writing to w (typically os.Stderr).
// isTTY is decided by the caller so this package stays free of terminal
// detection.
func NewProgress(w *os.File, isTTY bool) *Progress {
	return &Progress{
		writer: w,
		isTTY:  isTTY,
		start:  time.Now(),
	}
}

// Func adapts the Progress into the sink the pipeline passes to the core.
func (p *Progress) Func() ProgressFunc {
	return p.Step
}

// Step records a stage event. The first event of each stage always draws;
// within a stage, redraws are throttled.
func (p *Progress) Step(stage, detail string) {
	if !p.isTTY {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now()
	if stage == p.lastStage && now.Sub(p.lastDraw) < redrawInterval {
		return
	}
	p.lastStage = stage
	p.lastDraw = now

	line := fmt.Sprintf("[loct] %s: %s (%.1fs)", stage, detail, now.Sub(p.start).Seconds())
	p.draw(line)
}

// Done clears the progress line and prints a final summary. Unlike Step it
// also prints when the writer is not a TTY, so scripts still see the
// outcome.
func (p *Progress) Done(summary string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.isTTY {
		p.clear()
	}
	if summary != "" {
		fmt.Fprintln(p.writer, summary)
	}
}

// draw repaints the current line, padding over any longer previous draw.
func (p *Progress) draw(line string) {
	pad := ""
	if n := p.lastWidth - len(line); n > 0 {
		for i := 0; i < n; i++ {
			pad += " "
		}
	}
	fmt.Fprintf(p.writer, "\r%s%s", line, pad)
	p.lastWidth = len(line)
}

// clear erases the in-place line.
func (p *Progress) clear() {
	if p.lastWidth == 0 {
		return
	}
	fmt.Fprintf(p.writer, "\r%*s\r", p.lastWidth, "")
	p.lastWidth = 0
}
