// Package progress reports render progress on a terminal
package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

const (
	barWidth       = 30
	redrawInterval = 100 * time.Millisecond
)

// Bar is a single-line progress bar counting rendered pixels. Increment is
// safe to call from many workers at once.
type Bar struct {
	out   *termenv.Output
	label string

	total atomic.Int64
	done  atomic.Int64

	mu          sync.Mutex
	lastPercent int
	lastDraw    time.Time
	started     time.Time
}

// New creates a bar writing to w. Colors are only used when w is a terminal.
func New(w io.Writer) *Bar {
	var opts []termenv.OutputOption
	if !isTerminal(w) {
		opts = append(opts, termenv.WithProfile(termenv.Ascii))
	}
	out := termenv.NewOutput(w, opts...)

	return &Bar{
		out:         out,
		label:       out.String("Rendering").Bold().Foreground(out.Color("4")).String(),
		lastPercent: -1,
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Start resets the bar for total units of work
func (b *Bar) Start(total int) {
	b.total.Store(int64(total))
	b.done.Store(0)

	b.mu.Lock()
	b.lastPercent = -1
	b.started = time.Now()
	b.lastDraw = time.Time{}
	b.mu.Unlock()

	b.draw(false)
}

// Increment records one finished unit
func (b *Bar) Increment() {
	b.done.Add(1)
	b.draw(false)
}

// Finish draws the final state and ends the line
func (b *Bar) Finish() {
	b.draw(true)
	b.mu.Lock()
	fmt.Fprintln(b.out)
	b.mu.Unlock()
}

func (b *Bar) draw(force bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Loaded under the lock so the drawn count never goes backwards
	done, total := b.done.Load(), b.total.Load()
	percent := 100
	if total > 0 {
		percent = int(done * 100 / total)
	}

	now := time.Now()
	if !force && percent == b.lastPercent && now.Sub(b.lastDraw) < redrawInterval {
		return
	}
	b.lastPercent = percent
	b.lastDraw = now

	filled := percent * barWidth / 100
	if filled > barWidth {
		filled = barWidth
	}
	elapsed := now.Sub(b.started).Round(100 * time.Millisecond)

	fmt.Fprintf(b.out, "\r%s [%s%s] %3d%% %s",
		b.label, strings.Repeat("=", filled), strings.Repeat(" ", barWidth-filled), percent, elapsed)
}
