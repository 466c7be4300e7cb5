package cli

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"github.com/custodia-labs/styleaudit/internal/core/ports/driven"
)

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) //nolint:gosec // fd fits in int
}

func newProgressBar(w io.Writer, total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowBytes(false),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(w)
		}),
	)
}

var _ driven.ProgressSink = (*auditProgress)(nil)

// auditProgress renders audit status messages.
// On a terminal it drives a progress bar from Progress calls and shows the
// latest message as its description; elsewhere it prints one line per message.
type auditProgress struct {
	w     io.Writer
	total int
	tty   bool

	mu      sync.Mutex
	bar     *progressbar.ProgressBar
	current int
}

func newAuditProgress(w io.Writer, total int) *auditProgress {
	p := &auditProgress{w: w, total: total, tty: isTerminal(w)}
	if p.tty && total > 0 {
		p.bar = newProgressBar(w, total, "[cyan]Auditing[reset]")
	}
	return p
}

// Status implements driven.StatusSink.
func (p *auditProgress) Status(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.bar == nil {
		fmt.Fprintln(p.w, message)
		return
	}
	p.bar.Describe("[cyan]" + truncate(message, 40) + "[reset]")
}

// Progress implements driven.ProgressSink. current is 1-based and names the
// chunk about to be audited.
func (p *auditProgress) Progress(current, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = current
	if p.bar == nil {
		return
	}
	if total != p.total {
		p.total = total
		p.bar.ChangeMax(total)
	}
	_ = p.bar.Set(current - 1)
}

// Done completes the bar.
func (p *auditProgress) Done() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
