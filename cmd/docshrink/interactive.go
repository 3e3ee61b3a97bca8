package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/term"
)

type interactiveCtxKeyType struct{}

var interactiveCtxKey = interactiveCtxKeyType{}

// Progress is drawn on stderr, so that is the stream that has to be a terminal.
func isInteractiveEnvironment() bool {
	if os.Getenv("CI") != "" {
		return false
	}
	return term.IsTerminal(int(os.Stderr.Fd()))
}

func withInteractive(ctx context.Context, interactive bool) context.Context {
	return context.WithValue(ctx, interactiveCtxKey, interactive)
}

func isInteractive(ctx context.Context) bool {
	interactive, ok := ctx.Value(interactiveCtxKey).(bool)
	if !ok {
		return false
	}
	return interactive
}

// progressLine redraws a single status line for image progress.
type progressLine struct {
	mu    sync.Mutex
	w     io.Writer
	drawn bool
}

func newProgressLine(w io.Writer) *progressLine {
	return &progressLine{w: w}
}

func (p *progressLine) Update(label string, processed, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	percent := 0
	if total > 0 {
		percent = processed * 100 / total
	}
	fmt.Fprintf(p.w, "\r\033[K%s: compressing images %d/%d (%d%%)", label, processed, total, percent)
	p.drawn = true
}

// Clear erases the line if anything was drawn.
func (p *progressLine) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.drawn {
		fmt.Fprint(p.w, "\r\033[K")
		p.drawn = false
	}
}
