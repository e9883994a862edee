package ui

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/tartampluch/guild-recruiter/internal/config"
)

// successMessages are rendered in the success colour.
var successMessages = map[string]bool{
	config.MsgInviteSent:  true,
	config.MsgCycleDone:   true,
	config.MsgRunStarted:  true,
	config.MsgRunResumed:  true,
	config.MsgQueueBuilt:  true,
	config.MsgQueueResume: true,
}

// ConsoleLine is one rendered console entry.
type ConsoleLine struct {
	Text  string
	Color fyne.ThemeColorName
}

// LogConsole keeps the last lines of user-facing log output and renders
// them into a RichText widget.
type LogConsole struct {
	mu    sync.Mutex
	lines []ConsoleLine
	max   int

	Text   *widget.RichText
	Scroll *container.Scroll
}

// NewLogConsole creates a console retaining at most maxLines lines.
func NewLogConsole(maxLines int) *LogConsole {
	c := &LogConsole{max: maxLines}
	c.Text = widget.NewRichText()
	c.Text.Wrapping = fyne.TextWrapWord
	c.Scroll = container.NewVScroll(c.Text)
	return c
}

// Append adds a timestamped line, dropping the oldest beyond the limit.
func (c *LogConsole) Append(at time.Time, level slog.Level, msg string) {
	line := ConsoleLine{
		Text:  at.Format(config.TimeFormatLog) + " - " + msg,
		Color: colorFor(level, msg),
	}

	c.mu.Lock()
	c.lines = append(c.lines, line)
	if over := len(c.lines) - c.max; c.max > 0 && over > 0 {
		c.lines = append(c.lines[:0:0], c.lines[over:]...)
	}
	c.mu.Unlock()

	// Lines logged before the app exists are rendered with the next one.
	if fyne.CurrentApp() == nil {
		return
	}
	fyne.Do(c.render)
}

// Lines returns a copy of the retained lines, oldest first.
func (c *LogConsole) Lines() []ConsoleLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]ConsoleLine(nil), c.lines...)
}

func (c *LogConsole) render() {
	lines := c.Lines()
	segs := make([]widget.RichTextSegment, 0, len(lines))
	for _, l := range lines {
		segs = append(segs, &widget.TextSegment{
			Text:  l.Text,
			Style: widget.RichTextStyle{ColorName: l.Color},
		})
	}
	c.Text.Segments = segs
	c.Text.Refresh()
	c.Scroll.ScrollToBottom()
}

func colorFor(level slog.Level, msg string) fyne.ThemeColorName {
	switch {
	case level >= slog.LevelError:
		return theme.ColorNameError
	case level >= slog.LevelWarn:
		return theme.ColorNameWarning
	case successMessages[msg]:
		return theme.ColorNameSuccess
	default:
		return theme.ColorNameForeground
	}
}

// ConsoleHandler tees slog records: everything goes to the wrapped handler,
// and Info and above also land in the console.
type ConsoleHandler struct {
	next    slog.Handler
	console *LogConsole
	attrs   []slog.Attr
}

// NewConsoleHandler wraps next.
func NewConsoleHandler(next slog.Handler, console *LogConsole) *ConsoleHandler {
	return &ConsoleHandler{next: next, console: console}
}

func (h *ConsoleHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= slog.LevelInfo || h.next.Enabled(ctx, level)
}

func (h *ConsoleHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelInfo {
		msg := r.Message
		if errText := errorAttr(h.attrs, r); errText != "" {
			msg += ": " + errText
		}
		h.console.Append(r.Time, r.Level, msg)
	}
	if h.next.Enabled(ctx, r.Level) {
		return h.next.Handle(ctx, r)
	}
	return nil
}

func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ConsoleHandler{
		next:    h.next.WithAttrs(attrs),
		console: h.console,
		attrs:   append(append([]slog.Attr(nil), h.attrs...), attrs...),
	}
}

func (h *ConsoleHandler) WithGroup(name string) slog.Handler {
	return &ConsoleHandler{next: h.next.WithGroup(name), console: h.console, attrs: h.attrs}
}

// errorAttr finds the error attribute on the record or its logger.
func errorAttr(attrs []slog.Attr, r slog.Record) string {
	var out string
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == config.LogKeyError {
			out = a.Value.String()
			return false
		}
		return true
	})
	if out != "" {
		return out
	}
	for _, a := range attrs {
		if a.Key == config.LogKeyError {
			return a.Value.String()
		}
	}
	return ""
}
