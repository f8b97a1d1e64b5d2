package logging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/thoreinstein/mcpm/internal/redact"
)

// Handler is the human-facing slog handler used for stderr and text
// --log-file output. A line looks like
//
//	3:04PM WARN  skipping malformed config path=/home/u/.mcp.json
//
// Each record is assembled in memory and written with a single Write, so
// lines from concurrent probes never interleave. Attribute values pass
// through package redact before they are printed.
type Handler struct {
	level slog.Leveler
	out   io.Writer
	mu    *sync.Mutex

	// prefix is the dotted group path applied to record attributes.
	prefix string
	// preformatted holds attributes from WithAttrs, already rendered.
	preformatted string

	pal *palette
}

// palette is nil when the writer does not take colour.
type palette struct {
	time, key, trace, debug, info, warn, err *color.Color
}

func newPalette() *palette {
	return &palette{
		time:  color.New(color.FgHiBlack),
		key:   color.New(color.FgCyan),
		trace: color.New(color.FgHiBlack),
		debug: color.New(color.FgMagenta),
		info:  color.New(color.FgGreen),
		warn:  color.New(color.FgYellow),
		err:   color.New(color.FgRed, color.Bold),
	}
}

// NewHandler creates a text handler writing to out. Colour is used only
// when SupportsColor(out) holds.
func NewHandler(out io.Writer, opts *slog.HandlerOptions) *Handler {
	h := &Handler{
		level: slog.LevelInfo,
		out:   out,
		mu:    &sync.Mutex{},
	}
	if opts != nil && opts.Level != nil {
		h.level = opts.Level
	}
	if SupportsColor(out) {
		h.pal = newPalette()
	}
	return h
}

// Enabled reports whether the handler handles records at the given level.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle formats r as one line.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer

	if !r.Time.IsZero() {
		buf.WriteString(h.paint(h.timeColor(), r.Time.Format(time.Kitchen)))
		buf.WriteByte(' ')
	}

	label := levelLabel(r.Level)
	pad := strings.Repeat(" ", max(5-len(label), 0))
	buf.WriteString(h.paint(h.levelColor(r.Level), label))
	buf.WriteString(pad)
	buf.WriteByte(' ')
	buf.WriteString(r.Message)
	buf.WriteString(h.preformatted)

	r.Attrs(func(a slog.Attr) bool {
		h.writeAttr(&buf, h.prefix, a)
		return true
	})
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.out.Write(buf.Bytes())
	return err
}

// WithAttrs renders attrs once under the current group prefix.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	var buf bytes.Buffer
	for _, a := range attrs {
		h.writeAttr(&buf, h.prefix, a)
	}
	next := *h
	next.preformatted = h.preformatted + buf.String()
	return &next
}

// WithGroup nests later attributes under name, rendered as a dotted key
// prefix.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

func (h *Handler) writeAttr(buf *bytes.Buffer, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		inner := prefix
		if a.Key != "" {
			inner = prefix + a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			h.writeAttr(buf, inner, ga)
		}
		return
	}

	buf.WriteByte(' ')
	buf.WriteString(h.paint(h.keyColor(), prefix+a.Key))
	buf.WriteByte('=')
	fmt.Fprint(buf, redactValue(a.Key, a.Value.Any()))
}

// redactValue masks secrets in the value shapes mcpm logs: plain strings,
// argument lists, and env or header maps.
func redactValue(key string, v any) any {
	switch v := v.(type) {
	case string:
		return redact.Pair(key, v)
	case []string:
		return redact.Args(v)
	case map[string]string:
		return redact.Map(v)
	case error:
		return v.Error()
	}
	if redact.ShouldMask(key) {
		return redact.Value(fmt.Sprint(v))
	}
	return v
}

// levelLabel names LevelTrace instead of printing "DEBUG-4".
func levelLabel(l slog.Level) string {
	if l <= LevelTrace {
		return "TRACE"
	}
	return l.String()
}

func (h *Handler) levelColor(l slog.Level) *color.Color {
	if h.pal == nil {
		return nil
	}
	switch {
	case l >= slog.LevelError:
		return h.pal.err
	case l >= slog.LevelWarn:
		return h.pal.warn
	case l >= slog.LevelInfo:
		return h.pal.info
	case l > LevelTrace:
		return h.pal.debug
	default:
		return h.pal.trace
	}
}

func (h *Handler) timeColor() *color.Color {
	if h.pal == nil {
		return nil
	}
	return h.pal.time
}

func (h *Handler) keyColor() *color.Color {
	if h.pal == nil {
		return nil
	}
	return h.pal.key
}

func (h *Handler) paint(c *color.Color, s string) string {
	if c == nil {
		return s
	}
	return c.Sprint(s)
}
