package logger

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"
)

var tskvEscaper = strings.NewReplacer(
	`\`, `\\`,
	"\t", `\t`,
	"\n", `\n`,
	"\r", `\r`,
)

var tskvKeyEscaper = strings.NewReplacer(
	`\`, `\\`,
	"\t", `\t`,
	"\n", `\n`,
	"\r", `\r`,
	"=", `\=`,
)

// TSKVHandler writes one record per line as tab separated key=value pairs,
// starting with time, level and msg.
type TSKVHandler struct {
	mu     *sync.Mutex
	w      io.Writer
	level  slog.Leveler
	prefix string
	groups []string
}

func NewTSKVHandler(w io.Writer, opts *slog.HandlerOptions) *TSKVHandler {
	var level slog.Leveler = slog.LevelInfo
	if opts != nil && opts.Level != nil {
		level = opts.Level
	}

	return &TSKVHandler{
		mu:    &sync.Mutex{},
		w:     w,
		level: level,
	}
}

func (h *TSKVHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *TSKVHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder

	if !r.Time.IsZero() {
		writeField(&b, "time", r.Time.UTC().Format(time.RFC3339Nano))
	}
	writeField(&b, "level", r.Level.String())
	writeField(&b, "msg", r.Message)

	b.WriteString(h.prefix)

	groupPrefix := strings.Join(h.groups, ".")
	r.Attrs(func(a slog.Attr) bool {
		appendAttr(&b, groupPrefix, a)
		return true
	})

	b.WriteByte('\n')

	// every field is written with a leading tab
	line := b.String()[1:]

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := io.WriteString(h.w, line)

	return err
}

func (h *TSKVHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}

	var b strings.Builder
	b.WriteString(h.prefix)

	groupPrefix := strings.Join(h.groups, ".")
	for _, a := range attrs {
		appendAttr(&b, groupPrefix, a)
	}

	clone := *h
	clone.prefix = b.String()

	return &clone
}

func (h *TSKVHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	clone := *h
	clone.groups = append(append([]string(nil), h.groups...), name)

	return &clone
}

func appendAttr(b *strings.Builder, groupPrefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()

	if a.Equal(slog.Attr{}) {
		return
	}

	key := a.Key
	if groupPrefix != "" && key != "" {
		key = groupPrefix + "." + key
	}

	if a.Value.Kind() == slog.KindGroup {
		nested := key
		if a.Key == "" {
			nested = groupPrefix
		}

		for _, ga := range a.Value.Group() {
			appendAttr(b, nested, ga)
		}

		return
	}

	var value string
	if a.Value.Kind() == slog.KindTime {
		value = a.Value.Time().UTC().Format(time.RFC3339Nano)
	} else {
		value = a.Value.String()
	}

	writeField(b, key, value)
}

func writeField(b *strings.Builder, key, value string) {
	b.WriteByte('\t')
	b.WriteString(tskvKeyEscaper.Replace(key))
	b.WriteByte('=')
	b.WriteString(tskvEscaper.Replace(value))
}
