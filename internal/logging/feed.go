package logging

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
)

const feedCapacity = 200

// Entry is one log record kept for on-screen display.
type Entry struct {
	Time    time.Time
	Level   slog.Level
	Message string
	Attrs   string
}

// Feed is a bounded ring of the most recent log entries. It is safe for use
// from the engine goroutine while the UI reads it.
type Feed struct {
	mu      sync.Mutex
	entries []Entry
	next    int
	full    bool
}

func NewFeed(capacity int) *Feed {
	if capacity < 1 {
		capacity = 1
	}
	return &Feed{entries: make([]Entry, capacity)}
}

func (f *Feed) add(e Entry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[f.next] = e
	f.next = (f.next + 1) % len(f.entries)
	if f.next == 0 {
		f.full = true
	}
}

// Recent returns up to n of the newest entries, oldest first.
func (f *Feed) Recent(n int) []Entry {
	f.mu.Lock()
	defer f.mu.Unlock()

	size := f.next
	if f.full {
		size = len(f.entries)
	}
	if n > size {
		n = size
	}
	if n <= 0 {
		return nil
	}
	out := make([]Entry, 0, n)
	start := f.next - n
	if start < 0 {
		start += len(f.entries)
	}
	for i := 0; i < n; i++ {
		out = append(out, f.entries[(start+i)%len(f.entries)])
	}
	return out
}

// Len reports how many entries the feed currently holds.
func (f *Feed) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.full {
		return len(f.entries)
	}
	return f.next
}

func (f *Feed) handler(level slog.Level) slog.Handler {
	return &feedHandler{feed: f, level: level}
}

// feedHandler adapts the feed to slog so it can sit behind the fanout next
// to the file handler. Logger attrs are rendered when they are attached so
// they keep the group prefix that was in effect at that point.
type feedHandler struct {
	feed   *Feed
	level  slog.Level
	prefix string
	attrs  string
}

func (h *feedHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *feedHandler) Handle(_ context.Context, record slog.Record) error {
	var b strings.Builder
	b.WriteString(h.attrs)
	record.Attrs(func(a slog.Attr) bool {
		appendAttr(&b, h.prefix, a)
		return true
	})
	h.feed.add(Entry{
		Time:    record.Time,
		Level:   record.Level,
		Message: record.Message,
		Attrs:   b.String(),
	})
	return nil
}

func (h *feedHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	var b strings.Builder
	b.WriteString(h.attrs)
	for _, a := range attrs {
		appendAttr(&b, h.prefix, a)
	}
	c.attrs = b.String()
	return &c
}

func (h *feedHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := *h
	c.prefix = h.prefix + name + "."
	return &c
}

func appendAttr(b *strings.Builder, prefix string, a slog.Attr) {
	if a.Equal(slog.Attr{}) {
		return
	}
	if b.Len() > 0 {
		b.WriteByte(' ')
	}
	b.WriteString(prefix)
	b.WriteString(a.Key)
	b.WriteByte('=')
	b.WriteString(a.Value.String())
}
