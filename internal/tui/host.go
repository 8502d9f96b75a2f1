package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	osc52 "github.com/aymanbagabas/go-osc52/v2"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mako34/Hagate/internal/editor"
	"github.com/mako34/Hagate/internal/engine"
	"github.com/mako34/Hagate/internal/workspace"
)

// Sender delivers messages into the running program. *tea.Program satisfies
// it; tests substitute a recorder.
type Sender interface {
	Send(tea.Msg)
}

// Bridge is the editor host the engine performs against. It owns the
// open-document state and publishes immutable snapshots into the program
// after every change, so the engine goroutine never touches the model.
type Bridge struct {
	log  *slog.Logger
	load func(path string) (*workspace.Document, error)

	mu         sync.Mutex
	program    Sender
	docs       []*hostDoc
	scratchSeq int
	clipboard  string
	clipWriter io.Writer
	clipOSC    bool
}

// hostDoc is one open document. Focus order is the docs slice itself, the
// focused document last. Line slices are never mutated in place; edits build
// a fresh slice so published snapshots stay stable.
type hostDoc struct {
	path    string
	lines   []string
	scratch bool

	selected bool
	sel      editor.Range
	cursor   int
	reveal   int
}

// NewBridge returns a bridge with no open documents. Documents load through
// load; nil means reading workspace files from disk.
func NewBridge(log *slog.Logger, load func(string) (*workspace.Document, error)) *Bridge {
	if load == nil {
		load = workspace.Load
	}
	if log == nil {
		log = slog.Default()
	}
	return &Bridge{log: log, load: load}
}

// Attach connects the bridge to the running program. Host calls made before
// attachment still mutate state; they just have nowhere to render yet.
func (b *Bridge) Attach(p Sender) {
	b.mu.Lock()
	b.program = p
	b.mu.Unlock()
}

// EnableClipboard mirrors clipboard writes to w as an OSC 52 sequence, which
// the terminal turns into a system clipboard write.
func (b *Bridge) EnableClipboard(w io.Writer) {
	b.mu.Lock()
	b.clipWriter = w
	b.clipOSC = true
	b.mu.Unlock()
}

// RunObserver returns an engine observer that forwards run lifecycle events
// into the program.
func (b *Bridge) RunObserver() engine.Observer {
	return bridgeObserver{b: b}
}

// Open focuses the document at path, loading it on first use.
func (b *Bridge) Open(ctx context.Context, path string) (editor.Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.mu.Lock()
	if i := b.indexOf(path); i >= 0 {
		d := b.docs[i]
		b.docs = append(append(b.docs[:i:i], b.docs[i+1:]...), d)
		b.mu.Unlock()
		b.push()
		return &docHandle{b: b, d: d}, nil
	}
	b.mu.Unlock()

	doc, err := b.load(path)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	d := &hostDoc{path: path, lines: doc.Lines()}
	b.docs = append(b.docs, d)
	b.mu.Unlock()
	b.push()
	return &docHandle{b: b, d: d}, nil
}

// OpenScratch creates and focuses a new empty throwaway document.
func (b *Bridge) OpenScratch(ctx context.Context) (editor.Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	b.scratchSeq++
	d := &hostDoc{path: fmt.Sprintf("untitled-%d", b.scratchSeq), scratch: true}
	b.docs = append(b.docs, d)
	b.mu.Unlock()
	b.push()
	return &docHandle{b: b, d: d}, nil
}

// Active returns the focused document, if any.
func (b *Bridge) Active() (editor.Handle, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.docs) == 0 {
		return nil, false
	}
	return &docHandle{b: b, d: b.docs[len(b.docs)-1]}, true
}

// CloseActive closes the focused document without saving. Focus falls back
// to the most recent remaining document.
func (b *Bridge) CloseActive(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	if len(b.docs) == 0 {
		b.mu.Unlock()
		return errors.New("no document is open")
	}
	b.docs = b.docs[:len(b.docs)-1]
	b.mu.Unlock()
	b.push()
	return nil
}

// WriteClipboard stores text and, when enabled, emits it to the terminal as
// an OSC 52 write.
func (b *Bridge) WriteClipboard(text string) error {
	b.mu.Lock()
	b.clipboard = text
	w := b.clipWriter
	enabled := b.clipOSC
	b.mu.Unlock()

	if enabled && w != nil {
		if _, err := osc52.New(text).WriteTo(w); err != nil {
			return fmt.Errorf("clipboard write: %w", err)
		}
	}
	b.push()
	return nil
}

func (b *Bridge) Info(msg string) {
	b.log.Info(msg)
	b.send(noticeMsg{level: noticeInfo, text: msg})
}

func (b *Bridge) Warn(msg string) {
	b.log.Warn(msg)
	b.send(noticeMsg{level: noticeWarn, text: msg})
}

// Snapshot returns the current editor state, for the first render before any
// activity has happened.
func (b *Bridge) Snapshot() EditorSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshotLocked()
}

// indexOf returns the position of path in the open docs, or -1. Callers hold
// the mutex.
func (b *Bridge) indexOf(path string) int {
	for i, d := range b.docs {
		if d.path == path {
			return i
		}
	}
	return -1
}

func (b *Bridge) snapshotLocked() EditorSnapshot {
	snap := EditorSnapshot{ClipboardLines: countLines(b.clipboard)}
	for _, d := range b.docs {
		snap.Tabs = append(snap.Tabs, DocTab{Name: d.path, Scratch: d.scratch})
	}
	if len(b.docs) == 0 {
		return snap
	}
	d := b.docs[len(b.docs)-1]
	snap.Path = d.path
	snap.Scratch = d.scratch
	snap.Lines = d.lines
	snap.Selected = d.selected
	snap.Selection = d.sel
	snap.Cursor = d.cursor
	snap.Reveal = d.reveal
	return snap
}

// push publishes the current state to the program. Sends happen outside the
// mutex; Program.Send can block until the event loop picks the message up.
func (b *Bridge) push() {
	b.mu.Lock()
	p := b.program
	snap := b.snapshotLocked()
	b.mu.Unlock()
	if p != nil {
		p.Send(editorSnapshotMsg{snapshot: snap})
	}
}

func (b *Bridge) send(msg tea.Msg) {
	b.mu.Lock()
	p := b.program
	b.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

// docHandle adapts one hostDoc to editor.Handle. Handles stay valid after
// the document loses focus; operations keep applying to the same document.
type docHandle struct {
	b *Bridge
	d *hostDoc
}

func (h *docHandle) Path() string {
	h.b.mu.Lock()
	defer h.b.mu.Unlock()
	return h.d.path
}

func (h *docHandle) LineCount() int {
	h.b.mu.Lock()
	defer h.b.mu.Unlock()
	return len(h.d.lines)
}

func (h *docHandle) Text(r editor.Range) string {
	h.b.mu.Lock()
	defer h.b.mu.Unlock()
	lines := h.d.lines
	if len(lines) == 0 {
		return ""
	}
	start, end := r.Start, r.End
	if start < 0 {
		start = 0
	}
	if end > len(lines)-1 {
		end = len(lines) - 1
	}
	if start > end {
		return ""
	}
	return strings.Join(lines[start:end+1], "\n")
}

func (h *docHandle) Select(r editor.Range) {
	h.b.mu.Lock()
	h.d.selected = true
	h.d.sel = r
	h.d.cursor = r.Start
	h.d.reveal = (r.Start + r.End) / 2
	h.b.mu.Unlock()
	h.b.push()
}

// ClearSelection collapses the selection to its start, like tapping an arrow
// key in a real editor.
func (h *docHandle) ClearSelection() {
	h.b.mu.Lock()
	if h.d.selected {
		h.d.selected = false
		h.d.cursor = h.d.sel.Start
	}
	h.b.mu.Unlock()
	h.b.push()
}

func (h *docHandle) Reveal(line int) {
	h.b.mu.Lock()
	h.d.reveal = line
	h.b.mu.Unlock()
	h.b.push()
}

// Insert places text at p. Workspace documents refuse edits; only scratch
// documents accept them.
func (h *docHandle) Insert(p editor.Position, text string) error {
	h.b.mu.Lock()
	if !h.d.scratch {
		path := h.d.path
		h.b.mu.Unlock()
		return fmt.Errorf("%s is read-only", path)
	}
	h.d.lines = spliceLines(h.d.lines, p, text)
	h.d.cursor = clampInt(p.Line, 0, max(len(h.d.lines)-1, 0))
	h.d.reveal = h.d.cursor
	h.b.mu.Unlock()
	h.b.push()
	return nil
}

// spliceLines inserts text at p, splitting the receiving line around the
// column. The position is clamped into the document. The result is a fresh
// slice; earlier snapshots keep seeing the old one.
func spliceLines(lines []string, p editor.Position, text string) []string {
	ins := strings.Split(text, "\n")
	if len(lines) == 0 {
		out := make([]string, len(ins))
		copy(out, ins)
		return out
	}

	li := clampInt(p.Line, 0, len(lines)-1)
	line := lines[li]
	col := clampInt(p.Col, 0, len(line))
	prefix, suffix := line[:col], line[col:]

	out := make([]string, 0, len(lines)+len(ins)-1)
	out = append(out, lines[:li]...)
	if len(ins) == 1 {
		out = append(out, prefix+ins[0]+suffix)
	} else {
		out = append(out, prefix+ins[0])
		out = append(out, ins[1:len(ins)-1]...)
		out = append(out, ins[len(ins)-1]+suffix)
	}
	out = append(out, lines[li+1:]...)
	return out
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// bridgeObserver forwards engine lifecycle callbacks into the program as
// messages.
type bridgeObserver struct {
	b *Bridge
}

func (o bridgeObserver) RunStarted(session, workspace string, files int) {
	o.b.send(runStartedMsg{session: session, files: files})
}

func (o bridgeObserver) StepDone(session string, ev engine.StepEvent) {
	o.b.send(stepDoneMsg{event: ev})
}

func (o bridgeObserver) RunEnded(session string, reason engine.StopReason, cycles int) {
	o.b.send(runEndedMsg{session: session, reason: string(reason), cycles: cycles})
}

// EditorSnapshot is what the editor tab renders: the open tab strip plus the
// focused document's content and view state. Slices are read-only shares.
type EditorSnapshot struct {
	Tabs           []DocTab
	Path           string
	Scratch        bool
	Lines          []string
	Selected       bool
	Selection      editor.Range
	Cursor         int
	Reveal         int
	ClipboardLines int
}

// DocTab is one entry in the editor's tab strip.
type DocTab struct {
	Name    string
	Scratch bool
}

// editorSnapshotMsg carries a fresh editor snapshot into the model.
type editorSnapshotMsg struct {
	snapshot EditorSnapshot
}

type noticeLevel int

const (
	noticeInfo noticeLevel = iota
	noticeWarn
	noticeError
)

// noticeMsg is a transient status-line message.
type noticeMsg struct {
	level noticeLevel
	text  string
}

// runStartedMsg, stepDoneMsg and runEndedMsg mirror the engine observer
// callbacks.
type runStartedMsg struct {
	session string
	files   int
}

type stepDoneMsg struct {
	event engine.StepEvent
}

type runEndedMsg struct {
	session string
	reason  string
	cycles  int
}
