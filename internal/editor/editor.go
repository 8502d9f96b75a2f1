// Package editor defines the surface the activity engine drives. The TUI
// provides the real implementation; tests substitute fakes.
package editor

import "context"

// Range is an inclusive window of lines within a document.
type Range struct {
	Start int
	End   int
}

// Lines returns the number of lines the range covers.
func (r Range) Lines() int {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start + 1
}

// Position is a line/column point within a document.
type Position struct {
	Line int
	Col  int
}

// Handle is an open document in the host. The engine only ever drives the
// handle it most recently opened.
type Handle interface {
	// Path identifies the document (file path, or a scratch name).
	Path() string
	LineCount() int
	// Text returns the content of r. Out-of-range lines are clamped away.
	Text(r Range) string
	// Select marks r as the active selection and reveals it centered.
	Select(r Range)
	// ClearSelection collapses the selection to its start.
	ClearSelection()
	// Reveal centers the viewport on line.
	Reveal(line int)
	// Insert places text at p. Workspace documents are read-only; only
	// scratch documents accept inserts.
	Insert(p Position, text string) error
}

// Host is the editor the engine performs against.
type Host interface {
	// Open focuses the document at path, loading it on first use.
	Open(ctx context.Context, path string) (Handle, error)
	// OpenScratch creates and focuses a new empty throwaway document.
	OpenScratch(ctx context.Context) (Handle, error)
	// Active returns the focused document, if any.
	Active() (Handle, bool)
	// CloseActive closes the focused document without saving. Focus falls
	// back to the most recent remaining document.
	CloseActive(ctx context.Context) error
	WriteClipboard(text string) error
	Info(msg string)
	Warn(msg string)
}
