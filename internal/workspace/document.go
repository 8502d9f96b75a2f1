package workspace

import (
	"fmt"
	"os"
	"strings"
)

// Document is an immutable, line-addressed view of a loaded file.
type Document struct {
	path  string
	lines []string
}

// Load reads the file at path and splits it into lines. A missing trailing
// newline does not produce a phantom line; an empty file has zero lines.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	return NewDocument(path, string(data)), nil
}

// NewDocument builds a Document from in-memory content.
func NewDocument(path, content string) *Document {
	var lines []string
	if content != "" {
		content = strings.TrimSuffix(content, "\n")
		lines = strings.Split(content, "\n")
	}
	return &Document{path: path, lines: lines}
}

func (d *Document) Path() string { return d.path }

func (d *Document) LineCount() int { return len(d.lines) }

// Lines returns the backing line slice. Callers must not mutate it.
func (d *Document) Lines() []string { return d.lines }

// Text returns the content of the inclusive line window [start, end], joined
// with newlines. Out-of-range lines are clamped away; an empty window
// returns "".
func (d *Document) Text(start, end int) string {
	if len(d.lines) == 0 {
		return ""
	}
	if start < 0 {
		start = 0
	}
	if end > len(d.lines)-1 {
		end = len(d.lines) - 1
	}
	if start > end {
		return ""
	}
	return strings.Join(d.lines[start:end+1], "\n")
}
