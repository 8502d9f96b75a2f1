package engine

import (
	"context"
	"errors"

	"github.com/mako34/Hagate/internal/editor"
)

// errNoCandidates ends a run quietly when there is nothing left to pick.
var errNoCandidates = errors.New("engine: no files to pick from")

// cycleRun carries the state that flows through one pass of the six steps.
type cycleRun struct {
	c       *Controller
	files   []string
	session string
	cycle   int

	file    string // path of the active workspace document
	scratch string // path of the scratch document, once opened
	copied  string
}

// runCycle performs one full activity cycle: select, switch, copy, paste,
// discard, scroll. Cancellation is honored between steps and inside every
// pause.
func (c *Controller) runCycle(ctx context.Context, files []string, session string, cycle int) error {
	r := &cycleRun{c: c, files: files, session: session, cycle: cycle}
	steps := []func(context.Context) error{
		r.doSelect,
		r.doSwitch,
		r.doCopy,
		r.doPaste,
		r.doDiscard,
		r.doScroll,
	}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := step(ctx); err != nil {
			return err
		}
	}
	return nil
}

// doSelect opens a random file, highlights a random window in it for a
// moment, then collapses the selection.
func (r *cycleRun) doSelect(ctx context.Context) error {
	path, ok := r.c.rand.Pick(r.files, "")
	if !ok {
		return errNoCandidates
	}
	h, err := r.c.host.Open(ctx, path)
	if err != nil {
		return err
	}
	r.file = path

	start, end := r.c.rand.PickRange(h.LineCount(), r.c.timings.SelectionLines)
	sel := editor.Range{Start: start, End: end}
	h.Select(sel)
	r.emit(StepSelect, path, sel)

	if err := r.c.clock.Sleep(ctx, r.c.timings.SelectPause); err != nil {
		return err
	}
	h.ClearSelection()
	return nil
}

// doSwitch moves focus to a different random file. A single-file workspace
// keeps the same document.
func (r *cycleRun) doSwitch(ctx context.Context) error {
	path, ok := r.c.rand.Pick(r.files, r.file)
	if !ok {
		path = r.file
	}
	if _, err := r.c.host.Open(ctx, path); err != nil {
		return err
	}
	r.file = path
	r.emit(StepSwitch, path, editor.Range{})
	return r.c.clock.Sleep(ctx, r.c.timings.SwitchPause)
}

// doCopy opens a random file, selects a random window in it, and puts the
// window's text on the clipboard.
func (r *cycleRun) doCopy(ctx context.Context) error {
	path, ok := r.c.rand.Pick(r.files, "")
	if !ok {
		return errNoCandidates
	}
	h, err := r.c.host.Open(ctx, path)
	if err != nil {
		return err
	}
	r.file = path

	start, end := r.c.rand.PickRange(h.LineCount(), r.c.timings.CopyLines)
	rng := editor.Range{Start: start, End: end}
	h.Select(rng)
	r.copied = h.Text(rng)
	if err := r.c.host.WriteClipboard(r.copied); err != nil {
		return err
	}
	r.emit(StepCopy, path, rng)
	return r.c.clock.Sleep(ctx, r.c.timings.CopyPause)
}

// doPaste drops the captured text at the top of a fresh scratch document.
func (r *cycleRun) doPaste(ctx context.Context) error {
	h, err := r.c.host.OpenScratch(ctx)
	if err != nil {
		return err
	}
	if err := h.Insert(editor.Position{}, r.copied); err != nil {
		return err
	}
	r.scratch = h.Path()
	r.emit(StepPaste, r.scratch, editor.Range{})
	return r.c.clock.Sleep(ctx, r.c.timings.PastePause)
}

// doDiscard closes the active document without saving.
func (r *cycleRun) doDiscard(ctx context.Context) error {
	if err := r.c.host.CloseActive(ctx); err != nil {
		return err
	}
	r.emit(StepDiscard, r.scratch, editor.Range{})
	return r.c.clock.Sleep(ctx, r.c.timings.DiscardPause)
}

// doScroll opens one more random file and sweeps the viewport through it.
func (r *cycleRun) doScroll(ctx context.Context) error {
	path, ok := r.c.rand.Pick(r.files, "")
	if !ok {
		return errNoCandidates
	}
	h, err := r.c.host.Open(ctx, path)
	if err != nil {
		return err
	}
	r.file = path
	r.emit(StepScroll, path, editor.Range{})
	return r.c.scroll(ctx, h)
}

func (r *cycleRun) emit(step Step, file string, rng editor.Range) {
	r.c.emit(r.session, StepEvent{Cycle: r.cycle, Step: step, File: file, Range: rng})
}
