package engine

import (
	"context"

	"github.com/mako34/Hagate/internal/editor"
)

// scroll sweeps the viewport up and down h for the configured budget, one
// stride per interval, reversing direction at the document boundaries. A
// document of zero or one lines holds position until the budget elapses.
func (c *Controller) scroll(ctx context.Context, h editor.Handle) error {
	last := h.LineCount() - 1
	if last < 0 {
		last = 0
	}
	deadline := c.clock.Now().Add(c.timings.ScrollBudget)

	line := 0
	dir := 1
	for c.clock.Now().Before(deadline) {
		if err := ctx.Err(); err != nil {
			return err
		}
		h.Reveal(line)
		line += dir * c.timings.ScrollStride
		if line >= last {
			line = last
			dir = -1
		} else if line <= 0 {
			line = 0
			dir = 1
		}
		if err := c.clock.Sleep(ctx, c.timings.ScrollInterval); err != nil {
			return err
		}
	}
	return nil
}
