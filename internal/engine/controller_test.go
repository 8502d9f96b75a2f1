package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mako34/Hagate/internal/editor"
	"github.com/mako34/Hagate/internal/randsel"
)

// autoClock advances virtual time instantly on every sleep.
type autoClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *autoClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *autoClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
	return nil
}

// stepClock parks every sleeper until released or cancelled, and reports
// when a sleeper arrives.
type stepClock struct {
	mu       sync.Mutex
	now      time.Time
	release  chan struct{}
	sleeping chan struct{}
}

func newStepClock() *stepClock {
	return &stepClock{release: make(chan struct{}), sleeping: make(chan struct{}, 64)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *stepClock) Sleep(ctx context.Context, d time.Duration) error {
	select {
	case c.sleeping <- struct{}{}:
	default:
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.release:
		c.mu.Lock()
		c.now = c.now.Add(d)
		c.mu.Unlock()
		return nil
	}
}

// fakeHost records every editor call the engine makes.
type fakeHost struct {
	mu         sync.Mutex
	lineCounts map[string]int
	openErr    error

	open    []*fakeDoc // tab order, focused last
	closed  []*fakeDoc
	opens   []string
	clip    []string
	infos   []string
	warns   []string
	scratch int
}

type fakeDoc struct {
	host    *fakeHost
	path    string
	lines   int
	scratch bool
	selects []editor.Range
	clears  int
	reveals []int
	inserts []string
}

func newFakeHost(lineCounts map[string]int) *fakeHost {
	return &fakeHost{lineCounts: lineCounts}
}

func (h *fakeHost) Open(ctx context.Context, path string) (editor.Handle, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.openErr != nil {
		return nil, h.openErr
	}
	h.opens = append(h.opens, path)
	for i, d := range h.open {
		if d.path == path {
			h.open = append(append(h.open[:i], h.open[i+1:]...), d)
			return d, nil
		}
	}
	lines, ok := h.lineCounts[path]
	if !ok {
		lines = 12
	}
	d := &fakeDoc{host: h, path: path, lines: lines}
	h.open = append(h.open, d)
	return d, nil
}

func (h *fakeHost) OpenScratch(ctx context.Context) (editor.Handle, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.scratch++
	d := &fakeDoc{host: h, path: fmt.Sprintf("untitled-%d", h.scratch), scratch: true}
	h.open = append(h.open, d)
	return d, nil
}

func (h *fakeHost) Active() (editor.Handle, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.open) == 0 {
		return nil, false
	}
	return h.open[len(h.open)-1], true
}

func (h *fakeHost) CloseActive(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.open) == 0 {
		return errors.New("nothing to close")
	}
	d := h.open[len(h.open)-1]
	h.open = h.open[:len(h.open)-1]
	h.closed = append(h.closed, d)
	return nil
}

func (h *fakeHost) WriteClipboard(text string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clip = append(h.clip, text)
	return nil
}

func (h *fakeHost) Info(msg string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.infos = append(h.infos, msg)
}

func (h *fakeHost) Warn(msg string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.warns = append(h.warns, msg)
}

func (h *fakeHost) snapshot() (opens, clip, infos, warns []string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.opens...),
		append([]string(nil), h.clip...),
		append([]string(nil), h.infos...),
		append([]string(nil), h.warns...)
}

func (d *fakeDoc) Path() string { return d.path }

func (d *fakeDoc) LineCount() int {
	d.host.mu.Lock()
	defer d.host.mu.Unlock()
	return d.lines
}

func (d *fakeDoc) Text(r editor.Range) string {
	return fmt.Sprintf("text(%d-%d)@%s", r.Start, r.End, d.path)
}

func (d *fakeDoc) Select(r editor.Range) {
	d.host.mu.Lock()
	defer d.host.mu.Unlock()
	d.selects = append(d.selects, r)
}

func (d *fakeDoc) ClearSelection() {
	d.host.mu.Lock()
	defer d.host.mu.Unlock()
	d.clears++
}

func (d *fakeDoc) Reveal(line int) {
	d.host.mu.Lock()
	defer d.host.mu.Unlock()
	d.reveals = append(d.reveals, line)
}

func (d *fakeDoc) Insert(p editor.Position, text string) error {
	d.host.mu.Lock()
	defer d.host.mu.Unlock()
	if !d.scratch {
		return errors.New("read-only document")
	}
	d.inserts = append(d.inserts, fmt.Sprintf("%d:%d:%s", p.Line, p.Col, text))
	return nil
}

// fakeLister returns a fixed snapshot.
type fakeLister struct {
	files []string
	err   error
}

func (l *fakeLister) ListFiles(ctx context.Context) ([]string, error) {
	return l.files, l.err
}

// recObserver funnels engine notifications into channels the test can wait
// on.
type recObserver struct {
	mu      sync.Mutex
	started int
	stepCh  chan StepEvent
	endCh   chan StopReason
}

func newRecObserver() *recObserver {
	return &recObserver{stepCh: make(chan StepEvent, 256), endCh: make(chan StopReason, 8)}
}

func (o *recObserver) RunStarted(sessionID, workspace string, files int) {
	o.mu.Lock()
	o.started++
	o.mu.Unlock()
}

func (o *recObserver) StepDone(sessionID string, ev StepEvent) {
	select {
	case o.stepCh <- ev:
	default:
	}
}

func (o *recObserver) RunEnded(sessionID string, reason StopReason, cycles int) {
	select {
	case o.endCh <- reason:
	default:
	}
}

func (o *recObserver) startedCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.started
}

func waitSteps(t *testing.T, ch <-chan StepEvent, n int) []StepEvent {
	t.Helper()
	var out []StepEvent
	timeout := time.After(5 * time.Second)
	for len(out) < n {
		select {
		case ev := <-ch:
			out = append(out, ev)
		case <-timeout:
			t.Fatalf("timed out waiting for %d steps, got %d", n, len(out))
		}
	}
	return out
}

func waitEnd(t *testing.T, ch <-chan StopReason) StopReason {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for run end")
		return ""
	}
}

func newTestController(host *fakeHost, files []string, clock Clock, obs ...Observer) *Controller {
	return New(Deps{
		Host:      host,
		Files:     &fakeLister{files: files},
		Workspace: "/tmp/ws",
		Clock:     clock,
		Rand:      randsel.New(1),
		Observers: obs,
	}, DefaultTimings())
}

func TestStartEmptyWorkspaceWarnsAndStaysStopped(t *testing.T) {
	t.Parallel()

	host := newFakeHost(nil)
	obs := newRecObserver()
	c := newTestController(host, nil, &autoClock{}, obs)

	c.Start(context.Background())
	c.Wait()

	require.Equal(t, StateStopped, c.State())
	_, _, _, warns := host.snapshot()
	require.Len(t, warns, 1)
	require.Contains(t, warns[0], "no files")
	require.Equal(t, 0, obs.startedCount())
	t.Log("warned and stayed stopped")
}

func TestStartWhileRunningIsNoOp(t *testing.T) {
	t.Parallel()

	host := newFakeHost(map[string]int{"a.ts": 30, "b.ts": 30})
	obs := newRecObserver()
	clock := newStepClock()
	c := newTestController(host, []string{"a.ts", "b.ts"}, clock, obs)

	c.Start(context.Background())
	<-clock.sleeping
	t.Log("loop parked in first pause")

	c.Start(context.Background())
	_, _, infos, _ := host.snapshot()
	require.Len(t, infos, 1)
	require.Contains(t, infos[0], "already running")
	require.Equal(t, 1, obs.startedCount())

	c.Stop()
	c.Wait()
	require.Equal(t, StateStopped, c.State())
}

func TestStopWhileStoppedIsNoOp(t *testing.T) {
	t.Parallel()

	host := newFakeHost(nil)
	c := newTestController(host, []string{"a.ts"}, &autoClock{})

	c.Stop()

	require.Equal(t, StateStopped, c.State())
	_, _, infos, _ := host.snapshot()
	require.Len(t, infos, 1)
	require.Contains(t, infos[0], "not running")
}

func TestCycleRunsStepsInOrder(t *testing.T) {
	t.Parallel()

	files := []string{"a.ts", "b.ts", "c.ts"}
	host := newFakeHost(map[string]int{"a.ts": 40, "b.ts": 40, "c.ts": 40})
	obs := newRecObserver()
	c := newTestController(host, files, &autoClock{}, obs)

	c.Start(context.Background())
	// the seventh event is the next cycle's select, so the first cycle
	// (including its full scroll sweep) has finished by then
	events := waitSteps(t, obs.stepCh, 7)
	c.Stop()
	c.Wait()

	wantOrder := []Step{StepSelect, StepSwitch, StepCopy, StepPaste, StepDiscard, StepScroll}
	for i, want := range wantOrder {
		require.Equal(t, want, events[i].Step, "step %d", i)
		require.Equal(t, 0, events[i].Cycle)
	}
	require.Equal(t, StepSelect, events[6].Step)
	require.Equal(t, 1, events[6].Cycle)
	t.Log("first cycle ran in order")

	// switch picked a different file than select; copy and scroll draw
	// fresh files from the workspace
	require.NotEqual(t, events[0].File, events[1].File)
	require.Contains(t, files, events[2].File)
	require.Contains(t, files, events[5].File)

	// the copy window was selected in its document before capture
	require.Equal(t, 4, events[2].Range.End-events[2].Range.Start)
	host.mu.Lock()
	var copyDoc *fakeDoc
	for _, d := range host.open {
		if d.path == events[2].File {
			copyDoc = d
			break
		}
	}
	host.mu.Unlock()
	require.NotNil(t, copyDoc)
	require.Contains(t, copyDoc.selects, events[2].Range)

	// the copied window landed on the clipboard and in the scratch buffer
	_, clip, _, _ := host.snapshot()
	require.NotEmpty(t, clip)
	wantText := fmt.Sprintf("text(%d-%d)@%s", events[2].Range.Start, events[2].Range.End, events[2].File)
	require.Equal(t, wantText, clip[0])

	require.Equal(t, "untitled-1", events[3].File)
	require.Equal(t, "untitled-1", events[4].File)

	host.mu.Lock()
	require.NotEmpty(t, host.closed)
	scratch := host.closed[0]
	host.mu.Unlock()
	require.True(t, scratch.scratch)
	require.Equal(t, []string{"0:0:" + wantText}, scratch.inserts)

	// the scroll sweep starts at the top and bounces between the bounds
	host.mu.Lock()
	var scrollDoc *fakeDoc
	for _, d := range host.open {
		if d.path == events[5].File {
			scrollDoc = d
			break
		}
	}
	var reveals []int
	if scrollDoc != nil {
		reveals = append(reveals, scrollDoc.reveals...)
	}
	host.mu.Unlock()
	require.NotNil(t, scrollDoc)
	require.GreaterOrEqual(t, len(reveals), 8)
	require.Equal(t, []int{0, 10, 20, 30, 39, 29, 19, 9}, reveals[:8])
}

func TestSelectionIsClearedAfterHold(t *testing.T) {
	t.Parallel()

	host := newFakeHost(map[string]int{"a.md": 20, "b.md": 20})
	obs := newRecObserver()
	c := newTestController(host, []string{"a.md", "b.md"}, &autoClock{}, obs)

	c.Start(context.Background())
	events := waitSteps(t, obs.stepCh, 2)
	c.Stop()
	c.Wait()

	host.mu.Lock()
	defer host.mu.Unlock()
	var selected *fakeDoc
	for _, d := range host.open {
		if d.path == events[0].File {
			selected = d
			break
		}
	}
	require.NotNil(t, selected)
	require.NotEmpty(t, selected.selects)
	require.GreaterOrEqual(t, selected.clears, 1)
	sel := selected.selects[0]
	require.Equal(t, events[0].Range, sel)
	require.LessOrEqual(t, sel.End-sel.Start, 2)
}

func TestSwitchFallsBackToSameFileWhenAlone(t *testing.T) {
	t.Parallel()

	host := newFakeHost(map[string]int{"solo.md": 25})
	obs := newRecObserver()
	c := newTestController(host, []string{"solo.md"}, &autoClock{}, obs)

	c.Start(context.Background())
	events := waitSteps(t, obs.stepCh, 2)
	c.Stop()
	c.Wait()

	require.Equal(t, StepSwitch, events[1].Step)
	require.Equal(t, "solo.md", events[0].File)
	require.Equal(t, "solo.md", events[1].File)
}

func TestStopDuringPauseWakesImmediately(t *testing.T) {
	t.Parallel()

	host := newFakeHost(map[string]int{"a.ts": 30, "b.ts": 30})
	obs := newRecObserver()
	clock := newStepClock()
	c := newTestController(host, []string{"a.ts", "b.ts"}, clock, obs)

	c.Start(context.Background())
	<-clock.sleeping
	t.Log("loop parked in select hold")

	c.Stop()

	waited := make(chan struct{})
	go func() {
		c.Wait()
		close(waited)
	}()
	select {
	case <-waited:
	case <-time.After(2 * time.Second):
		t.Fatal("stop did not wake the sleeping pause")
	}

	require.Equal(t, StateStopped, c.State())
	require.Equal(t, ReasonStopped, waitEnd(t, obs.endCh))

	// the loop halted inside step one: the switch step never opened a file
	opens, _, _, _ := host.snapshot()
	require.Len(t, opens, 1)
}

func TestHostFailureEndsRun(t *testing.T) {
	t.Parallel()

	host := newFakeHost(nil)
	host.openErr = errors.New("boom")
	obs := newRecObserver()
	c := newTestController(host, []string{"a.ts"}, &autoClock{}, obs)

	c.Start(context.Background())
	require.Equal(t, ReasonError, waitEnd(t, obs.endCh))
	c.Wait()
	require.Equal(t, StateStopped, c.State())
}

func TestExhaustedSelectionEndsSilently(t *testing.T) {
	t.Parallel()

	host := newFakeHost(nil)
	obs := newRecObserver()
	c := newTestController(host, []string{"a.ts"}, &autoClock{}, obs)

	done := make(chan struct{})
	c.run(context.Background(), nil, "session", done)
	<-done

	require.Equal(t, ReasonExhausted, waitEnd(t, obs.endCh))
	_, _, infos, warns := host.snapshot()
	require.Empty(t, infos)
	require.Empty(t, warns)
}

func TestShutdownStopsAndWaits(t *testing.T) {
	t.Parallel()

	host := newFakeHost(map[string]int{"a.ts": 30, "b.ts": 30})
	obs := newRecObserver()
	clock := newStepClock()
	c := newTestController(host, []string{"a.ts", "b.ts"}, clock, obs)

	c.Start(context.Background())
	<-clock.sleeping

	c.Shutdown()
	require.Equal(t, StateStopped, c.State())
	require.Equal(t, ReasonTeardown, waitEnd(t, obs.endCh))

	// shutting down again is harmless and quiet
	c.Shutdown()
	_, _, infos, _ := host.snapshot()
	require.Empty(t, infos)
}
