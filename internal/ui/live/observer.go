package live

import (
	"io"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"syncrun/pkg/outputsync"
)

// Controller runs the live UI and implements outputsync.Observer.
type Controller struct {
	mu        sync.Mutex
	closed    bool
	events    chan Event
	program   *tea.Program
	done      chan struct{}
	closeOnce sync.Once
}

// Start launches a live UI controller that writes to stdout.
func Start(stdout io.Writer, opts Options) *Controller {
	if stdout == nil {
		stdout = os.Stdout
	}
	events := make(chan Event, 256)
	model := NewModel(events, opts)
	program := tea.NewProgram(model, tea.WithOutput(stdout), tea.WithAltScreen())
	controller := &Controller{
		events:  events,
		program: program,
		done:    make(chan struct{}),
	}
	go func() {
		_, _ = program.Run()
		close(controller.done)
	}()
	return controller
}

// Close signals the UI to stop. Events sent after Close are dropped.
func (c *Controller) Close() {
	if c == nil {
		return
	}
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		close(c.events)
		c.mu.Unlock()
	})
}

// Wait blocks until the UI has exited.
func (c *Controller) Wait() {
	if c == nil {
		return
	}
	<-c.done
}

// RunStarted forwards the run header to the UI.
func (c *Controller) RunStarted(runID string) {
	c.send(Event{Kind: EventRunStart, RunID: runID})
}

// RunFinished marks the run complete and closes the UI.
func (c *Controller) RunFinished() {
	c.send(Event{Kind: EventRunEnd})
	c.Close()
}

// OnRegister forwards producer registrations to the UI.
func (c *Controller) OnRegister(pc outputsync.ProducerContext) {
	c.send(Event{Kind: EventRegister, Producer: pc})
}

// OnUnregister forwards producer unregistrations to the UI.
func (c *Controller) OnUnregister(pc outputsync.ProducerContext) {
	c.send(Event{Kind: EventUnregister, Producer: pc})
}

// OnWrite forwards completed output operations to the UI.
func (c *Controller) OnWrite(channel outputsync.Channel, priority outputsync.Priority, source outputsync.Source, bytes int, err error) {
	c.send(Event{
		Kind:     EventWrite,
		Channel:  channel,
		Priority: priority,
		Source:   source,
		Bytes:    bytes,
		Err:      err,
	})
}

// OnQueueDepth forwards queue depth samples to the UI.
func (c *Controller) OnQueueDepth(channel outputsync.Channel, depth int) {
	c.send(Event{Kind: EventQueueDepth, Channel: channel, Depth: depth})
}

// send enqueues an event without blocking the caller. Events racing or
// following Close are dropped rather than panicking on the closed channel.
func (c *Controller) send(event Event) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.events <- event:
	default:
	}
}
