package irc

import (
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/evilmidget38/KittehIRCBot/internal/observability"
	"github.com/evilmidget38/KittehIRCBot/internal/protocol"
)

const (
	priorityHigh = "high"
	priorityLow  = "low"
)

// Sink is the write side of the server connection. Once the queue is
// started it owns the sink exclusively: no other code writes to it or
// closes it.
type Sink interface {
	io.Writer
	Flush() error
	Close() error
}

// OutputQueueConfig configures one outbound queue instance.
type OutputQueueConfig struct {
	Name         string
	Sink         Sink
	MessageDelay time.Duration
	Clock        clockwork.Clock
	Exceptions   ExceptionListener
	Outputs      OutputListener
}

func (c OutputQueueConfig) withDefaults() OutputQueueConfig {
	if c.Clock == nil {
		c.Clock = clockwork.NewRealClock()
	}
	if c.Exceptions == nil {
		c.Exceptions = nopExceptionListener{}
	}
	if c.Outputs == nil {
		c.Outputs = nopOutputListener{}
	}
	return c
}

// OutputQueue serializes all outbound writes for one connection. Producers
// enqueue framed-to-be lines from any goroutine; a single worker drains the
// two priority tiers, applies the inter-message delay, and performs the one
// terminal QUIT write before closing the sink.
type OutputQueue struct {
	name       string
	sink       Sink
	clock      clockwork.Clock
	exceptions ExceptionListener
	outputs    OutputListener

	mu         sync.Mutex
	high       []string
	low        []string
	lowEnabled bool
	quitReason string

	delay atomic.Int64

	wake      chan struct{}
	quit      chan struct{}
	quitOnce  sync.Once
	startOnce sync.Once
	done      chan struct{}
}

func NewOutputQueue(cfg OutputQueueConfig) *OutputQueue {
	cfg = cfg.withDefaults()
	q := &OutputQueue{
		name:       cfg.Name,
		sink:       cfg.Sink,
		clock:      cfg.Clock,
		exceptions: cfg.Exceptions,
		outputs:    cfg.Outputs,
		wake:       make(chan struct{}, 1),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	q.delay.Store(int64(cfg.MessageDelay))
	return q
}

// Start launches the worker. Safe to call once per queue; later calls are
// no-ops.
func (q *OutputQueue) Start() {
	q.startOnce.Do(func() {
		go q.run()
	})
}

// Queue appends one unframed line to the selected tier. It never blocks and
// never fails. The worker is woken for high-priority lines, or for
// low-priority lines once draining is enabled; otherwise the line waits
// silently until EnableLowPriority.
func (q *OutputQueue) Queue(line string, highPriority bool) {
	q.mu.Lock()
	if highPriority {
		q.high = append(q.high, line)
	} else {
		q.low = append(q.low, line)
	}
	notify := highPriority || q.lowEnabled
	high, low := len(q.high), len(q.low)
	q.mu.Unlock()

	observability.RecordQueueDepth(q.name, high, low)
	if notify {
		q.notify()
	}
}

// EnableLowPriority opens the low-priority tier for draining. Idempotent;
// intended to be called once, after the handshake completes. The worker is
// woken so lines queued before enabling drain without a fresh enqueue.
func (q *OutputQueue) EnableLowPriority() {
	q.mu.Lock()
	q.lowEnabled = true
	q.mu.Unlock()
	q.notify()
}

// SetMessageDelay replaces the inter-message delay. Affects only lines
// dispatched after the call, not a delay already in progress.
func (q *OutputQueue) SetMessageDelay(d time.Duration) {
	q.delay.Store(int64(d))
}

// MessageDelay returns the current inter-message delay.
func (q *OutputQueue) MessageDelay() time.Duration {
	return time.Duration(q.delay.Load())
}

// Shutdown records the quit reason and signals the worker to stop. Safe to
// call from any goroutine, any number of times; when calls race, the last
// recorded reason wins.
func (q *OutputQueue) Shutdown(reason string) {
	q.mu.Lock()
	q.quitReason = reason
	q.mu.Unlock()
	q.quitOnce.Do(func() {
		close(q.quit)
	})
}

// Done is closed once the worker has written the terminal QUIT line and
// closed the sink.
func (q *OutputQueue) Done() <-chan struct{} {
	return q.done
}

// shuttingDown reports whether Shutdown has been requested.
func (q *OutputQueue) shuttingDown() bool {
	select {
	case <-q.quit:
		return true
	default:
		return false
	}
}

// Depths reports the number of lines waiting in each tier.
func (q *OutputQueue) Depths() (high, low int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.high), len(q.low)
}

func (q *OutputQueue) notify() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *OutputQueue) run() {
	defer close(q.done)
	for {
		if !q.waitReady() {
			break
		}
		line, priority, ok := q.pop()
		if !ok {
			continue
		}
		q.dispatch(line, priority)
		if !q.sleepDelay() {
			break
		}
	}
	q.terminate()
}

// waitReady blocks until a line is dispatchable or shutdown is requested.
// The predicate is re-checked after every wake; the wake signal alone is
// never trusted. A dispatchable line is preferred over a pending shutdown
// so that a line enqueued just before Shutdown still goes out; the delay
// step afterwards observes the shutdown and terminates.
func (q *OutputQueue) waitReady() bool {
	for {
		if q.ready() {
			return true
		}
		select {
		case <-q.quit:
			// A line enqueued just before the shutdown signal still goes
			// out; otherwise stop waiting.
			return q.ready()
		case <-q.wake:
		}
	}
}

func (q *OutputQueue) ready() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.high) > 0 || (q.lowEnabled && len(q.low) > 0)
}

// pop removes exactly one line, high tier first, low tier only when
// draining is enabled.
func (q *OutputQueue) pop() (line, priority string, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.high) > 0 {
		line = q.high[0]
		q.high = q.high[1:]
		return line, priorityHigh, true
	}
	if q.lowEnabled && len(q.low) > 0 {
		line = q.low[0]
		q.low = q.low[1:]
		return line, priorityLow, true
	}
	return "", "", false
}

// dispatch frames and writes one line. Failures are reported to the
// exception listener and the line is dropped, not retried.
func (q *OutputQueue) dispatch(line, priority string) {
	if err := q.writeFlush(line); err != nil {
		q.exceptions.Queue(&OutputError{
			Desc: "exception sending queued message",
			Line: line,
			Err:  err,
		})
		observability.RecordWriteFailure(q.name)
		return
	}
	q.outputs.Queue(line)
	observability.RecordLineSent(q.name, priority)
}

func (q *OutputQueue) writeFlush(line string) error {
	if _, err := q.sink.Write(protocol.Frame(line)); err != nil {
		return err
	}
	return q.sink.Flush()
}

// sleepDelay suspends for the current delay value. A shutdown arriving
// during the suspension wins over the timer.
func (q *OutputQueue) sleepDelay() bool {
	d := q.MessageDelay()
	if d <= 0 {
		select {
		case <-q.quit:
			return false
		default:
			return true
		}
	}
	timer := q.clock.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.Chan():
		return true
	case <-q.quit:
		return false
	}
}

// terminate performs the single terminal write and closes the sink. Lines
// still queued are discarded. Failures are reported but never prevent
// termination.
func (q *OutputQueue) terminate() {
	q.mu.Lock()
	reason := q.quitReason
	q.mu.Unlock()

	line := protocol.Quit(reason)
	err := q.writeFlush(line)
	if closeErr := q.sink.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		q.exceptions.Queue(&OutputError{
			Desc: "exception sending quit message",
			Line: line,
			Err:  err,
		})
		observability.RecordWriteFailure(q.name)
		return
	}
	observability.RecordQuitWrite(q.name)
}
