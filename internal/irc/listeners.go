package irc

import (
	"fmt"

	"github.com/evilmidget38/KittehIRCBot/internal/logging"
)

// OutputError describes one failed write of an outbound line.
type OutputError struct {
	Desc string
	Line string
	Err  error
}

func (e *OutputError) Error() string {
	return fmt.Sprintf("irc: %s (line %q): %v", e.Desc, e.Line, e.Err)
}

func (e *OutputError) Unwrap() error {
	return e.Err
}

// ExceptionListener receives write failures the output queue swallows.
// Implementations must not block; they are called from the worker.
type ExceptionListener interface {
	Queue(err *OutputError)
}

// OutputListener receives each successfully dispatched non-terminal line,
// in dispatch order. The terminal QUIT line is not reported.
type OutputListener interface {
	Queue(line string)
}

type nopExceptionListener struct{}

func (nopExceptionListener) Queue(*OutputError) {}

type nopOutputListener struct{}

func (nopOutputListener) Queue(string) {}

// LogExceptionListener surfaces write failures through the process logger.
type LogExceptionListener struct {
	Bot string
}

func (l LogExceptionListener) Queue(err *OutputError) {
	logging.Warnf("irc.OutputQueue write failed bot=%q line=%q err=%v", l.Bot, err.Line, err.Err)
}

// LogOutputListener traces dispatched lines through the process logger.
type LogOutputListener struct {
	Bot string
}

func (l LogOutputListener) Queue(line string) {
	logging.Debugf("irc.OutputQueue sent bot=%q line=%q", l.Bot, line)
}
