package protocol

import (
	"errors"
	"strings"
)

var ErrEmptyLine = errors.New("protocol: empty line")

// Server commands and numeric replies the client reacts to.
const (
	CmdPing          = "PING"
	CmdError         = "ERROR"
	RplWelcome       = "001"
	ErrNicknameInUse = "433"
)

// Message is one parsed inbound line. Params holds the middle parameters
// with any trailing parameter folded in as the final element.
type Message struct {
	Prefix  string
	Command string
	Params  []string
}

// Param returns the i-th parameter or the empty string.
func (m Message) Param(i int) string {
	if i < 0 || i >= len(m.Params) {
		return ""
	}
	return m.Params[i]
}

// Trailing returns the final parameter or the empty string.
func (m Message) Trailing() string {
	if len(m.Params) == 0 {
		return ""
	}
	return m.Params[len(m.Params)-1]
}

// ParseMessage splits one raw line into prefix, command, and parameters.
// The caller strips the line terminator before parsing.
func ParseMessage(raw string) (Message, error) {
	raw = strings.TrimRight(raw, "\r\n")
	if strings.TrimSpace(raw) == "" {
		return Message{}, ErrEmptyLine
	}

	var msg Message
	rest := raw
	if strings.HasPrefix(rest, ":") {
		cut := strings.IndexByte(rest, ' ')
		if cut < 0 {
			return Message{}, ErrEmptyLine
		}
		msg.Prefix = rest[1:cut]
		rest = strings.TrimLeft(rest[cut+1:], " ")
	}

	var trailing string
	hasTrailing := false
	if cut := strings.Index(rest, " :"); cut >= 0 {
		trailing = rest[cut+2:]
		rest = rest[:cut]
		hasTrailing = true
	}

	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return Message{}, ErrEmptyLine
	}
	msg.Command = strings.ToUpper(fields[0])
	msg.Params = fields[1:]
	if hasTrailing {
		msg.Params = append(msg.Params, trailing)
	}
	return msg, nil
}
