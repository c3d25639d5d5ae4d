package protocol

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// MaxLineLen is the RFC 1459 limit for one message, terminator included.
	MaxLineLen = 512

	lineTerminator = "\r\n"
)

var (
	ErrEmptyTarget  = errors.New("protocol: empty target")
	ErrEmptyNick    = errors.New("protocol: empty nick")
	ErrEmptyChannel = errors.New("protocol: empty channel")
)

// Frame appends the wire terminator to one outbound line.
func Frame(line string) []byte {
	return []byte(line + lineTerminator)
}

// Sanitize strips CR and LF so one queued line cannot smuggle extra
// commands onto the connection.
func Sanitize(line string) string {
	if !strings.ContainsAny(line, "\r\n") {
		return line
	}
	line = strings.ReplaceAll(line, "\r", "")
	return strings.ReplaceAll(line, "\n", "")
}

// Truncate clamps a line to the protocol limit, leaving room for the
// terminator appended at dispatch.
func Truncate(line string) string {
	limit := MaxLineLen - len(lineTerminator)
	if len(line) <= limit {
		return line
	}
	return line[:limit]
}

// Quit builds the terminal line: bare QUIT, or QUIT with a trailing reason.
func Quit(reason string) string {
	if reason == "" {
		return "QUIT"
	}
	return "QUIT :" + Sanitize(reason)
}

// Pong answers one server PING token.
func Pong(token string) string {
	return "PONG :" + Sanitize(token)
}

func Nick(nick string) (string, error) {
	nick = Sanitize(strings.TrimSpace(nick))
	if nick == "" {
		return "", ErrEmptyNick
	}
	return "NICK " + nick, nil
}

func User(user, realName string) (string, error) {
	user = Sanitize(strings.TrimSpace(user))
	if user == "" {
		return "", ErrEmptyNick
	}
	if realName == "" {
		realName = user
	}
	return fmt.Sprintf("USER %s 8 * :%s", user, Sanitize(realName)), nil
}

func Pass(password string) string {
	return "PASS " + Sanitize(password)
}

func Join(channel string) (string, error) {
	channel = Sanitize(strings.TrimSpace(channel))
	if channel == "" {
		return "", ErrEmptyChannel
	}
	return "JOIN " + channel, nil
}

// Privmsg builds one message line, clamped to the wire limit.
func Privmsg(target, text string) (string, error) {
	target = Sanitize(strings.TrimSpace(target))
	if target == "" {
		return "", ErrEmptyTarget
	}
	return Truncate(fmt.Sprintf("PRIVMSG %s :%s", target, Sanitize(text))), nil
}

// Notice builds one notice line, clamped to the wire limit.
func Notice(target, text string) (string, error) {
	target = Sanitize(strings.TrimSpace(target))
	if target == "" {
		return "", ErrEmptyTarget
	}
	return Truncate(fmt.Sprintf("NOTICE %s :%s", target, Sanitize(text))), nil
}
