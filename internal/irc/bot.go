package irc

import (
	"bufio"
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/evilmidget38/KittehIRCBot/internal/config"
	"github.com/evilmidget38/KittehIRCBot/internal/logging"
	"github.com/evilmidget38/KittehIRCBot/internal/protocol"
)

var (
	ErrAlreadyConnected = errors.New("irc: already connected")
	ErrNotConnected     = errors.New("irc: not connected")
	ErrTLSBadCA         = errors.New("irc: tls ca file contains no certificates")
)

const (
	connectTimeout = 15 * time.Second
	maxNickRetries = 3
)

// BotStatus is a point-in-time snapshot of the client runtime.
type BotStatus struct {
	Connected    bool   `json:"connected"`
	HighQueued   int    `json:"high_queued"`
	LowQueued    int    `json:"low_queued"`
	MessageDelay string `json:"message_delay"`
}

// Bot drives one server connection: dial, handshake, the inbound read
// loop, and the outbound queue owning all writes.
type Bot struct {
	cfg        config.BotConfig
	clock      clockwork.Clock
	exceptions ExceptionListener
	outputs    OutputListener

	mu   sync.Mutex
	conn net.Conn
	out  *OutputQueue

	welcomed    atomic.Bool
	nickRetries int
}

func NewBot(cfg config.BotConfig) (*Bot, error) {
	if err := config.ValidateBotConfig(cfg); err != nil {
		return nil, err
	}
	if cfg.User == "" {
		cfg.User = cfg.Nick
	}
	return &Bot{
		cfg:        cfg,
		clock:      clockwork.NewRealClock(),
		exceptions: LogExceptionListener{Bot: cfg.Name},
		outputs:    LogOutputListener{Bot: cfg.Name},
	}, nil
}

// SetExceptionListener replaces the write-failure listener. Call before
// Connect.
func (b *Bot) SetExceptionListener(l ExceptionListener) {
	if l != nil {
		b.exceptions = l
	}
}

// SetOutputListener replaces the sent-line listener. Call before Connect.
func (b *Bot) SetOutputListener(l OutputListener) {
	if l != nil {
		b.outputs = l
	}
}

// Connect dials the server, starts the outbound queue, sends the
// registration handshake, and spawns the read loop.
func (b *Bot) Connect(ctx context.Context) error {
	b.mu.Lock()
	started := b.out != nil
	b.mu.Unlock()
	if started {
		return ErrAlreadyConnected
	}

	dialer := net.Dialer{Timeout: connectTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", b.cfg.Server)
	if err != nil {
		return fmt.Errorf("irc: dial %s: %w", b.cfg.Server, err)
	}
	if b.cfg.TLS.Enabled {
		tlsCfg, err := b.tlsConfig()
		if err != nil {
			_ = conn.Close()
			return err
		}
		tlsConn := tls.Client(conn, tlsCfg)
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			_ = conn.Close()
			return fmt.Errorf("irc: tls handshake %s: %w", b.cfg.Server, err)
		}
		conn = tlsConn
	}

	b.start(conn)
	logging.Infof("irc.Bot connected bot=%q server=%q tls=%v", b.cfg.Name, b.cfg.Server, b.cfg.TLS.Enabled)
	return nil
}

// start wires an established connection into the queue and read loop.
// Split from Connect so tests can drive the bot over a pipe.
func (b *Bot) start(conn net.Conn) {
	out := NewOutputQueue(OutputQueueConfig{
		Name:         b.cfg.Name,
		Sink:         &connSink{w: bufio.NewWriter(conn), closer: conn},
		MessageDelay: b.cfg.MessageDelay(),
		Clock:        b.clock,
		Exceptions:   b.exceptions,
		Outputs:      b.outputs,
	})

	b.mu.Lock()
	b.conn = conn
	b.out = out
	b.mu.Unlock()

	out.Start()
	b.handshake(out)
	go b.readLoop(conn, out)
}

func (b *Bot) handshake(out *OutputQueue) {
	if b.cfg.Password != "" {
		out.Queue(protocol.Pass(b.cfg.Password), true)
	}
	if nick, err := protocol.Nick(b.cfg.Nick); err == nil {
		out.Queue(nick, true)
	}
	if user, err := protocol.User(b.cfg.User, b.cfg.RealName); err == nil {
		out.Queue(user, true)
	}
}

func (b *Bot) readLoop(conn net.Conn, out *OutputQueue) {
	reader := bufio.NewReader(conn)
	for {
		raw, err := reader.ReadString('\n')
		if err != nil {
			if !out.shuttingDown() {
				if !errors.Is(err, io.EOF) {
					logging.Warnf("irc.Bot read failed bot=%q err=%v", b.cfg.Name, err)
				}
				out.Shutdown("")
			}
			return
		}
		msg, err := protocol.ParseMessage(raw)
		if err != nil {
			continue
		}
		b.handle(msg, out)
	}
}

func (b *Bot) handle(msg protocol.Message, out *OutputQueue) {
	switch msg.Command {
	case protocol.CmdPing:
		out.Queue(protocol.Pong(msg.Trailing()), true)
	case protocol.RplWelcome:
		if !b.welcomed.Swap(true) {
			out.EnableLowPriority()
			logging.Infof("irc.Bot registered bot=%q nick=%q", b.cfg.Name, b.cfg.Nick)
			b.joinChannels(out)
		}
	case protocol.ErrNicknameInUse:
		b.nickRetries++
		if b.nickRetries > maxNickRetries {
			logging.Errorf("irc.Bot nick exhausted bot=%q nick=%q", b.cfg.Name, b.cfg.Nick)
			out.Shutdown("no available nickname")
			return
		}
		fallback := b.cfg.Nick + strings.Repeat("_", b.nickRetries)
		logging.Warnf("irc.Bot nick in use bot=%q trying=%q", b.cfg.Name, fallback)
		if nick, err := protocol.Nick(fallback); err == nil {
			out.Queue(nick, true)
		}
	case protocol.CmdError:
		logging.Warnf("irc.Bot server error bot=%q message=%q", b.cfg.Name, msg.Trailing())
	default:
		logging.Debugf("irc.Bot received bot=%q command=%q", b.cfg.Name, msg.Command)
	}
}

func (b *Bot) joinChannels(out *OutputQueue) {
	for _, channel := range b.cfg.Channels {
		join, err := protocol.Join(channel)
		if err != nil {
			logging.Warnf("irc.Bot skipping channel bot=%q channel=%q err=%v", b.cfg.Name, channel, err)
			continue
		}
		out.Queue(join, false)
	}
}

// SendMessage queues a PRIVMSG at low priority.
func (b *Bot) SendMessage(target, text string) error {
	out := b.outQueue()
	if out == nil {
		return ErrNotConnected
	}
	line, err := protocol.Privmsg(target, text)
	if err != nil {
		return err
	}
	out.Queue(line, false)
	return nil
}

// SendRawLine queues one raw line at the caller's chosen priority. The
// line is sanitized and clamped before queueing.
func (b *Bot) SendRawLine(line string, highPriority bool) error {
	out := b.outQueue()
	if out == nil {
		return ErrNotConnected
	}
	out.Queue(protocol.Truncate(protocol.Sanitize(line)), highPriority)
	return nil
}

// SetMessageDelay adjusts the outbound rate limit at runtime.
func (b *Bot) SetMessageDelay(d time.Duration) {
	if out := b.outQueue(); out != nil {
		out.SetMessageDelay(d)
	}
}

// Shutdown requests the terminal QUIT write and waits for the worker to
// finish or the context to expire.
func (b *Bot) Shutdown(ctx context.Context, reason string) error {
	out := b.outQueue()
	if out == nil {
		return ErrNotConnected
	}
	out.Shutdown(reason)
	select {
	case <-out.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed once the outbound worker has terminated. Returns nil
// before Connect.
func (b *Bot) Done() <-chan struct{} {
	out := b.outQueue()
	if out == nil {
		return nil
	}
	return out.Done()
}

// Status reports the current runtime snapshot for the admin surface.
func (b *Bot) Status() BotStatus {
	out := b.outQueue()
	if out == nil {
		return BotStatus{}
	}
	high, low := out.Depths()
	return BotStatus{
		Connected:    b.welcomed.Load(),
		HighQueued:   high,
		LowQueued:    low,
		MessageDelay: out.MessageDelay().String(),
	}
}

func (b *Bot) outQueue() *OutputQueue {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.out
}

func (b *Bot) tlsConfig() (*tls.Config, error) {
	serverName := b.cfg.TLS.ServerName
	if serverName == "" {
		host, _, err := net.SplitHostPort(b.cfg.Server)
		if err == nil {
			serverName = host
		}
	}
	tlsCfg := &tls.Config{
		ServerName:         serverName,
		InsecureSkipVerify: b.cfg.TLS.InsecureSkipVerify,
	}
	if caFile := strings.TrimSpace(b.cfg.TLS.CAFile); caFile != "" {
		pem, err := os.ReadFile(caFile)
		if err != nil {
			return nil, fmt.Errorf("irc: read tls ca file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("%w: %s", ErrTLSBadCA, caFile)
		}
		tlsCfg.RootCAs = pool
	}
	return tlsCfg, nil
}

// connSink adapts a net.Conn to the queue's sink contract with buffered
// writes. Only the queue worker touches it after start.
type connSink struct {
	w      *bufio.Writer
	closer io.Closer
}

func (s *connSink) Write(p []byte) (int, error) {
	return s.w.Write(p)
}

func (s *connSink) Flush() error {
	return s.w.Flush()
}

func (s *connSink) Close() error {
	return s.closer.Close()
}
