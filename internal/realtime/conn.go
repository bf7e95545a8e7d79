package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gorilla/websocket"
	"github.com/spf13/cast"

	"github.com/hariomahlawat/ProjectManagement-sub006/internal/model"
)

var (
	// ErrClosed is returned by Send after Close.
	ErrClosed = errors.New("realtime: connection closed")

	// ErrNotConnected is returned by Send while a reconnect is in progress.
	ErrNotConnected = errors.New("realtime: not connected")
)

const (
	// writeWait bounds a single frame write.
	writeWait = 10 * time.Second

	// pongWait is how long the read side waits for any traffic.
	pongWait = 60 * time.Second

	// pingPeriod must be shorter than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize caps a single inbound websocket message. A snapshot
	// of a few hundred notifications fits comfortably.
	maxMessageSize = 4 << 20

	handshakeTimeout = 15 * time.Second
)

// DefaultReconnectDelays is the wait before each reconnect attempt. Once
// exhausted the connection closes for good.
var DefaultReconnectDelays = []time.Duration{
	0,
	2 * time.Second,
	10 * time.Second,
	30 * time.Second,
}

// Handlers receives channel events. Nil fields are ignored. All callbacks
// run on the connection's read goroutine, one at a time.
type Handlers struct {
	OnUnreadCount   func(count int)
	OnNotifications func(list []model.RawNotification)
	OnNotification  func(item model.RawNotification)

	// OnReconnecting fires when the connection drops and retries begin.
	OnReconnecting func(err error)

	// OnReconnected fires after a successful reconnect.
	OnReconnected func()

	// OnClose fires when the retry budget is exhausted or the server
	// closes without allowing reconnect. It does not fire after Close.
	OnClose func(err error)
}

// Dialer opens hub connections.
type Dialer struct {
	// URL is the hub endpoint. http(s) schemes are mapped to ws(s).
	URL string

	// Token is sent as a Bearer header and as the access_token query
	// parameter.
	Token string

	// ReconnectDelays overrides DefaultReconnectDelays.
	ReconnectDelays []time.Duration

	// WS overrides the websocket dialer.
	WS *websocket.Dialer

	Logger *slog.Logger
}

// NewDialer creates a Dialer with default reconnect behavior.
func NewDialer(hubURL, token string, logger *slog.Logger) *Dialer {
	return &Dialer{
		URL:             hubURL,
		Token:           token,
		ReconnectDelays: DefaultReconnectDelays,
		Logger:          logger,
	}
}

func (d *Dialer) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

// Dial connects, completes the hub handshake and starts the read loop.
// Errors here mean the channel is unavailable; no handler fires.
func (d *Dialer) Dial(ctx context.Context, h Handlers) (*Conn, error) {
	ws, err := d.connect(ctx)
	if err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(context.Background())
	c := &Conn{
		dialer:   d,
		handlers: h,
		logger:   d.logger().With(slog.String("component", "realtime")),
		ws:       ws,
		ctx:      runCtx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go c.run(ws)

	return c, nil
}

// endpoint returns the websocket URL with the access token attached.
func (d *Dialer) endpoint() (string, error) {
	u, err := url.Parse(d.URL)
	if err != nil {
		return "", fmt.Errorf("parsing hub url: %w", err)
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported hub url scheme %q", u.Scheme)
	}

	if d.Token != "" {
		q := u.Query()
		q.Set("access_token", d.Token)
		u.RawQuery = q.Encode()
	}

	return u.String(), nil
}

func (d *Dialer) connect(ctx context.Context) (*websocket.Conn, error) {
	target, err := d.endpoint()
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	if d.Token != "" {
		header.Set("Authorization", "Bearer "+d.Token)
	}

	wsd := d.WS
	if wsd == nil {
		wsd = &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: handshakeTimeout,
		}
	}

	ws, resp, err := wsd.DialContext(ctx, target, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dialing hub (status %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("dialing hub: %w", err)
	}

	if err := handshake(ws); err != nil {
		_ = ws.Close()
		return nil, err
	}

	return ws, nil
}

// handshake negotiates the JSON hub protocol.
func handshake(ws *websocket.Conn) error {
	data, err := encodeRecord(handshakeRequest{Protocol: "json", Version: 1})
	if err != nil {
		return err
	}

	_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
	if err := ws.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("writing hub handshake: %w", err)
	}

	_ = ws.SetReadDeadline(time.Now().Add(handshakeTimeout))
	_, msg, err := ws.ReadMessage()
	if err != nil {
		return fmt.Errorf("reading hub handshake: %w", err)
	}

	records := splitRecords(msg)
	if len(records) == 0 {
		return errors.New("empty hub handshake response")
	}

	var resp handshakeResponse
	if err := json.Unmarshal(records[0], &resp); err != nil {
		return fmt.Errorf("decoding hub handshake: %w", err)
	}
	if resp.Error != "" {
		return fmt.Errorf("hub handshake rejected: %s", resp.Error)
	}

	_ = ws.SetReadDeadline(time.Time{})
	return nil
}

// Conn is a live hub connection with automatic reconnect.
type Conn struct {
	dialer   *Dialer
	handlers Handlers
	logger   *slog.Logger

	mu     sync.Mutex
	ws     *websocket.Conn // nil while reconnecting
	closed bool

	// gorilla allows one concurrent writer.
	writeMu sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// Send invokes a hub method without waiting for a result.
func (c *Conn) Send(ctx context.Context, method string, args ...any) error {
	c.mu.Lock()
	ws, closed := c.ws, c.closed
	c.mu.Unlock()

	if closed {
		return ErrClosed
	}
	if ws == nil {
		return ErrNotConnected
	}

	if args == nil {
		args = []any{}
	}
	data, err := encodeRecord(outbound{
		Type:      typeInvocation,
		Target:    method,
		Arguments: args,
	})
	if err != nil {
		return err
	}

	deadline := time.Now().Add(writeWait)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	_ = ws.SetWriteDeadline(deadline)
	if err := ws.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("sending %s: %w", method, err)
	}
	return nil
}

// Connected reports whether a socket is currently attached.
func (c *Conn) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws != nil && !c.closed
}

// Done is closed once the read loop has exited for good.
func (c *Conn) Done() <-chan struct{} {
	return c.done
}

// Close stops the connection and any reconnect in progress. Handlers do
// not fire afterwards.
func (c *Conn) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	ws := c.ws
	c.ws = nil
	c.mu.Unlock()

	c.cancel()

	if ws != nil {
		_ = ws.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait),
		)
		return ws.Close()
	}
	return nil
}

func (c *Conn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// run owns the connection lifecycle: serve, reconnect, repeat.
func (c *Conn) run(ws *websocket.Conn) {
	defer close(c.done)

	for {
		allowReconnect, err := c.serve(ws)

		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return
		}
		c.ws = nil
		c.mu.Unlock()

		if !allowReconnect {
			c.logger.Warn("hub closed by server", slog.Any("error", err))
			c.fireClose(err)
			return
		}

		c.logger.Warn("hub connection lost, reconnecting", slog.Any("error", err))
		if c.handlers.OnReconnecting != nil {
			c.handlers.OnReconnecting(err)
		}

		next, rerr := c.reconnect()
		if rerr != nil {
			if c.isClosed() {
				return
			}
			c.logger.Warn("hub reconnect gave up", slog.Any("error", rerr))
			c.fireClose(rerr)
			return
		}

		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			_ = next.Close()
			return
		}
		c.ws = next
		c.mu.Unlock()

		c.logger.Info("hub reconnected")
		if c.handlers.OnReconnected != nil {
			c.handlers.OnReconnected()
		}
		ws = next
	}
}

func (c *Conn) fireClose(err error) {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.cancel()

	if c.handlers.OnClose != nil {
		c.handlers.OnClose(err)
	}
}

// reconnect retries the dial on the configured schedule.
func (c *Conn) reconnect() (*websocket.Conn, error) {
	delays := c.dialer.ReconnectDelays
	if delays == nil {
		delays = DefaultReconnectDelays
	}
	if len(delays) == 0 {
		return nil, errors.New("reconnect disabled")
	}

	if delays[0] > 0 {
		t := time.NewTimer(delays[0])
		select {
		case <-t.C:
		case <-c.ctx.Done():
			t.Stop()
			return nil, c.ctx.Err()
		}
	}

	op := func() (*websocket.Conn, error) {
		return c.dialer.connect(c.ctx)
	}

	return backoff.Retry(c.ctx, op,
		backoff.WithBackOff(&scheduleBackOff{delays: delays[1:]}),
		backoff.WithMaxTries(uint(len(delays))),
		backoff.WithNotify(func(err error, next time.Duration) {
			c.logger.Debug("hub reconnect attempt failed",
				slog.Any("error", err),
				slog.Duration("retry_in", next),
			)
		}),
	)
}

// serve reads until the socket fails. The bool reports whether a
// reconnect is allowed afterwards.
func (c *Conn) serve(ws *websocket.Conn) (bool, error) {
	defer ws.Close()

	stopPing := make(chan struct{})
	defer close(stopPing)
	go c.ping(ws, stopPing)

	ws.SetReadLimit(maxMessageSize)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, payload, err := ws.ReadMessage()
		if err != nil {
			return true, err
		}
		_ = ws.SetReadDeadline(time.Now().Add(pongWait))

		for _, record := range splitRecords(payload) {
			var msg inbound
			if err := json.Unmarshal(record, &msg); err != nil {
				c.logger.Warn("dropping malformed hub record", slog.Any("error", err))
				continue
			}

			switch msg.Type {
			case typeInvocation:
				c.dispatch(msg)
			case typeClose:
				if msg.Error != "" {
					return msg.AllowReconnect, fmt.Errorf("server closed connection: %s", msg.Error)
				}
				return msg.AllowReconnect, errors.New("server closed connection")
			case typePing, typeCompletion, typeStreamItem:
			default:
				c.logger.Debug("ignoring hub record", slog.Int("type", msg.Type))
			}
		}
	}
}

func (c *Conn) ping(ws *websocket.Conn, stop <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

// dispatch routes an invocation to its handler.
func (c *Conn) dispatch(msg inbound) {
	if len(msg.Arguments) == 0 {
		c.logger.Debug("hub invocation without arguments", slog.String("target", msg.Target))
		return
	}
	arg := msg.Arguments[0]

	switch {
	case strings.EqualFold(msg.Target, TargetReceiveUnreadCount):
		if c.handlers.OnUnreadCount == nil {
			return
		}
		var v any
		if err := json.Unmarshal(arg, &v); err != nil {
			c.logger.Warn("bad unread count payload", slog.Any("error", err))
			return
		}
		n, err := cast.ToIntE(v)
		if err != nil {
			c.logger.Warn("bad unread count payload", slog.Any("error", err))
			return
		}
		c.handlers.OnUnreadCount(n)

	case strings.EqualFold(msg.Target, TargetReceiveNotifications):
		if c.handlers.OnNotifications == nil {
			return
		}
		var list []model.RawNotification
		if err := json.Unmarshal(arg, &list); err != nil {
			c.logger.Warn("bad notifications payload", slog.Any("error", err))
			return
		}
		c.handlers.OnNotifications(list)

	case strings.EqualFold(msg.Target, TargetReceiveNotification):
		if c.handlers.OnNotification == nil {
			return
		}
		var item model.RawNotification
		if err := json.Unmarshal(arg, &item); err != nil || item == nil {
			c.logger.Warn("bad notification payload", slog.Any("error", err))
			return
		}
		c.handlers.OnNotification(item)

	default:
		c.logger.Debug("unhandled hub target", slog.String("target", msg.Target))
	}
}

// scheduleBackOff yields a fixed list of delays, then stops.
type scheduleBackOff struct {
	delays []time.Duration
	next   int
}

func (s *scheduleBackOff) NextBackOff() time.Duration {
	if s.next >= len(s.delays) {
		return backoff.Stop
	}
	d := s.delays[s.next]
	s.next++
	return d
}

func (s *scheduleBackOff) Reset() {
	s.next = 0
}
