package transport

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocketConfig configures a WebSocketTransport dial.
type WebSocketConfig struct {
	URL               string
	Subprotocol       string // e.g. "ocpp1.6"
	HandshakeTimeout  time.Duration
	WriteTimeout      time.Duration
	BasicAuthUsername string
	BasicAuthPassword string
	TLSConfig         *tls.Config
}

// WebSocketTransport adapts a gorilla/websocket connection to the
// recv/send/close contract consumed by the session engine. It makes no
// attempt at reconnection or store-and-forward delivery — both are explicit
// Non-goals of the engine this transport serves.
type WebSocketTransport struct {
	conn         *websocket.Conn
	writeTimeout time.Duration
	logger       *slog.Logger

	closeOnce sync.Once
	closed    chan struct{}
}

// DialWebSocket establishes an outbound OCPP-J WebSocket connection, the
// charge-point side of the transport.
func DialWebSocket(ctx context.Context, cfg WebSocketConfig, logger *slog.Logger) (*WebSocketTransport, error) {
	if logger == nil {
		logger = slog.Default()
	}
	handshakeTimeout := cfg.HandshakeTimeout
	if handshakeTimeout == 0 {
		handshakeTimeout = 30 * time.Second
	}
	writeTimeout := cfg.WriteTimeout
	if writeTimeout == 0 {
		writeTimeout = 10 * time.Second
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: handshakeTimeout,
		Subprotocols:     []string{cfg.Subprotocol},
		TLSClientConfig:  cfg.TLSConfig,
	}

	headers := http.Header{}
	if cfg.BasicAuthUsername != "" {
		headers.Set("Authorization", basicAuth(cfg.BasicAuthUsername, cfg.BasicAuthPassword))
	}

	conn, resp, err := dialer.DialContext(ctx, cfg.URL, headers)
	if err != nil {
		return nil, fmt.Errorf("transport: dial %s: %w", cfg.URL, err)
	}
	if resp != nil {
		resp.Body.Close()
	}

	logger.Info("websocket transport connected", "url", cfg.URL, "subprotocol", conn.Subprotocol())

	return &WebSocketTransport{
		conn:         conn,
		writeTimeout: writeTimeout,
		logger:       logger,
		closed:       make(chan struct{}),
	}, nil
}

// NewWebSocketTransport wraps an already-established connection, the
// central-system side of the transport (the connection arrives via an HTTP
// upgrade handled outside this package).
func NewWebSocketTransport(conn *websocket.Conn, logger *slog.Logger) *WebSocketTransport {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebSocketTransport{
		conn:         conn,
		writeTimeout: 10 * time.Second,
		logger:       logger,
		closed:       make(chan struct{}),
	}
}

// Recv blocks until one complete text/binary message has arrived.
func (t *WebSocketTransport) Recv(ctx context.Context) ([]byte, error) {
	type result struct {
		data []byte
		err  error
	}
	done := make(chan result, 1)

	go func() {
		_, data, err := t.conn.ReadMessage()
		done <- result{data: data, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-t.closed:
		return nil, &ClosedError{}
	case r := <-done:
		if r.err != nil {
			t.markClosed()
			return nil, &ClosedError{Cause: r.err}
		}
		return r.data, nil
	}
}

// Send writes one complete text message.
func (t *WebSocketTransport) Send(ctx context.Context, data []byte) error {
	select {
	case <-t.closed:
		return &ClosedError{}
	default:
	}

	deadline := time.Now().Add(t.writeTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	t.conn.SetWriteDeadline(deadline)

	if err := t.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		t.markClosed()
		return &ClosedError{Cause: err}
	}
	return nil
}

// Close sends a normal-closure frame and closes the underlying connection.
func (t *WebSocketTransport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		_ = t.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		err = t.conn.Close()
		close(t.closed)
	})
	return err
}

func (t *WebSocketTransport) markClosed() {
	t.closeOnce.Do(func() {
		close(t.closed)
	})
}

func basicAuth(username, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(username+":"+password))
}
