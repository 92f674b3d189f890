/*
Package chat contains the real-time presence and messaging layer.

This file defines the Client struct, the Peer backed by a WebSocket connection. It runs
the read and write pumps, enforces the per-connection inbound rate limit and forwards
decoded frames to the Manager.
*/
package chat

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"backbench/internal/pkg/errs"
	"backbench/internal/pkg/logx"
	"backbench/internal/pkg/randx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of a frame sent by the client.
	maxMessageSize = 8192

	// capacity of the outbound queue.
	sendQueueSize = 256

	// inbound frames per second, and the burst allowed on top.
	inboundRate  = 5
	inboundBurst = 10
)

// Client struct represents an active WebSocket connection.
type Client struct {
	id      string
	conn    *websocket.Conn
	manager *Manager

	// a buffered channel used to queue frames waiting to be sent to the client.
	send chan []byte

	// mu guards closed and the close of send.
	mu     sync.Mutex
	closed bool

	// limits inbound frames from this connection.
	limiter *rate.Limiter

	// structured logger with connection context.
	logger zerolog.Logger
}

// NewClient wraps conn with a fresh connection ID.
func NewClient(manager *Manager, conn *websocket.Conn) *Client {
	id := randx.ConnectionID()

	return &Client{
		id:      id,
		conn:    conn,
		manager: manager,
		send:    make(chan []byte, sendQueueSize),
		limiter: rate.NewLimiter(rate.Limit(inboundRate), inboundBurst),
		logger:  logx.Logger().With().Str("conn_id", id).Logger(),
	}
}

// ID implements Peer.
func (c *Client) ID() string {
	return c.id
}

// Send implements Peer. It never blocks.
func (c *Client) Send(frame []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrPeerClosed
	}

	select {
	case c.send <- frame:
		return nil
	default:
		return ErrSendQueueFull
	}
}

// Close implements Peer. WritePump flushes what is already queued, writes a close
// frame and closes the socket.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// ReadPump reads frames until the connection fails, then reports the disconnect.
func (c *Client) ReadPump() {
	defer c.cleanupOnDisconnect()

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, messageBytes, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Error reading message (Client close/going away)")
			}
			break
		}

		c.processInboundMessage(messageBytes)
	}
}

// cleanupOnDisconnect tells the Manager the connection is gone and stops WritePump.
func (c *Client) cleanupOnDisconnect() {
	c.logger.Debug().Msg("Client connection cleanup starting.")

	c.manager.Disconnect(c.id)
	c.Close()
}

// processInboundMessage applies the rate limit, decodes the envelope and hands it to the Manager.
func (c *Client) processInboundMessage(messageBytes []byte) {
	if !c.limiter.Allow() {
		c.logger.Warn().Msg("Inbound rate limit exceeded, frame dropped.")
		c.sendError(errs.NewError(errs.ErrRateLimitExceeded))
		return
	}

	frame, err := DecodeFrame(messageBytes)
	if err != nil {
		c.logger.Warn().Err(err).Int("bytes", len(messageBytes)).Msg("Client sent invalid frame")
		c.sendError(errs.NewError(errs.ErrInvalidJSONFormat))
		return
	}

	c.manager.Deliver(c.id, frame)
}

func (c *Client) sendError(err *errs.CustomError) {
	frame, encErr := EncodeFrame(EventMessageError, ErrorPayloadFrom(err))
	if encErr != nil {
		c.logger.Error().Err(encErr).Msg("Failed to encode error frame")
		return
	}
	if sendErr := c.Send(frame); sendErr != nil {
		c.logger.Warn().Err(sendErr).Msg("Failed to queue error frame")
	}
}

// WritePump writes queued frames and heartbeats until the queue is closed or a write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		// ensure the connection is closed on exit
		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Client connection close error in WritePump")
		}
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !c.writeQueuedMessage(message, ok) {
				return
			}

		case <-ticker.C:
			if !c.writePingMessage() {
				return
			}
		}
	}
}

// writeQueuedMessage writes one frame, or a close frame once the queue is closed.
// Returns true if the WritePump loop should continue, false if it should terminate.
func (c *Client) writeQueuedMessage(message []byte, ok bool) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if !ok {
		closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		if err := c.conn.WriteMessage(websocket.CloseMessage, closeMsg); err != nil {
			c.logger.Debug().Err(err).Msg("Error writing close message")
		}
		return false
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
		c.logger.Warn().Err(err).Msg("Error writing message")
		return false
	}

	return true
}

// writePingMessage sends a periodic WebSocket Ping message to maintain the connection heartbeat.
// Returns false if the WritePump loop should terminate due to write failure.
func (c *Client) writePingMessage() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
		return false
	}

	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		c.logger.Debug().Err(err).Msg("Error writing ping")
		return false
	}

	return true
}
