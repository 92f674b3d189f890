/*
Package chat contains the real-time presence and messaging layer.

This file defines the Manager, the single event loop that serialises every connection
event. All Registry mutations and all broadcasts happen on its goroutine; account
lookups run on their own goroutines and post their result back to the loop.
*/
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"backbench/internal/app/store"
	"backbench/internal/configs"
	"backbench/internal/pkg/errs"
	"backbench/internal/pkg/logx"
)

const eventChannelBuffer = 1024

// ErrManagerStopped is returned by calls made after Shutdown.
var ErrManagerStopped = errors.New("chat: manager stopped")

type connectEvent struct {
	peer Peer
}

type inboundEvent struct {
	connID string
	frame  Frame
}

type authResultEvent struct {
	connID   string
	username string
	err      error
}

type disconnectEvent struct {
	connID string
}

type onlineQuery struct {
	reply chan []string
}

// Manager owns the live connections and the Connection Registry.
type Manager struct {
	registry *Registry
	peers    *PeerSet
	presence *Presence
	broker   *Broker

	// connections with an account lookup in flight.
	pending map[string]struct{}

	// the single ordered queue consumed by run.
	events chan any

	// lookupCtx is cancelled on Shutdown to abandon in-flight lookups.
	lookupCtx     context.Context
	cancelLookups context.CancelFunc
	lookups       sync.WaitGroup

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once

	logger zerolog.Logger
}

// NewManager constructs a Manager and starts its loop.
func NewManager(cfg *configs.AppConfig, directory store.Directory) *Manager {
	registry := NewRegistry()
	peers := NewPeerSet()
	lookupCtx, cancel := context.WithCancel(context.Background())

	m := &Manager{
		registry:      registry,
		peers:         peers,
		presence:      NewPresence(registry, peers, directory, cfg.AuthTimeout),
		broker:        NewBroker(registry, peers),
		pending:       make(map[string]struct{}),
		events:        make(chan any, eventChannelBuffer),
		lookupCtx:     lookupCtx,
		cancelLookups: cancel,
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
		logger:        logx.Component("Manager"),
	}

	go m.run()

	return m
}

// Connect adds a new unauthenticated connection.
func (m *Manager) Connect(p Peer) error {
	if !m.post(connectEvent{peer: p}) {
		return ErrManagerStopped
	}
	return nil
}

// Deliver queues an inbound frame from connID.
func (m *Manager) Deliver(connID string, f Frame) {
	m.post(inboundEvent{connID: connID, frame: f})
}

// Disconnect queues the removal of connID. It is safe to call more than once.
func (m *Manager) Disconnect(connID string) {
	m.post(disconnectEvent{connID: connID})
}

// Online returns the current membership snapshot.
func (m *Manager) Online(ctx context.Context) ([]string, error) {
	reply := make(chan []string, 1)

	select {
	case m.events <- onlineQuery{reply: reply}:
	case <-m.stop:
		return nil, ErrManagerStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case snapshot := <-reply:
		return snapshot, nil
	case <-m.done:
		return nil, ErrManagerStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Shutdown stops the loop, closes every connection and waits for pending lookups.
func (m *Manager) Shutdown() {
	m.stopOnce.Do(func() {
		m.logger.Info().Msg("Shutting down chat manager...")
		close(m.stop)
		m.cancelLookups()
	})

	<-m.done
	m.lookups.Wait()

	m.logger.Info().Msg("Chat manager shutdown complete.")
}

// post enqueues ev unless the loop has stopped.
func (m *Manager) post(ev any) bool {
	select {
	case <-m.stop:
		return false
	default:
	}

	select {
	case m.events <- ev:
		return true
	case <-m.stop:
		return false
	}
}

func (m *Manager) run() {
	defer close(m.done)

	m.logger.Info().Msg("Chat loop started.")

	for {
		select {
		case ev := <-m.events:
			m.handle(ev)

		case <-m.stop:
			m.peers.CloseAll()
			m.logger.Info().Msg("Chat loop stopped.")
			return
		}
	}
}

func (m *Manager) handle(ev any) {
	switch ev := ev.(type) {
	case connectEvent:
		if !m.peers.Add(ev.peer) {
			m.logger.Warn().Str("conn_id", ev.peer.ID()).Msg("Duplicate connection ID, closing new peer.")
			ev.peer.Close()
			return
		}
		m.logger.Debug().Str("conn_id", ev.peer.ID()).Int("peers", m.peers.Len()).Msg("Connection opened.")

	case inboundEvent:
		m.handleInbound(ev.connID, ev.frame)

	case authResultEvent:
		m.handleAuthResult(ev)

	case disconnectEvent:
		delete(m.pending, ev.connID)
		m.presence.Disconnect(ev.connID)

	case onlineQuery:
		ev.reply <- m.registry.Snapshot()

	default:
		m.logger.Error().Type("event", ev).Msg("Unknown loop event.")
	}
}

func (m *Manager) handleInbound(connID string, f Frame) {
	if !m.peers.Has(connID) {
		return
	}

	switch f.Event {
	case EventAuthenticate:
		var email string
		if err := json.Unmarshal(f.Data, &email); err != nil {
			m.sendError(connID, errs.NewError(errs.ErrInvalidParams))
			return
		}
		m.startAuthentication(connID, email)

	case EventChatMessage:
		var text string
		if err := json.Unmarshal(f.Data, &text); err != nil {
			m.sendError(connID, errs.NewError(errs.ErrInvalidParams))
			return
		}
		m.broker.Submit(connID, text)

	default:
		m.sendError(connID, errs.NewError(errs.ErrUnsupportedEvent, f.Event))
	}
}

func (m *Manager) startAuthentication(connID, email string) {
	if _, ok := m.registry.Identity(connID); ok {
		m.logger.Info().Str("conn_id", connID).Msg("Authenticate ignored: connection already authenticated.")
		return
	}
	if _, ok := m.pending[connID]; ok {
		m.logger.Info().Str("conn_id", connID).Msg("Authenticate ignored: lookup already in flight.")
		return
	}

	m.pending[connID] = struct{}{}
	m.lookups.Add(1)

	go func() {
		defer m.lookups.Done()

		username, err := m.presence.Resolve(m.lookupCtx, email)
		m.post(authResultEvent{connID: connID, username: username, err: err})
	}()
}

func (m *Manager) handleAuthResult(ev authResultEvent) {
	if _, ok := m.pending[ev.connID]; !ok {
		m.logger.Debug().Str("conn_id", ev.connID).Msg("Discarding lookup result for closed connection.")
		return
	}
	delete(m.pending, ev.connID)
	if !m.peers.Has(ev.connID) {
		m.logger.Debug().Str("conn_id", ev.connID).Msg("Discarding lookup result for dropped connection.")
		return
	}

	switch {
	case ev.err == nil:
		m.presence.Admit(ev.connID, ev.username)
	case errors.Is(ev.err, store.ErrUserNotFound):
		m.presence.Reject(ev.connID)
	default:
		m.presence.Unavailable(ev.connID, ev.err)
	}
}

func (m *Manager) sendError(connID string, err *errs.CustomError) {
	_ = m.peers.SendTo(connID, EventMessageError, ErrorPayloadFrom(err))
}
