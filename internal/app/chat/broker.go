package chat

import (
	"github.com/rs/zerolog"

	"backbench/internal/pkg/errs"
	"backbench/internal/pkg/logx"
)

// Broker admits chat messages from authenticated connections and fans them out.
// It runs on the Manager loop, so every recipient sees messages in submission order.
type Broker struct {
	registry *Registry
	peers    *PeerSet
	logger   zerolog.Logger
}

// NewBroker wires a Broker to the shared Registry and PeerSet.
func NewBroker(registry *Registry, peers *PeerSet) *Broker {
	return &Broker{
		registry: registry,
		peers:    peers,
		logger:   logx.Component("Broker"),
	}
}

// Submit broadcasts text from connID to every connection, sender included.
// Unauthenticated senders get EventAuthFailed; oversize text gets EventMessageError.
func (b *Broker) Submit(connID, text string) {
	username, ok := b.registry.Identity(connID)
	if !ok {
		b.logger.Warn().Str("conn_id", connID).Msg("Chat message from unauthenticated connection refused.")
		_ = b.peers.SendTo(connID, EventAuthFailed, errs.NewError(errs.ErrNotAuthenticated).Message)
		return
	}

	if len(text) > MaxContentBytes {
		_ = b.peers.SendTo(connID, EventMessageError, ErrorPayloadFrom(errs.NewError(errs.ErrMessageContentTooLong, MaxContentBytes)))
		return
	}

	b.peers.Broadcast(EventChatMessage, ChatMessage{Username: username, Message: text})
}
