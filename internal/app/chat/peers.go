package chat

import (
	"errors"

	"github.com/rs/zerolog"

	"backbench/internal/pkg/logx"
)

var (
	// ErrPeerClosed is returned by Peer.Send after Close.
	ErrPeerClosed = errors.New("chat: peer closed")

	// ErrSendQueueFull is returned by Peer.Send when the outbound queue is full.
	ErrSendQueueFull = errors.New("chat: send queue full")
)

// Peer is one live connection as seen by the Manager loop.
type Peer interface {
	// ID returns the server-assigned connection ID.
	ID() string

	// Send queues an encoded frame without blocking.
	Send(frame []byte) error

	// Close flushes queued frames, closes the connection and is safe to call repeatedly.
	Close()
}

// PeerSet holds every live connection, authenticated or not.
// Like Registry it belongs to the Manager loop.
type PeerSet struct {
	peers  map[string]Peer
	logger zerolog.Logger
}

// NewPeerSet returns an empty PeerSet.
func NewPeerSet() *PeerSet {
	return &PeerSet{
		peers:  make(map[string]Peer),
		logger: logx.Component("PeerSet"),
	}
}

// Add inserts p and reports false if its ID is already present.
func (s *PeerSet) Add(p Peer) bool {
	if _, ok := s.peers[p.ID()]; ok {
		return false
	}
	s.peers[p.ID()] = p
	return true
}

// Remove deletes the peer with id and returns it.
func (s *PeerSet) Remove(id string) (Peer, bool) {
	p, ok := s.peers[id]
	if ok {
		delete(s.peers, id)
	}
	return p, ok
}

// Has reports whether id is live.
func (s *PeerSet) Has(id string) bool {
	_, ok := s.peers[id]
	return ok
}

// Len returns the number of live peers.
func (s *PeerSet) Len() int {
	return len(s.peers)
}

// SendTo queues one frame for the peer with id.
func (s *PeerSet) SendTo(id, event string, data any) error {
	p, ok := s.peers[id]
	if !ok {
		return ErrPeerClosed
	}

	frame, err := EncodeFrame(event, data)
	if err != nil {
		return err
	}
	if err := p.Send(frame); err != nil {
		s.drop(id, p, event, err)
		return err
	}
	return nil
}

// Broadcast encodes the frame once and queues it for every peer.
// A peer that cannot accept the frame is closed and leaves the set; its
// disconnect still arrives later through the normal path.
func (s *PeerSet) Broadcast(event string, data any) {
	frame, err := EncodeFrame(event, data)
	if err != nil {
		s.logger.Error().Err(err).Str("event", event).Msg("Failed to encode broadcast frame.")
		return
	}

	for id, p := range s.peers {
		if err := p.Send(frame); err != nil {
			s.drop(id, p, event, err)
		}
	}
}

// drop closes a peer that refused a frame and removes it from the set.
// A peer that was already closed is removed without a warning.
func (s *PeerSet) drop(id string, p Peer, event string, err error) {
	delete(s.peers, id)
	if !errors.Is(err, ErrPeerClosed) {
		s.logger.Warn().Err(err).Str("conn_id", id).Str("event", event).Msg("Peer cannot keep up, closing.")
	}
	p.Close()
}

// CloseAll closes and forgets every peer.
func (s *PeerSet) CloseAll() {
	for id, p := range s.peers {
		p.Close()
		delete(s.peers, id)
	}
}
