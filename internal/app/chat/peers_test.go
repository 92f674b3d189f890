package chat

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

// countingPeer accepts up to room frames and counts Close calls.
type countingPeer struct {
	id     string
	room   int
	sent   int
	closes int
}

func (p *countingPeer) ID() string { return p.id }

func (p *countingPeer) Send([]byte) error {
	if p.closes > 0 {
		return ErrPeerClosed
	}
	if p.sent == p.room {
		return ErrSendQueueFull
	}
	p.sent++
	return nil
}

func (p *countingPeer) Close() { p.closes++ }

func TestBroadcastDropsPeerThatCannotKeepUp(t *testing.T) {
	var logs bytes.Buffer
	s := NewPeerSet()
	s.logger = zerolog.New(&logs)

	fast := &countingPeer{id: "fast", room: 8}
	slow := &countingPeer{id: "slow", room: 0}
	s.Add(fast)
	s.Add(slow)

	s.Broadcast(EventUserConnected, []string{"alice"})
	s.Broadcast(EventUserConnected, []string{"alice", "bob"})

	if s.Has("slow") || s.Len() != 1 {
		t.Fatalf("slow peer still in set (len %d)", s.Len())
	}
	if slow.closes != 1 {
		t.Errorf("slow peer closed %d times, want 1", slow.closes)
	}
	if fast.sent != 2 || fast.closes != 0 {
		t.Errorf("fast peer sent %d closed %d, want 2 and 0", fast.sent, fast.closes)
	}
	if n := strings.Count(logs.String(), "cannot keep up"); n != 1 {
		t.Errorf("logged %d warnings, want 1:\n%s", n, logs.String())
	}
}

func TestSendToDropsClosedPeerQuietly(t *testing.T) {
	var logs bytes.Buffer
	s := NewPeerSet()
	s.logger = zerolog.New(&logs)

	p := &countingPeer{id: "c1", room: 8, closes: 1}
	s.Add(p)

	if err := s.SendTo("c1", EventMessageError, "x"); err != ErrPeerClosed {
		t.Fatalf("SendTo err = %v, want ErrPeerClosed", err)
	}
	if s.Has("c1") {
		t.Error("closed peer still in set")
	}
	if err := s.SendTo("c1", EventMessageError, "x"); err != ErrPeerClosed {
		t.Fatalf("second SendTo err = %v, want ErrPeerClosed", err)
	}
	if logs.Len() != 0 {
		t.Errorf("closed peer produced warnings:\n%s", logs.String())
	}
}
