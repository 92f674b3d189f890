package chat

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"backbench/internal/app/store"
	"backbench/internal/app/user"
	"backbench/internal/pkg/errs"
	"backbench/internal/pkg/logx"
)

// Presence authenticates connections against the Account Directory and keeps the
// Registry and everyone's membership view in sync.
//
// Resolve may run on any goroutine. Admit, Reject, Unavailable and Disconnect must
// run on the Manager loop.
type Presence struct {
	registry  *Registry
	peers     *PeerSet
	directory store.Directory
	timeout   time.Duration
	logger    zerolog.Logger
}

// NewPresence wires a Presence to the shared Registry and PeerSet.
func NewPresence(registry *Registry, peers *PeerSet, directory store.Directory, timeout time.Duration) *Presence {
	return &Presence{
		registry:  registry,
		peers:     peers,
		directory: directory,
		timeout:   timeout,
		logger:    logx.Component("Presence"),
	}
}

// Resolve looks up the username for email, giving up after the configured timeout
// even if the directory ignores cancellation. Unknown or malformed emails return
// store.ErrUserNotFound.
func (p *Presence) Resolve(ctx context.Context, email string) (string, error) {
	normalized, err := user.NormalizeEmail(email)
	if err != nil {
		return "", store.ErrUserNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	type lookup struct {
		u   *user.User
		err error
	}
	done := make(chan lookup, 1)
	go func() {
		u, err := p.directory.FindByEmail(ctx, normalized)
		done <- lookup{u, err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return "", res.err
		}
		return res.u.Username, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Admit binds username to connID and sends the new snapshot to every connection.
func (p *Presence) Admit(connID, username string) {
	if !p.registry.Bind(connID, username) {
		p.logger.Warn().Str("conn_id", connID).Msg("Connection already authenticated, admit ignored.")
		return
	}

	p.logger.Info().
		Str("conn_id", connID).
		Str("username", username).
		Int("online", p.registry.Len()).
		Msg("User authenticated.")

	p.peers.Broadcast(EventUserConnected, p.registry.Snapshot())
}

// Reject tells connID that its email is unknown and force-closes it.
// The connection leaves the peer set immediately, so its later disconnect is silent.
func (p *Presence) Reject(connID string) {
	p.logger.Info().Str("conn_id", connID).Msg("Authentication rejected, closing connection.")

	_ = p.peers.SendTo(connID, EventAuthFailed, errs.NewError(errs.ErrIdentityNotFound).Message)
	if peer, ok := p.peers.Remove(connID); ok {
		peer.Close()
	}
}

// Unavailable reports a failed or timed-out lookup to connID, which stays open
// and unauthenticated.
func (p *Presence) Unavailable(connID string, err error) {
	event := p.logger.Error()
	if errors.Is(err, context.DeadlineExceeded) {
		event = p.logger.Warn()
	}
	event.Err(err).Str("conn_id", connID).Msg("Account lookup failed.")

	_ = p.peers.SendTo(connID, EventAuthFailed, errs.NewError(errs.ErrAuthUnavailable).Message)
}

// Disconnect forgets connID. When it was authenticated, the remaining connections
// receive the refreshed snapshot. Repeated calls are no-ops.
func (p *Presence) Disconnect(connID string) {
	p.peers.Remove(connID)

	if !p.registry.Unbind(connID) {
		return
	}

	p.logger.Info().Str("conn_id", connID).Int("online", p.registry.Len()).Msg("User disconnected.")
	p.peers.Broadcast(EventUserConnected, p.registry.Snapshot())
}
