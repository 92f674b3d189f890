/*
Package pow implements the Proof-of-Work challenge that guards routes which send
email (registration and OTP resend).

A client fetches a nonce, searches for a counter such that sha256(nonce+counter) has
the configured number of leading hex zeros, and exchanges the proof for a short-lived,
single-use token sent in the X-PoW-Token header. Difficulty 0 disables the guard.
*/
package pow

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"backbench/internal/pkg/errs"
	"backbench/internal/pkg/resp"
)

const (
	// TokenHeaderKey is the HTTP header carrying the proof token.
	TokenHeaderKey = "X-PoW-Token"

	// ProofTokenDuration is how long an issued proof token stays redeemable.
	ProofTokenDuration = 30 * time.Second

	// NonceExpiryDuration is how long a challenge nonce stays solvable.
	NonceExpiryDuration = 5 * time.Minute
)

var (
	// ErrNonceInvalid is returned for unknown, expired or already used nonces.
	ErrNonceInvalid = errors.New("nonce expired or invalid")

	// ErrProofInsufficient is returned when the hash misses the difficulty target.
	ErrProofInsufficient = errors.New("proof does not meet difficulty requirement")
)

// Manager tracks outstanding nonces and issued proof tokens. Safe for concurrent use.
type Manager struct {
	difficulty int

	mu         sync.Mutex
	nonceStore map[string]time.Time
	tokenStore map[string]time.Time

	now func() time.Time
}

// NewManager creates a Manager and starts its expiry sweep, which runs until ctx ends.
func NewManager(ctx context.Context, difficulty int) *Manager {
	m := &Manager{
		difficulty: difficulty,
		nonceStore: make(map[string]time.Time),
		tokenStore: make(map[string]time.Time),
		now:        time.Now,
	}

	go m.sweepLoop(ctx)

	return m
}

// Enabled reports whether challenges are enforced.
func (m *Manager) Enabled() bool {
	return m.difficulty > 0
}

// Difficulty returns the required number of leading hex zeros.
func (m *Manager) Difficulty() int {
	return m.difficulty
}

// GenerateNonce issues a new challenge nonce.
func (m *Manager) GenerateNonce() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	nonce := uuid.New().String()
	m.nonceStore[nonce] = m.now().Add(NonceExpiryDuration)
	return nonce
}

// ValidateProof checks counter against nonce and, on success, consumes the nonce and
// returns a proof token.
func (m *Manager) ValidateProof(nonce, counter string) (string, error) {
	if !Solves(nonce, counter, m.difficulty) {
		return "", ErrProofInsufficient
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	expiry, ok := m.nonceStore[nonce]
	if !ok || m.now().After(expiry) {
		return "", ErrNonceInvalid
	}
	delete(m.nonceStore, nonce)

	token := uuid.New().String()
	m.tokenStore[token] = m.now().Add(ProofTokenDuration)
	return token, nil
}

// Redeem consumes token. It reports false for unknown, expired or reused tokens.
func (m *Manager) Redeem(token string) bool {
	if token == "" {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	expiry, ok := m.tokenStore[token]
	if !ok {
		return false
	}
	delete(m.tokenStore, token)

	return !m.now().After(expiry)
}

// Middleware requires a redeemable proof token when the guard is enabled.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.Enabled() {
			token := r.Header.Get(TokenHeaderKey)
			if token == "" {
				resp.RespondError(w, r, errs.NewError(errs.ErrPowChallengeRequired))
				return
			}
			if !m.Redeem(token) {
				resp.RespondError(w, r, errs.NewError(errs.ErrPowChallengeInvalid))
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Solves reports whether sha256(nonce+counter) starts with difficulty hex zeros.
func Solves(nonce, counter string, difficulty int) bool {
	hash := sha256.Sum256([]byte(nonce + counter))
	return strings.HasPrefix(hex.EncodeToString(hash[:]), strings.Repeat("0", difficulty))
}

func (m *Manager) sweepLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

func (m *Manager) sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for nonce, expiry := range m.nonceStore {
		if now.After(expiry) {
			delete(m.nonceStore, nonce)
		}
	}
	for token, expiry := range m.tokenStore {
		if now.After(expiry) {
			delete(m.tokenStore, token)
		}
	}
}
