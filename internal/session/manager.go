// Package session tracks in-flight game sessions keyed by opaque tokens.
// Sessions live in process memory only; a restart forgets them all.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"casino-core/internal/game"
	"casino-core/internal/pkg/lock"
	"casino-core/internal/pkg/rng"
)

// Defaults for manager options left zero.
const (
	DefaultCapacity      = 500
	DefaultTTL           = 3 * time.Minute
	DefaultSweepInterval = 30 * time.Second
)

// actionPrefix marks encoded interaction payloads.
const actionPrefix = "g"

// tokenBytes of entropy per session token, rendered as hex.
const tokenBytes = 8

// Common errors for session operations.
var (
	ErrNotFound    = errors.New("session not found")
	ErrExpired     = errors.New("session expired")
	ErrForbidden   = errors.New("session belongs to another player")
	ErrInteraction = errors.New("interaction failed")
	ErrBadAction   = errors.New("malformed action payload")
)

// Descriptor describes a session at creation time.
type Descriptor struct {
	Kind      game.Kind
	OwnerID   int64
	GuildID   int64
	ChannelID int64
	AllowAll  bool    // anyone may act (shared boards)
	Allowed   []int64 // extra actors beyond the owner
	State     any     // game state passed to the machine on dispatch
}

type entry struct {
	desc    Descriptor
	allowed map[int64]struct{}
	expiry  time.Time
}

func (e *entry) mayAct(actorID int64) bool {
	if e.desc.AllowAll || actorID == e.desc.OwnerID {
		return true
	}
	_, ok := e.allowed[actorID]
	return ok
}

// Options tunes a Manager. Zero fields fall back to the defaults.
type Options struct {
	Capacity      int
	TTL           time.Duration
	SweepInterval time.Duration
}

// Manager owns the live session table. All methods are safe for
// concurrent use; dispatches on different tokens never block each
// other.
type Manager struct {
	registry *game.Registry
	src      rng.Source

	capacity int
	ttl      time.Duration

	mu       sync.Mutex
	sessions map[string]*entry
	locks    *lock.KeyedLock

	done      chan struct{}
	closeOnce sync.Once
}

// NewManager creates a Manager and starts its background sweep.
func NewManager(registry *game.Registry, src rng.Source, opts Options) *Manager {
	if opts.Capacity <= 0 {
		opts.Capacity = DefaultCapacity
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = DefaultSweepInterval
	}

	m := &Manager{
		registry: registry,
		src:      src,
		capacity: opts.Capacity,
		ttl:      opts.TTL,
		sessions: make(map[string]*entry),
		locks:    lock.NewKeyedLock(),
		done:     make(chan struct{}),
	}
	go m.sweep(opts.SweepInterval)
	return m
}

// Create registers a new session and returns its token. At capacity the
// session with the soonest expiry is evicted to make room.
func (m *Manager) Create(desc Descriptor) string {
	token := newToken()

	var allowed map[int64]struct{}
	if len(desc.Allowed) > 0 {
		allowed = make(map[int64]struct{}, len(desc.Allowed))
		for _, id := range desc.Allowed {
			allowed[id] = struct{}{}
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.sessions) >= m.capacity {
		m.evictSoonestLocked()
	}
	m.sessions[token] = &entry{
		desc:    desc,
		allowed: allowed,
		expiry:  time.Now().Add(m.ttl),
	}

	log.Debug().
		Str("token", token).
		Str("kind", string(desc.Kind)).
		Int64("owner_id", desc.OwnerID).
		Msg("session created")

	return token
}

// Get returns a snapshot of the session's descriptor without refreshing
// its expiry. An expired entry is removed right here rather than left
// for the sweep.
func (m *Manager) Get(token string) (Descriptor, error) {
	m.mu.Lock()
	e, ok := m.sessions[token]
	if !ok {
		m.mu.Unlock()
		return Descriptor{}, ErrNotFound
	}
	if time.Now().After(e.expiry) {
		delete(m.sessions, token)
		m.mu.Unlock()
		m.locks.Forget(token)
		return Descriptor{}, ErrExpired
	}
	desc := e.desc
	m.mu.Unlock()
	return desc, nil
}

// Dispatch routes an action to the session's machine. The expiry is
// refreshed on every accepted action, and transitions for the same
// token are serialized on a per-token mutex.
func (m *Manager) Dispatch(ctx context.Context, token string, actorID int64, action string) (game.Step, error) {
	m.mu.Lock()
	e, ok := m.sessions[token]
	if !ok {
		m.mu.Unlock()
		return game.Step{}, ErrNotFound
	}
	if time.Now().After(e.expiry) {
		delete(m.sessions, token)
		m.mu.Unlock()
		m.locks.Forget(token)
		return game.Step{}, ErrExpired
	}
	if !e.mayAct(actorID) {
		m.mu.Unlock()
		return game.Step{}, ErrForbidden
	}
	e.expiry = time.Now().Add(m.ttl)
	machine, ok := m.registry.Get(e.desc.Kind)
	m.mu.Unlock()

	if !ok {
		return game.Step{}, fmt.Errorf("%w: no machine for kind %q", ErrInteraction, e.desc.Kind)
	}
	if err := ctx.Err(); err != nil {
		return game.Step{}, err
	}

	var step game.Step
	if err := m.locks.WithLock(token, func() error {
		var aerr error
		step, aerr = m.advance(machine, e.desc.State, action, token)
		return aerr
	}); err != nil {
		return game.Step{}, err
	}
	return step, nil
}

// advance runs one transition, converting a machine panic into
// ErrInteraction so a buggy transition cannot take the process down.
// The session itself is left in place.
func (m *Manager) advance(machine game.Machine, state any, action, token string) (step game.Step, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("token", token).
				Str("action", action).
				Interface("panic", r).
				Msg("recovered panic in game transition")
			step = game.Step{}
			err = ErrInteraction
		}
	}()
	return machine.Advance(state, action, m.src)
}

// End removes a session. Ending an unknown token is a no-op.
func (m *Manager) End(token string) {
	m.mu.Lock()
	_, ok := m.sessions[token]
	delete(m.sessions, token)
	m.mu.Unlock()

	if ok {
		m.locks.Forget(token)
		log.Debug().Str("token", token).Msg("session ended")
	}
}

// Len reports the number of live sessions, expired ones included until
// the next sweep.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Close stops the background sweep. Safe to call more than once.
func (m *Manager) Close() {
	m.closeOnce.Do(func() { close(m.done) })
}

func (m *Manager) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.removeExpired()
		}
	}
}

func (m *Manager) removeExpired() {
	now := time.Now()
	var dead []string

	m.mu.Lock()
	for token, e := range m.sessions {
		if now.After(e.expiry) {
			delete(m.sessions, token)
			dead = append(dead, token)
		}
	}
	m.mu.Unlock()

	for _, token := range dead {
		m.locks.Forget(token)
	}
	if len(dead) > 0 {
		log.Debug().Int("count", len(dead)).Msg("swept expired sessions")
	}
}

// evictSoonestLocked drops the entry closest to expiry. Caller holds mu.
func (m *Manager) evictSoonestLocked() {
	var victim string
	var soonest time.Time
	for token, e := range m.sessions {
		if victim == "" || e.expiry.Before(soonest) {
			victim = token
			soonest = e.expiry
		}
	}
	if victim != "" {
		delete(m.sessions, victim)
		log.Warn().Str("token", victim).Msg("session table full, evicted soonest-expiry session")
	}
}

func newToken() string {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the platform is broken.
		panic(fmt.Sprintf("session token: %v", err))
	}
	return hex.EncodeToString(buf)
}

// EncodeAction packs a token and action into the compact interaction
// payload carried by UI components.
func EncodeAction(token, action string) string {
	return actionPrefix + ":" + token + ":" + action
}

// ParseAction splits an interaction payload produced by EncodeAction.
func ParseAction(data string) (token, action string, err error) {
	parts := strings.SplitN(data, ":", 3)
	if len(parts) != 3 || parts[0] != actionPrefix || parts[1] == "" || parts[2] == "" {
		return "", "", fmt.Errorf("%w: %q", ErrBadAction, data)
	}
	return parts[1], parts[2], nil
}
