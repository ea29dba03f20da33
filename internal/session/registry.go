// Package session tracks live login sessions and their cart working copies.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"sweetshop/internal/cart"
	"sweetshop/internal/models"
)

var ErrSessionNotFound = errors.New("session not found")

// Entry is one live session.
type Entry struct {
	ID   string
	User models.SessionUser
	Cart *cart.Session

	lastSeen time.Time
}

// Registry owns the live sessions of this process. Sessions idle for longer
// than the TTL are flushed and dropped.
type Registry struct {
	newCart func() *cart.Session
	ttl     time.Duration
	now     func() time.Time
	log     zerolog.Logger

	mu       sync.Mutex
	sessions map[string]*Entry
	// ended remembers closed session ids for one TTL so that tokens issued
	// for them cannot bring them back.
	ended    map[string]time.Time
}

func NewRegistry(newCart func() *cart.Session, ttl time.Duration, log zerolog.Logger) *Registry {
	return &Registry{
		newCart:  newCart,
		ttl:      ttl,
		now:      time.Now,
		log:      log.With().Str("area", "session").Logger(),
		sessions: make(map[string]*Entry),
		ended:    make(map[string]time.Time),
	}
}

// Open starts a session for user with a fresh id and hydrates its cart.
func (r *Registry) Open(ctx context.Context, user models.SessionUser) (*Entry, error) {
	return r.open(ctx, uuid.NewString(), user)
}

// Resume returns the live session id. When this process does not know the
// id, for example after a restart, a session with that id is hydrated from
// storage for user. Sessions closed by logout are not resumed.
func (r *Registry) Resume(ctx context.Context, id string, user models.SessionUser) (*Entry, error) {
	if r.wasClosed(id) {
		return nil, ErrSessionNotFound
	}
	if e, ok := r.Get(ctx, id); ok {
		if e.User.ID != user.ID {
			return nil, ErrSessionNotFound
		}
		return e, nil
	}
	return r.open(ctx, id, user)
}

func (r *Registry) open(ctx context.Context, id string, user models.SessionUser) (*Entry, error) {
	c := r.newCart()
	if err := c.Login(ctx, user.ID); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.sessions[id]; ok && existing.User.ID == user.ID {
		existing.lastSeen = r.now()
		return existing, nil
	}
	e := &Entry{ID: id, User: user, Cart: c, lastSeen: r.now()}
	r.sessions[id] = e
	r.log.Info().Str("sessionId", id).Str("userId", user.ID).Msg("session opened")
	return e, nil
}

// Get returns a live session and marks it as used. An expired session is
// flushed and reported as missing.
func (r *Registry) Get(ctx context.Context, id string) (*Entry, bool) {
	r.mu.Lock()
	e, ok := r.sessions[id]
	if !ok {
		r.mu.Unlock()
		return nil, false
	}
	if r.expired(e) {
		delete(r.sessions, id)
		r.mu.Unlock()
		r.expire(ctx, e)
		return nil, false
	}
	e.lastSeen = r.now()
	r.mu.Unlock()
	return e, true
}

// Close flushes the session's cart and forgets the session. When the flush
// fails the session is kept.
func (r *Registry) Close(ctx context.Context, id string) error {
	r.mu.Lock()
	e, ok := r.sessions[id]
	r.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}

	if err := e.Cart.Logout(ctx); err != nil {
		return err
	}

	r.mu.Lock()
	if r.sessions[id] == e {
		delete(r.sessions, id)
	}
	r.ended[id] = r.now()
	r.mu.Unlock()
	r.log.Info().Str("sessionId", id).Str("userId", e.User.ID).Msg("session closed")
	return nil
}

// Sweep expires idle sessions and returns how many were dropped.
func (r *Registry) Sweep(ctx context.Context) int {
	r.mu.Lock()
	var idle []*Entry
	for id, e := range r.sessions {
		if r.expired(e) {
			idle = append(idle, e)
			delete(r.sessions, id)
		}
	}
	for id, at := range r.ended {
		if r.now().Sub(at) > r.ttl {
			delete(r.ended, id)
		}
	}
	r.mu.Unlock()

	dropped := 0
	for _, e := range idle {
		if r.expire(ctx, e) {
			dropped++
		}
	}
	return dropped
}

// Run sweeps every interval until ctx is cancelled.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(ctx); n > 0 {
				r.log.Info().Int("expired", n).Msg("idle sessions expired")
			}
		}
	}
}

// CloseAll flushes and forgets every session, as on shutdown.
func (r *Registry) CloseAll(ctx context.Context) error {
	r.mu.Lock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	var errs []error
	for _, id := range ids {
		if err := r.Close(ctx, id); err != nil && !errors.Is(err, ErrSessionNotFound) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Registry) wasClosed(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.ended[id]
	return ok
}

func (r *Registry) expired(e *Entry) bool {
	return r.ttl > 0 && r.now().Sub(e.lastSeen) > r.ttl
}

// expire flushes an entry already removed from the map. A failed flush puts
// it back so the next sweep retries.
func (r *Registry) expire(ctx context.Context, e *Entry) bool {
	if err := e.Cart.Logout(ctx); err != nil && !errors.Is(err, cart.ErrNotLoggedIn) {
		r.log.Error().Err(err).Str("sessionId", e.ID).Msg("flush of expired session failed")
		r.mu.Lock()
		if _, taken := r.sessions[e.ID]; !taken {
			r.sessions[e.ID] = e
		}
		r.mu.Unlock()
		return false
	}
	r.log.Info().Str("sessionId", e.ID).Str("userId", e.User.ID).Msg("session expired")
	return true
}
