package cart

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNoSession is returned when a cart is requested outside a session.
var ErrNoSession = errors.New("no cart session in scope")

// A Store holds the cart of one session.
//
// Commands are applied one at a time in the order they arrive.
type Store struct {
	id    string
	mu    sync.RWMutex
	state State

	// guarded by Registry.mu
	lastOpen time.Time
}

func NewStore(sessionID string) *Store {
	return &Store{id: sessionID}
}

func (s *Store) SessionID() string {
	return s.id
}

// Dispatch applies cmd and returns the new state.
func (s *Store) Dispatch(cmd Command) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Apply(s.state, cmd)
	return s.state
}

// DispatchFunc applies the command decide derives from the current state,
// with no other command in between. A nil command leaves the state as is.
func (s *Store) DispatchFunc(decide func(State) Command) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cmd := decide(s.state); cmd != nil {
		s.state = Apply(s.state, cmd)
	}
	return s.state
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Store) TotalItems() int {
	return s.State().TotalItems()
}

func (s *Store) TotalPrice() float64 {
	return s.State().TotalPrice()
}

type storeCtxKey struct{}

// WithStore returns a copy of ctx that carries s.
func WithStore(ctx context.Context, s *Store) context.Context {
	return context.WithValue(ctx, storeCtxKey{}, s)
}

// FromContext returns the [Store] attached by [WithStore].
func FromContext(ctx context.Context) (*Store, error) {
	s, ok := ctx.Value(storeCtxKey{}).(*Store)
	if !ok || s == nil {
		return nil, ErrNoSession
	}
	return s, nil
}

// sweepEvery bounds how often [Registry.Open] scans for idle stores.
const sweepEvery = time.Minute

type RegistryOpt func(*Registry)

// IdleTTLOpt drops stores that were not opened for longer than d.
// Zero keeps stores for the process lifetime.
func IdleTTLOpt(d time.Duration) RegistryOpt {
	return func(r *Registry) {
		r.idleTTL = d
	}
}

func ClockOpt(now func() time.Time) RegistryOpt {
	return func(r *Registry) {
		r.now = now
	}
}

// A Registry keeps session stores keyed by session id.
type Registry struct {
	mu        sync.Mutex
	stores    map[string]*Store
	idleTTL   time.Duration
	now       func() time.Time
	lastSweep time.Time
}

func NewRegistry(opts ...RegistryOpt) *Registry {
	r := &Registry{
		stores: make(map[string]*Store),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Open returns the store of sessionID, creating an empty one on first use.
// Stores idle longer than the TTL are dropped on the way.
func (r *Registry) Open(sessionID string) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if r.idleTTL > 0 && now.Sub(r.lastSweep) >= min(r.idleTTL, sweepEvery) {
		r.sweep(now)
	}

	s, ok := r.stores[sessionID]
	if !ok {
		s = NewStore(sessionID)
		r.stores[sessionID] = s
	}
	s.lastOpen = now
	return s
}

func (r *Registry) sweep(now time.Time) {
	for id, s := range r.stores {
		if now.Sub(s.lastOpen) > r.idleTTL {
			delete(r.stores, id)
		}
	}
	r.lastSweep = now
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}
