package wizard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	// ErrSessionNotFound is returned when a session id is unknown or expired.
	ErrSessionNotFound = errors.New("wizard: session not found")
	// ErrSessionInactive is returned for mutations against a closed session.
	ErrSessionInactive = errors.New("wizard: session inactive")
)

// Extended-state keys written during stage 1 and read by the stage guard.
const (
	KeySelectedClientID = "selectedClientId"
	KeyReceiptNumber    = "receiptNumber"
	KeyUniqueTag        = "uniqueTag"
	KeyBranchID         = "branchId"
)

// StepStates holds the current position of each item substep machine for the
// item currently in flight.
type StepStates struct {
	BasicInfo BasicInfoState `json:"basicInfo"`
	Stains    StainsState    `json:"stains"`
	Photos    PhotosState    `json:"photos"`
	Pricing   PricingState   `json:"pricing"`
}

func newStepStates() StepStates {
	return StepStates{
		BasicInfo: BasicInfoNotStarted,
		Stains:    StainsNotStarted,
		Photos:    PhotosNotStarted,
		Pricing:   PricingInitial,
	}
}

// Session is a single in-progress order creation flow.
type Session struct {
	ID           string         `json:"id"`
	Active       bool           `json:"active"`
	State        OrderState     `json:"state"`
	Steps        StepStates     `json:"steps"`
	Extended     map[string]any `json:"extended"`
	Items        []ItemDraft    `json:"items"`
	Draft        *ItemDraft     `json:"draft,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
	LastActivity time.Time      `json:"lastActivity"`
}

// SessionStore manages wizard session lifecycle and serialized access.
type SessionStore interface {
	// Create opens a new session in the INITIAL state and returns it.
	Create(ctx context.Context) (*Session, error)
	// Get returns a copy of the session or ErrSessionNotFound.
	Get(ctx context.Context, id string) (Session, error)
	// IsActive reports whether the session exists and is still open.
	IsActive(ctx context.Context, id string) bool
	// Update applies fn to the session under its lock. fn mutates the
	// session in place; an error from fn aborts the update.
	Update(ctx context.Context, id string, fn func(*Session) error) (Session, error)
	// Expire closes the session, keeping it readable until cleanup.
	Expire(ctx context.Context, id string) error
	// Cleanup drops sessions idle past the TTL and returns how many.
	Cleanup(ctx context.Context) int
}

// MemorySessionStore is an in-process SessionStore with per-session locking
// and idle expiry.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*sessionEntry
	ttl      time.Duration
	clock    func() time.Time
}

type sessionEntry struct {
	mu      sync.Mutex
	session Session
}

// NewMemorySessionStore builds a store with the given idle TTL. A zero ttl
// disables expiry.
func NewMemorySessionStore(ttl time.Duration, clock func() time.Time) *MemorySessionStore {
	if clock == nil {
		clock = time.Now
	}
	return &MemorySessionStore{
		sessions: make(map[string]*sessionEntry),
		ttl:      ttl,
		clock:    clock,
	}
}

func (s *MemorySessionStore) Create(ctx context.Context) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	now := s.clock().UTC()
	sess := Session{
		ID:           ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
		Active:       true,
		State:        StateInitial,
		Steps:        newStepStates(),
		Extended:     make(map[string]any),
		CreatedAt:    now,
		LastActivity: now,
	}
	s.mu.Lock()
	s.sessions[sess.ID] = &sessionEntry{session: sess}
	s.mu.Unlock()
	out := cloneSession(sess)
	return &out, nil
}

func (s *MemorySessionStore) Get(ctx context.Context, id string) (Session, error) {
	if err := ctx.Err(); err != nil {
		return Session{}, err
	}
	entry, ok := s.lookup(id)
	if !ok {
		return Session{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	if s.expired(entry.session) {
		return Session{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return cloneSession(entry.session), nil
}

func (s *MemorySessionStore) IsActive(ctx context.Context, id string) bool {
	sess, err := s.Get(ctx, id)
	return err == nil && sess.Active
}

func (s *MemorySessionStore) Update(ctx context.Context, id string, fn func(*Session) error) (Session, error) {
	if err := ctx.Err(); err != nil {
		return Session{}, err
	}
	entry, ok := s.lookup(id)
	if !ok {
		return Session{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	if s.expired(entry.session) {
		return Session{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if !entry.session.Active {
		return Session{}, fmt.Errorf("%w: %s", ErrSessionInactive, id)
	}
	working := cloneSession(entry.session)
	if err := fn(&working); err != nil {
		return Session{}, err
	}
	working.LastActivity = s.clock().UTC()
	entry.session = working
	return cloneSession(working), nil
}

func (s *MemorySessionStore) Expire(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	entry, ok := s.lookup(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	entry.mu.Lock()
	entry.session.Active = false
	entry.mu.Unlock()
	return nil
}

func (s *MemorySessionStore) Cleanup(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, entry := range s.sessions {
		entry.mu.Lock()
		stale := s.expired(entry.session) || !entry.session.Active
		entry.mu.Unlock()
		if stale {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

func (s *MemorySessionStore) lookup(id string) (*sessionEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.sessions[id]
	return entry, ok
}

func (s *MemorySessionStore) expired(sess Session) bool {
	if s.ttl <= 0 {
		return false
	}
	return s.clock().UTC().Sub(sess.LastActivity) > s.ttl
}

func cloneSession(in Session) Session {
	out := in
	out.Extended = make(map[string]any, len(in.Extended))
	for k, v := range in.Extended {
		out.Extended[k] = v
	}
	if in.Items != nil {
		out.Items = make([]ItemDraft, len(in.Items))
		for i, item := range in.Items {
			out.Items[i] = cloneItemDraft(item)
		}
	}
	if in.Draft != nil {
		draft := cloneItemDraft(*in.Draft)
		out.Draft = &draft
	}
	return out
}
