package state

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// MemoryStore keeps sessions in process memory. Entries are stored encoded so
// callers never share a SessionState with the cache.
type MemoryStore struct {
	cache     *cache.Cache
	keyPrefix string
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore(opts ...StoreOption) *MemoryStore {
	o := applyOptions(opts)
	expiration := o.ttl
	if expiration <= 0 {
		expiration = cache.NoExpiration
	}
	cleanup := 10 * time.Minute
	if expiration > 0 && expiration < cleanup {
		cleanup = expiration
	}

	return &MemoryStore{
		cache:     cache.New(expiration, cleanup),
		keyPrefix: o.keyPrefix,
	}
}

func (s *MemoryStore) Load(_ context.Context, sessionID string) (*SessionState, error) {
	key, err := sessionKey(s.keyPrefix, sessionID)
	if err != nil {
		return nil, err
	}
	x, found := s.cache.Get(key)
	if !found {
		return nil, ErrStateNotFound
	}
	return decodeState(x.([]byte))
}

func (s *MemoryStore) Save(_ context.Context, st *SessionState) error {
	payload, err := encodeState(st)
	if err != nil {
		return err
	}
	key, err := sessionKey(s.keyPrefix, st.SessionID)
	if err != nil {
		return err
	}
	s.cache.Set(key, payload, cache.DefaultExpiration)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	key, err := sessionKey(s.keyPrefix, sessionID)
	if err != nil {
		return err
	}
	s.cache.Delete(key)
	return nil
}

// Len reports the number of live sessions.
func (s *MemoryStore) Len() int {
	return s.cache.ItemCount()
}
