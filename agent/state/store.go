package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

var (
	ErrStateNotFound   = errors.New("session state not found")
	ErrNilSessionState = errors.New("session state is nil")
	ErrInvalidSession  = errors.New("session id is empty")
)

const (
	defaultStoreKeyPrefix = "campus:session:"
	defaultStoreTTL       = 24 * time.Hour
)

const (
	DriverMemory  = "memory"
	DriverRedis   = "redis"
	DriverUpstash = "upstash"
)

// Store is the persistence contract used by the orchestrator.
type Store interface {
	Load(ctx context.Context, sessionID string) (*SessionState, error)
	Save(ctx context.Context, st *SessionState) error
	Delete(ctx context.Context, sessionID string) error
}

// StoreConfig selects and tunes the session backend.
type StoreConfig struct {
	Driver    string        `envconfig:"DRIVER" split_words:"true" default:"memory"`
	KeyPrefix string        `envconfig:"KEY_PREFIX" split_words:"true" default:"campus:session:"`
	TTL       time.Duration `envconfig:"TTL" split_words:"true" default:"24h"`
}

func (c StoreConfig) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Driver)) {
	case DriverMemory, DriverRedis, DriverUpstash:
	default:
		return fmt.Errorf("unsupported session store driver %q", c.Driver)
	}
	if c.TTL < 0 {
		return errors.New("ttl must be >= 0")
	}
	return nil
}

// NewStore builds the configured backend. The backend-specific config is only
// consulted for its own driver.
func NewStore(ctx context.Context, cfg StoreConfig, upstash UpstashRedisConfig, redisCfg RedisConfig) (Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts := []StoreOption{WithKeyPrefix(cfg.KeyPrefix), WithTTL(cfg.TTL)}
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case DriverUpstash:
		return NewUpstashRedisStore(upstash, opts...)
	case DriverRedis:
		return NewRedisStore(ctx, redisCfg, opts...)
	default:
		return NewMemoryStore(opts...), nil
	}
}

// StoreOption customizes any Store implementation.
type StoreOption func(*storeOptions)

type storeOptions struct {
	keyPrefix  string
	ttl        time.Duration
	httpClient *http.Client
}

func WithKeyPrefix(prefix string) StoreOption {
	return func(o *storeOptions) {
		trimmed := strings.TrimSpace(prefix)
		if trimmed != "" {
			o.keyPrefix = trimmed
		}
	}
}

func WithTTL(ttl time.Duration) StoreOption {
	return func(o *storeOptions) {
		o.ttl = ttl
	}
}

// WithHTTPClient only affects the Upstash REST store.
func WithHTTPClient(client *http.Client) StoreOption {
	return func(o *storeOptions) {
		if client != nil {
			o.httpClient = client
		}
	}
}

func applyOptions(opts []StoreOption) storeOptions {
	o := storeOptions{
		keyPrefix: defaultStoreKeyPrefix,
		ttl:       defaultStoreTTL,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

func sessionKey(prefix, sessionID string) (string, error) {
	if strings.TrimSpace(sessionID) == "" {
		return "", ErrInvalidSession
	}
	if strings.TrimSpace(prefix) == "" {
		prefix = defaultStoreKeyPrefix
	}
	return strings.TrimSpace(prefix) + sessionID, nil
}

func encodeState(st *SessionState) ([]byte, error) {
	if st == nil {
		return nil, ErrNilSessionState
	}
	if strings.TrimSpace(st.SessionID) == "" {
		return nil, ErrInvalidSession
	}
	if st.UpdatedAt.IsZero() {
		st.UpdatedAt = time.Now().UTC()
	} else {
		st.UpdatedAt = st.UpdatedAt.UTC()
	}

	payload, err := json.Marshal(st)
	if err != nil {
		return nil, fmt.Errorf("marshal session state: %w", err)
	}
	return payload, nil
}

func decodeState(payload []byte) (*SessionState, error) {
	var st SessionState
	if err := json.Unmarshal(payload, &st); err != nil {
		return nil, fmt.Errorf("unmarshal session state: %w", err)
	}
	if err := st.Validate(); err != nil {
		return nil, fmt.Errorf("invalid session state loaded from store: %w", err)
	}
	return &st, nil
}
