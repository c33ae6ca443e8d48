// internal/infrastructure/storage/storage.go
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrNotFound is returned when a key holds no value
var ErrNotFound = errors.New("storage: key not found")

// Logical keys kept for every visitor session
const (
	KeyCart    = "carrinho"
	KeyTable   = "mesa"
	KeyHistory = "pedidos"
	KeyCounts  = "contagem"
)

// KV is the key-value persistence collaborator. Values are JSON documents.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Del(ctx context.Context, keys ...string) error
}

// GetJSON reads key and decodes it into dest. A missing key returns ErrNotFound;
// a value that does not decode is reported as a parse failure.
func GetJSON(ctx context.Context, kv KV, key string, dest interface{}) error {
	raw, err := kv.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return &ParseError{Key: key, Err: err}
	}
	return nil
}

// SetJSON encodes value and stores it under key
func SetJSON(ctx context.Context, kv KV, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return kv.Set(ctx, key, string(data))
}

// ParseError reports a malformed persisted value
type ParseError struct {
	Key string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("storage: malformed value at %q: %v", e.Key, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IsParseError reports whether err is a malformed persisted value
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// GlobalKey joins namespace parts into a key shared by every session,
// e.g. GlobalKey("mesa", KeyCounts) is "mesa:contagem".
func GlobalKey(parts ...string) string {
	return strings.Join(parts, ":")
}

// scoped prefixes every key with a namespace
type scoped struct {
	kv     KV
	prefix string
}

// Scope returns a KV whose keys live under the given namespace parts,
// e.g. Scope(kv, "mesa", sessionID) stores "carrinho" at "mesa:<id>:carrinho".
func Scope(kv KV, parts ...string) KV {
	return &scoped{kv: kv, prefix: strings.Join(parts, ":") + ":"}
}

func (s *scoped) Get(ctx context.Context, key string) (string, error) {
	return s.kv.Get(ctx, s.prefix+key)
}

func (s *scoped) Set(ctx context.Context, key, value string) error {
	return s.kv.Set(ctx, s.prefix+key, value)
}

func (s *scoped) Del(ctx context.Context, keys ...string) error {
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.prefix + k
	}
	return s.kv.Del(ctx, full...)
}

// Memory is an in-process KV
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemory creates an empty in-process KV
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

func (m *Memory) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *Memory) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}
