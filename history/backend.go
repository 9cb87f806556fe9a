package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Backend persists the saved-session collection and the session counter.
// Both are rewritten in full on every save.
type Backend interface {
	Load(ctx context.Context) (sessions []Session, counter int, err error)
	SaveSessions(ctx context.Context, sessions []Session) error
	SaveCounter(ctx context.Context, counter int) error
}

const (
	sessionsFile = "sessions.json"
	counterFile  = "session_counter"
)

// FileBackend stores sessions as JSON files in a directory.
type FileBackend struct {
	dir string
	mu  sync.Mutex
}

// NewFileBackend creates the directory if needed.
func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating history dir: %w", err)
	}
	return &FileBackend{dir: dir}, nil
}

// Dir returns the storage directory.
func (b *FileBackend) Dir() string {
	return b.dir
}

// Load reads both files. Missing files read as an empty history.
func (b *FileBackend) Load(ctx context.Context) ([]Session, int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var sessions []Session
	data, err := os.ReadFile(filepath.Join(b.dir, sessionsFile))
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, 0, fmt.Errorf("reading sessions: %w", err)
	default:
		if err := json.Unmarshal(data, &sessions); err != nil {
			return nil, 0, fmt.Errorf("decoding sessions: %w", err)
		}
	}

	counter := 0
	data, err = os.ReadFile(filepath.Join(b.dir, counterFile))
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, 0, fmt.Errorf("reading session counter: %w", err)
	default:
		counter, err = strconv.Atoi(strings.TrimSpace(string(data)))
		if err != nil {
			return nil, 0, fmt.Errorf("decoding session counter: %w", err)
		}
	}

	return sessions, counter, nil
}

// SaveSessions rewrites sessions.json.
func (b *FileBackend) SaveSessions(ctx context.Context, sessions []Session) error {
	if sessions == nil {
		sessions = []Session{}
	}
	data, err := json.MarshalIndent(sessions, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding sessions: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	return writeFileAtomic(filepath.Join(b.dir, sessionsFile), data)
}

// SaveCounter rewrites session_counter.
func (b *FileBackend) SaveCounter(ctx context.Context, counter int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return writeFileAtomic(filepath.Join(b.dir, counterFile), []byte(strconv.Itoa(counter)))
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %s: %w", filepath.Base(path), err)
	}
	return nil
}

// DefaultRedisPrefix namespaces the history keys.
const DefaultRedisPrefix = "glosslive:"

// RedisBackend stores sessions under two Redis string keys.
type RedisBackend struct {
	client redis.Cmdable
	prefix string
}

// NewRedisBackend wraps a Redis client. An empty prefix uses DefaultRedisPrefix.
func NewRedisBackend(client redis.Cmdable, prefix string) *RedisBackend {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisBackend{client: client, prefix: prefix}
}

func (b *RedisBackend) sessionsKey() string { return b.prefix + "chatSessions" }
func (b *RedisBackend) counterKey() string  { return b.prefix + "sessionIdCounter" }

// Load reads both keys. Missing keys read as an empty history.
func (b *RedisBackend) Load(ctx context.Context) ([]Session, int, error) {
	var sessions []Session
	data, err := b.client.Get(ctx, b.sessionsKey()).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
	case err != nil:
		return nil, 0, fmt.Errorf("reading sessions: %w", err)
	default:
		if err := json.Unmarshal(data, &sessions); err != nil {
			return nil, 0, fmt.Errorf("decoding sessions: %w", err)
		}
	}

	counter, err := b.client.Get(ctx, b.counterKey()).Int()
	switch {
	case errors.Is(err, redis.Nil):
		counter = 0
	case err != nil:
		return nil, 0, fmt.Errorf("reading session counter: %w", err)
	}

	return sessions, counter, nil
}

// SaveSessions rewrites the sessions key.
func (b *RedisBackend) SaveSessions(ctx context.Context, sessions []Session) error {
	if sessions == nil {
		sessions = []Session{}
	}
	data, err := json.Marshal(sessions)
	if err != nil {
		return fmt.Errorf("encoding sessions: %w", err)
	}
	if err := b.client.Set(ctx, b.sessionsKey(), string(data), 0).Err(); err != nil {
		return fmt.Errorf("writing sessions: %w", err)
	}
	return nil
}

// SaveCounter rewrites the counter key.
func (b *RedisBackend) SaveCounter(ctx context.Context, counter int) error {
	if err := b.client.Set(ctx, b.counterKey(), counter, 0).Err(); err != nil {
		return fmt.Errorf("writing session counter: %w", err)
	}
	return nil
}

// MemoryBackend keeps history in process memory.
type MemoryBackend struct {
	mu       sync.Mutex
	sessions []Session
	counter  int
	saves    int
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

// Load returns copies of the stored sessions.
func (b *MemoryBackend) Load(ctx context.Context) ([]Session, int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return cloneSessions(b.sessions), b.counter, nil
}

// SaveSessions replaces the stored sessions.
func (b *MemoryBackend) SaveSessions(ctx context.Context, sessions []Session) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sessions = cloneSessions(sessions)
	b.saves++
	return nil
}

// SaveCounter replaces the stored counter.
func (b *MemoryBackend) SaveCounter(ctx context.Context, counter int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.counter = counter
	return nil
}

// Saves reports how many times the session collection was written.
func (b *MemoryBackend) Saves() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.saves
}

var (
	_ Backend = (*FileBackend)(nil)
	_ Backend = (*RedisBackend)(nil)
	_ Backend = (*MemoryBackend)(nil)
)
