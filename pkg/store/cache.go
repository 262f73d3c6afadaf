package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/ccollicutt/forensilog/pkg/analyzer"
	"github.com/ccollicutt/forensilog/pkg/session"
)

// DefaultChunkSize is the largest chunk written under one key.
const DefaultChunkSize = 1000000

// Cache saves one session at a time to a Store, split into fixed-size chunks.
type Cache struct {
	store     Store
	namespace string
	chunkSize int
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithNamespace sets the key prefix.
func WithNamespace(ns string) CacheOption {
	return func(c *Cache) {
		if ns != "" {
			c.namespace = ns
		}
	}
}

// WithChunkSize sets the chunk size in bytes.
func WithChunkSize(n int) CacheOption {
	return func(c *Cache) {
		if n > 0 {
			c.chunkSize = n
		}
	}
}

// NewCache creates a Cache over s.
func NewCache(s Store, opts ...CacheOption) *Cache {
	c := &Cache{
		store:     s,
		namespace: DefaultNamespace,
		chunkSize: DefaultChunkSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ChunkSize returns the chunk size in effect, bounded by the store's
// per-key cap.
func (c *Cache) ChunkSize() int {
	if limit := c.store.MaxValueSize(); limit > 0 && limit < c.chunkSize {
		return limit
	}
	return c.chunkSize
}

// Save replaces the cached capture with s. The session itself is only read.
// The chunk count is written last, so a failed save never leaves a torn
// capture behind for Load to find.
func (c *Cache) Save(ctx context.Context, s *session.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}

	if err := c.Clear(ctx); err != nil {
		return fmt.Errorf("clearing previous capture: %w", err)
	}

	chunks := split(data, c.ChunkSize())
	for i, chunk := range chunks {
		if err := c.store.Set(ctx, ChunkKey(c.namespace, i), chunk); err != nil {
			c.discard(ctx, i+1)
			return fmt.Errorf("writing chunk %d of %d: %w", i+1, len(chunks), err)
		}
	}

	if err := c.store.Set(ctx, ChunkCountKey(c.namespace), []byte(strconv.Itoa(len(chunks)))); err != nil {
		c.discard(ctx, len(chunks))
		return fmt.Errorf("writing chunk count: %w", err)
	}

	return nil
}

// Load reassembles and decodes the cached capture. It returns an empty
// session and false when nothing is cached or when reading fails.
func (c *Cache) Load(ctx context.Context) (*session.Session, bool, error) {
	n, found, err := c.count(ctx)
	if err != nil {
		return &session.Session{}, false, err
	}
	if !found || n == 0 {
		return &session.Session{}, false, nil
	}

	var data []byte
	for i := 0; i < n; i++ {
		chunk, ok, err := c.store.Get(ctx, ChunkKey(c.namespace, i))
		if err != nil {
			return &session.Session{}, false, fmt.Errorf("reading chunk %d: %w", i, err)
		}
		if !ok {
			return &session.Session{}, false, fmt.Errorf("chunk %d of %d missing", i, n)
		}
		data = append(data, chunk...)
	}

	var s session.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return &session.Session{}, false, fmt.Errorf("decoding session: %w", err)
	}
	if s.Report == nil {
		s.Report = analyzer.Analyze(s.Records)
	}

	return &s, true, nil
}

// Clear removes the cached capture.
func (c *Cache) Clear(ctx context.Context) error {
	n, _, err := c.count(ctx)
	if err != nil {
		// An unreadable count still gets removed below.
		n = 0
	}

	for i := 0; i < n; i++ {
		if err := c.store.Delete(ctx, ChunkKey(c.namespace, i)); err != nil {
			return err
		}
	}
	return c.store.Delete(ctx, ChunkCountKey(c.namespace))
}

func (c *Cache) count(ctx context.Context) (int, bool, error) {
	raw, ok, err := c.store.Get(ctx, ChunkCountKey(c.namespace))
	if err != nil {
		return 0, false, fmt.Errorf("reading chunk count: %w", err)
	}
	if !ok {
		return 0, false, nil
	}
	n, err := strconv.Atoi(string(raw))
	if err != nil || n < 0 {
		return 0, false, fmt.Errorf("invalid chunk count %q", raw)
	}
	return n, true, nil
}

// discard is a best-effort removal of the first n chunks after a failed save.
func (c *Cache) discard(ctx context.Context, n int) {
	for i := 0; i < n; i++ {
		_ = c.store.Delete(ctx, ChunkKey(c.namespace, i))
	}
	_ = c.store.Delete(ctx, ChunkCountKey(c.namespace))
}

func split(data []byte, size int) [][]byte {
	if len(data) == 0 {
		return nil
	}
	chunks := make([][]byte, 0, (len(data)+size-1)/size)
	for lo := 0; lo < len(data); lo += size {
		hi := lo + size
		if hi > len(data) {
			hi = len(data)
		}
		chunks = append(chunks, data[lo:hi])
	}
	return chunks
}
