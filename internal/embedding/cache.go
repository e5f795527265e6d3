package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/dgraph-io/badger/v4"
)

// Cache is a Provider decorator that stores vectors in badger keyed by
// model, field, and a hash of the text.
type Cache struct {
	db     *badger.DB
	inner  Provider
	logger *slog.Logger
}

var _ Provider = (*Cache)(nil)

// OpenCache opens (or creates) the badger directory at path.
func OpenCache(path string, inner Provider, logger *slog.Logger) (*Cache, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Disable Badger's internal logging
	opts.CompactL0OnClose = true

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	logger.Info("embedding cache opened", "path", path)
	return &Cache{db: db, inner: inner, logger: logger}, nil
}

// Close closes the badger database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Name implements Provider.
func (c *Cache) Name() string { return c.inner.Name() }

// Model implements Provider.
func (c *Cache) Model() string { return c.inner.Model() }

// Embed returns cached vectors and forwards only the misses to the inner
// provider.
func (c *Cache) Embed(ctx context.Context, reqs []Request) ([][]float32, error) {
	out := make([][]float32, len(reqs))
	var (
		missIdx  []int
		missReqs []Request
	)

	err := c.db.View(func(txn *badger.Txn) error {
		for i, r := range reqs {
			item, err := txn.Get(c.key(r))
			if errors.Is(err, badger.ErrKeyNotFound) {
				missIdx = append(missIdx, i)
				missReqs = append(missReqs, r)
				continue
			}
			if err != nil {
				return err
			}
			if err := item.Value(func(val []byte) error {
				v, err := decodeVector(val)
				out[i] = v
				return err
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read embedding cache: %w", err)
	}

	c.logger.Debug("embedding cache lookup", "hits", len(reqs)-len(missReqs), "misses", len(missReqs))
	if len(missReqs) == 0 {
		return out, nil
	}

	fresh, err := c.inner.Embed(ctx, missReqs)
	if err != nil {
		return nil, err
	}
	if len(fresh) != len(missReqs) {
		return nil, fmt.Errorf("provider returned %d vectors for %d inputs", len(fresh), len(missReqs))
	}

	err = c.db.Update(func(txn *badger.Txn) error {
		for j, v := range fresh {
			out[missIdx[j]] = v
			if err := txn.Set(c.key(missReqs[j]), encodeVector(v)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		c.logger.Warn("failed to write embedding cache", "error", err)
	}

	return out, nil
}

func (c *Cache) key(r Request) []byte {
	sum := sha256.Sum256([]byte(r.Text))
	return []byte("emb:" + c.inner.Model() + ":" + string(r.Field) + ":" + hex.EncodeToString(sum[:]))
}

func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("cached vector length %d is not a multiple of 4", len(b))
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v, nil
}
