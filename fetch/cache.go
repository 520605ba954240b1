package fetch

import (
	"sync"

	"github.com/tilemesa/instile/compress"
	"github.com/tilemesa/instile/internal/hash"
)

// Cache is an in-memory tile payload cache keyed by the xxHash64 of the
// resource URL. Entries are held compressed; a hit pays one block
// decompression instead of a network round trip.
//
// Eviction is FIFO once maxEntries is reached. Cache is safe for concurrent
// use.
type Cache struct {
	mu         sync.Mutex
	codec      compress.Codec
	entries    map[uint64][]byte
	order      []uint64
	maxEntries int
}

// NewCache creates a cache holding at most maxEntries payloads compressed
// with the given codec type. maxEntries <= 0 means unbounded.
func NewCache(codecType compress.Type, maxEntries int) (*Cache, error) {
	codec, err := compress.NewCodec(codecType)
	if err != nil {
		return nil, err
	}

	return &Cache{
		codec:      codec,
		entries:    make(map[uint64][]byte),
		maxEntries: maxEntries,
	}, nil
}

// Get returns the cached payload for url, decompressed, and whether it was
// present. A corrupt entry is dropped and reported as a miss.
func (c *Cache) Get(url string) ([]byte, bool) {
	key := hash.Key(url)

	c.mu.Lock()
	entry, ok := c.entries[key]
	c.mu.Unlock()
	if !ok {
		return nil, false
	}

	payload, err := c.codec.Decompress(entry)
	if err != nil {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()

		return nil, false
	}

	return payload, true
}

// Put stores the payload for url. Compression failures leave the cache
// unchanged; the caller still holds the payload.
func (c *Cache) Put(url string, payload []byte) {
	compressed, err := c.codec.Compress(payload)
	if err != nil {
		return
	}
	key := hash.Key(url)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists {
		c.order = append(c.order, key)
	}
	c.entries[key] = compressed

	for c.maxEntries > 0 && len(c.entries) > c.maxEntries {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
}

// Len returns the number of cached payloads.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}
