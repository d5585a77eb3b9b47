// ABOUTME: Charm KV client wrapper for coach storage.
// ABOUTME: Provides thread-safe initialization, key prefix scans, and automatic cloud sync.
package charm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/charmbracelet/charm/client"
	"github.com/charmbracelet/charm/kv"
	"github.com/harperreed/coach/internal/storage"
)

const (
	dbName = "coach"

	// DefaultHost is used unless CHARM_HOST is already set.
	DefaultHost = "charm.2389.dev"

	UserPrefix     = "user:"
	ActivityPrefix = "activity:"
	WorkoutPrefix  = "workout:"
	PlanPrefix     = "plan:"
	SyncRunPrefix  = "sync_run:"
)

// ErrReadOnly is returned for writes while another process holds the lock.
var ErrReadOnly = errors.New("cannot write: database is locked by another process (MCP server?)")

// Store is the subset of *kv.KV the client uses.
type Store interface {
	Set(key, value []byte) error
	Get(key []byte) ([]byte, error)
	Delete(key []byte) error
	Keys() ([][]byte, error)
	Sync() error
	Reset() error
	IsReadOnly() bool
	Close() error
}

var (
	globalClient *Client
	clientOnce   sync.Once
	clientErr    error
)

// Client implements storage.Repository on an encrypted, cloud-synced KV store.
type Client struct {
	kv       Store
	autoSync bool
	mu       sync.RWMutex
}

var _ storage.Repository = (*Client)(nil)

// InitClient initializes the global Charm client.
// Thread-safe; can be called multiple times.
func InitClient() (*Client, error) {
	clientOnce.Do(func() {
		if os.Getenv("CHARM_HOST") == "" {
			if err := os.Setenv("CHARM_HOST", DefaultHost); err != nil {
				clientErr = err
				return
			}
		}

		db, err := kv.OpenWithDefaultsFallback(dbName)
		if err != nil {
			clientErr = err
			return
		}

		globalClient = NewClient(db, true)

		// Pull remote data on startup (skip in read-only mode)
		if !db.IsReadOnly() {
			_ = db.Sync()
		}
	})

	return globalClient, clientErr
}

// NewClient wraps an open store.
func NewClient(store Store, autoSync bool) *Client {
	return &Client{kv: store, autoSync: autoSync}
}

// Close closes the KV database connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.kv != nil {
		return c.kv.Close()
	}
	return nil
}

// IsReadOnly returns true if the database is open in read-only mode.
// This happens when another process (like an MCP server) holds the lock.
func (c *Client) IsReadOnly() bool {
	return c.kv.IsReadOnly()
}

// Sync synchronizes local state with Charm Cloud.
func (c *Client) Sync() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.kv.IsReadOnly() {
		return nil
	}
	return c.kv.Sync()
}

func (c *Client) syncIfEnabled() {
	if c.autoSync && !c.kv.IsReadOnly() {
		_ = c.kv.Sync()
	}
}

// SetAutoSync enables or disables automatic sync after writes.
func (c *Client) SetAutoSync(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.autoSync = enabled
}

// ID returns the Charm user ID for the current account.
func (c *Client) ID() (string, error) {
	cc, err := client.NewClientWithDefaults()
	if err != nil {
		return "", fmt.Errorf("create charm client: %w", err)
	}
	return cc.ID()
}

// Reset wipes local data and rebuilds from Charm Cloud.
func (c *Client) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.kv.Reset()
}

func (c *Client) set(key string, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.kv.IsReadOnly() {
		return ErrReadOnly
	}
	if err := c.kv.Set([]byte(key), data); err != nil {
		return err
	}
	c.syncIfEnabled()
	return nil
}

func (c *Client) delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.kv.IsReadOnly() {
		return ErrReadOnly
	}
	if err := c.kv.Delete([]byte(key)); err != nil {
		return err
	}
	c.syncIfEnabled()
	return nil
}

type entry struct {
	key   string
	value []byte
}

// scanPrefix returns every entry whose key starts with prefix, in key order.
func (c *Client) scanPrefix(prefix string) ([]entry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys, err := c.kv.Keys()
	if err != nil {
		return nil, err
	}
	p := []byte(prefix)
	var entries []entry
	for _, key := range keys {
		if !bytes.HasPrefix(key, p) {
			continue
		}
		val, err := c.kv.Get(key)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry{key: string(key), value: val})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })
	return entries, nil
}

// resolveKey finds the single key under typePrefix whose ID starts with idPrefix.
func (c *Client) resolveKey(typePrefix, idPrefix string) (string, []byte, error) {
	entries, err := c.scanPrefix(typePrefix + idPrefix)
	if err != nil {
		return "", nil, err
	}
	if len(entries) == 0 {
		return "", nil, fmt.Errorf("%w: %s", storage.ErrNotFound, idPrefix)
	}
	if len(entries) > 1 {
		return "", nil, fmt.Errorf("%w %s: matches multiple records", storage.ErrAmbiguousPrefix, idPrefix)
	}
	return entries[0].key, entries[0].value, nil
}

func (c *Client) deleteByIDPrefix(typePrefix, idPrefix string) error {
	key, _, err := c.resolveKey(typePrefix, idPrefix)
	if err != nil {
		return err
	}
	return c.delete(key)
}

// listAll decodes every value under prefix, skipping entries that fail to decode.
func listAll[T any](c *Client, prefix string) ([]*T, error) {
	entries, err := c.scanPrefix(prefix)
	if err != nil {
		return nil, err
	}
	out := make([]*T, 0, len(entries))
	for _, e := range entries {
		v, err := unmarshalJSON[T](e.value)
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

func getOne[T any](c *Client, prefix, idPrefix string) (*T, error) {
	_, data, err := c.resolveKey(prefix, idPrefix)
	if err != nil {
		return nil, err
	}
	return unmarshalJSON[T](data)
}

func (c *Client) put(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.set(key, data)
}

func unmarshalJSON[T any](data []byte) (*T, error) {
	var result T
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func truncate[T any](items []*T, limit int) []*T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
