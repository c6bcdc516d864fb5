// ABOUTME: Charm KV access for the note backend, one transaction per call.
// ABOUTME: The database is opened and closed around every operation.

package charm

import (
	"os"

	"github.com/charmbracelet/charm/client"
	"github.com/charmbracelet/charm/kv"
)

// DBName is the charm kv database holding marginalia notes.
const DBName = "marginalia"

// Client names the kv database and its sync policy. It keeps no open handle,
// so other marginalia processes can use the same database between calls.
type Client struct {
	dbName   string
	autoSync bool
}

// Option configures a Client.
type Option func(*Client)

func WithDBName(name string) Option {
	return func(c *Client) {
		c.dbName = name
	}
}

func WithAutoSync(enabled bool) Option {
	return func(c *Client) {
		c.autoSync = enabled
	}
}

// WithHost points the client at a self-hosted charm server.
func WithHost(host string) Option {
	return func(c *Client) {
		if host != "" {
			_ = os.Setenv("CHARM_HOST", host)
		}
	}
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		dbName:   DBName,
		autoSync: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get reads key in a read-only transaction.
func (c *Client) Get(key []byte) ([]byte, error) {
	var val []byte
	err := kv.DoReadOnly(c.dbName, func(k *kv.KV) error {
		var err error
		val, err = k.Get(key)
		return err
	})
	return val, err
}

// Set writes key and, with auto-sync on, pushes to the server.
func (c *Client) Set(key, value []byte) error {
	return kv.Do(c.dbName, func(k *kv.KV) error {
		if err := k.Set(key, value); err != nil {
			return err
		}
		if c.autoSync {
			return k.Sync()
		}
		return nil
	})
}

// Sync pushes local changes and pulls remote ones.
func (c *Client) Sync() error {
	return kv.Do(c.dbName, func(k *kv.KV) error {
		return k.Sync()
	})
}

// ID is the charm account id linked on this machine.
func (c *Client) ID() (string, error) {
	cc, err := client.NewClientWithDefaults()
	if err != nil {
		return "", err
	}
	return cc.ID()
}
