package client

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fedoragold/walletshell/settings"
	"github.com/fedoragold/walletshell/source"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned by the getters when the key is not in the
// current document.
var ErrNotFound = errors.New("config not found")

// Client keeps the effective wallet shell settings in sync with a
// Repository.
type Client struct {
	Repository      source.Repository
	RefreshInterval time.Duration
	cancel          context.CancelFunc
	done            chan struct{}

	current atomic.Pointer[settings.Settings]
	lastErr atomic.Pointer[refreshError]

	mu      sync.Mutex // guards lastRaw
	lastRaw []byte
}

type refreshError struct {
	err error
}

// NewClient creates a Client for repository and refreshes it once before
// returning. A failed first refresh is returned as the error, but the Client
// is still usable and serves the default settings until a refresh succeeds.
// A background goroutine refreshes every refreshInterval until Close is
// called or ctx is canceled.
func NewClient(ctx context.Context, repository source.Repository, refreshInterval time.Duration) (*Client, error) {
	ctx, cancel := context.WithCancel(ctx)

	client := &Client{
		Repository:      repository,
		RefreshInterval: refreshInterval,
		cancel:          cancel,
		done:            make(chan struct{}),
	}
	defaults := settings.Default()
	client.current.Store(&defaults)

	err := client.Refresh(ctx)
	if err != nil {
		logrus.WithError(err).Error("error refreshing repository")
	}

	go refresh(ctx, client)

	return client, err
}

// refresh refreshes the client every RefreshInterval until ctx is canceled.
func refresh(ctx context.Context, client *Client) {
	defer close(client.done)
	if client.RefreshInterval <= 0 {
		<-ctx.Done()
		return
	}
	ticker := time.NewTicker(client.RefreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := client.Refresh(ctx); err != nil {
				logrus.WithError(err).Error("error refreshing repository")
			}
		case <-ctx.Done():
			return
		}
	}
}

// Refresh fetches the document now and republishes the settings when it
// changed. A document that does not parse or validate is rejected and the
// previous settings stay in effect.
func (c *Client) Refresh(ctx context.Context) error {
	err := c.refresh(ctx)
	c.lastErr.Store(&refreshError{err: err})
	return err
}

func (c *Client) refresh(ctx context.Context) error {
	if err := c.Repository.Refresh(ctx); err != nil {
		return err
	}
	raw := c.Repository.GetRawData()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastRaw != nil && bytes.Equal(raw, c.lastRaw) {
		return nil
	}
	s, err := settings.Parse(raw)
	if err != nil {
		return err
	}
	if err := s.Validate(); err != nil {
		return err
	}
	c.current.Store(&s)
	c.lastRaw = raw
	logrus.WithField("source", c.Repository.GetName()).Info("settings updated")
	return nil
}

// Settings returns a copy of the settings currently in effect.
func (c *Client) Settings() settings.Settings {
	return c.current.Load().Clone()
}

// LastError returns the result of the most recent refresh.
func (c *Client) LastError() error {
	r := c.lastErr.Load()
	if r == nil {
		return nil
	}
	return r.err
}

// Close stops the background refresh goroutine and waits for it to exit.
func (c *Client) Close() {
	c.cancel()
	<-c.done
}

// GetConfig decodes the top-level key name of the current document into the
// value pointed to by data.
func (c *Client) GetConfig(name string, data interface{}) error {
	config, ok := c.Repository.GetData(name)
	if !ok {
		return ErrNotFound
	}
	marshal, err := yaml.Marshal(config)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(marshal, data)
}

// GetConfigArrayOfStrings returns the top-level key name as a list of strings.
func (c *Client) GetConfigArrayOfStrings(name string) ([]string, error) {
	config, ok := c.Repository.GetData(name)
	if !ok {
		return nil, ErrNotFound
	}
	switch v := config.(type) {
	case []string:
		return v, nil
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, errors.New("config is not an array of strings")
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, errors.New("config is not an array of strings")
	}
}

// GetConfigString returns the top-level key name as a string.
func (c *Client) GetConfigString(name string) (string, error) {
	config, ok := c.Repository.GetData(name)
	if !ok {
		return "", ErrNotFound
	}
	configString, ok := config.(string)
	if !ok {
		return "", errors.New("config is not a string")
	}
	return configString, nil
}

// GetConfigInt returns the top-level key name as an int.
func (c *Client) GetConfigInt(name string) (int, error) {
	config, ok := c.Repository.GetData(name)
	if !ok {
		return 0, ErrNotFound
	}
	switch v := config.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	default:
		return 0, errors.New("config is not an int")
	}
}

// GetConfigFloat returns the top-level key name as a float64. Integer
// values are widened.
func (c *Client) GetConfigFloat(name string) (float64, error) {
	config, ok := c.Repository.GetData(name)
	if !ok {
		return 0, ErrNotFound
	}
	switch v := config.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	default:
		return 0, errors.New("config is not a float")
	}
}
