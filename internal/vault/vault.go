// internal/vault/vault.go
//
// Vault client wrapper.
//
// Context
// -------
//   - Wraps the HashiCorp Vault Go SDK for the one thing the dashboard needs
//     from it: reading secrets (database password, MQTT credentials) that
//     configuration references as `vault:<mount>/<path>#<key>`.
//   - Adds per-key caching and optional background token renewal.
//   - Header block, section underlines, Oxford commas, two spaces after
//     periods, no m-dash.
//
// Public workflow
// ---------------
//  1. cli, err := vault.New(ctx, vault.Options{Renew: true})  // during boot.
//  2. cfg, err := config.Load(ctx, cli)                       // resolves refs.
//
// Environment expectations
// ------------------------
//   - VAULT_ADDR   – scheme and host of the Vault server.
//   - VAULT_TOKEN  – token used for every read.
package vault

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	vault "github.com/hashicorp/vault/api"
	"go.uber.org/zap"
)

//
// SECTION 1.  Public façade
//

// Options configures New.  Empty Address and Token fall back to the
// VAULT_ADDR and VAULT_TOKEN environment variables.
type Options struct {
	Address  string
	Token    string
	CacheTTL time.Duration // zero disables caching
	Renew    bool          // start the token renewal loop
	Log      *zap.Logger
}

// Client is safe for concurrent use.  Zero value is invalid.
type Client struct {
	api *vault.Client
	ttl time.Duration
	log *zap.Logger

	cacheMu sync.RWMutex
	cache   map[string]cached // path#key → value + expiry.
}

type cached struct {
	val string
	exp time.Time
}

// New constructs a Vault client.  The renewal loop, when enabled, stops
// with ctx.
func New(ctx context.Context, o Options) (*Client, error) {
	if o.Log == nil {
		o.Log = zap.L()
	}

	cfg := vault.DefaultConfig()
	if err := cfg.ReadEnvironment(); err != nil {
		return nil, fmt.Errorf("vault env cfg: %w", err)
	}
	if o.Address != "" {
		cfg.Address = o.Address
	}

	apiCli, err := vault.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("vault api: %w", err)
	}
	if o.Token != "" {
		apiCli.SetToken(o.Token)
	}

	c := &Client{
		api:   apiCli,
		ttl:   o.CacheTTL,
		log:   o.Log.Named("vault"),
		cache: make(map[string]cached),
	}
	if o.Renew {
		go c.renewLoop(ctx)
	}
	return c, nil
}

// Resolve reads the secret named by ref, written `<mount>/<path>#<key>`.
// It satisfies config.SecretResolver.
func (c *Client) Resolve(ctx context.Context, ref string) (string, error) {
	path, key, err := ParseRef(ref)
	if err != nil {
		return "", err
	}
	return c.GetKV(ctx, path, key)
}

// GetKV fetches a single key from a KV-v2 secret, serving repeats from the
// cache while the entry is fresh.
func (c *Client) GetKV(ctx context.Context, secretPath, key string) (string, error) {
	canonical := secretPath + "#" + key

	if c.ttl > 0 {
		c.cacheMu.RLock()
		cv, ok := c.cache[canonical]
		c.cacheMu.RUnlock()
		if ok && time.Now().Before(cv.exp) {
			return cv.val, nil
		}
	}

	mount, rel := splitMount(secretPath)
	sec, err := c.api.KVv2(mount).Get(ctx, rel)
	if err != nil {
		return "", fmt.Errorf("vault get %s: %w", secretPath, err)
	}

	raw, ok := sec.Data[key]
	if !ok {
		return "", fmt.Errorf("key %q not found in secret %q", key, secretPath)
	}
	sval, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("value at %s is not a string", canonical)
	}

	if c.ttl > 0 {
		c.cacheMu.Lock()
		c.cache[canonical] = cached{val: sval, exp: time.Now().Add(c.ttl)}
		c.cacheMu.Unlock()
	}
	c.log.Debug("secret resolved", zap.String("path", secretPath), zap.String("key", key))
	return sval, nil
}

// ParseRef splits `<mount>/<path>#<key>`.
func ParseRef(ref string) (path, key string, err error) {
	path, key, ok := strings.Cut(strings.TrimSpace(ref), "#")
	if !ok || path == "" || key == "" || !strings.Contains(path, "/") {
		return "", "", errors.New("vault ref must look like mount/path#key")
	}
	return path, key, nil
}

//
// SECTION 2.  Background token renewal
//

func (c *Client) renewLoop(ctx context.Context) {
	for ctx.Err() == nil {
		sec, err := c.api.Auth().Token().RenewSelfWithContext(ctx, 0)
		if err != nil {
			c.log.Warn("token renew self failed", zap.Error(err))
			backoff(ctx, 30*time.Second)
			continue
		}
		if sec == nil || sec.Auth == nil || !sec.Auth.Renewable {
			c.log.Info("token is not renewable, sleeping 1h")
			backoff(ctx, time.Hour)
			continue
		}

		watcher, err := c.api.NewLifetimeWatcher(&vault.LifetimeWatcherInput{
			Secret: sec,
			Grace:  15 * time.Second,
		})
		if err != nil {
			c.log.Warn("lifetime watcher init failed", zap.Error(err))
			backoff(ctx, 30*time.Second)
			continue
		}
		c.watch(ctx, watcher)
	}
}

// watch runs one watcher until it stops or ctx ends.
func (c *Client) watch(ctx context.Context, w *vault.LifetimeWatcher) {
	go w.Start()
	defer w.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-w.DoneCh():
			if err != nil {
				c.log.Warn("token renewal stopped", zap.Error(err))
			}
			backoff(ctx, 15*time.Second)
			return
		case ev := <-w.RenewCh():
			if ev != nil && ev.Secret != nil && ev.Secret.Auth != nil {
				c.log.Info("token renewed", zap.Int("ttl_seconds", ev.Secret.Auth.LeaseDuration))
			}
		}
	}
}

//
// SECTION 3.  Helpers
//

func splitMount(p string) (mount, rel string) {
	mount, rel, _ = strings.Cut(p, "/")
	return mount, rel
}

func backoff(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
