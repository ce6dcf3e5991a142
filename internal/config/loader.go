// internal/config/loader.go
//
// Configuration loader and reloader.
//
/*
Context
--------
`Load()` builds one immutable `Config` struct from three layers (highest
precedence last):

  1. Optional `.env` file at `<root>/conf/.env`.
  2. `conf/agenda.yaml`.
  3. Environment variables prefixed `AGENDA_`, where `__` maps to “.”
     (e.g., `AGENDA_HTTP__LISTEN_ADDR → http.listen_addr`).

Values written `vault:<mount>/<path>#<key>` are then swapped for the secret
the SecretResolver returns.  The tree is unmarshalled into typed structs,
enriched with the runtime root path, validated, and cached in an
`atomic.Pointer` for lock-free reads.

Instrumentation
---------------
  • DEBUG spans: root discovery, YAML read, secret resolution.
  • ERROR spans: YAML parse, env overlay, unmarshal, validation failures.
  • INFO  span:  final “config loaded” with key highlights.
  • Logs use the global *sugared* logger (`zap.S()`) so early boot issues
    surface before the file logger is installed.

Notes
-----
  • `rootDir()` climbs the cwd tree until it finds `conf/agenda.yaml`;
    this lets `go run ./cmd/web` work from any sub-directory.
  • Oxford commas, two spaces after periods.
*/
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

const (
	envPrefix   = "AGENDA_"
	vaultPrefix = "vault:"
	fileName    = "agenda.yaml"
)

// SecretResolver turns a `vault:` reference (prefix stripped) into the
// secret value.  *vault.Client satisfies it.
type SecretResolver interface {
	Resolve(ctx context.Context, ref string) (string, error)
}

// ErrUnresolvedSecret marks a `vault:` value with no resolver to read it.
var ErrUnresolvedSecret = errors.New("config: secret reference without resolver")

var current atomic.Pointer[Config]

/*──────────────────────────── root discovery ───────────────────────────────*/

// rootDir resolves AGENDA_ROOT or climbs directories until conf/agenda.yaml
// is found.  Falls back to the executable's parent for a bin/ layout.
func rootDir() string {
	if r := os.Getenv(envPrefix + "ROOT"); r != "" {
		return r
	}

	wd, _ := os.Getwd()
	dir := wd
	for {
		if _, err := os.Stat(filepath.Join(dir, "conf", fileName)); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	exe, _ := os.Executable()
	if filepath.Base(filepath.Dir(exe)) == "bin" {
		return filepath.Dir(filepath.Dir(exe))
	}
	return wd
}

/*─────────────────────────────── loader ───────────────────────────────────*/

// Load reads .env, YAML, env overrides, resolves secrets, validates, and
// caches Config.  r may be nil when no value references Vault.
func Load(ctx context.Context, r SecretResolver) (*Config, error) {
	cfg, err := LoadFrom(ctx, rootDir(), r)
	if err != nil {
		return nil, err
	}
	current.Store(cfg)
	return cfg, nil
}

// LoadFrom is Load with an explicit root and no caching.
func LoadFrom(ctx context.Context, root string, r SecretResolver) (*Config, error) {
	zap.S().Debugw("config root resolved", "root", root)

	// .env is optional; existing process env wins over it.
	_ = godotenv.Load(filepath.Join(root, "conf", ".env"))

	k := koanf.New(".")

	yamlPath := filepath.Join(root, "conf", fileName)
	if err := k.Load(file.Provider(yamlPath), yaml.Parser()); err != nil {
		zap.S().Errorw("config yaml load failed", "file", yamlPath, "err", err)
		return nil, err
	}
	zap.S().Debugw("config yaml loaded", "file", yamlPath)

	// AGENDA_DATABASE__MAX_OPEN_CONNS → database.max_open_conns
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, envPrefix)
		return strings.ToLower(strings.ReplaceAll(s, "__", "."))
	}), nil); err != nil {
		zap.S().Errorw("config env overlay failed", "err", err)
		return nil, err
	}

	if err := resolveSecrets(ctx, k, r); err != nil {
		zap.S().Errorw("config secret resolution failed", "err", err)
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		zap.S().Errorw("config unmarshal failed", "err", err)
		return nil, err
	}

	cfg.Paths.Root = root
	if cfg.Database.Driver == "sqlite" && cfg.Database.DSN != ":memory:" && !filepath.IsAbs(cfg.Database.DSN) {
		cfg.Database.DSN = filepath.Join(root, cfg.Database.DSN)
	}
	if err := validateStruct(&cfg); err != nil {
		zap.S().Errorw("config validation failed", "err", err)
		return nil, err
	}

	zap.S().Infow("config loaded",
		"listen_addr", cfg.HTTP.ListenAddr,
		"driver", cfg.Database.Driver,
		"mqtt", cfg.Notify.MQTT.Broker != "",
		"root", cfg.Paths.Root,
	)
	return &cfg, nil
}

// resolveSecrets replaces every `vault:` string in k.  Keys are walked in
// sorted order so errors are reported deterministically.
func resolveSecrets(ctx context.Context, k *koanf.Koanf, r SecretResolver) error {
	keys := k.Keys()
	sort.Strings(keys)
	for _, key := range keys {
		s, ok := k.Get(key).(string)
		if !ok || !strings.HasPrefix(s, vaultPrefix) {
			continue
		}
		if r == nil {
			return fmt.Errorf("%s: %w", key, ErrUnresolvedSecret)
		}
		val, err := r.Resolve(ctx, strings.TrimPrefix(s, vaultPrefix))
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		if err := k.Set(key, val); err != nil {
			return err
		}
		zap.S().Debugw("config secret resolved", "key", key)
	}
	return nil
}

/*──────────────────────────── helpers ─────────────────────────────────────*/

func Get() *Config { return current.Load() }

func Reload(ctx context.Context, r SecretResolver) error {
	_, err := Load(ctx, r)
	return err
}

// NeedsSecrets reports whether the YAML under root references Vault, so
// boot can skip dialling Vault when nothing asks for it.
func NeedsSecrets(root string) bool {
	b, err := os.ReadFile(filepath.Join(root, "conf", fileName))
	if err != nil {
		return false
	}
	return strings.Contains(string(b), vaultPrefix) || envHasSecrets()
}

func envHasSecrets() bool {
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, envPrefix) && strings.Contains(kv, "="+vaultPrefix) {
			return true
		}
	}
	return false
}

// Root exposes root discovery to commands that need it before Load.
func Root() string { return rootDir() }
