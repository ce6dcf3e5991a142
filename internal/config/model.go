// internal/config/model.go
//
// Typed configuration model for the agenda dashboard.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `.env`                          – dotenv values,
//   • `conf/agenda.yaml`                       – primary static file,
//   • `AGENDA_`-prefixed environment overrides – highest precedence.
//
// Any value whose string begins with `vault:` is resolved through a
// SecretResolver before unmarshalling, so the model never stores Vault
// references, only plain strings.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.
//   • Oxford commas, two spaces after periods.  No em-dash.

package config

import "time"

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr      string        `koanf:"listen_addr"      validate:"required,hostname_port"`
	ForceHTTPS      bool          `koanf:"force_https"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gte=0"`
}

//
// Database section
//

// Database selects the driver and pool.  For mysql the DSN is a template
// whose password is injected from `Password`; for sqlite it is a file path,
// relative paths being resolved against Paths.Root.
type Database struct {
	Driver          string        `koanf:"driver"            validate:"required,oneof=mysql sqlite"`
	DSN             string        `koanf:"dsn"               validate:"required"`
	Password        string        `koanf:"password"`
	MaxOpenConns    int           `koanf:"max_open_conns"    validate:"gte=0"`
	MaxIdleConns    int           `koanf:"max_idle_conns"    validate:"gte=0"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime" validate:"gte=0"`
	PingRetries     int           `koanf:"ping_retries"      validate:"gte=0,lte=20"`
	Seed            bool          `koanf:"seed"`
}

//
// Collections section
//

// Collections tunes list behaviour.  FoldOrdering sorts text columns
// case-insensitively.
type Collections struct {
	FoldOrdering bool `koanf:"fold_ordering"`
}

//
// Notify section
//

// MQTT is the change-notification broker.  An empty Broker disables
// publishing.
type MQTT struct {
	Broker      string        `koanf:"broker"       validate:"omitempty,url"`
	ClientID    string        `koanf:"client_id"`
	TopicPrefix string        `koanf:"topic_prefix"`
	Username    string        `koanf:"username"`
	Password    string        `koanf:"password"`
	Timeout     time.Duration `koanf:"timeout"      validate:"gte=0"`
}

type Notify struct {
	MQTT MQTT `koanf:"mqtt"`
}

//
// Log section
//

type Log struct {
	Level   string `koanf:"level"   validate:"omitempty,oneof=debug info warn error"`
	Console bool   `koanf:"console"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime, never set in YAML or env.
type Paths struct {
	Root string // AGENDA_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads.
type Config struct {
	HTTP        HTTP        `koanf:"http"`
	Database    Database    `koanf:"database"`
	Collections Collections `koanf:"collections"`
	Notify      Notify      `koanf:"notify"`
	Log         Log         `koanf:"log"`
	Paths       Paths       `koanf:"-"`
}
