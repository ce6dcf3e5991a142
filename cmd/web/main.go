// cmd/web/main.go
//
// Agenda dashboard – HTTP entry point.
//
// Boot sequence
// -------------
//
//  1. Bootstrap console logger so config errors are visible.
//
//  2. Dial Vault, but only when configuration references `vault:` values.
//
//  3. Load config (.env → conf/agenda.yaml → AGENDA_ env) and start the
//     daily rotating file logger.
//
//  4. Open the store (mysql or sqlite), create the schema, and seed the
//     sample data on an empty store when `database.seed` is set.
//
//  5. Dial the MQTT broker when `notify.mqtt.broker` is set; otherwise
//     change notifications are dropped.
//
//  6. Build the workspace and the chi router, then serve until SIGINT or
//     SIGTERM, shutting down gracefully.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/yanizio/agenda/internal/api"
	"github.com/yanizio/agenda/internal/config"
	"github.com/yanizio/agenda/internal/database"
	"github.com/yanizio/agenda/internal/logger"
	"github.com/yanizio/agenda/internal/message"
	"github.com/yanizio/agenda/internal/server"
	"github.com/yanizio/agenda/internal/store"
	"github.com/yanizio/agenda/internal/vault"
	"github.com/yanizio/agenda/internal/workspace"
)

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func main() {
	boot := logger.Console()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		boot.Fatal("agenda stopped", zap.Error(err))
	}
}

func run(ctx context.Context) error {
	//
	// ── 1.  Secrets and config ──────────────────────────────────────────
	//
	var secrets config.SecretResolver
	if config.NeedsSecrets(config.Root()) {
		vc, err := vault.New(ctx, vault.Options{Renew: true})
		if err != nil {
			return err
		}
		secrets = vc
	}
	cfg, err := config.Load(ctx, secrets)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Paths.Root, cfg.Log.Level, cfg.Log.Console || runningInTTY())
	if err != nil {
		return err
	}
	defer log.Sync()

	//
	// ── 2.  Store ───────────────────────────────────────────────────────
	//
	db, err := database.Open(ctx, database.Config{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.DSN,
		Password:        cfg.Database.Password,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		PingRetries:     cfg.Database.PingRetries,
	})
	if err != nil {
		return err
	}
	defer db.Close()
	log.Info("database online", zap.String("driver", cfg.Database.Driver))

	st := store.New(db, store.WithLogger(log.Named("store")))
	if err := st.InitSchema(ctx); err != nil {
		return err
	}
	if cfg.Database.Seed {
		res, err := store.Seed(ctx, st)
		if err != nil {
			return err
		}
		log.Info("seed", zap.Bool("skipped", res.Skipped), zap.Int("events", res.Events))
	}

	//
	// ── 3.  Change notifications ────────────────────────────────────────
	//
	var pub message.Publisher = message.Nop{}
	if m := cfg.Notify.MQTT; m.Broker != "" {
		mq, err := message.DialMQTT(message.MQTTOptions{
			Broker:   m.Broker,
			ClientID: m.ClientID,
			Prefix:   m.TopicPrefix,
			Username: m.Username,
			Password: m.Password,
			Timeout:  m.Timeout,
		})
		if err != nil {
			// Notifications are best effort; the dashboard runs without them.
			log.Warn("mqtt unavailable, notifications disabled", zap.Error(err))
		} else {
			defer mq.Close()
			pub = mq
		}
	}

	//
	// ── 4.  Workspace and HTTP ──────────────────────────────────────────
	//
	ws := workspace.New(st, workspace.Options{
		FoldOrdering: cfg.Collections.FoldOrdering,
		Publisher:    pub,
		Log:          log.Named("workspace"),
	})
	defer ws.Close()

	h := api.NewRouter(api.Deps{
		Store:      st,
		Workspace:  ws,
		ForceHTTPS: cfg.HTTP.ForceHTTPS,
		Log:        log,
	})
	return server.Run(ctx, server.New(cfg.HTTP.ListenAddr, h), cfg.HTTP.ShutdownTimeout, log)
}
