// cmd/seed/main.go
//
// Creates the schema and loads the sample events, locations, and contacts
// into an empty store.  A store that already holds any record is left
// untouched.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/yanizio/agenda/internal/config"
	"github.com/yanizio/agenda/internal/database"
	"github.com/yanizio/agenda/internal/logger"
	"github.com/yanizio/agenda/internal/store"
	"github.com/yanizio/agenda/internal/vault"
)

func main() {
	timeout := flag.Duration("timeout", time.Minute, "overall deadline")
	flag.Parse()

	log := logger.Console()
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	var secrets config.SecretResolver
	if config.NeedsSecrets(config.Root()) {
		vc, err := vault.New(ctx, vault.Options{Log: log})
		if err != nil {
			log.Fatal("vault", zap.Error(err))
		}
		secrets = vc
	}
	cfg, err := config.Load(ctx, secrets)
	if err != nil {
		log.Fatal("config", zap.Error(err))
	}

	db, err := database.Open(ctx, database.Config{
		Driver:      cfg.Database.Driver,
		DSN:         cfg.Database.DSN,
		Password:    cfg.Database.Password,
		PingRetries: cfg.Database.PingRetries,
	})
	if err != nil {
		log.Fatal("database", zap.Error(err))
	}
	defer db.Close()

	st := store.New(db, store.WithLogger(log))
	if err := st.InitSchema(ctx); err != nil {
		log.Error("schema", zap.Error(err))
		os.Exit(1)
	}
	res, err := store.Seed(ctx, st)
	if err != nil {
		log.Error("seed", zap.Error(err))
		os.Exit(1)
	}
	if res.Skipped {
		log.Info("store already has data, nothing seeded")
		return
	}
	log.Info("seeded",
		zap.Int("locations", res.Locations),
		zap.Int("contacts", res.Contacts),
		zap.Int("events", res.Events))
}
