package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Nadir-Urbina/myGTD-sub000/internal/api"
	"github.com/Nadir-Urbina/myGTD-sub000/internal/config"
	"github.com/Nadir-Urbina/myGTD-sub000/internal/docstore"
	"github.com/Nadir-Urbina/myGTD-sub000/internal/docstore/firestorestore"
	"github.com/Nadir-Urbina/myGTD-sub000/internal/docstore/mongostore"
	"github.com/Nadir-Urbina/myGTD-sub000/internal/docstore/sqlitestore"
	"github.com/Nadir-Urbina/myGTD-sub000/internal/fbapp"
	"github.com/Nadir-Urbina/myGTD-sub000/internal/logging"
)

var configFile string

func main() {
	rootCmd := &cobra.Command{
		Use:          "gtd",
		Short:        "GTD workflow service",
		Version:      api.Version,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (yaml, json or toml)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(inboxCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setup() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	return cfg, logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr), nil
}

// openGateway connects the configured document backend. fb is only needed
// (and only used) for the firestore backend.
func openGateway(ctx context.Context, cfg *config.Config, fb *fbapp.App, logger zerolog.Logger) (docstore.Gateway, error) {
	switch cfg.Store.Backend {
	case config.BackendSQLite:
		return sqlitestore.Open(cfg.Store.SQLitePath, sqlitestore.WithLogger(logger))
	case config.BackendMongo:
		return mongostore.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database, logger)
	case config.BackendFirestore:
		if fb == nil {
			var err error
			if fb, err = fbapp.New(ctx, cfg.Firebase, logger); err != nil {
				return nil, err
			}
		}
		client, err := fb.Firestore(ctx)
		if err != nil {
			return nil, err
		}
		return firestorestore.New(client, logger), nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}
