package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/Nadir-Urbina/myGTD-sub000/internal/ai"
	"github.com/Nadir-Urbina/myGTD-sub000/internal/api"
	"github.com/Nadir-Urbina/myGTD-sub000/internal/blob"
	"github.com/Nadir-Urbina/myGTD-sub000/internal/fbapp"
	"github.com/Nadir-Urbina/myGTD-sub000/internal/invite"
	"github.com/Nadir-Urbina/myGTD-sub000/internal/store"
	"github.com/Nadir-Urbina/myGTD-sub000/internal/workflow"
)

const shutdownTimeout = 15 * time.Second

func serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}

func runServe(parent context.Context, addr string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	if addr == "" {
		addr = cfg.Server.Addr
	}
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Tokens are always Firebase ID tokens, whichever backend holds the data.
	fb, err := fbapp.New(ctx, cfg.Firebase, logger)
	if err != nil {
		return err
	}

	gw, err := openGateway(ctx, cfg, fb, logger)
	if err != nil {
		return err
	}
	defer gw.Close()

	var bucket blob.Bucket
	if cfg.Firebase.StorageBucket != "" {
		b, err := fb.Bucket(ctx)
		if err != nil {
			return err
		}
		bucket = b
	} else {
		logger.Warn().Msg("No storage bucket configured, reference attachments are disabled")
	}

	stores := store.New(gw, bucket, store.WithLogger(logger))
	engine := workflow.New(stores, logger)

	if cfg.AI.APIKey == "" {
		logger.Warn().Msg("GROQ_API_KEY not set, classification falls back to heuristics")
	}
	classifier := ai.NewClassifier(ai.NewGroqClient(cfg.AI, logger), logger,
		ai.WithWriters(stores.NextActions, stores.Issues),
		ai.WithFreshness(cfg.AI.Freshness),
		ai.WithCache(cfg.AI.CacheSize, cfg.AI.CacheTTL),
	)
	defer classifier.Wait()

	var invites *invite.Service
	if cfg.SMTP.Host != "" {
		invites = invite.NewService(stores.NextActions, invite.NewDialer(cfg.SMTP), cfg.SMTP.From, logger)
	} else {
		logger.Warn().Msg("SMTP not configured, calendar invites are disabled")
	}

	srv := api.NewServer(api.Deps{
		Stores:     stores,
		Engine:     engine,
		Classifier: classifier,
		Invites:    invites,
		Verifier:   fb.Auth,
		Logger:     logger,
	})
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Str("backend", cfg.Store.Backend).Msg("Starting server")
		errc <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
