// Package fbapp initializes the Firebase Admin SDK and hands out its clients.
package fbapp

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"github.com/Nadir-Urbina/myGTD-sub000/internal/blob"
	"github.com/Nadir-Urbina/myGTD-sub000/internal/config"
)

const initTimeout = 10 * time.Second

// App is an initialized Firebase app.
type App struct {
	app    *firebase.App
	Auth   *auth.Client
	bucket string
}

// New initializes Firebase from the service account JSON in cfg. Without one,
// application default credentials are used.
func New(ctx context.Context, cfg config.FirebaseConfig, logger zerolog.Logger) (*App, error) {
	logger.Info().Msg("Initializing Firebase...")

	var opts []option.ClientOption
	if cfg.ServiceAccount != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.ServiceAccount)))
	}
	var fc *firebase.Config
	if cfg.ProjectID != "" || cfg.StorageBucket != "" {
		fc = &firebase.Config{ProjectID: cfg.ProjectID, StorageBucket: cfg.StorageBucket}
	}
	app, err := firebase.NewApp(ctx, fc, opts...)
	if err != nil {
		return nil, fmt.Errorf("init firebase: %w", err)
	}

	authCtx, cancel := context.WithTimeout(ctx, initTimeout)
	defer cancel()
	authClient, err := app.Auth(authCtx)
	if err != nil {
		return nil, fmt.Errorf("init firebase auth: %w", err)
	}

	logger.Info().Msg("Firebase initialized successfully")
	return &App{app: app, Auth: authClient, bucket: cfg.StorageBucket}, nil
}

// Firestore opens a Firestore client. The caller closes it.
func (a *App) Firestore(ctx context.Context) (*firestore.Client, error) {
	client, err := a.app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firestore: %w", err)
	}
	return client, nil
}

// Bucket opens the configured storage bucket.
func (a *App) Bucket(ctx context.Context) (*blob.FirebaseBucket, error) {
	return blob.NewFirebaseBucket(ctx, a.app, a.bucket)
}
