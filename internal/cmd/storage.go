package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"sweetshop/internal/config"
	"sweetshop/internal/database"
	"sweetshop/internal/store"
)

var documents = []store.Document{store.Products, store.Carts, store.Users, store.Orders}

// openStore builds the configured storage and the Store over it. The
// returned cleanup releases whatever was opened.
func openStore(ctx context.Context, cfg config.Config, l zerolog.Logger) (*store.Store, func(), error) {
	files, err := store.NewFileStorage(cfg.DataDir)
	if err != nil {
		return nil, nil, err
	}

	var (
		storage store.Storage = files
		cleanup               = func() {}
	)

	if cfg.StorageDriver == config.DriverMongo {
		client, err := database.Connect(cfg.MongoURI)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to mongo: %w", err)
		}
		db := client.Database(cfg.DBName)
		l.Info().Str("area", "database").Str("db", db.Name()).Msg("MongoDB connected")

		if err := database.EnsureDocumentIndexes(db); err != nil {
			l.Warn().Err(err).Str("area", "database").Msg("document index warning")
		}

		mongoStorage := database.NewDocumentStorage(db)
		names := make([]string, 0, len(documents))
		for _, doc := range documents {
			names = append(names, doc.Name)
		}
		copied, err := store.Seed(ctx, mongoStorage, files, names...)
		if err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, fmt.Errorf("seed documents: %w", err)
		}
		if len(copied) > 0 {
			l.Info().Str("area", "database").Strs("documents", copied).Msg("seeded documents from data directory")
		}

		storage = mongoStorage
		cleanup = func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Disconnect(ctx); err != nil {
				l.Warn().Err(err).Str("area", "database").Msg("disconnect failed")
			}
		}
	}

	s := store.New(storage,
		store.WithMaxRetries(cfg.StoreMaxRetries),
		store.WithLogger(l),
	)
	return s, cleanup, nil
}
