package app

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/atvirokodosprendimai/gamecatalog/internal/adapters/httpapi"
	"github.com/atvirokodosprendimai/gamecatalog/internal/adapters/seedfile"
	sqliteadapter "github.com/atvirokodosprendimai/gamecatalog/internal/adapters/sqlite"
	"github.com/atvirokodosprendimai/gamecatalog/internal/adapters/sqlite/gormsqlite"
	"github.com/atvirokodosprendimai/gamecatalog/internal/core/domain"
	"github.com/atvirokodosprendimai/gamecatalog/internal/core/usecase"
	"github.com/atvirokodosprendimai/gamecatalog/migrations"
)

type Config struct {
	Addr     string
	DBPath   string
	SeedFile string
}

type resourceCloser struct {
	closers []io.Closer
}

func (r resourceCloser) Close() error {
	var firstErr error
	for _, c := range r.closers {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func NewServer(ctx context.Context, cfg Config) (*http.Server, io.Closer, error) {
	db, err := gormsqlite.Open(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open catalog sqlite: %w", err)
	}

	writeSQLDB, err := db.WriteSQLDB()
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("resolve writer sql db: %w", err)
	}

	migrateCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := migrations.Up(migrateCtx, writeSQLDB); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	store := sqliteadapter.NewCatalogStore(db)
	eventRepo := sqliteadapter.NewGameEventRepository(db)

	if cfg.SeedFile != "" {
		if err := applySeed(ctx, usecase.NewSeedService(store), cfg.SeedFile); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
	}

	handler := httpapi.NewHandler(
		usecase.NewCatalogService(store),
		usecase.NewGameService(store),
		usecase.NewAuditService(eventRepo),
		httpapi.NewMetrics(),
	)
	handler.SetSchemaVersionFunc(func(ctx context.Context) (int64, error) {
		return migrations.Version(ctx, writeSQLDB)
	})

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return server, resourceCloser{closers: []io.Closer{db}}, nil
}

func applySeed(ctx context.Context, seeds *usecase.SeedService, path string) error {
	catalog, err := seedfile.Load(path)
	if err != nil {
		return fmt.Errorf("load seed file: %w", err)
	}

	seedCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	result, err := seeds.Apply(seedCtx, catalog, domain.MutationMetadata{Source: "seed"})
	if err != nil {
		return fmt.Errorf("apply seed file: %w", err)
	}

	log.Printf("seed %s: %d categories, %d publishers, %d games created, %d games already present",
		path, result.CategoriesCreated, result.PublishersCreated, result.GamesCreated, result.GamesSkipped)
	return nil
}
