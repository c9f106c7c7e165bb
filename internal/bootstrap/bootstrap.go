// Package bootstrap provides dependency initialization for the media
// generation API.
package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/xlei/mediagen-api/internal/collector"
	"github.com/xlei/mediagen-api/internal/config"
	"github.com/xlei/mediagen-api/internal/gaga"
	"github.com/xlei/mediagen-api/internal/orchestrate"
	"github.com/xlei/mediagen-api/internal/poller"
	"github.com/xlei/mediagen-api/internal/provider"
	"github.com/xlei/mediagen-api/internal/quota"
	"github.com/xlei/mediagen-api/internal/seaart"
	"github.com/xlei/mediagen-api/internal/storage"
	"github.com/xlei/mediagen-api/internal/task"
	"github.com/xlei/mediagen-api/internal/uploader"
)

// Dependencies holds all initialized dependencies for the HTTP server.
type Dependencies struct {
	Service *orchestrate.Service
	Prober  *quota.Prober
}

// NewDependencies creates and initializes all dependencies for the application.
func NewDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	prov, err := initProvider(cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("provider configured", slog.String("provider", prov.Name()))

	archive, err := initArchive(cfg, logger)
	if err != nil {
		return nil, err
	}

	up := uploader.New(prov, logger)
	pl := poller.New(prov, logger,
		poller.WithInterval(cfg.PollInterval()),
		poller.WithMaxWait(cfg.MaxWait()),
	)

	colOpts := []collector.Option{collector.WithMaxAssets(cfg.MaxAssetsPerTask)}
	if archive != nil {
		colOpts = append(colOpts, collector.WithArchive(archive))
	}
	col := collector.New(prov, logger, colOpts...)

	prober := quota.New(prov, cfg.QuotaCacheTTL(), logger)
	repo := task.NewMemoryRepository()

	svc := orchestrate.NewService(
		prov,
		up,
		pl,
		col,
		prober,
		repo,
		logger,
		orchestrate.WithPlaceholderSize(cfg.PlaceholderWidth, cfg.PlaceholderHeight),
	)

	return &Dependencies{
		Service: svc,
		Prober:  prober,
	}, nil
}

// initProvider selects and builds the vendor adapter.
func initProvider(cfg *config.Config) (provider.Provider, error) {
	switch cfg.Provider {
	case "seaart":
		client, err := seaart.NewClient(
			seaart.WithCookie(cfg.SeaArtCookie),
			seaart.WithBaseURL(cfg.SeaArtBaseURL),
			seaart.WithTimeout(cfg.CallTimeout()),
		)
		if err != nil {
			return nil, fmt.Errorf("create seaart client: %w", err)
		}
		return provider.NewSeaArtAdapter(client), nil
	case "gaga":
		client, err := gaga.NewClient(
			gaga.WithCookie(cfg.GagaCookie),
			gaga.WithBaseURL(cfg.GagaBaseURL),
			gaga.WithTimeout(cfg.CallTimeout()),
		)
		if err != nil {
			return nil, fmt.Errorf("create gaga client: %w", err)
		}
		return provider.NewGagaAdapter(client), nil
	default:
		return nil, config.ErrUnknownProvider
	}
}

// initArchive creates the archival backend, or nil when archival is off.
func initArchive(cfg *config.Config, logger *slog.Logger) (storage.Archive, error) {
	if !cfg.ArchiveEnabled() {
		return nil, nil
	}

	if cfg.S3Enabled() {
		s3Cfg := storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		}
		s3Archive, err := storage.NewS3Archive(s3Cfg)
		if err != nil {
			return nil, fmt.Errorf("create S3 archive: %w", err)
		}
		logger.Info("S3 archival configured",
			slog.String("bucket", cfg.S3Bucket),
			slog.String("region", cfg.S3Region),
		)
		return s3Archive, nil
	}

	local, err := storage.NewLocalArchive(cfg.ArchiveDir)
	if err != nil {
		return nil, fmt.Errorf("create local archive: %w", err)
	}
	logger.Info("local archival configured",
		slog.String("dir", local.Dir()),
	)
	return local, nil
}
