package redmine

import (
	"context"
	"path/filepath"
	"time"

	"github.com/osgeoweblate/redmine-gtt-print/internal/config"
	domainErrors "github.com/osgeoweblate/redmine-gtt-print/internal/errors"
	"github.com/osgeoweblate/redmine-gtt-print/internal/infrastructure/cache"
	"github.com/osgeoweblate/redmine-gtt-print/internal/infrastructure/httpclient"
	"github.com/osgeoweblate/redmine-gtt-print/internal/logger"
	"github.com/osgeoweblate/redmine-gtt-print/internal/ports"
)

const (
	SourceName     = "redmine"
	requestTimeout = 30 * time.Second
	cacheDirName   = "cache"
)

// RedmineSourceFactory builds REST-backed issue sources.
type RedmineSourceFactory struct{}

func NewRedmineSourceFactory() *RedmineSourceFactory {
	return &RedmineSourceFactory{}
}

func (f *RedmineSourceFactory) CreateSource(ctx context.Context, cfg *config.Config, _ string) (ports.IssueRepository, error) {
	service := NewRedmineService(cfg, httpclient.New(requestTimeout))

	// The cache lives next to config.toml, so a config that was never saved
	// runs uncached.
	if cfg.Redmine.CacheTTLSeconds > 0 && cfg.PathFile != "" {
		dir := filepath.Join(filepath.Dir(cfg.PathFile), cacheDirName)
		c, err := cache.New(dir, time.Duration(cfg.Redmine.CacheTTLSeconds)*time.Second)
		if err != nil {
			logger.Warn(ctx, "redmine cache disabled", "dir", dir, "error", err)
		} else {
			service.WithCache(c)
		}
	}

	return service, nil
}

func (f *RedmineSourceFactory) ValidateConfig(cfg *config.Config) error {
	if cfg.Redmine.BaseURL == "" && cfg.Redmine.HostName == "" {
		return domainErrors.ErrHostNameMissing
	}
	return nil
}

func (f *RedmineSourceFactory) Name() string {
	return SourceName
}
