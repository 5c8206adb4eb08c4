package di

import (
	"context"
	"time"

	"github.com/osgeoweblate/redmine-gtt-print/internal/config"
	"github.com/osgeoweblate/redmine-gtt-print/internal/i18n"
	"github.com/osgeoweblate/redmine-gtt-print/internal/infrastructure/httpclient"
	"github.com/osgeoweblate/redmine-gtt-print/internal/infrastructure/mapfish"
	"github.com/osgeoweblate/redmine-gtt-print/internal/infrastructure/tickets/registry"
	"github.com/osgeoweblate/redmine-gtt-print/internal/logger"
	"github.com/osgeoweblate/redmine-gtt-print/internal/ports"
	"github.com/osgeoweblate/redmine-gtt-print/internal/services"
)

const printRequestTimeout = 60 * time.Second

// Container holds the application's dependencies.
type Container struct {
	config       *config.Config
	translations *i18n.Translations
	sources      *registry.SourceRegistry
	httpClient   httpclient.HTTPClient

	// lazy
	printClient *mapfish.PrintService
}

func NewContainer(cfg *config.Config, trans *i18n.Translations) *Container {
	return &Container{
		config:       cfg,
		translations: trans,
		sources:      registry.NewSourceRegistry(),
		httpClient:   httpclient.New(printRequestTimeout),
	}
}

// SetHTTPClient replaces the client used for the print server.
func (c *Container) SetHTTPClient(client httpclient.HTTPClient) {
	c.httpClient = client
	c.printClient = nil
}

func (c *Container) RegisterSource(name string, factory registry.IssueSourceFactory) error {
	return c.sources.Register(name, factory)
}

func (c *Container) GetSourceRegistry() *registry.SourceRegistry {
	return c.sources
}

func (c *Container) GetConfig() *config.Config {
	return c.config
}

func (c *Container) GetTranslations() *i18n.Translations {
	return c.translations
}

// IssueRepository builds the named issue source.
func (c *Container) IssueRepository(ctx context.Context, source, location string) (ports.IssueRepository, error) {
	return c.sources.CreateSource(ctx, source, c.config, location)
}

// GetPrintClient returns the print server client (lazy initialization).
func (c *Container) GetPrintClient() (*mapfish.PrintService, error) {
	if c.printClient != nil {
		return c.printClient, nil
	}

	client, err := mapfish.NewPrintService(c.config, c.httpClient)
	if err != nil {
		return nil, err
	}
	c.printClient = client
	return client, nil
}

// IssuePrintService wires the rendering pipeline on top of repo. A missing
// print server only disables submitting.
func (c *Container) IssuePrintService(ctx context.Context, repo ports.IssueRepository) *services.IssuePrintService {
	renderer := services.NewPrintDocumentService(repo, c.config, c.config.CustomFieldMappings(c.translations))

	var printer ports.PrintClient
	if client, err := c.GetPrintClient(); err != nil {
		logger.Debug(ctx, "print server not available", "error", err)
	} else {
		printer = client
	}

	return services.NewIssuePrintService(repo, renderer, printer, c.config.Print.DefaultLayout)
}
