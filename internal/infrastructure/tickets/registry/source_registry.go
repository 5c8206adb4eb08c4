package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/osgeoweblate/redmine-gtt-print/internal/config"
	"github.com/osgeoweblate/redmine-gtt-print/internal/ports"
)

// IssueSourceFactory builds an issue repository of one kind.
type IssueSourceFactory interface {
	// CreateSource builds the repository. location is source specific, for
	// example the path of a fixture file; sources that need none ignore it.
	CreateSource(ctx context.Context, cfg *config.Config, location string) (ports.IssueRepository, error)

	ValidateConfig(cfg *config.Config) error

	Name() string
}

// SourceRegistry keeps the issue source factories by name.
type SourceRegistry struct {
	mu        sync.RWMutex
	factories map[string]IssueSourceFactory
}

func NewSourceRegistry() *SourceRegistry {
	return &SourceRegistry{
		factories: make(map[string]IssueSourceFactory),
	}
}

func (r *SourceRegistry) Register(name string, factory IssueSourceFactory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("issue source '%s' is already registered", name)
	}

	r.factories[name] = factory
	return nil
}

func (r *SourceRegistry) Get(name string) (IssueSourceFactory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, exists := r.factories[name]
	if !exists {
		return nil, fmt.Errorf("issue source '%s' is not registered", name)
	}

	return factory, nil
}

// List returns the registered names in alphabetical order.
func (r *SourceRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *SourceRegistry) IsRegistered(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.factories[name]
	return exists
}

// CreateSource validates the configuration for the named source and builds it.
func (r *SourceRegistry) CreateSource(ctx context.Context, name string, cfg *config.Config, location string) (ports.IssueRepository, error) {
	factory, err := r.Get(name)
	if err != nil {
		return nil, err
	}

	if err := factory.ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration for issue source %s: %w", name, err)
	}

	return factory.CreateSource(ctx, cfg, location)
}
