package fixture

import (
	"context"
	"errors"

	"github.com/osgeoweblate/redmine-gtt-print/internal/config"
	domainErrors "github.com/osgeoweblate/redmine-gtt-print/internal/errors"
	"github.com/osgeoweblate/redmine-gtt-print/internal/ports"
)

const SourceName = "fixture"

// FixtureSourceFactory builds issue sources from local files.
type FixtureSourceFactory struct{}

func NewFixtureSourceFactory() *FixtureSourceFactory {
	return &FixtureSourceFactory{}
}

func (f *FixtureSourceFactory) CreateSource(_ context.Context, _ *config.Config, location string) (ports.IssueRepository, error) {
	if location == "" {
		return nil, domainErrors.ErrInvalidFixture.WithError(errors.New("no file given"))
	}
	source, err := LoadFile(location)
	if err != nil {
		return nil, err
	}
	return source, nil
}

func (f *FixtureSourceFactory) ValidateConfig(_ *config.Config) error {
	return nil
}

func (f *FixtureSourceFactory) Name() string {
	return SourceName
}
