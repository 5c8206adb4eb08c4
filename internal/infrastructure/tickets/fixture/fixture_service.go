package fixture

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	domainErrors "github.com/osgeoweblate/redmine-gtt-print/internal/errors"
	"github.com/osgeoweblate/redmine-gtt-print/internal/models"
	"github.com/osgeoweblate/redmine-gtt-print/internal/ports"
	"gopkg.in/yaml.v3"
)

type (
	// File is the on-disk layout of an issue fixture. Name tables are lists so
	// the same file can be written as YAML or JSON.
	File struct {
		Issue      *models.Issue `json:"issue"`
		Projects   []NamedEntry  `json:"projects"`
		Trackers   []NamedEntry  `json:"trackers"`
		Statuses   []NamedEntry  `json:"statuses"`
		Priorities []NamedEntry  `json:"priorities"`
		Users      []NamedEntry  `json:"users"`
	}

	NamedEntry struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}
)

// FixtureService serves one issue and its names from a local file, which
// lets documents be rendered without a running Redmine.
type FixtureService struct {
	issue *models.Issue
	names map[string]map[int]string
}

var _ ports.IssueRepository = (*FixtureService)(nil)

func LoadFile(path string) (*FixtureService, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domainErrors.ErrInvalidFixture.WithError(err).WithContext("path", path)
	}

	service, err := Parse(data)
	if err != nil {
		return nil, domainErrors.ErrInvalidFixture.WithError(err).WithContext("path", path)
	}
	return service, nil
}

// Parse reads a YAML or JSON fixture. YAML is decoded generically and then
// passed through encoding/json, so both formats share the JSON field names.
func Parse(data []byte) (*FixtureService, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("error parsing fixture: %w", err)
	}

	normalized, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("error normalizing fixture: %w", err)
	}

	var file File
	if err := json.Unmarshal(normalized, &file); err != nil {
		return nil, fmt.Errorf("error decoding fixture: %w", err)
	}

	return New(file)
}

func New(file File) (*FixtureService, error) {
	if file.Issue == nil {
		return nil, fmt.Errorf("fixture has no issue")
	}

	issue := file.Issue
	// Geodata without any position prints no map.
	if issue.Geodata != nil && len(issue.Geodata.Center) == 0 {
		issue.Geodata.Center = issue.Geodata.GeoJSON.Center()
		if issue.Geodata.Center == nil {
			issue.Geodata = nil
		}
	}

	return &FixtureService{
		issue: issue,
		names: map[string]map[int]string{
			"project":  index(file.Projects),
			"tracker":  index(file.Trackers),
			"status":   index(file.Statuses),
			"priority": index(file.Priorities),
			"user":     index(file.Users),
		},
	}, nil
}

func index(entries []NamedEntry) map[int]string {
	names := make(map[int]string, len(entries))
	for _, e := range entries {
		names[e.ID] = e.Name
	}
	return names
}

// IssueID returns the id of the issue held by the fixture.
func (s *FixtureService) IssueID() int {
	return s.issue.ID
}

func (s *FixtureService) GetIssue(_ context.Context, id int) (*models.Issue, error) {
	if id != s.issue.ID {
		return nil, domainErrors.ErrEntityNotFound.WithContext("entity", "issue").WithContext("id", id)
	}
	issue := *s.issue
	return &issue, nil
}

func (s *FixtureService) ProjectName(_ context.Context, id int) (string, error) {
	return s.lookup("project", id)
}

func (s *FixtureService) TrackerName(_ context.Context, id int) (string, error) {
	return s.lookup("tracker", id)
}

func (s *FixtureService) StatusName(_ context.Context, id int) (string, error) {
	return s.lookup("status", id)
}

func (s *FixtureService) PriorityName(_ context.Context, id int) (string, error) {
	return s.lookup("priority", id)
}

func (s *FixtureService) UserName(_ context.Context, id int) (string, error) {
	return s.lookup("user", id)
}

func (s *FixtureService) lookup(entity string, id int) (string, error) {
	name, ok := s.names[entity][id]
	if !ok {
		return "", domainErrors.ErrEntityNotFound.WithContext("entity", entity).WithContext("id", id)
	}
	return name, nil
}
