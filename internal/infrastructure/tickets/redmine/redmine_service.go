package redmine

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/osgeoweblate/redmine-gtt-print/internal/config"
	domainErrors "github.com/osgeoweblate/redmine-gtt-print/internal/errors"
	"github.com/osgeoweblate/redmine-gtt-print/internal/infrastructure/cache"
	"github.com/osgeoweblate/redmine-gtt-print/internal/infrastructure/httpclient"
	"github.com/osgeoweblate/redmine-gtt-print/internal/logger"
	"github.com/osgeoweblate/redmine-gtt-print/internal/models"
	"github.com/osgeoweblate/redmine-gtt-print/internal/ports"
)

const apiKeyHeader = "X-Redmine-API-Key"

// RedmineService reads issues and names through the Redmine REST API.
type RedmineService struct {
	baseURL string
	apiKey  string
	client  httpclient.HTTPClient
	cache   *cache.Cache
	names   *knownNames
}

var _ ports.IssueRepository = (*RedmineService)(nil)

func NewRedmineService(cfg *config.Config, client httpclient.HTTPClient) *RedmineService {
	baseURL := cfg.Redmine.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("%s://%s", cfg.Redmine.Protocol, cfg.Redmine.HostName)
	}
	return &RedmineService{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  cfg.Redmine.APIKey,
		client:  client,
		names:   newKnownNames(),
	}
}

// WithCache keeps the tracker, status and priority lists in c. Those change
// rarely and are fetched once per printed issue otherwise.
func (s *RedmineService) WithCache(c *cache.Cache) *RedmineService {
	s.cache = c
	return s
}

type (
	namedRef struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}

	issueResponse struct {
		Issue issuePayload `json:"issue"`
	}

	issuePayload struct {
		ID             int                       `json:"id"`
		Subject        string                    `json:"subject"`
		Project        namedRef                  `json:"project"`
		Tracker        namedRef                  `json:"tracker"`
		Status         namedRef                  `json:"status"`
		Priority       namedRef                  `json:"priority"`
		Author         namedRef                  `json:"author"`
		AssignedTo     *namedRef                 `json:"assigned_to"`
		Description    string                    `json:"description"`
		IsPrivate      bool                      `json:"is_private"`
		StartDate      *models.Date              `json:"start_date"`
		ClosedOn       *time.Time                `json:"closed_on"`
		CreatedOn      time.Time                 `json:"created_on"`
		UpdatedOn      time.Time                 `json:"updated_on"`
		EstimatedHours *float64                  `json:"estimated_hours"`
		CustomFields   []models.CustomFieldValue `json:"custom_fields"`
		Attachments    []models.Attachment       `json:"attachments"`
		Journals       []journal                 `json:"journals"`
		GeoJSON        models.GeoJSON            `json:"geojson"`
	}

	journal struct {
		ID    int    `json:"id"`
		Notes string `json:"notes"`
	}
)

// GetIssue fetches an issue with its attachments and journals. Custom fields
// come back already filtered by the API key's visibility.
func (s *RedmineService) GetIssue(ctx context.Context, id int) (*models.Issue, error) {
	var resp issueResponse
	path := fmt.Sprintf("/issues/%d.json?include=attachments,journals", id)
	if err := s.getJSON(ctx, path, &resp); err != nil {
		return nil, withEntity(err, "issue", id)
	}

	p := resp.Issue
	issue := &models.Issue{
		ID:             p.ID,
		Subject:        p.Subject,
		ProjectID:      p.Project.ID,
		TrackerID:      p.Tracker.ID,
		StatusID:       p.Status.ID,
		PriorityID:     p.Priority.ID,
		AuthorID:       p.Author.ID,
		Description:    p.Description,
		IsPrivate:      p.IsPrivate,
		StartDate:      p.StartDate,
		ClosedOn:       p.ClosedOn,
		CreatedOn:      p.CreatedOn,
		UpdatedOn:      p.UpdatedOn,
		EstimatedHours: p.EstimatedHours,
		LastNotes:      lastNotes(p.Journals),
		CustomFields:   p.CustomFields,
		Attachments:    p.Attachments,
	}
	if p.AssignedTo != nil {
		assignee := p.AssignedTo.ID
		issue.AssignedToID = &assignee
	}
	if center := p.GeoJSON.Center(); center != nil {
		issue.Geodata = &models.Geodata{
			Center:  center,
			GeoJSON: p.GeoJSON,
		}
	}

	s.names.remember(entityProject, p.Project)
	s.names.remember(entityTracker, p.Tracker)
	s.names.remember(entityStatus, p.Status)
	s.names.remember(entityPriority, p.Priority)
	s.names.remember(entityUser, p.Author)
	if p.AssignedTo != nil {
		s.names.remember(entityUser, *p.AssignedTo)
	}

	logger.Debug(ctx, "fetched issue from redmine",
		"issue_id", id,
		"custom_fields", len(issue.CustomFields),
		"attachments", len(issue.Attachments),
		"geodata", issue.Geodata != nil)

	return issue, nil
}

// lastNotes mirrors Issue#last_notes: the newest journal that has notes.
func lastNotes(journals []journal) *string {
	for i := len(journals) - 1; i >= 0; i-- {
		if journals[i].Notes != "" {
			notes := journals[i].Notes
			return &notes
		}
	}
	return nil
}

func (s *RedmineService) ProjectName(ctx context.Context, id int) (string, error) {
	if name, ok := s.names.lookup(entityProject, id); ok {
		return name, nil
	}

	var resp struct {
		Project namedRef `json:"project"`
	}
	if err := s.getJSON(ctx, fmt.Sprintf("/projects/%d.json", id), &resp); err != nil {
		return "", withEntity(err, entityProject, id)
	}
	return resp.Project.Name, nil
}

func (s *RedmineService) TrackerName(ctx context.Context, id int) (string, error) {
	if name, ok := s.names.lookup(entityTracker, id); ok {
		return name, nil
	}
	return s.enumerationName(ctx, "/trackers.json", "trackers", entityTracker, id)
}

func (s *RedmineService) StatusName(ctx context.Context, id int) (string, error) {
	if name, ok := s.names.lookup(entityStatus, id); ok {
		return name, nil
	}
	return s.enumerationName(ctx, "/issue_statuses.json", "issue_statuses", entityStatus, id)
}

func (s *RedmineService) PriorityName(ctx context.Context, id int) (string, error) {
	if name, ok := s.names.lookup(entityPriority, id); ok {
		return name, nil
	}
	return s.enumerationName(ctx, "/enumerations/issue_priorities.json", "issue_priorities", entityPriority, id)
}

// UserName prefers the name the issue payload carried. /users/{id}.json
// answers 404 for locked users unless the key belongs to an admin.
// Otherwise users are formatted as "firstname lastname", Redmine's default.
func (s *RedmineService) UserName(ctx context.Context, id int) (string, error) {
	if name, ok := s.names.lookup(entityUser, id); ok {
		return name, nil
	}

	var resp struct {
		User struct {
			Login     string `json:"login"`
			Firstname string `json:"firstname"`
			Lastname  string `json:"lastname"`
		} `json:"user"`
	}
	if err := s.getJSON(ctx, fmt.Sprintf("/users/%d.json", id), &resp); err != nil {
		return "", withEntity(err, entityUser, id)
	}

	name := strings.TrimSpace(resp.User.Firstname + " " + resp.User.Lastname)
	if name == "" {
		name = resp.User.Login
	}
	return name, nil
}

// enumerationName looks id up in a list endpoint. A cached list that lacks
// the id is fetched again before giving up, so new entries show up before
// the cache expires.
func (s *RedmineService) enumerationName(ctx context.Context, path, field, entity string, id int) (string, error) {
	refs, cached, err := s.enumeration(ctx, path, field, false)
	if err != nil {
		return "", err
	}
	if name, ok := findName(refs, id); ok {
		return name, nil
	}

	if cached {
		logger.Debug(ctx, "cached redmine list misses id, refreshing", "path", path, "id", id)
		refs, _, err = s.enumeration(ctx, path, field, true)
		if err != nil {
			return "", err
		}
		if name, ok := findName(refs, id); ok {
			return name, nil
		}
	}

	return "", domainErrors.ErrEntityNotFound.WithContext("entity", entity).WithContext("id", id)
}

// enumeration returns the list under field and whether it came from the
// cache. refresh skips the cached copy and overwrites it.
func (s *RedmineService) enumeration(ctx context.Context, path, field string, refresh bool) ([]namedRef, bool, error) {
	var key string
	if s.cache != nil {
		key = s.cache.Key(s.baseURL, path)
		if !refresh {
			var refs []namedRef
			found, err := s.cache.Get(key, &refs)
			if err != nil {
				logger.Warn(ctx, "ignoring unreadable cache entry", "path", path, "error", err)
			}
			if found {
				logger.Debug(ctx, "redmine cache hit", "path", path)
				return refs, true, nil
			}
		}
	}

	var resp map[string]json.RawMessage
	if err := s.getJSON(ctx, path, &resp); err != nil {
		return nil, false, err
	}

	var refs []namedRef
	if raw, ok := resp[field]; ok {
		if err := json.Unmarshal(raw, &refs); err != nil {
			return nil, false, domainErrors.ErrTrackerRequest.
				WithError(fmt.Errorf("error decoding %s: %w", field, err)).
				WithContext("url", s.baseURL+path)
		}
	}

	if s.cache != nil {
		if err := s.cache.Set(key, refs); err != nil {
			logger.Warn(ctx, "could not cache redmine response", "path", path, "error", err)
		}
	}
	return refs, false, nil
}

func findName(refs []namedRef, id int) (string, bool) {
	for _, ref := range refs {
		if ref.ID == id {
			return ref.Name, true
		}
	}
	return "", false
}

func withEntity(err error, entity string, id int) error {
	if appErr, ok := err.(*domainErrors.AppError); ok && appErr.Type == domainErrors.TypeNotFound {
		return appErr.WithContext("entity", entity).WithContext("id", id)
	}
	return err
}

func (s *RedmineService) getJSON(ctx context.Context, path string, out interface{}) error {
	url := s.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domainErrors.ErrTrackerRequest.WithError(err)
	}

	req.Header.Set("Accept", "application/json")
	if s.apiKey != "" {
		req.Header.Set(apiKeyHeader, s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return domainErrors.ErrTrackerRequest.WithError(err).WithContext("url", url)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Warn(ctx, "error closing response body", "url", url, "error", err)
		}
	}()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return domainErrors.ErrEntityNotFound.WithContext("url", url)
	case http.StatusUnauthorized, http.StatusForbidden:
		return domainErrors.ErrTrackerUnauthorized.WithContext("url", url)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domainErrors.ErrTrackerRequest.
			WithError(fmt.Errorf("unexpected status: %s", resp.Status)).
			WithContext("url", url).
			WithContext("body", strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domainErrors.ErrTrackerRequest.WithError(fmt.Errorf("error decoding response: %w", err)).WithContext("url", url)
	}
	return nil
}

const (
	entityProject  = "project"
	entityTracker  = "tracker"
	entityStatus   = "status"
	entityPriority = "priority"
	entityUser     = "user"
)

// knownNames keeps the id/name pairs embedded in fetched issues. Each
// GetIssue overwrites the pairs it carries, so renames are picked up on the
// next fetch.
type knownNames struct {
	mu     sync.RWMutex
	byKind map[string]map[int]string
}

func newKnownNames() *knownNames {
	return &knownNames{byKind: make(map[string]map[int]string)}
}

func (k *knownNames) remember(kind string, ref namedRef) {
	if ref.ID == 0 || ref.Name == "" {
		return
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	if k.byKind[kind] == nil {
		k.byKind[kind] = make(map[int]string)
	}
	k.byKind[kind][ref.ID] = ref.Name
}

func (k *knownNames) lookup(kind string, id int) (string, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	name, ok := k.byKind[kind][id]
	return name, ok
}
