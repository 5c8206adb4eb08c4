package models

import (
	"path/filepath"
	"strings"
	"time"
)

type (
	Issue struct {
		ID             int                `json:"id"`
		Subject        string             `json:"subject"`
		ProjectID      int                `json:"project_id"`
		TrackerID      int                `json:"tracker_id"`
		StatusID       int                `json:"status_id"`
		PriorityID     int                `json:"priority_id"`
		AuthorID       int                `json:"author_id"`
		AssignedToID   *int               `json:"assigned_to_id,omitempty"`
		Description    string             `json:"description"`
		IsPrivate      bool               `json:"is_private"`
		StartDate      *Date              `json:"start_date,omitempty"`
		ClosedOn       *time.Time         `json:"closed_on,omitempty"`
		CreatedOn      time.Time          `json:"created_on"`
		UpdatedOn      time.Time          `json:"updated_on"`
		EstimatedHours *float64           `json:"estimated_hours,omitempty"`
		LastNotes      *string            `json:"last_notes,omitempty"`
		CustomFields   []CustomFieldValue `json:"custom_fields,omitempty"`
		Attachments    []Attachment       `json:"attachments,omitempty"`
		Geodata        *Geodata           `json:"geodata,omitempty"`
	}

	// CustomFieldValue is a visible custom field of an issue. Value keeps
	// whatever the tracker returned (string, number or list).
	CustomFieldValue struct {
		Name  string `json:"name"`
		Value any    `json:"value"`
	}

	Attachment struct {
		ID          int    `json:"id"`
		Filename    string `json:"filename"`
		ContentType string `json:"content_type"`
	}

	// Geodata is the geometry attached to an issue, ready for printing.
	Geodata struct {
		Center  []float64 `json:"center"`
		GeoJSON GeoJSON   `json:"geojson"`
	}

	GeoJSON map[string]any
)

var imageExtensions = map[string]bool{
	".bmp":  true,
	".gif":  true,
	".jpg":  true,
	".jpe":  true,
	".jpeg": true,
	".png":  true,
}

// IsImage reports whether the attachment should be collected into an image
// slot. The content type wins; the filename is only consulted when the
// tracker did not send one.
func (a Attachment) IsImage() bool {
	if a.ContentType != "" {
		return strings.HasPrefix(strings.ToLower(a.ContentType), "image/")
	}
	return imageExtensions[strings.ToLower(filepath.Ext(a.Filename))]
}
