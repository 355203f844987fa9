package dto

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"docsync-be/internal/constant"
)

// SearchDocument is one hit returned by the search backend.
type SearchDocument struct {
	Id     string          `json:"_id"`
	Index  string          `json:"_index"`
	Score  *float64        `json:"_score"`
	Source *DocumentSource `json:"_source"`
}

// DocumentSource is the _source body of a hit. Title and content are required
// to be present; an empty string is a valid value. CreatedDate must hold a
// parseable timestamp.
type DocumentSource struct {
	Title       string                   `json:"title"`
	Content     string                   `json:"content"`
	Author      *string                  `json:"author,omitempty"`
	Status      string                   `json:"status"`
	CreatedDate *DateTime                `json:"created_date"`
	UpdatedDate *DateTime                `json:"updated_date,omitempty"`
	Metadata    map[string]MetadataValue `json:"metadata,omitempty"`

	hasTitle   bool
	hasContent bool
}

// UnmarshalJSON applies the NEW status when the field is absent and records
// which required fields were present.
func (s *DocumentSource) UnmarshalJSON(data []byte) error {
	type alias DocumentSource
	aux := struct {
		*alias
		Title   *string `json:"title"`
		Content *string `json:"content"`
	}{alias: &alias{Status: constant.DocumentStatusNew}}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*s = DocumentSource(*aux.alias)
	if aux.Title != nil {
		s.Title, s.hasTitle = *aux.Title, true
	}
	if aux.Content != nil {
		s.Content, s.hasContent = *aux.Content, true
	}
	return nil
}

// NewDocumentSource builds a source with every required field marked present.
func NewDocumentSource(title, content string, createdDate time.Time) DocumentSource {
	return DocumentSource{
		Title:       title,
		Content:     content,
		Status:      constant.DocumentStatusNew,
		CreatedDate: NewDateTime(createdDate),
		hasTitle:    true,
		hasContent:  true,
	}
}

// MissingFields lists the json names of required fields that are absent or null.
func (s DocumentSource) MissingFields() []string {
	var missing []string
	if !s.hasTitle {
		missing = append(missing, "title")
	}
	if !s.hasContent {
		missing = append(missing, "content")
	}
	if s.CreatedDate == nil || s.CreatedDate.IsZero() {
		missing = append(missing, "created_date")
	}
	return missing
}

// isoLocalDateTime is ISO-8601 extended local date-time, fraction trimmed when zero.
const isoLocalDateTime = "2006-01-02T15:04:05.999999999"

var dateTimeLayouts = []string{
	time.RFC3339Nano,
	isoLocalDateTime,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// DateTime accepts both zoned and zone-less timestamps. Zone-less values are read as UTC.
// An empty string leaves the zero time, which DocumentSource reports as missing.
type DateTime struct {
	time.Time
}

func NewDateTime(t time.Time) *DateTime {
	return &DateTime{Time: t}
}

func (d *DateTime) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "" || raw == "null" {
		return nil
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			d.Time = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("unsupported timestamp %q", raw)
}

func (d DateTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(FormatISODateTime(d.Time))
}

// FormatISODateTime renders t in UTC as ISO-8601 extended without zone designator.
func FormatISODateTime(t time.Time) string {
	return t.UTC().Format(isoLocalDateTime)
}
