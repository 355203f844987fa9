package mapper

import (
	"time"

	"docsync-be/internal/dto"
	"docsync-be/internal/entity"
)

// SearchDocumentMapper turns a search hit into the row stored in the relational store.
// It is pure apart from reading the clock.
type SearchDocumentMapper struct {
	now func() time.Time
}

func NewSearchDocumentMapper() *SearchDocumentMapper {
	return &SearchDocumentMapper{now: time.Now}
}

// NewSearchDocumentMapperWithClock is used by tests to pin ProcessedDate.
func NewSearchDocumentMapperWithClock(now func() time.Time) *SearchDocumentMapper {
	return &SearchDocumentMapper{now: now}
}

// ToEntity expects a hit with a populated source; the reader drops the others.
func (m *SearchDocumentMapper) ToEntity(doc *dto.SearchDocument) *entity.Document {
	src := doc.Source

	var created time.Time
	if src.CreatedDate != nil {
		created = src.CreatedDate.Time
	}

	return &entity.Document{
		DocumentId:    doc.Id,
		Title:         src.Title,
		Content:       src.Content,
		Author:        src.Author,
		CreatedDate:   created,
		ProcessedDate: m.now(),
		Status:        src.Status,
	}
}
