package mapper

import (
	"docsync-be/internal/entity"
	"docsync-be/internal/model"
)

type DocumentMapper struct{}

func NewDocumentMapper() *DocumentMapper {
	return &DocumentMapper{}
}

func (m *DocumentMapper) ToEntity(d *model.Document) *entity.Document {
	if d == nil {
		return nil
	}

	var id *int64
	if d.Id != 0 {
		v := d.Id
		id = &v
	}

	return &entity.Document{
		Id:            id,
		DocumentId:    d.DocumentId,
		Title:         d.Title,
		Content:       d.Content,
		Author:        d.Author,
		CreatedDate:   d.CreatedDate,
		ProcessedDate: d.ProcessedDate,
		Status:        d.Status,
	}
}

func (m *DocumentMapper) ToModel(d *entity.Document) *model.Document {
	if d == nil {
		return nil
	}

	var id int64
	if d.Id != nil {
		id = *d.Id
	}

	return &model.Document{
		Id:            id,
		DocumentId:    d.DocumentId,
		Title:         d.Title,
		Content:       d.Content,
		Author:        d.Author,
		CreatedDate:   d.CreatedDate,
		ProcessedDate: d.ProcessedDate,
		Status:        d.Status,
	}
}

func (m *DocumentMapper) ToEntities(docs []*model.Document) []*entity.Document {
	entities := make([]*entity.Document, len(docs))
	for i, d := range docs {
		entities[i] = m.ToEntity(d)
	}
	return entities
}
