package mapper

import (
	"encoding/json"

	"docsync-be/internal/dto"
	"docsync-be/internal/entity"
	"docsync-be/internal/model"

	"gorm.io/datatypes"
)

type ProcessingRunMapper struct{}

func NewProcessingRunMapper() *ProcessingRunMapper {
	return &ProcessingRunMapper{}
}

func (m *ProcessingRunMapper) ToEntity(r *model.ProcessingRun) *entity.ProcessingRun {
	if r == nil {
		return nil
	}

	var query map[string]interface{}
	if len(r.Query) > 0 {
		// Unreadable payloads are left empty, history is informational
		_ = json.Unmarshal(r.Query, &query)
	}

	var runErr string
	if r.Error != nil {
		runErr = *r.Error
	}

	return &entity.ProcessingRun{
		Id:             r.Id,
		Trigger:        r.Trigger,
		QueryMode:      r.QueryMode,
		Query:          query,
		Status:         r.Status,
		ProcessedCount: r.ProcessedCount,
		Error:          runErr,
		StartedAt:      r.StartedAt,
		FinishedAt:     r.FinishedAt,
	}
}

func (m *ProcessingRunMapper) ToModel(r *entity.ProcessingRun) (*model.ProcessingRun, error) {
	if r == nil {
		return nil, nil
	}

	var query datatypes.JSON
	if r.Query != nil {
		raw, err := json.Marshal(r.Query)
		if err != nil {
			return nil, err
		}
		query = datatypes.JSON(raw)
	}

	var runErr *string
	if r.Error != "" {
		e := r.Error
		runErr = &e
	}

	return &model.ProcessingRun{
		Id:             r.Id,
		Trigger:        r.Trigger,
		QueryMode:      r.QueryMode,
		Query:          query,
		Status:         r.Status,
		ProcessedCount: r.ProcessedCount,
		Error:          runErr,
		StartedAt:      r.StartedAt,
		FinishedAt:     r.FinishedAt,
	}, nil
}

func (m *ProcessingRunMapper) ToEntities(runs []*model.ProcessingRun) []*entity.ProcessingRun {
	entities := make([]*entity.ProcessingRun, len(runs))
	for i, r := range runs {
		entities[i] = m.ToEntity(r)
	}
	return entities
}

func (m *ProcessingRunMapper) ToResponse(r *entity.ProcessingRun) dto.ProcessingRunResponse {
	return dto.ProcessingRunResponse{
		Id:             r.Id.String(),
		Trigger:        r.Trigger,
		QueryMode:      r.QueryMode,
		Query:          r.Query,
		Status:         r.Status,
		ProcessedCount: r.ProcessedCount,
		Error:          r.Error,
		StartedAt:      r.StartedAt,
		FinishedAt:     r.FinishedAt,
	}
}
