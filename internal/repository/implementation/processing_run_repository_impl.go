package implementation

import (
	"context"
	"errors"

	"docsync-be/internal/entity"
	"docsync-be/internal/mapper"
	"docsync-be/internal/model"
	"docsync-be/internal/repository/contract"
	"docsync-be/internal/repository/specification"

	"gorm.io/gorm"
)

type ProcessingRunRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ProcessingRunMapper
}

func NewProcessingRunRepository(db *gorm.DB) contract.ProcessingRunRepository {
	return &ProcessingRunRepositoryImpl{
		db:     db,
		mapper: mapper.NewProcessingRunMapper(),
	}
}

func (r *ProcessingRunRepositoryImpl) Create(ctx context.Context, run *entity.ProcessingRun) error {
	m, err := r.mapper.ToModel(run)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *ProcessingRunRepositoryImpl) Update(ctx context.Context, run *entity.ProcessingRun) error {
	m, err := r.mapper.ToModel(run)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Save(m).Error
}

func (r *ProcessingRunRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ProcessingRun, error) {
	var m model.ProcessingRun
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ProcessingRunRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ProcessingRun, error) {
	var models []*model.ProcessingRun
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}
