package contract

import (
	"context"

	"docsync-be/internal/entity"
	"docsync-be/internal/repository/specification"
)

type ProcessingRunRepository interface {
	Create(ctx context.Context, run *entity.ProcessingRun) error
	Update(ctx context.Context, run *entity.ProcessingRun) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ProcessingRun, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ProcessingRun, error)
}
