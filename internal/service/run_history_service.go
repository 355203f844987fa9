package service

import (
	"context"
	"time"

	"docsync-be/internal/constant"
	"docsync-be/internal/dto"
	"docsync-be/internal/entity"
	"docsync-be/internal/mapper"
	"docsync-be/internal/pkg/logger"
	"docsync-be/internal/repository/scope"
	"docsync-be/internal/repository/specification"
	"docsync-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// IRunHistoryService records processing runs. Recording is best effort:
// storage failures are logged and never reach the run itself.
type IRunHistoryService interface {
	Start(ctx context.Context, trigger string, query dto.DocumentQuery) *entity.ProcessingRun
	Finish(ctx context.Context, run *entity.ProcessingRun, processed int, runErr error)
	Recent(ctx context.Context, limit int) ([]dto.ProcessingRunResponse, error)
}

type runHistoryService struct {
	uowFactory unitofwork.RepositoryFactory
	events     ISyncEventService
	mapper     *mapper.ProcessingRunMapper
	logger     logger.ILogger
}

func NewRunHistoryService(
	uowFactory unitofwork.RepositoryFactory,
	events ISyncEventService,
	logger logger.ILogger,
) IRunHistoryService {
	return &runHistoryService{
		uowFactory: uowFactory,
		events:     events,
		mapper:     mapper.NewProcessingRunMapper(),
		logger:     logger,
	}
}

func (s *runHistoryService) Start(ctx context.Context, trigger string, query dto.DocumentQuery) *entity.ProcessingRun {
	run := &entity.ProcessingRun{
		Id:        uuid.New(),
		Trigger:   trigger,
		QueryMode: string(query.Mode()),
		Query:     query.Params(),
		Status:    constant.RunStatusRunning,
		StartedAt: time.Now().UTC(),
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ProcessingRunRepository().Create(ctx, run); err != nil {
		s.logger.Warn(constant.ModuleRunHistory, "Failed to record run start", map[string]interface{}{
			"run_id": run.Id.String(),
			"error":  err.Error(),
		})
	}
	return run
}

func (s *runHistoryService) Finish(ctx context.Context, run *entity.ProcessingRun, processed int, runErr error) {
	finished := time.Now().UTC()
	run.ProcessedCount = processed
	run.FinishedAt = &finished
	run.Status = constant.RunStatusCompleted
	if runErr != nil {
		run.Status = constant.RunStatusFailed
		run.Error = runErr.Error()
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ProcessingRunRepository().Update(ctx, run); err != nil {
		s.logger.Warn(constant.ModuleRunHistory, "Failed to record run result", map[string]interface{}{
			"run_id": run.Id.String(),
			"error":  err.Error(),
		})
	}

	if runErr != nil {
		s.events.PublishSyncFailed(ctx, run)
		return
	}
	s.events.PublishSyncCompleted(ctx, run)
}

func (s *runHistoryService) Recent(ctx context.Context, limit int) ([]dto.ProcessingRunResponse, error) {
	if limit <= 0 {
		limit = 20
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	runs, err := uow.ProcessingRunRepository().FindAll(ctx,
		specification.Scoped(scope.OrderByStartedDesc),
		specification.Pagination{Limit: limit},
	)
	if err != nil {
		return nil, err
	}

	result := make([]dto.ProcessingRunResponse, 0, len(runs))
	for _, run := range runs {
		result = append(result, s.mapper.ToResponse(run))
	}
	return result, nil
}
