package service

import (
	"context"
	"time"

	"docsync-be/internal/constant"
	"docsync-be/internal/entity"
	"docsync-be/internal/pkg/logger"
	pkgEvents "docsync-be/pkg/events"
)

// EventPublisher is satisfied by *nats.Publisher.
type EventPublisher interface {
	Publish(ctx context.Context, event pkgEvents.Event) error
}

// ISyncEventService announces finished runs to other services.
type ISyncEventService interface {
	PublishSyncCompleted(ctx context.Context, run *entity.ProcessingRun)
	PublishSyncFailed(ctx context.Context, run *entity.ProcessingRun)
}

type syncEventService struct {
	publisher EventPublisher
	logger    logger.ILogger
}

// NewSyncEventService accepts a nil publisher, in which case nothing is sent.
func NewSyncEventService(publisher EventPublisher, logger logger.ILogger) ISyncEventService {
	return &syncEventService{
		publisher: publisher,
		logger:    logger,
	}
}

func (s *syncEventService) PublishSyncCompleted(ctx context.Context, run *entity.ProcessingRun) {
	s.publish(ctx, constant.EventDocumentSyncCompleted, run)
}

func (s *syncEventService) PublishSyncFailed(ctx context.Context, run *entity.ProcessingRun) {
	s.publish(ctx, constant.EventDocumentSyncFailed, run)
}

func (s *syncEventService) publish(ctx context.Context, eventType string, run *entity.ProcessingRun) {
	if s.publisher == nil || run == nil {
		return
	}

	now := time.Now()
	data := map[string]interface{}{
		"run_id":          run.Id.String(),
		"trigger":         run.Trigger,
		"query_mode":      run.QueryMode,
		"processed_count": run.ProcessedCount,
		"started_at":      run.StartedAt,
		"entity_type":     "processing_run",
		"entity_id":       run.Id.String(),
		"occurred_at":     now,
	}
	if run.Error != "" {
		data["error"] = run.Error
	}

	evt := pkgEvents.BaseEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: now,
	}

	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.logger.Error(constant.ModuleRunHistory, "Failed to publish "+eventType+" event", map[string]interface{}{"error": err.Error()})
	}
}
