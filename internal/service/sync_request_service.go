package service

import (
	"context"
	"fmt"

	"docsync-be/internal/constant"
	"docsync-be/internal/dto"
	"docsync-be/internal/pkg/logger"
	pkgEvents "docsync-be/pkg/events"
	pktNats "docsync-be/pkg/nats"
)

// ISyncRequestService bridges sync requests arriving on NATS onto the in-process trigger topic.
type ISyncRequestService interface {
	Start(ctx context.Context) error
}

type syncRequestService struct {
	subscriber  *pktNats.Subscriber
	durableName string
	publisher   IPublisherService
	logger      logger.ILogger
}

func NewSyncRequestService(
	subscriber *pktNats.Subscriber,
	durableName string,
	publisher IPublisherService,
	logger logger.ILogger,
) ISyncRequestService {
	return &syncRequestService{
		subscriber:  subscriber,
		durableName: durableName,
		publisher:   publisher,
		logger:      logger,
	}
}

func (s *syncRequestService) Start(ctx context.Context) error {
	if s.subscriber == nil {
		s.logger.Warn(constant.ModuleSyncRequest, "NATS subscriber unavailable, sync requests disabled", nil)
		return nil
	}

	subject := pktNats.Subject(constant.EventDocumentSyncRequested)
	if err := s.subscriber.Subscribe(ctx, subject, s.durableName, s.handle); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", subject, err)
	}
	s.logger.Info(constant.ModuleSyncRequest, "Listening for sync requests", map[string]interface{}{"subject": subject})
	return nil
}

func (s *syncRequestService) handle(ctx context.Context, event pkgEvents.Event) error {
	var req dto.SyncRequestMessage
	if base, ok := event.(pkgEvents.BaseEvent); ok {
		req = dto.SyncRequestMessage{
			Mode:        base.String("mode"),
			HoursBack:   base.Int("hours_back"),
			Query:       base.String("query"),
			RequestedBy: base.String("requested_by"),
		}
	}

	s.logger.Debug(constant.ModuleSyncRequest, "Received sync request", map[string]interface{}{
		"mode":         req.Mode,
		"requested_by": req.RequestedBy,
	})
	return s.publisher.PublishSyncRequest(ctx, req)
}
