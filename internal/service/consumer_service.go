package service

import (
	"context"
	"encoding/json"

	"docsync-be/internal/constant"
	"docsync-be/internal/dto"
	"docsync-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-playground/validator/v10"
)

// ISyncTrigger starts runs on demand. Each call reports whether a run was launched.
type ISyncTrigger interface {
	ProcessNewDocumentsOnRequest() bool
	ProcessRecentDocuments(hoursBack int) bool
	ProcessWithCustomQuery(queryJSON string) bool
}

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	trigger    ISyncTrigger
	validate   *validator.Validate
	logger     logger.ILogger
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	trigger ISyncTrigger,
	logger logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		trigger:    trigger,
		validate:   validator.New(),
		logger:     logger,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(msg)
		}
	}()

	return nil
}

// processMessage always acks. A request arriving while a run is active is dropped, not queued.
func (cs *consumerService) processMessage(msg *message.Message) {
	defer msg.Ack()

	var req dto.SyncRequestMessage
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		cs.logger.Error(constant.ModuleSyncRequest, "Failed to unmarshal sync request", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err,
		})
		return
	}
	if err := cs.validate.Struct(req); err != nil {
		cs.logger.Warn(constant.ModuleSyncRequest, "Rejected invalid sync request", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		return
	}

	var launched bool
	switch req.Mode {
	case constant.SyncModeNew:
		launched = cs.trigger.ProcessNewDocumentsOnRequest()
	case constant.SyncModeRecent:
		launched = cs.trigger.ProcessRecentDocuments(req.HoursBack)
	case constant.SyncModeCustom:
		launched = cs.trigger.ProcessWithCustomQuery(req.Query)
	}

	cs.logger.Info(constant.ModuleSyncRequest, "Handled sync request", map[string]interface{}{
		"message_id":   msg.UUID,
		"mode":         req.Mode,
		"requested_by": req.RequestedBy,
		"launched":     launched,
	})
}
