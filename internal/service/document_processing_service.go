package service

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"docsync-be/internal/constant"
	"docsync-be/internal/dto"
	"docsync-be/internal/mapper"
	"docsync-be/internal/pkg/logger"
	"docsync-be/internal/search"
	"docsync-be/pkg/flow"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// IDocumentProcessingService moves documents from the search index into storage.
// Each Process method returns a lazy sequence of the document ids it persisted, in
// source order. Nothing happens until the sequence is ranged, and the first error ends it.
type IDocumentProcessingService interface {
	ProcessDocumentsByStatus(ctx context.Context, status string) iter.Seq2[string, error]
	ProcessDocumentsCreatedAfter(ctx context.Context, after time.Time) iter.Seq2[string, error]
	ProcessDocumentsWithCustomQuery(ctx context.Context, queryJSON string) iter.Seq2[string, error]
	CountDocumentsByStatus(ctx context.Context, status string) (int64, error)
}

type documentProcessingService struct {
	reader      search.IDocumentReader
	transformer *mapper.SearchDocumentMapper
	writer      IDocumentWriterService
	logger      logger.ILogger
	tracer      trace.Tracer
}

func NewDocumentProcessingService(
	reader search.IDocumentReader,
	transformer *mapper.SearchDocumentMapper,
	writer IDocumentWriterService,
	logger logger.ILogger,
) IDocumentProcessingService {
	return &documentProcessingService{
		reader:      reader,
		transformer: transformer,
		writer:      writer,
		logger:      logger,
		tracer:      otel.Tracer("docsync-be/pipeline"),
	}
}

func (s *documentProcessingService) ProcessDocumentsByStatus(ctx context.Context, status string) iter.Seq2[string, error] {
	return s.process(ctx, dto.StatusQuery{Status: status})
}

func (s *documentProcessingService) ProcessDocumentsCreatedAfter(ctx context.Context, after time.Time) iter.Seq2[string, error] {
	return s.process(ctx, dto.CreatedAfterQuery{After: after})
}

func (s *documentProcessingService) ProcessDocumentsWithCustomQuery(ctx context.Context, queryJSON string) iter.Seq2[string, error] {
	return s.process(ctx, dto.RawQuery{JSON: queryJSON})
}

func (s *documentProcessingService) CountDocumentsByStatus(ctx context.Context, status string) (int64, error) {
	return s.writer.CountByStatus(ctx, status)
}

func (s *documentProcessingService) process(ctx context.Context, query dto.DocumentQuery) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		ctx, span := s.tracer.Start(ctx, "pipeline.run", trace.WithAttributes(
			attribute.String("pipeline.mode", string(query.Mode())),
		))
		defer span.End()

		processed := 0
		seq := s.pipeline(ctx, query)
		seq = flow.OnEach(seq, func(string) { processed++ })
		seq = flow.Catch(seq, func(err error) {
			span.RecordError(err)
			span.SetStatus(codes.Error, "pipeline failed")
		})

		seq(yield)
		span.SetAttributes(attribute.Int("pipeline.processed", processed))
	}
}

func (s *documentProcessingService) pipeline(ctx context.Context, query dto.DocumentQuery) iter.Seq2[string, error] {
	params := query.Params()

	persisted := flow.Map(s.reader.Stream(ctx, query), func(doc *dto.SearchDocument) (string, error) {
		saved, err := s.writer.Persist(ctx, s.transformer.ToEntity(doc))
		if err != nil {
			return "", fmt.Errorf("failed to persist document %s: %w", doc.Id, err)
		}
		return saved.DocumentId, nil
	})

	seq := flow.OnEach(persisted, func(id string) {
		s.logger.Debug(constant.ModulePipeline, "Processed document", map[string]interface{}{"document_id": id})
	})
	seq = flow.Every(seq, constant.ProgressLogInterval, func(count int) {
		s.logger.Info(constant.ModulePipeline, fmt.Sprintf("Processed %d documents so far", count), map[string]interface{}{"count": count})
	})
	seq = flow.OnStart(seq, func() {
		s.logger.Info(constant.ModulePipeline, "Starting document processing", params)
	})
	return flow.OnCompletion(seq, func(cause error) {
		switch {
		case cause == nil:
			s.logger.Info(constant.ModulePipeline, "Document processing completed successfully", params)
		case errors.Is(cause, flow.ErrStopped):
			s.logger.Info(constant.ModulePipeline, "Document processing stopped before the end of the stream", params)
		default:
			s.logger.Error(constant.ModulePipeline, "Document processing failed", map[string]interface{}{
				"query": params,
				"error": cause,
			})
		}
	})
}
