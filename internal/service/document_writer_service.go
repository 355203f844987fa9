package service

import (
	"context"
	"fmt"

	"docsync-be/internal/constant"
	"docsync-be/internal/entity"
	"docsync-be/internal/pkg/logger"
	"docsync-be/internal/repository/specification"
	"docsync-be/internal/repository/unitofwork"
)

const (
	WriteModeInsert = "insert"
	WriteModeUpsert = "upsert"
)

type IDocumentWriterService interface {
	// Persist stores one document and returns it with its storage id assigned.
	Persist(ctx context.Context, document *entity.Document) (*entity.Document, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
}

type documentWriterService struct {
	uowFactory unitofwork.RepositoryFactory
	mode       string
}

// NewDocumentWriterService returns a writer in the given mode.
// insert appends a row per call; upsert keeps one row per document_id and
// creates the unique index it relies on.
func NewDocumentWriterService(
	ctx context.Context,
	uowFactory unitofwork.RepositoryFactory,
	mode string,
	logger logger.ILogger,
) (IDocumentWriterService, error) {
	switch mode {
	case "", WriteModeInsert:
		mode = WriteModeInsert
	case WriteModeUpsert:
		uow := uowFactory.NewUnitOfWork(ctx)
		if err := uow.DocumentRepository().EnsureUniqueDocumentID(ctx); err != nil {
			return nil, fmt.Errorf("failed to ensure unique document_id index for upsert mode: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown storage write mode %q", mode)
	}

	logger.Info(constant.ModuleStorageWriter, "Storage writer ready", map[string]interface{}{"mode": mode})
	return &documentWriterService{
		uowFactory: uowFactory,
		mode:       mode,
	}, nil
}

func (s *documentWriterService) Persist(ctx context.Context, document *entity.Document) (*entity.Document, error) {
	repo := s.uowFactory.NewUnitOfWork(ctx).DocumentRepository()

	if s.mode == WriteModeUpsert {
		if err := repo.Upsert(ctx, document); err != nil {
			return nil, fmt.Errorf("failed to upsert document %s: %w", document.DocumentId, err)
		}
		return document, nil
	}

	if err := repo.Create(ctx, document); err != nil {
		return nil, fmt.Errorf("failed to insert document %s: %w", document.DocumentId, err)
	}
	return document, nil
}

func (s *documentWriterService) CountByStatus(ctx context.Context, status string) (int64, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	count, err := uow.DocumentRepository().Count(ctx, specification.ByStatus{Status: status})
	if err != nil {
		return 0, fmt.Errorf("failed to count documents with status %s: %w", status, err)
	}
	return count, nil
}
