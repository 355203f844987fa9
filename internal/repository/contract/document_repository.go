package contract

import (
	"context"

	"docsync-be/internal/entity"
	"docsync-be/internal/repository/specification"
)

type DocumentRepository interface {
	Create(ctx context.Context, document *entity.Document) error
	Update(ctx context.Context, document *entity.Document) error
	// Upsert inserts or, when document_id already exists, overwrites that row in one statement.
	// It needs the unique index created by EnsureUniqueDocumentID.
	Upsert(ctx context.Context, document *entity.Document) error
	EnsureUniqueDocumentID(ctx context.Context) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
