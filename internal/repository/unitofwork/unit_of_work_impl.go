package unitofwork

import (
	"docsync-be/internal/repository/contract"
	"docsync-be/internal/repository/implementation"

	"gorm.io/gorm"
)

type UnitOfWorkImpl struct {
	db *gorm.DB
}

func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &UnitOfWorkImpl{
		db: db,
	}
}

// Repository Accessors

func (u *UnitOfWorkImpl) DocumentRepository() contract.DocumentRepository {
	return implementation.NewDocumentRepository(u.db)
}

func (u *UnitOfWorkImpl) ProcessingRunRepository() contract.ProcessingRunRepository {
	return implementation.NewProcessingRunRepository(u.db)
}
