package unitofwork

import (
	"docsync-be/internal/repository/contract"
)

// UnitOfWork hands out the repositories for one unit of work.
type UnitOfWork interface {
	DocumentRepository() contract.DocumentRepository
	ProcessingRunRepository() contract.ProcessingRunRepository
}
