package integration

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"docsync-be/internal/constant"
	"docsync-be/internal/dto"
	"docsync-be/internal/entity"
	"docsync-be/internal/model"
	"docsync-be/internal/pkg/logger"
	"docsync-be/internal/repository/specification"
	"docsync-be/internal/repository/unitofwork"
	"docsync-be/internal/service"
	"docsync-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	require.NoError(t, err, "Failed to connect to DB")
	require.NoError(t, gormDB.AutoMigrate(&model.Document{}, &model.ProcessingRun{}))

	ctx := context.Background()
	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(ctx)

	// Basic Ping
	sqlDB, _ := gormDB.DB()
	assert.NoError(t, sqlDB.Ping())

	t.Run("Check Document Repository", func(t *testing.T) {
		count, err := uow.DocumentRepository().Count(ctx)
		assert.NoError(t, err)
		t.Logf("Document count: %d", count)
	})

	t.Run("Upsert Writer Keeps One Row", func(t *testing.T) {
		writer, err := service.NewDocumentWriterService(ctx, uowFactory, service.WriteModeUpsert, logger.NewNop())
		require.NoError(t, err)

		documentId := "integration-" + uuid.NewString()
		defer gormDB.Where("document_id = ?", documentId).Delete(&model.Document{})

		for _, title := range []string{"first", "second"} {
			_, err := writer.Persist(ctx, &entity.Document{
				DocumentId:    documentId,
				Title:         title,
				Content:       "integration content",
				CreatedDate:   time.Now().UTC(),
				ProcessedDate: time.Now().UTC(),
				Status:        constant.DocumentStatusNew,
			})
			require.NoError(t, err)
		}

		docs, err := uow.DocumentRepository().FindAll(ctx, specification.ByDocumentID{DocumentID: documentId})
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "second", docs[0].Title)
	})

	t.Run("Run History Round Trip", func(t *testing.T) {
		nop := logger.NewNop()
		history := service.NewRunHistoryService(uowFactory, service.NewSyncEventService(nil, nop), nop)

		run := history.Start(ctx, constant.TriggerSchedule, dto.StatusQuery{Status: constant.DocumentStatusNew})
		defer gormDB.Delete(&model.ProcessingRun{}, "id = ?", run.Id)
		history.Finish(ctx, run, 0, nil)

		stored, err := uow.ProcessingRunRepository().FindOne(ctx, specification.ByID{ID: run.Id})
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, constant.RunStatusCompleted, stored.Status)
	})
}
