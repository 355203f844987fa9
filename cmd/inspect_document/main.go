package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"docsync-be/internal/config"
	"docsync-be/internal/pkg/logger"
	"docsync-be/internal/repository/specification"
	"docsync-be/internal/repository/unitofwork"
	"docsync-be/internal/search"
	"docsync-be/pkg/database"
	"docsync-be/pkg/elasticsearch"

	"github.com/fatih/color"
)

// Shows a document as the search index holds it next to the rows stored for it.
func main() {
	if len(os.Args) < 2 {
		color.Red("Usage: inspect_document <document-id>")
		os.Exit(1)
	}
	documentID := os.Args[1]

	cfg := config.Load()
	ctx := context.Background()

	client, err := elasticsearch.NewClient(elasticsearch.ClientConfig{
		URIs:     cfg.Elasticsearch.URIs,
		Username: cfg.Elasticsearch.Username,
		Password: cfg.Elasticsearch.Password,
		Timeout:  cfg.Elasticsearch.Timeout,
	})
	if err != nil {
		log.Fatal("Error: ", err)
	}
	reader := search.NewDocumentReader(client, cfg.Elasticsearch.Index, cfg.Elasticsearch.QuerySize, logger.NewNop())

	color.Cyan("🔍 INSPECTING DOCUMENT: %s\n", documentID)

	color.Yellow("\n[SEARCH] %s", cfg.Elasticsearch.Index)
	if doc := reader.GetByID(ctx, documentID); doc != nil {
		prettyPrint(doc)
	} else {
		color.Red("Not found in the search index")
	}

	db, err := database.NewGormDB(database.GormConfig{
		Driver:   cfg.Database.Driver,
		DSN:      cfg.Database.Connection,
		LogLevel: "silent",
	})
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	color.Yellow("\n[STORAGE] documents")
	uow := unitofwork.NewRepositoryFactory(db).NewUnitOfWork(ctx)
	rows, err := uow.DocumentRepository().FindAll(ctx,
		specification.ByDocumentID{DocumentID: documentID},
		specification.OrderBy{Field: "processed_date"},
	)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	if len(rows) == 0 {
		color.Red("No stored rows")
		return
	}
	if len(rows) > 1 {
		color.Magenta("%d rows stored for this document (inserted more than once)", len(rows))
	}
	for _, row := range rows {
		prettyPrint(row)
	}
	color.Green("\nDone")
}

func prettyPrint(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", v)
		return
	}
	fmt.Println(string(b))
}
