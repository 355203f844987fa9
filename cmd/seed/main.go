package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"docsync-be/internal/dto"
	"docsync-be/pkg/elasticsearch"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// Seeds the search index with sample documents so a local worker has something to move.
func main() {
	count := flag.Int("count", 10, "number of documents to index")
	status := flag.String("status", "NEW", "status of the indexed documents")
	flag.Parse()

	// Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	index := os.Getenv("ES_DOCUMENT_QUERY_INDEX")
	if index == "" {
		log.Fatal("Error: ES_DOCUMENT_QUERY_INDEX is not set")
	}

	client, err := elasticsearch.NewClient(elasticsearch.ClientConfig{
		URIs:     envOr("ES_URIS", "http://localhost:9200"),
		Username: os.Getenv("ES_USERNAME"),
		Password: os.Getenv("ES_PASSWORD"),
	})
	if err != nil {
		log.Fatal("Error: ", err)
	}

	log.Printf("Seeding %d documents into %s...", *count, index)

	ctx := context.Background()
	now := time.Now().UTC()
	author := "seed"

	for i := 0; i < *count; i++ {
		source := dto.NewDocumentSource(
			fmt.Sprintf("Sample document %d", i+1),
			fmt.Sprintf("Seeded content for document %d.", i+1),
			now.Add(-time.Duration(i)*time.Hour),
		)
		source.Author = &author
		source.Status = *status
		source.Metadata = map[string]dto.MetadataValue{
			"seeded": {Kind: dto.MetadataBool, Bool: true},
			"batch":  {Kind: dto.MetadataString, String: now.Format(time.RFC3339)},
		}

		body, err := json.Marshal(source)
		if err != nil {
			log.Fatalf("Error: failed to encode document: %v", err)
		}

		id := uuid.NewString()
		res, err := client.Index(index, bytes.NewReader(body),
			client.Index.WithContext(ctx),
			client.Index.WithDocumentID(id),
			client.Index.WithRefresh("true"),
		)
		if err != nil {
			log.Fatalf("Error: failed to index %s: %v", id, err)
		}
		if res.IsError() {
			log.Fatalf("Error: failed to index %s: %s", id, res.String())
		}
		res.Body.Close()
	}

	log.Printf("✅ Success: indexed %d documents with status %s", *count, *status)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
