package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"docsync-be/internal/constant"
	"docsync-be/pkg/events"
	pktNats "docsync-be/pkg/nats"

	"github.com/joho/godotenv"
)

// Publishes a DOCUMENT_SYNC_REQUESTED event for running workers to pick up.
func main() {
	mode := flag.String("mode", constant.SyncModeNew, "new, recent or custom")
	hours := flag.Int("hours", 0, "look-back window for mode=recent (default 24)")
	query := flag.String("query", "", "raw search body for mode=custom")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	url := os.Getenv("NATS_URL")
	if url == "" {
		log.Fatal("Error: NATS_URL is not set")
	}

	publisher, err := pktNats.NewPublisher(url)
	if err != nil {
		log.Fatal("Error: ", err)
	}
	defer publisher.Close()

	requestedBy, _ := os.Hostname()
	evt := events.BaseEvent{
		Type: constant.EventDocumentSyncRequested,
		Data: map[string]interface{}{
			"mode":         *mode,
			"hours_back":   *hours,
			"query":        *query,
			"requested_by": "cli@" + requestedBy,
		},
		OccurredAt: time.Now(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := publisher.Publish(ctx, evt); err != nil {
		log.Fatal("Error: ", err)
	}
	log.Printf("✅ Sync request published (mode=%s)", *mode)
}
