package entity

import (
	"time"

	"github.com/google/uuid"
)

type ProcessingRun struct {
	Id             uuid.UUID
	Trigger        string
	QueryMode      string
	Query          map[string]interface{}
	Status         string
	ProcessedCount int
	Error          string
	StartedAt      time.Time
	FinishedAt     *time.Time
}
