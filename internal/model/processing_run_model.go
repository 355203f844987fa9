package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ProcessingRun struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Trigger        string    `gorm:"column:trigger_source;type:varchar(30);not null;index"`
	QueryMode      string    `gorm:"type:varchar(30);not null"`
	Query          datatypes.JSON
	Status         string    `gorm:"type:varchar(20);not null;index"`
	ProcessedCount int       `gorm:"not null;default:0"`
	Error          *string   `gorm:"type:text"`
	StartedAt      time.Time `gorm:"not null;index"`
	FinishedAt     *time.Time
}

func (ProcessingRun) TableName() string {
	return "processing_runs"
}
