package dto

import "time"

// SyncRequestMessage asks the worker to start a manual run.
// Mode is one of "new", "recent" or "custom".
type SyncRequestMessage struct {
	Mode        string `json:"mode" validate:"required,oneof=new recent custom"`
	HoursBack   int    `json:"hours_back,omitempty" validate:"gte=0"`
	Query       string `json:"query,omitempty" validate:"required_if=Mode custom"`
	RequestedBy string `json:"requested_by,omitempty"`
}

type DocumentStatsResponse struct {
	Status           string `json:"status"`
	Count            int64  `json:"count"`
	SchedulerRunning bool   `json:"scheduler_running"`
}

type ProcessingRunResponse struct {
	Id             string                 `json:"id"`
	Trigger        string                 `json:"trigger"`
	QueryMode      string                 `json:"query_mode"`
	Query          map[string]interface{} `json:"query"`
	Status         string                 `json:"status"`
	ProcessedCount int                    `json:"processed_count"`
	Error          string                 `json:"error,omitempty"`
	StartedAt      time.Time              `json:"started_at"`
	FinishedAt     *time.Time             `json:"finished_at,omitempty"`
}
