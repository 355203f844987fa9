package constant

const (
	DocumentStatusNew = "NEW"

	// Logger modules
	ModuleScheduler     = "Scheduler"
	ModulePipeline      = "Pipeline"
	ModuleSourceReader  = "SourceReader"
	ModuleStorageWriter = "StorageWriter"
	ModuleSyncRequest   = "SyncRequest"
	ModuleRunHistory    = "RunHistory"

	// Run triggers
	TriggerSchedule    = "schedule"
	TriggerManual      = "manual"
	TriggerRecent      = "recent"
	TriggerCustomQuery = "custom_query"

	// Processing run states
	RunStatusRunning   = "RUNNING"
	RunStatusCompleted = "COMPLETED"
	RunStatusFailed    = "FAILED"

	// Events
	EventDocumentSyncRequested = "DOCUMENT_SYNC_REQUESTED"
	EventDocumentSyncCompleted = "DOCUMENT_SYNC_COMPLETED"
	EventDocumentSyncFailed    = "DOCUMENT_SYNC_FAILED"

	// Sync request modes
	SyncModeNew    = "new"
	SyncModeRecent = "recent"
	SyncModeCustom = "custom"

	DefaultRecentHours   = 24
	ProgressLogInterval  = 100
	DocumentsSearchField = "status"
	CreatedDateField     = "created_date"
)
