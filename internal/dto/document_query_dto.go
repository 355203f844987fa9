package dto

import "time"

type QueryMode string

const (
	QueryModeStatus       QueryMode = "status"
	QueryModeCreatedAfter QueryMode = "created_after"
	QueryModeRaw          QueryMode = "raw"
)

// DocumentQuery selects which source documents a run pulls.
// The concrete types below are the only implementations.
type DocumentQuery interface {
	Mode() QueryMode
	// Params is a loggable, JSON-friendly description of the query.
	Params() map[string]interface{}
}

// StatusQuery matches documents whose status equals Status exactly.
type StatusQuery struct {
	Status string
}

func (q StatusQuery) Mode() QueryMode { return QueryModeStatus }

func (q StatusQuery) Params() map[string]interface{} {
	return map[string]interface{}{"mode": q.Mode(), "status": q.Status}
}

// CreatedAfterQuery matches documents created strictly after After.
type CreatedAfterQuery struct {
	After time.Time
}

func (q CreatedAfterQuery) Mode() QueryMode { return QueryModeCreatedAfter }

func (q CreatedAfterQuery) Params() map[string]interface{} {
	return map[string]interface{}{"mode": q.Mode(), "created_after": FormatISODateTime(q.After)}
}

// RawQuery carries a backend-native search request body, sent as-is.
type RawQuery struct {
	JSON string
}

func (q RawQuery) Mode() QueryMode { return QueryModeRaw }

func (q RawQuery) Params() map[string]interface{} {
	return map[string]interface{}{"mode": q.Mode(), "query": q.JSON}
}
