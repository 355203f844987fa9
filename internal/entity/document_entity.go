package entity

import "time"

// Document is the relational copy of a search document.
// Id stays nil until storage assigns it.
type Document struct {
	Id            *int64
	DocumentId    string
	Title         string
	Content       string
	Author        *string
	CreatedDate   time.Time
	ProcessedDate time.Time
	Status        string
}
