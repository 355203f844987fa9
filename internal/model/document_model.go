package model

import "time"

type Document struct {
	Id            int64     `gorm:"primaryKey;autoIncrement"`
	DocumentId    string    `gorm:"column:document_id;type:varchar(255);not null;index"`
	Title         string    `gorm:"type:text;not null"`
	Content       string    `gorm:"type:text;not null"`
	Author        *string   `gorm:"type:varchar(255)"`
	CreatedDate   time.Time `gorm:"column:created_date;not null;index"`
	ProcessedDate time.Time `gorm:"column:processed_date;not null"`
	Status        string    `gorm:"type:varchar(50);not null;index"`
}

func (Document) TableName() string {
	return "documents"
}
