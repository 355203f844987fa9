package scope

import "gorm.io/gorm"

func OrderByCreatedDateAsc(db *gorm.DB) *gorm.DB {
	return db.Order("created_date ASC")
}

func OrderByStartedDesc(db *gorm.DB) *gorm.DB {
	return db.Order("started_at DESC")
}
