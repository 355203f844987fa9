package specification

import "gorm.io/gorm"

type ByRunStatus struct {
	Status string
}

func (s ByRunStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}

type ByTrigger struct {
	Trigger string
}

func (s ByTrigger) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("trigger_source = ?", s.Trigger)
}
