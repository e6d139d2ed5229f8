package override

import "time"

// Override is the per-(user, task) personal projection: a private sort
// position and a private "done for me" flag. It never rewrites the shared
// task fields it shadows; the one sanctioned bridge is the Review
// promotion in Service.SetPersonalDone.
type Override struct {
	UserID       string `gorm:"primaryKey"`
	TaskID       string `gorm:"primaryKey"`
	SortOrder    *float64
	PersonalDone bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Override) TableName() string {
	return "personal_task_overrides"
}
