package pushsubscription

import "time"

type Subscription struct {
	ID        string `gorm:"primaryKey"`
	UserID    string `gorm:"index"`
	Endpoint  string `gorm:"uniqueIndex"`
	P256dhKey string
	AuthKey   string
	CreatedAt time.Time
}

func (Subscription) TableName() string {
	return "push_subscriptions"
}
