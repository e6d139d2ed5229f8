package audit

import "time"

// Entry is one immutable record of a state transition. Entries are only
// ever inserted; nothing in the system updates or deletes them.
type Entry struct {
	ID         string    `gorm:"primaryKey" yaml:"id"`
	ActorID    string    `gorm:"index" yaml:"actor_id"`
	ActorKind  string    `yaml:"actor_kind"`
	EntityKind string    `gorm:"index:idx_audit_entity" yaml:"entity_kind"`
	EntityID   string    `gorm:"index:idx_audit_entity" yaml:"entity_id"`
	Field      string    `yaml:"field"`
	OldValue   string    `yaml:"old_value"`
	NewValue   string    `yaml:"new_value"`
	CreatedAt  time.Time `gorm:"index" yaml:"created_at"`
}

func (Entry) TableName() string {
	return "audit_entries"
}

const (
	EntityKindTask    = "task"
	EntityKindSession = "work_session"
)
