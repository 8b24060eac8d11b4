package model

import "time"

// ViewEvent records a read access to a record. The rows feed the recent
// activity listing and are pruned by the event cleaner; unlike record
// versions they are not history and may be deleted.
type ViewEvent struct {
	ID             int64     `gorm:"primaryKey" json:"id"`
	ActorID        int64     `gorm:"index" json:"actor_id"`
	RequestedTable string    `gorm:"not null;index" json:"requested_table"`
	RequestedID    int64     `gorm:"not null" json:"requested_id"`
	CreatedAt      time.Time `json:"created_at"`
}

func (e *ViewEvent) TableName() string {
	return "view_events"
}
