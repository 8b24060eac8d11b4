package model

// RecordSequence backs id allocation for one schema table. Next holds
// the last allocated id; allocation increments it inside the caller's
// transaction, so two concurrent creations serialize on the row instead
// of racing a max(id) scan.
type RecordSequence struct {
	Table string `gorm:"primaryKey;column:table_name"`
	Next  int64  `gorm:"not null"`
}

func (s *RecordSequence) TableName() string {
	return "record_sequences"
}
