package entity

import (
	"time"

	"github.com/sangkips/billing-api/internal/domain/enum"
)

// DocumentSequence is the per-(type, year) counter behind document numbers.
// LastNumber only ever increases.
type DocumentSequence struct {
	DocType    enum.DocumentType `gorm:"size:32;primaryKey"`
	Year       int               `gorm:"primaryKey;autoIncrement:false"`
	LastNumber int64             `gorm:"not null;default:0"`
	UpdatedAt  time.Time
}

// TableName returns the table name for DocumentSequence
func (DocumentSequence) TableName() string {
	return "document_sequences"
}
