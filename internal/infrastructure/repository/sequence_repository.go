package repository

import (
	"context"
	"time"

	"github.com/sangkips/billing-api/internal/domain/enum"
	domainRepo "github.com/sangkips/billing-api/internal/domain/repository"
	"gorm.io/gorm"
)

type sequenceRepository struct {
	db *gorm.DB
}

// NewSequenceRepository creates a new document sequence repository
func NewSequenceRepository(db *gorm.DB) domainRepo.SequenceRepository {
	return &sequenceRepository{db: db}
}

// Next increments the (docType, year) counter in a single upsert statement,
// so concurrent callers serialize on the sequence row.
func (r *sequenceRepository) Next(ctx context.Context, docType enum.DocumentType, year int) (int64, error) {
	var last int64
	err := conn(ctx, r.db).Raw(`
		INSERT INTO document_sequences (doc_type, year, last_number, updated_at)
		VALUES (?, ?, 1, ?)
		ON CONFLICT (doc_type, year)
		DO UPDATE SET last_number = document_sequences.last_number + 1, updated_at = excluded.updated_at
		RETURNING last_number`,
		docType, year, time.Now().UTC(),
	).Scan(&last).Error
	return last, err
}
