package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sitesupply/procurement-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NumberSequenceRepository hands out monotonically increasing sequence
// numbers per scope/year. Request numbers are built from these, so a lost
// or duplicated sequence value would break the unique request_number
// constraint.
type NumberSequenceRepository struct {
	db *gorm.DB
}

func NewNumberSequenceRepository(db *gorm.DB) *NumberSequenceRepository {
	return &NumberSequenceRepository{db: db}
}

// NextNumber atomically increments and returns the sequence for a
// scope/year, creating the row on first use. The row is locked for the
// duration of the transaction; SQLite serializes writers anyway.
func (r *NumberSequenceRepository) NextNumber(ctx context.Context, scope string, year int) (int, error) {
	var next int

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var seq domain.NumberSequence
		result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("scope = ? AND year = ?", scope, year).
			First(&seq)

		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			seq = domain.NumberSequence{
				Scope:        scope,
				Year:         year,
				LastSequence: 1,
			}
			if err := tx.Create(&seq).Error; err != nil {
				return fmt.Errorf("failed to create number sequence: %w", err)
			}
			next = 1
			return nil
		}
		if result.Error != nil {
			return fmt.Errorf("failed to get number sequence: %w", result.Error)
		}

		next = seq.LastSequence + 1
		if err := tx.Model(&seq).Updates(map[string]interface{}{
			"last_sequence": next,
			"updated_at":    time.Now().UTC(),
		}).Error; err != nil {
			return fmt.Errorf("failed to update number sequence: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return next, nil
}

// CurrentSequence returns the last issued value without incrementing,
// or 0 when the scope/year has never issued a number.
func (r *NumberSequenceRepository) CurrentSequence(ctx context.Context, scope string, year int) (int, error) {
	var seq domain.NumberSequence
	result := r.db.WithContext(ctx).
		Where("scope = ? AND year = ?", scope, year).
		First(&seq)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if result.Error != nil {
		return 0, fmt.Errorf("failed to get number sequence: %w", result.Error)
	}
	return seq.LastSequence, nil
}
