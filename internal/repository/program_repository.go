package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"admissions/internal/model"
)

// ProgramRepository defines program persistence operations.
type ProgramRepository interface {
	ListOpen(ctx context.Context) ([]model.Program, error)
	Upsert(ctx context.Context, program *model.Program) error
}

type programRepository struct {
	db *gorm.DB
}

// NewProgramRepository creates a new program repository.
func NewProgramRepository(db *gorm.DB) ProgramRepository {
	return &programRepository{db: db}
}

// ListOpen returns open programs ordered by deadline.
func (r *programRepository) ListOpen(ctx context.Context) ([]model.Program, error) {
	var programs []model.Program
	if err := r.db.WithContext(ctx).
		Where("open = ?", true).
		Order("deadline ASC").
		Find(&programs).Error; err != nil {
		return nil, err
	}
	return programs, nil
}

// Upsert inserts program or updates the row with the same name.
func (r *programRepository) Upsert(ctx context.Context, program *model.Program) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"degree", "application_fee", "deadline", "open", "updated_at"}),
	}).Create(program).Error
}
