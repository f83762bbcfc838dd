package repository

import (
	"context"

	"gorm.io/gorm"

	"admissions/internal/model"
)

// AnnouncementRepository defines announcement persistence operations.
type AnnouncementRepository interface {
	Create(ctx context.Context, announcement *model.Announcement) error
	ExistsByTitle(ctx context.Context, title string) (bool, error)
	ListAll(ctx context.Context) ([]model.Announcement, error)
	ListForAudience(ctx context.Context, audience model.RoleName) ([]model.Announcement, error)
}

type announcementRepository struct {
	db *gorm.DB
}

// NewAnnouncementRepository creates a new announcement repository.
func NewAnnouncementRepository(db *gorm.DB) AnnouncementRepository {
	return &announcementRepository{db: db}
}

func (r *announcementRepository) Create(ctx context.Context, announcement *model.Announcement) error {
	return r.db.WithContext(ctx).Create(announcement).Error
}

func (r *announcementRepository) ExistsByTitle(ctx context.Context, title string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Announcement{}).Where("title = ?", title).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListAll returns every announcement, newest first.
func (r *announcementRepository) ListAll(ctx context.Context) ([]model.Announcement, error) {
	var items []model.Announcement
	if err := r.db.WithContext(ctx).Order("published_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// ListForAudience returns announcements for everyone plus those targeted at
// audience, newest first.
func (r *announcementRepository) ListForAudience(ctx context.Context, audience model.RoleName) ([]model.Announcement, error) {
	var items []model.Announcement
	if err := r.db.WithContext(ctx).
		Where("audience = ? OR audience = ?", "", audience).
		Order("published_at DESC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
