package service

import (
	"context"
	"fmt"

	"admissions/internal/model"
	"admissions/internal/repository"
)

// AnnouncementService lists announcements by audience.
type AnnouncementService interface {
	ListFor(ctx context.Context, role model.RoleName) ([]model.Announcement, error)
	Publish(ctx context.Context, announcement *model.Announcement) (bool, error)
}

type announcementService struct {
	repo repository.AnnouncementRepository
}

// NewAnnouncementService creates a new announcement service.
func NewAnnouncementService(repo repository.AnnouncementRepository) AnnouncementService {
	return &announcementService{repo: repo}
}

// ListFor returns what role may read: staff see everything, others see the
// announcements for everyone plus those targeted at their role.
func (s *announcementService) ListFor(ctx context.Context, role model.RoleName) ([]model.Announcement, error) {
	var (
		items []model.Announcement
		err   error
	)
	if role.IsStaff() {
		items, err = s.repo.ListAll(ctx)
	} else {
		items, err = s.repo.ListForAudience(ctx, role)
	}
	if err != nil {
		return nil, fmt.Errorf("list announcements: %w", err)
	}
	if items == nil {
		items = []model.Announcement{}
	}
	return items, nil
}

// Publish creates announcement unless one with the same title exists. It
// reports whether a row was written.
func (s *announcementService) Publish(ctx context.Context, announcement *model.Announcement) (bool, error) {
	exists, err := s.repo.ExistsByTitle(ctx, announcement.Title)
	if err != nil {
		return false, fmt.Errorf("check announcement: %w", err)
	}
	if exists {
		return false, nil
	}
	if err := s.repo.Create(ctx, announcement); err != nil {
		return false, fmt.Errorf("create announcement: %w", err)
	}
	return true, nil
}
