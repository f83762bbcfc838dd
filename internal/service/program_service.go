package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"admissions/internal/cache"
	"admissions/internal/model"
	"admissions/internal/repository"
)

const programsCacheKey = "programs:open"

// ProgramService lists study programmes.
type ProgramService interface {
	ListOpen(ctx context.Context) ([]model.Program, error)
	Save(ctx context.Context, programs []model.Program) (int, error)
}

type programService struct {
	repo  repository.ProgramRepository
	cache *cache.Client
	ttl   time.Duration
}

// NewProgramService creates a new program service. A zero ttl disables caching.
func NewProgramService(repo repository.ProgramRepository, cache *cache.Client, ttl time.Duration) ProgramService {
	return &programService{
		repo:  repo,
		cache: cache,
		ttl:   ttl,
	}
}

// ListOpen returns open programs, served from Redis when possible.
func (s *programService) ListOpen(ctx context.Context) ([]model.Program, error) {
	if s.ttl > 0 {
		if data, _ := s.cache.Get(ctx, programsCacheKey); data != nil {
			var cached []model.Program
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached, nil
			}
		}
	}

	programs, err := s.repo.ListOpen(ctx)
	if err != nil {
		return nil, fmt.Errorf("list programs: %w", err)
	}
	if programs == nil {
		programs = []model.Program{}
	}

	if s.ttl > 0 {
		if payload, err := json.Marshal(programs); err == nil {
			_ = s.cache.Set(ctx, programsCacheKey, payload, s.ttl)
		}
	}
	return programs, nil
}

// Save upserts programs by name and invalidates the cached list.
func (s *programService) Save(ctx context.Context, programs []model.Program) (int, error) {
	count := 0
	for i := range programs {
		if err := s.repo.Upsert(ctx, &programs[i]); err != nil {
			return count, fmt.Errorf("save program %s: %w", programs[i].Name, err)
		}
		count++
	}
	_ = s.cache.Delete(ctx, programsCacheKey)
	return count, nil
}
