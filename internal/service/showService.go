package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	repository "github.com/ds124wfegd/showcaller/internal/database/postgres"
	"github.com/ds124wfegd/showcaller/internal/entity"
)

// CreateShowRequest represents the data needed to create a show
type CreateShowRequest struct {
	Name        string    `json:"name" binding:"required,min=1,max=255"`
	Description string    `json:"description" binding:"max=1000"`
	StartTime   time.Time `json:"start_time" binding:"required"`
}

// UpdateShowRequest represents the data needed to update a show
type UpdateShowRequest struct {
	Name        *string    `json:"name,omitempty"`
	Description *string    `json:"description,omitempty"`
	StartTime   *time.Time `json:"start_time,omitempty"`
}

type showService struct {
	showRepo  repository.ShowRepository
	refresher Refresher
}

func NewShowService(showRepo repository.ShowRepository, refresher Refresher) ShowService {
	return &showService{
		showRepo:  showRepo,
		refresher: refresher,
	}
}

func (s *showService) CreateShow(ctx context.Context, req *CreateShowRequest) (*entity.Show, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: show name is required", entity.ErrInvalidInput)
	}
	if req.StartTime.IsZero() {
		return nil, fmt.Errorf("%w: start time is required", entity.ErrInvalidInput)
	}

	show := &entity.Show{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		StartTime:   req.StartTime,
	}

	if err := s.showRepo.Create(ctx, show); err != nil {
		return nil, fmt.Errorf("failed to create show: %w", err)
	}

	refreshAfterWrite(ctx, s.refresher)
	return show, nil
}

func (s *showService) GetShow(ctx context.Context, id int64) (*entity.Show, error) {
	show, err := s.showRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get show: %w", err)
	}

	return show, nil
}

func (s *showService) GetAllShows(ctx context.Context) ([]*entity.Show, error) {
	shows, err := s.showRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get all shows: %w", err)
	}

	return shows, nil
}

func (s *showService) UpdateShow(ctx context.Context, id int64, req *UpdateShowRequest) (*entity.Show, error) {
	show, err := s.showRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get existing show: %w", err)
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, fmt.Errorf("%w: show name is required", entity.ErrInvalidInput)
		}
		show.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		show.Description = *req.Description
	}
	if req.StartTime != nil {
		if req.StartTime.IsZero() {
			return nil, fmt.Errorf("%w: start time is required", entity.ErrInvalidInput)
		}
		show.StartTime = *req.StartTime
	}

	if err := s.showRepo.Update(ctx, show); err != nil {
		return nil, fmt.Errorf("failed to update show: %w", err)
	}

	refreshAfterWrite(ctx, s.refresher)
	return show, nil
}

func (s *showService) DeleteShow(ctx context.Context, id int64) error {
	if err := s.showRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete show: %w", err)
	}

	refreshAfterWrite(ctx, s.refresher)
	return nil
}
