package service

import (
	"context"
	"fmt"

	repository "github.com/ds124wfegd/showcaller/internal/database/postgres"
	"github.com/ds124wfegd/showcaller/internal/entity"
)

// CreateCallRequest represents the data needed to create a call.
// group_ids is accepted as an array or as a string holding one.
type CreateCallRequest struct {
	ShowID           int64             `json:"show_id" binding:"required"`
	Title            string            `json:"title" binding:"max=255"`
	Description      string            `json:"description" binding:"max=1000"`
	MinutesBefore    int               `json:"minutes_before" binding:"required"`
	GroupIDs         entity.GroupIDs   `json:"group_ids"`
	SendNotification entity.NotifyFlag `json:"send_notification"`
}

// UpdateCallRequest represents the data needed to update a call
type UpdateCallRequest struct {
	Title            *string            `json:"title,omitempty"`
	Description      *string            `json:"description,omitempty"`
	MinutesBefore    *int               `json:"minutes_before,omitempty"`
	GroupIDs         *entity.GroupIDs   `json:"group_ids,omitempty"`
	SendNotification *entity.NotifyFlag `json:"send_notification,omitempty"`
}

type callService struct {
	callRepo  repository.CallRepository
	showRepo  repository.ShowRepository
	groupRepo repository.GroupRepository
	refresher Refresher
}

func NewCallService(
	callRepo repository.CallRepository,
	showRepo repository.ShowRepository,
	groupRepo repository.GroupRepository,
	refresher Refresher,
) CallService {
	return &callService{
		callRepo:  callRepo,
		showRepo:  showRepo,
		groupRepo: groupRepo,
		refresher: refresher,
	}
}

func (s *callService) CreateCall(ctx context.Context, req *CreateCallRequest) (*entity.Call, error) {
	call := &entity.Call{
		ShowID:           req.ShowID,
		Title:            req.Title,
		Description:      req.Description,
		MinutesBefore:    req.MinutesBefore,
		GroupIDs:         req.GroupIDs,
		SendNotification: req.SendNotification,
	}

	if err := s.validate(ctx, call); err != nil {
		return nil, err
	}

	if err := s.callRepo.Create(ctx, call); err != nil {
		return nil, fmt.Errorf("failed to create call: %w", err)
	}

	refreshAfterWrite(ctx, s.refresher)
	return call, nil
}

func (s *callService) GetCall(ctx context.Context, id int64) (*entity.Call, error) {
	call, err := s.callRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get call: %w", err)
	}

	return call, nil
}

func (s *callService) GetShowCalls(ctx context.Context, showID int64) ([]*entity.Call, error) {
	if _, err := s.showRepo.GetByID(ctx, showID); err != nil {
		return nil, fmt.Errorf("failed to get show: %w", err)
	}

	calls, err := s.callRepo.GetByShowID(ctx, showID)
	if err != nil {
		return nil, fmt.Errorf("failed to get show calls: %w", err)
	}

	return calls, nil
}

func (s *callService) UpdateCall(ctx context.Context, id int64, req *UpdateCallRequest) (*entity.Call, error) {
	call, err := s.callRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get existing call: %w", err)
	}

	if req.Title != nil {
		call.Title = *req.Title
	}
	if req.Description != nil {
		call.Description = *req.Description
	}
	if req.MinutesBefore != nil {
		call.MinutesBefore = *req.MinutesBefore
	}
	if req.GroupIDs != nil {
		call.GroupIDs = *req.GroupIDs
	}
	if req.SendNotification != nil {
		call.SendNotification = *req.SendNotification
	}

	if err := s.validate(ctx, call); err != nil {
		return nil, err
	}

	if err := s.callRepo.Update(ctx, call); err != nil {
		return nil, fmt.Errorf("failed to update call: %w", err)
	}

	refreshAfterWrite(ctx, s.refresher)
	return call, nil
}

func (s *callService) DeleteCall(ctx context.Context, id int64) error {
	if err := s.callRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete call: %w", err)
	}

	refreshAfterWrite(ctx, s.refresher)
	return nil
}

// validate checks the offset range, that the show exists and that every
// targeted group is visible to it.
func (s *callService) validate(ctx context.Context, call *entity.Call) error {
	if call.MinutesBefore < entity.MinMinutesBefore || call.MinutesBefore > entity.MaxMinutesBefore {
		return fmt.Errorf("%w: got %d", entity.ErrInvalidMinutes, call.MinutesBefore)
	}

	if _, err := s.showRepo.GetByID(ctx, call.ShowID); err != nil {
		return fmt.Errorf("failed to get show: %w", err)
	}

	targets, err := call.GroupIDs.Targets()
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		return nil
	}

	visible, err := s.groupRepo.GetVisibleTo(ctx, call.ShowID)
	if err != nil {
		return fmt.Errorf("failed to get show groups: %w", err)
	}
	known := make(map[int64]bool, len(visible))
	for _, g := range visible {
		known[g.ID] = true
	}
	for _, id := range targets {
		if !known[id] {
			return fmt.Errorf("%w: group %d", entity.ErrUnknownGroup, id)
		}
	}
	return nil
}
