package service

import (
	"context"
	"fmt"
	"strings"

	repository "github.com/ds124wfegd/showcaller/internal/database/postgres"
	"github.com/ds124wfegd/showcaller/internal/entity"
)

// CreateGroupRequest creates a custom group, global when show_id is absent.
type CreateGroupRequest struct {
	Name   string `json:"name" binding:"required,min=1,max=255"`
	ShowID *int64 `json:"show_id,omitempty"`
}

type groupService struct {
	groupRepo repository.GroupRepository
	showRepo  repository.ShowRepository
	refresher Refresher
}

func NewGroupService(
	groupRepo repository.GroupRepository,
	showRepo repository.ShowRepository,
	refresher Refresher,
) GroupService {
	return &groupService{
		groupRepo: groupRepo,
		showRepo:  showRepo,
		refresher: refresher,
	}
}

func (s *groupService) CreateGroup(ctx context.Context, req *CreateGroupRequest) (*entity.Group, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: group name is required", entity.ErrInvalidInput)
	}

	if req.ShowID != nil {
		if _, err := s.showRepo.GetByID(ctx, *req.ShowID); err != nil {
			return nil, fmt.Errorf("failed to get show: %w", err)
		}
	}

	group := &entity.Group{
		Name:     name,
		IsCustom: 1,
		ShowID:   req.ShowID,
	}
	if err := s.groupRepo.Create(ctx, group); err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	refreshAfterWrite(ctx, s.refresher)
	return group, nil
}

func (s *groupService) GetAllGroups(ctx context.Context) ([]*entity.Group, error) {
	groups, err := s.groupRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get all groups: %w", err)
	}

	return groups, nil
}

func (s *groupService) GetShowGroups(ctx context.Context, showID int64) ([]*entity.Group, error) {
	if _, err := s.showRepo.GetByID(ctx, showID); err != nil {
		return nil, fmt.Errorf("failed to get show: %w", err)
	}

	groups, err := s.groupRepo.GetVisibleTo(ctx, showID)
	if err != nil {
		return nil, fmt.Errorf("failed to get show groups: %w", err)
	}

	return groups, nil
}

func (s *groupService) DeleteGroup(ctx context.Context, id int64) error {
	group, err := s.groupRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get group: %w", err)
	}
	if group.IsCustom == 0 {
		return entity.ErrDefaultGroupLocked
	}

	if err := s.groupRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}

	refreshAfterWrite(ctx, s.refresher)
	return nil
}
