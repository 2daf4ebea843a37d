package service

import (
	"context"

	repository "github.com/ds124wfegd/showcaller/internal/database/postgres"
	"github.com/ds124wfegd/showcaller/internal/entity"
)

type ShowService interface {
	CreateShow(ctx context.Context, req *CreateShowRequest) (*entity.Show, error)
	GetShow(ctx context.Context, id int64) (*entity.Show, error)
	GetAllShows(ctx context.Context) ([]*entity.Show, error)
	UpdateShow(ctx context.Context, id int64, req *UpdateShowRequest) (*entity.Show, error)
	DeleteShow(ctx context.Context, id int64) error
}

type CallService interface {
	CreateCall(ctx context.Context, req *CreateCallRequest) (*entity.Call, error)
	GetCall(ctx context.Context, id int64) (*entity.Call, error)
	GetShowCalls(ctx context.Context, showID int64) ([]*entity.Call, error)
	UpdateCall(ctx context.Context, id int64, req *UpdateCallRequest) (*entity.Call, error)
	DeleteCall(ctx context.Context, id int64) error
}

type GroupService interface {
	CreateGroup(ctx context.Context, req *CreateGroupRequest) (*entity.Group, error)
	GetAllGroups(ctx context.Context) ([]*entity.Group, error)
	GetShowGroups(ctx context.Context, showID int64) ([]*entity.Group, error)
	DeleteGroup(ctx context.Context, id int64) error
}

// Refresher reloads whatever caches the data the services write.
type Refresher interface {
	Refresh(ctx context.Context) error
}

type Services struct {
	Shows  ShowService
	Calls  CallService
	Groups GroupService
}

func NewServices(
	showRepo repository.ShowRepository,
	callRepo repository.CallRepository,
	groupRepo repository.GroupRepository,
	refresher Refresher,
) *Services {
	return &Services{
		Shows:  NewShowService(showRepo, refresher),
		Calls:  NewCallService(callRepo, showRepo, groupRepo, refresher),
		Groups: NewGroupService(groupRepo, showRepo, refresher),
	}
}
