package repository

import (
	"context"

	"github.com/ds124wfegd/showcaller/internal/entity"
)

type ShowRepository interface {
	Create(ctx context.Context, show *entity.Show) error
	GetByID(ctx context.Context, id int64) (*entity.Show, error)
	GetAll(ctx context.Context) ([]*entity.Show, error)
	Update(ctx context.Context, show *entity.Show) error
	Delete(ctx context.Context, id int64) error
}

type CallRepository interface {
	Create(ctx context.Context, call *entity.Call) error
	GetByID(ctx context.Context, id int64) (*entity.Call, error)
	GetAll(ctx context.Context) ([]*entity.Call, error)
	GetByShowID(ctx context.Context, showID int64) ([]*entity.Call, error)
	Update(ctx context.Context, call *entity.Call) error
	Delete(ctx context.Context, id int64) error
}

type GroupRepository interface {
	Create(ctx context.Context, group *entity.Group) error
	GetByID(ctx context.Context, id int64) (*entity.Group, error)
	GetAll(ctx context.Context) ([]*entity.Group, error)

	// Default groups plus the custom groups scoped to the show
	GetVisibleTo(ctx context.Context, showID int64) ([]*entity.Group, error)
	Delete(ctx context.Context, id int64) error
}
