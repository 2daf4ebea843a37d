package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ds124wfegd/showcaller/internal/entity"
)

type groupRepository struct {
	db *sql.DB
}

func NewGroupRepository(db *sql.DB) GroupRepository {
	return &groupRepository{db: db}
}

func scanGroup(row rowScanner) (*entity.Group, error) {
	var (
		group  entity.Group
		showID sql.NullInt64
	)
	if err := row.Scan(&group.ID, &group.Name, &group.IsCustom, &showID); err != nil {
		return nil, err
	}
	if showID.Valid {
		id := showID.Int64
		group.ShowID = &id
	}
	return &group, nil
}

func (r *groupRepository) Create(ctx context.Context, group *entity.Group) error {
	var showID sql.NullInt64
	if group.ShowID != nil {
		showID = sql.NullInt64{Int64: *group.ShowID, Valid: true}
	}

	err := r.db.QueryRowContext(ctx,
		`INSERT INTO groups (name, is_custom, show_id) VALUES ($1, $2, $3) RETURNING id`,
		group.Name, group.IsCustom, showID,
	).Scan(&group.ID)
	if err != nil {
		return fmt.Errorf("failed to create group: %w", err)
	}
	return nil
}

func (r *groupRepository) GetByID(ctx context.Context, id int64) (*entity.Group, error) {
	group, err := scanGroup(r.db.QueryRowContext(ctx,
		`SELECT id, name, is_custom, show_id FROM groups WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrGroupNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	return group, nil
}

func (r *groupRepository) GetAll(ctx context.Context) ([]*entity.Group, error) {
	return r.list(ctx, `SELECT id, name, is_custom, show_id FROM groups ORDER BY is_custom, id`)
}

func (r *groupRepository) GetVisibleTo(ctx context.Context, showID int64) ([]*entity.Group, error) {
	query := `
		SELECT id, name, is_custom, show_id
		FROM groups
		WHERE show_id IS NULL OR (is_custom = 1 AND show_id = $1)
		ORDER BY is_custom, id
	`
	return r.list(ctx, query, showID)
}

func (r *groupRepository) list(ctx context.Context, query string, args ...interface{}) ([]*entity.Group, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query groups: %w", err)
	}
	defer rows.Close()

	var groups []*entity.Group
	for rows.Next() {
		group, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, group)
	}

	return groups, rows.Err()
}

// Delete removes a custom group. Default groups are refused by the caller.
func (r *groupRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM groups WHERE id = $1 AND is_custom = 1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return entity.ErrGroupNotFound
	}

	return nil
}
