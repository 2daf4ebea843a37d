package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ds124wfegd/showcaller/internal/entity"
)

type showRepository struct {
	db *sql.DB
}

func NewShowRepository(db *sql.DB) ShowRepository {
	return &showRepository{db: db}
}

func (r *showRepository) Create(ctx context.Context, show *entity.Show) error {
	query := `
		INSERT INTO shows (name, description, start_time, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	now := time.Now()
	show.CreatedAt, show.UpdatedAt = now, now

	err := r.db.QueryRowContext(ctx, query,
		show.Name,
		show.Description,
		show.StartTime,
		show.CreatedAt,
		show.UpdatedAt,
	).Scan(&show.ID)
	if err != nil {
		return fmt.Errorf("failed to create show: %w", err)
	}
	return nil
}

func (r *showRepository) GetByID(ctx context.Context, id int64) (*entity.Show, error) {
	query := `
		SELECT id, name, description, start_time, created_at, updated_at
		FROM shows
		WHERE id = $1
	`

	var show entity.Show
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&show.ID,
		&show.Name,
		&show.Description,
		&show.StartTime,
		&show.CreatedAt,
		&show.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrShowNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get show: %w", err)
	}

	return &show, nil
}

func (r *showRepository) GetAll(ctx context.Context) ([]*entity.Show, error) {
	query := `
		SELECT id, name, description, start_time, created_at, updated_at
		FROM shows
		ORDER BY start_time
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query shows: %w", err)
	}
	defer rows.Close()

	var shows []*entity.Show
	for rows.Next() {
		var show entity.Show
		err := rows.Scan(
			&show.ID,
			&show.Name,
			&show.Description,
			&show.StartTime,
			&show.CreatedAt,
			&show.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan show: %w", err)
		}
		shows = append(shows, &show)
	}

	return shows, rows.Err()
}

func (r *showRepository) Update(ctx context.Context, show *entity.Show) error {
	query := `
		UPDATE shows
		SET name = $1, description = $2, start_time = $3, updated_at = $4
		WHERE id = $5
	`

	show.UpdatedAt = time.Now()
	result, err := r.db.ExecContext(ctx, query,
		show.Name,
		show.Description,
		show.StartTime,
		show.UpdatedAt,
		show.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update show: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return entity.ErrShowNotFound
	}

	return nil
}

// Delete removes the show; its calls and custom groups go with it.
func (r *showRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM shows WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete show: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return entity.ErrShowNotFound
	}

	return nil
}
