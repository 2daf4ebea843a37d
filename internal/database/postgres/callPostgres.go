package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ds124wfegd/showcaller/internal/entity"
)

type callRepository struct {
	db *sql.DB
}

func NewCallRepository(db *sql.DB) CallRepository {
	return &callRepository{db: db}
}

const callColumns = `id, show_id, title, description, minutes_before, group_ids, send_notification`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCall(row rowScanner) (*entity.Call, error) {
	var call entity.Call
	err := row.Scan(
		&call.ID,
		&call.ShowID,
		&call.Title,
		&call.Description,
		&call.MinutesBefore,
		&call.GroupIDs,
		&call.SendNotification,
	)
	if err != nil {
		return nil, err
	}
	return &call, nil
}

func (r *callRepository) Create(ctx context.Context, call *entity.Call) error {
	query := `
		INSERT INTO calls (show_id, title, description, minutes_before, group_ids, send_notification)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := r.db.QueryRowContext(ctx, query,
		call.ShowID,
		call.Title,
		call.Description,
		call.MinutesBefore,
		call.GroupIDs,
		call.SendNotification,
	).Scan(&call.ID)
	if err != nil {
		return fmt.Errorf("failed to create call: %w", err)
	}
	return nil
}

func (r *callRepository) GetByID(ctx context.Context, id int64) (*entity.Call, error) {
	query := `SELECT ` + callColumns + ` FROM calls WHERE id = $1`

	call, err := scanCall(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrCallNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get call: %w", err)
	}
	return call, nil
}

func (r *callRepository) GetAll(ctx context.Context) ([]*entity.Call, error) {
	return r.list(ctx, `SELECT `+callColumns+` FROM calls ORDER BY show_id, minutes_before DESC`)
}

func (r *callRepository) GetByShowID(ctx context.Context, showID int64) ([]*entity.Call, error) {
	return r.list(ctx, `SELECT `+callColumns+` FROM calls WHERE show_id = $1 ORDER BY minutes_before DESC`, showID)
}

func (r *callRepository) list(ctx context.Context, query string, args ...interface{}) ([]*entity.Call, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query calls: %w", err)
	}
	defer rows.Close()

	var calls []*entity.Call
	for rows.Next() {
		call, err := scanCall(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan call: %w", err)
		}
		calls = append(calls, call)
	}

	return calls, rows.Err()
}

func (r *callRepository) Update(ctx context.Context, call *entity.Call) error {
	query := `
		UPDATE calls
		SET show_id = $1, title = $2, description = $3, minutes_before = $4,
			group_ids = $5, send_notification = $6
		WHERE id = $7
	`

	result, err := r.db.ExecContext(ctx, query,
		call.ShowID,
		call.Title,
		call.Description,
		call.MinutesBefore,
		call.GroupIDs,
		call.SendNotification,
		call.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update call: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return entity.ErrCallNotFound
	}

	return nil
}

func (r *callRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM calls WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete call: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return entity.ErrCallNotFound
	}

	return nil
}
