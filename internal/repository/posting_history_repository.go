package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/maheshrc27/autopost/internal/models"
)

type PostingHistoryRepository interface {
	CreateBatch(ctx context.Context, entries []*models.PostingHistory) error
	List(ctx context.Context, limit int) ([]*models.PostingHistory, error)
	StatsByPlatform(ctx context.Context) ([]*models.PlatformStats, error)
}

type postingHistoryRepository struct {
	db *sql.DB
}

func NewPostingHistoryRepository(db *sql.DB) PostingHistoryRepository {
	return &postingHistoryRepository{db: db}
}

// CreateBatch stores all entries of one publish attempt in a single
// transaction.
func (r *postingHistoryRepository) CreateBatch(ctx context.Context, entries []*models.PostingHistory) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO posting_history (
			batch_id,
			platform,
			post_type,
			success,
			simulated,
			state,
			post_id,
			caption,
			error_message
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`

	for _, e := range entries {
		err := tx.QueryRowContext(ctx, query,
			e.BatchID,
			e.Platform,
			e.PostType,
			e.Success,
			e.Simulated,
			e.State,
			e.PostID,
			e.Caption,
			e.ErrorMessage,
		).Scan(&e.ID, &e.CreatedAt)
		if err != nil {
			slog.Info(err.Error())
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postingHistoryRepository) List(ctx context.Context, limit int) ([]*models.PostingHistory, error) {
	query := `
		SELECT id, batch_id, platform, post_type, success, simulated, state, post_id, caption, error_message, created_at
		FROM posting_history
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var entries []*models.PostingHistory
	for rows.Next() {
		var e models.PostingHistory
		err := rows.Scan(&e.ID, &e.BatchID, &e.Platform, &e.PostType, &e.Success, &e.Simulated,
			&e.State, &e.PostID, &e.Caption, &e.ErrorMessage, &e.CreatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return entries, nil
}

func (r *postingHistoryRepository) StatsByPlatform(ctx context.Context) ([]*models.PlatformStats, error) {
	query := `
		SELECT
			platform,
			COUNT(*),
			COUNT(*) FILTER (WHERE success),
			COUNT(*) FILTER (WHERE simulated)
		FROM posting_history
		GROUP BY platform
		ORDER BY platform
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var stats []*models.PlatformStats
	for rows.Next() {
		var s models.PlatformStats
		if err := rows.Scan(&s.Platform, &s.Total, &s.Successful, &s.Simulated); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		s.Failed = s.Total - s.Successful
		stats = append(stats, &s)
	}

	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return stats, nil
}
