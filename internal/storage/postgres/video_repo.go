package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"github.com/romariotrain/video-stream/internal/media/models"
)

const uniqueViolation = "23505"

type VideoRepo struct {
	db     *sqlx.DB
	outbox *OutboxRepo
}

func NewVideoRepo(db *sqlx.DB, outbox *OutboxRepo) *VideoRepo {
	return &VideoRepo{db: db, outbox: outbox}
}

// Create inserts the video and its events in one transaction.
func (r *VideoRepo) Create(ctx context.Context, v *models.Video, events ...models.DomainEvent) error {
	const q = `
		INSERT INTO videos (id, title, description, content_type, file_path, size, created_at)
		VALUES (:id, :title, :description, :content_type, :file_path, :size, :created_at)
	`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.NamedExecContext(ctx, q, v); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return models.ErrConflict
		}
		return fmt.Errorf("video create: %w", err)
	}

	for _, ev := range events {
		if err := r.outbox.Add(ctx, tx, ev); err != nil {
			return fmt.Errorf("add outbox: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (r *VideoRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Video, error) {
	const q = `
		SELECT id, title, description, content_type, file_path, size, created_at
		FROM videos
		WHERE id = $1
	`

	var v models.Video
	if err := r.db.GetContext(ctx, &v, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("video get by id: %w", err)
	}

	return &v, nil
}

func (r *VideoRepo) List(ctx context.Context) ([]models.Video, error) {
	const q = `
		SELECT id, title, description, content_type, file_path, size, created_at
		FROM videos
		ORDER BY created_at ASC, id ASC
	`

	videos := []models.Video{}
	if err := r.db.SelectContext(ctx, &videos, q); err != nil {
		return nil, fmt.Errorf("video list: %w", err)
	}
	return videos, nil
}
