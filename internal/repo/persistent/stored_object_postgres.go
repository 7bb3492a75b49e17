package persistent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/andreyxaxa/image-uploader/internal/entity"
	"github.com/andreyxaxa/image-uploader/pkg/postgres"
	"github.com/andreyxaxa/image-uploader/pkg/types/errs"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	// Table
	uploadsTable = "uploads"

	// Columns
	idColumn           = "id"
	keyColumn          = "object_key"
	urlColumn          = "url"
	thumbnailKeyColumn = "thumbnail_key"
	originalNameColumn = "original_name"
	contentTypeColumn  = "content_type"
	sizeColumn         = "size"
	statusColumn       = "status"
	createdAtColumn    = "created_at"
	processedAtColumn  = "processed_at"
)

// StoredObjectRepo is the upload ledger: one row per object written to the
// bucket.
type StoredObjectRepo struct {
	*postgres.Postgres
}

func NewStoredObjectRepo(pg *postgres.Postgres) *StoredObjectRepo {
	return &StoredObjectRepo{pg}
}

func (r *StoredObjectRepo) Create(ctx context.Context, obj *entity.StoredObject) error {
	sql, args, err := r.Builder.
		Insert(uploadsTable).
		Columns(
			idColumn,
			keyColumn,
			urlColumn,
			originalNameColumn,
			contentTypeColumn,
			sizeColumn,
			statusColumn,
			createdAtColumn,
		).
		Values(
			obj.ID,
			obj.Key,
			obj.URL,
			obj.OriginalName,
			obj.ContentType,
			obj.Size,
			obj.Status,
			obj.CreatedAt,
		).ToSql()
	if err != nil {
		return fmt.Errorf("StoredObjectRepo - Create - r.Builder.ToSql: %w", err)
	}

	// Pool / Tx
	executor := r.GetExecutor(ctx)

	_, err = executor.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("StoredObjectRepo - Create - executor.Exec: %w", err)
	}

	return nil
}

func (r *StoredObjectRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.StoredObject, error) {
	sql, args, err := r.Builder.
		Select(
			idColumn,
			keyColumn,
			urlColumn,
			thumbnailKeyColumn,
			originalNameColumn,
			contentTypeColumn,
			sizeColumn,
			statusColumn,
			createdAtColumn,
			processedAtColumn,
		).
		From(uploadsTable).
		Where(squirrel.Eq{idColumn: id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("StoredObjectRepo - GetByID - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	var obj entity.StoredObject
	err = executor.QueryRow(ctx, sql, args...).Scan(
		&obj.ID,
		&obj.Key,
		&obj.URL,
		&obj.ThumbnailKey,
		&obj.OriginalName,
		&obj.ContentType,
		&obj.Size,
		&obj.Status,
		&obj.CreatedAt,
		&obj.ProcessedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("StoredObjectRepo - GetByID: %w", errs.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("StoredObjectRepo - GetByID - executor.QueryRow: %w", err)
	}

	return &obj, nil
}

func (r *StoredObjectRepo) MarkProcessed(ctx context.Context, id uuid.UUID, thumbnailKey string, at time.Time) error {
	sql, args, err := r.Builder.
		Update(uploadsTable).
		Set(thumbnailKeyColumn, thumbnailKey).
		Set(statusColumn, entity.Processed).
		Set(processedAtColumn, at).
		Where(squirrel.Eq{idColumn: id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("StoredObjectRepo - MarkProcessed - r.Builder.ToSql: %w", err)
	}

	return r.execOne(ctx, "MarkProcessed", sql, args)
}

func (r *StoredObjectRepo) MarkFailed(ctx context.Context, id uuid.UUID) error {
	sql, args, err := r.Builder.
		Update(uploadsTable).
		Set(statusColumn, entity.Failed).
		Where(squirrel.Eq{idColumn: id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("StoredObjectRepo - MarkFailed - r.Builder.ToSql: %w", err)
	}

	return r.execOne(ctx, "MarkFailed", sql, args)
}

func (r *StoredObjectRepo) execOne(ctx context.Context, method, sql string, args []any) error {
	executor := r.GetExecutor(ctx)

	tag, err := executor.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("StoredObjectRepo - %s - executor.Exec: %w", method, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("StoredObjectRepo - %s: %w", method, errs.ErrRecordNotFound)
	}

	return nil
}
