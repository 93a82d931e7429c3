// Package postgres persists DataFile records. The serialized matrix
// content is stored alongside the metadata so files survive restarts;
// validation issues are kept as JSON.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/shanky2010/batch-visual-insights/domain/core"
	"github.com/shanky2010/batch-visual-insights/domain/table"
	apperrors "github.com/shanky2010/batch-visual-insights/internal/errors"
	"github.com/shanky2010/batch-visual-insights/ports"
)

const schema = `
CREATE TABLE IF NOT EXISTS data_files (
	id            TEXT PRIMARY KEY,
	user_id       TEXT NOT NULL,
	name          TEXT NOT NULL,
	file_path     TEXT,
	file_size     BIGINT NOT NULL DEFAULT 0,
	mime_type     TEXT,
	content       TEXT NOT NULL DEFAULT '',
	version       INTEGER NOT NULL DEFAULT 0,
	row_count     INTEGER NOT NULL DEFAULT 0,
	column_count  INTEGER NOT NULL DEFAULT 0,
	status        TEXT NOT NULL,
	error_message TEXT,
	validation    JSONB,
	created_at    TIMESTAMPTZ NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_data_files_user_id ON data_files (user_id);
`

// fileRepository implements the FileRepository interface
type fileRepository struct {
	db *sqlx.DB
}

// Connect opens the database and bootstraps the schema.
func Connect(url string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", url)
	if err != nil {
		return nil, apperrors.WrapCode(err, apperrors.CodeDatabaseError, "failed to connect to database")
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, apperrors.WrapCode(err, apperrors.CodeDatabaseError, "failed to bootstrap schema")
	}
	return db, nil
}

// NewFileRepository creates a new file repository
func NewFileRepository(db *sqlx.DB) ports.FileRepository {
	return &fileRepository{db: db}
}

// Create inserts a new file record
func (r *fileRepository) Create(ctx context.Context, f *table.DataFile) error {
	validationJSON, err := json.Marshal(f.Validation)
	if err != nil {
		return fmt.Errorf("failed to marshal validation: %w", err)
	}

	query := `INSERT INTO data_files (
		id, user_id, name, file_path, file_size, mime_type, content,
		version, row_count, column_count, status, error_message, validation,
		created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err = r.db.ExecContext(ctx, query,
		f.ID, f.UserID, f.Name, f.FilePath, f.FileSize, f.MimeType, table.Serialize(f.Matrix),
		f.Version, f.RowCount, f.ColumnCount, f.Status, f.ErrorMessage, validationJSON,
		f.CreatedAt, f.UpdatedAt,
	)
	if err != nil {
		return apperrors.WrapCode(err, apperrors.CodeDatabaseError, "failed to create file record")
	}

	return nil
}

const selectColumns = `
	id, user_id, name, COALESCE(file_path, '') AS file_path, file_size,
	COALESCE(mime_type, '') AS mime_type, content, version, row_count,
	column_count, status, COALESCE(error_message, '') AS error_message,
	validation, created_at, updated_at`

// GetByID retrieves a file record by its ID
func (r *fileRepository) GetByID(ctx context.Context, id core.FileID) (*table.DataFile, error) {
	query := `SELECT` + selectColumns + ` FROM data_files WHERE id = $1`

	f, err := r.scanRow(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, core.NewNotFoundError("file", id.String())
		}
		return nil, apperrors.WrapCode(err, apperrors.CodeDatabaseError, "failed to get file record")
	}
	return f, nil
}

// ListByUser retrieves all file records for a user
func (r *fileRepository) ListByUser(ctx context.Context, userID core.UserID) ([]*table.DataFile, error) {
	query := `SELECT` + selectColumns + ` FROM data_files WHERE user_id = $1 ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, apperrors.WrapCode(err, apperrors.CodeDatabaseError, "failed to list file records")
	}
	defer rows.Close()

	var files []*table.DataFile
	for rows.Next() {
		f, err := r.scanRow(rows)
		if err != nil {
			return nil, apperrors.WrapCode(err, apperrors.CodeDatabaseError, "failed to scan file record")
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// Update rewrites a file record, including its serialized content
func (r *fileRepository) Update(ctx context.Context, f *table.DataFile) error {
	validationJSON, err := json.Marshal(f.Validation)
	if err != nil {
		return fmt.Errorf("failed to marshal validation: %w", err)
	}

	query := `UPDATE data_files SET
		name = $2, file_path = $3, file_size = $4, mime_type = $5, content = $6,
		version = $7, row_count = $8, column_count = $9, status = $10,
		error_message = $11, validation = $12, updated_at = $13
	WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		f.ID, f.Name, f.FilePath, f.FileSize, f.MimeType, table.Serialize(f.Matrix),
		f.Version, f.RowCount, f.ColumnCount, f.Status, f.ErrorMessage, validationJSON,
		f.UpdatedAt,
	)
	if err != nil {
		return apperrors.WrapCode(err, apperrors.CodeDatabaseError, "failed to update file record")
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return core.NewNotFoundError("file", f.ID.String())
	}

	return nil
}

// Delete removes a file record
func (r *fileRepository) Delete(ctx context.Context, id core.FileID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM data_files WHERE id = $1`, id); err != nil {
		return apperrors.WrapCode(err, apperrors.CodeDatabaseError, "failed to delete file record")
	}
	return nil
}

// rowScanner covers *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *fileRepository) scanRow(row rowScanner) (*table.DataFile, error) {
	var f table.DataFile
	var content string
	var validationJSON []byte

	err := row.Scan(
		&f.ID, &f.UserID, &f.Name, &f.FilePath, &f.FileSize,
		&f.MimeType, &content, &f.Version, &f.RowCount,
		&f.ColumnCount, &f.Status, &f.ErrorMessage,
		&validationJSON, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if content != "" {
		f.Matrix = table.Parse(content)
	}
	if len(validationJSON) > 0 {
		if err := json.Unmarshal(validationJSON, &f.Validation); err != nil {
			return nil, fmt.Errorf("failed to unmarshal validation: %w", err)
		}
	}

	return &f, nil
}
