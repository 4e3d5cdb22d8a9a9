package uploads

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"osapio-backend/internal/shared/storage/db"
)

const uploadColumns = `id, user_id, filename, file_size, storage_path, content_type, extracted_text,
       upload_timestamp, analysis_status, analysis_result, analyzed_at`

// PGRepo implements Repo on the file_uploads table.
type PGRepo struct {
	DB *sqlx.DB
}

func NewPGRepo(conn *sqlx.DB) *PGRepo {
	return &PGRepo{DB: conn}
}

func (r *PGRepo) Create(ctx context.Context, u Upload) error {
	const query = `INSERT INTO file_uploads
	(id, user_id, filename, file_size, storage_path, content_type, extracted_text, upload_timestamp, analysis_status, analysis_result, analyzed_at)
	VALUES (:id, :user_id, :filename, :file_size, :storage_path, :content_type, :extracted_text, :upload_timestamp, :analysis_status, :analysis_result, :analyzed_at)`
	if _, err := r.DB.NamedExecContext(ctx, query, u); err != nil {
		return db.Classify("create upload", err)
	}
	return nil
}

func (r *PGRepo) Get(ctx context.Context, userID, id string) (Upload, error) {
	query := `SELECT ` + uploadColumns + `
	FROM file_uploads WHERE id = $1 AND user_id = $2`
	var u Upload
	if err := r.DB.GetContext(ctx, &u, query, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Upload{}, ErrNotFound
		}
		return Upload{}, db.Classify("get upload", err)
	}
	return u, nil
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit int) ([]Upload, error) {
	query := `SELECT ` + uploadColumns + `
	FROM file_uploads WHERE user_id = $1
	ORDER BY upload_timestamp DESC
	LIMIT $2`
	out := make([]Upload, 0)
	if err := r.DB.SelectContext(ctx, &out, query, userID, limit); err != nil {
		return nil, db.Classify("list uploads", err)
	}
	return out, nil
}

func (r *PGRepo) Delete(ctx context.Context, userID, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM file_uploads WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return db.Classify("delete upload", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return db.Classify("delete upload", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) SetStatus(ctx context.Context, userID, id string, upd StatusUpdate) (Upload, error) {
	query := `UPDATE file_uploads
	SET analysis_status = $1,
	    analysis_result = COALESCE($2, analysis_result),
	    analyzed_at = COALESCE($3, analyzed_at)
	WHERE id = $4 AND user_id = $5
	RETURNING ` + uploadColumns
	var u Upload
	if err := r.DB.GetContext(ctx, &u, query, upd.Status, upd.Result, upd.AnalyzedAt, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Upload{}, ErrNotFound
		}
		return Upload{}, db.Classify("set upload status", err)
	}
	return u, nil
}
