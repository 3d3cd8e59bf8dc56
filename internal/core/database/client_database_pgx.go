package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/markdave123-py/Redacta/internal/models"
)

const resumeColumns = `
	id, uuid, COALESCE(prospect_uuid, ''), link, text, redacted_link, redacted_text,
	COALESCE(width, 0), COALESCE(height, 0), COALESCE(skip_redaction, false),
	show_redacted, redaction_version, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResume(row rowScanner) (*models.Resume, error) {
	var r models.Resume
	err := row.Scan(
		&r.ID, &r.UUID, &r.ProspectUUID, &r.Link, &r.Text, &r.RedactedLink, &r.RedactedText,
		&r.Width, &r.Height, &r.SkipRedaction, &r.ShowRedacted, &r.RedactionVersion, &r.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrResumeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Implementing the db interface for Resume

func (c *DatabaseClient) CreateResume(ctx context.Context, resume *models.Resume) error {
	if resume == nil {
		return errors.New("nil resume")
	}
	const q = `
		INSERT INTO resume
			(uuid, prospect_uuid, link, text, width, height, skip_redaction, show_redacted)
		VALUES
			($1, NULLIF($2, ''), $3, $4, $5, $6, $7, true)
		RETURNING id, show_redacted, created_at
	`
	return c.db.QueryRowContext(ctx, q,
		resume.UUID, resume.ProspectUUID, resume.Link, resume.Text, resume.Width, resume.Height, resume.SkipRedaction,
	).Scan(&resume.ID, &resume.ShowRedacted, &resume.CreatedAt)
}

func (c *DatabaseClient) GetResumeByUUID(ctx context.Context, uuid string) (*models.Resume, error) {
	q := `SELECT ` + resumeColumns + ` FROM resume WHERE uuid = $1`
	return scanResume(c.db.QueryRowContext(ctx, q, uuid))
}

// UpdateResume persists the redaction state of a resume.
func (c *DatabaseClient) UpdateResume(ctx context.Context, resume *models.Resume) error {
	if resume == nil {
		return errors.New("nil resume")
	}
	const q = `
		UPDATE resume
		SET redacted_link = $2, redacted_text = $3, skip_redaction = $4,
		    show_redacted = $5, redaction_version = $6
		WHERE id = $1
	`
	res, err := c.db.ExecContext(ctx, q,
		resume.ID, resume.RedactedLink, resume.RedactedText, resume.SkipRedaction,
		resume.ShowRedacted, resume.RedactionVersion)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("%w: id %d", models.ErrResumeNotFound, resume.ID)
	}
	return nil
}

func (c *DatabaseClient) GetResumeWithoutRedaction(ctx context.Context, currentVersion int) (*models.Resume, error) {
	q := `SELECT ` + resumeColumns + `
		FROM resume
		WHERE skip_redaction IS NOT TRUE
		   OR redaction_version IS NULL
		   OR redaction_version < $1
		ORDER BY random()
		LIMIT 1`
	return scanResume(c.db.QueryRowContext(ctx, q, currentVersion))
}

// Implementing the db interface for Text Coordinates

// ReplaceTextCoordinates deletes and re-inserts the coordinates in a single transaction.
func (c *DatabaseClient) ReplaceTextCoordinates(ctx context.Context, resumeID int64, redacted bool, coords []models.WordCoordinate) error {
	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM text_coordinates WHERE resume_id = $1 AND redacted = $2`, resumeID, redacted); err != nil {
		_ = tx.Rollback()
		return err
	}

	const q = `
		INSERT INTO text_coordinates (resume_id, text, x0, y0, x1, y1, redacted)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for i := range coords {
		wc := &coords[i]
		if _, err := stmt.ExecContext(ctx,
			resumeID, wc.Text, wc.X0, wc.Y0, wc.X1, wc.Y1, redacted,
		); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// SearchTextCoordinates returns the coordinates of a resume whose text
// matches an english to_tsquery expression.
func (c *DatabaseClient) SearchTextCoordinates(ctx context.Context, resumeID int64, tsquery string) ([]models.WordCoordinate, error) {
	const q = `
		SELECT id, resume_id, text, x0, y0, x1, y1, redacted
		FROM text_coordinates
		WHERE resume_id = $1
		  AND tsv @@ to_tsquery('english', $2)
		ORDER BY id ASC
	`
	rows, err := c.db.QueryContext(ctx, q, resumeID, tsquery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.WordCoordinate
	for rows.Next() {
		var wc models.WordCoordinate
		if err := rows.Scan(&wc.ID, &wc.DocumentID, &wc.Text, &wc.X0, &wc.Y0, &wc.X1, &wc.Y1, &wc.Redacted); err != nil {
			return nil, err
		}
		out = append(out, wc)
	}
	return out, rows.Err()
}
