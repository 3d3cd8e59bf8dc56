package core

import (
	"context"

	"github.com/markdave123-py/Redacta/internal/models"
)

// DbClient defines all persistence operations the resume services need.
// It abstracts Postgres so higher layers never depend on a specific DB.
type DbClient interface {
	CreateResume(ctx context.Context, resume *models.Resume) error
	GetResumeByUUID(ctx context.Context, uuid string) (*models.Resume, error)
	UpdateResume(ctx context.Context, resume *models.Resume) error

	// GetResumeWithoutRedaction picks one resume whose redaction is missing
	// or older than currentVersion. It returns models.ErrResumeNotFound when
	// every resume is up to date.
	GetResumeWithoutRedaction(ctx context.Context, currentVersion int) (*models.Resume, error)

	// ReplaceTextCoordinates swaps the coordinate index of one resume for the
	// given redacted flag, leaving the other index untouched.
	ReplaceTextCoordinates(ctx context.Context, resumeID int64, redacted bool, coords []models.WordCoordinate) error
	SearchTextCoordinates(ctx context.Context, resumeID int64, tsquery string) ([]models.WordCoordinate, error)

	Close() error
}

// ObjectClient defines interactions with S3 or any object storage.
type ObjectClient interface {
	// Write stores data under name and returns the key to read it back with.
	Write(ctx context.Context, name string, data []byte) (key string, err error)
	Read(ctx context.Context, key string) ([]byte, error)
}
