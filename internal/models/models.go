package models

import (
	"errors"
	"time"
)

// ErrResumeNotFound is returned when no resume matches a lookup.
var ErrResumeNotFound = errors.New("resume not found")

// WordCoordinate is one indexed run of words on the first page of a resume,
// positioned in PDF user space.
type WordCoordinate struct {
	ID         int64   `db:"id" json:"-"`
	DocumentID *int64  `db:"resume_id" json:"-"`
	Text       string  `db:"text" json:"text"`
	X0         float64 `db:"x0" json:"x0"`
	Y0         float64 `db:"y0" json:"y0"`
	X1         float64 `db:"x1" json:"x1"`
	Y1         float64 `db:"y1" json:"y1"`
	Redacted   bool    `db:"redacted" json:"-"`
}

// Resume is an uploaded resume and the state of its redaction.
type Resume struct {
	ID               int64     `db:"id" json:"-"`
	UUID             string    `db:"uuid" json:"uuid"`
	ProspectUUID     string    `db:"prospect_uuid" json:"prospect_uuid,omitempty"`
	Link             string    `db:"link" json:"link"`
	RedactedLink     *string   `db:"redacted_link" json:"redacted_link,omitempty"`
	Text             string    `db:"text" json:"-"`
	RedactedText     *string   `db:"redacted_text" json:"-"`
	Width            float64   `db:"width" json:"width"`
	Height           float64   `db:"height" json:"height"`
	SkipRedaction    bool      `db:"skip_redaction" json:"-"`
	ShowRedacted     bool      `db:"show_redacted" json:"show_redacted"`
	RedactionVersion *int      `db:"redaction_version" json:"-"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`

	TextCoordinates []WordCoordinate `json:"text_coordinates"`
}

// NeedsRedaction reports whether the resume has not been redacted with the
// given pipeline version yet.
func (r *Resume) NeedsRedaction(currentVersion int) bool {
	if !r.SkipRedaction {
		return true
	}
	return r.RedactionVersion == nil || *r.RedactionVersion < currentVersion
}
