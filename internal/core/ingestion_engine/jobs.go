package ingestion_engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/markdave123-py/Redacta/internal/core"
	"github.com/markdave123-py/Redacta/internal/core/redaction"
)

type JobKind string

const (
	AttachTextCoordinates         JobKind = "attach_text_coordinates"
	RedactResume                  JobKind = "redact_resume"
	AttachRedactedTextCoordinates JobKind = "attach_redacted_text_coordinates"
)

// Job is one unit of background work on the resume with the given UUID.
type Job struct {
	Kind JobKind
	UUID string
}

// ProcessorConfig tunes the resume processor.
//
// RedactionVersion: stamped on every resume the pipeline has handled.
// QueueSize:        capacity of the in-memory job queue.
// JobTimeout:       upper bound for one job including its follow-ups.
// Strategies:       redaction pipeline; nil means the reference pipeline.
type ProcessorConfig struct {
	RedactionVersion int
	QueueSize        int
	JobTimeout       time.Duration
	Strategies       []redaction.Strategy
}

// ResumeProcessor runs resume jobs on a pool of workers fed by a bounded
// queue.
type ResumeProcessor struct {
	db         core.DbClient
	obj        core.ObjectClient
	extractor  core.DocumentExtractor
	cfg        ProcessorConfig
	strategies []redaction.Strategy
	jobs       chan Job
	newName    func() string
}

func newBlobName() string { return uuid.NewString() + ".pdf" }
