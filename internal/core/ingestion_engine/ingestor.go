package ingestion_engine

import "context"

type Ingestor interface {
	Start(ctx context.Context, numWorkers int)
	Enqueue(ctx context.Context, job Job) error
	ProcessOne(ctx context.Context, job Job) error

	// ResumeCreated schedules the redaction and the coordinate index of a
	// freshly stored resume.
	ResumeCreated(ctx context.Context, uuid string) error
	// Kickoff schedules one resume whose redaction is missing or outdated.
	Kickoff(ctx context.Context) (uuid string, err error)
}
