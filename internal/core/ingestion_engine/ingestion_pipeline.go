package ingestion_engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/markdave123-py/Redacta/internal/core"
	"github.com/markdave123-py/Redacta/internal/core/redaction"
	"github.com/markdave123-py/Redacta/internal/core/textextract"
	"github.com/markdave123-py/Redacta/internal/logger"
	"github.com/markdave123-py/Redacta/internal/models"
)

var _ Ingestor = (*ResumeProcessor)(nil)

// NewResumeProcessor constructs the processor with a bounded job queue (64 by default).
func NewResumeProcessor(db core.DbClient, obj core.ObjectClient, extractor core.DocumentExtractor, cfg ProcessorConfig) *ResumeProcessor {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 5 * time.Minute
	}
	strategies := cfg.Strategies
	if strategies == nil {
		strategies = redaction.ReferenceStrategies()
	}
	return &ResumeProcessor{
		db: db, obj: obj, extractor: extractor, cfg: cfg,
		strategies: strategies,
		jobs:       make(chan Job, cfg.QueueSize),
		newName:    newBlobName,
	}
}

// Start runs numWorkers goroutines reading from the jobs channel until ctx
// is done.
func (p *ResumeProcessor) Start(ctx context.Context, numWorkers int) {
	log := logger.FromContext(ctx)
	for w := 1; w <= numWorkers; w++ {
		go func(w int) {
			for {
				select {
				case <-ctx.Done():
					log.Debug("resume worker shutting down", zap.Int("worker", w))
					return
				case job := <-p.jobs:
					log.Info("processing resume job",
						zap.String("job", string(job.Kind)), zap.String("uuid", job.UUID), zap.Int("worker", w))
					if err := p.ProcessOne(ctx, job); err != nil {
						log.Error("resume job failed",
							zap.String("job", string(job.Kind)), zap.String("uuid", job.UUID), zap.Error(err))
					}
				}
			}
		}(w)
	}
}

// StartKickoff calls Kickoff every interval until ctx is done.
func (p *ResumeProcessor) StartKickoff(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	log := logger.FromContext(ctx)
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				uuid, err := p.Kickoff(ctx)
				if err != nil {
					log.Error("redaction kickoff failed", zap.Error(err))
					continue
				}
				if uuid != "" {
					log.Info("redaction kicked off", zap.String("uuid", uuid))
				}
			}
		}
	}()
}

// Enqueue schedules a job. If the queue is full, this call blocks until
// space frees up or ctx is done.
func (p *ResumeProcessor) Enqueue(ctx context.Context, job Job) error {
	select {
	case p.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *ResumeProcessor) ResumeCreated(ctx context.Context, uuid string) error {
	if err := p.Enqueue(ctx, Job{Kind: RedactResume, UUID: uuid}); err != nil {
		return err
	}
	return p.Enqueue(ctx, Job{Kind: AttachTextCoordinates, UUID: uuid})
}

func (p *ResumeProcessor) Kickoff(ctx context.Context) (string, error) {
	resume, err := p.db.GetResumeWithoutRedaction(ctx, p.cfg.RedactionVersion)
	if errors.Is(err, models.ErrResumeNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("pick resume: %w", err)
	}

	resume.SkipRedaction = true
	if err := p.db.UpdateResume(ctx, resume); err != nil {
		return "", fmt.Errorf("mark resume %s: %w", resume.UUID, err)
	}
	return resume.UUID, p.Enqueue(ctx, Job{Kind: RedactResume, UUID: resume.UUID})
}

// ProcessOne runs a job and then the follow-up jobs it produces. The job
// outlives the cancellation of ctx, bounded by the configured timeout.
func (p *ResumeProcessor) ProcessOne(ctx context.Context, job Job) error {
	proctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.cfg.JobTimeout)
	defer cancel()

	queue := []Job{job}
	for len(queue) > 0 {
		j := queue[0]
		queue = queue[1:]

		next, err := p.handle(proctx, j)
		if err != nil {
			return fmt.Errorf("%s %s: %w", j.Kind, j.UUID, err)
		}
		queue = append(queue, next...)
	}
	return nil
}

func (p *ResumeProcessor) handle(ctx context.Context, job Job) ([]Job, error) {
	switch job.Kind {
	case AttachTextCoordinates:
		return nil, p.attachCoordinates(ctx, job.UUID, false)
	case AttachRedactedTextCoordinates:
		return nil, p.attachCoordinates(ctx, job.UUID, true)
	case RedactResume:
		return p.redact(ctx, job.UUID)
	}
	return nil, fmt.Errorf("unknown job kind %q", job.Kind)
}

// attachCoordinates indexes the words of the original or the redacted PDF.
func (p *ResumeProcessor) attachCoordinates(ctx context.Context, uuid string, redacted bool) error {
	resume, err := p.db.GetResumeByUUID(ctx, uuid)
	if err != nil {
		return err
	}

	key := resume.Link
	if redacted {
		if resume.RedactedLink == nil {
			return fmt.Errorf("resume %s has no redacted document", uuid)
		}
		key = *resume.RedactedLink
	}

	data, err := p.obj.Read(ctx, key)
	if err != nil {
		return fmt.Errorf("read %s: %w", key, err)
	}
	coords, err := textextract.ExtractCoordinates(ctx, data, &resume.ID, redacted)
	if err != nil {
		return fmt.Errorf("extract coordinates: %w", err)
	}
	if err := p.db.ReplaceTextCoordinates(ctx, resume.ID, redacted, coords); err != nil {
		return fmt.Errorf("store coordinates: %w", err)
	}

	logger.FromContext(ctx).Debug("text coordinates attached",
		zap.String("uuid", uuid), zap.Bool("redacted", redacted), zap.Int("count", len(coords)))
	return nil
}

// redact runs the redaction pipeline over the original PDF and stores the
// result. Whatever happens once the resume is loaded, it is stamped with the
// current redaction version so the kickoff does not pick it again.
func (p *ResumeProcessor) redact(ctx context.Context, uuid string) (next []Job, err error) {
	resume, err := p.db.GetResumeByUUID(ctx, uuid)
	if err != nil {
		return nil, err
	}
	defer func() {
		version := p.cfg.RedactionVersion
		resume.RedactionVersion = &version
		resume.SkipRedaction = true
		if uerr := p.db.UpdateResume(ctx, resume); uerr != nil {
			err = errors.Join(err, fmt.Errorf("update resume: %w", uerr))
			next = nil
		}
	}()

	dirty, err := p.obj.Read(ctx, resume.Link)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", resume.Link, err)
	}
	clean, err := redaction.Redact(ctx, dirty, p.strategies...)
	if err != nil {
		return nil, err
	}

	var text, key string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := ResumeText(gctx, clean, p.extractor)
		text = t
		return err
	})
	g.Go(func() error {
		k, err := p.obj.Write(gctx, p.newName(), clean)
		key = k
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	resume.RedactedText = &text
	resume.RedactedLink = &key
	return []Job{{Kind: AttachRedactedTextCoordinates, UUID: uuid}}, nil
}
