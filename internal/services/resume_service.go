package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/markdave123-py/Redacta/internal/core"
	"github.com/markdave123-py/Redacta/internal/core/ingestion_engine"
	"github.com/markdave123-py/Redacta/internal/core/textextract"
	"github.com/markdave123-py/Redacta/internal/logger"
	"github.com/markdave123-py/Redacta/internal/models"
)

// ErrEmptyResume is returned when an upload carries no bytes.
var ErrEmptyResume = errors.New("empty resume")

type ResumeService struct {
	db        core.DbClient
	storage   core.ObjectClient
	ingestor  ingestion_engine.Ingestor
	extractor core.DocumentExtractor
	newUUID   func() string
}

func NewResumeService(db core.DbClient, storage core.ObjectClient, ing ingestion_engine.Ingestor, extractor core.DocumentExtractor) *ResumeService {
	return &ResumeService{db: db, storage: storage, ingestor: ing, extractor: extractor, newUUID: uuid.NewString}
}

// Create stores an uploaded resume and schedules its redaction. The page
// measurement and the text extraction run concurrently; the blob is stored
// once both succeed.
func (s *ResumeService) Create(ctx context.Context, prospectUUID string, data []byte) (*models.Resume, error) {
	if len(data) == 0 {
		return nil, ErrEmptyResume
	}
	resume := &models.Resume{UUID: s.newUUID(), ProspectUUID: prospectUUID}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		w, h, err := textextract.Measure(data)
		resume.Width, resume.Height = w, h
		return err
	})
	g.Go(func() error {
		text, err := ingestion_engine.ResumeText(gctx, data, s.extractor)
		resume.Text = text
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	link, err := s.storage.Write(ctx, resume.UUID+".pdf", data)
	if err != nil {
		return nil, fmt.Errorf("store resume: %w", err)
	}
	resume.Link = link

	if err := s.db.CreateResume(ctx, resume); err != nil {
		return nil, fmt.Errorf("create resume: %w", err)
	}

	// the kickoff picks up resumes whose jobs were never queued
	if err := s.ingestor.ResumeCreated(ctx, resume.UUID); err != nil {
		logger.FromContext(ctx).Warn("queue resume jobs", zap.String("uuid", resume.UUID), zap.Error(err))
	}
	resume.TextCoordinates = []models.WordCoordinate{}
	return resume, nil
}

// Get returns a resume. When keywords is non-nil the text coordinates
// matching any of its words are attached.
func (s *ResumeService) Get(ctx context.Context, uuid string, keywords *string) (*models.Resume, error) {
	resume, err := s.db.GetResumeByUUID(ctx, uuid)
	if err != nil {
		return nil, err
	}
	resume.TextCoordinates = []models.WordCoordinate{}
	if keywords == nil {
		return resume, nil
	}

	query := SanitizeKeywords(*keywords)
	if query == "" {
		return resume, nil
	}
	coords, err := s.db.SearchTextCoordinates(ctx, resume.ID, query)
	if err != nil {
		return nil, fmt.Errorf("search text coordinates: %w", err)
	}
	if coords != nil {
		resume.TextCoordinates = coords
	}
	return resume, nil
}

var nonWord = regexp.MustCompile(`[^|\p{L}\p{N}_]+`)

// SanitizeKeywords turns free text into a to_tsquery expression matching
// any of its words: whitespace becomes |, every other non word character
// is dropped.
func SanitizeKeywords(keywords string) string {
	joined := strings.Join(strings.Fields(keywords), "|")
	joined = nonWord.ReplaceAllString(joined, "")

	var terms []string
	for _, t := range strings.Split(joined, "|") {
		if t != "" {
			terms = append(terms, t)
		}
	}
	return strings.Join(terms, "|")
}
