package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/markdave123-py/Redacta/internal/config"
	"github.com/markdave123-py/Redacta/internal/core"
	db "github.com/markdave123-py/Redacta/internal/core/database"
	"github.com/markdave123-py/Redacta/internal/core/ingestion_engine"
	"github.com/markdave123-py/Redacta/internal/core/llm"
	objectclient "github.com/markdave123-py/Redacta/internal/core/object-client"
	"github.com/markdave123-py/Redacta/internal/logger"
	"github.com/markdave123-py/Redacta/internal/services"
)

type App struct {
	cfg          *config.Config
	log          *zap.Logger
	DBClient     *db.DatabaseClient
	ObjectClient *objectclient.S3Client
	LLM          *llm.GeminiLLM
	Processor    *ingestion_engine.ResumeProcessor
	Server       *Server
}

func NewApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	appCtx, cancel := context.WithTimeout(logger.ContextWithLogger(ctx, log), 5*time.Minute)
	defer cancel()

	a := &App{cfg: cfg, log: log}

	dbClient, err := db.NewDatabaseClient(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	a.DBClient = dbClient

	objClient, err := objectclient.NewS3Client(appCtx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.ObjectClient = objClient

	var provider core.LLMProvider
	if cfg.RedactEntities && cfg.AIAPIKey != "" {
		a.LLM, err = llm.NewGeminiLLM(appCtx, cfg.AIAPIKey, cfg.NERModel)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("couldn't initialize the entity recognizer: %w", err)
		}
		provider = a.LLM
	}

	useReadability := false
	extractor := ingestion_engine.NewDocconvExtractor(useReadability)

	a.Processor = ingestion_engine.NewResumeProcessor(dbClient, objClient, extractor, ingestion_engine.ProcessorConfig{
		RedactionVersion: cfg.RedactionVersion,
		Strategies:       RedactionPipeline(cfg, provider),
	})

	resumes := services.NewResumeService(dbClient, objClient, a.Processor, extractor)
	a.Server = NewServer(cfg, log, resumes)

	log.Info("application wired",
		zap.Int("redaction_version", cfg.RedactionVersion),
		zap.Bool("redact_entities", cfg.RedactEntities),
		zap.Bool("ner", provider != nil))
	return a, nil
}

// Run starts the workers, the redaction kickoff and the HTTP server, and
// blocks until ctx is done or the server fails.
func (a *App) Run(ctx context.Context) error {
	ctx = logger.ContextWithLogger(ctx, a.log)
	a.Processor.Start(ctx, a.cfg.Workers)
	a.Processor.StartKickoff(ctx, a.cfg.KickoffInterval)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(a.Server.Start)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return a.Server.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (a *App) Close() {
	if a.LLM != nil {
		_ = a.LLM.Close()
	}
	if a.DBClient != nil {
		_ = a.DBClient.Close()
	}
}
