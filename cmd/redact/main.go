// Command redact runs the redaction pipeline over a local PDF.
//
//	redact -in resume.pdf -out redacted.pdf [-coords coords.json] [-entities]
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/markdave123-py/Redacta/internal/app"
	"github.com/markdave123-py/Redacta/internal/config"
	"github.com/markdave123-py/Redacta/internal/core"
	"github.com/markdave123-py/Redacta/internal/core/llm"
	"github.com/markdave123-py/Redacta/internal/core/redaction"
	"github.com/markdave123-py/Redacta/internal/core/textextract"
	"github.com/markdave123-py/Redacta/internal/logger"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "redact: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stderr io.Writer) error {
	cfg := config.LoadConfig()

	fs := flag.NewFlagSet("redact", flag.ContinueOnError)
	fs.SetOutput(stderr)
	in := fs.String("in", "", "input PDF")
	out := fs.String("out", "", "output PDF")
	coords := fs.String("coords", "", "write the coordinate index of the output as JSON to this file")
	entities := fs.Bool("entities", cfg.RedactEntities, "also redact detected entities (emails, phones, URLs, names with GEMINI_API_KEY)")
	verbose := fs.Bool("v", false, "log every redaction step")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" || *out == "" {
		fs.Usage()
		return errors.New("-in and -out are required")
	}

	level := "info"
	if *verbose {
		level = "debug"
	}
	log, err := logger.NewLogger(logger.Options{Env: "dev", Level: level, Component: "cli"})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	ctx = logger.ContextWithLogger(ctx, log)

	src, err := os.ReadFile(*in)
	if err != nil {
		return err
	}

	cfg.RedactEntities = *entities
	var provider core.LLMProvider
	if cfg.RedactEntities && cfg.AIAPIKey != "" {
		gemini, err := llm.NewGeminiLLM(ctx, cfg.AIAPIKey, cfg.NERModel)
		if err != nil {
			return err
		}
		defer gemini.Close()
		provider = gemini
	}

	redacted, err := redaction.Redact(ctx, src, app.RedactionPipeline(cfg, provider)...)
	if err != nil {
		return err
	}
	if err := os.WriteFile(*out, redacted, 0o644); err != nil {
		return err
	}
	log.Info("redacted", zap.String("in", *in), zap.String("out", *out),
		zap.Int("in_bytes", len(src)), zap.Int("out_bytes", len(redacted)))

	if *coords == "" {
		return nil
	}
	index, err := textextract.ExtractCoordinates(ctx, redacted, nil, true)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(*coords, data, 0o644)
}
