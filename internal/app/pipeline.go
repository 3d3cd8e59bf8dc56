package app

import (
	"github.com/markdave123-py/Redacta/internal/config"
	"github.com/markdave123-py/Redacta/internal/core"
	"github.com/markdave123-py/Redacta/internal/core/pii"
	"github.com/markdave123-py/Redacta/internal/core/redaction"
)

// RedactionPipeline is the reference pipeline, followed by entity
// redaction when REDACT_ENTITIES is set. The entity detector uses the
// language model when one is given and the pattern recognizers always.
func RedactionPipeline(cfg *config.Config, llm core.LLMProvider) []redaction.Strategy {
	strategies := redaction.ReferenceStrategies()
	if !cfg.RedactEntities {
		return strategies
	}
	return append(strategies, redaction.Entities{Finder: EntityDetector(cfg, llm)})
}

func EntityDetector(cfg *config.Config, llm core.LLMProvider) *pii.Detector {
	var recognizers []pii.EntityRecognizer
	if llm != nil {
		recognizers = append(recognizers, pii.NewNERRecognizer(llm, cfg.NERLocation))
	}
	recognizers = append(recognizers, pii.EmailRecognizer(), pii.PhoneRecognizer(), pii.URLRecognizer())
	return pii.NewDetector(recognizers...)
}
