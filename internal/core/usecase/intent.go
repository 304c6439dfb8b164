package usecase

import (
	"context"
	"log/slog"

	"github.com/avolkov/grounded-qa/internal/core/domain"
	"github.com/avolkov/grounded-qa/internal/core/ports"
)

// IntentStage labels the query's answer shape. The label is an optimization
// signal for rewrite and fusion, never a gate: any classifier failure maps
// to unknown with zero confidence and the pipeline continues.
type IntentStage struct {
	classifier ports.IntentClassifier
	logger     *slog.Logger
}

func NewIntentStage(classifier ports.IntentClassifier, logger *slog.Logger) *IntentStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &IntentStage{classifier: classifier, logger: logger}
}

func (s *IntentStage) Classify(ctx context.Context, query string) domain.IntentLabel {
	label, err := s.classifier.ClassifyIntent(ctx, query)
	if err != nil {
		s.logger.Warn("intent_classification_fallback", "error", err)
		return domain.IntentLabel{
			Intent:     domain.IntentUnknown,
			Confidence: 0.0,
			Reason:     "Invalid model output",
		}
	}

	label.Intent = domain.ParseIntent(string(label.Intent))
	label.Confidence = domain.ClampConfidence(label.Confidence)

	s.logger.Info("intent_classified",
		"intent", label.Intent,
		"confidence", label.Confidence,
	)
	return label
}
