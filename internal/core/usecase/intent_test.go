package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/avolkov/grounded-qa/internal/core/domain"
)

func TestClassifyPassesThroughValidLabel(t *testing.T) {
	classifier := &fakeClassifier{label: domain.IntentLabel{
		Intent:     domain.IntentFactual,
		Confidence: 0.92,
		Reason:     "single fact lookup",
	}}
	stage := NewIntentStage(classifier, nil)

	label := stage.Classify(context.Background(), "when was the paper published")
	if label.Intent != domain.IntentFactual || label.Confidence != 0.92 {
		t.Fatalf("unexpected label: %+v", label)
	}
}

func TestClassifyErrorFallsBackToUnknown(t *testing.T) {
	classifier := &fakeClassifier{err: errors.New("malformed json")}
	stage := NewIntentStage(classifier, nil)

	label := stage.Classify(context.Background(), "q")
	if label.Intent != domain.IntentUnknown {
		t.Fatalf("expected unknown intent, got %s", label.Intent)
	}
	if label.Confidence != 0.0 {
		t.Fatalf("expected zero confidence, got %f", label.Confidence)
	}
	if label.Reason != "Invalid model output" {
		t.Fatalf("unexpected reason: %q", label.Reason)
	}
}

func TestClassifyCollapsesUnexpectedLabel(t *testing.T) {
	classifier := &fakeClassifier{label: domain.IntentLabel{
		Intent:     domain.Intent("creative"),
		Confidence: 0.8,
	}}
	stage := NewIntentStage(classifier, nil)

	label := stage.Classify(context.Background(), "q")
	if label.Intent != domain.IntentUnknown {
		t.Fatalf("off-enumeration label must collapse to unknown, got %s", label.Intent)
	}
}

func TestClassifyRejectsOutOfRangeConfidence(t *testing.T) {
	classifier := &fakeClassifier{label: domain.IntentLabel{
		Intent:     domain.IntentAnalytical,
		Confidence: 1.7,
	}}
	stage := NewIntentStage(classifier, nil)

	label := stage.Classify(context.Background(), "q")
	if label.Confidence != 0.0 {
		t.Fatalf("out-of-range confidence must reject to 0, got %f", label.Confidence)
	}
	if label.Intent != domain.IntentAnalytical {
		t.Fatalf("label itself stays valid, got %s", label.Intent)
	}
}
