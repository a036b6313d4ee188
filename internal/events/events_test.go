package events

import (
	"context"
	"testing"
)

func TestRecorder(t *testing.T) {
	rec := NewRecorder()
	ctx := context.Background()

	if err := rec.Publish(ctx, New(KindOnboardingStarted, "sess-1", nil)); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if err := rec.Publish(ctx, New(KindOnboardingStep, "sess-1", map[string]string{"from": "splash"})); err != nil {
		t.Fatalf("publish: %v", err)
	}

	kinds := rec.Kinds()
	if len(kinds) != 2 || kinds[0] != KindOnboardingStarted || kinds[1] != KindOnboardingStep {
		t.Fatalf("unexpected kinds %v", kinds)
	}
	if rec.Events()[1].Data["from"] != "splash" {
		t.Fatalf("expected data to be kept")
	}
	if rec.Events()[0].ID == "" || rec.Events()[0].OccurredAt.IsZero() {
		t.Fatalf("expected event to be stamped")
	}
}
