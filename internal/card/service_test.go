package card

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/tangent-app/tangent/internal/events"
	"github.com/tangent-app/tangent/internal/logging"
)

func TestIssueVirtualAndDefaults(t *testing.T) {
	publisher := events.NewRecorder()
	svc := NewService(NewMemoryRepository(), publisher, logging.Discard())
	ctx := context.Background()
	owner := uuid.NewString()

	first, err := svc.IssueVirtual(ctx, IssueInput{UserID: owner, Name: "Alex Garden"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !first.IsDefault || len(first.LastFour) != 4 || first.Type != TypeMastercard || first.Currency != "USD" {
		t.Fatalf("unexpected first card %+v", first)
	}

	second, err := svc.IssueVirtual(ctx, IssueInput{UserID: owner, Type: TypeVisa})
	if err != nil {
		t.Fatalf("issue second: %v", err)
	}
	if second.IsDefault || second.Name != "Tangent Card" {
		t.Fatalf("unexpected second card %+v", second)
	}
	if len(second.Gradient) == 0 || second.Gradient[0] == first.Gradient[0] {
		t.Fatalf("expected a different gradient for the second card")
	}

	if err := svc.SetDefault(ctx, owner, second.ID); err != nil {
		t.Fatalf("set default: %v", err)
	}
	cards, _ := svc.List(ctx, owner)
	if len(cards) != 2 || cards[0].ID != second.ID || cards[1].IsDefault {
		t.Fatalf("expected second card first and only default, got %+v", cards)
	}

	if err := svc.SetDefault(ctx, uuid.NewString(), first.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected foreign card to be rejected, got %v", err)
	}
	if len(publisher.Events()) != 2 {
		t.Fatalf("expected card events, got %d", len(publisher.Events()))
	}
}

func TestDisplayBalance(t *testing.T) {
	cases := map[int64]string{
		209700:    "$2,097.00",
		5:         "$0.05",
		100:       "$1.00",
		123456789: "$1,234,567.89",
		-2500:     "-$25.00",
	}
	for cents, want := range cases {
		if got := DisplayBalance(cents, "USD"); got != want {
			t.Fatalf("DisplayBalance(%d) = %s, want %s", cents, got, want)
		}
	}
	if got := DisplayBalance(1000, "eur"); got != "10.00 EUR" {
		t.Fatalf("unexpected non-usd display %s", got)
	}
}
