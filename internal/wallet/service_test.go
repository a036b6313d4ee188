package wallet

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/tangent-app/tangent/internal/audit"
	"github.com/tangent-app/tangent/internal/events"
	"github.com/tangent-app/tangent/internal/logging"
)

func TestConnectListAndRemove(t *testing.T) {
	recorder := audit.NewMemoryRecorder()
	publisher := events.NewRecorder()
	svc := NewService(NewMemoryRepository(), recorder, publisher, logging.Discard())

	ctx := context.Background()
	ownerID := uuid.NewString()

	first, err := svc.Connect(ctx, ConnectInput{UserID: ownerID, Provider: "metamask", Address: "0x742d35Cc6634C0532925a3b844Bc454e4438f44e"})
	if err != nil {
		t.Fatalf("connect first: %v", err)
	}
	if !first.IsDefault || first.Type != ProviderMetaMask || first.Name != "MetaMask" {
		t.Fatalf("unexpected first wallet %+v", first)
	}

	second, err := svc.Connect(ctx, ConnectInput{UserID: ownerID, Provider: "Trust Wallet", Address: "0xabcdef0123456789abcdef0123456789abcd4635"})
	if err != nil {
		t.Fatalf("connect second: %v", err)
	}
	if second.IsDefault {
		t.Fatalf("second wallet must not be default")
	}

	if _, err := svc.Connect(ctx, ConnectInput{UserID: ownerID, Provider: "MetaMask", Address: first.Address}); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
	if _, err := svc.Connect(ctx, ConnectInput{UserID: ownerID, Provider: "Dogecoin Vault", Address: "0x1"}); err == nil {
		t.Fatalf("expected unsupported provider error")
	}

	list, err := svc.List(ctx, ownerID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != first.ID {
		t.Fatalf("expected default wallet first, got %+v", list)
	}

	if err := svc.Remove(ctx, ownerID, first.ID, "127.0.0.1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	list, _ = svc.List(ctx, ownerID)
	if len(list) != 1 || list[0].ID != second.ID || !list[0].IsDefault {
		t.Fatalf("expected remaining wallet to become default, got %+v", list)
	}

	entries, _ := recorder.ListByUser(ctx, ownerID, 0)
	if len(entries) != 3 {
		t.Fatalf("expected 3 audit entries, got %d", len(entries))
	}
	if len(publisher.Events()) != 2 {
		t.Fatalf("expected 2 wallet events, got %d", len(publisher.Events()))
	}
}

func TestShortAddressAndDisplay(t *testing.T) {
	if got := ShortAddress("0x742d35Cc6634C0532925a3b844Bc454e44384635"); got != "0x742d...4635" {
		t.Fatalf("unexpected short address %s", got)
	}
	if got := ShortAddress("0x1234"); got != "0x1234" {
		t.Fatalf("short addresses are kept, got %s", got)
	}
	w := Wallet{Name: "MetaMask", Address: "0x742d35Cc6634C0532925a3b844Bc454e44384635"}
	if got := w.Display(); got != "MetaMask •••• 4635" {
		t.Fatalf("unexpected display %s", got)
	}
}
