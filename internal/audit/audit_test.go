package audit

import (
	"context"
	"testing"
	"time"
)

func TestMemoryRecorderListsNewestFirst(t *testing.T) {
	rec := NewMemoryRecorder()
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	entries := []Entry{
		{UserID: "u1", SettingType: SettingPIN, CreatedAt: base},
		{UserID: "u1", SettingType: SettingPhone, OldValue: "+15550000000", NewValue: "+15551234567", CreatedAt: base.Add(time.Minute)},
		{UserID: "u2", SettingType: SettingAddress, CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, e := range entries {
		if err := rec.Record(ctx, e); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	got, err := rec.ListByUser(ctx, "u1", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].SettingType != SettingPhone || got[0].ID == "" {
		t.Fatalf("expected newest phone change first, got %+v", got[0])
	}

	limited, _ := rec.ListByUser(ctx, "u1", 1)
	if len(limited) != 1 {
		t.Fatalf("expected limit to apply, got %d", len(limited))
	}
}

func TestRecordRequiresUser(t *testing.T) {
	if err := NewMemoryRecorder().Record(context.Background(), Entry{SettingType: SettingPIN}); err == nil {
		t.Fatalf("expected error without user id")
	}
}
