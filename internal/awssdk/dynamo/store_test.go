package dynamo

import (
	"context"
	"errors"
	"testing"

	miniclient "github.com/truora/minidyn/aws-v2/client"

	awserrors "github.com/stockyard/warehouse-backend/internal/awssdk/errors"
)

func newTestStore(t *testing.T) (*Store, *miniclient.Client) {
	t.Helper()
	fake := miniclient.NewClient()
	if err := miniclient.AddTable(context.Background(), fake, "records", "PK", "SK"); err != nil {
		t.Fatalf("add table: %v", err)
	}
	return NewStore(fake, "records", nil), fake
}

func TestStore_PutGet(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	meta, err := NewMetadataRow("wh-1", "Main", 1700000000)
	if err != nil {
		t.Fatalf("row: %v", err)
	}
	if err := s.Put(ctx, meta); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := s.Get(ctx, WarehousePK("wh-1"), MetadataSK())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || ReadString(got, "warehouseName") != "Main" {
		t.Fatalf("unexpected row: %#v", got)
	}

	missing, err := s.Get(ctx, WarehousePK("wh-2"), MetadataSK())
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Fatalf("missing row should be nil, got %#v", missing)
	}
}

func TestStore_Update(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	meta, _ := NewMetadataRow("wh-1", "Main", 1700000000)
	if err := s.Put(ctx, meta); err != nil {
		t.Fatalf("put: %v", err)
	}
	err := s.Update(ctx, WarehousePK("wh-1"), MetadataSK(),
		"SET warehouseName = :wn",
		Item{":wn": StringAttribute("Renamed")},
	)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := s.Get(ctx, WarehousePK("wh-1"), MetadataSK())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ReadString(got, "warehouseName") != "Renamed" {
		t.Fatalf("update did not apply: %#v", got)
	}
}

func TestStore_DeleteAbsentRowSucceeds(t *testing.T) {
	s, _ := newTestStore(t)
	if err := s.Delete(context.Background(), WarehousePK("wh-1"), AccessSK("ghost")); err != nil {
		t.Fatalf("delete absent: %v", err)
	}
}

func TestStore_ScanAll(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	rows := []Item{
		mustRow(NewMetadataRow("wh-1", "Main", 1)),
		mustRow(NewAccessRow("wh-1", "alice", "owner", 1)),
		NewItemRow("wh-1", "sku-9", "Bolt", "42"),
		mustRow(NewMetadataRow("wh-2", "Backup", 2)),
	}
	for _, r := range rows {
		if err := s.Put(ctx, r); err != nil {
			t.Fatalf("put: %v", err)
		}
	}

	got, err := s.ScanAll(ctx)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(got) != len(rows) {
		t.Fatalf("scanned %d rows, want %d", len(got), len(rows))
	}
}

func TestStore_ClassifiesFailures(t *testing.T) {
	s, fake := newTestStore(t)
	miniclient.ActiveForceFailure(fake)
	defer miniclient.DeactiveForceFailure(fake)

	_, err := s.Get(context.Background(), WarehousePK("wh-1"), MetadataSK())
	if err == nil {
		t.Fatalf("expected failure")
	}
	var op *awserrors.OpError
	if !errors.As(err, &op) {
		t.Fatalf("expected OpError, got %T: %v", err, err)
	}
}

func mustRow(it Item, err error) Item {
	if err != nil {
		panic(err)
	}
	return it
}
