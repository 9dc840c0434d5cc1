package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vovakirdan/skyboard/internal/flight"
)

func openTest(t *testing.T, now func() time.Time) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"), WithNow(now))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreOpenClose(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestRecordAndRecent(t *testing.T) {
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	store := openTest(t, func() time.Time { return now })
	ctx := context.Background()

	if err := store.RecordSightings(ctx, []flight.Flight{
		{Callsign: "ba1 ", AircraftType: "A320", Origin: "GLA", Destination: "LHR", Altitude: 3200, DistanceKm: 2.4},
	}); err != nil {
		t.Fatalf("RecordSightings() failed: %v", err)
	}
	now = now.Add(time.Minute)
	if err := store.RecordSightings(ctx, []flight.Flight{{Hex: "4ca1fa", Altitude: 900}}); err != nil {
		t.Fatalf("RecordSightings() failed: %v", err)
	}

	got, err := store.RecentSightings(ctx, 10)
	if err != nil {
		t.Fatalf("RecentSightings() failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 sightings, got %d", len(got))
	}
	if got[0].Callsign != "4CA1FA" || !got[0].SeenAt.Equal(now) {
		t.Errorf("newest sighting = %+v", got[0])
	}
	if got[1].Callsign != "BA1" || got[1].Destination != "LHR" || got[1].DistanceKm != 2.4 {
		t.Errorf("oldest sighting = %+v", got[1])
	}

	limited, err := store.RecentSightings(ctx, 1)
	if err != nil {
		t.Fatalf("RecentSightings() failed: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("Expected limit 1, got %d", len(limited))
	}
}

func TestRecordEmptyBatch(t *testing.T) {
	store := openTest(t, time.Now)
	if err := store.RecordSightings(context.Background(), nil); err != nil {
		t.Fatalf("RecordSightings(nil) failed: %v", err)
	}
	got, err := store.RecentSightings(context.Background(), 0)
	if err != nil {
		t.Fatalf("RecentSightings() failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Expected no sightings, got %d", len(got))
	}
}

func TestTopCallsigns(t *testing.T) {
	store := openTest(t, time.Now)
	ctx := context.Background()

	batches := [][]flight.Flight{
		{{Callsign: "BA1"}, {Callsign: "EZY22"}},
		{{Callsign: "BA1"}},
		{{Callsign: "BA1"}, {Callsign: "LM3"}, {Callsign: "EZY22"}},
	}
	for _, b := range batches {
		if err := store.RecordSightings(ctx, b); err != nil {
			t.Fatalf("RecordSightings() failed: %v", err)
		}
	}

	top, err := store.TopCallsigns(ctx, 2)
	if err != nil {
		t.Fatalf("TopCallsigns() failed: %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("Expected 2 callsigns, got %d", len(top))
	}
	if top[0].Callsign != "BA1" || top[0].Count != 3 {
		t.Errorf("top[0] = %+v", top[0])
	}
	if top[1].Callsign != "EZY22" || top[1].Count != 2 {
		t.Errorf("top[1] = %+v", top[1])
	}
}

func TestRecordCancelledContext(t *testing.T) {
	store := openTest(t, time.Now)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := store.RecordSightings(ctx, []flight.Flight{{Callsign: "BA1"}}); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestStorePersistence(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	store1, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if err := store1.RecordSightings(ctx, []flight.Flight{{Callsign: "BA1"}}); err != nil {
		t.Fatalf("RecordSightings() failed: %v", err)
	}
	store1.Close()

	store2, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store2.Close()

	got, err := store2.RecentSightings(ctx, 10)
	if err != nil {
		t.Fatalf("RecentSightings() failed: %v", err)
	}
	if len(got) != 1 || got[0].Callsign != "BA1" {
		t.Errorf("Expected persisted BA1, got %+v", got)
	}
}
