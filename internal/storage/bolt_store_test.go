package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/samvad-hq/moku-rest-client/internal/domain"
)

func testCapture(id string) domain.Capture {
	return domain.Capture{
		ID:           id,
		DeviceName:   "Lab Moku",
		SerialNumber: "2133",
		Slot:         "slot1",
		CapturedAt:   time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC),
		Time:         []float64{-0.001, 0, 0.001},
		Channels:     map[string][]float64{"ch1": {0.1, 0.2, 0.3}},
	}
}

func TestBoltStoreSavesAndExpiresCaptures(t *testing.T) {
	dir := t.TempDir()
	opts := Options{
		CaptureTTL:      1 * time.Second,
		CleanupInterval: 1 * time.Second,
	}

	storeRaw, err := openBolt(filepath.Join(dir, "frames.db"), opts)
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	store := storeRaw.(*boltStore)
	defer store.Close()

	_, found, err := store.Capture("c1")
	if err != nil || found {
		t.Fatalf("expected missing capture, found=%v err=%v", found, err)
	}

	if err := store.SaveCapture(testCapture("c1")); err != nil {
		t.Fatalf("SaveCapture: %v", err)
	}

	got, found, err := store.Capture("c1")
	if err != nil || !found {
		t.Fatalf("expected stored capture, found=%v err=%v", found, err)
	}
	if got.SerialNumber != "2133" || len(got.Channels["ch1"]) != 3 || got.Channels["ch1"][1] != 0.2 {
		t.Fatalf("unexpected capture %+v", got)
	}

	// Fast-forward cleanup cadence and trigger expiry.
	store.lastCleanup.Store(time.Now().Add(-2 * time.Second).Unix())
	time.Sleep(1100 * time.Millisecond)

	_, found, err = store.Capture("c1")
	if err != nil {
		t.Fatalf("Capture after expiry: %v", err)
	}
	if found {
		t.Fatalf("expected entry to expire and be removed")
	}
}

func TestBoltStoreRejectsEmptyID(t *testing.T) {
	store, err := NewStore("bbolt", filepath.Join(t.TempDir(), "nested", "frames.db"), Options{})
	if err != nil {
		t.Fatalf("NewStore bbolt: %v", err)
	}
	defer store.Close()

	if err := store.SaveCapture(domain.Capture{}); err == nil {
		t.Fatalf("expected error for empty capture id")
	}
}

func TestNewStoreSupportsNoop(t *testing.T) {
	store, err := NewStore("none", "", Options{})
	if err != nil {
		t.Fatalf("NewStore none: %v", err)
	}
	if err := store.SaveCapture(testCapture("x")); err != nil {
		t.Fatalf("noop store SaveCapture: %v", err)
	}
	if _, found, _ := store.Capture("x"); found {
		t.Fatalf("noop store must not find captures")
	}
}

func TestNewStoreRejectsUnknownType(t *testing.T) {
	if _, err := NewStore("redis", "", Options{}); err == nil {
		t.Fatalf("expected error for unsupported type")
	}
	if _, err := NewStore("bbolt", " ", Options{}); err == nil {
		t.Fatalf("expected error for missing bbolt path")
	}
}
