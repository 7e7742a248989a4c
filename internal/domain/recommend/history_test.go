package recommend

import (
	"context"
	"testing"
	"time"

	"github.com/rafaelgorayb/barduino/internal/domain/catalog"
)

func TestHistoryStore_RecordAndRecent(t *testing.T) {
	_, db := newTestCatalog(t, catalog.Drink{ID: "d1", Name: "Mojito", HasAlcohol: true})
	history := NewHistoryStore(db)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	completed := Snapshot{
		DeviceID: "kiosk-1",
		Phase:    PhaseCompleted,
		Recommendations: []Recommendation{
			{Drink: catalog.Drink{ID: "d1", Name: "Mojito"}, Explanation: "fresh"},
		},
		UpdatedAt: base,
	}
	failed := Snapshot{
		DeviceID:  "kiosk-1",
		Phase:     PhaseFailed,
		Reason:    ReasonEmbeddingUnavailable,
		UpdatedAt: base.Add(time.Minute),
	}

	if err := history.Record(ctx, completed); err != nil {
		t.Fatalf("Record completed failed: %v", err)
	}
	if err := history.Record(ctx, failed); err != nil {
		t.Fatalf("Record failed failed: %v", err)
	}

	records, err := history.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	// Newest first.
	if records[0].Phase != PhaseFailed || records[0].Reason != ReasonEmbeddingUnavailable {
		t.Errorf("unexpected newest record: %+v", records[0])
	}
	if records[0].PrimaryDrinkID != "" {
		t.Errorf("failed session must have no primary drink, got %q", records[0].PrimaryDrinkID)
	}
	if records[1].Phase != PhaseCompleted || records[1].PrimaryDrinkID != "d1" {
		t.Errorf("unexpected completed record: %+v", records[1])
	}
	if records[1].ID == records[0].ID {
		t.Error("records must have distinct ids")
	}
}

func TestHistoryStore_RecentLimit(t *testing.T) {
	_, db := newTestCatalog(t)
	history := NewHistoryStore(db)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		snap := Snapshot{
			DeviceID:  "kiosk-1",
			Phase:     PhaseFailed,
			Reason:    ReasonRecommendationUnavailable,
			UpdatedAt: base.Add(time.Duration(i) * time.Second),
		}
		if err := history.Record(ctx, snap); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	records, err := history.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(records) != 3 {
		t.Errorf("expected limit of 3, got %d", len(records))
	}
}
