package progress_test

import (
	"errors"
	"testing"

	"tautx/internal/progress"
)

func percentPtr(v float64) *float64 { return &v }

func msPtr(v int64) *int64 { return &v }

func TestEffectivePercentPrefersDirectValue(t *testing.T) {
	t.Parallel()

	event := progress.PlayEvent{
		CompletionPercent: percentPtr(42.5),
		ViewOffsetMs:      msPtr(1),
		DurationMs:        msPtr(1000),
	}
	got, err := progress.EffectivePercent(event)
	if err != nil {
		t.Fatalf("EffectivePercent: %v", err)
	}
	if got != 42.5 {
		t.Fatalf("expected direct percent 42.5 unchanged, got %v", got)
	}
}

func TestEffectivePercentDerivesFromOffsetAndClamps(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		offset int64
		dur    int64
		want   float64
	}{
		{"half", 1_500_000, 3_000_000, 50},
		{"over", 4_000_000, 3_000_000, 100},
		{"negative", -5, 3_000_000, 0},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			event := progress.PlayEvent{ViewOffsetMs: msPtr(tc.offset), DurationMs: msPtr(tc.dur)}
			got, err := progress.EffectivePercent(event)
			if err != nil {
				t.Fatalf("EffectivePercent: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestEffectivePercentRejectsUnusableEvents(t *testing.T) {
	t.Parallel()

	events := []progress.PlayEvent{
		{},
		{ViewOffsetMs: msPtr(500)},
		{ViewOffsetMs: msPtr(500), DurationMs: msPtr(0)},
		{ViewOffsetMs: msPtr(500), DurationMs: msPtr(-10)},
	}
	for i, event := range events {
		if _, err := progress.EffectivePercent(event); !errors.Is(err, progress.ErrInvalidEvent) {
			t.Fatalf("event %d: expected ErrInvalidEvent, got %v", i, err)
		}
	}
}
