package cutoff

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/producemart/wholesale-api/internal/domain"
)

func TestEvaluateBoundaries(t *testing.T) {
	policy := NewPolicy(16, 0)
	loc := time.UTC

	t.Run("next day before cutoff is accepted", func(t *testing.T) {
		now := time.Date(2026, 3, 10, 15, 59, 0, 0, loc)
		if err := policy.Evaluate(now, "2026-03-11"); err != nil {
			t.Errorf("expected accept, got %v", err)
		}
	})

	t.Run("next day exactly at cutoff is rejected", func(t *testing.T) {
		now := time.Date(2026, 3, 10, 16, 0, 0, 0, loc)
		err := policy.Evaluate(now, "2026-03-11")
		var ce *domain.CutoffError
		if !errors.As(err, &ce) {
			t.Fatalf("expected CutoffError, got %v", err)
		}
		if !strings.Contains(ce.Message, "16:00") {
			t.Errorf("cutoff message should carry the configured time: %q", ce.Message)
		}
	})

	t.Run("next day after cutoff is rejected", func(t *testing.T) {
		now := time.Date(2026, 3, 10, 16, 1, 0, 0, loc)
		var ce *domain.CutoffError
		if err := policy.Evaluate(now, "2026-03-11"); !errors.As(err, &ce) {
			t.Fatalf("expected CutoffError, got %v", err)
		}
	})

	t.Run("same day is rejected at any time", func(t *testing.T) {
		for _, hour := range []int{0, 8, 15, 23} {
			now := time.Date(2026, 3, 10, hour, 0, 0, 0, loc)
			var ce *domain.CutoffError
			if err := policy.Evaluate(now, "2026-03-10"); !errors.As(err, &ce) {
				t.Errorf("hour %d: expected CutoffError, got %v", hour, err)
			}
		}
	})

	t.Run("past date is rejected", func(t *testing.T) {
		now := time.Date(2026, 3, 10, 9, 0, 0, 0, loc)
		var ce *domain.CutoffError
		if err := policy.Evaluate(now, "2026-03-01"); !errors.As(err, &ce) {
			t.Fatalf("expected CutoffError, got %v", err)
		}
	})

	t.Run("two or more days out ignores the cutoff", func(t *testing.T) {
		now := time.Date(2026, 3, 10, 23, 59, 0, 0, loc)
		if err := policy.Evaluate(now, "2026-03-12"); err != nil {
			t.Errorf("expected accept, got %v", err)
		}
	})
}

func TestEvaluateMalformedDate(t *testing.T) {
	policy := NewPolicy(16, 0)
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	for _, bad := range []string{"", "tomorrow", "2026-13-40", "10-03-2026"} {
		err := policy.Evaluate(now, bad)
		var ve *domain.ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("%q: expected ValidationError, got %v", bad, err)
		}
		var ce *domain.CutoffError
		if errors.As(err, &ce) {
			t.Errorf("%q: malformed date must not surface as a cutoff rejection", bad)
		}
	}
}

func TestWindowFormatting(t *testing.T) {
	if got := NewPolicy(9, 5).Window(); got != "09:05" {
		t.Errorf("Window = %q, want 09:05", got)
	}
	if got := NewPolicy(16, 0).Window(); got != "16:00" {
		t.Errorf("Window = %q, want 16:00", got)
	}
}
