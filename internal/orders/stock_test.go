package orders

import (
	"errors"
	"testing"

	"github.com/lib/pq"

	"github.com/producemart/wholesale-api/internal/domain"
)

func TestLockOrder(t *testing.T) {
	t.Run("sorts indexes by product id", func(t *testing.T) {
		items := []LineInput{
			{ProductID: "prod-c", Quantity: 1},
			{ProductID: "prod-a", Quantity: 2},
			{ProductID: "prod-b", Quantity: 3},
		}
		got := lockOrder(items)
		want := []int{1, 2, 0}
		if len(got) != len(want) {
			t.Fatalf("expected %d indexes, got %d", len(want), len(got))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("expected order %v, got %v", want, got)
			}
		}
	})

	t.Run("permutations lock the same product sequence", func(t *testing.T) {
		forward := []LineInput{
			{ProductID: "prod-a", Quantity: 1},
			{ProductID: "prod-b", Quantity: 1},
		}
		reverse := []LineInput{
			{ProductID: "prod-b", Quantity: 1},
			{ProductID: "prod-a", Quantity: 1},
		}

		sequence := func(items []LineInput) []string {
			ids := make([]string, 0, len(items))
			for _, idx := range lockOrder(items) {
				ids = append(ids, items[idx].ProductID)
			}
			return ids
		}

		a, b := sequence(forward), sequence(reverse)
		for i := range a {
			if a[i] != b[i] {
				t.Fatalf("lock sequences diverge: %v vs %v", a, b)
			}
		}
	})

	t.Run("empty input", func(t *testing.T) {
		if got := lockOrder(nil); len(got) != 0 {
			t.Fatalf("expected no indexes, got %v", got)
		}
	})
}

func TestStorageErrDeadlock(t *testing.T) {
	err := storageErr("lock product row", &pq.Error{Code: "40P01"})
	if !errors.Is(err, domain.ErrUnavailable) {
		t.Fatalf("expected deadlock victim to map to ErrUnavailable, got %v", err)
	}

	err = storageErr("lock product row", &pq.Error{Code: "23505"})
	if errors.Is(err, domain.ErrUnavailable) {
		t.Fatalf("unique violation must not map to ErrUnavailable, got %v", err)
	}
}
