package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseStatus(t *testing.T) {
	t.Run("accepts every lifecycle status", func(t *testing.T) {
		for _, s := range []string{"RECEIVED", "PICKING", "DELIVERED", "CANCELLED"} {
			got, err := ParseStatus(s)
			if err != nil {
				t.Errorf("ParseStatus(%q) returned error: %v", s, err)
			}
			if string(got) != s {
				t.Errorf("ParseStatus(%q) = %q", s, got)
			}
		}
	})

	t.Run("rejects unknown values", func(t *testing.T) {
		for _, s := range []string{"SHIPPED", "received", "", "DONE"} {
			if _, err := ParseStatus(s); err == nil {
				t.Errorf("ParseStatus(%q) did not fail", s)
			}
		}
	})
}

func TestCanTransition(t *testing.T) {
	allowed := [][2]Status{
		{StatusReceived, StatusPicking},
		{StatusReceived, StatusCancelled},
		{StatusPicking, StatusDelivered},
		{StatusPicking, StatusCancelled},
	}
	for _, tr := range allowed {
		if !CanTransition(tr[0], tr[1]) {
			t.Errorf("expected %s -> %s to be allowed", tr[0], tr[1])
		}
	}

	denied := [][2]Status{
		{StatusReceived, StatusDelivered},
		{StatusDelivered, StatusPicking},
		{StatusDelivered, StatusCancelled},
		{StatusCancelled, StatusReceived},
		{StatusPicking, StatusReceived},
		{StatusPicking, StatusPicking},
	}
	for _, tr := range denied {
		if CanTransition(tr[0], tr[1]) {
			t.Errorf("expected %s -> %s to be rejected", tr[0], tr[1])
		}
	}
}

func TestOrderItemLineTotal(t *testing.T) {
	item := OrderItem{Quantity: 7, UnitPrice: decimal.RequireFromString("2.40")}
	if got := item.LineTotal(); !got.Equal(decimal.RequireFromString("16.80")) {
		t.Errorf("LineTotal = %s, want 16.80", got)
	}
}

func TestInsufficientStockErrorMessage(t *testing.T) {
	err := &InsufficientStockError{ProductName: "Bananas", Requested: 12, Available: 4, Unit: "kg"}
	want := `Not enough stock for "Bananas". Requested 12 kg, available 4 kg.`
	if err.Error() != want {
		t.Errorf("message = %q, want %q", err.Error(), want)
	}
}
