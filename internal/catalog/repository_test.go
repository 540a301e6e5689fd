package catalog

import (
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"
)

func TestBuildUpdate(t *testing.T) {
	t.Run("empty patch produces no query", func(t *testing.T) {
		query, args := buildUpdate("p1", ProductUpdate{})
		if query != "" || args != nil {
			t.Fatalf("expected empty query, got %q with %v", query, args)
		}
	})

	t.Run("single field", func(t *testing.T) {
		name := "Hass Avocado"
		query, args := buildUpdate("p1", ProductUpdate{Name: &name})

		want := "UPDATE products SET name = $1 WHERE id = $2"
		if query != want {
			t.Errorf("query mismatch:\n got %q\nwant %q", query, want)
		}
		if len(args) != 2 || args[0] != name || args[1] != "p1" {
			t.Errorf("unexpected args: %v", args)
		}
	})

	t.Run("placeholders stay in sync across multiple fields", func(t *testing.T) {
		price := decimal.NewFromFloat(3.75)
		stock := 120
		active := false
		query, args := buildUpdate("p1", ProductUpdate{Price: &price, StockQty: &stock, IsActive: &active})

		want := "UPDATE products SET price = $1, stock_qty = $2, is_active = $3 WHERE id = $4"
		if query != want {
			t.Errorf("query mismatch:\n got %q\nwant %q", query, want)
		}
		if len(args) != 4 {
			t.Fatalf("expected 4 args, got %d", len(args))
		}
		if args[3] != "p1" {
			t.Errorf("id must be the last arg, got %v", args[3])
		}
	})

	t.Run("empty string patches map to NULL", func(t *testing.T) {
		grade := ""
		_, args := buildUpdate("p1", ProductUpdate{Grade: &grade})
		ns, ok := args[0].(sql.NullString)
		if !ok {
			t.Fatalf("expected sql.NullString, got %T", args[0])
		}
		if ns.Valid {
			t.Errorf("expected NULL for empty string, got %q", ns.String)
		}
	})
}
