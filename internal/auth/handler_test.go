package auth

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/producemart/wholesale-api/internal/domain"
)

type stubUserStore struct {
	users map[string]*domain.User
}

func (s *stubUserStore) Create(_ context.Context, u *domain.User, _ string) error {
	u.ID = "new-user"
	s.users[u.ID] = u
	return nil
}

func (s *stubUserStore) GetByEmail(context.Context, string) (*domain.User, string, error) {
	return nil, "", nil
}

func (s *stubUserStore) GetByID(_ context.Context, id string) (*domain.User, error) {
	return s.users[id], nil
}

func asPrincipal(r *http.Request, role string) *http.Request {
	p := Principal{ID: "caller-1", Role: role, Email: "caller@example.com"}
	return r.WithContext(WithPrincipal(r.Context(), p))
}

func TestHandleGetUser(t *testing.T) {
	store := &stubUserStore{users: map[string]*domain.User{
		"buyer-1": {ID: "buyer-1", Name: "Deli Buyer", Role: domain.RoleBuyer},
		"admin-1": {ID: "admin-1", Name: "Warehouse Admin", Role: domain.RoleAdmin},
	}}
	h := NewHandler(store, []byte("secret"), slog.New(slog.NewTextHandler(io.Discard, nil)))

	get := func(t *testing.T, id, role string) *httptest.ResponseRecorder {
		t.Helper()
		req := httptest.NewRequest(http.MethodGet, "/api/users/"+id, nil)
		req.SetPathValue("id", id)
		rec := httptest.NewRecorder()
		h.HandleGetUser(rec, asPrincipal(req, role))
		return rec
	}

	t.Run("buyer profile visible to buyers", func(t *testing.T) {
		if rec := get(t, "buyer-1", domain.RoleBuyer); rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("admin profile hidden from buyers", func(t *testing.T) {
		if rec := get(t, "admin-1", domain.RoleBuyer); rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
	})

	t.Run("admin profile visible to admins", func(t *testing.T) {
		if rec := get(t, "admin-1", domain.RoleAdmin); rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("unknown id returns 404", func(t *testing.T) {
		if rec := get(t, "missing", domain.RoleBuyer); rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("requires authentication", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/users/buyer-1", nil)
		req.SetPathValue("id", "buyer-1")
		rec := httptest.NewRecorder()
		h.HandleGetUser(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}
