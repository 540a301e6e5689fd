package promotions

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/producemart/wholesale-api/internal/domain"
)

type stubStore struct {
	created    *domain.Promotion
	lastFilter Filter
	promos     []domain.Promotion
}

func (s *stubStore) List(_ context.Context, f Filter) ([]domain.Promotion, error) {
	s.lastFilter = f
	return s.promos, nil
}

func (s *stubStore) GetByID(_ context.Context, id string) (*domain.Promotion, error) {
	for i := range s.promos {
		if s.promos[i].ID == id {
			return &s.promos[i], nil
		}
	}
	return nil, &domain.NotFoundError{Entity: "promotion", ID: id}
}

func (s *stubStore) Create(_ context.Context, p *domain.Promotion) error {
	p.ID = "promo-1"
	s.created = p
	return nil
}

func (s *stubStore) SetActive(_ context.Context, id string, active bool) (*domain.Promotion, error) {
	p, err := s.GetByID(context.Background(), id)
	if err != nil {
		return nil, err
	}
	p.IsActive = active
	return p, nil
}

func newTestHandler(store *stubStore) *Handler {
	return NewHandler(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestHandleCreate(t *testing.T) {
	t.Run("creates active promotion", func(t *testing.T) {
		store := &stubStore{}
		h := newTestHandler(store)

		body := `{"name":"Morning special","type":"DAILY","discountPercent":15}`
		rec := httptest.NewRecorder()
		h.HandleCreate(rec, httptest.NewRequest(http.MethodPost, "/api/promotions", strings.NewReader(body)))

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if store.created == nil || !store.created.IsActive {
			t.Errorf("expected promotion created active, got %+v", store.created)
		}
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		store := &stubStore{}
		h := newTestHandler(store)

		body := `{"name":"x","type":"HOURLY","discountPercent":5}`
		rec := httptest.NewRecorder()
		h.HandleCreate(rec, httptest.NewRequest(http.MethodPost, "/api/promotions", strings.NewReader(body)))

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		if store.created != nil {
			t.Errorf("store should not be called")
		}
	})

	t.Run("rejects discount over 100", func(t *testing.T) {
		store := &stubStore{}
		h := newTestHandler(store)

		body := `{"name":"x","type":"WEEKLY","discountPercent":150}`
		rec := httptest.NewRecorder()
		h.HandleCreate(rec, httptest.NewRequest(http.MethodPost, "/api/promotions", strings.NewReader(body)))

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("rejects malformed date", func(t *testing.T) {
		store := &stubStore{}
		h := newTestHandler(store)

		body := `{"name":"x","type":"DAILY","discountPercent":5,"startDate":"03/10/2026"}`
		rec := httptest.NewRecorder()
		h.HandleCreate(rec, httptest.NewRequest(http.MethodPost, "/api/promotions", strings.NewReader(body)))

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestHandleList(t *testing.T) {
	t.Run("passes filters through", func(t *testing.T) {
		store := &stubStore{}
		h := newTestHandler(store)

		rec := httptest.NewRecorder()
		h.HandleList(rec, httptest.NewRequest(http.MethodGet, "/api/promotions?type=DAILY&activeOnly=true", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if store.lastFilter.Type != domain.PromotionDaily || !store.lastFilter.ActiveOnly {
			t.Errorf("unexpected filter: %+v", store.lastFilter)
		}
	})

	t.Run("rejects unknown type filter", func(t *testing.T) {
		store := &stubStore{}
		h := newTestHandler(store)

		rec := httptest.NewRecorder()
		h.HandleList(rec, httptest.NewRequest(http.MethodGet, "/api/promotions?type=YEARLY", nil))

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("empty result is a JSON array", func(t *testing.T) {
		store := &stubStore{promos: []domain.Promotion{}}
		h := newTestHandler(store)

		rec := httptest.NewRecorder()
		h.HandleList(rec, httptest.NewRequest(http.MethodGet, "/api/promotions", nil))

		if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
			t.Errorf("expected [], got %s", got)
		}
	})
}

func TestHandleActivate(t *testing.T) {
	store := &stubStore{promos: []domain.Promotion{
		{ID: "promo-1", Name: "Weekend deal", Type: domain.PromotionWeekly, IsActive: false},
	}}
	h := newTestHandler(store)

	req := httptest.NewRequest(http.MethodPost, "/api/promotions/promo-1/activate", nil)
	req.SetPathValue("id", "promo-1")
	rec := httptest.NewRecorder()

	h.HandleActivate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got domain.Promotion
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !got.IsActive {
		t.Errorf("expected promotion active")
	}
}
