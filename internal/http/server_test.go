package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"spendwise/internal/core"
	"spendwise/internal/identity"
	"spendwise/internal/services"
	"spendwise/internal/storage"
)

const testOwner = "user-1"

func newTestServer(t *testing.T) *Server {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })

	budget := core.NewBudgetConfig()
	return NewServer(":0",
		services.NewTransactionService(repo, nil),
		services.NewCategoryService(repo, nil),
		services.NewReportService(repo, budget),
		identity.HeaderResolver{})
}

func doJSON(t *testing.T, srv *Server, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(identity.OwnerHeader, testOwner)
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)

	var env envelope
	if rr.Body.Len() > 0 {
		if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode envelope from %q: %v", rr.Body.String(), err)
		}
	}
	return rr, env
}

func seedCategories(t *testing.T, srv *Server) {
	t.Helper()
	rr, _ := doJSON(t, srv, http.MethodPost, "/api/categories/seed", "")
	if rr.Code != 200 {
		t.Fatalf("seed status=%d body=%s", rr.Code, rr.Body.String())
	}
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		srv.Handler.ServeHTTP(rr, req)
		if rr.Code != 200 {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
	}
}

func TestMissingOwnerHeader(t *testing.T) {
	srv := newTestServer(t)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/transactions", nil)
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without owner header, got %d", rr.Code)
	}
	var env envelope
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Success {
		t.Fatalf("expected success=false")
	}
}

func TestTransactionLifecycle(t *testing.T) {
	srv := newTestServer(t)
	seedCategories(t, srv)

	rr, env := doJSON(t, srv, http.MethodPost, "/api/transactions",
		`{"type":"expense","amount":"42.50","category":"Food & Dining","description":"weekly groceries","date":"2024-03-05"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status=%d body=%s", rr.Code, rr.Body.String())
	}
	created, ok := env.Data.(map[string]any)
	if !ok {
		t.Fatalf("expected object data, got %T", env.Data)
	}
	if created["amount_cents"].(float64) != 4250 {
		t.Fatalf("amount_cents=%v", created["amount_cents"])
	}
	if created["icon"].(string) == "" {
		t.Fatalf("expected derived icon")
	}
	id := int64(created["id"].(float64))

	rr, env = doJSON(t, srv, http.MethodGet, fmt.Sprintf("/api/transactions/%d", id), "")
	if rr.Code != 200 {
		t.Fatalf("get status=%d", rr.Code)
	}

	rr, env = doJSON(t, srv, http.MethodPut, fmt.Sprintf("/api/transactions/%d", id),
		`{"type":"expense","amount":"50.00","category":"Food & Dining","description":"monthly groceries","date":"2024-03-06"}`)
	if rr.Code != 200 {
		t.Fatalf("update status=%d body=%s", rr.Code, rr.Body.String())
	}
	updated := env.Data.(map[string]any)
	if updated["amount_cents"].(float64) != 5000 {
		t.Fatalf("updated amount_cents=%v", updated["amount_cents"])
	}

	// Partial update: absent fields keep their stored values.
	rr, env = doJSON(t, srv, http.MethodPut, fmt.Sprintf("/api/transactions/%d", id),
		`{"amount":"75.00"}`)
	if rr.Code != 200 {
		t.Fatalf("partial update status=%d body=%s", rr.Code, rr.Body.String())
	}
	patched := env.Data.(map[string]any)
	if patched["amount_cents"].(float64) != 7500 {
		t.Fatalf("patched amount_cents=%v", patched["amount_cents"])
	}
	if patched["description"].(string) != "monthly groceries" {
		t.Fatalf("partial update lost description: %v", patched["description"])
	}

	rr, env = doJSON(t, srv, http.MethodGet, "/api/transactions", "")
	if rr.Code != 200 {
		t.Fatalf("list status=%d", rr.Code)
	}
	list := env.Data.(map[string]any)
	if list["total"].(float64) != 1 {
		t.Fatalf("total=%v", list["total"])
	}

	rr, _ = doJSON(t, srv, http.MethodDelete, fmt.Sprintf("/api/transactions/%d", id), "")
	if rr.Code != 200 {
		t.Fatalf("delete status=%d", rr.Code)
	}
	rr, _ = doJSON(t, srv, http.MethodGet, fmt.Sprintf("/api/transactions/%d", id), "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rr.Code)
	}
}

func TestTransactionValidation(t *testing.T) {
	srv := newTestServer(t)
	seedCategories(t, srv)

	cases := []struct {
		name string
		body string
		want int
	}{
		{"bad json", `{`, 400},
		{"bad amount", `{"type":"expense","amount":"abc","category":"Food & Dining","description":"x","date":"2024-03-05"}`, 422},
		{"zero amount", `{"type":"expense","amount":"0","category":"Food & Dining","description":"x","date":"2024-03-05"}`, 422},
		{"bad date", `{"type":"expense","amount":"1.00","category":"Food & Dining","description":"x","date":"05/03/2024"}`, 400},
		{"empty description", `{"type":"expense","amount":"1.00","category":"Food & Dining","description":"","date":"2024-03-05"}`, 422},
		{"bad type", `{"type":"transfer","amount":"1.00","category":"Food & Dining","description":"x","date":"2024-03-05"}`, 422},
		{"type mismatch", `{"type":"income","amount":"1.00","category":"Food & Dining","description":"x","date":"2024-03-05"}`, 422},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr, env := doJSON(t, srv, http.MethodPost, "/api/transactions", tc.body)
			if rr.Code != tc.want {
				t.Fatalf("status=%d want %d body=%s", rr.Code, tc.want, rr.Body.String())
			}
			if env.Success {
				t.Fatalf("expected success=false")
			}
		})
	}
}

func TestCategoryConflicts(t *testing.T) {
	srv := newTestServer(t)

	rr, env := doJSON(t, srv, http.MethodPost, "/api/categories",
		`{"name":"Hobby","icon":"🎨","type":"expense"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status=%d body=%s", rr.Code, rr.Body.String())
	}
	created := env.Data.(map[string]any)
	if created["color"].(string) != core.DefaultCategoryColor {
		t.Fatalf("expected default color, got %v", created["color"])
	}
	id := int64(created["id"].(float64))

	// Case-insensitive duplicate among active categories.
	rr, _ = doJSON(t, srv, http.MethodPost, "/api/categories",
		`{"name":"hobby","icon":"🎨","type":"expense"}`)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409 duplicate, got %d", rr.Code)
	}

	rr, _ = doJSON(t, srv, http.MethodPost, "/api/transactions",
		`{"type":"expense","amount":"5.00","category":"Hobby","description":"paint","date":"2024-03-05"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create tx status=%d", rr.Code)
	}

	rr, env = doJSON(t, srv, http.MethodDelete, fmt.Sprintf("/api/categories/%d", id), "")
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409 for referenced category, got %d", rr.Code)
	}
	data := env.Data.(map[string]any)
	if data["transaction_count"].(float64) != 1 {
		t.Fatalf("transaction_count=%v", data["transaction_count"])
	}

	rr, _ = doJSON(t, srv, http.MethodDelete, "/api/transactions", "")
	if rr.Code != 200 {
		t.Fatalf("reset status=%d", rr.Code)
	}
	rr, _ = doJSON(t, srv, http.MethodDelete, fmt.Sprintf("/api/categories/%d", id), "")
	if rr.Code != 200 {
		t.Fatalf("delete after reset status=%d body=%s", rr.Code, rr.Body.String())
	}
}

func TestSeedIdempotent(t *testing.T) {
	srv := newTestServer(t)
	seedCategories(t, srv)
	seedCategories(t, srv)

	_, env := doJSON(t, srv, http.MethodGet, "/api/categories", "")
	list := env.Data.([]any)
	if len(list) != 8 {
		t.Fatalf("expected 8 seeded categories, got %d", len(list))
	}
}

func TestReportEndpoints(t *testing.T) {
	srv := newTestServer(t)
	seedCategories(t, srv)

	for _, body := range []string{
		`{"type":"income","amount":"1000.00","category":"Income","description":"salary","date":"2024-03-01"}`,
		`{"type":"expense","amount":"100.00","category":"Food & Dining","description":"groceries","date":"2024-03-05"}`,
		`{"type":"expense","amount":"50.00","category":"Transportation","description":"fuel","date":"2024-03-10"}`,
	} {
		rr, _ := doJSON(t, srv, http.MethodPost, "/api/transactions", body)
		if rr.Code != http.StatusCreated {
			t.Fatalf("seed tx status=%d", rr.Code)
		}
	}

	rr, env := doJSON(t, srv, http.MethodGet, "/api/transactions/stats/summary?year=2024&month=3", "")
	if rr.Code != 200 {
		t.Fatalf("summary status=%d", rr.Code)
	}
	summary := env.Data.(map[string]any)
	if summary["income_cents"].(float64) != 100000 || summary["expense_cents"].(float64) != 15000 {
		t.Fatalf("summary=%v", summary)
	}
	if summary["net_cents"].(float64) != 85000 {
		t.Fatalf("net_cents=%v", summary["net_cents"])
	}

	rr, env = doJSON(t, srv, http.MethodGet, "/api/reports/monthly?year=2024", "")
	if rr.Code != 200 {
		t.Fatalf("monthly status=%d", rr.Code)
	}
	series := env.Data.([]any)
	if len(series) != 12 {
		t.Fatalf("expected 12 points, got %d", len(series))
	}
	march := series[2].(map[string]any)
	if march["month"].(string) != "Mar" || march["amount_cents"].(float64) != 15000 {
		t.Fatalf("march=%v", march)
	}

	rr, env = doJSON(t, srv, http.MethodGet, "/api/reports/breakdown?year=2024&month=3", "")
	if rr.Code != 200 {
		t.Fatalf("breakdown status=%d", rr.Code)
	}
	breakdown := env.Data.([]any)
	if len(breakdown) != 2 {
		t.Fatalf("expected 2 breakdown entries, got %d", len(breakdown))
	}
	top := breakdown[0].(map[string]any)
	if top["name"].(string) != "Food & Dining" || top["percentage"].(float64) != 67 {
		t.Fatalf("top entry=%v", top)
	}

	rr, env = doJSON(t, srv, http.MethodGet, "/api/reports/progress?year=2024&month=3", "")
	if rr.Code != 200 {
		t.Fatalf("progress status=%d", rr.Code)
	}
	progress := env.Data.([]any)
	if len(progress) != 2 {
		t.Fatalf("expected 2 progress entries, got %d", len(progress))
	}
	first := progress[0].(map[string]any)
	if first["percent"].(float64) != 10 {
		t.Fatalf("percent=%v (total %v of ceiling %v)", first["percent"], first["total_cents"], first["ceiling_cents"])
	}
}

func TestReportPeriodValidation(t *testing.T) {
	srv := newTestServer(t)
	seedCategories(t, srv)

	bad := []string{
		"/api/reports/monthly?year=abc",
		"/api/reports/breakdown?month=0",
		"/api/reports/progress?month=13",
		"/api/transactions/stats/summary?year=20x4",
		"/api/transactions/stats/summary?month=13",
	}
	for _, path := range bad {
		rr, env := doJSON(t, srv, http.MethodGet, path, "")
		if rr.Code != http.StatusBadRequest {
			t.Errorf("GET %s status=%d, want 400", path, rr.Code)
		}
		if env.Success {
			t.Errorf("GET %s success=true, want false", path)
		}
	}

	// Explicit well-formed periods and omitted ones both pass.
	for _, path := range []string{
		"/api/reports/progress?year=2024&month=3",
		"/api/transactions/stats/summary",
	} {
		rr, _ := doJSON(t, srv, http.MethodGet, path, "")
		if rr.Code != http.StatusOK {
			t.Errorf("GET %s status=%d, want 200", path, rr.Code)
		}
	}
}

func TestListFilters(t *testing.T) {
	srv := newTestServer(t)
	seedCategories(t, srv)

	for _, body := range []string{
		`{"type":"expense","amount":"10.00","category":"Food & Dining","description":"groceries","date":"2024-03-01"}`,
		`{"type":"expense","amount":"20.00","category":"Transportation","description":"fuel","date":"2024-04-01"}`,
	} {
		rr, _ := doJSON(t, srv, http.MethodPost, "/api/transactions", body)
		if rr.Code != http.StatusCreated {
			t.Fatalf("seed tx status=%d", rr.Code)
		}
	}

	rr, env := doJSON(t, srv, http.MethodGet, "/api/transactions?from=2024-03-01&to=2024-03-31", "")
	if rr.Code != 200 {
		t.Fatalf("filtered list status=%d", rr.Code)
	}
	list := env.Data.(map[string]any)
	if list["total"].(float64) != 1 {
		t.Fatalf("total=%v", list["total"])
	}

	rr, env = doJSON(t, srv, http.MethodGet, "/api/transactions?search=fuel", "")
	if rr.Code != 200 {
		t.Fatalf("search list status=%d", rr.Code)
	}
	list = env.Data.(map[string]any)
	if list["total"].(float64) != 1 {
		t.Fatalf("search total=%v", list["total"])
	}

	rr, _ = doJSON(t, srv, http.MethodGet, "/api/transactions?type=transfer", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad type filter, got %d", rr.Code)
	}
}

func TestOwnerIsolation(t *testing.T) {
	srv := newTestServer(t)
	seedCategories(t, srv)

	rr, env := doJSON(t, srv, http.MethodPost, "/api/transactions",
		`{"type":"expense","amount":"10.00","category":"Food & Dining","description":"groceries","date":"2024-03-01"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status=%d", rr.Code)
	}
	id := int64(env.Data.(map[string]any)["id"].(float64))

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/transactions/%d", id), nil)
	req.Header.Set(identity.OwnerHeader, "someone-else")
	other := httptest.NewRecorder()
	srv.Handler.ServeHTTP(other, req)
	if other.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign owner, got %d", other.Code)
	}
}
