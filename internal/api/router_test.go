package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/panduhzz/FinancialTracker/internal/analytics"
	"github.com/panduhzz/FinancialTracker/internal/config"
	"github.com/panduhzz/FinancialTracker/internal/domain"
	"github.com/panduhzz/FinancialTracker/internal/finance"
	"github.com/panduhzz/FinancialTracker/internal/ledger"
	"github.com/panduhzz/FinancialTracker/internal/logger"
	"github.com/panduhzz/FinancialTracker/internal/recurring"
	"github.com/panduhzz/FinancialTracker/internal/store/memory"
)

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	accounts := memory.NewAccountStore()
	transactions := memory.NewTransactionStore()
	log := logger.NewWithWriter(testWriter{t})
	clock := domain.FixedClock{T: time.Date(2025, 6, 20, 12, 0, 0, 0, time.UTC)}
	led := ledger.New(accounts, log)
	mat := recurring.New(accounts, transactions, led, clock, log)
	agg := analytics.New(accounts, transactions, clock)
	svc := finance.NewService(accounts, transactions, led, mat, agg, clock, log)

	cfg := config.Default()
	cfg.Auth.DevHeaderFallback = true
	return NewRouter(svc, nil, &cfg, log)
}

func doJSON(t *testing.T, handler http.Handler, method, path, user string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding body failed: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("X-User-ID", user)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, into any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(into); err != nil {
		t.Fatalf("decoding response failed: %v (body %q)", err, rec.Body.String())
	}
}

func TestHealthEndpoint(t *testing.T) {
	rec := doJSON(t, testRouter(t), http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	decode(t, rec, &body)
	if body["status"] != "ok" {
		t.Errorf("status field = %q, want ok", body["status"])
	}
}

func TestAPIRequiresIdentity(t *testing.T) {
	rec := doJSON(t, testRouter(t), http.MethodGet, "/api/accounts", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 without credentials", rec.Code)
	}
}

func TestAccountLifecycleOverHTTP(t *testing.T) {
	router := testRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/accounts", "alice", map[string]any{
		"account_name": "Everyday",
		"account_type": "checking",
		"balance":      100,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	var created domain.Account
	decode(t, rec, &created)
	if created.ID == "" || created.Balance != 100 {
		t.Fatalf("created account = %+v", created)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/accounts", "alice", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var listing struct {
		Accounts []domain.Account `json:"accounts"`
		Count    int              `json:"count"`
	}
	decode(t, rec, &listing)
	if listing.Count != 1 || len(listing.Accounts) != 1 {
		t.Fatalf("listing = %+v, want one account", listing)
	}

	// Another user sees nothing.
	rec = doJSON(t, router, http.MethodGet, "/api/accounts", "bob", nil)
	decode(t, rec, &listing)
	if listing.Count != 0 {
		t.Errorf("bob sees %d accounts, want 0", listing.Count)
	}

	rec = doJSON(t, router, http.MethodDelete, "/api/accounts/"+created.ID, "alice", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
	rec = doJSON(t, router, http.MethodGet, "/api/accounts", "alice", nil)
	decode(t, rec, &listing)
	if listing.Count != 0 {
		t.Errorf("after delete alice sees %d accounts, want 0", listing.Count)
	}
}

func TestTransactionEndpoints(t *testing.T) {
	router := testRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/accounts", "alice", map[string]any{
		"account_name": "Everyday", "account_type": "checking",
	})
	var acc domain.Account
	decode(t, rec, &acc)

	rec = doJSON(t, router, http.MethodPost, "/api/transactions", "alice", map[string]any{
		"account_id":       acc.ID,
		"amount":           50,
		"transaction_type": "income",
		"transaction_date": "2025-06-01",
		"description":      "salary",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create tx status = %d, body %s", rec.Code, rec.Body.String())
	}
	var tx domain.Transaction
	decode(t, rec, &tx)
	if tx.Date != "2025-06-01" || tx.Amount != 50 {
		t.Fatalf("created tx = %+v", tx)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/accounts/"+acc.ID, "alice", nil)
	var after domain.Account
	decode(t, rec, &after)
	if after.Balance != 50 {
		t.Errorf("balance = %v, want 50", after.Balance)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/transactions", "alice", map[string]any{
		"account_id":       acc.ID,
		"amount":           10,
		"transaction_type": "loan",
		"transaction_date": "2025-06-01",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad type status = %d, want 400", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/transactions", "alice", map[string]any{
		"account_id":       "ghost",
		"amount":           10,
		"transaction_type": "income",
		"transaction_date": "2025-06-01",
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing account status = %d, want 404", rec.Code)
	}

	rec = doJSON(t, router, http.MethodDelete, "/api/transactions/"+tx.ID, "alice", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete tx status = %d", rec.Code)
	}
	rec = doJSON(t, router, http.MethodDelete, "/api/transactions/"+tx.ID, "alice", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("double delete status = %d, want 404", rec.Code)
	}
}

func TestRecurringListingEndpoint(t *testing.T) {
	router := testRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/accounts", "alice", map[string]any{
		"account_name": "Everyday", "account_type": "checking",
	})
	var acc domain.Account
	decode(t, rec, &acc)

	rec = doJSON(t, router, http.MethodPost, "/api/transactions", "alice", map[string]any{
		"account_id":           acc.ID,
		"amount":               15,
		"transaction_type":     "expense",
		"transaction_date":     "2025-04-10",
		"is_recurring":         true,
		"recurrence_frequency": "monthly",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create recurring status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodGet, "/api/transactions/recurring", "alice", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("recurring listing status = %d", rec.Code)
	}
	var listing struct {
		Series []finance.SeriesSummary `json:"series"`
		Count  int                     `json:"count"`
	}
	decode(t, rec, &listing)
	if listing.Count != 1 {
		t.Fatalf("series count = %d, want 1", listing.Count)
	}
	s := listing.Series[0]
	// April start materialized through June: three occurrences.
	if len(s.Dates) != 3 || s.NextDate != "2025-07-10" {
		t.Errorf("series = %+v, want 3 dates and next 2025-07-10", s)
	}
}

func TestAnalyticsEndpoints(t *testing.T) {
	router := testRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/accounts", "alice", map[string]any{
		"account_name": "Everyday", "account_type": "checking", "balance": 100,
	})
	var acc domain.Account
	decode(t, rec, &acc)
	doJSON(t, router, http.MethodPost, "/api/transactions", "alice", map[string]any{
		"account_id": acc.ID, "amount": 40, "transaction_type": "income", "transaction_date": "2025-06-05",
	})

	rec = doJSON(t, router, http.MethodGet, "/api/analytics/monthly-summary?months=2", "alice", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("monthly summary status = %d", rec.Code)
	}
	var summary struct {
		Summaries []analytics.MonthlySummary `json:"summaries"`
	}
	decode(t, rec, &summary)
	if len(summary.Summaries) != 2 || summary.Summaries[1].Income != 40 {
		t.Errorf("summaries = %+v", summary.Summaries)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/analytics/balance-history?months=2", "alice", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("balance history status = %d", rec.Code)
	}
	var history struct {
		Points []analytics.MonthPoint `json:"points"`
		Axis   map[string]float64     `json:"axis"`
	}
	decode(t, rec, &history)
	if len(history.Points) != 2 {
		t.Fatalf("points = %+v, want 2", history.Points)
	}
	// The account was created this month, so last month has no figures.
	if history.Points[1].NetWorth != 140 || history.Points[0].NetWorth != 0 {
		t.Errorf("net worth = %v then %v, want 0 then 140", history.Points[0].NetWorth, history.Points[1].NetWorth)
	}
	if history.Axis["interval"] == 0 {
		t.Error("axis scale missing from response")
	}
}

func TestStatementUploadUnconfigured(t *testing.T) {
	router := testRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/api/statements/upload", bytes.NewBufferString("x"))
	req.Header.Set("X-User-ID", "alice")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500 when ingestion is not configured", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	router := testRouter(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/accounts", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Allow-Origin = %q, want *", got)
	}
}

func TestNotFoundRoute(t *testing.T) {
	rec := doJSON(t, testRouter(t), http.MethodGet, fmt.Sprintf("/api/unknown-%d", time.Now().Unix()), "alice", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
