package router

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"finova/internal/config"
	"finova/internal/events"
	"finova/internal/models"
	"finova/internal/services"
	"finova/internal/session"
	"finova/internal/testutil"
	"finova/internal/validator"
)

const (
	testPassword = "household-secret"
	testAPIKey   = "pipeline-key"
)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
}

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	household := testutil.Household
	manager := session.NewManager("test-secret", time.Hour)
	publisher := events.Nop{}

	transactions := services.NewTransactionService(db, household, publisher, false)
	advice := services.NewAdviceService(db, nil, household, "$", publisher, nil)

	router := New(Deps{
		Sessions:       services.NewSessionService(config.SessionConfig{Password: testPassword}, household, manager),
		Tokens:         manager,
		Transactions:   transactions,
		Categories:     services.NewCategoryService(db, publisher),
		Budgets:        services.NewBudgetService(db),
		Goals:          services.NewSavingsGoalService(db, household),
		Investments:    services.NewInvestmentService(db, household),
		Dashboard:      services.NewDashboardService(db),
		Advice:         advice,
		Export:         services.NewExportService(transactions, nil),
		Jobs:           services.NewJobRunner(transactions, advice, household),
		PipelineAPIKey: testAPIKey,
	})

	return &testApp{DB: db, Router: router}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	errObj, ok := parseJSON(t, rec)["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object, got %s", rec.Body.String())
	}
	code, _ := errObj["code"].(string)
	return code
}

// login opens a session viewing owner and returns its token.
func (app *testApp) login(t *testing.T, owner models.Owner) string {
	t.Helper()
	body := fmt.Sprintf(`{"password":%q,"owner":%q}`, testPassword, owner)
	rec := app.request(http.MethodPost, "/api/v1/auth/login", body, "")
	expectStatus(t, rec, http.StatusOK)
	return parseJSON(t, rec)["token"].(string)
}

func TestHealth(t *testing.T) {
	app := setupApp(t)
	rec := app.request(http.MethodGet, "/api/health", "", "")
	expectStatus(t, rec, http.StatusOK)
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}
}

func TestSessionFlow(t *testing.T) {
	app := setupApp(t)

	t.Run("wrong password is rejected", func(t *testing.T) {
		rec := app.request(http.MethodPost, "/api/v1/auth/login", `{"password":"nope"}`, "")
		expectStatus(t, rec, http.StatusUnauthorized)
		if code := errorCode(t, rec); code != "INVALID_PASSWORD" {
			t.Errorf("expected INVALID_PASSWORD, got %s", code)
		}
	})

	t.Run("protected routes need a token", func(t *testing.T) {
		rec := app.request(http.MethodGet, "/api/v1/transactions", "", "")
		expectStatus(t, rec, http.StatusUnauthorized)
		rec = app.request(http.MethodGet, "/api/v1/transactions", "", "garbage")
		expectStatus(t, rec, http.StatusUnauthorized)
	})

	t.Run("switching owner reissues the token", func(t *testing.T) {
		token := app.login(t, testutil.MemberA)

		rec := app.request(http.MethodGet, "/api/v1/session", "", token)
		expectStatus(t, rec, http.StatusOK)
		if parseJSON(t, rec)["owner"] != string(testutil.MemberA) {
			t.Fatalf("expected owner %s", testutil.MemberA)
		}

		rec = app.request(http.MethodPut, "/api/v1/session", `{"owner":"Both","privacy_mode":true}`, token)
		expectStatus(t, rec, http.StatusOK)
		next := parseJSON(t, rec)["token"].(string)

		rec = app.request(http.MethodGet, "/api/v1/session", "", next)
		expectStatus(t, rec, http.StatusOK)
		result := parseJSON(t, rec)
		if result["owner"] != "Both" || result["privacy_mode"] != true {
			t.Errorf("unexpected session %v", result)
		}
	})

	t.Run("unknown owner is rejected", func(t *testing.T) {
		body := fmt.Sprintf(`{"password":%q,"owner":"Carol"}`, testPassword)
		rec := app.request(http.MethodPost, "/api/v1/auth/login", body, "")
		expectStatus(t, rec, http.StatusBadRequest)
	})
}

func TestTransactionFlow(t *testing.T) {
	app := setupApp(t)
	token := app.login(t, testutil.MemberA)

	body := `{"description":"Course","amount":"300.00","type":"expense","category":"Education",
		"date":"2024-01-31","payment_method":"card","is_recurring":true,"recurring_months":3}`
	rec := app.request(http.MethodPost, "/api/v1/transactions", body, token)
	expectStatus(t, rec, http.StatusCreated)
	created := parseJSON(t, rec)["transactions"].([]interface{})
	if len(created) != 4 {
		t.Fatalf("expected the submitted row plus 3 installments, got %d", len(created))
	}
	dates := []string{}
	for _, c := range created {
		dates = append(dates, c.(map[string]interface{})["date"].(string))
	}
	if strings.Join(dates, ",") != "2024-01-31,2024-02-29,2024-03-31,2024-04-30" {
		t.Errorf("unexpected installment dates %v", dates)
	}
	first := created[0].(map[string]interface{})
	if first["is_paid"] != false {
		t.Errorf("card expenses start pending")
	}

	rec = app.request(http.MethodPost, "/api/v1/transactions",
		`{"description":"Salary","amount":"5000","type":"income","category":"Salary","date":"2024-02-05","payment_method":"instant_transfer"}`, token)
	expectStatus(t, rec, http.StatusCreated)

	t.Run("month view lists one installment and the income", func(t *testing.T) {
		rec := app.request(http.MethodGet, "/api/v1/transactions?month=2024-02", "", token)
		expectStatus(t, rec, http.StatusOK)
		result := parseJSON(t, rec)
		if result["total_items"] != float64(2) {
			t.Errorf("expected 2 transactions in February, got %v", result["total_items"])
		}
	})

	t.Run("search spans months", func(t *testing.T) {
		rec := app.request(http.MethodGet, "/api/v1/transactions?search=course", "", token)
		expectStatus(t, rec, http.StatusOK)
		if parseJSON(t, rec)["total_items"] != float64(4) {
			t.Errorf("expected 4 matches")
		}
	})

	t.Run("toggle status flips is_paid", func(t *testing.T) {
		id := first["id"].(string)
		rec := app.request(http.MethodPost, "/api/v1/transactions/"+id+"/toggle-status", "", token)
		expectStatus(t, rec, http.StatusOK)
		tx := parseJSON(t, rec)["transaction"].(map[string]interface{})
		if tx["is_paid"] != true {
			t.Errorf("expected paid after toggle")
		}
	})

	t.Run("dashboard totals the month", func(t *testing.T) {
		rec := app.request(http.MethodGet, "/api/v1/dashboard?month=2024-02", "", token)
		expectStatus(t, rec, http.StatusOK)
		totals := parseJSON(t, rec)["totals"].(map[string]interface{})
		if totals["income"] != "5000" || totals["expenses"] != "300" || totals["balance"] != "4700" {
			t.Errorf("unexpected totals %v", totals)
		}
	})

	t.Run("csv export downloads the month", func(t *testing.T) {
		rec := app.request(http.MethodGet, "/api/v1/transactions/export?month=2024-02", "", token)
		expectStatus(t, rec, http.StatusOK)
		if !strings.Contains(rec.Header().Get("Content-Disposition"), "finova_report_2024-02.csv") {
			t.Errorf("unexpected disposition %q", rec.Header().Get("Content-Disposition"))
		}
		lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
		if len(lines) != 3 {
			t.Errorf("expected header and 2 rows, got %d lines", len(lines))
		}
	})

	t.Run("sheets export is not configured", func(t *testing.T) {
		rec := app.request(http.MethodPost, "/api/v1/transactions/export/sheets", "", token)
		expectStatus(t, rec, http.StatusServiceUnavailable)
	})

	t.Run("deleted transaction is gone", func(t *testing.T) {
		id := created[2].(map[string]interface{})["id"].(string)
		rec := app.request(http.MethodDelete, "/api/v1/transactions/"+id, "", token)
		expectStatus(t, rec, http.StatusOK)
		rec = app.request(http.MethodGet, "/api/v1/transactions/"+id, "", token)
		expectStatus(t, rec, http.StatusNotFound)
	})
}

func TestCategoryRenameFlow(t *testing.T) {
	app := setupApp(t)
	token := app.login(t, models.OwnerBoth)

	rec := app.request(http.MethodPost, "/api/v1/categories/restore-defaults", "", token)
	expectStatus(t, rec, http.StatusOK)
	if parseJSON(t, rec)["restored"] != float64(len(models.DefaultCategories)) {
		t.Fatalf("expected every default category to be restored")
	}

	rec = app.request(http.MethodPut, "/api/v1/budgets", `{"category":"Market","limit":"800"}`, token)
	expectStatus(t, rec, http.StatusOK)
	rec = app.request(http.MethodPost, "/api/v1/transactions",
		`{"description":"Weekly shop","amount":"200","type":"expense","category":"Market","date":"2024-03-02","payment_method":"cash","owner":"Ana"}`, token)
	expectStatus(t, rec, http.StatusCreated)

	rec = app.request(http.MethodGet, "/api/v1/categories?type=expense", "", token)
	expectStatus(t, rec, http.StatusOK)
	var marketID string
	for _, c := range parseJSON(t, rec)["categories"].([]interface{}) {
		cat := c.(map[string]interface{})
		if cat["name"] == "Market" {
			marketID = cat["id"].(string)
		}
	}
	if marketID == "" {
		t.Fatal("Market category not found")
	}

	rec = app.request(http.MethodPut, "/api/v1/categories/"+marketID, `{"name":"Groceries"}`, token)
	expectStatus(t, rec, http.StatusOK)
	result := parseJSON(t, rec)
	if result["transactions_updated"] != float64(1) || result["budget_updated"] != true {
		t.Errorf("unexpected rename result %v", result)
	}

	rec = app.request(http.MethodGet, "/api/v1/budgets?month=2024-03", "", token)
	expectStatus(t, rec, http.StatusOK)
	progress := parseJSON(t, rec)["progress"].([]interface{})
	if len(progress) != 1 {
		t.Fatalf("expected 1 budget progress entry, got %d", len(progress))
	}
	status := progress[0].(map[string]interface{})
	if status["category"] != "Groceries" || status["spent"] != "200" {
		t.Errorf("budget did not follow the rename: %v", status)
	}

	t.Run("system categories cannot be deleted", func(t *testing.T) {
		rec := app.request(http.MethodDelete, "/api/v1/categories/"+marketID, "", token)
		expectStatus(t, rec, http.StatusConflict)
	})
}

func TestInvestmentFlow(t *testing.T) {
	app := setupApp(t)
	token := app.login(t, testutil.MemberB)

	rec := app.request(http.MethodPost, "/api/v1/investments",
		`{"name":"Reserve","type":"emergency","amount":"1000","date":"2024-01-10"}`, token)
	expectStatus(t, rec, http.StatusCreated)
	inv := parseJSON(t, rec)["investment"].(map[string]interface{})
	id := inv["id"].(string)
	if inv["owner"] != string(testutil.MemberB) {
		t.Errorf("expected owner to default to the session owner")
	}

	rec = app.request(http.MethodPost, "/api/v1/investments/"+id+"/operations",
		`{"operation":"withdrawal","amount":"1500","date":"2024-02-01"}`, token)
	expectStatus(t, rec, http.StatusUnprocessableEntity)

	rec = app.request(http.MethodPost, "/api/v1/investments/"+id+"/operations",
		`{"operation":"withdrawal","amount":"400","date":"2024-02-01"}`, token)
	expectStatus(t, rec, http.StatusOK)
	inv = parseJSON(t, rec)["investment"].(map[string]interface{})
	if inv["current_amount"] != "600" {
		t.Errorf("expected current amount 600, got %v", inv["current_amount"])
	}

	rec = app.request(http.MethodGet, "/api/v1/investments/evolution", "", token)
	expectStatus(t, rec, http.StatusOK)
	points := parseJSON(t, rec)["evolution"].([]interface{})
	if len(points) != 2 {
		t.Fatalf("expected 2 evolution points, got %d", len(points))
	}
}

func TestPipelineFlow(t *testing.T) {
	app := setupApp(t)

	t.Run("requires api key", func(t *testing.T) {
		rec := app.request(http.MethodPost, "/api/v1/pipeline/reconcile", "", "")
		expectStatus(t, rec, http.StatusUnauthorized)
	})

	t.Run("reconciles inline", func(t *testing.T) {
		testutil.CreateTestTransaction(t, app.DB, models.TransactionTypeExpense, "39.90", "2024-04-15",
			testutil.WithDescription("Streaming"), testutil.Recurring(0))

		req := httptest.NewRequest(http.MethodPost, "/api/v1/pipeline/reconcile", strings.NewReader(`{"month":"2024-05"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-API-Key", testAPIKey)
		rec := httptest.NewRecorder()
		app.Router.ServeHTTP(rec, req)
		expectStatus(t, rec, http.StatusOK)

		var count int64
		app.DB.Model(&models.Transaction{}).Where("description = ?", "Streaming").Count(&count)
		if count != 2 {
			t.Errorf("expected the entry to be carried into May, got %d rows", count)
		}
	})

	t.Run("advice without advisor is unavailable", func(t *testing.T) {
		token := app.login(t, models.OwnerBoth)
		rec := app.request(http.MethodGet, "/api/v1/advice/current", "", token)
		expectStatus(t, rec, http.StatusServiceUnavailable)
		if code := errorCode(t, rec); code != "ADVISOR_NOT_CONFIGURED" {
			t.Errorf("expected ADVISOR_NOT_CONFIGURED, got %s", code)
		}
	})
}
