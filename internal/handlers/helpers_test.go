package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"finova/internal/middleware"
	"finova/internal/models"
	"finova/internal/session"
	"finova/internal/validator"
)

// --- test helpers ---

var household = models.Household{MemberA: "Ana", MemberB: "Bruno"}

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
	now = func() time.Time { return time.Date(2024, time.March, 13, 10, 0, 0, 0, time.UTC) }
}

func injectSession(sc session.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.SessionKey, sc)
		c.Next()
	}
}

// protectedGroup returns a group whose requests carry a session viewing owner.
func protectedGroup(r *gin.Engine, owner models.Owner) *gin.RouterGroup {
	return r.Group("", injectSession(session.Context{Owner: owner}))
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	return doRequestWithHeader(r, method, path, body, "", "")
}

func doRequestWithHeader(r *gin.Engine, method, path, body, header, value string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if header != "" {
		req.Header.Set(header, value)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func parseJSONArray(t *testing.T, rec *httptest.ResponseRecorder) []interface{} {
	t.Helper()
	var result []interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON array response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}

func assertStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}
