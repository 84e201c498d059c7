package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"crm-service/internal/crm"
	"crm-service/internal/middleware"
	"crm-service/pkg/config"
	"crm-service/pkg/store/memstore"
	"crm-service/prometheus"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testAPIKey = "test-secret"

func TestMain(m *testing.M) {
	cfg := &config.Config{Metrics: config.MetricsConfig{Prefix: "crm_test"}}
	prometheus.InitMetrics(cfg)
	os.Exit(m.Run())
}

func newTestServer(t *testing.T) (*echo.Echo, *memstore.Store) {
	t.Helper()

	st := memstore.New("Companies", "Calls")
	cfg := &config.Config{
		Auth: config.AuthConfig{APIKey: testAPIKey, Header: "X-API-Key"},
		Store: config.StoreConfig{
			CompaniesTable: "Companies",
			CallsTable:     "Calls",
		},
	}
	Init(crm.New(st, cfg, zap.NewNop()))

	e := echo.New()
	e.GET("/", Health)

	protected := e.Group("", middleware.APIKeyMiddleware(&cfg.Auth))
	protected.POST("/log-call", LogCall)
	protected.GET("/get-company-history", GetCompanyHistory)
	protected.GET("/search-calls", SearchCalls)
	protected.GET("/get-follow-ups", GetFollowUps)
	protected.POST("/complete-follow-up/:id", CompleteFollowUp)

	return e, st
}

func doJSON(e *echo.Echo, method, target, apiKey, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealthNoAuthRequired(t *testing.T) {
	e, _ := newTestServer(t)

	rec := doJSON(e, http.MethodGet, "/", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "healthy", body["status"])
}

func TestMissingAPIKeyRejectedWithoutMutation(t *testing.T) {
	e, st := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/log-call", "",
		`{"company_name":"Acme Corp","contact_name":"Jane","notes":"intro call"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, false, body["success"])

	companies, err := st.Table(context.Background(), "Companies")
	require.NoError(t, err)
	rows, err := companies.Rows(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rows, "rejected request must not touch the store")
}

func TestWrongAPIKeyRejected(t *testing.T) {
	e, _ := newTestServer(t)

	rec := doJSON(e, http.MethodGet, "/get-follow-ups", "wrong-key", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogCallAndHistory(t *testing.T) {
	e, st := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/log-call", testAPIKey,
		`{"company_name":"Acme Corp","contact_name":"Jane","notes":"intro call","follow_up_date":"2024-01-10"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Call logged successfully", body["message"])
	assert.NotEmpty(t, body["id"])

	companies, err := st.Table(context.Background(), "Companies")
	require.NoError(t, err)
	companyRows, err := companies.Rows(context.Background())
	require.NoError(t, err)
	assert.Len(t, companyRows, 1)

	rec = doJSON(e, http.MethodGet, "/get-company-history?company_name=acme+corp", testAPIKey, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode(t, rec)
	assert.Equal(t, true, body["success"])

	company := body["company"].(map[string]interface{})
	assert.Equal(t, "Acme Corp", company["name"])

	calls := body["calls"].([]interface{})
	require.Len(t, calls, 1)
	call := calls[0].(map[string]interface{})
	assert.Equal(t, "intro call", call["notes"])
	assert.Equal(t, "2024-01-10", call["follow_up_date"])
}

func TestCompanyHistoryNotFoundIsBusinessFailure(t *testing.T) {
	e, _ := newTestServer(t)

	rec := doJSON(e, http.MethodGet, "/get-company-history?company_name=Nobody+Inc", testAPIKey, "")
	// Legacy contract: HTTP 200 with success:false, not a 404.
	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Company not found", body["message"])
}

func TestCompanyHistoryMissingParam(t *testing.T) {
	e, _ := newTestServer(t)

	rec := doJSON(e, http.MethodGet, "/get-company-history", testAPIKey, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogCallMissingCompanyName(t *testing.T) {
	e, _ := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/log-call", testAPIKey, `{"contact_name":"Jane","notes":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchCallsResponseShape(t *testing.T) {
	e, _ := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/log-call", testAPIKey,
		`{"company_name":"Acme","contact_name":"Jane","notes":"requested a refund today"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(e, http.MethodGet, "/search-calls?keyword=refund", testAPIKey, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(1), body["matches"])
	assert.Len(t, body["calls"].([]interface{}), 1)
}

func TestFollowUpLifecycle(t *testing.T) {
	e, _ := newTestServer(t)

	// A follow-up date in the past is due immediately.
	rec := doJSON(e, http.MethodPost, "/log-call", testAPIKey,
		`{"company_name":"Acme","contact_name":"Jane","notes":"call back","follow_up_date":"2020-01-01"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	id := decode(t, rec)["id"].(string)

	rec = doJSON(e, http.MethodGet, "/get-follow-ups", testAPIKey, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, float64(1), body["count"])

	rec = doJSON(e, http.MethodPost, "/complete-follow-up/"+id, testAPIKey, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["success"])

	rec = doJSON(e, http.MethodGet, "/get-follow-ups", testAPIKey, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), decode(t, rec)["count"])
}

func TestCompleteFollowUpUnknownID(t *testing.T) {
	e, _ := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/complete-follow-up/no-such-id", testAPIKey, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, false, body["success"])
}
