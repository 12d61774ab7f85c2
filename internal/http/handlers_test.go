package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tracker/internal/services"
	"tracker/internal/storage"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "tracker.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	srv := NewServer(":0",
		services.NewAccountService(repo),
		services.NewCategoryService(repo),
		services.NewExpenseService(repo, nil),
		nil)
	return srv.Handler
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var env struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env.Data
}

func registerUser(t *testing.T, h http.Handler, username string) int64 {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/api/register",
		map[string]string{"username": username, "secret": "pw"})
	require.Equal(t, http.StatusCreated, rec.Code)
	return int64(decodeData(t, rec)["user_id"].(float64))
}

func TestRegisterAndLoginFlow(t *testing.T) {
	h := newTestServer(t)

	id := registerUser(t, h, "alice")

	rec := doJSON(t, h, http.MethodPost, "/api/register",
		map[string]string{"username": "alice", "secret": "pw2"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/login",
		map[string]string{"username": "alice", "secret": "pw"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(id), decodeData(t, rec)["user_id"])

	rec = doJSON(t, h, http.MethodPost, "/api/login",
		map[string]string{"username": "alice", "secret": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBudgetEndpoints(t *testing.T) {
	h := newTestServer(t)
	id := registerUser(t, h, "alice")

	rec := doJSON(t, h, http.MethodPut, fmt.Sprintf("/api/users/%d/budget", id),
		map[string]string{"amount": "250.00"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, fmt.Sprintf("/api/users/%d/budget", id), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "250.00", decodeData(t, rec)["budget"])

	rec = doJSON(t, h, http.MethodPut, fmt.Sprintf("/api/users/%d/budget", id),
		map[string]string{"amount": "-1"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestExpenseEndpointsAndSummary(t *testing.T) {
	h := newTestServer(t)
	id := registerUser(t, h, "alice")

	add := func(amount, category, date string) int64 {
		rec := doJSON(t, h, http.MethodPost, fmt.Sprintf("/api/users/%d/expenses", id),
			map[string]string{"amount": amount, "category": category, "date": date})
		require.Equal(t, http.StatusCreated, rec.Code)
		return int64(decodeData(t, rec)["id"].(float64))
	}

	add("50.0", "Food", "2024-03-15")
	eid := add("30.0", "Food", "2024-03-20")

	rec := doJSON(t, h, http.MethodGet, fmt.Sprintf("/api/users/%d/summary?year=2024&month=3", id), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeData(t, rec)
	assert.Equal(t, "80.00", data["total"])
	assert.Equal(t, "none", data["alert"])
	byCategory := data["by_category"].(map[string]any)
	assert.Equal(t, "80.00", byCategory["Food"])

	rec = doJSON(t, h, http.MethodPut, fmt.Sprintf("/api/users/%d/expenses/%d", id, eid),
		map[string]string{"amount": "35.0", "category": "Bills", "date": "2024-03-21"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodPut, fmt.Sprintf("/api/users/%d/expenses/99999", id),
		map[string]string{"amount": "1", "category": "Food", "date": "2024-03-21"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, h, http.MethodDelete, fmt.Sprintf("/api/users/%d/expenses/%d", id, eid), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	// idempotent: second delete succeeds too
	rec = doJSON(t, h, http.MethodDelete, fmt.Sprintf("/api/users/%d/expenses/%d", id, eid), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodPost, fmt.Sprintf("/api/users/%d/expenses", id),
		map[string]string{"amount": "abc", "category": "Food", "date": "2024-03-15"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestLongDescriptionAccepted(t *testing.T) {
	h := newTestServer(t)
	id := registerUser(t, h, "alice")

	// Descriptions are unbounded free text; length is never a validation error.
	long := strings.Repeat("d", 2000)
	rec := doJSON(t, h, http.MethodPost, fmt.Sprintf("/api/users/%d/expenses", id),
		map[string]string{"amount": "5.00", "category": "Food", "description": long, "date": "2024-03-15"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, h, http.MethodGet, fmt.Sprintf("/api/users/%d/expenses", id), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var env struct {
		Data []expenseResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Len(t, env.Data, 1)
	assert.Equal(t, long, env.Data[0].Description)
}

func TestCategoryEndpoints(t *testing.T) {
	h := newTestServer(t)
	id := registerUser(t, h, "alice")

	rec := doJSON(t, h, http.MethodGet, fmt.Sprintf("/api/users/%d/categories", id), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var env struct {
		Data []string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, []string{"Bills", "Entertainment", "Food", "Other", "Shopping", "Transport"}, env.Data)

	rec = doJSON(t, h, http.MethodPost, fmt.Sprintf("/api/users/%d/categories", id),
		map[string]string{"name": "Coffee"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, h, http.MethodPost, fmt.Sprintf("/api/users/%d/categories", id),
		map[string]string{"name": "Coffee"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestExportCSV(t *testing.T) {
	h := newTestServer(t)
	id := registerUser(t, h, "alice")

	rec := doJSON(t, h, http.MethodPost, fmt.Sprintf("/api/users/%d/expenses", id),
		map[string]string{"amount": "12.5", "category": "Food", "description": "lunch", "date": "2024-03-15"})
	require.Equal(t, http.StatusCreated, rec.Code)
	eid := int64(decodeData(t, rec)["id"].(float64))

	rec = doJSON(t, h, http.MethodGet, fmt.Sprintf("/api/users/%d/export", id), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))

	lines := strings.Split(strings.TrimRight(rec.Body.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "id,date,category,amount,description", lines[0])
	assert.Equal(t, fmt.Sprintf("%d,2024-03-15,Food,12.50,lunch", eid), lines[1])

	// sheets target without a configured exporter
	rec = doJSON(t, h, http.MethodGet, fmt.Sprintf("/api/users/%d/export?target=sheets", id), nil)
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}
