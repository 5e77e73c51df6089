package ui

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"amaa/adapters/rng"
	"amaa/adapters/tabular"
	"amaa/domain/dataset"
	"amaa/domain/effect"
	"amaa/domain/plan"
	"amaa/internal/config"
	apperrors "amaa/internal/errors"
	"amaa/internal/session"
	"amaa/internal/testkit"
)

func newTestApp(t *testing.T) *App {
	t.Helper()

	cfg := &config.Config{
		Server:      config.ServerConfig{Port: "0"},
		Data:        config.DataConfig{BudgetHeadroom: 1.2, MaxUploadBytes: 10 * 1024 * 1024},
		Session:     config.SessionConfig{TTL: time.Hour, CleanupInterval: time.Minute},
		Calibration: effect.DefaultCalibration(),
	}
	registry := session.NewRegistry(cfg.Session.TTL, func() *dataset.Table {
		return testkit.GenerateDemoTable(testkit.DefaultDemoConfig())
	})
	generator := rng.New()

	app, err := NewApp(Deps{
		Registry:  registry,
		Reader:    tabular.NewReader(),
		Sampler:   effect.NewSampler(generator, cfg.Calibration),
		Simulator: plan.NewSimulator(generator),
		Config:    cfg,
	})
	require.NoError(t, err)
	return app
}

// get performs a request carrying the session cookies from earlier responses.
func get(t *testing.T, app *App, path string, cookies []*http.Cookie) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, req)

	var body map[string]interface{}
	if strings.Contains(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestColumns_DefaultDataset(t *testing.T) {
	app := newTestApp(t)

	rec, body := get(t, app, "/api/columns", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, true, body["default"])
	assert.Equal(t, "date", body["date_column"])
	assert.Equal(t, float64(91), body["rows"])
	assert.Equal(t, "2024-01-01", body["date_min"])
	assert.Equal(t, "2024-03-31", body["date_max"])
	assert.NotEmpty(t, body["table_hash"])
	assert.NotEmpty(t, rec.Result().Cookies(), "first request must set the session cookie")
}

func TestColumns_FingerprintChangesOnUpload(t *testing.T) {
	app := newTestApp(t)

	rec, before := get(t, app, "/api/columns", nil)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, before["table_hash"])

	csv := "date,spend,sales\n2024-02-01,100,500\n"
	up := httptest.NewRecorder()
	app.Handler().ServeHTTP(up, uploadRequest(t, "mine.csv", csv, cookies))
	require.Equal(t, http.StatusOK, up.Code)

	_, after := get(t, app, "/api/columns", cookies)
	assert.NotEqual(t, before["table_hash"], after["table_hash"],
		"swapping the table must change its fingerprint")

	_, again := get(t, app, "/api/columns", cookies)
	assert.Equal(t, after["table_hash"], again["table_hash"],
		"fingerprint must be stable while the table is unchanged")
}

func TestSessionCookieReused(t *testing.T) {
	app := newTestApp(t)

	rec, _ := get(t, app, "/api/columns", nil)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	rec2, _ := get(t, app, "/api/columns", cookies)
	assert.Empty(t, rec2.Result().Cookies(), "known session should not mint a new cookie")
}

func uploadRequest(t *testing.T, filename, content string, cookies []*http.Cookie) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func TestUpload_SwapsTable(t *testing.T) {
	app := newTestApp(t)

	rec, _ := get(t, app, "/api/columns", nil)
	cookies := rec.Result().Cookies()

	csv := "date,spend,sales\n2024-02-01,100,500\n2024-02-02,200,700\n"
	up := httptest.NewRecorder()
	app.Handler().ServeHTTP(up, uploadRequest(t, "mine.csv", csv, cookies))
	require.Equal(t, http.StatusOK, up.Code, up.Body.String())

	_, body := get(t, app, "/api/columns", cookies)
	assert.Equal(t, "mine.csv", body["filename"])
	assert.Equal(t, false, body["default"])
	assert.Equal(t, float64(2), body["rows"])
}

func TestUpload_FailureKeepsPriorTable(t *testing.T) {
	app := newTestApp(t)

	rec, _ := get(t, app, "/api/columns", nil)
	cookies := rec.Result().Cookies()

	up := httptest.NewRecorder()
	app.Handler().ServeHTTP(up, uploadRequest(t, "bad.csv", "spend,sales\n1,2\n", cookies))
	require.Equal(t, http.StatusUnprocessableEntity, up.Code)

	var errBody map[string]interface{}
	require.NoError(t, json.Unmarshal(up.Body.Bytes(), &errBody))
	assert.Equal(t, "could not load data", errBody["error"])
	assert.Equal(t, apperrors.CodeParseError, errBody["code"])

	_, body := get(t, app, "/api/columns", cookies)
	assert.Equal(t, true, body["default"], "failed upload must keep the prior table")
	assert.Equal(t, float64(91), body["rows"])
}

func TestEffects_Success(t *testing.T) {
	app := newTestApp(t)

	path := "/api/effects?features=tiktok_koc,weibo_koc&targets=sales&delays=1,2,3"
	rec, body := get(t, app, path, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	effects := body["effects"].(map[string]interface{})
	require.Len(t, effects, 2)
	require.Contains(t, effects, "tiktok_koc")

	simulation := body["simulation"].(map[string]interface{})
	require.Contains(t, simulation, "sales")
	trends := simulation["sales"].(map[string]interface{})
	require.Len(t, trends["tiktok_koc"].([]interface{}), 3)

	averages := body["averages"].(map[string]interface{})
	require.Contains(t, averages, "sales")
	assert.Equal(t, "day", body["period"])
	assert.Equal(t, dataset.DefaultRangeKey, body["range_key"])
}

func TestEffects_Deterministic(t *testing.T) {
	app := newTestApp(t)
	path := "/api/effects?features=tiktok_koc&targets=sales&delays=1,2&from=2024-01-01&to=2024-01-31"

	rec1, _ := get(t, app, path, nil)
	rec2, _ := get(t, app, path, nil)
	require.Equal(t, http.StatusOK, rec1.Code)
	assert.Equal(t, rec1.Body.String(), rec2.Body.String())
}

func TestEffects_EmptySelectionIsGuidance(t *testing.T) {
	app := newTestApp(t)

	rec, body := get(t, app, "/api/effects?targets=sales&delays=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, body["guidance"])
	assert.NotContains(t, body, "effects")
}

func TestEffects_EmptyDateRangeIsGuidance(t *testing.T) {
	app := newTestApp(t)

	path := "/api/effects?features=tiktok_koc&targets=sales&delays=1&from=2030-01-01&to=2030-01-31"
	rec, body := get(t, app, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, body["guidance"])
}

func TestEffects_BadRequests(t *testing.T) {
	app := newTestApp(t)

	cases := []struct {
		name string
		path string
	}{
		{"delay out of range", "/api/effects?features=tiktok_koc&targets=sales&delays=31"},
		{"delay out of weekly range", "/api/effects?granularity=weekly&features=tiktok_koc&targets=sales&delays=13"},
		{"unknown column", "/api/effects?features=nope&targets=sales&delays=1"},
		{"overlapping roles", "/api/effects?features=sales&targets=sales&delays=1"},
		{"non-integer delay", "/api/effects?features=tiktok_koc&targets=sales&delays=x"},
		{"bad granularity", "/api/effects?granularity=hourly&features=tiktok_koc&targets=sales&delays=1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, body := get(t, app, tc.path, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, apperrors.CodeInvalidInput, body["code"])
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestSimulationTable(t *testing.T) {
	app := newTestApp(t)

	path := "/api/simulation/table?features=tiktok_koc,weibo_koc&targets=sales"
	rec, body := get(t, app, path, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	sim := body["simulation"].(map[string]interface{})
	rows := sim["rows"].([]interface{})
	assert.Len(t, rows, 5)
	gauges := sim["gauges"].([]interface{})
	assert.Len(t, gauges, 1)
	assert.Greater(t, body["reference"].(float64), 0.0)
}

func TestSimulationTable_CustomRangesAndBudget(t *testing.T) {
	app := newTestApp(t)

	path := "/api/simulation/table?features=tiktok_koc&targets=sales&ranges=tiktok_koc:100:200&budget=50"
	rec, body := get(t, app, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	sim := body["simulation"].(map[string]interface{})
	for _, raw := range sim["rows"].([]interface{}) {
		row := raw.(map[string]interface{})
		v := row["values"].(map[string]interface{})["tiktok_koc"].(float64)
		assert.GreaterOrEqual(t, v, 100.0)
		assert.LessOrEqual(t, v, 200.0)
	}
	assert.NotEmpty(t, sim["budget_warning"], "tiny budget should warn")

	badRange, _ := get(t, app, "/api/simulation/table?features=tiktok_koc&targets=sales&ranges=tiktok_koc:200:100", nil)
	assert.Equal(t, http.StatusBadRequest, badRange.Code)
}

func TestOptimizationTable(t *testing.T) {
	app := newTestApp(t)

	path := "/api/optimization/table?features=tiktok_koc,weibo_koc&targets=sales&harvest=4&limit=3000"
	rec, body := get(t, app, path, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	schedule := body["schedule"].(map[string]interface{})
	rows := schedule["rows"].([]interface{})
	require.Len(t, rows, 4)
	for _, raw := range rows {
		row := raw.(map[string]interface{})
		assert.LessOrEqual(t, row["total_spend"].(float64), 3000+1e-9)
	}
	kpis := schedule["kpis"].([]interface{})
	assert.Len(t, kpis, 1)
}

func TestPreview(t *testing.T) {
	app := newTestApp(t)

	path := "/api/preview?targets=sales&features=tiktok_koc&from=2024-01-01&to=2024-01-10"
	rec, body := get(t, app, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	columns := body["columns"].([]interface{})
	require.GreaterOrEqual(t, len(columns), 3)
	assert.Equal(t, "date", columns[0])
	assert.Equal(t, "sales", columns[1], "selected targets lead the preview")
	assert.Equal(t, float64(10), body["total"])
}

func TestPages(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/", "/simulation", "/optimization", "/help"} {
		rec, _ := get(t, app, path, nil)
		assert.Equal(t, http.StatusOK, rec.Code, "page %s", path)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	}
}
