package web

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/envdash/internal/config"
	"github.com/JonMunkholm/envdash/internal/core"
)

const testCSV = "Country Name,Indicator Name,Indicator Code,Year,Value\n" +
	"Sri Lanka,CO2 emissions,EN.ATM.CO2E.PC,2011,0.8\n" +
	"Sri Lanka,CO2 emissions,EN.ATM.CO2E.PC,2010,0.9\n" +
	"Sri Lanka,Methane,EN.ATM.METH,2010,12\n" +
	"India,Arable land,AG.LND.ARBL.ZS,2010,5\n"

type memoryHistory struct {
	mu     sync.Mutex
	events []core.LoadEvent
}

func (m *memoryHistory) RecordLoad(_ context.Context, ev core.LoadEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append([]core.LoadEvent{ev}, m.events...)
	return nil
}

func (m *memoryHistory) RecentLoads(_ context.Context, limit int) ([]core.LoadEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.events[:min(limit, len(m.events))], nil
}

func testConfig() *config.Config {
	return &config.Config{
		Server:   config.ServerConfig{RequestTimeout: 5 * time.Second},
		Security: config.SecurityConfig{EnableCSP: true},
	}
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// createTestServer builds a server over a temporary CSV file.
func createTestServer(t *testing.T, cfg *config.Config, recorder core.LoadRecorder) *Server {
	t.Helper()
	svc := core.NewService(core.ServiceConfig{Path: writeCSV(t, testCSV)}, nil, recorder)
	s := NewServer(svc, cfg)
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })
	return s
}

func serve(t *testing.T, s *Server, target string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestDashboard_DefaultsToFirstIndicator(t *testing.T) {
	s := createTestServer(t, testConfig(), nil)

	rec := serve(t, s, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	body := rec.Body.String()
	assert.Contains(t, body, "Sri Lanka Environmental Indicators Dashboard")
	assert.Contains(t, body, "Indicator Code: EN.ATM.CO2E.PC")
	assert.Contains(t, body, `<option value="CO2 emissions" selected>`)
	assert.Contains(t, body, "<td>2010</td><td>0.9</td>")
	assert.Contains(t, body, "<td>2011</td><td>0.8</td>")
	assert.Contains(t, body, "0.85")
	assert.Contains(t, body, "0.90")
	assert.Contains(t, body, "0.80")
	assert.Contains(t, body, "<th>Year</th><th>Indicator Value</th>")
	for _, label := range []string{"Mean", "Max", "Min"} {
		assert.Contains(t, body, `<div class="label">`+label+`</div>`)
	}
	assert.NotContains(t, body, "Arable land")
	assert.NotContains(t, body, "Recent Loads")
}

func TestDashboard_SelectsIndicator(t *testing.T) {
	s := createTestServer(t, testConfig(), nil)

	rec := serve(t, s, "/?indicator=Methane")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "Indicator Code: EN.ATM.METH")
	assert.Contains(t, body, "12.00")
	assert.Contains(t, body, "/chart.svg?indicator=Methane")
	assert.Contains(t, body, "/download?indicator=Methane")
}

func TestDashboard_UnknownIndicatorShowsNoData(t *testing.T) {
	s := createTestServer(t, testConfig(), nil)

	rec := serve(t, s, "/?indicator=Nope")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "Indicator Code: "+core.NoCode)
	assert.Contains(t, body, "No data for this indicator.")
	assert.Contains(t, body, core.NoData)
}

func TestDashboard_LoadFailureRendersOnlyError(t *testing.T) {
	svc := core.NewService(core.ServiceConfig{Path: filepath.Join(t.TempDir(), "missing.csv")}, nil, nil)
	s := NewServer(svc, testConfig())

	rec := serve(t, s, "/")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `role="alert"`)
	assert.Contains(t, body, "DATA001")
	assert.NotContains(t, body, "Select an Indicator")
	assert.NotContains(t, body, "Summary Statistics")
}

func TestDashboard_ShowsLoadHistory(t *testing.T) {
	s := createTestServer(t, testConfig(), &memoryHistory{})

	rec := serve(t, s, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Recent Loads")
}

func TestChart(t *testing.T) {
	s := createTestServer(t, testConfig(), nil)

	for _, target := range []string{"/chart.svg?indicator=CO2+emissions", "/chart.svg?indicator=Nope"} {
		t.Run(target, func(t *testing.T) {
			rec := serve(t, s, target)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
			assert.Contains(t, rec.Body.String(), "<svg")
		})
	}
}

func TestDownload(t *testing.T) {
	s := createTestServer(t, testConfig(), nil)

	rec := serve(t, s, "/download?indicator=CO2+emissions")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="CO2 emissions_SriLanka.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "Year,Indicator Value\n2011,0.8\n2010,0.9\n", rec.Body.String())
}

func TestDownload_AllColumns(t *testing.T) {
	s := createTestServer(t, testConfig(), nil)

	rec := serve(t, s, "/download?indicator=Methane&columns=all")
	require.Equal(t, http.StatusOK, rec.Code)

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Country Name,Indicator Name,Indicator Code,Year,Indicator Value", lines[0])
	assert.Equal(t, "Sri Lanka,Methane,EN.ATM.METH,2010,12", lines[1])
}

func TestDownload_BadParams(t *testing.T) {
	s := createTestServer(t, testConfig(), nil)

	tests := []string{
		"/download",
		"/download?indicator=Methane&columns=some",
	}
	for _, target := range tests {
		t.Run(target, func(t *testing.T) {
			rec := serve(t, s, target)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "REQ001")
		})
	}
}

func TestHealth(t *testing.T) {
	s := createTestServer(t, testConfig(), nil)

	rec := serve(t, s, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestSecurityHeaders(t *testing.T) {
	s := createTestServer(t, testConfig(), nil)

	rec := serve(t, s, "/healthz")
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, contentSecurityPolicy, rec.Header().Get("Content-Security-Policy"))
}

func TestAPIIndicators(t *testing.T) {
	s := createTestServer(t, testConfig(), nil)

	rec := serve(t, s, "/api/indicators")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp indicatorsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Sri Lanka", resp.Country)
	assert.Equal(t, []string{"CO2 emissions", "Methane"}, resp.Indicators)
}

func TestAPIView(t *testing.T) {
	s := createTestServer(t, testConfig(), nil)

	rec := serve(t, s, "/api/view?indicator=CO2+emissions")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp viewResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "CO2 emissions", resp.Name)
	assert.Equal(t, "EN.ATM.CO2E.PC", resp.Code)
	assert.Equal(t, []core.Point{{Year: 2010, Value: 0.9}, {Year: 2011, Value: 0.8}}, resp.Table)
	assert.Equal(t, resp.Table, resp.Chart)
	assert.Equal(t, 2, resp.Summary.Count)
	assert.InDelta(t, 0.85, resp.Summary.Mean, 1e-9)
}

func TestAPIView_EmptySelection(t *testing.T) {
	s := createTestServer(t, testConfig(), nil)

	rec := serve(t, s, "/api/view?indicator=Nope")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"table":[]`)
	assert.Contains(t, rec.Body.String(), `"code":"N/A"`)
}

func TestAPIView_BadPolicy(t *testing.T) {
	s := createTestServer(t, testConfig(), nil)

	rec := serve(t, s, "/api/view?indicator=Methane&duplicate_years=median")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "REQ001", resp.Code)
}

func TestAPILoads(t *testing.T) {
	hist := &memoryHistory{}
	s := createTestServer(t, testConfig(), hist)

	// The first request loads the dataset and records it.
	require.Equal(t, http.StatusOK, serve(t, s, "/api/indicators").Code)

	rec := serve(t, s, "/api/loads?limit=5")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Loads []loadResponse `json:"loads"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Loads, 1)
	assert.NotEqual(t, uuid.Nil.String(), resp.Loads[0].ID)
	assert.Equal(t, 3, resp.Loads[0].Kept)
	assert.Equal(t, 4, resp.Loads[0].RawRows)
}

func TestAPILoads_Errors(t *testing.T) {
	t.Run("history disabled", func(t *testing.T) {
		s := createTestServer(t, testConfig(), nil)
		rec := serve(t, s, "/api/loads")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "REQ003")
	})

	t.Run("bad limit", func(t *testing.T) {
		s := createTestServer(t, testConfig(), &memoryHistory{})
		rec := serve(t, s, "/api/loads?limit=0")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAPIKeyRequired(t *testing.T) {
	cfg := testConfig()
	cfg.Security.RequireAPIKey = true
	cfg.Security.APIKeys = []string{"secret"}
	s := createTestServer(t, cfg, nil)

	assert.Equal(t, http.StatusUnauthorized, serve(t, s, "/api/indicators").Code)
	assert.Equal(t, http.StatusForbidden, serve(t, s, "/api/indicators?key=wrong").Code)
	assert.Equal(t, http.StatusOK, serve(t, s, "/api/indicators?key=secret").Code)
	assert.Equal(t, http.StatusOK, serve(t, s, "/api/indicators", "X-API-Key", "secret").Code)

	// Pages stay public.
	assert.Equal(t, http.StatusOK, serve(t, s, "/").Code)
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Rate = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 3, DownloadLimit: 1}
	s := createTestServer(t, cfg, nil)

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, serve(t, s, "/healthz").Code, "request %d", i+1)
	}

	rec := serve(t, s, "/healthz")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "RATE001")
}

func TestRateLimiter_WindowReset(t *testing.T) {
	rl := newRateLimiter(2, time.Minute)
	defer rl.stop()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.allow("1.2.3.4"))
	assert.True(t, rl.allow("1.2.3.4"))
	assert.False(t, rl.allow("1.2.3.4"))
	assert.True(t, rl.allow("5.6.7.8"), "visitors are limited separately")

	now = now.Add(time.Minute + time.Second)
	assert.True(t, rl.allow("1.2.3.4"))
}

func TestWantsJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.False(t, wantsJSON(req))

	req.Header.Set("Accept", "application/json")
	assert.True(t, wantsJSON(req))

	assert.True(t, wantsJSON(httptest.NewRequest(http.MethodGet, "/api/view", nil)))
}

func TestRespondError_LogsRequestFields(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	s := createTestServer(t, testConfig(), nil)
	rec := serve(t, s, "/download?indicator=Methane&columns=some")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	out := buf.String()
	assert.Contains(t, out, `msg="request error"`)
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "code=REQ001")
	assert.Contains(t, out, "request_id=")
	assert.Contains(t, out, "path=/download")
}
