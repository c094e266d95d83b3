package web

import (
	"bytes"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/JonMunkholm/envdash/internal/core"
	"github.com/JonMunkholm/envdash/internal/logging"
	"github.com/JonMunkholm/envdash/internal/web/templates"
)

const (
	dashboardLoads   = 10
	defaultLoadLimit = 20
)

// ============================================================================
// Page Handlers
// ============================================================================

// handleDashboard renders the dashboard for the selected indicator.
// Without ?indicator= the first indicator in sorted order is shown.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	indicators, err := s.service.Indicators(ctx)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	selected := r.URL.Query().Get("indicator")
	if selected == "" && len(indicators) > 0 {
		selected = indicators[0]
	}

	view, err := s.service.View(ctx, selected)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	params := templates.DashboardParams{
		Country:    s.service.Country(),
		Indicators: indicators,
		View:       view,
	}
	if s.service.HistoryEnabled() {
		loads, err := s.service.RecentLoads(ctx, dashboardLoads)
		if err != nil {
			logging.FromContext(ctx).Warn("failed to list recent loads", "error", err)
		} else {
			params.Loads = loads
			if params.Loads == nil {
				params.Loads = []core.LoadEvent{}
			}
		}
	}

	var buf bytes.Buffer
	if err := templates.Dashboard(params).Render(ctx, &buf); err != nil {
		s.respondError(w, r, fmt.Errorf("render dashboard: %w", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// handleChart renders the chart series of one indicator as SVG.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	view, err := s.service.View(r.Context(), r.URL.Query().Get("indicator"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := renderChartSVG(&buf, view); err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = buf.WriteTo(w)
}

// handleDownload sends the selected indicator as a CSV attachment.
// columns=all exports every source column instead of year and value.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	indicator := q.Get("indicator")
	if indicator == "" {
		s.respondError(w, r, fmt.Errorf("%w: indicator is required", errInvalidParam))
		return
	}

	var full bool
	switch cols := q.Get("columns"); cols {
	case "":
	case "all":
		full = true
	default:
		s.respondError(w, r, fmt.Errorf("%w: columns=%q", errInvalidParam, cols))
		return
	}

	name, data, err := s.service.Export(r.Context(), indicator, full)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

// ============================================================================
// API Handlers
// ============================================================================

type indicatorsResponse struct {
	Country    string   `json:"country"`
	Indicators []string `json:"indicators"`
}

func (s *Server) handleAPIIndicators(w http.ResponseWriter, r *http.Request) {
	indicators, err := s.service.Indicators(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if indicators == nil {
		indicators = []string{}
	}

	writeJSON(w, indicatorsResponse{
		Country:    s.service.Country(),
		Indicators: indicators,
	})
}

type viewResponse struct {
	Name    string       `json:"name"`
	Code    string       `json:"code"`
	Table   []core.Point `json:"table"`
	Chart   []core.Point `json:"chart"`
	Summary core.Summary `json:"summary"`
}

func newViewResponse(v core.View) viewResponse {
	resp := viewResponse{
		Name:    v.Selection.Name,
		Code:    v.Selection.Code,
		Table:   v.Table,
		Chart:   v.Chart,
		Summary: v.Summary,
	}
	if resp.Table == nil {
		resp.Table = []core.Point{}
	}
	if resp.Chart == nil {
		resp.Chart = []core.Point{}
	}
	return resp
}

// handleAPIView returns the view for ?indicator=. An optional
// ?duplicate_years= overrides the configured chart policy.
func (s *Server) handleAPIView(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	indicator := q.Get("indicator")

	var (
		view core.View
		err  error
	)
	if raw := q.Get("duplicate_years"); raw != "" {
		policy, perr := core.ParseDuplicateYears(raw)
		if perr != nil {
			s.respondError(w, r, fmt.Errorf("%w: %w", errInvalidParam, perr))
			return
		}
		view, err = s.service.ViewWithPolicy(r.Context(), indicator, policy)
	} else {
		view, err = s.service.View(r.Context(), indicator)
	}
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, newViewResponse(view))
}

type loadResponse struct {
	ID          string    `json:"id"`
	Source      string    `json:"source"`
	Size        int64     `json:"size"`
	Country     string    `json:"country"`
	RawRows     int       `json:"raw_rows"`
	CountryRows int       `json:"country_rows"`
	Kept        int       `json:"kept_rows"`
	Dropped     int       `json:"dropped_rows"`
	DurationMS  int64     `json:"duration_ms"`
	LoadedAt    time.Time `json:"loaded_at"`
}

// handleAPILoads lists recent dataset loads. ?limit= caps the result.
func (s *Server) handleAPILoads(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, defaultLoadLimit)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	loads, err := s.service.RecentLoads(r.Context(), limit)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	out := make([]loadResponse, 0, len(loads))
	for _, ev := range loads {
		out = append(out, loadResponse{
			ID:          ev.ID.String(),
			Source:      ev.Source.Path,
			Size:        ev.Source.Size,
			Country:     ev.Country,
			RawRows:     ev.RawRows,
			CountryRows: ev.CountryRows,
			Kept:        ev.Kept,
			Dropped:     ev.Dropped,
			DurationMS:  ev.Duration.Milliseconds(),
			LoadedAt:    ev.LoadedAt,
		})
	}
	writeJSON(w, map[string]any{"loads": out})
}

// parseLimit parses the positive ?limit= parameter.
func parseLimit(r *http.Request, defaultVal int) (int, error) {
	val := r.URL.Query().Get("limit")
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: limit=%q", errInvalidParam, val)
	}
	return n, nil
}
