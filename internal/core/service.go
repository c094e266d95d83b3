package core

import (
	"context"
	"errors"
	"log/slog"
)

// ErrHistoryDisabled is returned by RecentLoads when no history store is
// configured.
var ErrHistoryDisabled = errors.New("load history not enabled")

// ServiceConfig holds the settings a Service is built from.
type ServiceConfig struct {
	Path           string
	Country        string
	DuplicateYears DuplicateYears
}

// Service answers shell requests against one source file.
// It is safe for concurrent use.
type Service struct {
	cfg      ServiceConfig
	cache    *Cache
	recorder LoadRecorder
}

// NewService creates a Service. cache may be shared between services;
// a nil cache gets a private one. recorder may be nil.
func NewService(cfg ServiceConfig, cache *Cache, recorder LoadRecorder) *Service {
	if cfg.Country == "" {
		cfg.Country = DefaultCountry
	}
	if cfg.DuplicateYears == "" {
		cfg.DuplicateYears = DuplicateLast
	}
	if cache == nil {
		cache = NewCache()
	}
	return &Service{cfg: cfg, cache: cache, recorder: recorder}
}

// Country returns the country the service is restricted to.
func (s *Service) Country() string {
	return s.cfg.Country
}

// Path returns the source path.
func (s *Service) Path() string {
	return s.cfg.Path
}

// Dataset returns the current dataset, loading it if the source changed.
func (s *Service) Dataset(ctx context.Context) (*Dataset, error) {
	ds, fresh, err := s.cache.Get(ctx, s.cfg.Path, LoadOptions{Country: s.cfg.Country})
	if err != nil {
		return nil, err
	}

	if fresh {
		slog.Info("dataset loaded",
			"load_id", ds.LoadID,
			"source", ds.Source.Path,
			"country", ds.Country,
			"kept", len(ds.Records),
			"dropped", ds.Dropped,
		)
		s.record(ctx, ds)
	}
	return ds, nil
}

// Indicators returns the sorted indicator names of the current dataset.
func (s *Service) Indicators(ctx context.Context) ([]string, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	return Indicators(ds.Records), nil
}

// IndicatorCounts returns each indicator with its row count.
func (s *Service) IndicatorCounts(ctx context.Context) ([]IndicatorCount, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	return CountIndicators(ds.Records), nil
}

// View builds the table, chart series and summary for one indicator.
// An unknown indicator yields an empty view, not an error.
func (s *Service) View(ctx context.Context, indicator string) (View, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return View{}, err
	}
	return BuildView(SelectIndicator(ds.Records, indicator), s.cfg.DuplicateYears), nil
}

// ViewWithPolicy is View with an explicit duplicate-years policy.
func (s *Service) ViewWithPolicy(ctx context.Context, indicator string, policy DuplicateYears) (View, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return View{}, err
	}
	return BuildView(SelectIndicator(ds.Records, indicator), policy), nil
}

// Export returns the download file name and CSV bytes for one indicator.
// full selects every source column instead of year and value only.
func (s *Service) Export(ctx context.Context, indicator string, full bool) (string, []byte, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return "", nil, err
	}

	sel := SelectIndicator(ds.Records, indicator)

	var data []byte
	if full {
		data, err = ExportFullCSV(ds, sel.Records)
	} else {
		data, err = ExportCSV(sel.Records)
	}
	if err != nil {
		return "", nil, err
	}
	return ExportFileName(indicator, s.cfg.Country), data, nil
}

// RecentLoads returns the most recent recorded loads, newest first.
func (s *Service) RecentLoads(ctx context.Context, limit int) ([]LoadEvent, error) {
	lister, ok := s.recorder.(LoadLister)
	if !ok {
		return nil, ErrHistoryDisabled
	}
	return lister.RecentLoads(ctx, limit)
}

// HistoryEnabled reports whether RecentLoads can answer.
func (s *Service) HistoryEnabled() bool {
	_, ok := s.recorder.(LoadLister)
	return ok
}

func (s *Service) record(ctx context.Context, ds *Dataset) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.RecordLoad(ctx, NewLoadEvent(ds)); err != nil {
		slog.Warn("failed to record dataset load",
			"load_id", ds.LoadID,
			"error", err,
		)
	}
}
