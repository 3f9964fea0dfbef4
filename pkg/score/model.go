package score

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/mchmarny/modelscore/pkg/gh"
	"github.com/mchmarny/modelscore/pkg/hub"
	"github.com/mchmarny/modelscore/pkg/urls"
	"golang.org/x/sync/singleflight"
)

// CategoryModel is the only artifact category the report emits.
const CategoryModel = "MODEL"

// UnknownModelName is reported when no hub identifier can be resolved.
const UnknownModelName = "UNKNOWN_MODEL"

// Composite weights. The license score multiplies the weighted sum, so an
// incompatible license zeroes the whole composite.
const (
	weightSize           = 0.2
	weightRampUp         = 0.3
	weightBusFactor      = 0.1
	weightAvailability   = 0.1
	weightDatasetQuality = 0.1
	weightCodeQuality    = 0.1
	weightClaims         = 0.1
)

// Model is one scored bundle: the model URL plus optional code and dataset
// links, the memoized remote metadata, and the accumulated metric results.
// All methods are safe for concurrent use.
type Model struct {
	ModelURL   string
	CodeURL    string
	DatasetURL string

	fetcher Fetcher
	flight  singleflight.Group

	mu             sync.Mutex
	hubMeta        *hub.ModelMeta
	hubFetched     bool
	datasetMeta    *hub.DatasetMeta
	datasetFetched bool
	repoMeta       *gh.RepoMeta
	repoFetched    bool
	cloneStats     *gh.CloneStats
	cloneFetched   bool
	scores         map[string]Score
	latencies      map[string]time.Duration
}

// NewModel builds a Model from a parsed bundle. The model link is required,
// code and dataset links are optional.
func NewModel(f Fetcher, b *urls.Bundle) (*Model, error) {
	if f == nil {
		return nil, fmt.Errorf("fetcher required")
	}
	if b == nil || b.Model == "" {
		return nil, fmt.Errorf("model URL required")
	}
	return &Model{
		ModelURL:   b.Model,
		CodeURL:    b.Code,
		DatasetURL: b.Dataset,
		fetcher:    f,
		scores:     make(map[string]Score),
		latencies:  make(map[string]time.Duration),
	}, nil
}

// HubMeta returns the hub metadata for the model, fetching it at most once.
// A failed fetch is memoized as nil so metrics degrade instead of retrying.
func (m *Model) HubMeta(ctx context.Context) *hub.ModelMeta {
	v, _, _ := m.flight.Do("model", func() (any, error) {
		m.mu.Lock()
		if m.hubFetched {
			meta := m.hubMeta
			m.mu.Unlock()
			return meta, nil
		}
		m.mu.Unlock()

		meta, err := m.fetcher.ModelMeta(ctx, m.ModelURL)
		if err != nil {
			slog.Warn("model metadata unavailable", "url", m.ModelURL, "error", err)
			meta = nil
		}

		m.mu.Lock()
		m.hubMeta, m.hubFetched = meta, true
		m.mu.Unlock()
		return meta, nil
	})
	meta, _ := v.(*hub.ModelMeta)
	return meta
}

// DatasetMeta returns the dataset metadata, nil when the bundle has no
// dataset link or the fetch failed.
func (m *Model) DatasetMeta(ctx context.Context) *hub.DatasetMeta {
	if m.DatasetURL == "" {
		return nil
	}
	v, _, _ := m.flight.Do("dataset", func() (any, error) {
		m.mu.Lock()
		if m.datasetFetched {
			meta := m.datasetMeta
			m.mu.Unlock()
			return meta, nil
		}
		m.mu.Unlock()

		meta, err := m.fetcher.DatasetMeta(ctx, m.DatasetURL)
		if err != nil {
			slog.Warn("dataset metadata unavailable", "url", m.DatasetURL, "error", err)
			meta = nil
		}

		m.mu.Lock()
		m.datasetMeta, m.datasetFetched = meta, true
		m.mu.Unlock()
		return meta, nil
	})
	meta, _ := v.(*hub.DatasetMeta)
	return meta
}

// RepoMeta returns the code repository metadata, nil when the bundle has no
// code link or the fetch failed.
func (m *Model) RepoMeta(ctx context.Context) *gh.RepoMeta {
	if m.CodeURL == "" {
		return nil
	}
	v, _, _ := m.flight.Do("repo", func() (any, error) {
		m.mu.Lock()
		if m.repoFetched {
			meta := m.repoMeta
			m.mu.Unlock()
			return meta, nil
		}
		m.mu.Unlock()

		meta, err := m.fetcher.RepoMeta(ctx, m.CodeURL)
		if err != nil {
			slog.Warn("repository metadata unavailable", "url", m.CodeURL, "error", err)
			meta = nil
		}

		m.mu.Lock()
		m.repoMeta, m.repoFetched = meta, true
		m.mu.Unlock()
		return meta, nil
	})
	meta, _ := v.(*gh.RepoMeta)
	return meta
}

// CloneStats returns the working-tree summary of the code repository,
// nil when there is no code link or the clone failed.
func (m *Model) CloneStats(ctx context.Context) *gh.CloneStats {
	repo := m.RepoMeta(ctx)
	if repo == nil || repo.CloneURL == "" {
		return nil
	}
	v, _, _ := m.flight.Do("clone", func() (any, error) {
		m.mu.Lock()
		if m.cloneFetched {
			stats := m.cloneStats
			m.mu.Unlock()
			return stats, nil
		}
		m.mu.Unlock()

		stats, err := m.fetcher.AnalyzeClone(ctx, repo.CloneURL)
		if err != nil {
			slog.Warn("clone analysis unavailable", "url", repo.CloneURL, "error", err)
			stats = nil
		}

		m.mu.Lock()
		m.cloneStats, m.cloneFetched = stats, true
		m.mu.Unlock()
		return stats, nil
	})
	stats, _ := v.(*gh.CloneStats)
	return stats
}

// Name resolves the display name from the hub identifier's second path
// segment, falling back to UNKNOWN_MODEL.
func (m *Model) Name(ctx context.Context) string {
	meta := m.HubMeta(ctx)
	if meta != nil {
		if parts := strings.Split(meta.ID, "/"); len(parts) > 1 && parts[1] != "" {
			return parts[1]
		}
	}
	return UnknownModelName
}

// Category reports the artifact category.
func (m *Model) Category() string {
	return CategoryModel
}

// Evaluate runs one metric and records its score and wall-clock latency.
// Re-evaluating the same metric overwrites the previous values.
func (m *Model) Evaluate(ctx context.Context, metric Metric) {
	start := time.Now()
	s := metric.Evaluate(ctx, m)
	elapsed := time.Since(start)

	m.mu.Lock()
	m.scores[metric.Name()] = s
	m.latencies[metric.Name()] = elapsed
	m.mu.Unlock()
}

// EvaluateAll runs every metric in order and then computes the composite.
func (m *Model) EvaluateAll(ctx context.Context, metrics []Metric) {
	for _, metric := range metrics {
		m.Evaluate(ctx, metric)
	}
	m.ComputeNetScore()
}

// ComputeNetScore folds the recorded metric scores into the composite.
// Missing metrics contribute 0, and a resource-footprint score that is not
// a device breakdown is treated as 0. The composite latency is the sum of
// the individual metric latencies.
func (m *Model) ComputeNetScore() {
	m.mu.Lock()
	defer m.mu.Unlock()

	scalar := func(name string) float64 {
		return m.scores[name].Value()
	}

	size := 0.0
	if s, ok := m.scores[MetricSize]; ok {
		if s.IsBreakdown() {
			size = s.Value()
		} else {
			slog.Warn("resource footprint score is not a device breakdown, treating as 0")
		}
	}

	sum := weightSize*size +
		weightRampUp*scalar(MetricRampUp) +
		weightBusFactor*scalar(MetricBusFactor) +
		weightAvailability*scalar(MetricAvailability) +
		weightDatasetQuality*scalar(MetricDatasetQuality) +
		weightCodeQuality*scalar(MetricCodeQuality) +
		weightClaims*scalar(MetricClaims)

	net := clamp01(scalar(MetricLicense) * sum)

	// exclude the previous composite entry so re-evaluation does not
	// compound its own latency
	var total time.Duration
	for name, d := range m.latencies {
		if name == MetricNetScore {
			continue
		}
		total += d
	}

	m.scores[MetricNetScore] = Scalar(net)
	m.latencies[MetricNetScore] = total
}

// GetScore returns the recorded score for a metric name, or the given
// default when the metric has not been evaluated.
func (m *Model) GetScore(name string, def Score) Score {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.scores[name]; ok {
		return s
	}
	return def
}

// GetLatency returns the recorded latency in whole milliseconds, never
// negative, 0 when the metric has not been evaluated.
func (m *Model) GetLatency(name string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	ms := m.latencies[name].Milliseconds()
	if ms < 0 {
		return 0
	}
	return ms
}
