package score

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mchmarny/modelscore/pkg/genai"
	"github.com/mchmarny/modelscore/pkg/urls"
	"golang.org/x/sync/errgroup"
)

// Catalogue owns the metric suite and the set of models under evaluation,
// and renders the newline-delimited JSON report.
type Catalogue struct {
	fetcher     Fetcher
	metrics     []Metric
	models      []*Model
	concurrency int
}

// CatalogueOption customizes a Catalogue.
type CatalogueOption func(*Catalogue)

// WithCompletions routes the documentation-driven metrics through the
// given completion client, keeping the deterministic scans as fallback.
func WithCompletions(llm *genai.Client) CatalogueOption {
	return func(c *Catalogue) {
		for _, metric := range c.metrics {
			switch m := metric.(type) {
			case *ClaimsMetric:
				m.llm = llm
			case *RampUpMetric:
				m.llm = llm
			}
		}
	}
}

// WithConcurrency sets how many models evaluate in parallel. Values below 2
// keep the default sequential evaluation.
func WithConcurrency(n int) CatalogueOption {
	return func(c *Catalogue) {
		if n > 1 {
			c.concurrency = n
		}
	}
}

// NewCatalogue builds a catalogue with the standard metric suite.
func NewCatalogue(f Fetcher, opts ...CatalogueOption) (*Catalogue, error) {
	if f == nil {
		return nil, fmt.Errorf("fetcher required")
	}
	c := &Catalogue{
		fetcher: f,
		metrics: []Metric{
			&LicenseMetric{},
			&AvailabilityMetric{fetcher: f},
			&ClaimsMetric{},
			&BusFactorMetric{},
			&SizeMetric{},
			&CodeQualityMetric{},
			&DatasetQualityMetric{},
			&RampUpMetric{},
		},
		concurrency: 1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Add registers a model built from the given bundle and returns it.
func (c *Catalogue) Add(b *urls.Bundle) (*Model, error) {
	m, err := NewModel(c.fetcher, b)
	if err != nil {
		return nil, fmt.Errorf("add model: %w", err)
	}
	c.models = append(c.models, m)
	return m, nil
}

// Models returns the registered models in insertion order.
func (c *Catalogue) Models() []*Model {
	return c.models
}

// EvaluateModels runs the full metric suite over every registered model.
// Models are independent, so with concurrency above 1 they evaluate in
// parallel while each model's metrics still run in suite order.
func (c *Catalogue) EvaluateModels(ctx context.Context) error {
	run := uuid.NewString()
	start := time.Now()
	slog.Debug("evaluating models", "run", run, "models", len(c.models), "concurrency", c.concurrency)

	if c.concurrency > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(c.concurrency)
		for _, m := range c.models {
			g.Go(func() error {
				m.EvaluateAll(gctx, c.metrics)
				return gctx.Err()
			})
		}
		if err := g.Wait(); err != nil {
			return fmt.Errorf("evaluate models: %w", err)
		}
	} else {
		for _, m := range c.models {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("evaluate models: %w", err)
			}
			m.EvaluateAll(ctx, c.metrics)
		}
	}

	slog.Debug("evaluation done", "run", run, "duration", time.Since(start))
	return nil
}

// Record is one report line. Scores are rounded to two decimals and
// latencies are whole non-negative milliseconds.
type Record struct {
	Name                     string             `json:"name" yaml:"name"`
	Category                 string             `json:"category" yaml:"category"`
	NetScore                 float64            `json:"net_score" yaml:"net_score"`
	NetScoreLatency          int64              `json:"net_score_latency" yaml:"net_score_latency"`
	RampUpTime               float64            `json:"ramp_up_time" yaml:"ramp_up_time"`
	RampUpTimeLatency        int64              `json:"ramp_up_time_latency" yaml:"ramp_up_time_latency"`
	BusFactor                float64            `json:"bus_factor" yaml:"bus_factor"`
	BusFactorLatency         int64              `json:"bus_factor_latency" yaml:"bus_factor_latency"`
	PerformanceClaims        float64            `json:"performance_claims" yaml:"performance_claims"`
	PerformanceClaimsLatency int64              `json:"performance_claims_latency" yaml:"performance_claims_latency"`
	License                  float64            `json:"license" yaml:"license"`
	LicenseLatency           int64              `json:"license_latency" yaml:"license_latency"`
	SizeScore                map[string]float64 `json:"size_score" yaml:"size_score"`
	SizeScoreLatency         int64              `json:"size_score_latency" yaml:"size_score_latency"`
	DatasetAndCodeScore      float64            `json:"dataset_and_code_score" yaml:"dataset_and_code_score"`
	DatasetAndCodeLatency    int64              `json:"dataset_and_code_score_latency" yaml:"dataset_and_code_score_latency"`
	DatasetQuality           float64            `json:"dataset_quality" yaml:"dataset_quality"`
	DatasetQualityLatency    int64              `json:"dataset_quality_latency" yaml:"dataset_quality_latency"`
	CodeQuality              float64            `json:"code_quality" yaml:"code_quality"`
	CodeQualityLatency       int64              `json:"code_quality_latency" yaml:"code_quality_latency"`
}

// RecordFor snapshots one model's results into a report line.
func (c *Catalogue) RecordFor(ctx context.Context, m *Model) Record {
	scalar := func(name string) float64 {
		return round2(m.GetScore(name, Scalar(0)).Value())
	}

	size := m.GetScore(MetricSize, Breakdown(map[string]float64{}))
	devices, ok := size.Report().(map[string]float64)
	if !ok {
		devices = map[string]float64{}
	}

	return Record{
		Name:                     m.Name(ctx),
		Category:                 m.Category(),
		NetScore:                 scalar(MetricNetScore),
		NetScoreLatency:          m.GetLatency(MetricNetScore),
		RampUpTime:               scalar(MetricRampUp),
		RampUpTimeLatency:        m.GetLatency(MetricRampUp),
		BusFactor:                scalar(MetricBusFactor),
		BusFactorLatency:         m.GetLatency(MetricBusFactor),
		PerformanceClaims:        scalar(MetricClaims),
		PerformanceClaimsLatency: m.GetLatency(MetricClaims),
		License:                  scalar(MetricLicense),
		LicenseLatency:           m.GetLatency(MetricLicense),
		SizeScore:                devices,
		SizeScoreLatency:         m.GetLatency(MetricSize),
		DatasetAndCodeScore:      scalar(MetricAvailability),
		DatasetAndCodeLatency:    m.GetLatency(MetricAvailability),
		DatasetQuality:           scalar(MetricDatasetQuality),
		DatasetQualityLatency:    m.GetLatency(MetricDatasetQuality),
		CodeQuality:              scalar(MetricCodeQuality),
		CodeQualityLatency:       m.GetLatency(MetricCodeQuality),
	}
}

// GenerateReport renders one JSON object per model, newline-delimited, in
// insertion order.
func (c *Catalogue) GenerateReport(ctx context.Context) (string, error) {
	var b strings.Builder
	for _, m := range c.models {
		line, err := json.Marshal(c.RecordFor(ctx, m))
		if err != nil {
			return "", fmt.Errorf("encode report line: %w", err)
		}
		b.Write(line)
		b.WriteString("\n")
	}
	return b.String(), nil
}
