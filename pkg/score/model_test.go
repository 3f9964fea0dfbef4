package score

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/mchmarny/modelscore/pkg/hub"
	"github.com/mchmarny/modelscore/pkg/urls"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testModelURL = "https://huggingface.co/org/model"

type fixedMetric struct {
	name  string
	score Score
}

func (fm *fixedMetric) Name() string {
	return fm.name
}

func (fm *fixedMetric) Evaluate(ctx context.Context, m *Model) Score {
	return fm.score
}

func newTestModel(t *testing.T, f Fetcher, b *urls.Bundle) *Model {
	t.Helper()
	m, err := NewModel(f, b)
	require.NoError(t, err)
	return m
}

func TestNewModelValidation(t *testing.T) {
	_, err := NewModel(nil, &urls.Bundle{Model: testModelURL})
	assert.Error(t, err)

	_, err = NewModel(&stubFetcher{}, nil)
	assert.Error(t, err)

	_, err = NewModel(&stubFetcher{}, &urls.Bundle{})
	assert.Error(t, err)
}

func TestHubMetaMemoized(t *testing.T) {
	f := &stubFetcher{model: &hub.ModelMeta{ID: "org/model"}}
	m := newTestModel(t, f, &urls.Bundle{Model: testModelURL})

	ctx := context.Background()
	require.NotNil(t, m.HubMeta(ctx))
	require.NotNil(t, m.HubMeta(ctx))
	assert.Equal(t, 1, f.modelCalls)
}

func TestHubMetaFailureMemoized(t *testing.T) {
	f := &stubFetcher{modelErr: fmt.Errorf("unreachable")}
	m := newTestModel(t, f, &urls.Bundle{Model: testModelURL})

	ctx := context.Background()
	assert.Nil(t, m.HubMeta(ctx))
	assert.Nil(t, m.HubMeta(ctx))
	assert.Equal(t, 1, f.modelCalls)
}

func TestOptionalMetaSkippedWithoutURL(t *testing.T) {
	f := &stubFetcher{}
	m := newTestModel(t, f, &urls.Bundle{Model: testModelURL})

	ctx := context.Background()
	assert.Nil(t, m.DatasetMeta(ctx))
	assert.Nil(t, m.RepoMeta(ctx))
	assert.Zero(t, f.datasetCalls)
	assert.Zero(t, f.repoCalls)
}

func TestModelName(t *testing.T) {
	f := &stubFetcher{model: &hub.ModelMeta{ID: "org/bert-base"}}
	m := newTestModel(t, f, &urls.Bundle{Model: testModelURL})
	assert.Equal(t, "bert-base", m.Name(context.Background()))
}

func TestModelNameUnknown(t *testing.T) {
	f := &stubFetcher{modelErr: fmt.Errorf("unreachable")}
	m := newTestModel(t, f, &urls.Bundle{Model: testModelURL})
	assert.Equal(t, UnknownModelName, m.Name(context.Background()))
	assert.Equal(t, CategoryModel, m.Category())
}

func TestEvaluateRecordsScoreAndLatency(t *testing.T) {
	m := newTestModel(t, &stubFetcher{}, &urls.Bundle{Model: testModelURL})

	m.Evaluate(context.Background(), &fixedMetric{name: MetricLicense, score: Scalar(1.0)})

	s := m.GetScore(MetricLicense, Scalar(-1))
	assert.Equal(t, 1.0, s.Value())
	assert.GreaterOrEqual(t, m.GetLatency(MetricLicense), int64(0))

	// missing entries fall back to the caller default and zero latency
	assert.Equal(t, -1.0, m.GetScore(MetricBusFactor, Scalar(-1)).Value())
	assert.Equal(t, int64(0), m.GetLatency(MetricBusFactor))
}

func TestComputeNetScore(t *testing.T) {
	m := newTestModel(t, &stubFetcher{}, &urls.Bundle{Model: testModelURL})
	ctx := context.Background()

	metrics := []Metric{
		&fixedMetric{name: MetricLicense, score: Scalar(1.0)},
		&fixedMetric{name: MetricRampUp, score: Scalar(1.0)},
		&fixedMetric{name: MetricBusFactor, score: Scalar(1.0)},
		&fixedMetric{name: MetricClaims, score: Scalar(1.0)},
		&fixedMetric{name: MetricAvailability, score: Scalar(1.0)},
		&fixedMetric{name: MetricDatasetQuality, score: Scalar(1.0)},
		&fixedMetric{name: MetricCodeQuality, score: Scalar(1.0)},
		&fixedMetric{name: MetricSize, score: Breakdown(map[string]float64{
			"raspberry_pi": 1.0,
			"aws_server":   1.0,
		})},
	}
	m.EvaluateAll(ctx, metrics)

	assert.InDelta(t, 1.0, m.GetScore(MetricNetScore, Scalar(0)).Value(), 1e-9)
}

func TestNetScoreLicenseGating(t *testing.T) {
	m := newTestModel(t, &stubFetcher{}, &urls.Bundle{Model: testModelURL})
	m.EvaluateAll(context.Background(), []Metric{
		&fixedMetric{name: MetricLicense, score: Scalar(0)},
		&fixedMetric{name: MetricRampUp, score: Scalar(1.0)},
		&fixedMetric{name: MetricBusFactor, score: Scalar(1.0)},
	})
	assert.Zero(t, m.GetScore(MetricNetScore, Scalar(-1)).Value())
}

func TestNetScoreScalarSizeTreatedAsZero(t *testing.T) {
	m := newTestModel(t, &stubFetcher{}, &urls.Bundle{Model: testModelURL})
	m.EvaluateAll(context.Background(), []Metric{
		&fixedMetric{name: MetricLicense, score: Scalar(1.0)},
		&fixedMetric{name: MetricSize, score: Scalar(1.0)},
		&fixedMetric{name: MetricRampUp, score: Scalar(1.0)},
	})
	// only the ramp-up weight survives
	assert.InDelta(t, weightRampUp, m.GetScore(MetricNetScore, Scalar(0)).Value(), 1e-9)
}

func TestNetScoreLatencyStableAcrossRecomputes(t *testing.T) {
	m := newTestModel(t, &stubFetcher{}, &urls.Bundle{Model: testModelURL})

	m.mu.Lock()
	m.latencies[MetricLicense] = 60 * time.Millisecond
	m.mu.Unlock()

	m.ComputeNetScore()
	first := m.GetLatency(MetricNetScore)
	m.ComputeNetScore()
	second := m.GetLatency(MetricNetScore)

	assert.Equal(t, int64(60), first)
	assert.Equal(t, first, second)
}

func TestEvaluateAllIdempotent(t *testing.T) {
	f := &stubFetcher{model: &hub.ModelMeta{
		ID:       "org/model",
		CardData: map[string]any{"license": "mit"},
	}}
	m := newTestModel(t, f, &urls.Bundle{Model: testModelURL})

	metrics := []Metric{
		&LicenseMetric{},
		&SizeMetric{},
		&RampUpMetric{},
	}
	ctx := context.Background()

	m.EvaluateAll(ctx, metrics)
	first := m.GetScore(MetricNetScore, Scalar(-1)).Value()
	m.EvaluateAll(ctx, metrics)
	second := m.GetScore(MetricNetScore, Scalar(-1)).Value()

	assert.Equal(t, first, second)
	assert.Equal(t, 1, f.modelCalls)
}
