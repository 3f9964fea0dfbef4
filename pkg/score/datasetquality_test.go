package score

import (
	"context"
	"testing"

	"github.com/mchmarny/modelscore/pkg/hub"
	"github.com/mchmarny/modelscore/pkg/urls"
	"github.com/stretchr/testify/assert"
)

func evalDatasetQuality(t *testing.T, f Fetcher, datasetURL string) float64 {
	t.Helper()
	m := newTestModel(t, f, &urls.Bundle{Model: testModelURL, Dataset: datasetURL})
	dm := &DatasetQualityMetric{}
	assert.Equal(t, MetricDatasetQuality, dm.Name())
	return dm.Evaluate(context.Background(), m).Value()
}

func TestDatasetQualityNoDataset(t *testing.T) {
	f := &stubFetcher{model: &hub.ModelMeta{ID: "org/model"}}
	assert.Zero(t, evalDatasetQuality(t, f, ""))
	assert.Zero(t, f.datasetCalls)
}

func TestDatasetQualityFetchFailure(t *testing.T) {
	f := &stubFetcher{}
	assert.Zero(t, evalDatasetQuality(t, f, "https://huggingface.co/datasets/org/data"))
	assert.Equal(t, 1, f.datasetCalls)
}

func TestDatasetQualityBlend(t *testing.T) {
	f := &stubFetcher{dataset: &hub.DatasetMeta{
		ID:          "org/data",
		Description: "A benchmark corpus for evaluation.",
		Citation:    "@article{one}\n@inproceedings{two}",
		Likes:       100,
		Downloads:   1000,
		Tags:        []string{"nlp", "english", "benchmark"},
		CardData:    map[string]any{"license": "mit"},
	}}
	// docs 3/4 of 0.4, likes saturated, citations and downloads log-scaled
	assert.InDelta(t, 0.692, evalDatasetQuality(t, f, "https://huggingface.co/datasets/org/data"), 0.001)
}

func TestDatasetQualityLogScaleSaturates(t *testing.T) {
	assert.Zero(t, logScale(0, 100))
	assert.InDelta(t, 1.0, logScale(100, 100), 1e-9)
	assert.Equal(t, 1.0, logScale(10_000, 100))
}

func TestDatasetQualityBareMetadata(t *testing.T) {
	f := &stubFetcher{dataset: &hub.DatasetMeta{ID: "org/data"}}
	assert.Zero(t, evalDatasetQuality(t, f, "https://huggingface.co/datasets/org/data"))
}
