package score

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mchmarny/modelscore/pkg/genai"
	"github.com/mchmarny/modelscore/pkg/hub"
	"github.com/mchmarny/modelscore/pkg/urls"
	"github.com/stretchr/testify/assert"
)

func TestScanClaims(t *testing.T) {
	tests := []struct {
		name string
		text string
		want float64
	}{
		{
			name: "quantified and benchmarked",
			text: "Achieves accuracy of 92.5% on the MMLU benchmark.",
			want: 1.0,
		},
		{
			name: "quantified only",
			text: "F1: 88.1 on our internal suite.",
			want: 0.6,
		},
		{
			name: "benchmark mention only",
			text: "Evaluated on SQuAD.",
			want: 0.2,
		},
		{
			name: "year is not a score",
			text: "Accuracy improved in 2023.",
			want: 0,
		},
		{
			name: "year mid sentence is not a score",
			text: "Recall benchmarked in 1999 and again later.",
			want: 0,
		},
		{
			name: "version is not a score",
			text: "Requires accuracy module 4.12.0 to run.",
			want: 0,
		},
		{
			name: "no claims",
			text: "A friendly model for text generation.",
			want: 0,
		},
		{
			name: "mean of strongest three",
			text: "accuracy 91.0 on GLUE\nBLEU 44.2 on superglue\nrecall: 80\ntested on coco",
			want: (1.0 + 1.0 + 0.6) / 3,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, scanClaims(tt.text), 1e-9)
		})
	}
}

func TestClaimsMetricHeuristic(t *testing.T) {
	f := &stubFetcher{model: &hub.ModelMeta{
		ID:     "org/model",
		Readme: "Reaches accuracy of 90.2% on the GLUE benchmark.",
	}}
	m := newTestModel(t, f, &urls.Bundle{Model: testModelURL})
	pm := &ClaimsMetric{}
	assert.Equal(t, MetricClaims, pm.Name())
	assert.Equal(t, 1.0, pm.Evaluate(context.Background(), m).Value())
}

func TestClaimsMetricNoText(t *testing.T) {
	f := &stubFetcher{model: &hub.ModelMeta{ID: "org/model"}}
	m := newTestModel(t, f, &urls.Bundle{Model: testModelURL})
	assert.Zero(t, (&ClaimsMetric{}).Evaluate(context.Background(), m).Value())
}

func TestClaimsMetricCompletion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"0.9\njustification"}}]}`)) //nolint:errcheck
	}))
	defer srv.Close()

	f := &stubFetcher{model: &hub.ModelMeta{
		ID:     "org/model",
		Readme: "Evaluated on SQuAD.",
	}}
	m := newTestModel(t, f, &urls.Bundle{Model: testModelURL})
	pm := &ClaimsMetric{llm: genai.New(srv.URL, "test", "key")}
	assert.InDelta(t, 0.9, pm.Evaluate(context.Background(), m).Value(), 1e-9)
}

func TestClaimsMetricCompletionFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := &stubFetcher{model: &hub.ModelMeta{
		ID:     "org/model",
		Readme: "Evaluated on SQuAD.",
	}}
	m := newTestModel(t, f, &urls.Bundle{Model: testModelURL})
	pm := &ClaimsMetric{llm: genai.New(srv.URL, "test", "key")}
	// service failure falls back to the deterministic scan
	assert.InDelta(t, 0.2, pm.Evaluate(context.Background(), m).Value(), 1e-9)
}
