package score

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mchmarny/modelscore/pkg/genai"
	"github.com/mchmarny/modelscore/pkg/hub"
	"github.com/mchmarny/modelscore/pkg/urls"
	"github.com/stretchr/testify/assert"
)

func evalRampUp(t *testing.T, meta *hub.ModelMeta) float64 {
	t.Helper()
	var f stubFetcher
	if meta != nil {
		f.model = meta
	}
	m := newTestModel(t, &f, &urls.Bundle{Model: testModelURL})
	rm := &RampUpMetric{}
	assert.Equal(t, MetricRampUp, rm.Name())
	return rm.Evaluate(context.Background(), m).Value()
}

func TestRampUpCompleteCard(t *testing.T) {
	readme := strings.Repeat("An extensively documented model. ", 10) + `
## Installation
pip install transformers

## Usage
` + "```python\nmodel.generate()\n```" + `

Trained on the wikitext dataset, see train.py for the training script.
`
	assert.InDelta(t, 1.0, evalRampUp(t, &hub.ModelMeta{ID: "org/model", Readme: readme}), 1e-9)
}

func TestRampUpSparseCard(t *testing.T) {
	// short card with install instructions only
	score := evalRampUp(t, &hub.ModelMeta{ID: "org/model", Readme: "pip install mything"})
	assert.InDelta(t, 0.2, score, 1e-9)
}

func TestRampUpNoEvidence(t *testing.T) {
	assert.Zero(t, evalRampUp(t, nil))
	assert.Zero(t, evalRampUp(t, &hub.ModelMeta{ID: "org/model"}))
	assert.Zero(t, evalRampUp(t, &hub.ModelMeta{ID: "org/model", Readme: "   \n\t"}))
}

func TestRampUpCompletion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"0.75"}}]}`)) //nolint:errcheck
	}))
	defer srv.Close()

	f := &stubFetcher{model: &hub.ModelMeta{ID: "org/model", Readme: "pip install mything"}}
	m := newTestModel(t, f, &urls.Bundle{Model: testModelURL})
	rm := &RampUpMetric{llm: genai.New(srv.URL, "test", "key")}
	assert.InDelta(t, 0.75, rm.Evaluate(context.Background(), m).Value(), 1e-9)
}
