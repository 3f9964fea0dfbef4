package score

import (
	"context"
	"math"
	"strings"

	"github.com/mchmarny/modelscore/pkg/hub"
)

// Saturation points for the log-scaled popularity components.
const (
	citationCap = 10
	likesCap    = 100
	downloadCap = 1_000_000
)

// DatasetQualityMetric rates the declared dataset: documentation coverage
// carries 0.4, with citations, likes, and downloads each log-scaled into
// the remaining 0.6. A bundle without a dataset link, or one whose
// metadata cannot be fetched, scores 0.
type DatasetQualityMetric struct{}

func (dm *DatasetQualityMetric) Name() string {
	return MetricDatasetQuality
}

func (dm *DatasetQualityMetric) Evaluate(ctx context.Context, m *Model) Score {
	meta := m.DatasetMeta(ctx)
	if meta == nil {
		return Scalar(0)
	}

	score := 0.4 * docsCoverage(meta)
	score += 0.2 * logScale(float64(citationCount(meta.Citation)), citationCap)
	score += 0.2 * logScale(float64(meta.Likes), likesCap)
	score += 0.2 * logScale(float64(meta.Downloads), downloadCap)
	return Scalar(clamp01(score))
}

// docsCoverage checks four documentation signals, each worth a quarter:
// a description, a substantive one, structured card data, and topic tags.
func docsCoverage(meta *hub.DatasetMeta) float64 {
	var hits float64
	desc := strings.TrimSpace(meta.Description)
	if desc != "" {
		hits++
	}
	if len(desc) >= 200 {
		hits++
	}
	if len(meta.CardData) > 0 {
		hits++
	}
	if len(meta.Tags) >= 3 {
		hits++
	}
	return hits / 4
}

// citationCount counts BibTeX entries in the citation block.
func citationCount(citation string) int {
	return strings.Count(citation, "@")
}

// logScale maps n onto [0,1] with diminishing returns, saturating at max.
func logScale(n, max float64) float64 {
	if n <= 0 {
		return 0
	}
	return math.Min(1, math.Log10(1+n)/math.Log10(1+max))
}
