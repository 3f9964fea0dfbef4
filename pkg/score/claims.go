package score

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/mchmarny/modelscore/pkg/genai"
)

// Claim strength rubric: a quantified metric tied to a named benchmark is a
// strong claim, a bare quantified metric is moderate, and a benchmark
// mention with no number is weak.
const (
	claimStrong   = 1.0
	claimModerate = 0.6
	claimWeak     = 0.2
)

// topClaims is how many of the strongest claims feed the final mean.
const topClaims = 3

// The number capture only consumes a dot when a digit follows, so a
// sentence-ending period stays out of the match and the year filter
// still sees a bare year.
var metricNumberPattern = regexp.MustCompile(`(?i)\b(accuracy|f1|precision|recall|bleu|rouge|wer|cer|perplexity|exact match|pass@\d+|mrr|ndcg|auc|map|top-\d+)\b[^.\n]{0,40}?(\d+(?:\.\d+)?)\s*%?`)

var benchmarkPattern = regexp.MustCompile(`(?i)\b(glue|superglue|squad|mmlu|imagenet|coco|wikitext|librispeech|hellaswag|arc|truthfulqa|winogrande|gsm8k|humaneval|big-?bench|mt-?bench|helm)\b`)

// Years and semantic versions read like scores but are not.
var yearPattern = regexp.MustCompile(`^(19|20)\d{2}$`)
var versionPattern = regexp.MustCompile(`\d+\.\d+\.\d+`)

const claimsPrompt = `Rate how well the following model documentation backs up its
performance claims with quantified, benchmarked evidence. Respond with a
single number between 0 and 1 on the first line.

%s`

// ClaimsMetric rates how well the model card substantiates its performance
// claims. When a completion model is configured it grades the card text and
// the deterministic scan is the fallback; otherwise the scan is the result.
type ClaimsMetric struct {
	llm *genai.Client
}

func (pm *ClaimsMetric) Name() string {
	return MetricClaims
}

func (pm *ClaimsMetric) Evaluate(ctx context.Context, m *Model) Score {
	text := claimsText(ctx, m)
	if strings.TrimSpace(text) == "" {
		return Scalar(0)
	}

	if pm.llm != nil {
		resp, err := pm.llm.Complete(ctx, fmt.Sprintf(claimsPrompt, truncate(text, 8000)))
		if err == nil {
			return Scalar(genai.ExtractScore(resp))
		}
		slog.Debug("completion grading unavailable, using claim scan", "error", err)
	}

	return Scalar(scanClaims(text))
}

func claimsText(ctx context.Context, m *Model) string {
	var b strings.Builder
	if meta := m.HubMeta(ctx); meta != nil {
		b.WriteString(meta.Readme)
		b.WriteString("\n")
		b.WriteString(meta.ModelIndex)
	}
	if repo := m.RepoMeta(ctx); repo != nil {
		b.WriteString("\n")
		b.WriteString(repo.Description)
	}
	return b.String()
}

// scanClaims grades each line against the rubric and averages the strongest
// claims so one loud line cannot carry an otherwise empty card.
func scanClaims(text string) float64 {
	var grades []float64
	for _, line := range strings.Split(text, "\n") {
		quantified := hasQuantifiedMetric(line)
		benchmarked := benchmarkPattern.MatchString(line)
		switch {
		case quantified && benchmarked:
			grades = append(grades, claimStrong)
		case quantified:
			grades = append(grades, claimModerate)
		case benchmarked:
			grades = append(grades, claimWeak)
		}
	}
	if len(grades) == 0 {
		return 0
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(grades)))
	if len(grades) > topClaims {
		grades = grades[:topClaims]
	}
	var sum float64
	for _, g := range grades {
		sum += g
	}
	return sum / float64(len(grades))
}

func hasQuantifiedMetric(line string) bool {
	if versionPattern.MatchString(line) {
		return false
	}
	match := metricNumberPattern.FindStringSubmatch(line)
	if match == nil {
		return false
	}
	return !yearPattern.MatchString(match[2])
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
