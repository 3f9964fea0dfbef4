package score

import (
	"context"
	"sort"
	"strings"
)

// Organizations assumed to have deep maintainer benches regardless of the
// observable contributor spread.
var largeOrgs = map[string]bool{
	"google":      true,
	"facebook":    true,
	"meta":        true,
	"microsoft":   true,
	"openai":      true,
	"huggingface": true,
	"amazon":      true,
	"ibm":         true,
	"apple":       true,
	"tencent":     true,
	"baidu":       true,
}

// BusFactorMetric estimates maintainer redundancy. A well-known large
// organization scores 1.0 outright; otherwise the spread of the top ten
// contributors drives the score, where a flat spread with ten or more
// contributors reaches 1.0 and a single dominant author trends toward 0.
type BusFactorMetric struct{}

func (bm *BusFactorMetric) Name() string {
	return MetricBusFactor
}

func (bm *BusFactorMetric) Evaluate(ctx context.Context, m *Model) Score {
	if largeOrgs[modelOwner(ctx, m)] {
		return Scalar(1.0)
	}

	repo := m.RepoMeta(ctx)
	if repo == nil || len(repo.Contributors) == 0 {
		return Scalar(0)
	}

	counts := make([]int, 0, len(repo.Contributors))
	for _, c := range repo.Contributors {
		if c.Contributions > 0 {
			counts = append(counts, c.Contributions)
		}
	}
	if len(counts) == 0 {
		return Scalar(0)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(counts)))
	if len(counts) > 10 {
		counts = counts[:10]
	}

	minC, maxC := counts[0], counts[0]
	for _, c := range counts {
		if c < minC {
			minC = c
		}
		if c > maxC {
			maxC = c
		}
	}

	spread := float64(minC) / float64(maxC)
	return Scalar(clamp01(spread * float64(len(counts)) * 0.1))
}

func modelOwner(ctx context.Context, m *Model) string {
	meta := m.HubMeta(ctx)
	if meta == nil {
		return ""
	}
	if meta.Author != "" {
		return strings.ToLower(meta.Author)
	}
	if owner, _, ok := strings.Cut(meta.ID, "/"); ok {
		return strings.ToLower(owner)
	}
	return ""
}
