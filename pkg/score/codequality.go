package score

import (
	"context"
	"math"
)

// CodeQualityMetric blends repository popularity, commit cadence, test
// coverage of the working tree, and documentation hygiene. Without a code
// repository the score is 0; when the clone fails only the popularity and
// cadence components remain.
type CodeQualityMetric struct{}

func (cm *CodeQualityMetric) Name() string {
	return MetricCodeQuality
}

func (cm *CodeQualityMetric) Evaluate(ctx context.Context, m *Model) Score {
	repo := m.RepoMeta(ctx)
	if repo == nil {
		return Scalar(0)
	}

	total := math.Min(float64(repo.Stars)/50*0.01, 0.1)
	total += math.Min(float64(repo.Forks)/10*0.01, 0.1)
	total += math.Min(repo.AvgDailyCommits*0.05, 0.3)

	if stats := m.CloneStats(ctx); stats != nil {
		if stats.SourceFiles > 0 {
			ratio := float64(stats.TestFiles) / float64(stats.SourceFiles)
			total += math.Min(ratio*0.3, 0.3)
		}
		if stats.HasLicense {
			total += 0.05
		}
		if stats.HasReadme {
			total += 0.05
		}
		if stats.HasContributing {
			total += 0.10
		}
	}

	return Scalar(clamp01(total))
}
