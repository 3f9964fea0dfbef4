package score

import "context"

// AvailabilityMetric probes every link the bundle declares and scores the
// fraction that answer. The model link is always probed, so a bundle with
// nothing reachable scores 0 rather than dividing by zero.
type AvailabilityMetric struct {
	fetcher Fetcher
}

func (am *AvailabilityMetric) Name() string {
	return MetricAvailability
}

func (am *AvailabilityMetric) Evaluate(ctx context.Context, m *Model) Score {
	attempted, reachable := 0, 0
	for _, link := range []string{m.ModelURL, m.CodeURL, m.DatasetURL} {
		if link == "" {
			continue
		}
		attempted++
		if am.fetcher.Probe(ctx, link) {
			reachable++
		}
	}
	if attempted == 0 {
		return Scalar(0)
	}
	return Scalar(float64(reachable) / float64(attempted))
}
