package score

import (
	"context"
	"strings"
)

// licenseRatings maps normalized SPDX identifiers to compatibility scores
// against an LGPL-2.1 consumer: fully compatible 1.0, conditionally
// compatible 0.5, incompatible 0.0. Unlisted identifiers rate 0.5.
var licenseRatings = map[string]float64{
	"mit":               1.0,
	"bsd-2-clause":      1.0,
	"bsd-3-clause":      1.0,
	"apache-2.0":        1.0,
	"lgpl-2.1":          1.0,
	"lgpl-2.1-only":     1.0,
	"lgpl-2.1-or-later": 1.0,
	"gpl-2.0-or-later":  1.0,
	"gpl-2.0":           0.5,
	"gpl-2.0-only":      0.5,
	"mpl-2.0":           0.5,
	"unlicense":         0.5,
	"gpl-3.0":           0.0,
	"gpl-3.0-only":      0.0,
	"gpl-3.0-or-later":  0.0,
	"lgpl-3.0":          0.0,
	"lgpl-3.0-only":     0.0,
	"agpl-3.0":          0.0,
	"agpl-3.0-only":     0.0,
	"agpl-3.0-or-later": 0.0,
	"proprietary":       0.0,
}

// LicenseMetric rates the declared license against the compatibility table.
// The hub card declaration wins, the code repository license is the
// fallback. Unknown and missing declarations both rate 0.5: absence of a
// declaration is ambiguity, not proof of incompatibility.
type LicenseMetric struct{}

func (lm *LicenseMetric) Name() string {
	return MetricLicense
}

func (lm *LicenseMetric) Evaluate(ctx context.Context, m *Model) Score {
	id := declaredLicense(ctx, m)
	if id == "" {
		return Scalar(0.5)
	}
	if rating, ok := licenseRatings[id]; ok {
		return Scalar(rating)
	}
	return Scalar(0.5)
}

func declaredLicense(ctx context.Context, m *Model) string {
	if meta := m.HubMeta(ctx); meta != nil {
		if v, ok := meta.CardData["license"]; ok {
			if s, ok := v.(string); ok && s != "" {
				return normalizeLicense(s)
			}
		}
		for _, tag := range meta.Tags {
			if id, ok := strings.CutPrefix(tag, "license:"); ok && id != "" {
				return normalizeLicense(id)
			}
		}
	}
	if repo := m.RepoMeta(ctx); repo != nil && repo.License != "" {
		return normalizeLicense(repo.License)
	}
	return ""
}

func normalizeLicense(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
