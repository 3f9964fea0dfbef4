package score

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/mchmarny/modelscore/pkg/genai"
)

const rampUpPrompt = `Rate how quickly an engineer could get this model running
from the documentation below, considering setup instructions, usage
examples, and dataset and training coverage. Respond with a single number
between 0 and 1 on the first line.

%s`

// The five onboarding signals, each worth an equal share.
var rampUpChecks = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(pip install|conda install|docker pull|installation|getting started)`),
	regexp.MustCompile("```|(?i)(usage|example|quickstart|how to use)"),
	regexp.MustCompile(`(?i)(dataset|training data|corpus)`),
	regexp.MustCompile(`(?i)(train\.py|training script|fine-?tun|trainer)`),
}

// minReadmeLength is the threshold for counting the card as substantive.
const minReadmeLength = 300

// RampUpMetric estimates onboarding effort from the model card: a
// substantive README plus install, usage, dataset, and training coverage
// each contribute a fifth. A configured completion model grades the card
// instead, with the checklist as fallback.
type RampUpMetric struct {
	llm *genai.Client
}

func (rm *RampUpMetric) Name() string {
	return MetricRampUp
}

func (rm *RampUpMetric) Evaluate(ctx context.Context, m *Model) Score {
	meta := m.HubMeta(ctx)
	if meta == nil {
		return Scalar(0)
	}
	text := meta.Readme + "\n" + meta.ModelIndex
	if strings.TrimSpace(text) == "" {
		return Scalar(0)
	}

	if rm.llm != nil {
		resp, err := rm.llm.Complete(ctx, fmt.Sprintf(rampUpPrompt, truncate(text, 8000)))
		if err == nil {
			return Scalar(genai.ExtractScore(resp))
		}
		slog.Debug("completion grading unavailable, using onboarding checklist", "error", err)
	}

	var hits float64
	if len(strings.TrimSpace(meta.Readme)) >= minReadmeLength {
		hits++
	}
	for _, check := range rampUpChecks {
		if check.MatchString(text) {
			hits++
		}
	}
	return Scalar(hits / float64(len(rampUpChecks)+1))
}
