package score

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/mchmarny/modelscore/pkg/gh"
	"github.com/mchmarny/modelscore/pkg/hub"
)

// Fetcher provides the remote metadata the metrics consume. Implementations
// must be safe for concurrent use.
type Fetcher interface {
	ModelMeta(ctx context.Context, modelURL string) (*hub.ModelMeta, error)
	DatasetMeta(ctx context.Context, datasetURL string) (*hub.DatasetMeta, error)
	RepoMeta(ctx context.Context, codeURL string) (*gh.RepoMeta, error)
	Probe(ctx context.Context, rawURL string) bool
	AnalyzeClone(ctx context.Context, cloneURL string) (*gh.CloneStats, error)
}

// Sources is the production Fetcher backed by the model hub and GitHub APIs.
type Sources struct {
	Hub    *hub.Client
	GitHub *gh.Client
}

// NewSources wires both API clients into a single Fetcher.
func NewSources(h *hub.Client, g *gh.Client) *Sources {
	return &Sources{Hub: h, GitHub: g}
}

// ModelMeta fetches hub metadata for the model artifact.
func (s *Sources) ModelMeta(ctx context.Context, modelURL string) (*hub.ModelMeta, error) {
	return s.Hub.GetModel(ctx, modelURL)
}

// DatasetMeta fetches hub metadata for the dataset artifact.
func (s *Sources) DatasetMeta(ctx context.Context, datasetURL string) (*hub.DatasetMeta, error) {
	return s.Hub.GetDataset(ctx, datasetURL)
}

// RepoMeta fetches repository metadata for the code artifact.
func (s *Sources) RepoMeta(ctx context.Context, codeURL string) (*gh.RepoMeta, error) {
	return s.GitHub.GetRepoMeta(ctx, codeURL)
}

// Probe checks link reachability, dispatching on the host.
func (s *Sources) Probe(ctx context.Context, rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	switch {
	case host == "github.com" || strings.HasSuffix(host, ".github.com"):
		return s.GitHub.Probe(ctx, rawURL)
	default:
		return s.Hub.Probe(ctx, rawURL)
	}
}

// AnalyzeClone shallow-clones the code repository and summarizes its tree.
func (s *Sources) AnalyzeClone(ctx context.Context, cloneURL string) (*gh.CloneStats, error) {
	if cloneURL == "" {
		return nil, fmt.Errorf("clone URL required")
	}
	return gh.AnalyzeClone(ctx, cloneURL)
}
