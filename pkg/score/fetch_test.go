package score

import (
	"context"
	"fmt"
	"sync"

	"github.com/mchmarny/modelscore/pkg/gh"
	"github.com/mchmarny/modelscore/pkg/hub"
)

// stubFetcher serves canned metadata and counts fetches so tests can assert
// memoization.
type stubFetcher struct {
	mu sync.Mutex

	model      *hub.ModelMeta
	modelErr   error
	dataset    *hub.DatasetMeta
	datasetErr error
	repo       *gh.RepoMeta
	repoErr    error
	clone      *gh.CloneStats
	cloneErr   error
	reachable  bool

	modelCalls   int
	datasetCalls int
	repoCalls    int
	cloneCalls   int
	probeCalls   int
}

func (f *stubFetcher) ModelMeta(ctx context.Context, modelURL string) (*hub.ModelMeta, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.modelCalls++
	if f.modelErr != nil {
		return nil, f.modelErr
	}
	if f.model == nil {
		return nil, fmt.Errorf("no model metadata")
	}
	return f.model, nil
}

func (f *stubFetcher) DatasetMeta(ctx context.Context, datasetURL string) (*hub.DatasetMeta, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.datasetCalls++
	if f.datasetErr != nil {
		return nil, f.datasetErr
	}
	if f.dataset == nil {
		return nil, fmt.Errorf("no dataset metadata")
	}
	return f.dataset, nil
}

func (f *stubFetcher) RepoMeta(ctx context.Context, codeURL string) (*gh.RepoMeta, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.repoCalls++
	if f.repoErr != nil {
		return nil, f.repoErr
	}
	if f.repo == nil {
		return nil, fmt.Errorf("no repository metadata")
	}
	return f.repo, nil
}

func (f *stubFetcher) Probe(ctx context.Context, rawURL string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.probeCalls++
	return f.reachable
}

func (f *stubFetcher) AnalyzeClone(ctx context.Context, cloneURL string) (*gh.CloneStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cloneCalls++
	if f.cloneErr != nil {
		return nil, f.cloneErr
	}
	if f.clone == nil {
		return nil, fmt.Errorf("no clone stats")
	}
	return f.clone, nil
}
