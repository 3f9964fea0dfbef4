package gh

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	git "github.com/go-git/go-git/v5"
)

const cloneTimeout = 60 * time.Second

var sourceExtensions = map[string]bool{
	".py": true, ".js": true, ".ts": true, ".java": true,
	".cpp": true, ".c": true, ".h": true, ".hpp": true,
	".cs": true, ".go": true, ".rs": true, ".php": true,
	".rb": true, ".swift": true, ".kt": true, ".scala": true,
}

var skipDirs = map[string]bool{
	"node_modules": true, "venv": true, "__pycache__": true,
	"build": true, "dist": true,
}

// CloneStats summarizes a shallow clone of a code repository.
type CloneStats struct {
	TestFiles       int
	SourceFiles     int
	HasLicense      bool
	HasReadme       bool
	HasContributing bool
}

// AnalyzeClone shallow-clones the repository into a temp directory and
// counts test vs source files plus the presence of standard docs.
func AnalyzeClone(ctx context.Context, cloneURL string) (*CloneStats, error) {
	if cloneURL == "" {
		return nil, fmt.Errorf("clone URL is required")
	}

	dir, err := os.MkdirTemp("", "modelscore-clone-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	cloneCtx, cancel := context.WithTimeout(ctx, cloneTimeout)
	defer cancel()

	slog.Debug("cloning repository", "url", cloneURL, "dir", dir)
	_, err = git.PlainCloneContext(cloneCtx, dir, false, &git.CloneOptions{
		URL:          cloneURL,
		Depth:        1,
		SingleBranch: true,
		Tags:         git.NoTags,
	})
	if err != nil {
		return nil, fmt.Errorf("cloning %s: %w", cloneURL, err)
	}

	return scanCheckout(dir)
}

func scanCheckout(root string) (*CloneStats, error) {
	stats := &CloneStats{}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("reading checkout dir: %w", err)
	}
	for _, e := range entries {
		name := strings.ToLower(e.Name())
		switch {
		case strings.HasPrefix(name, "license"):
			stats.HasLicense = true
		case strings.HasPrefix(name, "readme"):
			stats.HasReadme = true
		case strings.HasPrefix(name, "contributing"):
			stats.HasContributing = true
		}
	}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if strings.HasPrefix(name, ".") && path != root {
				return filepath.SkipDir
			}
			if skipDirs[name] {
				return filepath.SkipDir
			}
			return nil
		}

		ext := strings.ToLower(filepath.Ext(name))
		if !sourceExtensions[ext] {
			return nil
		}

		if isTestPath(root, path, name) {
			stats.TestFiles++
		} else {
			stats.SourceFiles++
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking checkout: %w", err)
	}

	return stats, nil
}

func isTestPath(root, path, name string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	for _, part := range strings.Split(filepath.Dir(rel), string(filepath.Separator)) {
		if part == "test" || part == "tests" {
			return true
		}
	}
	base := strings.ToLower(strings.TrimSuffix(name, filepath.Ext(name)))
	return strings.HasPrefix(base, "test_") || strings.HasSuffix(base, "_test")
}
