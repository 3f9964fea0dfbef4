package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mchmarny/modelscore/pkg/auth"
	"github.com/mchmarny/modelscore/pkg/genai"
	"github.com/mchmarny/modelscore/pkg/gh"
	"github.com/mchmarny/modelscore/pkg/hub"
	"github.com/mchmarny/modelscore/pkg/net"
	"github.com/mchmarny/modelscore/pkg/score"
	"github.com/mchmarny/modelscore/pkg/urls"
	urfave "github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

const (
	formatNDJSON = "ndjson"
	formatYAML   = "yaml"

	stdinArg = "-"
)

var (
	outputFlag = &urfave.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Write the report to this file instead of stdout",
	}

	formatFlag = &urfave.StringFlag{
		Name:  "format",
		Usage: "Report format [ndjson, yaml]",
		Value: formatNDJSON,
	}

	concurrencyFlag = &urfave.IntFlag{
		Name:  "concurrency",
		Usage: "Number of models evaluated in parallel (overrides config)",
	}

	skipAuthCheckFlag = &urfave.BoolFlag{
		Name:  "skip-auth-check",
		Usage: "Skip GitHub token validation on startup",
	}

	scoreCmd = &urfave.Command{
		Name:            "score",
		HideHelpCommand: true,
		Usage:           "Score the model bundles listed in a file (one comma-separated record per line, '-' for stdin)",
		ArgsUsage:       "<url-file>",
		Flags: []urfave.Flag{
			outputFlag,
			formatFlag,
			concurrencyFlag,
			skipAuthCheckFlag,
		},
		Action: cmdScore,
	}
)

func cmdScore(c *urfave.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one input file argument, got %d", c.NArg())
	}
	cfg := getConfig(c)
	ctx := c.Context

	ghClient, err := makeGitHubClient(ctx, cfg.Home, c.Bool(skipAuthCheckFlag.Name))
	if err != nil {
		return err
	}

	hubBase := cfg.Conf.HubBaseURL
	if hubBase == "" {
		hubBase = hub.DefaultBaseURL
	}
	hubClient, err := hub.NewWithBaseURL(hubBase)
	if err != nil {
		return fmt.Errorf("creating hub client: %w", err)
	}

	opts := []score.CatalogueOption{
		score.WithConcurrency(resolveConcurrency(c, cfg)),
	}
	if key := os.Getenv(genai.APIKeyEnvVar); key != "" {
		llm := genai.New(cfg.Conf.Completions.Endpoint, cfg.Conf.Completions.Model, key)
		opts = append(opts, score.WithCompletions(llm))
	}

	catalogue, err := score.NewCatalogue(score.NewSources(hubClient, ghClient), opts...)
	if err != nil {
		return fmt.Errorf("creating catalogue: %w", err)
	}

	in, err := openInput(c.Args().First())
	if err != nil {
		return err
	}
	defer in.Close()

	failed := loadBundles(catalogue, in)

	if err := catalogue.EvaluateModels(ctx); err != nil {
		return fmt.Errorf("evaluating models: %w", err)
	}

	report, err := renderReport(ctx, catalogue, c.String(formatFlag.Name))
	if err != nil {
		return err
	}
	if err := writeReport(report, c.String(outputFlag.Name)); err != nil {
		return err
	}

	if failed > 0 {
		return urfave.Exit(fmt.Sprintf("%d input record(s) failed", failed), 1)
	}
	return nil
}

// makeGitHubClient resolves the GitHub token and validates it unless the
// check is skipped. Without any token the client runs unauthenticated,
// which still works for public metadata at much lower rate limits.
func makeGitHubClient(ctx context.Context, home string, skipCheck bool) (*gh.Client, error) {
	token, err := auth.ResolveToken(home)
	if err != nil {
		if !skipCheck {
			return nil, err
		}
		slog.Warn("proceeding without a GitHub token", "error", err)
		client, err := net.GetHTTPClient()
		if err != nil {
			return nil, fmt.Errorf("creating HTTP client: %w", err)
		}
		return gh.New(client), nil
	}

	client := gh.New(net.GetOAuthClient(ctx, token))
	if !skipCheck {
		if err := client.ValidateToken(ctx); err != nil {
			return nil, fmt.Errorf("validating GitHub token: %w", err)
		}
	}
	return client, nil
}

func resolveConcurrency(c *urfave.Context, cfg *appConfig) int {
	if n := c.Int(concurrencyFlag.Name); n > 0 {
		return n
	}
	return cfg.Conf.Concurrency
}

func openInput(arg string) (io.ReadCloser, error) {
	if arg == stdinArg {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(arg)
	if err != nil {
		return nil, fmt.Errorf("opening input file: %w", err)
	}
	return f, nil
}

// loadBundles parses the input stream one record per line and adds each
// valid bundle to the catalogue. Invalid records are logged and skipped,
// and the count of failures is returned so the batch can report them.
func loadBundles(catalogue *score.Catalogue, r io.Reader) int {
	var failed int
	scanner := bufio.NewScanner(r)
	for line := 1; scanner.Scan(); line++ {
		record := strings.TrimSpace(scanner.Text())
		if record == "" {
			continue
		}
		b, err := urls.ParseLine(record)
		if err != nil {
			slog.Error("skipping invalid record", "line", line, "error", err)
			failed++
			continue
		}
		if _, err := catalogue.Add(b); err != nil {
			slog.Error("skipping record", "line", line, "error", err)
			failed++
		}
	}
	if err := scanner.Err(); err != nil {
		slog.Error("reading input", "error", err)
		failed++
	}
	return failed
}

func renderReport(ctx context.Context, catalogue *score.Catalogue, format string) (string, error) {
	switch format {
	case formatYAML, "yml":
		records := make([]score.Record, 0, len(catalogue.Models()))
		for _, m := range catalogue.Models() {
			records = append(records, catalogue.RecordFor(ctx, m))
		}
		out, err := yaml.Marshal(records)
		if err != nil {
			return "", fmt.Errorf("encoding report: %w", err)
		}
		return string(out), nil
	default:
		return catalogue.GenerateReport(ctx)
	}
}

func writeReport(report, outputPath string) error {
	if outputPath == "" {
		_, err := fmt.Fprint(os.Stdout, report)
		return err
	}
	if err := os.WriteFile(outputPath, []byte(report), 0o644); err != nil {
		return fmt.Errorf("writing report to %s: %w", outputPath, err)
	}
	return nil
}
