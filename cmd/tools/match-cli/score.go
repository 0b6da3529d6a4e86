package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"matching-workers/internal/matching"
	"matching-workers/internal/models"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

type scoreOptions struct {
	jobPath        string
	candidatesPath string
	minimumScore   float64
	maxResults     int
	concurrency    int
	asJSON         bool
}

func newScoreCmd(root *rootOptions) *cobra.Command {
	opts := &scoreOptions{}

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Rank a candidate file against a job file",
		Example: `  match-cli score --job job.json --candidates workers.json
  match-cli score --job job.json --candidates workers.json --min 0.6 --max 5 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScore(cmd, root, opts)
		},
	}

	cmd.Flags().StringVar(&opts.jobPath, "job", "", "job request JSON file")
	cmd.Flags().StringVar(&opts.candidatesPath, "candidates", "", "JSON array of worker profiles")
	cmd.Flags().Float64Var(&opts.minimumScore, "min", matching.DefaultMinimumScore, "minimum score to qualify")
	cmd.Flags().IntVar(&opts.maxResults, "max", matching.DefaultMaxResults, "maximum matches to return")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 0, "scoring goroutines (0 = GOMAXPROCS)")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print matches as JSON")
	_ = cmd.MarkFlagRequired("job")
	_ = cmd.MarkFlagRequired("candidates")

	return cmd
}

func runScore(cmd *cobra.Command, root *rootOptions, opts *scoreOptions) error {
	var job models.JobRequest
	if err := readJSON(opts.jobPath, &job); err != nil {
		return err
	}
	var candidates []models.WorkerProfile
	if err := readJSON(opts.candidatesPath, &candidates); err != nil {
		return err
	}

	tables, err := root.loadTables()
	if err != nil {
		return err
	}
	engine, err := matching.NewEngine(tables, matching.WithLogger(root.logger()))
	if err != nil {
		return err
	}

	matches, err := engine.FindBestMatches(cmd.Context(), job, candidates, matching.Options{
		MinimumScore: opts.minimumScore,
		MaxResults:   opts.maxResults,
		Concurrency:  opts.concurrency,
	})
	if err != nil {
		return err
	}

	if opts.asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(matches)
	}
	printMatches(cmd.OutOrStdout(), job, len(candidates), matches)
	return nil
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func printMatches(w io.Writer, job models.JobRequest, pool int, matches []models.Match) {
	title := fmt.Sprintf("%s in %s: %d of %d candidates matched", job.Category, job.Location, len(matches), pool)
	fmt.Fprintln(w, titleStyle.Render(title))

	if len(matches) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No candidate reached the minimum score."))
		return
	}

	for i, m := range matches {
		name := m.Worker.ID
		if m.Worker.Name != "" {
			name = fmt.Sprintf("%s (%s)", m.Worker.Name, m.Worker.ID)
		}
		fmt.Fprintf(w, "%s %s\n", labelStyle.Render(fmt.Sprintf("%d.", i+1)), name)
		fmt.Fprintf(w, "   %s %.3f  %s %.2f  %s %s\n",
			labelStyle.Render("score"), m.MatchScore.TotalScore,
			labelStyle.Render("confidence"), m.MatchScore.Confidence,
			labelStyle.Render("location"), m.Worker.Location)
		fmt.Fprintf(w, "   %s\n", mutedStyle.Render(breakdown(m.MatchScore)))
		if m.MatchScore.DiversityPenalty {
			fmt.Fprintf(w, "   %s\n", warnStyle.Render("diversity penalty applied"))
		}
		for _, r := range m.Reasoning {
			fmt.Fprintf(w, "   + %s\n", r)
		}
		for _, r := range m.Recommendations {
			fmt.Fprintf(w, "   ! %s\n", warnStyle.Render(r))
		}
	}
}

func breakdown(score models.MatchScore) string {
	parts := make([]string, 0, len(models.Categories))
	for _, c := range models.Categories {
		if cs, ok := score.Breakdown[c]; ok {
			parts = append(parts, fmt.Sprintf("%s %.2f", c, cs.RawScore))
		}
	}
	return strings.Join(parts, " | ")
}
