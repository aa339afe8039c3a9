package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/madcourses/skillmatch/internal/domain/filter"
	dommatch "github.com/madcourses/skillmatch/internal/domain/match"
	matchuc "github.com/madcourses/skillmatch/internal/usecase/match"
)

var matchCmd = &cobra.Command{
	Use:   "match <skill> [skill...]",
	Short: "Match skills against the catalog and print the top courses",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runMatch,
}

var (
	matchK               int
	matchSubjectContains string
	matchLevelMin        int
	matchLevelMax        int
	matchCreditMin       float64
	matchCreditMax       float64
	matchLastTaught      string
	matchOverall         bool
)

func init() {
	rootCmd.AddCommand(matchCmd)
	addMatchFlags(matchCmd)
}

func addMatchFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.IntVar(&matchK, "k", dommatch.DefaultK, "matches per skill")
	f.StringVar(&matchSubjectContains, "subject-contains", "", "subject substring, case-insensitive")
	f.IntVar(&matchLevelMin, "level-min", 0, "minimum course level")
	f.IntVar(&matchLevelMax, "level-max", 0, "maximum course level")
	f.Float64Var(&matchCreditMin, "credit-min", 0, "minimum credits")
	f.Float64Var(&matchCreditMax, "credit-max", 0, "maximum credits")
	f.StringVar(&matchLastTaught, "last-taught", "", "taught in or after this term code, e.g. F23")
	f.BoolVar(&matchOverall, "overall", false, "also rank courses against all skills combined")
}

func runMatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := globalCfg

	f, err := filter.New(matchFilterParams(cmd))
	if err != nil {
		return fmt.Errorf("invalid filter: %w", err)
	}
	req, err := dommatch.NewRequest(args, &matchK, f, cfg.Match.Limits())
	if err != nil {
		return err //nolint:wrapcheck // already descriptive
	}
	req.SetOverall(matchOverall)

	d := newDeps(cfg, globalLogger)
	defer d.Close()

	cache, err := d.catalogCache(ctx)
	if err != nil {
		return err
	}
	embedder, err := d.embedder(ctx)
	if err != nil {
		return err
	}

	res, err := matchuc.New(cache, embedder).
		WithMaxConcurrency(cfg.Match.MaxConcurrency).
		MatchAll(ctx, &req)
	if err != nil {
		return fmt.Errorf("match: %w", err)
	}

	printResults(cmd.OutOrStdout(), res.Skills)
	if res.Overall != nil {
		printOverall(cmd.OutOrStdout(), res.Overall)
	}
	return nil
}

// matchFilterParams passes only the flags the user actually set.
func matchFilterParams(cmd *cobra.Command) filter.Params {
	var p filter.Params
	flags := cmd.Flags()
	if flags.Changed("subject-contains") {
		p.SubjectContains = &matchSubjectContains
	}
	if flags.Changed("level-min") {
		p.LevelMin = &matchLevelMin
	}
	if flags.Changed("level-max") {
		p.LevelMax = &matchLevelMax
	}
	if flags.Changed("credit-min") {
		p.CreditMin = &matchCreditMin
	}
	if flags.Changed("credit-max") {
		p.CreditMax = &matchCreditMax
	}
	if flags.Changed("last-taught") {
		p.LastTaught = &matchLastTaught
	}
	return p
}

func printResults(w io.Writer, results []dommatch.SkillResult) {
	for i, res := range results {
		if i > 0 {
			fmt.Fprintln(w)
		}
		printSection(w, res.Skill, res.Matches)
	}
}

func printOverall(w io.Writer, matches []dommatch.Match) {
	fmt.Fprintln(w)
	printSection(w, "Top courses overall", matches)
}

func printSection(w io.Writer, title string, matches []dommatch.Match) {
	fmt.Fprintf(w, "=== %s ===\n", title)
	if len(matches) == 0 {
		fmt.Fprintln(w, "No courses met your criteria.")
		return
	}
	for _, m := range matches {
		c := m.Course()
		fmt.Fprintf(w, "%s %d — %s | Credits: %s, Last taught: %s | %.3f\n",
			c.Subject(), c.Level(), c.Title(), c.Credits().Amount, c.LastTaught(), m.Similarity())
	}
}
