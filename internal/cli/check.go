package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	infraLogger "github.com/NeuralTrust/XSSGuard/pkg/infra/logger"
	"github.com/NeuralTrust/XSSGuard/pkg/xss"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

const (
	verdictClean     = "CLEAN"
	verdictSanitized = "SANITIZED"
	verdictBlocked   = "BLOCKED"
)

var errThreatsFound = errors.New("xss signatures found")

var (
	fullFlag        bool
	failOnMatchFlag bool
)

var checkCmd = &cobra.Command{
	Use:   "check <url>...",
	Short: "Run request urls through the configured guard",
	Long: `Applies the configured pattern set to each url and prints what the guard would
forward. By default one filtering pass is made, exactly as the server does; --full
repeats passes until nothing matches or guard.max_passes is reached.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&fullFlag, "full", false, "repeat filtering until the url is clean")
	checkCmd.Flags().BoolVar(&failOnMatchFlag, "fail-on-match", false, "exit non-zero when any url matched")
}

type checkResult struct {
	url     string
	outcome xss.Outcome
	blocked bool
}

func runCheck(cmd *cobra.Command, args []string) error {
	guard, err := offlineGuard(context.Background(), infraLogger.NewLogger(""))
	if err != nil {
		return err
	}

	results := make([]checkResult, 0, len(args))
	matched := 0
	for _, u := range args {
		r := checkURL(guard, u, fullFlag, appConfig.Guard.MaxPasses)
		if r.outcome.Matched {
			matched++
		}
		results = append(results, r)
	}

	renderCheck(cmd.OutOrStdout(), results)
	fmt.Fprintf(cmd.OutOrStdout(), "  Summary: %d of %d urls matched\n", matched, len(results))

	if failOnMatchFlag && matched > 0 {
		return errThreatsFound
	}
	return nil
}

func checkURL(guard *xss.Guard, rawURL string, full bool, maxPasses int) checkResult {
	if full {
		outcome := xss.SanitizeAll(rawURL, guard.Patterns(), nil, maxPasses)
		return checkResult{
			url:     rawURL,
			outcome: outcome,
			blocked: guard.Blocking() && outcome.Matched,
		}
	}
	outcome, err := guard.Inspect(rawURL)
	return checkResult{
		url:     rawURL,
		outcome: outcome,
		blocked: errors.Is(err, xss.ErrBlocked),
	}
}

func renderCheck(w io.Writer, results []checkResult) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Verdict", "URL", "Forwarded", "Stripped"})
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	table.SetColumnSeparator("│")

	for _, r := range results {
		forwarded := r.outcome.URL
		if r.blocked {
			forwarded = "-"
		}
		table.Append([]string{colorVerdict(r), r.url, forwarded, r.outcome.StrippedText()})
	}
	table.Render()
}

func colorVerdict(r checkResult) string {
	switch {
	case r.blocked:
		return color.RedString(verdictBlocked)
	case r.outcome.Matched:
		return color.YellowString(verdictSanitized)
	default:
		return color.GreenString(verdictClean)
	}
}
