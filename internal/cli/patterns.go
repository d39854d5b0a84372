package cli

import (
	"context"
	"fmt"
	"strconv"

	infraLogger "github.com/NeuralTrust/XSSGuard/pkg/infra/logger"
	"github.com/NeuralTrust/XSSGuard/pkg/xss"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "List the resolved pattern set",
	Long:  "Prints the expressions the guard applies, in order, after custom and stored patterns are resolved against the defaults.",
	Args:  cobra.NoArgs,
	RunE:  runPatterns,
}

func runPatterns(cmd *cobra.Command, args []string) error {
	guard, err := offlineGuard(context.Background(), infraLogger.NewLogger(""))
	if err != nil {
		return err
	}

	defaults := make(map[string]struct{})
	for _, expr := range xss.DefaultPatternSet().Expressions() {
		defaults[expr] = struct{}{}
	}

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"#", "Expression", "Origin"})
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	table.SetColumnSeparator("│")

	for i, expr := range guard.Patterns().Expressions() {
		origin := color.CyanString("custom")
		if _, ok := defaults[expr]; ok {
			origin = "default"
		}
		table.Append([]string{strconv.Itoa(i + 1), expr, origin})
	}
	table.Render()

	mode := "sanitize"
	if guard.Blocking() {
		mode = "block"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "  %d patterns, %s mode\n", guard.Patterns().Len(), mode)
	return nil
}
