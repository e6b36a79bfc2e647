package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shunichi-ikebuchi/densho-reconcile/pkg/report"
)

// reportCmd represents the report command.
var reportCmd = &cobra.Command{
	Use:   "report YYYY-MM",
	Short: "Print a saved monthly reconciliation report",
	Long: `Print the CSV report saved by "reconcile --save" for a month.

Example:
  densho-reconcile report 2025-04`,
	Args: cobra.ExactArgs(1),
	Run:  runReport,
}

func runReport(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	pathResolver := newPathResolver(cfg)
	var repo report.Repository = report.NewFileSystemRepository(pathResolver)

	content, err := repo.Read(args[0])
	exitOnError(err, "failed to read report")

	if content == "" {
		fmt.Printf("No report saved for %s in %s\n", args[0], pathResolver.GetReportsDir())
		return
	}
	fmt.Print(content)
}
