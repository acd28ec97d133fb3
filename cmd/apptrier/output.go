package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"

	"github.com/drogcidade/apptrier/pkg/config"
	"github.com/drogcidade/apptrier/pkg/reconcile"
	"github.com/drogcidade/apptrier/pkg/service"
	"github.com/drogcidade/apptrier/pkg/sheets"
)

// newProcessor wires config, credentials and the sheets client for the
// subcommands that talk to the spreadsheet.
func newProcessor(cmd *cobra.Command, logger *log.Logger) (*service.Processor, error) {
	cfg, err := config.Build(cfgFile, cmd.Flags())
	if err != nil {
		return nil, err
	}

	creds, err := cfg.Credentials()
	if err != nil {
		return nil, err
	}

	client, err := sheets.New(cmd.Context(), creds, cfg.SpreadsheetID, logger)
	if err != nil {
		return nil, err
	}

	return service.NewProcessor(cfg, logger, client), nil
}

var (
	okStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // green
	adjustedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11")) // yellow
	unmatchedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))  // red
)

// printReport renders a human-readable summary. In dry-run mode every row is
// printed; otherwise only the counters, since the worksheet has the rows.
func printReport(rep *reconcile.Report, full bool) {
	if full {
		for _, entry := range rep.Items {
			appAmount := "-"
			if entry.Matched != nil {
				appAmount = "R$ " + entry.Matched.Amount.StringFixed(2)
			}
			line := fmt.Sprintf("%-4s | %-8s | %-30s | R$ %s | %s | %s",
				entry.Summary.Branch,
				entry.Summary.SaleNumber,
				entry.Summary.Customer,
				entry.Summary.NetTotal.StringFixed(2),
				appAmount,
				entry.Status,
			)
			switch entry.Status {
			case reconcile.StatusExact:
				fmt.Println(okStyle.Render("= " + line))
			case reconcile.StatusAdjusted:
				fmt.Println(adjustedStyle.Render("~ " + line))
			default:
				fmt.Println(unmatchedStyle.Render("x " + line))
			}
		}
		fmt.Println()
	}

	if debug && len(rep.Items) > 0 {
		n := len(rep.Items)
		if n > 3 {
			n = 3
		}
		fmt.Println(pp.Sprint(rep.Items[:n]))
	}

	fmt.Printf("Report: %d exact, %d adjusted, %d unmatched (%d sales)\n",
		rep.ExactCount(), rep.AdjustedCount(), rep.UnmatchedCount(), len(rep.Items))
}
