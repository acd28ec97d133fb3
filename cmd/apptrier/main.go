package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/subosito/gotenv"

	"github.com/drogcidade/apptrier/pkg/config"
	"github.com/drogcidade/apptrier/pkg/fetcher"
)

var (
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "apptrier",
	Short: "Reconciles APP payment events with Trier sales reports",
	RunE: func(cmd *cobra.Command, _ []string) error {
		// Show help when no subcommand is provided
		return cmd.Help()
	},
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the daily Relação de Vendas report from the Trier portal",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		logger := newLogger()
		cfg, err := config.Build(cfgFile, cmd.Flags())
		if err != nil {
			return err
		}

		portal, err := fetcher.LoadPortal(cfg.PortalConfig)
		if err != nil {
			return err
		}
		if cfg.DownloadDir != "" {
			portal.DownloadDir = cfg.DownloadDir
		}

		path, err := fetcher.New(portal, logger).Download(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	},
}

var uploadCmd = &cobra.Command{
	Use:   "upload [report.xls]",
	Short: "Clean the Trier report and upload it to the APP_TRIER worksheet",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		processor, err := newProcessor(cmd, logger)
		if err != nil {
			return err
		}

		xlsPath := fetcher.ReportName
		if len(args) == 1 {
			xlsPath = args[0]
		}
		return processor.UploadReport(cmd.Context(), xlsPath)
	},
}

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Match APP payments against Trier sales and write the APPXTRIER worksheet",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		logger := newLogger()
		processor, err := newProcessor(cmd, logger)
		if err != nil {
			return err
		}

		dryRun, _ := cmd.Flags().GetBool("dry-run")
		rep, err := processor.Reconcile(cmd.Context(), dryRun)
		if err != nil {
			return err
		}

		printReport(rep, dryRun)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Config file (default is config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Verbose logging and sample dumps")
	rootCmd.PersistentFlags().String("spreadsheet", "", "Spreadsheet ID override")
	rootCmd.PersistentFlags().Float64("value-tolerance", 0.15, "Value tolerance in currency units")
	rootCmd.PersistentFlags().Int("time-tolerance", 5, "Time tolerance in minutes")
	rootCmd.PersistentFlags().Bool("match-by-time", true, "Also require clocks to agree within tolerance")

	reconcileCmd.Flags().Bool("dry-run", false, "Print the report instead of writing the worksheet")

	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(reconcileCmd)
}

func main() {
	_ = gotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func newLogger() *log.Logger {
	level := log.InfoLevel
	if debug {
		level = log.DebugLevel
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		Prefix:          "apptrier",
		Level:           level,
	})
}
