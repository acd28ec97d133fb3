package service

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/drogcidade/apptrier/pkg/config"
	"github.com/drogcidade/apptrier/pkg/parser"
	"github.com/drogcidade/apptrier/pkg/reconcile"
	"github.com/drogcidade/apptrier/pkg/report"
	"github.com/drogcidade/apptrier/pkg/sheets"
)

// Processor orchestrates the two spreadsheet-facing steps of the pipeline:
// uploading the cleaned Trier report and running the reconciliation.
type Processor struct {
	config *config.Config
	logger *log.Logger
	parser *parser.Parser
	sheets *sheets.Client
}

func NewProcessor(cfg *config.Config, logger *log.Logger, client *sheets.Client) *Processor {
	return &Processor{
		config: cfg,
		logger: logger,
		parser: parser.New(logger),
		sheets: client,
	}
}

// UploadReport parses the raw Trier .xls export and overwrites the
// APP_TRIER worksheet with the cleaned rows.
func (p *Processor) UploadReport(ctx context.Context, xlsPath string) error {
	data, err := os.ReadFile(xlsPath)
	if err != nil {
		return fmt.Errorf("reading report file: %w", err)
	}

	rows, err := p.parser.ParseRelacaoVendas(data)
	if err != nil {
		return fmt.Errorf("parsing report: %w", err)
	}
	if len(rows) == 0 {
		p.logger.Warn("report has no sales, skipping upload", "file", xlsPath)
		return nil
	}

	if err := p.sheets.Overwrite(ctx, p.config.TrierWorksheet, parser.TrierSheetRows(rows)); err != nil {
		return err
	}

	p.logger.Info("report uploaded", "file", xlsPath, "sales", len(rows), "worksheet", p.config.TrierWorksheet)
	return nil
}

// Reconcile reads both worksheets, runs the matching engine and writes the
// result to the output worksheet. With dryRun set nothing is written; the
// caller gets the report for rendering.
func (p *Processor) Reconcile(ctx context.Context, dryRun bool) (*reconcile.Report, error) {
	p.logger.Info("reading APP worksheet", "worksheet", p.config.AppWorksheet)
	appRows, err := p.sheets.ReadRows(ctx, p.config.AppWorksheet)
	if err != nil {
		return nil, err
	}

	p.logger.Info("reading Trier worksheet", "worksheet", p.config.TrierWorksheet)
	trierRows, err := p.sheets.ReadRows(ctx, p.config.TrierWorksheet)
	if err != nil {
		return nil, err
	}

	pool, err := p.parser.ParseAppRows(appRows)
	if err != nil {
		return nil, err
	}
	sales, err := p.parser.ParseTrierRows(trierRows)
	if err != nil {
		return nil, err
	}

	rep, err := reconcile.Build(sales, pool, p.config.MatchOptions())
	if err != nil {
		return nil, err
	}

	p.logger.Info("reconciliation complete",
		"sales", len(sales),
		"transactions", len(pool),
		"exact", rep.ExactCount(),
		"adjusted", rep.AdjustedCount(),
		"unmatched", rep.UnmatchedCount(),
	)

	if dryRun {
		return rep, nil
	}

	if err := p.sheets.Overwrite(ctx, p.config.OutputWorksheet, report.SheetRows(rep)); err != nil {
		return nil, err
	}
	return rep, nil
}
