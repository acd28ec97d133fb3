package parser

import (
	"github.com/charmbracelet/log"
)

// Parser maps raw tabular rows from the APP worksheet and the Trier report
// into the typed records consumed by the reconciliation engine. Row-level
// problems are logged and the row skipped or flagged; a malformed row never
// aborts the whole file.
type Parser struct {
	logger *log.Logger
}

func New(logger *log.Logger) *Parser {
	return &Parser{
		logger: logger,
	}
}
