package server

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/drogcidade/apptrier/pkg/config"
	"github.com/drogcidade/apptrier/pkg/models"
	"github.com/drogcidade/apptrier/pkg/parser"
	"github.com/drogcidade/apptrier/pkg/reconcile"
	"github.com/drogcidade/apptrier/pkg/report"
)

// Server exposes the reconciliation engine over HTTP for ad-hoc runs: an
// operator uploads the APP export and the raw Trier report and gets the
// report back without touching the spreadsheet.
type Server struct {
	config   *config.Config
	logger   *log.Logger
	mux      *http.ServeMux
	template *template.Template
	parser   *parser.Parser
	reports  sync.Map // filename -> csv bytes
}

// New creates a new HTTP server.
func New(cfg *config.Config, logger *log.Logger) *Server {
	tmpl := template.Must(template.ParseGlob("templates/*.html"))
	return &Server{
		config:   cfg,
		logger:   logger,
		mux:      http.NewServeMux(),
		template: tmpl,
		parser:   parser.New(logger),
	}
}

// Start starts the HTTP server.
func (s *Server) Start(addr string) error {
	s.setupRoutes()
	return http.ListenAndServe(addr, s.mux)
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/", s.withLogging(s.handleHome))
	s.mux.HandleFunc("/api/reconcile", s.withLogging(s.handleReconcile))
	s.mux.HandleFunc("/api/files/", s.withLogging(s.handleFiles))
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	if err := s.template.ExecuteTemplate(w, "index.html", nil); err != nil {
		s.respondError(w, r, http.StatusInternalServerError, "failed to render page", err)
		return
	}
}

// Item is one report row shaped for JSON responses.
type Item struct {
	Branch       string  `json:"branch"`
	SaleNumber   string  `json:"sale_number"`
	Customer     string  `json:"customer"`
	AppAmount    string  `json:"app_amount,omitempty"`
	Method       string  `json:"method,omitempty"`
	TrierTotal   string  `json:"trier_total"`
	Diff         string  `json:"diff,omitempty"`
	MinutesApart float64 `json:"minutes_apart,omitempty"`
	Status       string  `json:"status"`
}

func (s *Server) handleReconcile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, r, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}

	appRows, err := s.readCSVForm(r, "app")
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "failed to read app file", err)
		return
	}
	trierData, err := s.readFileForm(r, "trier")
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "failed to read trier file", err)
		return
	}

	pool, err := s.parser.ParseAppRows(appRows)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "failed to parse app rows", err)
		return
	}
	reportRows, err := s.parser.ParseRelacaoVendas(trierData)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "failed to parse trier report", err)
		return
	}
	sales := make([]*models.SalesSummary, 0, len(reportRows))
	for _, row := range reportRows {
		sales = append(sales, row.Summary())
	}

	rep, err := reconcile.Build(sales, pool, s.config.MatchOptions())
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "reconciliation failed", err)
		return
	}

	filename := fmt.Sprintf("appxtrier-%s.csv", time.Now().Format("20060102-150405"))
	s.reports.Store(filename, report.CSV(rep))

	items := make([]Item, 0, len(rep.Items))
	for _, entry := range rep.Items {
		item := Item{
			Branch:     entry.Summary.Branch,
			SaleNumber: entry.Summary.SaleNumber,
			Customer:   entry.Summary.Customer,
			TrierTotal: entry.Summary.NetTotal.StringFixed(2),
			Status:     string(entry.Status),
		}
		if entry.Matched != nil {
			item.AppAmount = entry.Matched.Amount.StringFixed(2)
			item.Method = entry.Matched.Method
			item.Diff = entry.Diff.StringFixed(2)
			item.MinutesApart = entry.MinutesApart
		}
		items = append(items, item)
	}

	s.logger.Info("reconciliation complete",
		"sales", len(sales),
		"exact", rep.ExactCount(),
		"adjusted", rep.AdjustedCount(),
		"unmatched", rep.UnmatchedCount(),
	)

	if err := s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "success",
		"file":      filename,
		"items":     items,
		"exact":     rep.ExactCount(),
		"adjusted":  rep.AdjustedCount(),
		"unmatched": rep.UnmatchedCount(),
	}); err != nil {
		s.logger.Warn("failed to write json response", "err", err)
	}
}

func (s *Server) handleFiles(w http.ResponseWriter, r *http.Request) {
	filename := strings.TrimPrefix(r.URL.Path, "/api/files/")
	if filename == "" {
		s.respondError(w, r, http.StatusBadRequest, "filename required", nil)
		return
	}

	value, ok := s.reports.Load(filename)
	if !ok {
		s.respondError(w, r, http.StatusNotFound, "file not found", nil)
		return
	}
	data, ok := value.([]byte)
	if !ok {
		s.respondError(w, r, http.StatusInternalServerError, "internal type assertion error", nil)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if _, err := w.Write(data); err != nil {
		s.logger.Warn("failed to write csv response", "err", err)
	}
}

// --- helpers ---

func (s *Server) readFileForm(r *http.Request, field string) ([]byte, error) {
	file, _, err := r.FormFile(field)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

func (s *Server) readCSVForm(r *http.Request, field string) ([][]string, error) {
	file, _, err := r.FormFile(field)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return readCSV(file)
}

func readCSV(file multipart.File) ([][]string, error) {
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	return reader.ReadAll()
}

// writeJSON encodes v as JSON with the given status and writes headers.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// respondError logs the error and returns a minimal JSON error body.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	if err != nil {
		s.logger.Warn("request error", "status", status, "msg", message, "err", err, "method", r.Method, "path", r.URL.Path)
	} else {
		s.logger.Warn("request error", "status", status, "msg", message, "method", r.Method, "path", r.URL.Path)
	}
	_ = s.writeJSON(w, status, map[string]string{
		"status": "error",
		"error":  message,
	})
}

// withLogging wraps a handler to log requests and recover panics.
func (s *Server) withLogging(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug("http request", "method", r.Method, "path", r.URL.Path, "remote", r.RemoteAddr)
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered", "panic", rec, "method", r.Method, "path", r.URL.Path)
				s.respondError(w, r, http.StatusInternalServerError, "internal server error", fmt.Errorf("panic: %v", rec))
			}
		}()
		next(w, r)
	}
}
