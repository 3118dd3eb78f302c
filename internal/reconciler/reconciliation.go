// Package reconciler aggregates ledger and tracker rows per invoice key,
// compares the two sources and drives the filename matcher. It works on
// already parsed worksheets and performs no I/O.
package reconciler

import (
	"context"
	"fmt"
	"time"

	"invoice-reconciliation-service/internal/matcher"
	"invoice-reconciliation-service/internal/models"
	"invoice-reconciliation-service/internal/textnorm"
	apperrors "invoice-reconciliation-service/pkg/errors"
	"invoice-reconciliation-service/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReconciliationService orchestrates one batch run over parsed worksheets
type ReconciliationService struct {
	config         *Config
	matchingConfig *matcher.MatchingConfig
	aggregator     *Aggregator
	engine         *matcher.Engine
	logger         logger.Logger
}

// ReconciliationRequest carries the parsed sheets and the run hints
type ReconciliationRequest struct {
	// SourceName is the uploaded file name; company and period are detected from it.
	SourceName string
	// Year and Month, when both positive, override the period found in SourceName.
	Year  int
	Month int
	// Company, when set, overrides detection from SourceName.
	Company string

	Ledger  models.LedgerSheet
	Tracker models.TrackerSheet
}

// Validate validates the request
func (r *ReconciliationRequest) Validate() error {
	if r.Month < 0 || r.Month > 12 {
		return apperrors.ValidationError(apperrors.CodeOutOfRange, "month", r.Month, nil)
	}
	if r.Year < 0 {
		return apperrors.ValidationError(apperrors.CodeOutOfRange, "year", r.Year, nil)
	}
	if (r.Year > 0) != (r.Month > 0) {
		return apperrors.ValidationError(apperrors.CodeMissingField, "year/month", fmt.Sprintf("%d/%d", r.Year, r.Month), nil).
			WithSuggestion("provide both year and month, or neither")
	}
	return nil
}

// ReconciliationResult is the outcome of comparing tracker and ledger
type ReconciliationResult struct {
	RunID        string            `json:"run_id" yaml:"run_id"`
	SourceName   string            `json:"source_name,omitempty" yaml:"source_name,omitempty"`
	Filter       Filter            `json:"filter" yaml:"filter"`
	Comparison   *ComparisonResult `json:"comparison" yaml:"comparison"`
	Summary      *ResultSummary    `json:"summary" yaml:"summary"`
	LedgerStats  *AggregationStats `json:"ledger_stats" yaml:"ledger_stats"`
	TrackerStats *AggregationStats `json:"tracker_stats" yaml:"tracker_stats"`
	ProcessedAt  time.Time         `json:"processed_at" yaml:"processed_at"`
	Duration     time.Duration     `json:"duration" yaml:"duration"`
}

// ResultSummary provides counts and totals for each outcome set
type ResultSummary struct {
	TrackerKeys int `json:"tracker_keys" yaml:"tracker_keys"`
	LedgerKeys  int `json:"ledger_keys" yaml:"ledger_keys"`

	MatchedCount            int `json:"matched" yaml:"matched"`
	MissingFromLedgerCount  int `json:"missing_from_ledger" yaml:"missing_from_ledger"`
	MismatchCount           int `json:"mismatches" yaml:"mismatches"`
	MissingFromTrackerCount int `json:"missing_from_tracker" yaml:"missing_from_tracker"`

	TotalTrackerAmount       decimal.Decimal `json:"total_tracker_amount" yaml:"total_tracker_amount"`
	TotalLedgerAmount        decimal.Decimal `json:"total_ledger_amount" yaml:"total_ledger_amount"`
	MissingFromLedgerAmount  decimal.Decimal `json:"missing_from_ledger_amount" yaml:"missing_from_ledger_amount"`
	MissingFromTrackerAmount decimal.Decimal `json:"missing_from_tracker_amount" yaml:"missing_from_tracker_amount"`
	MismatchDifference       decimal.Decimal `json:"mismatch_difference" yaml:"mismatch_difference"`
	// NetDifference is total tracker minus total ledger
	NetDifference decimal.Decimal `json:"net_difference" yaml:"net_difference"`
}

// NewReconciliationService creates a new reconciliation service
func NewReconciliationService(config *Config, matchingConfig *matcher.MatchingConfig) (*ReconciliationService, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if matchingConfig == nil {
		matchingConfig = matcher.DefaultMatchingConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, apperrors.ConfigurationError(apperrors.CodeInvalidConfig, "reconciler", err.Error(), err)
	}
	if err := matchingConfig.Validate(); err != nil {
		return nil, apperrors.ConfigurationError(apperrors.CodeInvalidConfig, "matcher", err.Error(), err)
	}

	return &ReconciliationService{
		config:         config,
		matchingConfig: matchingConfig,
		aggregator:     NewAggregator(config),
		engine:         matcher.NewEngine(matchingConfig),
		logger:         logger.WithComponent("reconciler"),
	}, nil
}

// ResolveFilter derives the company and period filter for a request
func (rs *ReconciliationService) ResolveFilter(req *ReconciliationRequest) Filter {
	company := textnorm.FoldTrim(req.Company)
	if company == "" {
		company = DetectCompany(req.SourceName, rs.config.CompanyCodes)
	}
	return Filter{
		Company: company,
		Period:  ResolvePeriod(req.SourceName, req.Year, req.Month),
	}
}

// Reconcile aggregates both sheets and compares them
func (rs *ReconciliationService) Reconcile(ctx context.Context, req *ReconciliationRequest) (*ReconciliationResult, error) {
	if req == nil {
		return nil, apperrors.ValidationError(apperrors.CodeMissingField, "request", nil, nil)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, apperrors.ReconciliationError(apperrors.CodeProcessingError, "reconcile", err)
	}

	start := time.Now()
	runID := uuid.NewString()
	filter := rs.ResolveFilter(req)
	log := rs.logger.WithFields(logger.Fields{
		"run_id":  runID,
		"company": filter.Company,
		"period":  filter.Period.String(),
	})

	ledger, ledgerStats := rs.aggregator.Ledger(req.Ledger, filter)
	tracker, trackerStats := rs.aggregator.Tracker(req.Tracker, filter)
	comparison := Compare(tracker, ledger)

	result := &ReconciliationResult{
		RunID:        runID,
		SourceName:   req.SourceName,
		Filter:       filter,
		Comparison:   comparison,
		Summary:      summarize(tracker, ledger, comparison),
		LedgerStats:  ledgerStats,
		TrackerStats: trackerStats,
		ProcessedAt:  start,
		Duration:     time.Since(start),
	}

	log.Infof("reconciliation finished: %d missing from ledger, %d mismatches, %d missing from tracker",
		result.Summary.MissingFromLedgerCount, result.Summary.MismatchCount, result.Summary.MissingFromTrackerCount)
	return result, nil
}

// MatchFiles runs the filename matcher against the tracker detail sheet
func (rs *ReconciliationService) MatchFiles(ctx context.Context, files []models.PdfFile, sheet models.TrackerDetailSheet) (*matcher.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.ReconciliationError(apperrors.CodeProcessingError, "match files", err)
	}
	for i, f := range files {
		if err := f.Validate(); err != nil {
			return nil, apperrors.ValidationError(apperrors.CodeMissingField, fmt.Sprintf("files[%d].name", i), f.Name, err)
		}
	}

	result := rs.engine.Match(files, sheet)
	rs.logger.WithField("run_id", result.RunID).Infof("filename matching finished: %d matched, %d unmatched, %d tracker rows without file",
		len(result.Matches), len(result.Unmatched), len(result.Unclaimed))
	return result, nil
}

// Breakdown sums ledger rows per account and concept
func (rs *ReconciliationService) Breakdown(ctx context.Context, rows []models.BreakdownRow) (*BreakdownResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.ReconciliationError(apperrors.CodeProcessingError, "breakdown", err)
	}
	result := BuildBreakdown(rows)
	result.RunID = uuid.NewString()
	rs.logger.WithField("run_id", result.RunID).Infof("breakdown finished: %d groups from %d rows", len(result.Entries), result.RowsRead)
	return result, nil
}

// GetConfiguration returns the current configuration
func (rs *ReconciliationService) GetConfiguration() *Config {
	return rs.config
}

func summarize(tracker, ledger *Aggregate, c *ComparisonResult) *ResultSummary {
	totalTracker := tracker.Total()
	totalLedger := ledger.Total()
	return &ResultSummary{
		TrackerKeys:              tracker.Len(),
		LedgerKeys:               ledger.Len(),
		MatchedCount:             len(c.Matched),
		MissingFromLedgerCount:   len(c.MissingFromLedger),
		MismatchCount:            len(c.Mismatches),
		MissingFromTrackerCount:  len(c.MissingFromTracker),
		TotalTrackerAmount:       totalTracker,
		TotalLedgerAmount:        totalLedger,
		MissingFromLedgerAmount:  sumMissing(c.MissingFromLedger),
		MissingFromTrackerAmount: sumMissing(c.MissingFromTracker),
		MismatchDifference:       sumDifferences(c.Mismatches),
		NetDifference:            totalTracker.Sub(totalLedger),
	}
}
