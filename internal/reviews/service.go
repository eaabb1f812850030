package reviews

import (
	"context"
	"time"

	"contract-validator/internal/analysis"
	"contract-validator/internal/contracts"
	"contract-validator/internal/docx"
	"contract-validator/internal/legalcontext"
	"contract-validator/internal/shared/metrics"
	"contract-validator/internal/shared/telemetry"
)

// Pipeline stages reported in StageError and review.stage events.
const (
	StageParse        = "parse"
	StageValidate     = "validate"
	StageLegalContext = "legal_context"
	StageAnalysis     = "analysis"
)

// StageError wraps a failure with the pipeline stage that produced it.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return e.Stage + ": " + e.Err.Error()
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// ContextProvider produces the legal context of a contract.
type ContextProvider interface {
	Analyze(ctx context.Context, in legalcontext.Input) (contracts.ContractLegalContext, error)
}

// Analyzer produces issues, suggestions and a risk score.
type Analyzer interface {
	Analyze(ctx context.Context, in analysis.Input) (contracts.ContractAnalysis, error)
}

// Request is one contract submitted for review.
type Request struct {
	RequestID    string
	FileName     string
	Data         []byte
	Description  string
	ContractType string
	Jurisdiction string
}

// Service runs the review pipeline. A nil Validator skips validation.
type Service struct {
	Reader    *docx.Reader
	Validator contracts.Validator
	Context   ContextProvider
	Analyzer  Analyzer
}

// Review parses the upload, gathers legal context, analyzes the contract and
// merges native and synthesized redlines.
func (s *Service) Review(ctx context.Context, req Request) (contracts.ContractAnalysis, error) {
	start := time.Now()
	out, err := s.review(ctx, req)
	metrics.ObserveAnalysisDuration(time.Since(start))
	metrics.IncAnalysis(outcome(err))
	return out, err
}

func (s *Service) review(ctx context.Context, req Request) (contracts.ContractAnalysis, error) {
	var doc docx.ParsedDocument
	err := s.stage(ctx, req, StageParse, func(ctx context.Context) error {
		var err error
		doc, err = s.Reader.Parse(ctx, req.FileName, req.Data)
		return err
	})
	if err != nil {
		return contracts.ContractAnalysis{}, err
	}

	if s.Validator != nil {
		err = s.stage(ctx, req, StageValidate, func(ctx context.Context) error {
			ok, err := s.Validator.IsValidContract(ctx, doc.Text)
			if err != nil {
				return err
			}
			if !ok {
				return contracts.ErrNotAContract
			}
			return nil
		})
		if err != nil {
			return contracts.ContractAnalysis{}, err
		}
	}

	sections := contracts.ExtractSections(doc.Text)

	var legal contracts.ContractLegalContext
	err = s.stage(ctx, req, StageLegalContext, func(ctx context.Context) error {
		var err error
		legal, err = s.Context.Analyze(ctx, legalcontext.Input{
			ContractText: doc.Text,
			Description:  req.Description,
			Jurisdiction: req.Jurisdiction,
			ContractType: req.ContractType,
		})
		return err
	})
	if err != nil {
		return contracts.ContractAnalysis{}, err
	}

	var result contracts.ContractAnalysis
	err = s.stage(ctx, req, StageAnalysis, func(ctx context.Context) error {
		var err error
		result, err = s.Analyzer.Analyze(ctx, analysis.Input{
			ContractText: doc.Text,
			Description:  req.Description,
			ContractType: req.ContractType,
			LegalContext: legal,
			Sections:     sections,
		})
		return err
	})
	if err != nil {
		return contracts.ContractAnalysis{}, err
	}

	synthesized := contracts.RedlinesFromIssues(result.Issues, contracts.AIAuthor, result.AnalysisTimestamp)
	result.Redlines = contracts.MergeRedlines(doc.Redlines, synthesized)
	result.LegalContext = &legal
	return result, nil
}

func (s *Service) stage(ctx context.Context, req Request, name string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	fields := map[string]any{
		"stage":       name,
		"request_id":  req.RequestID,
		"file_name":   req.FileName,
		"duration_ms": time.Since(start).Milliseconds(),
	}
	if err != nil {
		fields["error"] = err
		telemetry.Warn("review.stage", fields)
		return &StageError{Stage: name, Err: err}
	}
	telemetry.Info("review.stage", fields)
	return nil
}

func outcome(err error) string {
	if err == nil {
		return metrics.OutcomeSuccess
	}
	if Classify(err, 0).Status < 500 {
		return metrics.OutcomeInvalid
	}
	return metrics.OutcomeFailed
}
