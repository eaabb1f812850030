package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"contract-validator/internal/contracts"
	"contract-validator/internal/llm"
	"contract-validator/internal/shared/telemetry"
)

// Stage names the analysis call in logs and metrics.
const Stage = "analysis"

// ErrSchema is returned when the model reply does not match the analysis schema.
var ErrSchema = errors.New("analysis response does not match schema")

// Input carries the contract and everything learned about it so far.
type Input struct {
	ContractText string
	Description  string
	ContractType string
	LegalContext contracts.ContractLegalContext
	Sections     map[string]string
}

// Service produces issues, suggestions and a risk score with one chat call.
type Service struct {
	Client      llm.ChatClient
	Model       string
	MaxTokens   int
	Temperature float64
	Now         func() time.Time
}

// Analyze asks the model for an analysis and decodes it strictly.
func (s *Service) Analyze(ctx context.Context, in Input) (contracts.ContractAnalysis, error) {
	raw, err := llm.Call(ctx, s.Client, Stage, llm.ChatRequest{
		Model: s.Model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: systemPrompt},
			{Role: llm.RoleUser, Content: buildPrompt(in)},
		},
		Temperature: s.Temperature,
		MaxTokens:   s.MaxTokens,
	})
	if err != nil {
		return contracts.ContractAnalysis{}, err
	}

	doc, err := llm.ExtractObject(raw)
	if err != nil {
		return contracts.ContractAnalysis{}, fmt.Errorf("%s: %w: %v", Stage, ErrSchema, err)
	}
	out, err := decode(doc)
	if err != nil {
		return contracts.ContractAnalysis{}, fmt.Errorf("%s: %w", Stage, err)
	}
	out.SchemaVersion = contracts.SchemaVersion
	out.AnalysisTimestamp = s.now()
	out.Redlines = []contracts.RedlineItem{}
	return out, nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

type rawIssue struct {
	Type        string `json:"type"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
	Location    struct {
		Paragraph json.RawMessage `json:"paragraph"`
		Text      string          `json:"text"`
	} `json:"location"`
	Suggestion string `json:"suggestion"`
}

func decode(doc json.RawMessage) (contracts.ContractAnalysis, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(doc, &top); err != nil {
		return contracts.ContractAnalysis{}, fmt.Errorf("%w: expected object: %v", ErrSchema, err)
	}
	for _, key := range []string{"issues", "suggestions", "risk_score"} {
		value, ok := top[key]
		if !ok || isNull(value) {
			return contracts.ContractAnalysis{}, fmt.Errorf("%w: missing key %q", ErrSchema, key)
		}
	}

	var rawIssues []rawIssue
	if err := json.Unmarshal(top["issues"], &rawIssues); err != nil {
		return contracts.ContractAnalysis{}, fmt.Errorf("%w: issues: %v", ErrSchema, err)
	}
	issues := make([]contracts.Issue, 0, len(rawIssues))
	for i, ri := range rawIssues {
		severity := contracts.Severity(strings.ToLower(strings.TrimSpace(ri.Severity)))
		if !severity.Valid() {
			return contracts.ContractAnalysis{}, fmt.Errorf("%w: issues[%d]: unknown severity %q", ErrSchema, i, ri.Severity)
		}
		paragraph, approximate := ParagraphNumber(ri.Location.Paragraph, i+1)
		if approximate {
			telemetry.Warn("analysis.paragraph.approximate", map[string]any{
				"issue":     i + 1,
				"raw":       string(ri.Location.Paragraph),
				"paragraph": paragraph,
			})
		}
		issues = append(issues, contracts.Issue{
			Type:        ri.Type,
			Severity:    severity,
			Description: ri.Description,
			Location: contracts.IssueLocation{
				Paragraph:            paragraph,
				Text:                 ri.Location.Text,
				ParagraphApproximate: approximate,
			},
			Suggestion: ri.Suggestion,
		})
	}

	suggestions := []contracts.Suggestion{}
	if err := json.Unmarshal(top["suggestions"], &suggestions); err != nil {
		return contracts.ContractAnalysis{}, fmt.Errorf("%w: suggestions: %v", ErrSchema, err)
	}
	if suggestions == nil {
		suggestions = []contracts.Suggestion{}
	}

	var score float64
	if err := json.Unmarshal(top["risk_score"], &score); err != nil {
		return contracts.ContractAnalysis{}, fmt.Errorf("%w: risk_score: %v", ErrSchema, err)
	}

	return contracts.ContractAnalysis{
		Issues:      issues,
		Suggestions: suggestions,
		RiskScore:   clampScore(score),
	}, nil
}

func clampScore(score float64) int {
	clamped := math.Max(0, math.Min(100, math.Round(score)))
	if clamped != math.Round(score) {
		telemetry.Warn("analysis.risk_score.clamped", map[string]any{
			"raw":     score,
			"clamped": clamped,
		})
	}
	return int(clamped)
}

// ParagraphNumber resolves a model-reported paragraph. Positive whole
// numbers are used as-is and strings yield their first run of digits ("P50"
// is 50). Anything else, including zero, negatives, fractions and values
// past math.MaxInt32, falls back to the issue's 1-based ordinal with
// approximate set.
func ParagraphNumber(raw json.RawMessage, ordinal int) (paragraph int, approximate bool) {
	if isNull(raw) {
		return ordinal, true
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		if n >= 1 && n <= math.MaxInt32 && n == math.Trunc(n) {
			return int(n), false
		}
		return ordinal, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if digits := firstDigits(s); digits != "" {
			if v, err := strconv.Atoi(digits); err == nil && v >= 1 && v <= math.MaxInt32 {
				return v, false
			}
		}
	}
	return ordinal, true
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func firstDigits(s string) string {
	start := strings.IndexAny(s, "0123456789")
	if start < 0 {
		return ""
	}
	end := start
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	return s[start:end]
}
