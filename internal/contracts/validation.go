package contracts

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"contract-validator/internal/llm"
	"contract-validator/internal/shared/telemetry"
)

// Validator decides whether a document reads as a legal contract.
type Validator interface {
	IsValidContract(ctx context.Context, text string) (bool, error)
}

var contractIndicators = compileAll(
	`agreement`,
	`contract`,
	`terms and conditions`,
	`parties`,
	`hereby agree`,
	`obligations`,
	`effective date`,
	`in witness whereof`,
	`signature`,
	`signed by`,
)

var essentialSections = compileAll(
	`parties?`,
	`purpose|scope`,
	`terms?`,
	`conditions?`,
	`obligations?`,
	`payment|compensation`,
	`termination`,
	`governing law|jurisdiction`,
	`signature|execution`,
)

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(p))
	}
	return out
}

// Default heuristic thresholds.
const (
	DefaultMinIndicators = 3
	DefaultMinSections   = 4
)

// HeuristicValidator classifies text by counting contract keywords.
// Zero thresholds use the defaults.
type HeuristicValidator struct {
	MinIndicators int
	MinSections   int
}

// IsValidContract reports whether text has enough contract indicators and
// essential sections. It never returns an error.
func (h HeuristicValidator) IsValidContract(_ context.Context, text string) (bool, error) {
	minIndicators, minSections := h.MinIndicators, h.MinSections
	if minIndicators <= 0 {
		minIndicators = DefaultMinIndicators
	}
	if minSections <= 0 {
		minSections = DefaultMinSections
	}
	lower := strings.ToLower(text)
	return countMatches(contractIndicators, lower) >= minIndicators &&
		countMatches(essentialSections, lower) >= minSections, nil
}

func countMatches(patterns []*regexp.Regexp, text string) int {
	n := 0
	for _, re := range patterns {
		if re.MatchString(text) {
			n++
		}
	}
	return n
}

const validatorSystemPrompt = "You are a legal document validator. Respond with ONLY 'true' or 'false'."

const validatorPrompt = `Decide whether the following document is a legal contract.
Consider whether it has contract structure, names parties, sets out obligations or agreements, and uses binding language.
A blank template of a contract counts as a contract.

Respond with ONLY 'true' if it is a contract, or 'false' if it is not.

Document text:
%s`

// AIValidator asks a chat model for a true/false verdict.
type AIValidator struct {
	Client    llm.ChatClient
	Model     string
	MaxTokens int
}

// IsValidContract returns the model's verdict. Any answer other than
// true or false is an error.
func (v AIValidator) IsValidContract(ctx context.Context, text string) (bool, error) {
	raw, err := v.Client.Complete(ctx, llm.ChatRequest{
		Model: v.Model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: validatorSystemPrompt},
			{Role: llm.RoleUser, Content: fmt.Sprintf(validatorPrompt, text)},
		},
		Temperature: 0,
		MaxTokens:   v.MaxTokens,
	})
	if err != nil {
		return false, fmt.Errorf("ai validation: %w", err)
	}
	verdict := strings.Trim(strings.ToLower(strings.TrimSpace(raw)), `."'`)
	switch verdict {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, fmt.Errorf("%w: %q", ErrAmbiguousVerdict, truncate(raw, 64))
	}
}

// FallbackValidator consults Primary and falls back to Fallback when
// Primary fails.
type FallbackValidator struct {
	Primary  Validator
	Fallback Validator
}

// IsValidContract returns the primary verdict, or the fallback verdict if
// the primary errored.
func (f FallbackValidator) IsValidContract(ctx context.Context, text string) (bool, error) {
	ok, err := f.Primary.IsValidContract(ctx, text)
	if err == nil {
		return ok, nil
	}
	telemetry.Warn("contracts.validator.fallback", map[string]any{
		"error": err,
	})
	return f.Fallback.IsValidContract(ctx, text)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
