package legalcontext

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"contract-validator/internal/contracts"
	"contract-validator/internal/llm"
)

// ErrMalformedResponse is returned when a model reply lacks the expected shape.
var ErrMalformedResponse = errors.New("malformed legal context response")

// Stage names used in logs and metrics.
const (
	StageSummary = "context.summary"
	StageLaws    = "context.laws"
	StageCases   = "context.cases"
)

const summarySystemPrompt = "You are a legal expert. Analyze the contract to identify its main topic, " +
	"its governing jurisdiction (use the specified one when given), and provide a brief summary. " +
	"Respond with only a JSON object with keys: topic, jurisdiction, summary."

const lawsSystemPrompt = "You are a legal researcher. Find relevant laws and regulations for this contract. " +
	"Focus on the most important and recent laws. " +
	"Respond with only a JSON array of objects with keys: title, description, relevance, source."

const casesSystemPrompt = "You are a legal researcher. Find relevant case law and precedents for this contract. " +
	"Focus on landmark cases and recent decisions. " +
	"Respond with only a JSON array of objects with keys: title, description, relevance, source."

// Input carries the contract and optional caller hints.
type Input struct {
	ContractText string
	Description  string
	Jurisdiction string
	ContractType string
}

// Service builds a legal context with three sequential chat calls.
type Service struct {
	Client      llm.ChatClient
	Model       string
	MaxTokens   int
	Temperature float64
}

// Analyze identifies the contract's topic and jurisdiction, then the laws
// and cases relevant to it.
func (s *Service) Analyze(ctx context.Context, in Input) (contracts.ContractLegalContext, error) {
	summary, err := s.summarize(ctx, in)
	if err != nil {
		return contracts.ContractLegalContext{}, err
	}

	research := fmt.Sprintf("a %s contract in %s. Contract summary: %s", summary.Topic, orNotSpecified(summary.Jurisdiction), summary.Summary)

	lawsRaw, err := s.complete(ctx, StageLaws, lawsSystemPrompt, "Find relevant laws for "+research)
	if err != nil {
		return contracts.ContractLegalContext{}, err
	}
	laws, err := decodeReferences(lawsRaw, "laws", contracts.ReferenceLaw)
	if err != nil {
		return contracts.ContractLegalContext{}, fmt.Errorf("%s: %w", StageLaws, err)
	}

	casesRaw, err := s.complete(ctx, StageCases, casesSystemPrompt, "Find relevant cases for "+research)
	if err != nil {
		return contracts.ContractLegalContext{}, err
	}
	cases, err := decodeReferences(casesRaw, "cases", contracts.ReferenceCase)
	if err != nil {
		return contracts.ContractLegalContext{}, fmt.Errorf("%s: %w", StageCases, err)
	}

	summary.Laws = laws
	summary.Cases = cases
	return summary, nil
}

func (s *Service) summarize(ctx context.Context, in Input) (contracts.ContractLegalContext, error) {
	var user strings.Builder
	user.WriteString("Contract text: ")
	user.WriteString(in.ContractText)
	user.WriteString("\nSpecified jurisdiction: ")
	user.WriteString(orNotSpecified(in.Jurisdiction))
	if ct := strings.TrimSpace(in.ContractType); ct != "" {
		user.WriteString("\nContract type: ")
		user.WriteString(ct)
	}
	if d := strings.TrimSpace(in.Description); d != "" {
		user.WriteString("\nDescription: ")
		user.WriteString(d)
	}

	raw, err := s.complete(ctx, StageSummary, summarySystemPrompt, user.String())
	if err != nil {
		return contracts.ContractLegalContext{}, err
	}
	obj, err := firstObject(raw)
	if err != nil {
		return contracts.ContractLegalContext{}, fmt.Errorf("%s: %w", StageSummary, err)
	}
	fields, err := requireStrings(obj, "topic", "jurisdiction", "summary")
	if err != nil {
		return contracts.ContractLegalContext{}, fmt.Errorf("%s: %w", StageSummary, err)
	}

	jurisdiction := fields["jurisdiction"]
	if strings.TrimSpace(jurisdiction) == "" {
		jurisdiction = strings.TrimSpace(in.Jurisdiction)
	}
	return contracts.ContractLegalContext{
		Topic:        fields["topic"],
		Jurisdiction: jurisdiction,
		Summary:      fields["summary"],
		Laws:         []contracts.LegalReference{},
		Cases:        []contracts.LegalReference{},
	}, nil
}

func (s *Service) complete(ctx context.Context, stage, system, user string) (string, error) {
	return llm.Call(ctx, s.Client, stage, llm.ChatRequest{
		Model: s.Model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: system},
			{Role: llm.RoleUser, Content: user},
		},
		Temperature: s.Temperature,
		MaxTokens:   s.MaxTokens,
	})
}

func orNotSpecified(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Not specified"
	}
	return s
}
