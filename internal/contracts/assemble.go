package contracts

import (
	"sort"
	"time"
)

// AIAuthor tags redlines synthesized from analysis issues.
const AIAuthor = "AI Contract Analyzer"

// RedlinesFromIssues turns each issue into a suggested modification.
func RedlinesFromIssues(issues []Issue, author string, at time.Time) []RedlineItem {
	out := make([]RedlineItem, 0, len(issues))
	date := at.UTC().Format(time.RFC3339)
	for _, issue := range issues {
		out = append(out, RedlineItem{
			ParagraphNumber: issue.Location.Paragraph,
			OriginalText:    issue.Location.Text,
			ModifiedText:    issue.Suggestion,
			Author:          author,
			Date:            date,
			ChangeType:      ChangeModification,
		})
	}
	return out
}

// MergeRedlines concatenates native and synthesized redlines ordered by
// paragraph. At equal paragraphs native entries come first.
func MergeRedlines(native, synthesized []RedlineItem) []RedlineItem {
	out := make([]RedlineItem, 0, len(native)+len(synthesized))
	out = append(out, native...)
	out = append(out, synthesized...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ParagraphNumber < out[j].ParagraphNumber
	})
	return out
}

// Success wraps an analysis in a success envelope.
func Success(analysis ContractAnalysis) Envelope {
	if analysis.SchemaVersion == "" {
		analysis.SchemaVersion = SchemaVersion
	}
	if analysis.Issues == nil {
		analysis.Issues = []Issue{}
	}
	if analysis.Suggestions == nil {
		analysis.Suggestions = []Suggestion{}
	}
	if analysis.Redlines == nil {
		analysis.Redlines = []RedlineItem{}
	}
	return Envelope{Status: StatusSuccess, Analysis: &analysis}
}

// Failure builds an error envelope.
func Failure(code, message string, details any, at time.Time) Envelope {
	return Envelope{
		Status: StatusError,
		Error: &ErrorDetail{
			ErrorCode: code,
			Message:   message,
			Details:   details,
			Timestamp: at.UTC(),
		},
	}
}
