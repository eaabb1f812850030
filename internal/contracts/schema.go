package contracts

import "time"

// SchemaVersion identifies the analysis payload layout.
const SchemaVersion = "contract-analysis/v1"

// ChangeType classifies a redline.
type ChangeType string

const (
	ChangeInsertion    ChangeType = "insertion"
	ChangeDeletion     ChangeType = "deletion"
	ChangeModification ChangeType = "modification"
)

// RedlineItem is one tracked or suggested change anchored to a paragraph.
type RedlineItem struct {
	ParagraphNumber int        `json:"paragraph_number"`
	OriginalText    string     `json:"original_text"`
	ModifiedText    string     `json:"modified_text"`
	Author          string     `json:"author"`
	Date            string     `json:"date"`
	ChangeType      ChangeType `json:"change_type"`
}

// ReferenceType distinguishes statutes from precedent.
type ReferenceType string

const (
	ReferenceLaw  ReferenceType = "law"
	ReferenceCase ReferenceType = "case"
)

// LegalReference is a law or case relevant to the contract.
type LegalReference struct {
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	Relevance     string        `json:"relevance"`
	Source        string        `json:"source"`
	ReferenceType ReferenceType `json:"reference_type"`
}

// ContractLegalContext summarizes the legal landscape of a contract.
type ContractLegalContext struct {
	Topic        string           `json:"topic"`
	Jurisdiction string           `json:"jurisdiction"`
	Summary      string           `json:"summary"`
	Laws         []LegalReference `json:"laws"`
	Cases        []LegalReference `json:"cases"`
}

// Severity ranks an issue.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
)

// Valid reports whether s is one of the known severities.
func (s Severity) Valid() bool {
	switch s {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow, SeverityInfo:
		return true
	}
	return false
}

// IssueLocation anchors an issue in the document.
// ParagraphApproximate is set when the paragraph was inferred from the
// issue's position rather than reported by the model.
type IssueLocation struct {
	Paragraph            int    `json:"paragraph"`
	Text                 string `json:"text"`
	ParagraphApproximate bool   `json:"paragraph_approximate,omitempty"`
}

// Issue is a problem found in the contract.
type Issue struct {
	Type        string        `json:"type"`
	Severity    Severity      `json:"severity"`
	Description string        `json:"description"`
	Location    IssueLocation `json:"location"`
	Suggestion  string        `json:"suggestion"`
}

// Suggestion is a general improvement not tied to one issue.
type Suggestion struct {
	Category    string `json:"category"`
	Description string `json:"description"`
	Current     string `json:"current"`
	Suggested   string `json:"suggested"`
}

// ContractAnalysis is the analysis payload returned to callers.
type ContractAnalysis struct {
	SchemaVersion     string                `json:"schema_version"`
	Issues            []Issue               `json:"issues"`
	Suggestions       []Suggestion          `json:"suggestions"`
	RiskScore         int                   `json:"risk_score"`
	AnalysisTimestamp time.Time             `json:"analysis_timestamp"`
	Redlines          []RedlineItem         `json:"redlines"`
	LegalContext      *ContractLegalContext `json:"legal_context,omitempty"`
}

// Envelope statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// ErrorDetail is the structured error payload.
type ErrorDetail struct {
	ErrorCode string    `json:"error_code"`
	Message   string    `json:"message"`
	Details   any       `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Envelope is the response body of every analysis request. Exactly one of
// Analysis and Error is set.
type Envelope struct {
	Status   string            `json:"status"`
	Analysis *ContractAnalysis `json:"analysis,omitempty"`
	Error    *ErrorDetail      `json:"error,omitempty"`
}
