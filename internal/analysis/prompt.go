package analysis

import (
	"fmt"
	"strings"

	"contract-validator/internal/contracts"
)

const systemPrompt = "You are an expert legal contract analyzer. Respond with only the JSON object requested, no prose."

const responseShape = `{
  "issues": [
    {
      "type": "string",
      "severity": "critical|high|medium|low|info",
      "description": "string",
      "location": {"paragraph": number, "text": "quoted text from the paragraph"},
      "suggestion": "string"
    }
  ],
  "suggestions": [
    {"category": "string", "description": "string", "current": "string", "suggested": "string"}
  ],
  "risk_score": number (0-100)
}`

func buildPrompt(in Input) string {
	var b strings.Builder
	b.WriteString("You are a legal contract analyzer. Analyze the following contract.\n\n")

	if d := strings.TrimSpace(in.Description); d != "" {
		fmt.Fprintf(&b, "Contract description: %s\n", d)
	}
	if ct := strings.TrimSpace(in.ContractType); ct != "" {
		fmt.Fprintf(&b, "Contract type: %s\n", ct)
	}

	lc := in.LegalContext
	b.WriteString("\nLegal context:\n")
	fmt.Fprintf(&b, "Topic: %s\n", lc.Topic)
	fmt.Fprintf(&b, "Jurisdiction: %s\n", lc.Jurisdiction)
	fmt.Fprintf(&b, "Summary: %s\n", lc.Summary)
	writeReferences(&b, "Relevant laws", lc.Laws)
	writeReferences(&b, "Relevant cases", lc.Cases)

	var detected []string
	for _, key := range contracts.SectionOrder {
		if strings.TrimSpace(in.Sections[key]) != "" {
			detected = append(detected, key)
		}
	}
	if len(detected) > 0 {
		fmt.Fprintf(&b, "\nKey sections detected: %s\n", strings.Join(detected, ", "))
	}

	b.WriteString(`
Instructions:
1. Assess liability provisions, payment terms, notice periods, termination conditions, and governing law against the legal context above.
2. For each issue give its type, severity, the paragraph number from the [P<n>] markers, the quoted text, the risk, and a concrete replacement wording as the suggestion.
3. Add general suggestions for clauses that should be added or reworded.
4. Score the overall risk from 0 (none) to 100 (severe).

Contract text:
`)
	b.WriteString(in.ContractText)
	b.WriteString("\n\nRespond with only a JSON object matching this structure:\n")
	b.WriteString(responseShape)
	return b.String()
}

func writeReferences(b *strings.Builder, heading string, refs []contracts.LegalReference) {
	if len(refs) == 0 {
		return
	}
	fmt.Fprintf(b, "%s:\n", heading)
	for i, r := range refs {
		fmt.Fprintf(b, "%d. %s: %s (relevance: %s; source: %s)\n", i+1, r.Title, r.Description, r.Relevance, r.Source)
	}
}
