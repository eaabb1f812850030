package contracts

import "strings"

// Section keys returned by ExtractSections.
const (
	SectionLiability   = "liability_clauses"
	SectionPayment     = "payment_terms"
	SectionNotice      = "notice_periods"
	SectionTermination = "termination_clauses"
	SectionGoverning   = "governing_law"
)

// SectionOrder lists section keys in presentation order.
var SectionOrder = []string{SectionLiability, SectionPayment, SectionNotice, SectionTermination, SectionGoverning}

var sectionKeywords = []struct {
	keyword string
	section string
}{
	{"liability", SectionLiability},
	{"indemnif", SectionLiability},
	{"payment", SectionPayment},
	{"fee", SectionPayment},
	{"notice", SectionNotice},
	{"notif", SectionNotice},
	{"terminat", SectionTermination},
	{"govern", SectionGoverning},
	{"law", SectionGoverning},
	{"jurisdiction", SectionGoverning},
}

// ExtractSections buckets lines of text into well-known clause groups.
// A line containing a keyword opens that group, replacing its content;
// following lines are appended until the next keyword line.
func ExtractSections(text string) map[string]string {
	sections := make(map[string]string, len(SectionOrder))
	for _, key := range SectionOrder {
		sections[key] = ""
	}

	var current string
	var content []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.ToLower(line)
		for _, kw := range sectionKeywords {
			if strings.Contains(line, kw.keyword) {
				current = kw.section
				content = content[:0]
				break
			}
		}
		if current != "" && strings.TrimSpace(line) != "" {
			content = append(content, strings.TrimSpace(line))
			sections[current] = strings.Join(content, "\n")
		}
	}
	return sections
}
