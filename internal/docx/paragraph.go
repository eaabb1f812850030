package docx

import (
	"encoding/xml"
	"strings"

	"contract-validator/internal/contracts"
)

const unknown = "Unknown"

// node is a generic WordprocessingML element.
type node struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Nodes   []node     `xml:",any"`
	Text    string     `xml:",chardata"`
}

func (n node) attr(local string) string {
	for _, a := range n.Attrs {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// text returns the paragraph's current text. Deleted and moved-away runs
// and property blocks are excluded.
func (n node) text() string {
	var b strings.Builder
	n.writeText(&b)
	return b.String()
}

func (n node) writeText(b *strings.Builder) {
	for _, child := range n.Nodes {
		switch child.XMLName.Local {
		case "del", "moveFrom", "pPr", "rPr":
			continue
		case "t":
			b.WriteString(child.Text)
		case "tab":
			b.WriteByte('\t')
		case "br", "cr":
			b.WriteByte('\n')
		default:
			child.writeText(b)
		}
	}
}

// markerText concatenates w:t and w:delText descendants.
func (n node) markerText() string {
	var b strings.Builder
	var walk func(node)
	walk = func(cur node) {
		for _, child := range cur.Nodes {
			switch child.XMLName.Local {
			case "t", "delText":
				b.WriteString(child.Text)
			default:
				walk(child)
			}
		}
	}
	walk(n)
	return b.String()
}

// redlines returns the paragraph's revision markers in emission order:
// deletions, insertions, move-from, move-to.
func (n node) redlines(paragraph int) []contracts.RedlineItem {
	byKind := map[string][]node{}
	var collect func(node)
	collect = func(cur node) {
		for _, child := range cur.Nodes {
			switch child.XMLName.Local {
			case "del", "ins", "moveFrom", "moveTo":
				byKind[child.XMLName.Local] = append(byKind[child.XMLName.Local], child)
			default:
				collect(child)
			}
		}
	}
	collect(n)

	var out []contracts.RedlineItem
	for _, kind := range []string{"del", "ins", "moveFrom", "moveTo"} {
		for _, marker := range byKind[kind] {
			text := marker.markerText()
			if text == "" {
				continue
			}
			item := contracts.RedlineItem{
				ParagraphNumber: paragraph,
				Author:          orUnknown(marker.attr("author")),
				Date:            orUnknown(marker.attr("date")),
			}
			switch kind {
			case "del", "moveFrom":
				item.OriginalText = text
				item.ChangeType = contracts.ChangeDeletion
			default:
				item.ModifiedText = text
				item.ChangeType = contracts.ChangeInsertion
			}
			out = append(out, item)
		}
	}
	return out
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return unknown
	}
	return s
}
