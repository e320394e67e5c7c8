package adapters

import (
	"regexp"
	"sort"
	"strings"
)

// Section is one "Item N." part of an annual report
type Section struct {
	Item        string `json:"item"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	StartOffset int    `json:"start_offset"`
	EndOffset   int    `json:"end_offset"`
}

// SectionTitles names the 10-K items most relevant to distress analysis
var SectionTitles = map[string]string{
	"1":  "Business",
	"1A": "Risk Factors",
	"3":  "Legal Proceedings",
	"7":  "Management's Discussion and Analysis",
	"7A": "Quantitative and Qualitative Disclosures About Market Risk",
	"8":  "Financial Statements and Supplementary Data",
	"9A": "Controls and Procedures",
}

// Matches headings like "ITEM 1A. RISK FACTORS", "Item 7 - MD&A", "Item 9A:"
var itemHeadingRe = regexp.MustCompile(`(?im)^[ \t]*item[ \t]+(\d{1,2}[a-c]?)[ \t]*[.\-:][ \t]*([^\n]*)$`)

// ParseSections splits text at Item headings. Headings must start a line, so
// callers should feed text with line structure preserved (the html adapter does).
func ParseSections(text string) []Section {
	locs := itemHeadingRe.FindAllStringSubmatchIndex(text, -1)

	sections := make([]Section, 0, len(locs))
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}

		item := strings.ToUpper(text[loc[2]:loc[3]])
		title := strings.TrimSpace(text[loc[4]:loc[5]])
		if title == "" {
			title = SectionTitles[item]
		}

		sections = append(sections, Section{
			Item:        item,
			Title:       title,
			Content:     strings.TrimSpace(text[loc[1]:end]),
			StartOffset: loc[0],
			EndOffset:   end,
		})
	}
	return sections
}

// SelectSections returns the content of the requested items joined in document
// order. When an item heading occurs more than once (a table of contents
// precedes the body), the longest occurrence is used. ok is false when none of
// the items were found.
func SelectSections(text string, items []string) (string, bool) {
	wanted := make(map[string]bool, len(items))
	for _, item := range items {
		if item = strings.ToUpper(strings.TrimSpace(item)); item != "" {
			wanted[item] = true
		}
	}
	if len(wanted) == 0 {
		return text, false
	}

	best := make(map[string]Section)
	for _, s := range ParseSections(text) {
		if !wanted[s.Item] {
			continue
		}
		if cur, ok := best[s.Item]; !ok || len(s.Content) > len(cur.Content) {
			best[s.Item] = s
		}
	}
	if len(best) == 0 {
		return text, false
	}

	selected := make([]Section, 0, len(best))
	for _, s := range best {
		selected = append(selected, s)
	}
	sort.Slice(selected, func(i, j int) bool {
		return selected[i].StartOffset < selected[j].StartOffset
	})

	parts := make([]string, len(selected))
	for i, s := range selected {
		parts[i] = s.Content
	}
	return strings.Join(parts, "\n\n"), true
}
