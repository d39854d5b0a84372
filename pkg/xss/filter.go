package xss

import "strings"

// Match is a substring stripped from a URL and the expression that found it.
type Match struct {
	Pattern string `json:"pattern"`
	Text    string `json:"text"`
}

// Outcome is the result of a single filter invocation.
type Outcome struct {
	URL      string  `json:"url"`
	Matched  bool    `json:"matched"`
	Stripped []Match `json:"stripped,omitempty"`
}

// FilterFunc inspects rawURL against patterns and returns the rewritten URL.
type FilterFunc func(rawURL string, patterns PatternSet) Outcome

// Filter tries every pattern once, in order, and removes the first occurrence each one
// matches. Later occurrences of the same signature survive a single call.
func Filter(rawURL string, patterns PatternSet) Outcome {
	out := Outcome{URL: rawURL}
	for _, p := range patterns.patterns {
		loc := p.FindStringIndex(out.URL)
		if loc == nil {
			continue
		}
		out.Stripped = append(out.Stripped, Match{
			Pattern: p.String(),
			Text:    out.URL[loc[0]:loc[1]],
		})
		out.URL = out.URL[:loc[0]] + out.URL[loc[1]:]
		out.Matched = true
	}
	return out
}

// SanitizeAll applies filter until an invocation reports no match or maxPasses calls were
// made. The returned outcome accumulates the matches of every pass.
func SanitizeAll(rawURL string, patterns PatternSet, filter FilterFunc, maxPasses int) Outcome {
	if filter == nil {
		filter = Filter
	}
	if maxPasses < 1 {
		maxPasses = 1
	}
	total := Outcome{URL: rawURL}
	for i := 0; i < maxPasses; i++ {
		pass := filter(total.URL, patterns)
		if !pass.Matched {
			break
		}
		total.URL = pass.URL
		total.Matched = true
		total.Stripped = append(total.Stripped, pass.Stripped...)
	}
	return total
}

// StrippedText joins the removed substrings, mostly for log lines.
func (o Outcome) StrippedText() string {
	parts := make([]string, len(o.Stripped))
	for i, m := range o.Stripped {
		parts[i] = m.Text
	}
	return strings.Join(parts, ", ")
}
