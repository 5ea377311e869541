package enrich

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Result is the parsed four-field enrichment response. Score is nil
// when the model returned nothing usable in [1,10].
type Result struct {
	Summary   string
	Score     *int
	Issues    []string
	FollowUps []string
}

// ParseError indicates a response with no recognizable section headers
// at all. Partially structured responses parse with defaults instead.
type ParseError struct {
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse enrichment response: %s", e.Message)
}

var (
	summaryRe   = regexp.MustCompile(`(?is)Summary:\s*(.+?)(?:\n\s*Score:|\z)`)
	scoreRe     = regexp.MustCompile(`(?i)Score:\s*(-?\d+)`)
	scoreLineRe = regexp.MustCompile(`(?i)Score:`)
	issuesRe    = regexp.MustCompile(`(?is)Issues:\s*(.+?)(?:\n\s*Follow-Ups:|\z)`)
	followUpsRe = regexp.MustCompile(`(?is)Follow-Ups:\s*(.+)\z`)
)

// ParseResponse extracts the four labeled sections from a raw response.
// Missing sections default (empty summary, nil score, empty lists); the
// parse only fails when none of the four headers is present.
func ParseResponse(raw string) (*Result, error) {
	result := &Result{
		Issues:    []string{},
		FollowUps: []string{},
	}
	recognized := false

	if m := summaryRe.FindStringSubmatch(raw); m != nil {
		recognized = true
		result.Summary = strings.TrimSpace(m[1])
	}

	if scoreLineRe.MatchString(raw) {
		recognized = true
		result.Score = parseScore(raw)
	}

	if m := issuesRe.FindStringSubmatch(raw); m != nil {
		recognized = true
		result.Issues = parseIssues(m[1])
	}

	if m := followUpsRe.FindStringSubmatch(raw); m != nil {
		recognized = true
		result.FollowUps = parseBullets(m[1])
	}

	if !recognized {
		return nil, &ParseError{Message: "no recognizable section headers in response"}
	}

	return result, nil
}

// parseScore coerces the score to an integer in [1,10]; anything else
// is nil. The caller logs the data-quality warning.
func parseScore(raw string) *int {
	m := scoreRe.FindStringSubmatch(raw)
	if m == nil {
		return nil
	}
	score, err := strconv.Atoi(m[1])
	if err != nil || score < 1 || score > 10 {
		return nil
	}
	return &score
}

// parseIssues splits the issues section. The prompt asks for a
// comma-separated list, but models sometimes answer with bullets, so
// both are accepted. A literal "None" means no issues.
func parseIssues(section string) []string {
	section = strings.TrimSpace(section)
	if section == "" || strings.EqualFold(section, "none") || strings.EqualFold(section, "none.") {
		return []string{}
	}

	if strings.Contains(section, "\n-") || strings.HasPrefix(section, "-") {
		return parseBullets(section)
	}

	parts := strings.Split(section, ",")
	issues := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			issues = append(issues, trimmed)
		}
	}
	return issues
}

// parseBullets extracts "- item" lines, tolerating "*" bullets and
// plain non-empty lines.
func parseBullets(section string) []string {
	var items []string
	for _, line := range strings.Split(section, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "-")
		line = strings.TrimPrefix(line, "*")
		line = strings.TrimSpace(line)
		if line != "" {
			items = append(items, line)
		}
	}
	if items == nil {
		return []string{}
	}
	return items
}
