// Package message lints generated commit messages against the rules the prompt asks for.
// Findings are advisory: a message that breaks a rule can still be committed.
package message

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// ValidCommitTypes are the types the prompt allows.
var ValidCommitTypes = []string{
	"fix", "feat", "build", "chore", "ci",
	"docs", "style", "refactor", "perf", "test",
}

const (
	// MaxSubjectLength is the limit for the whole first line.
	MaxSubjectLength = 50
	// MaxBodyLineLength is the column at which body lines wrap.
	MaxBodyLineLength = 72
)

// Rule names.
const (
	RuleType       = "type"
	RuleSubject    = "subject"
	RuleLength     = "subject-length"
	RuleBlankLine  = "blank-line"
	RuleBodyLength = "body-length"
)

// <type>(<scope>)!: <description>
var headerRegex = regexp.MustCompile(`^([a-z]+)(?:\(([^)]+)\))?(!)?:\s*(.*)$`)

// Header is the parsed first line of a conventional commit.
type Header struct {
	Type        string
	Scope       string
	Breaking    bool
	Description string
}

// String renders the header back into a subject line.
func (h Header) String() string {
	var sb strings.Builder
	sb.WriteString(h.Type)
	if h.Scope != "" {
		sb.WriteString("(" + h.Scope + ")")
	}
	if h.Breaking {
		sb.WriteString("!")
	}
	sb.WriteString(": ")
	sb.WriteString(h.Description)
	return sb.String()
}

// ParseHeader splits a subject line into its conventional commit parts.
// ok is false when the line has no "type:" prefix.
func ParseHeader(line string) (h Header, ok bool) {
	m := headerRegex.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return Header{}, false
	}
	return Header{
		Type:        m[1],
		Scope:       m[2],
		Breaking:    m[3] == "!",
		Description: strings.TrimSpace(m[4]),
	}, true
}

// Issue is a single rule violation. Line is 1-based.
type Issue struct {
	Line    int
	Rule    string
	Message string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s", i.Rule, i.Message)
}

// Check runs every rule against raw and returns the violations in line order.
func Check(raw string) []Issue {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []Issue{{Line: 1, Rule: RuleSubject, Message: "empty message"}}
	}

	lines := strings.Split(raw, "\n")
	subject := strings.TrimRight(lines[0], " \t\r")

	var issues []Issue
	if h, ok := ParseHeader(subject); !ok {
		issues = append(issues, Issue{1, RuleType, "missing commit type"})
	} else {
		if !IsValidCommitType(h.Type) {
			issues = append(issues, Issue{1, RuleType, fmt.Sprintf("invalid commit type: %s (valid types: %s)",
				h.Type, strings.Join(ValidCommitTypes, ", "))})
		}
		if h.Description == "" {
			issues = append(issues, Issue{1, RuleSubject, "missing commit subject"})
		}
	}

	if n := len([]rune(subject)); n > MaxSubjectLength {
		issues = append(issues, Issue{1, RuleLength, fmt.Sprintf("subject line exceeds %d characters (%d chars)", MaxSubjectLength, n)})
	}

	if len(lines) > 1 && strings.TrimSpace(lines[1]) != "" {
		issues = append(issues, Issue{2, RuleBlankLine, "missing blank line between subject and body"})
	}
	for i, line := range lines[1:] {
		if n := len([]rune(strings.TrimRight(line, "\r"))); n > MaxBodyLineLength {
			issues = append(issues, Issue{i + 2, RuleBodyLength, fmt.Sprintf("line %d exceeds %d characters (%d chars)", i+2, MaxBodyLineLength, n)})
		}
	}

	return issues
}

// Lint returns the issue messages for display. Empty means the message follows every rule.
func Lint(raw string) []string {
	issues := Check(raw)
	out := make([]string, 0, len(issues))
	for _, issue := range issues {
		out = append(out, issue.Message)
	}
	return out
}

// IsValidCommitType checks if the given type is one the prompt allows.
func IsValidCommitType(commitType string) bool {
	return slices.Contains(ValidCommitTypes, commitType)
}
