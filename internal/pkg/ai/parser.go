package ai

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

const (
	thinkOpen  = "<think>"
	thinkClose = "</think>"
)

var (
	thinkBlock     = regexp.MustCompile(`(?s)<think>.*?</think>`)
	blankLineRun   = regexp.MustCompile(`\n\s*\n\s*\n`)
	codeFence      = regexp.MustCompile("(?s)```[a-zA-Z]*\\s*(.*?)```")
	listItemPrefix = regexp.MustCompile(`^(?:[-*•]|\d+[.)])\s+`)
)

// ErrNoSuggestions is returned when a reply contains no usable commit suggestions.
var ErrNoSuggestions = errors.New("no commit suggestions found in response")

// CleanResponse strips reasoning blocks from a model reply and collapses the blank line runs
// they leave behind.
func CleanResponse(s string) string {
	s = thinkBlock.ReplaceAllString(s, "")
	// A reply can start mid-thought with only the closing tag present.
	if idx := strings.LastIndex(s, thinkClose); idx >= 0 {
		s = s[idx+len(thinkClose):]
	}
	for strings.Contains(s, thinkOpen) {
		s = strings.ReplaceAll(s, thinkOpen, "")
	}
	s = blankLineRun.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// FirstLine returns the first non-empty line of s, trimmed.
func FirstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}

// finalizeMessage cleans a raw reply and applies oneline mode.
func finalizeMessage(raw string, oneline bool) string {
	msg := CleanResponse(raw)
	if oneline {
		msg = FirstLine(msg)
	}
	return msg
}

// ParseCommitSuggestions reads a JSON array of suggestions, optionally wrapped in a code fence.
// Replies that are not JSON fall back to one suggestion per bullet or numbered line.
func ParseCommitSuggestions(text string) ([]CommitSuggestion, error) {
	text = CleanResponse(text)
	if m := codeFence.FindStringSubmatch(text); m != nil {
		text = strings.TrimSpace(m[1])
	}

	if start, end := strings.Index(text, "["), strings.LastIndex(text, "]"); start >= 0 && end > start {
		var parsed []CommitSuggestion
		if err := json.Unmarshal([]byte(text[start:end+1]), &parsed); err == nil {
			suggestions := make([]CommitSuggestion, 0, len(parsed))
			for _, s := range parsed {
				s.Description = strings.TrimSpace(s.Description)
				if s.Description != "" {
					suggestions = append(suggestions, s)
				}
			}
			if len(suggestions) > 0 {
				return suggestions, nil
			}
		}
	}

	var suggestions []CommitSuggestion
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		loc := listItemPrefix.FindStringIndex(line)
		if loc == nil {
			continue
		}
		if desc := strings.TrimSpace(line[loc[1]:]); desc != "" {
			suggestions = append(suggestions, CommitSuggestion{Description: desc})
		}
	}
	if len(suggestions) == 0 {
		return nil, ErrNoSuggestions
	}
	return suggestions, nil
}
