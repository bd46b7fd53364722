package config

import (
	"bytes"
	"strings"

	"github.com/subosito/gotenv"
)

// UpsertLine sets KEY=value in dotenv content while keeping every other line.
// An existing KEY= line is replaced in place, a commented #KEY= line is
// uncommented and replaced, otherwise the assignment is appended.
func UpsertLine(content, key, value string) string {
	key = strings.ToUpper(NormalizeKey(key))
	assignment := key + "=" + quoteValue(value)

	lines := strings.Split(content, "\n")
	trailingNewline := strings.HasSuffix(content, "\n")
	if trailingNewline {
		lines = lines[:len(lines)-1]
	}

	commented := -1
	for i, line := range lines {
		switch strings.ToUpper(lineKey(line)) {
		case key:
			lines[i] = assignment
			return joinLines(lines)
		case "#" + key:
			if commented < 0 {
				commented = i
			}
		}
	}

	if commented >= 0 {
		lines[commented] = assignment
		return joinLines(lines)
	}

	if len(lines) == 1 && lines[0] == "" {
		lines = lines[:0]
	}
	lines = append(lines, assignment)
	return joinLines(lines)
}

// ParseDotenv reads dotenv content into normalized config keys.
// Unknown keys are ignored.
func ParseDotenv(content []byte) map[string]string {
	env := gotenv.Parse(bytes.NewReader(content))
	out := make(map[string]string)
	rank := make(map[string]int)
	for name, value := range env {
		key, r := envKey(name)
		if key == "" || r <= rank[key] {
			continue
		}
		out[key] = value
		rank[key] = r
	}
	return out
}

// envKey maps an environment name to a config key and its precedence:
// GAI_MODEL beats MODEL, and API_KEY beats OPENAI_API_KEY.
func envKey(name string) (string, int) {
	upper := strings.ToUpper(name)
	if upper == "OPENAI_API_KEY" {
		return KeyAPIKey, 1
	}
	key := NormalizeKey(upper)
	if !IsKnownKey(key) {
		return "", 0
	}
	if strings.HasPrefix(upper, "GAI_") {
		return key, 3
	}
	return key, 2
}

// lineKey returns the assignment key of a line, keeping a leading '#'.
func lineKey(line string) string {
	trimmed := strings.TrimSpace(line)
	trimmed = strings.TrimPrefix(trimmed, "export ")
	idx := strings.Index(trimmed, "=")
	if idx <= 0 {
		return ""
	}
	name := strings.TrimSpace(trimmed[:idx])
	if strings.HasPrefix(name, "#") {
		return "#" + strings.TrimSpace(strings.TrimPrefix(name, "#"))
	}
	return name
}

func quoteValue(value string) string {
	if value == "" || !strings.ContainsAny(value, " \t#\"'") {
		return value
	}
	return `"` + strings.ReplaceAll(value, `"`, `\"`) + `"`
}

func joinLines(lines []string) string {
	return strings.Join(lines, "\n") + "\n"
}
