// Package security scans staged changes for credentials and masks secrets for display.
package security

import (
	"regexp"
	"strings"
)

// credentialPattern matches assignments of secret-looking values.
var credentialPattern = regexp.MustCompile(
	`(?i)(password|pwd|secret|api_key|token|private_key)\s*=\s*["']?[a-zA-Z0-9_/\-+=]{8,}["']?`,
)

// Finding is one added line that looks like it carries a credential.
type Finding struct {
	File    string
	Line    string
	Keyword string
}

// ScanLine reports whether line assigns a credential-like value.
func ScanLine(line string) bool {
	return credentialPattern.MatchString(line)
}

// DetectCredentials returns one finding per added line of diff that matches the credential pattern.
// Removed and context lines are ignored, as are the "+++" file headers.
func DetectCredentials(diff string) []Finding {
	var (
		findings []Finding
		file     string
	)
	for _, line := range strings.Split(diff, "\n") {
		if strings.HasPrefix(line, "+++") {
			file = strings.TrimPrefix(strings.TrimSpace(strings.TrimPrefix(line, "+++")), "b/")
			if file == "/dev/null" {
				file = ""
			}
			continue
		}
		if !strings.HasPrefix(line, "+") {
			continue
		}
		added := strings.TrimPrefix(line, "+")
		match := credentialPattern.FindStringSubmatch(added)
		if match == nil {
			continue
		}
		findings = append(findings, Finding{
			File:    file,
			Line:    strings.TrimSpace(added),
			Keyword: strings.ToLower(match[1]),
		})
	}
	return findings
}

// MaskAPIKey keeps the first and last four characters of key.
// Keys of eight characters or fewer are fully hidden.
func MaskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

var sanitizePatterns = []struct {
	regex       *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`sk-[a-zA-Z0-9_\-]{16,}`), "sk-****"},
	{regexp.MustCompile(`Bearer\s+[a-zA-Z0-9._\-]+`), "Bearer ****"},
	{regexp.MustCompile(`(?i)(api[_-]?key|apikey|api_secret|secret[_-]?key)\s*[:=]\s*["']?[a-zA-Z0-9._\-]+["']?`), "$1=****"},
	{regexp.MustCompile(`(?i)(password|passwd|pwd)\s*[:=]\s*["']?[^\s"']+["']?`), "$1=****"},
}

// SanitizeForLogging masks API keys, bearer tokens and password assignments in s.
func SanitizeForLogging(s string) string {
	for _, p := range sanitizePatterns {
		s = p.regex.ReplaceAllString(s, p.replacement)
	}
	return s
}

// MaskFinding returns the finding line with its secret value hidden, for display.
func MaskFinding(f Finding) string {
	return credentialPattern.ReplaceAllString(f.Line, "$1=****")
}
