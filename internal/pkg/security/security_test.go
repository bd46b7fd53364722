package security

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanLine(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"API_KEY=sk-abcdef1234567890", true},
		{`password = "hunter2hunter2"`, true},
		{"TOKEN='abcdefgh'", true},
		{"private_key=MIIEvQIBADANBgkq", true},
		{"def test_function():", false},
		{"password = short", false},
		{"token := os.Getenv(\"TOKEN\")", false},
		{"// set the api_key before calling", false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, ScanLine(tt.line))
		})
	}
}

func TestDetectCredentials(t *testing.T) {
	diff := strings.Join([]string{
		"diff --git a/.env b/.env",
		"--- a/.env",
		"+++ b/.env",
		"@@ -1,2 +1,3 @@",
		" DEBUG=true",
		"-API_KEY=sk-oldoldoldoldold",
		"+API_KEY=sk-abcdef1234567890",
		"diff --git a/app.py b/app.py",
		"--- /dev/null",
		"+++ b/app.py",
		"@@ -0,0 +1,2 @@",
		"+def test_function():",
		"+    secret = 'abcdefghijkl'",
	}, "\n")

	findings := DetectCredentials(diff)
	require.Len(t, findings, 2)

	assert.Equal(t, ".env", findings[0].File)
	assert.Equal(t, "API_KEY=sk-abcdef1234567890", findings[0].Line)
	assert.Equal(t, "api_key", findings[0].Keyword)

	assert.Equal(t, "app.py", findings[1].File)
	assert.Equal(t, "secret", findings[1].Keyword)
}

func TestDetectCredentials_IgnoresHeaders(t *testing.T) {
	diff := "+++ b/token=abcdefghijklmnop\n-password=abcdefghijkl\n context token=abcdefghijkl\n"
	assert.Empty(t, DetectCredentials(diff))
}

func TestDetectCredentials_OnlyAddedLines(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("non-added lines never produce findings", prop.ForAll(
		func(prefix string, value string) bool {
			line := prefix + "API_KEY=" + value
			return len(DetectCredentials(line)) == 0
		},
		gen.OneConstOf("-", " ", "@@ ", "+++ "),
		gen.AlphaString(),
	))

	properties.Property("added assignments of long values are found", prop.ForAll(
		func(value string) bool {
			if len(value) < 8 {
				value += "abcdefgh"
			}
			return len(DetectCredentials("+api_key="+value)) == 1
		},
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		expected string
	}{
		{"normal key", "sk-1234567890abcdef1234567890abcdef", "sk-1...cdef"},
		{"nine chars", "abcdefghi", "abcd...fghi"},
		{"exactly 8 chars", "abcdefgh", "****"},
		{"short key", "abc", "****"},
		{"empty key", "", "****"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MaskAPIKey(tt.key))
		})
	}
}

func TestSanitizeForLogging(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		hidden  string
		visible string
	}{
		{"openai key", "using key sk-1234567890abcdefghij", "1234567890abcdefghij", "sk-****"},
		{"bearer token", "Authorization: Bearer abc.def.ghi", "abc.def.ghi", "Bearer ****"},
		{"api key assignment", "api_key=supersecretvalue", "supersecretvalue", "api_key=****"},
		{"password", "password: hunter2", "hunter2", "password=****"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := SanitizeForLogging(tt.input)
			assert.NotContains(t, out, tt.hidden)
			assert.Contains(t, out, tt.visible)
		})
	}

	assert.Equal(t, "nothing to hide", SanitizeForLogging("nothing to hide"))
}

func TestMaskFinding(t *testing.T) {
	f := Finding{Line: "API_KEY=sk-abcdef1234567890", Keyword: "api_key"}
	assert.Equal(t, "API_KEY=****", MaskFinding(f))
}
