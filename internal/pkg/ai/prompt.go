package ai

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// DefaultSystemPrompt asks for a conventional commit with a short subject and wrapped body.
const DefaultSystemPrompt = `You write git commit messages following the Conventional Commits specification.
You will receive the output of 'git diff --staged'. Explain WHAT changed and WHY.

Format rules:
- Start with one of these types: fix, feat, build, chore, ci, docs, style, refactor, perf, test
- Format: <type>[optional scope]: <description>
- The subject line must be 50 characters or less
- Use the imperative, present tense ("add feature" not "added feature")
- Leave a blank line after the subject
- Write the body as short bullet points
- Body lines must not exceed 72 characters

Output only the raw commit message:
- no introduction such as "Here is the commit message:"
- no markdown or code blocks
- no explanations or comments
- no quotation marks around the message

Example:
feat: add user authentication

- add JWT login and registration endpoints
- hash passwords before storing them`

// DefaultOnelinePrompt asks for the subject line only.
const DefaultOnelinePrompt = `You write git commit messages following the Conventional Commits specification.
You will receive the output of 'git diff --staged'.

Reply with a single subject line only:
- Start with one of these types: fix, feat, build, chore, ci, docs, style, refactor, perf, test
- Format: <type>[optional scope]: <description>
- 50 characters or less, imperative mood, no trailing period
- no body, no markdown, no quotation marks, no explanations`

// DefaultAnalyzePrompt asks for a split of the diff into logical commits.
const DefaultAnalyzePrompt = `You review staged git changes and decide how they should be split into logical commits.
Reply with a JSON array and nothing else. Each element has:
- "description": a conventional commit subject for that commit
- "files": the paths that belong to it

Example:
[{"description": "fix(auth): reject expired tokens", "files": ["auth/token.go"]},
 {"description": "docs: describe token lifetime", "files": ["README.md"]}]`

// userPromptPrefix precedes the diff in the user message.
const userPromptPrefix = "Generate a commit message for this git diff:\n\n"

// Prompts holds the instruction texts sent as system messages.
// Fields left empty in an override file keep their defaults.
type Prompts struct {
	System  string `toml:"system"`
	Oneline string `toml:"oneline"`
	Analyze string `toml:"analyze"`
}

// DefaultPrompts returns the built-in instructions.
func DefaultPrompts() Prompts {
	return Prompts{
		System:  DefaultSystemPrompt,
		Oneline: DefaultOnelinePrompt,
		Analyze: DefaultAnalyzePrompt,
	}
}

// LoadPrompts reads a TOML override file on top of the defaults.
// An empty path returns the defaults.
func LoadPrompts(path string) (Prompts, error) {
	prompts := DefaultPrompts()
	if path == "" {
		return prompts, nil
	}

	var override Prompts
	meta, err := toml.DecodeFile(path, &override)
	if err != nil {
		return prompts, fmt.Errorf("failed to read prompt file %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return prompts, fmt.Errorf("unknown keys in prompt file %s: %v", path, undecoded)
	}

	if s := strings.TrimSpace(override.System); s != "" {
		prompts.System = s
	}
	if s := strings.TrimSpace(override.Oneline); s != "" {
		prompts.Oneline = s
	}
	if s := strings.TrimSpace(override.Analyze); s != "" {
		prompts.Analyze = s
	}
	return prompts, nil
}

// SystemFor returns the instruction for the requested mode.
func (p Prompts) SystemFor(oneline bool) string {
	if oneline {
		return p.Oneline
	}
	return p.System
}

// BuildUserPrompt wraps diff into the user message.
func BuildUserPrompt(diff string) string {
	return userPromptPrefix + diff
}

// BuildAnalyzePrompt wraps diff into the user message for commit splitting.
func BuildAnalyzePrompt(diff string) string {
	return "Suggest logical commits for this git diff:\n\n" + diff
}
