package ui

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/gaicli/gai/internal/pkg/config"
)

// SetupAnswers holds what the setup wizard collected.
type SetupAnswers struct {
	Provider string
	Model    string
	Endpoint string
	APIKey   string
}

// RunSetup asks for provider settings and saves them to the dotfile.
func RunSetup(mgr config.Manager, out io.Writer) error {
	answers := SetupAnswers{Provider: config.ProviderOllama}

	err := huh.NewSelect[string]().
		Title("Select AI provider").
		Options(
			huh.NewOption("Ollama (local)", config.ProviderOllama),
			huh.NewOption("OpenAI", config.ProviderOpenAI),
		).
		Value(&answers.Provider).
		Run()
	if err != nil {
		return err
	}

	answers.Model = config.DefaultModel(answers.Provider)
	answers.Endpoint = config.DefaultEndpoint(answers.Provider)

	fields := []huh.Field{
		huh.NewInput().
			Title("Model").
			Value(&answers.Model).
			Validate(ValidateModel),
		huh.NewInput().
			Title("Endpoint").
			Description("CHAT_URL").
			Value(&answers.Endpoint).
			Validate(ValidateEndpoint),
	}
	if answers.Provider == config.ProviderOpenAI {
		fields = append(fields,
			huh.NewInput().
				Title("API key").
				Value(&answers.APIKey).
				Password(true).
				Validate(ValidateAPIKey),
		)
	}

	if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
		return err
	}

	if err := SaveSetup(mgr, answers); err != nil {
		return err
	}

	fmt.Fprintf(out, "\nConfiguration saved to %s\n", mgr.GetConfigPath())
	return nil
}

// SaveSetup writes the answers through the config manager.
func SaveSetup(mgr config.Manager, answers SetupAnswers) error {
	if !mgr.ConfigExists() {
		if err := mgr.Init(); err != nil {
			return err
		}
	}

	values := [][2]string{
		{config.KeyProvider, answers.Provider},
		{config.KeyModel, answers.Model},
		{config.KeyChatURL, answers.Endpoint},
	}
	if answers.APIKey != "" {
		values = append(values, [2]string{config.KeyAPIKey, answers.APIKey})
	}

	for _, kv := range values {
		if err := mgr.Set(kv[0], kv[1]); err != nil {
			return fmt.Errorf("failed to set %s: %w", strings.ToUpper(kv[0]), err)
		}
	}
	return nil
}

// ValidateModel rejects blank model names.
func ValidateModel(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("model name cannot be empty")
	}
	return nil
}

// ValidateEndpoint requires an http or https URL.
func ValidateEndpoint(s string) error {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("endpoint must be an http:// or https:// URL")
	}
	return nil
}

// ValidateAPIKey rejects keys that are obviously incomplete.
func ValidateAPIKey(s string) error {
	if len(strings.TrimSpace(s)) < 8 {
		return fmt.Errorf("api key too short")
	}
	return nil
}
