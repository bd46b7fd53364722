package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	apperrors "github.com/gaicli/gai/internal/pkg/errors"
)

const (
	// DefaultConfigFileName is the dotfile created in the home directory.
	DefaultConfigFileName = ".gai"
	// DefaultConfigType is the viper codec used for the dotfile.
	DefaultConfigType = "env"
	// DefaultDotenvFile is read from the working directory as a lower priority overlay.
	DefaultDotenvFile = ".env"
)

// DefaultConfigPath returns ~/.gai.
func DefaultConfigPath() string {
	return filepath.Join(xdg.Home, DefaultConfigFileName)
}

// ViperManager implements the Manager interface using Viper.
type ViperManager struct {
	v          *viper.Viper
	fs         afero.Fs
	configPath string
	dotenvPath string
}

// Option customizes a ViperManager.
type Option func(*ViperManager)

// WithFs sets the filesystem used for the dotfile and the .env overlay.
func WithFs(fs afero.Fs) Option {
	return func(m *ViperManager) {
		m.fs = fs
	}
}

// WithDotenvPath sets the .env overlay path. Empty disables the overlay.
func WithDotenvPath(path string) Option {
	return func(m *ViperManager) {
		m.dotenvPath = path
	}
}

// NewManager creates a new configuration manager.
// If configPath is empty, it uses the default path (~/.gai).
func NewManager(configPath string, opts ...Option) (*ViperManager, error) {
	if configPath == "" {
		configPath = DefaultConfigPath()
	}

	m := &ViperManager{
		fs:         afero.NewOsFs(),
		configPath: configPath,
		dotenvPath: DefaultDotenvFile,
	}
	for _, opt := range opts {
		opt(m)
	}

	v := viper.New()
	v.SetFs(m.fs)
	v.SetConfigType(DefaultConfigType)
	v.SetConfigFile(configPath)

	setDefaults(v)
	if err := bindEnvVars(v); err != nil {
		return nil, fmt.Errorf("failed to bind environment: %w", err)
	}

	m.v = v
	return m, nil
}

// bindEnvVars binds each key to GAI_<KEY> and <KEY>, in that order.
func bindEnvVars(v *viper.Viper) error {
	for _, key := range Keys {
		upper := strings.ToUpper(key)
		names := []string{key, "GAI_" + upper}
		if key != KeyEditor {
			// EDITOR is the editor fallback, not a gai setting.
			names = append(names, upper)
		}
		if key == KeyAPIKey {
			names = append(names, "OPENAI_API_KEY")
		}
		if err := v.BindEnv(names...); err != nil {
			return err
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyProvider, ProviderOllama)
	v.SetDefault(KeyModel, "")
	v.SetDefault(KeyAPIKey, "")
	v.SetDefault(KeyChatURL, "")
	v.SetDefault(KeyTimeout, DefaultTimeoutSeconds)
	v.SetDefault(KeyOneline, false)
	v.SetDefault(KeyPromptFile, "")
	v.SetDefault(KeyEditor, "")
}

// GetConfigPath returns the path to the configuration file.
func (m *ViperManager) GetConfigPath() string {
	return m.configPath
}

// Load resolves the configuration.
// Priority: overrides > env > .env in the working directory > dotfile > defaults
func (m *ViperManager) Load() (*Config, error) {
	if err := m.read(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := m.v.Unmarshal(&cfg); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInvalidConfig, "failed to decode config")
	}
	cfg.Normalize()

	return &cfg, nil
}

func (m *ViperManager) read() error {
	if m.ConfigExists() {
		if err := m.v.ReadInConfig(); err != nil {
			return apperrors.Wrap(err, apperrors.ErrInvalidConfig,
				fmt.Sprintf("failed to read config file %s", m.configPath))
		}
	}

	if m.dotenvPath == "" || m.dotenvPath == m.configPath {
		return nil
	}
	data, err := afero.ReadFile(m.fs, m.dotenvPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return apperrors.NewFileSystemError(m.dotenvPath, err)
	}

	overlay := make(map[string]interface{})
	for key, value := range ParseDotenv(data) {
		overlay[key] = value
	}
	if len(overlay) == 0 {
		return nil
	}
	if err := m.v.MergeConfigMap(overlay); err != nil {
		return apperrors.Wrap(err, apperrors.ErrInvalidConfig, "failed to merge .env values")
	}
	return nil
}

// Init creates a new configuration file with default values.
// Sets file permissions to 0600 for security.
func (m *ViperManager) Init() error {
	if m.ConfigExists() {
		return fmt.Errorf("config file already exists at %s", m.configPath)
	}

	var sb strings.Builder
	sb.WriteString("# gai configuration\n")
	sb.WriteString(fmt.Sprintf("PROVIDER=%s\n", ProviderOllama))
	sb.WriteString(fmt.Sprintf("MODEL=%s\n", DefaultOllamaModel))
	sb.WriteString(fmt.Sprintf("CHAT_URL=%s\n", DefaultOllamaEndpoint))
	sb.WriteString("#API_KEY=\n")
	sb.WriteString(fmt.Sprintf("TIMEOUT=%d\n", DefaultTimeoutSeconds))

	return m.writeFile(sb.String())
}

// Set persists a key in the dotfile, leaving unrelated lines untouched.
func (m *ViperManager) Set(key string, value string) error {
	key = NormalizeKey(key)
	if !IsKnownKey(key) {
		return apperrors.NewInvalidConfigError(fmt.Sprintf("unknown config key: %s", key)).
			WithSuggestion("Supported keys: " + strings.ToUpper(strings.Join(Keys, ", ")))
	}

	value, err := convertValue(key, value)
	if err != nil {
		return fmt.Errorf("failed to convert value for key %s: %w", key, err)
	}

	var content string
	if m.ConfigExists() {
		data, err := afero.ReadFile(m.fs, m.configPath)
		if err != nil {
			return apperrors.NewFileSystemError(m.configPath, err)
		}
		content = string(data)
	}

	return m.writeFile(UpsertLine(content, key, value))
}

// convertValue validates typed keys and returns their canonical string form.
func convertValue(key, value string) (string, error) {
	value = strings.TrimSpace(value)
	switch key {
	case KeyProvider:
		value = strings.ToLower(value)
		if value != ProviderOllama && value != ProviderOpenAI {
			return "", apperrors.NewInvalidProviderError(value)
		}
		return value, nil
	case KeyTimeout:
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return "", fmt.Errorf("timeout must be a positive number of seconds, got %q", value)
		}
		return strconv.Itoa(n), nil
	case KeyOneline:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return "", err
		}
		return strconv.FormatBool(b), nil
	default:
		return value, nil
	}
}

func (m *ViperManager) writeFile(content string) error {
	dir := filepath.Dir(m.configPath)
	if err := m.fs.MkdirAll(dir, 0755); err != nil {
		return apperrors.NewFileSystemError(dir, err)
	}
	if err := afero.WriteFile(m.fs, m.configPath, []byte(content), 0600); err != nil {
		return apperrors.NewFileSystemError(m.configPath, err)
	}
	// WriteFile keeps the mode of an existing file.
	if err := m.fs.Chmod(m.configPath, 0600); err != nil {
		return apperrors.NewFileSystemError(m.configPath, err)
	}
	return nil
}

// Get retrieves a resolved configuration value by key.
func (m *ViperManager) Get(key string) (string, error) {
	cfg, err := m.Load()
	if err != nil {
		return "", err
	}
	return cfg.Value(key)
}

// List returns all resolved configuration values keyed by their dotfile names.
func (m *ViperManager) List() (map[string]string, error) {
	cfg, err := m.Load()
	if err != nil {
		return nil, err
	}

	out := make(map[string]string, len(Keys))
	for _, key := range Keys {
		value, _ := cfg.Value(key)
		out[strings.ToUpper(key)] = value
	}
	return out, nil
}

// SetOverride sets a temporary override for a configuration key.
// This is used for command-line flag overrides that shouldn't persist.
func (m *ViperManager) SetOverride(key string, value interface{}) {
	m.v.Set(NormalizeKey(key), value)
}

// ConfigExists checks if the configuration file exists.
func (m *ViperManager) ConfigExists() bool {
	ok, err := afero.Exists(m.fs, m.configPath)
	return err == nil && ok
}
