// Load .env, then the JSON (or YAML) config file
// Apply env overrides and defaults
// Validate presence of required fields

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up in the working directory.
const DefaultPath = "configs.json"

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	//Search criteria
	Keywords  []string `yaml:"keywords" validate:"required,min=1"`
	Locations []string `yaml:"locations" validate:"required,min=1"`

	//Candidate identity
	CandidateName     string `yaml:"candidate_name" validate:"required"`
	CandidateLocation string `yaml:"candidate_location" validate:"required"`
	CandidateEmail    string `yaml:"candidate_email" validate:"required"`
	CandidatePhone    string `yaml:"candidate_phone_number" validate:"required"`
	Letter            string `yaml:"letter" validate:"required"`

	//Paths, relative to the working directory
	CVPath      string `yaml:"cv_rel_path" validate:"required"`
	TargetsPath string `yaml:"targets_rel_path" validate:"required"`
	TabooPath   string `yaml:"taboo_rel_path" validate:"required"`
	AppliedPath string `yaml:"applied_rel_path" validate:"required"`

	TelegramToken  string `yaml:"telegram_token"`
	TelegramChatID int64  `yaml:"telegram_chat_id"`

	Browser Browser `yaml:"browser"`
	Storage Storage `yaml:"storage"`
	Site    Site    `yaml:"site"`
	Resume  Resume  `yaml:"resume"`
}

type Browser struct {
	// Driver is playwright, chromedp or http.
	Driver        string `yaml:"driver" validate:"omitempty,oneof=playwright chromedp http"`
	Headless      *bool  `yaml:"headless"`
	CookiesPath   string `yaml:"cookies_path"`
	ScreenshotDir string `yaml:"screenshot_dir"`
	UserAgent     string `yaml:"user_agent"`
}

type Storage struct {
	// Driver is file or postgres.
	Driver      string `yaml:"driver" validate:"omitempty,oneof=file postgres"`
	DatabaseURL string `yaml:"database_url"`
}

type Site struct {
	// SearchURL is a template with {keyword} and {location} placeholders.
	SearchURL string            `yaml:"search_url"`
	Selectors map[string]string `yaml:"selectors"`
}

type Resume struct {
	JSONPath     string `yaml:"json_path"`
	TemplatePath string `yaml:"template_path"`
}

// Load reads the config at path (DefaultPath when empty), applies
// environment overrides and defaults, resolves paths and validates it.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	if path == "" {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse builds a Config from raw JSON or YAML bytes.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.resolvePaths(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		c.TelegramToken = token
	}
	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: TELEGRAM_CHAT_ID: %v", ErrInvalidConfig, err)
		}
		c.TelegramChatID = id
	}
	if url := os.Getenv("DATABASE_URL"); url != "" {
		c.Storage.DatabaseURL = url
	}
	if email := os.Getenv("JOBSBOT_CANDIDATE_EMAIL"); email != "" {
		c.CandidateEmail = email
	}
	if phone := os.Getenv("JOBSBOT_CANDIDATE_PHONE"); phone != "" {
		c.CandidatePhone = phone
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.Browser.Driver == "" {
		c.Browser.Driver = "playwright"
	}
	if c.Browser.Headless == nil {
		headless := false
		c.Browser.Headless = &headless
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "file"
	}
}

// Validate checks that every required field is present.
func (c *Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		if c.Storage.Driver == "postgres" && c.Storage.DatabaseURL == "" {
			return fmt.Errorf("%w: storage.database_url or DATABASE_URL is required for postgres storage", ErrInvalidConfig)
		}
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
}

func (c *Config) resolvePaths() error {
	for _, p := range []*string{&c.CVPath, &c.TargetsPath, &c.TabooPath, &c.AppliedPath,
		&c.Browser.CookiesPath, &c.Browser.ScreenshotDir, &c.Resume.JSONPath, &c.Resume.TemplatePath} {
		if *p == "" || filepath.IsAbs(*p) {
			continue
		}
		abs, err := filepath.Abs(*p)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", *p, err)
		}
		*p = abs
	}
	return nil
}

// IsHeadless reports whether the browser should run without a window.
func (c *Config) IsHeadless() bool {
	return c.Browser.Headless != nil && *c.Browser.Headless
}
