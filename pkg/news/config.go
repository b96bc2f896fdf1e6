package news

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"coinwatch-api/pkg/confkit"
)

// Config holds the NewsAPI settings. The API key is the single external
// credential the service carries and is expanded from the environment
// ("${NEWSAPI_KEY}").
type Config struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`

	// DefaultQuery seeds /api/news when the caller sends no topic.
	DefaultQuery string `yaml:"default_query"`
	Language     string `yaml:"language"`
	SortBy       string `yaml:"sort_by"`
	PageSize     int    `yaml:"page_size"`

	HTTPTimeoutRaw string        `yaml:"http_timeout"`
	HTTPTimeout    time.Duration `yaml:"-"`
}

// LoadConfig reads news configuration from disk.
func LoadConfig(path string) (*Config, error) {
	confkit.LoadDotenvOnce()
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open news config: %w", err)
	}
	defer file.Close()
	return LoadConfigFromReader(file)
}

// MustLoad reads news configuration from the default project location and
// panics on error.
func MustLoad() *Config {
	path := confkit.MustProjectPath("etc/news.yaml")
	cfg, err := LoadConfig(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadConfigFromReader constructs a Config from an io.Reader.
func LoadConfigFromReader(r io.Reader) (*Config, error) {
	confkit.LoadDotenvOnce()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read news config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal news config: %w", err)
	}
	cfg.expandEnv()
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) expandEnv() {
	c.APIKey = strings.TrimSpace(os.ExpandEnv(c.APIKey))
	c.BaseURL = strings.TrimSpace(os.ExpandEnv(c.BaseURL))
	c.HTTPTimeoutRaw = strings.TrimSpace(os.ExpandEnv(c.HTTPTimeoutRaw))
}

func (c *Config) applyDefaults() {
	if c.DefaultQuery == "" {
		c.DefaultQuery = "cryptocurrency"
	}
	if c.Language == "" {
		c.Language = "en"
	}
	if c.SortBy == "" {
		c.SortBy = "publishedAt"
	}
	if c.PageSize == 0 {
		c.PageSize = defaultPageSize
	}
}

// Validate ensures the configuration is structurally sound. A missing API
// key is allowed here so the rest of the service can run without news; the
// client reports ErrMissingAPIKey when the endpoint is actually used.
func (c *Config) Validate() error {
	if c.PageSize < 0 || c.PageSize > 100 {
		return fmt.Errorf("news config: page_size must be in 1..100, got %d", c.PageSize)
	}
	if c.HTTPTimeoutRaw != "" {
		d, err := time.ParseDuration(c.HTTPTimeoutRaw)
		if err != nil {
			return fmt.Errorf("news config: invalid http_timeout %q: %w", c.HTTPTimeoutRaw, err)
		}
		if d <= 0 {
			return fmt.Errorf("news config: http_timeout must be positive, got %s", d)
		}
		c.HTTPTimeout = d
	}
	return nil
}

// NewClientFromConfig builds a Client honouring the configured base URL
// and timeout.
func NewClientFromConfig(cfg *Config) *Client {
	opts := []Option{}
	if cfg.BaseURL != "" {
		opts = append(opts, WithBaseURL(cfg.BaseURL))
	}
	if cfg.HTTPTimeout > 0 {
		opts = append(opts, WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}))
	}
	return NewClient(cfg.APIKey, opts...)
}
