package analysis

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Config carries the tunable parameters of the statistical helpers. The
// values shipped in etc/analysis.yaml are sensible defaults for daily
// crypto series, not anything derived from data; callers may override any
// of them per request.
type Config struct {
	SMAWindows       []int `yaml:"sma_windows"`
	EMAWindows       []int `yaml:"ema_windows"`
	VolatilityWindow int   `yaml:"volatility_window"`
	SeasonalPeriod   int   `yaml:"seasonal_period"`
	MaxACFLag        int   `yaml:"max_acf_lag"`
	ForecastHorizon  int   `yaml:"forecast_horizon"`

	ARIMA       ARIMAOrder        `yaml:"arima"`
	HoltWinters HoltWintersParams `yaml:"holt_winters"`
}

// ARIMAOrder is the (p, d, q) model order. Only q == 0 is supported.
type ARIMAOrder struct {
	P int `yaml:"p"`
	D int `yaml:"d"`
	Q int `yaml:"q"`
}

// HoltWintersParams are the triple-smoothing coefficients.
type HoltWintersParams struct {
	Alpha float64 `yaml:"alpha"`
	Beta  float64 `yaml:"beta"`
	Gamma float64 `yaml:"gamma"`
}

// DefaultConfig returns the built-in parameter set.
func DefaultConfig() *Config {
	return &Config{
		SMAWindows:       []int{7, 30},
		EMAWindows:       []int{7, 30},
		VolatilityWindow: 30,
		SeasonalPeriod:   7,
		MaxACFLag:        40,
		ForecastHorizon:  14,
		ARIMA:            ARIMAOrder{P: 5, D: 1, Q: 0},
		HoltWinters:      HoltWintersParams{Alpha: 0.5, Beta: 0.1, Gamma: 0.1},
	}
}

// LoadConfig reads analysis configuration from disk, filling every unset
// field from the defaults.
func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open analysis config: %w", err)
	}
	defer file.Close()
	return LoadConfigFromReader(file)
}

// LoadConfigFromReader constructs a Config from an io.Reader.
func LoadConfigFromReader(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read analysis config: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal analysis config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if len(c.SMAWindows) == 0 {
		c.SMAWindows = def.SMAWindows
	}
	if len(c.EMAWindows) == 0 {
		c.EMAWindows = def.EMAWindows
	}
	if c.VolatilityWindow <= 0 {
		c.VolatilityWindow = def.VolatilityWindow
	}
	if c.SeasonalPeriod <= 0 {
		c.SeasonalPeriod = def.SeasonalPeriod
	}
	if c.MaxACFLag <= 0 {
		c.MaxACFLag = def.MaxACFLag
	}
	if c.ForecastHorizon <= 0 {
		c.ForecastHorizon = def.ForecastHorizon
	}
	if c.ARIMA.P <= 0 {
		c.ARIMA = def.ARIMA
	}
	if c.HoltWinters.Alpha <= 0 {
		c.HoltWinters = def.HoltWinters
	}
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	for _, w := range c.SMAWindows {
		if w <= 0 {
			return fmt.Errorf("analysis config: sma window must be positive, got %d", w)
		}
	}
	for _, w := range c.EMAWindows {
		if w <= 0 {
			return fmt.Errorf("analysis config: ema window must be positive, got %d", w)
		}
	}
	if c.ARIMA.Q != 0 {
		return fmt.Errorf("analysis config: moving-average terms are not supported, q must be 0")
	}
	if c.ARIMA.D < 0 || c.ARIMA.D > 2 {
		return fmt.Errorf("analysis config: arima d must be 0..2, got %d", c.ARIMA.D)
	}
	if c.HoltWinters.Alpha <= 0 || c.HoltWinters.Alpha >= 1 {
		return fmt.Errorf("analysis config: holt-winters alpha must be in (0,1)")
	}
	return nil
}
