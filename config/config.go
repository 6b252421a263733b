// Package config loads the study configuration from YAML, environment and defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/sartorproj/pcestudy/fred"
	"github.com/sartorproj/pcestudy/quality"
	"github.com/sartorproj/pcestudy/timeseries"
)

// EnvPrefix prefixes every environment override, e.g. PCESTUDY_ANCHOR_DATE.
const EnvPrefix = "PCESTUDY"

// Config is the validated configuration of one run.
type Config struct {
	LogLevel    string            `mapstructure:"log_level" validate:"required,oneof=trace debug info warn warning error"`
	StartDate   string            `mapstructure:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate     string            `mapstructure:"end_date" validate:"omitempty,datetime=2006-01-02"`
	AnchorDate  string            `mapstructure:"anchor_date" validate:"required,datetime=2006-01-02"`
	Directories DirectoriesConfig `mapstructure:"directories"`
	Series      SeriesSet         `mapstructure:"series"`
	FRED        FREDConfig        `mapstructure:"fred"`
	Quality     QualityConfig     `mapstructure:"quality"`
}

// DirectoriesConfig names where raw, processed and result files go.
type DirectoriesConfig struct {
	Raw       string `mapstructure:"raw" validate:"required"`
	Processed string `mapstructure:"processed" validate:"required"`
	Results   string `mapstructure:"results" validate:"required"`
}

// SeriesSet holds the two series the study downloads.
type SeriesSet struct {
	CPI SeriesConfig `mapstructure:"cpi"`
	PCE SeriesConfig `mapstructure:"pce"`
}

// SeriesConfig identifies one FRED series and how to fetch it.
type SeriesConfig struct {
	SeriesID    string `mapstructure:"series_id" validate:"required"`
	Source      string `mapstructure:"source" validate:"required,oneof=api graph"`
	Description string `mapstructure:"description"`
}

// FREDConfig configures the FRED client.
type FREDConfig struct {
	APIKey     string        `mapstructure:"api_key" json:"-" yaml:"-"`
	APIKeyFile string        `mapstructure:"api_key_file"`
	BaseURL    string        `mapstructure:"base_url" validate:"required,url"`
	GraphURL   string        `mapstructure:"graph_url" validate:"required,url"`
	Timeout    time.Duration `mapstructure:"timeout" validate:"gt=0"`
	MaxRetries int           `mapstructure:"max_retries" validate:"min=1,max=10"`
}

// QualityConfig mirrors quality.Thresholds.
type QualityConfig struct {
	CPIMin     float64 `mapstructure:"cpi_min"`
	CPIMax     float64 `mapstructure:"cpi_max" validate:"gtfield=CPIMin"`
	PCEMin     float64 `mapstructure:"pce_min"`
	PCEMax     float64 `mapstructure:"pce_max" validate:"gtfield=PCEMin"`
	MaxGapDays int     `mapstructure:"max_gap_days" validate:"min=28"`
	FailOnGap  bool    `mapstructure:"fail_on_gap"`
}

// Load reads configuration from path, or from ./config.yaml when path is empty.
// A missing default file is not an error; defaults and environment apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.BindEnv("fred.api_key", EnvPrefix+"_FRED_API_KEY", "FRED_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind FRED_API_KEY environment variable: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("start_date", "2015-01-01")
	v.SetDefault("end_date", "")
	v.SetDefault("anchor_date", "2015-01-01")

	v.SetDefault("directories.raw", "data/raw")
	v.SetDefault("directories.processed", "data/processed")
	v.SetDefault("directories.results", "results")

	v.SetDefault("series.cpi.series_id", "CPIAUCSL")
	v.SetDefault("series.cpi.source", fred.SourceAPI)
	v.SetDefault("series.cpi.description", "Consumer Price Index for All Urban Consumers: All Items in U.S. City Average")
	v.SetDefault("series.pce.series_id", "PCE")
	v.SetDefault("series.pce.source", fred.SourceGraph)
	v.SetDefault("series.pce.description", "Personal Consumption Expenditures, billions of dollars, SAAR")

	v.SetDefault("fred.api_key", "")
	v.SetDefault("fred.api_key_file", "")
	v.SetDefault("fred.base_url", "https://api.stlouisfed.org/fred/series/observations")
	v.SetDefault("fred.graph_url", "https://fred.stlouisfed.org/graph/fredgraph.csv")
	v.SetDefault("fred.timeout", "60s")
	v.SetDefault("fred.max_retries", 5)

	th := quality.DefaultThresholds()
	v.SetDefault("quality.cpi_min", th.CPIMin)
	v.SetDefault("quality.cpi_max", th.CPIMax)
	v.SetDefault("quality.pce_min", th.PCEMin)
	v.SetDefault("quality.pce_max", th.PCEMax)
	v.SetDefault("quality.max_gap_days", th.MaxGapDays)
	v.SetDefault("quality.fail_on_gap", th.FailOnGap)
}

// Validate checks struct tags and the relations between dates.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	anchor, err := c.Anchor()
	if err != nil {
		return err
	}
	if anchor.Day() != 1 {
		return fmt.Errorf("invalid config: anchor_date %s must be the first day of a month", c.AnchorDate)
	}

	start, end, err := c.Window()
	if err != nil {
		return err
	}
	if !end.IsZero() && end.Before(start) {
		return fmt.Errorf("invalid config: end_date %s precedes start_date %s", c.EndDate, c.StartDate)
	}
	if anchor.Before(start) || (!end.IsZero() && anchor.After(end)) {
		return fmt.Errorf("invalid config: anchor_date %s outside the observation window", c.AnchorDate)
	}
	return nil
}

// Anchor returns the index base date.
func (c *Config) Anchor() (time.Time, error) {
	return parseDate("anchor_date", c.AnchorDate)
}

// Window returns the observation window. A zero end means open-ended.
func (c *Config) Window() (start, end time.Time, err error) {
	if start, err = parseDate("start_date", c.StartDate); err != nil {
		return
	}
	if c.EndDate != "" {
		end, err = parseDate("end_date", c.EndDate)
	}
	return
}

// Thresholds converts the quality section for the checker.
func (c *Config) Thresholds() quality.Thresholds {
	return quality.Thresholds{
		CPIMin:     c.Quality.CPIMin,
		CPIMax:     c.Quality.CPIMax,
		PCEMin:     c.Quality.PCEMin,
		PCEMax:     c.Quality.PCEMax,
		MaxGapDays: c.Quality.MaxGapDays,
		FailOnGap:  c.Quality.FailOnGap,
	}
}

var keyNoise = regexp.MustCompile(`[\s"']+`)

// APIKey returns the FRED key from config or environment, falling back to
// the key file. An empty key with no file is not an error.
func (c *Config) APIKey() (string, error) {
	if c.FRED.APIKey != "" {
		return keyNoise.ReplaceAllString(c.FRED.APIKey, ""), nil
	}
	if c.FRED.APIKeyFile == "" {
		return "", nil
	}
	data, err := os.ReadFile(c.FRED.APIKeyFile)
	if err != nil {
		return "", fmt.Errorf("read api key file: %w", err)
	}
	key := strings.TrimPrefix(string(data), "\ufeff")
	return keyNoise.ReplaceAllString(key, ""), nil
}

func parseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(timeseries.DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid config: %s: %w", field, err)
	}
	return t, nil
}
