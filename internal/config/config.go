package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"StockAnalyser/internal/analyser"
	"StockAnalyser/internal/calculator"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// DefaultPath is used when CONFIG_PATH is unset.
const DefaultPath = "configs/config.yaml"

// Supported data providers.
const (
	ProviderStooq = "stooq"
	ProviderYahoo = "yahoo"
	ProviderMock  = "mock"
)

// Config holds all application configuration.
type Config struct {
	DataSource struct {
		Provider      string `yaml:"provider"`
		BaseURL       string `yaml:"base_url"`
		NameURL       string `yaml:"name_url"`
		NameElementID string `yaml:"name_element_id"`
	} `yaml:"data_source"`
	Analysis struct {
		Months     int                         `yaml:"months"`
		Rows       int                         `yaml:"rows"`
		Alpha      float64                     `yaml:"alpha"`
		Oscillator calculator.StochasticParams `yaml:"oscillator"`
	} `yaml:"analysis"`
	Cache struct {
		MaxAge time.Duration `yaml:"max_age"`
	} `yaml:"cache"`
	Watch struct {
		Tickers []string `yaml:"tickers"`
		Cron    string   `yaml:"cron"`
	} `yaml:"watch"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Proxy    string `yaml:"proxy"`
	LogLevel string `yaml:"log_level"`
}

// Path returns the config file location, honouring CONFIG_PATH.
func Path() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return DefaultPath
}

// LoadDotEnv loads a .env file into the environment when it exists.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading .env file: %w", err)
	}
	return nil
}

// Load reads config from a YAML file, then applies environment variable overrides
// and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("DATA_PROVIDER"); v != "" {
		c.DataSource.Provider = v
	}
	if v := os.Getenv("DATA_BASE_URL"); v != "" {
		c.DataSource.BaseURL = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
	if v := os.Getenv("WATCH_TICKERS"); v != "" {
		c.Watch.Tickers = strings.Split(v, ",")
	}
	if v := os.Getenv("WATCH_CRON"); v != "" {
		c.Watch.Cron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Database.SQLitePath = v
	}
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("CACHE_MAX_AGE"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("CACHE_MAX_AGE: %w", err)
		}
		c.Cache.MaxAge = d
	}
	if v := os.Getenv("ANALYSIS_ALPHA"); v != "" {
		a, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("ANALYSIS_ALPHA: %w", err)
		}
		c.Analysis.Alpha = a
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.DataSource.Provider == "" {
		c.DataSource.Provider = ProviderStooq
	}
	if c.Analysis.Months == 0 {
		c.Analysis.Months = analyser.DefaultMonths
	}
	if c.Analysis.Rows == 0 {
		c.Analysis.Rows = analyser.DefaultRows
	}
	if c.Analysis.Alpha == 0 {
		c.Analysis.Alpha = analyser.DefaultAlpha
	}
	if c.Analysis.Oscillator == (calculator.StochasticParams{}) {
		c.Analysis.Oscillator = calculator.DefaultStochastic
	}
	if c.Cache.MaxAge == 0 {
		c.Cache.MaxAge = time.Hour
	}
	if c.Watch.Cron == "" {
		c.Watch.Cron = "0 30 17 * * 1-5"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/stock_analyser.db"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	for i, t := range c.Watch.Tickers {
		c.Watch.Tickers[i] = strings.TrimSpace(t)
	}
}

// Validate asserts the config holds sane inputs. All problems are reported together.
func (c *Config) Validate() error {
	var errs error

	switch c.DataSource.Provider {
	case ProviderStooq, ProviderYahoo, ProviderMock:
	default:
		errs = errors.Join(errs, fmt.Errorf("data_source.provider %q is not one of stooq, yahoo, mock", c.DataSource.Provider))
	}
	if c.DataSource.NameURL != "" && !strings.Contains(c.DataSource.NameURL, "%s") {
		errs = errors.Join(errs, fmt.Errorf("data_source.name_url must contain a %%s ticker placeholder"))
	}

	req := analyser.Request{Months: c.Analysis.Months, Rows: c.Analysis.Rows, Alpha: c.Analysis.Alpha}
	if err := req.Validate(); err != nil {
		errs = errors.Join(errs, fmt.Errorf("analysis: %w", err))
	}
	if err := c.Analysis.Oscillator.Validate(); err != nil {
		errs = errors.Join(errs, fmt.Errorf("analysis.oscillator: %w", err))
	}
	if c.Cache.MaxAge < 0 {
		errs = errors.Join(errs, fmt.Errorf("cache.max_age cannot be negative"))
	}

	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(c.Watch.Cron); err != nil {
		errs = errors.Join(errs, fmt.Errorf("watch.cron: %w", err))
	}
	for _, t := range c.Watch.Tickers {
		if t == "" {
			errs = errors.Join(errs, fmt.Errorf("watch.tickers cannot contain an empty ticker"))
			break
		}
	}

	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		errs = errors.Join(errs, fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together"))
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		errs = errors.Join(errs, fmt.Errorf("log_level: %w", err))
	}

	return errs
}

// TelegramEnabled reports whether notifications can be sent.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// Request builds an analysis request for ticker from the configured controls.
func (c *Config) Request(ticker string) analyser.Request {
	return analyser.Request{
		Ticker: ticker,
		Months: c.Analysis.Months,
		Rows:   c.Analysis.Rows,
		Alpha:  c.Analysis.Alpha,
	}
}
