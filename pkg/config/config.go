package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"imgharvest/pkg/ratelimit"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the image harvester
type Config struct {
	// Search endpoint and filters
	Search SearchConfig `yaml:"search" json:"search"`

	// Download settings
	Download DownloadConfig `yaml:"download" json:"download"`

	// Post-download normalization
	Processing ProcessingConfig `yaml:"processing" json:"processing"`

	// Background segmentation service
	Segmentation SegmentationConfig `yaml:"segmentation" json:"segmentation"`

	// Rate limiting configuration
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// SearchConfig holds search-provider settings
type SearchConfig struct {
	Endpoint    string            `yaml:"endpoint" json:"endpoint"`
	AdultFilter string            `yaml:"adult_filter" json:"adult_filter"`
	ImageFilter string            `yaml:"image_filter" json:"image_filter"`
	UserAgent   string            `yaml:"user_agent" json:"user_agent"`
	Headers     map[string]string `yaml:"headers" json:"headers"`
}

// DownloadConfig holds download-specific configuration
type DownloadConfig struct {
	OutputDirectory string        `yaml:"output_directory" json:"output_directory"`
	Format          string        `yaml:"format" json:"format"`
	RequestTimeout  time.Duration `yaml:"request_timeout" json:"request_timeout"`
	IsolateFailures bool          `yaml:"isolate_failures" json:"isolate_failures"`
}

// ProcessingConfig holds normalization settings
type ProcessingConfig struct {
	Resize           bool    `yaml:"resize" json:"resize"`
	Width            int     `yaml:"width" json:"width"`
	Height           int     `yaml:"height" json:"height"`
	RemoveBackground bool    `yaml:"remove_background" json:"remove_background"`
	BlurSigma        float64 `yaml:"blur_sigma" json:"blur_sigma"`
	JPEGQuality      int     `yaml:"jpeg_quality" json:"jpeg_quality"`
	WEBPQuality      int     `yaml:"webp_quality" json:"webp_quality"`
}

// SegmentationConfig points at a rembg HTTP server
type SegmentationConfig struct {
	Endpoint string        `yaml:"endpoint" json:"endpoint"`
	Model    string        `yaml:"model" json:"model"`
	Timeout  time.Duration `yaml:"timeout" json:"timeout"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerMinute int    `yaml:"requests_per_minute" json:"requests_per_minute"`
	Strategy          string `yaml:"strategy" json:"strategy"` // token_bucket or sliding_window
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Search: SearchConfig{
			Endpoint:    "https://www.bing.com/images/async",
			AdultFilter: "off",
			ImageFilter: "",
			UserAgent:   "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.11 (KHTML, like Gecko) Chrome/23.0.1271.64 Safari/537.11",
			Headers: map[string]string{
				"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
				"Accept-Charset":  "ISO-8859-1,utf-8;q=0.7,*;q=0.3",
				"Accept-Language": "en-US,en;q=0.8",
				"Connection":      "keep-alive",
			},
		},
		Download: DownloadConfig{
			OutputDirectory: "./images",
			Format:          "png",
			RequestTimeout:  60 * time.Second,
			IsolateFailures: false,
		},
		Processing: ProcessingConfig{
			Resize:           true,
			Width:            1080,
			Height:           1920,
			RemoveBackground: false,
			BlurSigma:        15,
			JPEGQuality:      75,
			WEBPQuality:      80,
		},
		Segmentation: SegmentationConfig{
			Endpoint: "http://localhost:7000",
			Model:    "",
			Timeout:  2 * time.Minute,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 120,
			Strategy:          string(ratelimit.StrategyTokenBucket),
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if endpoint := os.Getenv("IMGHARVEST_SEARCH_ENDPOINT"); endpoint != "" {
		c.Search.Endpoint = endpoint
	}
	if adult := os.Getenv("IMGHARVEST_ADULT_FILTER"); adult != "" {
		c.Search.AdultFilter = adult
	}
	if filter := os.Getenv("IMGHARVEST_IMAGE_FILTER"); filter != "" {
		c.Search.ImageFilter = filter
	}
	if userAgent := os.Getenv("IMGHARVEST_USER_AGENT"); userAgent != "" {
		c.Search.UserAgent = userAgent
	}

	if outputDir := os.Getenv("IMGHARVEST_OUTPUT_DIR"); outputDir != "" {
		c.Download.OutputDirectory = outputDir
	}
	if format := os.Getenv("IMGHARVEST_FORMAT"); format != "" {
		c.Download.Format = format
	}
	if timeout := os.Getenv("IMGHARVEST_REQUEST_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("invalid IMGHARVEST_REQUEST_TIMEOUT: %w", err)
		}
		c.Download.RequestTimeout = d
	}
	if isolate := os.Getenv("IMGHARVEST_ISOLATE_FAILURES"); isolate != "" {
		c.Download.IsolateFailures = strings.ToLower(isolate) == "true"
	}

	if removeBG := os.Getenv("IMGHARVEST_REMOVE_BACKGROUND"); removeBG != "" {
		c.Processing.RemoveBackground = strings.ToLower(removeBG) == "true"
	}
	if resolution := os.Getenv("IMGHARVEST_RESOLUTION"); resolution != "" {
		w, h, err := ParseResolution(resolution)
		if err != nil {
			return fmt.Errorf("invalid IMGHARVEST_RESOLUTION: %w", err)
		}
		c.Processing.Width, c.Processing.Height = w, h
	}

	if rembg := os.Getenv("IMGHARVEST_REMBG_URL"); rembg != "" {
		c.Segmentation.Endpoint = rembg
	}

	if rpm := os.Getenv("IMGHARVEST_REQUESTS_PER_MINUTE"); rpm != "" {
		val, err := strconv.Atoi(strings.TrimSpace(rpm))
		if err != nil || val < 0 {
			return fmt.Errorf("invalid IMGHARVEST_REQUESTS_PER_MINUTE: %q", rpm)
		}
		c.RateLimit.RequestsPerMinute = val
	}
	if strategy := os.Getenv("IMGHARVEST_RATE_LIMIT_STRATEGY"); strategy != "" {
		c.RateLimit.Strategy = strategy
	}

	if logLevel := os.Getenv("IMGHARVEST_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = FindConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// FindConfigFile returns the first existing config file in the standard
// locations, or "" when there is none
func FindConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		".imgharvest.yaml",
		".imgharvest.yml",
		filepath.Join(home, ".config", "imgharvest", "config.yaml"),
		filepath.Join(home, ".config", "imgharvest", "config.yml"),
		filepath.Join(home, ".imgharvest.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Search.Endpoint == "" {
		errs = append(errs, errors.New("search endpoint is required"))
	}
	validAdult := map[string]bool{"on": true, "off": true, "moderate": true, "strict": true}
	if !validAdult[strings.ToLower(c.Search.AdultFilter)] {
		errs = append(errs, fmt.Errorf("invalid adult filter %q", c.Search.AdultFilter))
	}

	if c.Download.OutputDirectory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}
	if c.Download.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}

	if c.Processing.Resize && (c.Processing.Width <= 0 || c.Processing.Height <= 0) {
		errs = append(errs, errors.New("resolution width and height must be positive"))
	}
	if c.Processing.BlurSigma < 0 {
		errs = append(errs, errors.New("blur sigma cannot be negative"))
	}
	if c.Processing.JPEGQuality < 1 || c.Processing.JPEGQuality > 100 {
		errs = append(errs, errors.New("jpeg quality must be between 1 and 100"))
	}
	if c.Processing.WEBPQuality < 0 || c.Processing.WEBPQuality > 100 {
		errs = append(errs, errors.New("webp quality must be between 0 and 100"))
	}

	if c.Processing.RemoveBackground && c.Segmentation.Endpoint == "" {
		errs = append(errs, errors.New("segmentation endpoint is required for background removal"))
	}

	if c.RateLimit.RequestsPerMinute < 0 {
		errs = append(errs, errors.New("requests per minute cannot be negative"))
	}
	if _, err := ratelimit.ParseStrategy(c.RateLimit.Strategy); err != nil {
		errs = append(errs, err)
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "disabled": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if outputDir, ok := flags["output"].(string); ok && outputDir != "" {
		c.Download.OutputDirectory = outputDir
	}
	if format, ok := flags["format"].(string); ok && format != "" {
		c.Download.Format = format
	}
	if timeout, ok := flags["timeout"].(int); ok && timeout > 0 {
		c.Download.RequestTimeout = time.Duration(timeout) * time.Second
	}
	if isolate, ok := flags["isolate-failures"].(bool); ok {
		c.Download.IsolateFailures = isolate
	}
	if filter, ok := flags["filter"].(string); ok {
		c.Search.ImageFilter = filter
	}
	if adult, ok := flags["adult"].(string); ok && adult != "" {
		c.Search.AdultFilter = adult
	}
	if resolution, ok := flags["resolution"].(string); ok && resolution != "" {
		if w, h, err := ParseResolution(resolution); err == nil {
			c.Processing.Width, c.Processing.Height = w, h
		}
	}
	if noResize, ok := flags["no-resize"].(bool); ok && noResize {
		c.Processing.Resize = false
	}
	if removeBG, ok := flags["remove-bg"].(bool); ok {
		c.Processing.RemoveBackground = removeBG
	}
	if rembg, ok := flags["rembg-url"].(string); ok && rembg != "" {
		c.Segmentation.Endpoint = rembg
	}
	if rpm, ok := flags["requests-per-minute"].(int); ok && rpm >= 0 {
		c.RateLimit.RequestsPerMinute = rpm
	}
	if strategy, ok := flags["rate-limit-strategy"].(string); ok && strategy != "" {
		c.RateLimit.Strategy = strategy
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// ParseResolution parses a "WIDTHxHEIGHT" string
func ParseResolution(s string) (int, int, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(s)), "x")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("resolution %q must look like 1080x1920", s)
	}
	w, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid width in %q: %w", s, err)
	}
	h, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid height in %q: %w", s, err)
	}
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("resolution %q must be positive", s)
	}
	return w, h, nil
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".imgharvest.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
