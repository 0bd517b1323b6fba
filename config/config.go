package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// Server settings
	ServerPort      string        `yaml:"server_port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// Application paths
	LogDir  string `yaml:"log_dir"`
	TempDir string `yaml:"temp_dir"`
	DBPath  string `yaml:"db_path"`

	Log       LogConfig       `yaml:"log"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Upload    UploadConfig    `yaml:"upload"`
	Gemini    GeminiConfig    `yaml:"gemini"`
	Whisper   WhisperConfig   `yaml:"whisper"`
	Timeouts  TimeoutConfig   `yaml:"timeouts"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type RateLimitConfig struct {
	Requests int           `yaml:"requests"`
	Interval time.Duration `yaml:"interval"`
}

type UploadConfig struct {
	MaxSize int64 `yaml:"max_size"`
}

type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

type WhisperConfig struct {
	Binary string `yaml:"binary"`
	Model  string `yaml:"model"`
}

// TimeoutConfig bounds each external call made while serving one request.
type TimeoutConfig struct {
	Transcript time.Duration `yaml:"transcript"`
	Transcribe time.Duration `yaml:"transcribe"`
	Summarize  time.Duration `yaml:"summarize"`
}

func defaults() *Config {
	return &Config{
		ServerPort:      "8080",
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    20 * time.Minute,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 30 * time.Second,
		LogDir:          "./data/logs",
		TempDir:         filepath.Join(os.TempDir(), "yt-summary"),
		DBPath:          "./data/requests.db",
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		RateLimit: RateLimitConfig{
			Requests: 5,
			Interval: time.Second,
		},
		Upload: UploadConfig{
			MaxSize: 500 << 20,
		},
		Gemini: GeminiConfig{
			Model: "gemini-2.5-flash",
		},
		Whisper: WhisperConfig{
			Binary: "whisper",
			Model:  "base",
		},
		Timeouts: TimeoutConfig{
			Transcript: 30 * time.Second,
			Transcribe: 15 * time.Minute,
			Summarize:  2 * time.Minute,
		},
	}
}

// Load builds the configuration from defaults, then the YAML file named by
// CONFIG_FILE (if any), then environment variables.
func Load() (*Config, error) {
	cfg := defaults()

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "read config file %s", path)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return errors.Wrapf(err, "parse config file %s", path)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.ServerPort = getEnv("SERVER_PORT", c.ServerPort)
	c.ReadTimeout = getEnvAsDuration("READ_TIMEOUT", c.ReadTimeout)
	c.WriteTimeout = getEnvAsDuration("WRITE_TIMEOUT", c.WriteTimeout)
	c.IdleTimeout = getEnvAsDuration("IDLE_TIMEOUT", c.IdleTimeout)
	c.ShutdownTimeout = getEnvAsDuration("SHUTDOWN_TIMEOUT", c.ShutdownTimeout)

	c.LogDir = getEnv("LOG_DIR", c.LogDir)
	c.TempDir = getEnv("TEMP_DIR", c.TempDir)
	c.DBPath = getEnv("DB_PATH", c.DBPath)

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)

	c.RateLimit.Requests = getEnvAsInt("RATE_LIMIT", c.RateLimit.Requests)
	c.RateLimit.Interval = getEnvAsDuration("RATE_LIMIT_INTERVAL", c.RateLimit.Interval)

	c.Upload.MaxSize = getEnvAsInt64("MAX_UPLOAD_SIZE", c.Upload.MaxSize)

	c.Gemini.APIKey = getEnv("GOOGLE_API_KEY", c.Gemini.APIKey)
	c.Gemini.Model = getEnv("GEMINI_MODEL", c.Gemini.Model)

	c.Whisper.Binary = getEnv("WHISPER_BINARY", c.Whisper.Binary)
	c.Whisper.Model = getEnv("WHISPER_MODEL", c.Whisper.Model)

	c.Timeouts.Transcript = getEnvAsDuration("TRANSCRIPT_TIMEOUT", c.Timeouts.Transcript)
	c.Timeouts.Transcribe = getEnvAsDuration("TRANSCRIBE_TIMEOUT", c.Timeouts.Transcribe)
	c.Timeouts.Summarize = getEnvAsDuration("SUMMARIZE_TIMEOUT", c.Timeouts.Summarize)
}

func (c *Config) Validate() error {
	if err := validateRequired(c); err != nil {
		return err
	}
	if err := validateTimeouts(c); err != nil {
		return err
	}
	return validatePaths(c)
}

func validateRequired(c *Config) error {
	if c.ServerPort == "" {
		return errors.New("server port is required")
	}
	if c.DBPath == "" {
		return errors.New("database path is required")
	}
	if c.Gemini.APIKey == "" {
		return errors.New("GOOGLE_API_KEY is required")
	}
	if c.Gemini.Model == "" {
		return errors.New("gemini model is required")
	}
	if c.Whisper.Binary == "" {
		return errors.New("whisper binary is required")
	}
	if c.Upload.MaxSize <= 0 {
		return errors.New("max upload size must be greater than 0")
	}
	if c.RateLimit.Requests <= 0 {
		return errors.New("rate limit must be greater than 0")
	}
	return nil
}

func validateTimeouts(c *Config) error {
	timeouts := []struct {
		value time.Duration
		name  string
	}{
		{c.ReadTimeout, "read timeout"},
		{c.WriteTimeout, "write timeout"},
		{c.IdleTimeout, "idle timeout"},
		{c.ShutdownTimeout, "shutdown timeout"},
		{c.RateLimit.Interval, "rate limit interval"},
		{c.Timeouts.Transcript, "transcript timeout"},
		{c.Timeouts.Transcribe, "transcribe timeout"},
		{c.Timeouts.Summarize, "summarize timeout"},
	}

	for _, t := range timeouts {
		if t.value <= 0 {
			return errors.Errorf("%s must be greater than 0", t.name)
		}
	}
	return nil
}

func validatePaths(c *Config) error {
	paths := []struct {
		path string
		name string
	}{
		{c.LogDir, "log directory"},
		{c.TempDir, "temp directory"},
		{filepath.Dir(c.DBPath), "database directory"},
	}

	for _, p := range paths {
		if err := os.MkdirAll(p.path, 0755); err != nil {
			return errors.Wrapf(err, "failed to create %s", p.name)
		}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		logrus.WithFields(logrus.Fields{
			"key":          key,
			"value":        value,
			"defaultValue": defaultValue,
		}).Warn("Invalid duration, using default")
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		logrus.WithFields(logrus.Fields{
			"key":          key,
			"value":        value,
			"defaultValue": defaultValue,
		}).Warn("Invalid integer, using default")
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
		logrus.WithFields(logrus.Fields{
			"key":          key,
			"value":        value,
			"defaultValue": defaultValue,
		}).Warn("Invalid integer, using default")
	}
	return defaultValue
}
